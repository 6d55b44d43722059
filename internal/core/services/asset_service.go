package services

import (
	"context"
	"fmt"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"

	"github.com/okrasimirov/rota/internal/core/domain"
)

// Exercise names shorter than this are not worth a lookup round trip.
const minLookupLen = 3

type ImageLookup interface {
	SearchImage(ctx context.Context, exerciseName string) (string, error)
}

type ImageCache interface {
	Materialize(ctx context.Context, remoteURL string) (string, error)
	Resolvable(localRef string) bool
}

// AssetService owns the exercise image lifecycle: best-effort remote
// lookup, local caching, and re-materializing images after a restore.
type AssetService struct {
	lookup      ImageLookup
	cache       ImageCache
	workoutRepo domain.WorkoutRepository
}

func NewAssetService(lookup ImageLookup, cache ImageCache, workoutRepo domain.WorkoutRepository) *AssetService {
	return &AssetService{
		lookup:      lookup,
		cache:       cache,
		workoutRepo: workoutRepo,
	}
}

// Lookup finds an image URL for an exercise name. No match, a too-short
// name and an upstream failure all degrade to "", never to an error the
// caller has to handle: the exercise stays fully usable without an image.
func (s *AssetService) Lookup(ctx context.Context, exerciseName string) string {
	if utf8.RuneCountInString(exerciseName) < minLookupLen {
		return ""
	}

	imageURL, err := s.lookup.SearchImage(ctx, exerciseName)
	if err != nil {
		log.Warnf("image lookup for %q failed: %v", exerciseName, err)
		return ""
	}
	return imageURL
}

// Materialize caches a remote image locally.
func (s *AssetService) Materialize(ctx context.Context, remoteURL string) (string, error) {
	return s.cache.Materialize(ctx, remoteURL)
}

// RestoreAll re-downloads every exercise image whose original URL is
// known but whose local copy is gone, as happens after a cloud restore on
// a fresh device. Items are processed independently; one failed download
// never aborts the batch. Returns how many images were restored and how
// many failed.
func (s *AssetService) RestoreAll(ctx context.Context) (restored, failed int, err error) {
	workouts, err := s.workoutRepo.ListAll(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("list workouts for restore: %w", err)
	}

	for _, workout := range workouts {
		changed := false

		for i := range workout.Exercises {
			ex := &workout.Exercises[i]
			if ex.OriginalImage == "" || s.cache.Resolvable(ex.Image) {
				continue
			}

			localPath, err := s.cache.Materialize(ctx, ex.OriginalImage)
			if err != nil {
				log.Warnf("image restore failed for %q (day %d): %v", ex.Name, workout.Day, err)
				failed++
				continue
			}

			ex.Image = localPath
			changed = true
			restored++
		}

		if !changed {
			continue
		}

		if err := s.workoutRepo.ReplaceExercises(ctx, workout.Day, workout.Exercises); err != nil {
			log.Errorf("failed to persist restored images for day %d: %v", workout.Day, err)
			failed++
		}
	}

	log.Debugf("image restore done: %d restored, %d failed", restored, failed)
	return restored, failed, nil
}
