package services

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/okrasimirov/rota/internal/core/domain"
)

// ImageMaterializer turns a remote image URL into a local cache
// reference. Best effort: callers keep the remote URL when it fails.
type ImageMaterializer interface {
	Materialize(ctx context.Context, remoteURL string) (string, error)
}

// RestoreQueue accepts days whose images still need a download retry.
type RestoreQueue interface {
	Enqueue(day int)
}

type WorkoutService struct {
	repo   domain.WorkoutRepository
	assets ImageMaterializer
	queue  RestoreQueue
}

// NewWorkoutService builds the workout service. queue may be nil when no
// background retry is wanted.
func NewWorkoutService(repo domain.WorkoutRepository, assets ImageMaterializer, queue RestoreQueue) *WorkoutService {
	return &WorkoutService{
		repo:   repo,
		assets: assets,
		queue:  queue,
	}
}

type ExerciseInput struct {
	ID            string
	Name          string
	Image         string
	OriginalImage string
	Completed     bool
}

type SaveWorkoutInput struct {
	Day       int
	Title     string
	Exercises []ExerciseInput
}

// Save validates and stores a workout, replacing any previous one for
// the same day. Exercises whose image is still a remote URL are cached
// locally first; the remote URL is retained as the durable source so the
// file can be re-fetched after a restore. A failed download keeps the
// remote URL in place and does not fail the save.
func (s *WorkoutService) Save(ctx context.Context, input SaveWorkoutInput) (*domain.Workout, error) {
	exercises := make([]domain.Exercise, 0, len(input.Exercises))
	for _, in := range input.Exercises {
		exercises = append(exercises, domain.Exercise{
			ID:            in.ID,
			Name:          in.Name,
			Image:         in.Image,
			OriginalImage: in.OriginalImage,
			Completed:     in.Completed,
		})
	}

	workout, err := domain.NewWorkout(input.Day, input.Title, exercises)
	if err != nil {
		return nil, err
	}

	downloadFailed := false
	for i := range workout.Exercises {
		ex := &workout.Exercises[i]
		if !ex.HasRemoteImage() {
			continue
		}

		ex.OriginalImage = ex.Image

		localPath, err := s.assets.Materialize(ctx, ex.Image)
		if err != nil {
			log.Warnf("image download failed for %q, keeping remote url: %v", ex.Name, err)
			downloadFailed = true
			continue
		}
		ex.Image = localPath
	}

	if err := s.repo.Put(ctx, workout); err != nil {
		return nil, fmt.Errorf("save workout: %w", err)
	}

	if downloadFailed && s.queue != nil {
		s.queue.Enqueue(workout.Day)
	}

	return workout.Clone(), nil
}

// Get returns the stored workout for a day, or nil when the slot is empty.
func (s *WorkoutService) Get(ctx context.Context, day int) (*domain.Workout, error) {
	if day < domain.MinDay || day > domain.MaxDay {
		return nil, domain.ErrInvalidDay
	}

	workout, err := s.repo.GetByDay(ctx, day)
	if err != nil {
		if errors.Is(err, domain.ErrWorkoutNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return workout.Clone(), nil
}

// List returns every stored workout, ordered by day slot.
func (s *WorkoutService) List(ctx context.Context) ([]*domain.Workout, error) {
	return s.repo.ListAll(ctx)
}

// UpdateProgress persists a new exercise list for a day so in-progress
// completion survives a restart. An empty slot is a logged no-op, never
// a crash; storage failures are still surfaced.
func (s *WorkoutService) UpdateProgress(ctx context.Context, day int, exercises []domain.Exercise) (bool, error) {
	err := s.repo.ReplaceExercises(ctx, day, exercises)
	if err != nil {
		if errors.Is(err, domain.ErrWorkoutNotFound) {
			log.Warnf("progress update for empty day %d ignored", day)
			return false, nil
		}
		return false, fmt.Errorf("update progress for day %d: %w", day, err)
	}
	return true, nil
}
