package workers

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/okrasimirov/rota/internal/core/domain"
)

type WorkoutRepository interface {
	GetByDay(ctx context.Context, day int) (*domain.Workout, error)
	ReplaceExercises(ctx context.Context, day int, exercises []domain.Exercise) error
}

type ImageCache interface {
	Materialize(ctx context.Context, remoteURL string) (string, error)
	Resolvable(localRef string) bool
}

type RestoreJob struct {
	Day int
}

// RestoreWorker retries image downloads in the background. A save never
// fails because wger was unreachable; the day is queued here instead and
// the local copy arrives when the network allows it.
type RestoreWorker struct {
	workoutRepo WorkoutRepository
	cache       ImageCache
	jobs        chan RestoreJob
}

func NewRestoreWorker(workoutRepo WorkoutRepository, cache ImageCache) *RestoreWorker {
	return &RestoreWorker{
		workoutRepo: workoutRepo,
		cache:       cache,
		jobs:        make(chan RestoreJob, 100),
	}
}

func (w *RestoreWorker) Start(ctx context.Context) {
	go func() {
		log.Info("image restore worker started")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				log.Info("image restore worker shutting down")
				return
			}
		}
	}()
}

// Enqueue queues a day for an image retry pass. A full queue drops the
// job; the next save or restore will queue it again.
func (w *RestoreWorker) Enqueue(day int) {
	select {
	case w.jobs <- RestoreJob{Day: day}:
	default:
		log.Warnf("restore queue full, dropping job for day %d", day)
	}
}

func (w *RestoreWorker) processJob(ctx context.Context, job RestoreJob) {
	workout, err := w.workoutRepo.GetByDay(ctx, job.Day)
	if err != nil {
		log.Warnf("restore worker: loading day %d failed: %v", job.Day, err)
		return
	}

	changed := false
	for i := range workout.Exercises {
		ex := &workout.Exercises[i]
		if ex.OriginalImage == "" || w.cache.Resolvable(ex.Image) {
			continue
		}

		localPath, err := w.cache.Materialize(ctx, ex.OriginalImage)
		if err != nil {
			log.Debugf("restore worker: download for %q still failing: %v", ex.Name, err)
			continue
		}
		ex.Image = localPath
		changed = true
	}

	if !changed {
		return
	}

	if err := w.workoutRepo.ReplaceExercises(ctx, job.Day, workout.Exercises); err != nil {
		log.Warnf("restore worker: persisting day %d failed: %v", job.Day, err)
		return
	}
	log.Debugf("restore worker: images for day %d materialized", job.Day)
}
