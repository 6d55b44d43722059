package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrWorkoutNotFound = errors.New("no workout for that day")
)

type WorkoutRepository interface {
	// GetByDay retrieves the workout stored for a rotation slot.
	GetByDay(ctx context.Context, day int) (*Workout, error)

	// Put atomically replaces whatever workout the slot held before.
	Put(ctx context.Context, workout *Workout) error

	// ReplaceExercises swaps the exercise list of an existing workout
	// without touching its id, title or creation time. Used to persist
	// partial completion progress.
	ReplaceExercises(ctx context.Context, day int, exercises []Exercise) error

	// ListAll returns every stored workout ordered by day.
	ListAll(ctx context.Context) ([]*Workout, error)
}

type RotationRepository interface {
	// State assembles the current rotation record. A missing current day
	// defaults to day 1; a zero InstallDate means first run.
	State(ctx context.Context) (*RotationState, error)

	// SetCurrentDay moves the rotation pointer.
	SetCurrentDay(ctx context.Context, day int) error

	// InitInstallDate stores the install date unless one is already set.
	// The first writer wins; the stored date is returned either way.
	InitInstallDate(ctx context.Context, at time.Time) (time.Time, error)

	// SetLastSync stamps the time of the last sync attempt.
	SetLastSync(ctx context.Context, at time.Time) error
}

type CompletionLogRepository interface {
	// Dates returns the recorded completion dates as YYYY-MM-DD strings.
	Dates(ctx context.Context) ([]string, error)

	// Add appends a date to the log if it is not present yet and reports
	// whether it was actually added.
	Add(ctx context.Context, date string) (bool, error)
}
