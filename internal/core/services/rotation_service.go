package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/okrasimirov/rota/internal/core/domain"
)

// AdvancePolicy decides what happens to the rotation pointer once every
// exercise of the active day is completed.
type AdvancePolicy string

const (
	// AdvanceManual keeps the finished workout visible; the pointer only
	// moves on an explicit AdvanceDay call.
	AdvanceManual AdvancePolicy = "manual"

	// AdvanceAuto moves the pointer to the next slot as part of the
	// completion that finished the day.
	AdvanceAuto AdvancePolicy = "auto"
)

// RotationService drives the per-day completion state machine: exercises
// go pending -> completed one way, and the day itself transitions to
// complete exactly once, when the last exercise is done.
type RotationService struct {
	workoutRepo  domain.WorkoutRepository
	rotationRepo domain.RotationRepository
	stats        *StatsService
	policy       AdvancePolicy

	// One lock per day slot: completions for the same day are applied
	// in order, days do not contend with each other.
	dayLocks [domain.MaxDay + 1]sync.Mutex
}

func NewRotationService(
	workoutRepo domain.WorkoutRepository,
	rotationRepo domain.RotationRepository,
	stats *StatsService,
	policy AdvancePolicy,
) *RotationService {
	if policy != AdvanceAuto {
		policy = AdvanceManual
	}
	return &RotationService{
		workoutRepo:  workoutRepo,
		rotationRepo: rotationRepo,
		stats:        stats,
		policy:       policy,
	}
}

// ActiveWorkout returns the workout for the current rotation slot, or a
// nil workout when the slot is empty, together with the slot number.
func (s *RotationService) ActiveWorkout(ctx context.Context) (*domain.Workout, int, error) {
	state, err := s.rotationRepo.State(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("load rotation state: %w", err)
	}

	workout, err := s.workoutRepo.GetByDay(ctx, state.CurrentDay)
	if err != nil {
		if errors.Is(err, domain.ErrWorkoutNotFound) {
			return nil, state.CurrentDay, nil
		}
		return nil, 0, err
	}

	return workout.Clone(), state.CurrentDay, nil
}

// State returns the current rotation record.
func (s *RotationService) State(ctx context.Context) (*domain.RotationState, error) {
	return s.rotationRepo.State(ctx)
}

type CompletionResult struct {
	Workout      *domain.Workout `json:"workout"`
	Changed      bool            `json:"changed"`
	DayCompleted bool            `json:"day_completed"`
	AdvancedTo   int             `json:"advanced_to,omitempty"`
}

// CompleteExercise marks one exercise done and sequences the dependent
// effects in order: persist progress, then record the day completion if
// this was the last pending exercise, then advance when the policy says
// so. Completing an already-completed exercise is a no-op, not an error.
func (s *RotationService) CompleteExercise(ctx context.Context, day int, exerciseID string) (*CompletionResult, error) {
	if day < domain.MinDay || day > domain.MaxDay {
		return nil, domain.ErrInvalidDay
	}

	s.dayLocks[day].Lock()
	defer s.dayLocks[day].Unlock()

	workout, err := s.workoutRepo.GetByDay(ctx, day)
	if err != nil {
		return nil, err
	}

	exercise, err := workout.Exercise(exerciseID)
	if err != nil {
		return nil, err
	}

	wasComplete := workout.Completed()

	if !exercise.MarkCompleted() {
		return &CompletionResult{Workout: workout.Clone(), Changed: false, DayCompleted: wasComplete}, nil
	}

	if err := s.workoutRepo.ReplaceExercises(ctx, day, workout.Exercises); err != nil {
		return nil, fmt.Errorf("persist completion: %w", err)
	}

	result := &CompletionResult{Workout: workout.Clone(), Changed: true}

	if workout.Completed() && !wasComplete {
		result.DayCompleted = true

		if _, err := s.stats.RecordDayComplete(ctx); err != nil {
			return nil, err
		}

		if s.policy == AdvanceAuto {
			next, err := s.AdvanceDay(ctx)
			if err != nil {
				return nil, err
			}
			result.AdvancedTo = next
			log.Debugf("day %d complete, rotation advanced to %d", day, next)
		}
	}

	return result, nil
}

// AdvanceDay moves the rotation pointer to the next slot, wrapping after
// day 7. Empty slots are valid targets; the UI shows them as rest days.
func (s *RotationService) AdvanceDay(ctx context.Context) (int, error) {
	state, err := s.rotationRepo.State(ctx)
	if err != nil {
		return 0, fmt.Errorf("load rotation state: %w", err)
	}

	next := domain.NextDay(state.CurrentDay)
	if err := s.rotationRepo.SetCurrentDay(ctx, next); err != nil {
		return 0, fmt.Errorf("advance rotation: %w", err)
	}
	return next, nil
}
