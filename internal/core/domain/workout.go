package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidDay         = errors.New("day must be between 1 and 7")
	ErrWorkoutTitleEmpty  = errors.New("workout title cannot be empty")
	ErrNoExercises        = errors.New("workout needs at least one exercise")
	ErrTooManyExercises   = errors.New("workout cannot have more than 7 exercises")
	ErrExerciseNameEmpty  = errors.New("exercise name cannot be empty")
	ErrExerciseNotFound   = errors.New("exercise not found in workout")
)

const (
	MinDay       = 1
	MaxDay       = 7
	MaxExercises = 7
)

// Workout is the plan for a single rotation slot. Exactly one workout
// exists per day value; saving a new one for the same day replaces it.
type Workout struct {
	ID        string     `json:"id"`
	Day       int        `json:"day"`
	Title     string     `json:"title"`
	Exercises []Exercise `json:"exercises"`
	CreatedAt time.Time  `json:"created_at"`
}

func NewWorkout(day int, title string, exercises []Exercise) (*Workout, error) {
	if day < MinDay || day > MaxDay {
		return nil, ErrInvalidDay
	}

	trimmedTitle := strings.TrimSpace(title)
	if trimmedTitle == "" {
		return nil, ErrWorkoutTitleEmpty
	}

	if len(exercises) == 0 {
		return nil, ErrNoExercises
	}
	if len(exercises) > MaxExercises {
		return nil, ErrTooManyExercises
	}

	cleaned := make([]Exercise, 0, len(exercises))
	for _, ex := range exercises {
		ex.Name = strings.TrimSpace(ex.Name)
		if ex.Name == "" {
			return nil, ErrExerciseNameEmpty
		}
		if ex.ID == "" {
			ex.ID = uuid.NewString()
		}
		cleaned = append(cleaned, ex)
	}

	return &Workout{
		ID:        uuid.NewString(),
		Day:       day,
		Title:     trimmedTitle,
		Exercises: cleaned,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Exercise returns the exercise with the given id, or ErrExerciseNotFound.
func (w *Workout) Exercise(id string) (*Exercise, error) {
	for i := range w.Exercises {
		if w.Exercises[i].ID == id {
			return &w.Exercises[i], nil
		}
	}
	return nil, ErrExerciseNotFound
}

// Completed reports whether every exercise in the workout is done.
func (w *Workout) Completed() bool {
	if len(w.Exercises) == 0 {
		return false
	}
	for _, ex := range w.Exercises {
		if !ex.Completed {
			return false
		}
	}
	return true
}

// Clone returns a deep copy so callers can hand out read-only snapshots.
func (w *Workout) Clone() *Workout {
	clone := *w
	clone.Exercises = make([]Exercise, len(w.Exercises))
	copy(clone.Exercises, w.Exercises)
	return &clone
}
