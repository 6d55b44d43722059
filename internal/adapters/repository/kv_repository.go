package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/okrasimirov/rota/internal/adapters/kvstore"
	"github.com/okrasimirov/rota/internal/core/domain"
)

// Key namespaces inside the flat store. Each logical record lives under
// its own key so partial updates never rewrite unrelated data.
const (
	workoutKeyPrefix  = "workout:day:"
	currentDayKey     = "rotation:current_day"
	installDateKey    = "rotation:install_date"
	lastSyncKey       = "rotation:last_sync"
	completedDatesKey = "stats:completed_dates"
)

// KVRepository persists workouts, rotation state and the completion log
// as namespaced entries of a kvstore.Store. A single writer mutex keeps
// check-then-set sequences (install date init, log dedup) race free.
type KVRepository struct {
	store kvstore.Store

	mu sync.Mutex
}

func NewKVRepository(store kvstore.Store) *KVRepository {
	return &KVRepository{store: store}
}

var _ domain.WorkoutRepository = (*KVRepository)(nil)
var _ domain.RotationRepository = (*KVRepository)(nil)
var _ domain.CompletionLogRepository = (*KVRepository)(nil)

func workoutKey(day int) string {
	return workoutKeyPrefix + strconv.Itoa(day)
}

func (r *KVRepository) GetByDay(ctx context.Context, day int) (*domain.Workout, error) {
	raw, err := r.store.Get(ctx, workoutKey(day))
	if err != nil {
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			return nil, domain.ErrWorkoutNotFound
		}
		return nil, fmt.Errorf("load workout for day %d: %w", day, err)
	}

	var workout domain.Workout
	if err := json.Unmarshal([]byte(raw), &workout); err != nil {
		return nil, fmt.Errorf("decode workout for day %d: %w", day, err)
	}
	return &workout, nil
}

func (r *KVRepository) Put(ctx context.Context, workout *domain.Workout) error {
	raw, err := json.Marshal(workout)
	if err != nil {
		return fmt.Errorf("encode workout: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.Set(ctx, workoutKey(workout.Day), string(raw)); err != nil {
		return fmt.Errorf("store workout for day %d: %w", workout.Day, err)
	}
	return nil
}

func (r *KVRepository) ReplaceExercises(ctx context.Context, day int, exercises []domain.Exercise) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	workout, err := r.GetByDay(ctx, day)
	if err != nil {
		return err
	}

	workout.Exercises = exercises

	raw, err := json.Marshal(workout)
	if err != nil {
		return fmt.Errorf("encode workout: %w", err)
	}
	if err := r.store.Set(ctx, workoutKey(day), string(raw)); err != nil {
		return fmt.Errorf("store progress for day %d: %w", day, err)
	}
	return nil
}

func (r *KVRepository) ListAll(ctx context.Context) ([]*domain.Workout, error) {
	var workouts []*domain.Workout
	for day := domain.MinDay; day <= domain.MaxDay; day++ {
		workout, err := r.GetByDay(ctx, day)
		if err != nil {
			if errors.Is(err, domain.ErrWorkoutNotFound) {
				continue
			}
			return nil, err
		}
		workouts = append(workouts, workout)
	}
	return workouts, nil
}

func (r *KVRepository) State(ctx context.Context) (*domain.RotationState, error) {
	state := &domain.RotationState{CurrentDay: domain.MinDay}

	if raw, err := r.store.Get(ctx, currentDayKey); err == nil {
		day, convErr := strconv.Atoi(raw)
		if convErr != nil || day < domain.MinDay || day > domain.MaxDay {
			return nil, fmt.Errorf("corrupt current day value %q", raw)
		}
		state.CurrentDay = day
	} else if !errors.Is(err, kvstore.ErrKeyNotFound) {
		return nil, fmt.Errorf("load current day: %w", err)
	}

	if raw, err := r.store.Get(ctx, installDateKey); err == nil {
		at, parseErr := time.Parse(time.RFC3339, raw)
		if parseErr != nil {
			return nil, fmt.Errorf("corrupt install date value %q", raw)
		}
		state.InstallDate = at
	} else if !errors.Is(err, kvstore.ErrKeyNotFound) {
		return nil, fmt.Errorf("load install date: %w", err)
	}

	if raw, err := r.store.Get(ctx, lastSyncKey); err == nil {
		at, parseErr := time.Parse(time.RFC3339, raw)
		if parseErr == nil {
			state.LastSyncAt = &at
		}
	} else if !errors.Is(err, kvstore.ErrKeyNotFound) {
		return nil, fmt.Errorf("load last sync: %w", err)
	}

	return state, nil
}

func (r *KVRepository) SetCurrentDay(ctx context.Context, day int) error {
	if day < domain.MinDay || day > domain.MaxDay {
		return domain.ErrInvalidDay
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.Set(ctx, currentDayKey, strconv.Itoa(day)); err != nil {
		return fmt.Errorf("store current day: %w", err)
	}
	return nil
}

func (r *KVRepository) InitInstallDate(ctx context.Context, at time.Time) (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if raw, err := r.store.Get(ctx, installDateKey); err == nil {
		existing, parseErr := time.Parse(time.RFC3339, raw)
		if parseErr != nil {
			return time.Time{}, fmt.Errorf("corrupt install date value %q", raw)
		}
		return existing, nil
	} else if !errors.Is(err, kvstore.ErrKeyNotFound) {
		return time.Time{}, fmt.Errorf("load install date: %w", err)
	}

	at = at.UTC()
	if err := r.store.Set(ctx, installDateKey, at.Format(time.RFC3339)); err != nil {
		return time.Time{}, fmt.Errorf("store install date: %w", err)
	}
	return at, nil
}

func (r *KVRepository) SetLastSync(ctx context.Context, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.Set(ctx, lastSyncKey, at.UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("store last sync: %w", err)
	}
	return nil
}

func (r *KVRepository) Dates(ctx context.Context) ([]string, error) {
	raw, err := r.store.Get(ctx, completedDatesKey)
	if err != nil {
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load completion log: %w", err)
	}

	var dates []string
	if err := json.Unmarshal([]byte(raw), &dates); err != nil {
		return nil, fmt.Errorf("decode completion log: %w", err)
	}
	return dates, nil
}

func (r *KVRepository) Add(ctx context.Context, date string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	dates, err := r.Dates(ctx)
	if err != nil {
		return false, err
	}

	for _, d := range dates {
		if d == date {
			return false, nil
		}
	}

	dates = append(dates, date)
	raw, err := json.Marshal(dates)
	if err != nil {
		return false, fmt.Errorf("encode completion log: %w", err)
	}
	if err := r.store.Set(ctx, completedDatesKey, string(raw)); err != nil {
		return false, fmt.Errorf("store completion log: %w", err)
	}
	return true, nil
}
