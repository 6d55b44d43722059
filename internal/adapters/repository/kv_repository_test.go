package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okrasimirov/rota/internal/adapters/kvstore"
	"github.com/okrasimirov/rota/internal/adapters/repository"
	"github.com/okrasimirov/rota/internal/core/domain"
)

func newRepo() *repository.KVRepository {
	return repository.NewKVRepository(kvstore.NewMemoryStore())
}

func mustWorkout(t *testing.T, day int, title string, names ...string) *domain.Workout {
	t.Helper()

	var exercises []domain.Exercise
	for _, name := range names {
		exercises = append(exercises, domain.Exercise{Name: name})
	}
	w, err := domain.NewWorkout(day, title, exercises)
	require.NoError(t, err)
	return w
}

func TestWorkoutRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()

	// Every valid slot round-trips title and exercise names.
	for day := domain.MinDay; day <= domain.MaxDay; day++ {
		w := mustWorkout(t, day, "Workout", "Squat", "Bench")
		require.NoError(t, repo.Put(ctx, w))

		got, err := repo.GetByDay(ctx, day)
		require.NoError(t, err)
		assert.Equal(t, "Workout", got.Title)
		require.Len(t, got.Exercises, 2)
		assert.Equal(t, "Squat", got.Exercises[0].Name)
		assert.Equal(t, "Bench", got.Exercises[1].Name)
	}
}

func TestPutReplacesExistingDay(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()

	require.NoError(t, repo.Put(ctx, mustWorkout(t, 2, "Old", "Squat")))
	require.NoError(t, repo.Put(ctx, mustWorkout(t, 2, "New", "Deadlift")))

	got, err := repo.GetByDay(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Title)
	require.Len(t, got.Exercises, 1)
	assert.Equal(t, "Deadlift", got.Exercises[0].Name)
}

func TestGetByDayMissing(t *testing.T) {
	_, err := newRepo().GetByDay(context.Background(), 4)
	assert.ErrorIs(t, err, domain.ErrWorkoutNotFound)
}

func TestReplaceExercisesKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()

	w := mustWorkout(t, 5, "Pull", "Row", "Curl")
	require.NoError(t, repo.Put(ctx, w))

	updated := make([]domain.Exercise, len(w.Exercises))
	copy(updated, w.Exercises)
	updated[0].Completed = true

	require.NoError(t, repo.ReplaceExercises(ctx, 5, updated))

	got, err := repo.GetByDay(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, w.ID, got.ID)
	assert.Equal(t, "Pull", got.Title)
	assert.True(t, got.Exercises[0].Completed)
	assert.False(t, got.Exercises[1].Completed)
}

func TestReplaceExercisesOnEmptyDay(t *testing.T) {
	err := newRepo().ReplaceExercises(context.Background(), 3, nil)
	assert.ErrorIs(t, err, domain.ErrWorkoutNotFound)
}

func TestListAllOrdersByDay(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()

	require.NoError(t, repo.Put(ctx, mustWorkout(t, 6, "Six", "a")))
	require.NoError(t, repo.Put(ctx, mustWorkout(t, 2, "Two", "a")))

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 2, all[0].Day)
	assert.Equal(t, 6, all[1].Day)
}

func TestStateDefaults(t *testing.T) {
	state, err := newRepo().State(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.MinDay, state.CurrentDay)
	assert.True(t, state.InstallDate.IsZero())
	assert.Nil(t, state.LastSyncAt)
}

func TestSetCurrentDay(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()

	require.NoError(t, repo.SetCurrentDay(ctx, 4))

	state, err := repo.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, state.CurrentDay)

	assert.ErrorIs(t, repo.SetCurrentDay(ctx, 8), domain.ErrInvalidDay)
}

func TestInitInstallDateFirstWriterWins(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()

	first := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	stored, err := repo.InitInstallDate(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, first, stored)

	// A later writer gets the stored date back, not its own.
	later := first.Add(48 * time.Hour)
	stored, err = repo.InitInstallDate(ctx, later)
	require.NoError(t, err)
	assert.Equal(t, first, stored)
}

func TestInitInstallDateConcurrent(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()

	results := make([]time.Time, 10)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			at := time.Date(2024, 3, 1, i, 0, 0, 0, time.UTC)
			stored, err := repo.InitInstallDate(ctx, at)
			assert.NoError(t, err)
			results[i] = stored
		}(i)
	}
	wg.Wait()

	// All callers agree on one install date.
	for _, got := range results[1:] {
		assert.Equal(t, results[0], got)
	}
}

func TestCompletionLogDedup(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()

	added, err := repo.Add(ctx, "2024-03-01")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = repo.Add(ctx, "2024-03-01")
	require.NoError(t, err)
	assert.False(t, added)

	added, err = repo.Add(ctx, "2024-03-02")
	require.NoError(t, err)
	assert.True(t, added)

	dates, err := repo.Dates(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-03-01", "2024-03-02"}, dates)
}
