package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okrasimirov/rota/internal/core/domain"
	"github.com/okrasimirov/rota/internal/core/services"
)

func seedWorkout(t *testing.T, env *testEnv, day int, names ...string) *domain.Workout {
	t.Helper()

	var exercises []domain.Exercise
	for _, name := range names {
		exercises = append(exercises, domain.Exercise{Name: name})
	}
	w, err := domain.NewWorkout(day, "Workout", exercises)
	require.NoError(t, err)
	require.NoError(t, env.repo.Put(context.Background(), w))
	return w
}

func TestSaveWorkoutEndpoint(t *testing.T) {
	t.Run("Success: stores the workout", func(t *testing.T) {
		env := newTestEnv(services.AdvanceManual)

		w := env.do(http.MethodPut, "/api/v1/workouts/3",
			`{"title":"Leg Day","exercises":[{"name":"Squat"},{"name":"Lunges"}]}`)
		assert.Equal(t, http.StatusCreated, w.Code)

		var saved domain.Workout
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
		assert.Equal(t, 3, saved.Day)
		assert.Equal(t, "Leg Day", saved.Title)
		assert.Len(t, saved.Exercises, 2)
		assert.NotEmpty(t, saved.Exercises[0].ID)
	})

	t.Run("Success: remote image is cached and source url kept", func(t *testing.T) {
		env := newTestEnv(services.AdvanceManual)

		w := env.do(http.MethodPut, "/api/v1/workouts/3",
			`{"title":"Push","exercises":[{"name":"Bench","image":"https://wger.de/b.jpg"}]}`)
		assert.Equal(t, http.StatusCreated, w.Code)

		var saved domain.Workout
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
		assert.Equal(t, "/cache/images/local.jpg", saved.Exercises[0].Image)
		assert.Equal(t, "https://wger.de/b.jpg", saved.Exercises[0].OriginalImage)
	})

	t.Run("Validation: bad day, missing title, too many exercises", func(t *testing.T) {
		env := newTestEnv(services.AdvanceManual)

		w := env.do(http.MethodPut, "/api/v1/workouts/0", `{"title":"X","exercises":[{"name":"a"}]}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = env.do(http.MethodPut, "/api/v1/workouts/3", `{"exercises":[{"name":"a"}]}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = env.do(http.MethodPut, "/api/v1/workouts/3",
			`{"title":"X","exercises":[{"name":"a"},{"name":"b"},{"name":"c"},{"name":"d"},{"name":"e"},{"name":"f"},{"name":"g"},{"name":"h"}]}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetWorkoutEndpoint(t *testing.T) {
	env := newTestEnv(services.AdvanceManual)
	seedWorkout(t, env, 4, "Squat")

	w := env.do(http.MethodGet, "/api/v1/workouts/4", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"day":4`)

	w = env.do(http.MethodGet, "/api/v1/workouts/5", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodGet, "/api/v1/workouts/nine", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListDaysEndpoint(t *testing.T) {
	env := newTestEnv(services.AdvanceManual)
	seedWorkout(t, env, 2, "Squat")

	w := env.do(http.MethodGet, "/api/v1/days", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Days []struct {
			Day     int             `json:"day"`
			Workout *domain.Workout `json:"workout"`
		} `json:"days"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	// All seven slots are present, empty ones with a null workout.
	require.Len(t, resp.Days, 7)
	assert.Nil(t, resp.Days[0].Workout)
	require.NotNil(t, resp.Days[1].Workout)
	assert.Equal(t, "Workout", resp.Days[1].Workout.Title)
}

func TestActiveWorkoutEndpoint(t *testing.T) {
	env := newTestEnv(services.AdvanceManual)
	seedWorkout(t, env, 1, "Squat")

	w := env.do(http.MethodGet, "/api/v1/workouts/active", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"day":1`)

	// An empty active slot still answers 200 with a null workout.
	require.NoError(t, env.repo.SetCurrentDay(context.Background(), 6))
	w = env.do(http.MethodGet, "/api/v1/workouts/active", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"workout":null`)
}

func TestCompleteExerciseEndpoint(t *testing.T) {
	t.Run("Success: completes and reports the day transition", func(t *testing.T) {
		env := newTestEnv(services.AdvanceManual)
		workout := seedWorkout(t, env, 1, "Squat")

		w := env.do(http.MethodPost, "/api/v1/workouts/1/exercises/"+workout.Exercises[0].ID+"/complete", "")
		assert.Equal(t, http.StatusOK, w.Code)

		var result services.CompletionResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.True(t, result.Changed)
		assert.True(t, result.DayCompleted)
	})

	t.Run("Error: unknown exercise and empty day", func(t *testing.T) {
		env := newTestEnv(services.AdvanceManual)
		seedWorkout(t, env, 1, "Squat")

		w := env.do(http.MethodPost, "/api/v1/workouts/1/exercises/missing/complete", "")
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = env.do(http.MethodPost, "/api/v1/workouts/2/exercises/whatever/complete", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAdvanceEndpoint(t *testing.T) {
	env := newTestEnv(services.AdvanceManual)

	w := env.do(http.MethodPost, "/api/v1/rotation/advance", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"current_day":2`)
}
