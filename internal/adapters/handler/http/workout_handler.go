package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/okrasimirov/rota/internal/core/domain"
	"github.com/okrasimirov/rota/internal/core/services"
)

type WorkoutHandler struct {
	workouts *services.WorkoutService
	rotation *services.RotationService
}

func NewWorkoutHandler(workouts *services.WorkoutService, rotation *services.RotationService) *WorkoutHandler {
	return &WorkoutHandler{
		workouts: workouts,
		rotation: rotation,
	}
}

type exercisePayload struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Image         string `json:"image"`
	OriginalImage string `json:"original_image"`
	Completed     bool   `json:"completed"`
}

type saveWorkoutRequest struct {
	Title     string            `json:"title" binding:"required"`
	Exercises []exercisePayload `json:"exercises"`
}

type daySummary struct {
	Day     int             `json:"day"`
	Workout *domain.Workout `json:"workout"`
}

func (h *WorkoutHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/days", h.ListDays)

	workouts := router.Group("/workouts")
	{
		workouts.GET("/active", h.Active)
		workouts.GET("/:day", h.GetByDay)
		workouts.PUT("/:day", h.Save)
		workouts.POST("/:day/exercises/:exerciseID/complete", h.CompleteExercise)
	}

	router.POST("/rotation/advance", h.AdvanceDay)
}

func isValidationError(err error) bool {
	return errors.Is(err, domain.ErrInvalidDay) ||
		errors.Is(err, domain.ErrWorkoutTitleEmpty) ||
		errors.Is(err, domain.ErrNoExercises) ||
		errors.Is(err, domain.ErrTooManyExercises) ||
		errors.Is(err, domain.ErrExerciseNameEmpty)
}

func dayParam(c *gin.Context) (int, bool) {
	day, err := strconv.Atoi(c.Param("day"))
	if err != nil || day < domain.MinDay || day > domain.MaxDay {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidDay.Error()})
		return 0, false
	}
	return day, true
}

// ListDays returns all seven rotation slots; empty slots carry a nil
// workout so the UI can render rest days.
func (h *WorkoutHandler) ListDays(c *gin.Context) {
	stored, err := h.workouts.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	byDay := make(map[int]*domain.Workout, len(stored))
	for _, w := range stored {
		byDay[w.Day] = w
	}

	days := make([]daySummary, 0, domain.MaxDay)
	for day := domain.MinDay; day <= domain.MaxDay; day++ {
		days = append(days, daySummary{Day: day, Workout: byDay[day]})
	}

	c.JSON(http.StatusOK, gin.H{"days": days})
}

func (h *WorkoutHandler) Active(c *gin.Context) {
	workout, day, err := h.rotation.ActiveWorkout(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"day":     day,
		"workout": workout,
	})
}

func (h *WorkoutHandler) GetByDay(c *gin.Context) {
	day, ok := dayParam(c)
	if !ok {
		return
	}

	workout, err := h.workouts.Get(c.Request.Context(), day)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	if workout == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrWorkoutNotFound.Error()})
		return
	}

	c.JSON(http.StatusOK, workout)
}

func (h *WorkoutHandler) Save(c *gin.Context) {
	day, ok := dayParam(c)
	if !ok {
		return
	}

	var req saveWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := services.SaveWorkoutInput{
		Day:   day,
		Title: req.Title,
	}
	for _, ex := range req.Exercises {
		input.Exercises = append(input.Exercises, services.ExerciseInput{
			ID:            ex.ID,
			Name:          ex.Name,
			Image:         ex.Image,
			OriginalImage: ex.OriginalImage,
			Completed:     ex.Completed,
		})
	}

	workout, err := h.workouts.Save(c.Request.Context(), input)
	if err != nil {
		if isValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, workout)
}

func (h *WorkoutHandler) CompleteExercise(c *gin.Context) {
	day, ok := dayParam(c)
	if !ok {
		return
	}
	exerciseID := c.Param("exerciseID")

	result, err := h.rotation.CompleteExercise(c.Request.Context(), day, exerciseID)
	if err != nil {
		if errors.Is(err, domain.ErrWorkoutNotFound) || errors.Is(err, domain.ErrExerciseNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *WorkoutHandler) AdvanceDay(c *gin.Context) {
	next, err := h.rotation.AdvanceDay(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"current_day": next})
}
