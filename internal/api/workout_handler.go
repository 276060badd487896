package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"drpworkshop/server/internal/service"
)

// WorkoutHandler serves the read-only workout library.
type WorkoutHandler struct {
	workoutService service.WorkoutService
}

// NewWorkoutHandler creates a new WorkoutHandler.
func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

// ListCategories returns every workout category.
func (h *WorkoutHandler) ListCategories(c *gin.Context) {
	categories, err := h.workoutService.ListCategories(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
		return
	}
	c.JSON(http.StatusOK, categories)
}

// ListExercises returns the whole movement library.
func (h *WorkoutHandler) ListExercises(c *gin.Context) {
	exercises, err := h.workoutService.ListExercises(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
		return
	}
	c.JSON(http.StatusOK, exercises)
}

// ListExercisesByCategory returns the movements of one category, the menu
// shown once a sheet exercise has its category chosen.
func (h *WorkoutHandler) ListExercisesByCategory(c *gin.Context) {
	categoryID, ok := parseObjectIDParam(c, "categoryId")
	if !ok {
		return
	}
	exercises, err := h.workoutService.ListExercisesByCategory(c.Request.Context(), categoryID)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
		return
	}
	c.JSON(http.StatusOK, exercises)
}
