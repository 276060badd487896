package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"drpworkshop/server/internal/domain"
	"drpworkshop/server/internal/program"
	"drpworkshop/server/internal/service"
)

// SweatSheetHandler holds the sweatsheet service dependency.
type SweatSheetHandler struct {
	sheetService service.SweatSheetService
}

// NewSweatSheetHandler creates a new SweatSheetHandler.
func NewSweatSheetHandler(sheetService service.SweatSheetService) *SweatSheetHandler {
	return &SweatSheetHandler{sheetService: sheetService}
}

// --- Request Structs ---

type CreateSweatSheetRequest struct {
	Name      string `json:"name" binding:"required"`
	AthleteID string `json:"athleteId"` // Optional; hex ObjectID
	// IdempotencyKey makes a retried create return the first sheet instead
	// of a duplicate. Clients generate one per create intent.
	IdempotencyKey string `json:"idempotencyKey"`
}

type CreateTemplateRequest struct {
	Name           string `json:"name" binding:"required"`
	IdempotencyKey string `json:"idempotencyKey"`
}

type RenameSweatSheetRequest struct {
	Name string `json:"name" binding:"required"`
}

type AssignSweatSheetRequest struct {
	AthleteID string `json:"athleteId" binding:"required"`
}

type SetCategoryRequest struct {
	CategoryID string `json:"categoryId" binding:"required"`
}

type SetWorkoutRequest struct {
	WorkoutID string `json:"workoutId" binding:"required"`
}

type SetSetsRequest struct {
	// Sets is the declared count as text, "1".."10". Empty clears the
	// exercise's set data.
	Sets string `json:"sets"`
}

// UpdateSetRecordRequest carries partial updates for one set record. Nil
// fields are left untouched.
type UpdateSetRecordRequest struct {
	Reps      *string `json:"reps"`
	Weight    *string `json:"weight"`
	Completed *bool   `json:"completed"`
}

// --- Handler Methods ---

// CreateSweatSheet godoc
// @Summary Create a SweatSheet
// @Description Provisions a complete program: phase one, eight sections, six empty exercises each. Assigning an athlete who already has an active sheet returns that sheet.
// @Tags SweatSheets
// @Accept json
// @Produce json
// @Param sheet body CreateSweatSheetRequest true "Sheet details"
// @Success 201 {object} domain.SweatSheet
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 404 {object} gin.H "Athlete not found"
// @Router /sweatsheets [post]
func (h *SweatSheetHandler) CreateSweatSheet(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req CreateSweatSheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	var athleteID *primitive.ObjectID
	if req.AthleteID != "" {
		id, err := primitive.ObjectIDFromHex(req.AthleteID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid athleteId format")
			return
		}
		athleteID = &id
	}

	sheet, err := h.sheetService.Create(c.Request.Context(), userID, req.Name, athleteID, req.IdempotencyKey)
	if err != nil {
		h.handleSheetError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sheet)
}

// CreateTemplate creates an unassigned template sheet.
func (h *SweatSheetHandler) CreateTemplate(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	sheet, err := h.sheetService.CreateTemplate(c.Request.Context(), userID, req.Name, req.IdempotencyKey)
	if err != nil {
		h.handleSheetError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sheet)
}

// ListSweatSheets returns the sheets visible to the caller: created ones for
// a pro, assigned ones for an athlete.
func (h *SweatSheetHandler) ListSweatSheets(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	role, err := getUserRoleFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve role from token")
		return
	}

	sheets, err := h.sheetService.ListForUser(c.Request.Context(), userID, role)
	if err != nil {
		h.handleSheetError(c, err)
		return
	}
	c.JSON(http.StatusOK, sheets)
}

// ListTemplates returns every template sheet.
func (h *SweatSheetHandler) ListTemplates(c *gin.Context) {
	sheets, err := h.sheetService.ListTemplates(c.Request.Context())
	if err != nil {
		h.handleSheetError(c, err)
		return
	}
	c.JSON(http.StatusOK, sheets)
}

// GetActiveSweatSheet returns the caller's active sheet (athlete view).
func (h *SweatSheetHandler) GetActiveSweatSheet(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	sheet, err := h.sheetService.GetActiveForAthlete(c.Request.Context(), userID)
	if err != nil {
		h.handleSheetError(c, err)
		return
	}
	c.JSON(http.StatusOK, sheet)
}

// GetSweatSheet returns one sheet by ID.
func (h *SweatSheetHandler) GetSweatSheet(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	sheetID, ok := parseObjectIDParam(c, "sheetId")
	if !ok {
		return
	}
	sheet, err := h.sheetService.Get(c.Request.Context(), userID, sheetID)
	if err != nil {
		h.handleSheetError(c, err)
		return
	}
	c.JSON(http.StatusOK, sheet)
}

// RenameSweatSheet changes the sheet's name.
func (h *SweatSheetHandler) RenameSweatSheet(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	sheetID, ok := parseObjectIDParam(c, "sheetId")
	if !ok {
		return
	}
	var req RenameSweatSheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	sheet, err := h.sheetService.Rename(c.Request.Context(), userID, sheetID, req.Name)
	if err != nil {
		h.handleSheetError(c, err)
		return
	}
	c.JSON(http.StatusOK, sheet)
}

// AssignSweatSheet hands the sheet to an athlete and activates it.
func (h *SweatSheetHandler) AssignSweatSheet(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	sheetID, ok := parseObjectIDParam(c, "sheetId")
	if !ok {
		return
	}
	var req AssignSweatSheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	athleteID, err := primitive.ObjectIDFromHex(req.AthleteID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid athleteId format")
		return
	}

	sheet, err := h.sheetService.Assign(c.Request.Context(), userID, sheetID, athleteID)
	if err != nil {
		h.handleSheetError(c, err)
		return
	}
	c.JSON(http.StatusOK, sheet)
}

// DeleteSweatSheet removes a sheet the caller created.
func (h *SweatSheetHandler) DeleteSweatSheet(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	sheetID, ok := parseObjectIDParam(c, "sheetId")
	if !ok {
		return
	}
	if err := h.sheetService.Delete(c.Request.Context(), userID, sheetID); err != nil {
		h.handleSheetError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// InitializePhase appends the next phase to the sheet.
func (h *SweatSheetHandler) InitializePhase(c *gin.Context) {
	h.edit(c, func(userID, sheetID primitive.ObjectID) (*domain.SweatSheet, error) {
		return h.sheetService.InitializePhase(c.Request.Context(), userID, sheetID)
	})
}

// CompletePhase marks a phase complete; completing the latest phase spawns
// the next one while under the phase cap.
func (h *SweatSheetHandler) CompletePhase(c *gin.Context) {
	phaseID, ok := parseObjectIDParam(c, "phaseId")
	if !ok {
		return
	}
	h.edit(c, func(userID, sheetID primitive.ObjectID) (*domain.SweatSheet, error) {
		return h.sheetService.CompletePhase(c.Request.Context(), userID, sheetID, phaseID)
	})
}

// AddExercise appends an empty exercise to a section.
func (h *SweatSheetHandler) AddExercise(c *gin.Context) {
	sectionID, ok := parseObjectIDParam(c, "sectionId")
	if !ok {
		return
	}
	h.edit(c, func(userID, sheetID primitive.ObjectID) (*domain.SweatSheet, error) {
		return h.sheetService.AddExercise(c.Request.Context(), userID, sheetID, sectionID)
	})
}

// RemoveExercise deletes an exercise from its section.
func (h *SweatSheetHandler) RemoveExercise(c *gin.Context) {
	exerciseID, ok := parseObjectIDParam(c, "exerciseId")
	if !ok {
		return
	}
	h.edit(c, func(userID, sheetID primitive.ObjectID) (*domain.SweatSheet, error) {
		return h.sheetService.RemoveExercise(c.Request.Context(), userID, sheetID, exerciseID)
	})
}

// SetExerciseCategory sets the exercise's workout category, clearing any
// chosen specific workout.
func (h *SweatSheetHandler) SetExerciseCategory(c *gin.Context) {
	exerciseID, ok := parseObjectIDParam(c, "exerciseId")
	if !ok {
		return
	}
	var req SetCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	categoryID, err := primitive.ObjectIDFromHex(req.CategoryID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid categoryId format")
		return
	}
	h.edit(c, func(userID, sheetID primitive.ObjectID) (*domain.SweatSheet, error) {
		return h.sheetService.SetExerciseCategory(c.Request.Context(), userID, sheetID, exerciseID, categoryID)
	})
}

// SetExerciseWorkout sets the specific movement within the chosen category.
func (h *SweatSheetHandler) SetExerciseWorkout(c *gin.Context) {
	exerciseID, ok := parseObjectIDParam(c, "exerciseId")
	if !ok {
		return
	}
	var req SetWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	workoutID, err := primitive.ObjectIDFromHex(req.WorkoutID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid workoutId format")
		return
	}
	h.edit(c, func(userID, sheetID primitive.ObjectID) (*domain.SweatSheet, error) {
		return h.sheetService.SetExerciseWorkout(c.Request.Context(), userID, sheetID, exerciseID, workoutID)
	})
}

// SetExerciseSets declares the exercise's set count, resizing its records.
func (h *SweatSheetHandler) SetExerciseSets(c *gin.Context) {
	exerciseID, ok := parseObjectIDParam(c, "exerciseId")
	if !ok {
		return
	}
	var req SetSetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	h.edit(c, func(userID, sheetID primitive.ObjectID) (*domain.SweatSheet, error) {
		return h.sheetService.SetExerciseSets(c.Request.Context(), userID, sheetID, exerciseID, req.Sets)
	})
}

// ToggleExerciseCompleted flips the exercise's completion flag.
func (h *SweatSheetHandler) ToggleExerciseCompleted(c *gin.Context) {
	exerciseID, ok := parseObjectIDParam(c, "exerciseId")
	if !ok {
		return
	}
	h.edit(c, func(userID, sheetID primitive.ObjectID) (*domain.SweatSheet, error) {
		return h.sheetService.ToggleExerciseCompleted(c.Request.Context(), userID, sheetID, exerciseID)
	})
}

// UpdateSetRecord applies a partial update to one set record of an exercise.
// An out-of-range index is acknowledged without effect; resized sheets on
// other devices make that a normal occurrence, not a client bug.
func (h *SweatSheetHandler) UpdateSetRecord(c *gin.Context) {
	exerciseID, ok := parseObjectIDParam(c, "exerciseId")
	if !ok {
		return
	}
	setIndex, err := strconv.Atoi(c.Param("setIndex"))
	if err != nil || setIndex < 0 {
		abortWithError(c, http.StatusBadRequest, "Invalid setIndex format")
		return
	}
	var req UpdateSetRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	h.edit(c, func(userID, sheetID primitive.ObjectID) (*domain.SweatSheet, error) {
		var sheet *domain.SweatSheet
		var err error
		ctx := c.Request.Context()
		if req.Reps != nil {
			sheet, err = h.sheetService.SetSetReps(ctx, userID, sheetID, exerciseID, setIndex, *req.Reps)
			if err != nil {
				return nil, err
			}
		}
		if req.Weight != nil {
			sheet, err = h.sheetService.SetSetWeight(ctx, userID, sheetID, exerciseID, setIndex, *req.Weight)
			if err != nil {
				return nil, err
			}
		}
		if req.Completed != nil {
			sheet, err = h.sheetService.SetSetCompleted(ctx, userID, sheetID, exerciseID, setIndex, *req.Completed)
			if err != nil {
				return nil, err
			}
		}
		if sheet == nil {
			return h.sheetService.Get(ctx, userID, sheetID)
		}
		return sheet, nil
	})
}

// --- Helpers ---

// edit runs one sheet mutation and writes the updated document back to the
// client, so every edit response doubles as a state refresh.
func (h *SweatSheetHandler) edit(c *gin.Context, op func(userID, sheetID primitive.ObjectID) (*domain.SweatSheet, error)) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	sheetID, ok := parseObjectIDParam(c, "sheetId")
	if !ok {
		return
	}
	sheet, err := op(userID, sheetID)
	if err != nil {
		h.handleSheetError(c, err)
		return
	}
	c.JSON(http.StatusOK, sheet)
}

// handleSheetError maps service and editor errors onto HTTP statuses.
func (h *SweatSheetHandler) handleSheetError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSweatSheetNotFound),
		errors.Is(err, service.ErrAthleteNotFound),
		errors.Is(err, service.ErrWorkoutNotFound),
		errors.Is(err, program.ErrNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrSweatSheetAccess),
		errors.Is(err, service.ErrSweatSheetNotOwner):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, program.ErrPhaseLimit),
		errors.Is(err, program.ErrSectionFull),
		errors.Is(err, program.ErrSectionAtFloor):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrNotAnAthlete),
		errors.Is(err, service.ErrEmptySheetName),
		errors.Is(err, service.ErrWorkoutCategoryMismatch),
		errors.Is(err, program.ErrInvalidSetCount),
		errors.Is(err, program.ErrInvalidRep):
		abortWithError(c, http.StatusUnprocessableEntity, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
