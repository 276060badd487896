package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"drpworkshop/server/internal/service"
)

// TeamHandler holds the team service dependency.
type TeamHandler struct {
	teamService service.TeamService
}

// NewTeamHandler creates a new TeamHandler.
func NewTeamHandler(teamService service.TeamService) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

// --- Request Structs ---

type UpdateProfileRequest struct {
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	PhoneNumber *string `json:"phoneNumber"`
}

type PrepareAvatarRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type ConfirmAvatarRequest struct {
	ObjectKey string `json:"objectKey" binding:"required"`
}

// --- Handler Methods ---

// ListMembers returns every user's profile.
func (h *TeamHandler) ListMembers(c *gin.Context) {
	members, err := h.teamService.ListMembers(c.Request.Context())
	if err != nil {
		h.handleTeamError(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

// ListAthletes returns athlete profiles only (assignment targets).
func (h *TeamHandler) ListAthletes(c *gin.Context) {
	athletes, err := h.teamService.ListAthletes(c.Request.Context())
	if err != nil {
		h.handleTeamError(c, err)
		return
	}
	c.JSON(http.StatusOK, athletes)
}

// GetMe returns the caller's own profile.
func (h *TeamHandler) GetMe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	profile, err := h.teamService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.handleTeamError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GetProfile returns another user's profile by ID.
func (h *TeamHandler) GetProfile(c *gin.Context) {
	userID, ok := parseObjectIDParam(c, "userId")
	if !ok {
		return
	}
	profile, err := h.teamService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.handleTeamError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateMe applies partial profile edits for the caller.
func (h *TeamHandler) UpdateMe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	profile, err := h.teamService.UpdateProfile(c.Request.Context(), userID, service.UpdateProfileInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		h.handleTeamError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// PrepareAvatar mints a presigned upload URL for a new avatar image.
func (h *TeamHandler) PrepareAvatar(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req PrepareAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	upload, err := h.teamService.PrepareAvatarUpload(c.Request.Context(), userID, req.ContentType)
	if err != nil {
		h.handleTeamError(c, err)
		return
	}
	c.JSON(http.StatusOK, upload)
}

// ConfirmAvatar records the uploaded object as the caller's avatar.
func (h *TeamHandler) ConfirmAvatar(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req ConfirmAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	profile, err := h.teamService.ConfirmAvatar(c.Request.Context(), userID, req.ObjectKey)
	if err != nil {
		h.handleTeamError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// --- Helpers ---

func (h *TeamHandler) handleTeamError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrUserNotFound) {
		abortWithError(c, http.StatusNotFound, err.Error())
		return
	}
	abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
}
