package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"drpworkshop/server/internal/domain"
	"drpworkshop/server/internal/service"
)

// CalendarHandler holds the calendar service dependency.
type CalendarHandler struct {
	calendarService service.CalendarService
}

// NewCalendarHandler creates a new CalendarHandler.
func NewCalendarHandler(calendarService service.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendarService: calendarService}
}

// --- Request Structs ---

type AddEventRequest struct {
	Date     string           `json:"date" binding:"required"`
	Time     string           `json:"time" binding:"required"`
	Title    string           `json:"title" binding:"required"`
	Type     domain.EventType `json:"type" binding:"required,oneof=meeting availability"`
	Duration int              `json:"duration" binding:"min=0"`
}

type ReplaceCalendarRequest struct {
	Events domain.EventsMap `json:"events"`
}

// --- Handler Methods ---

// GetCalendar returns the caller's calendar, empty if never written.
func (h *CalendarHandler) GetCalendar(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	calendar, err := h.calendarService.Get(c.Request.Context(), userID)
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}
	c.JSON(http.StatusOK, calendar)
}

// ReplaceCalendar overwrites the whole events map with the client's copy.
// The stored, normalized result comes back as the new source of truth.
func (h *CalendarHandler) ReplaceCalendar(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req ReplaceCalendarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	calendar, err := h.calendarService.Replace(c.Request.Context(), userID, req.Events)
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}
	c.JSON(http.StatusOK, calendar)
}

// AddEvent inserts one event.
func (h *CalendarHandler) AddEvent(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req AddEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	calendar, err := h.calendarService.AddEvent(c.Request.Context(), userID, service.AddEventInput{
		Date:     req.Date,
		Time:     req.Time,
		Title:    req.Title,
		Type:     req.Type,
		Duration: req.Duration,
	})
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}
	c.JSON(http.StatusCreated, calendar)
}

// DeleteEvent removes one event from a date.
func (h *CalendarHandler) DeleteEvent(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	date := c.Param("date")
	eventID := c.Param("eventId")

	calendar, err := h.calendarService.DeleteEvent(c.Request.Context(), userID, date, eventID)
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}
	c.JSON(http.StatusOK, calendar)
}

// --- Helpers ---

func (h *CalendarHandler) handleCalendarError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEventNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidEventDate),
		errors.Is(err, service.ErrInvalidEventTime),
		errors.Is(err, service.ErrInvalidEventType):
		abortWithError(c, http.StatusUnprocessableEntity, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
