package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"drpworkshop/server/internal/domain"
	"drpworkshop/server/internal/repository"
)

// --- Error Definitions ---
var (
	ErrEventNotFound    = errors.New("calendar event not found")
	ErrInvalidEventDate = errors.New("event date must be an ISO date (YYYY-MM-DD)")
	ErrInvalidEventTime = errors.New("event time must be HH:MM")
	ErrInvalidEventType = errors.New("event type must be meeting or availability")
)

// AddEventInput groups the fields of one new calendar event.
type AddEventInput struct {
	Date     string
	Time     string
	Title    string
	Type     domain.EventType
	Duration int
}

// --- Service Interface ---

// CalendarService manages each user's single calendar document. Mutations
// replace the whole events map; each date's list stays sorted by time.
type CalendarService interface {
	Get(ctx context.Context, userID primitive.ObjectID) (*domain.Calendar, error)
	Replace(ctx context.Context, userID primitive.ObjectID, events domain.EventsMap) (*domain.Calendar, error)
	AddEvent(ctx context.Context, userID primitive.ObjectID, input AddEventInput) (*domain.Calendar, error)
	DeleteEvent(ctx context.Context, userID primitive.ObjectID, date, eventID string) (*domain.Calendar, error)
}

// --- Service Implementation ---

type calendarService struct {
	calendarRepo repository.CalendarRepository
}

// NewCalendarService creates a new instance of calendarService.
func NewCalendarService(calendarRepo repository.CalendarRepository) CalendarService {
	return &calendarService{calendarRepo: calendarRepo}
}

// Get returns the user's calendar; a user who never stored events gets an
// empty one.
func (s *calendarService) Get(ctx context.Context, userID primitive.ObjectID) (*domain.Calendar, error) {
	return s.calendarRepo.GetByUserID(ctx, userID)
}

// Replace overwrites the whole events map with the client's copy after
// normalizing it. The stored result is returned as the source of truth.
func (s *calendarService) Replace(ctx context.Context, userID primitive.ObjectID, events domain.EventsMap) (*domain.Calendar, error) {
	if events == nil {
		events = domain.EventsMap{}
	}
	for date, dayEvents := range events {
		if !validISODate(date) {
			return nil, ErrInvalidEventDate
		}
		for i := range dayEvents {
			if err := validateEvent(&dayEvents[i]); err != nil {
				return nil, err
			}
			if dayEvents[i].ID == "" {
				dayEvents[i].ID = uuid.NewString()
			}
		}
	}
	events.Normalize()
	return s.calendarRepo.Put(ctx, userID, events)
}

// AddEvent inserts one event into the user's calendar, keeping the date's
// list sorted by time.
func (s *calendarService) AddEvent(ctx context.Context, userID primitive.ObjectID, input AddEventInput) (*domain.Calendar, error) {
	if !validISODate(input.Date) {
		return nil, ErrInvalidEventDate
	}
	event := domain.Event{
		ID:       uuid.NewString(),
		Time:     input.Time,
		Title:    input.Title,
		Type:     input.Type,
		Duration: input.Duration,
	}
	if err := validateEvent(&event); err != nil {
		return nil, err
	}

	calendar, err := s.calendarRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	calendar.Events.Insert(input.Date, event)
	return s.calendarRepo.Put(ctx, userID, calendar.Events)
}

// DeleteEvent removes one event; the date key disappears when its list
// empties.
func (s *calendarService) DeleteEvent(ctx context.Context, userID primitive.ObjectID, date, eventID string) (*domain.Calendar, error) {
	calendar, err := s.calendarRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !calendar.Events.Remove(date, eventID) {
		return nil, ErrEventNotFound
	}
	return s.calendarRepo.Put(ctx, userID, calendar.Events)
}

// --- Helpers ---

func validISODate(date string) bool {
	_, err := time.Parse(domain.SectionDateLayout, date)
	return err == nil
}

func validateEvent(ev *domain.Event) error {
	if _, err := time.Parse("15:04", ev.Time); err != nil {
		return ErrInvalidEventTime
	}
	if ev.Type != domain.EventMeeting && ev.Type != domain.EventAvailability {
		return ErrInvalidEventType
	}
	return nil
}
