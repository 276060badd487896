package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"drpworkshop/server/internal/domain"
)

func newTestCalendarService() (CalendarService, primitive.ObjectID) {
	return NewCalendarService(newFakeCalendarRepo()), primitive.NewObjectID()
}

func TestCalendar_EmptyByDefault(t *testing.T) {
	svc, userID := newTestCalendarService()
	cal, err := svc.Get(context.Background(), userID)
	require.NoError(t, err)
	require.Empty(t, cal.Events)
}

func TestAddEvent_KeepsDaySortedByTime(t *testing.T) {
	svc, userID := newTestCalendarService()
	ctx := context.Background()

	_, err := svc.AddEvent(ctx, userID, AddEventInput{
		Date: "2026-09-01", Time: "14:00", Title: "Team call", Type: domain.EventMeeting, Duration: 30,
	})
	require.NoError(t, err)
	cal, err := svc.AddEvent(ctx, userID, AddEventInput{
		Date: "2026-09-01", Time: "09:00", Title: "Open slot", Type: domain.EventAvailability, Duration: 60,
	})
	require.NoError(t, err)

	day := cal.Events["2026-09-01"]
	require.Len(t, day, 2)
	require.Equal(t, "09:00", day[0].Time)
	require.Equal(t, "14:00", day[1].Time)
	require.NotEmpty(t, day[0].ID)
}

func TestAddEvent_Validation(t *testing.T) {
	svc, userID := newTestCalendarService()
	ctx := context.Background()

	_, err := svc.AddEvent(ctx, userID, AddEventInput{Date: "Sept 1", Time: "09:00", Type: domain.EventMeeting})
	require.ErrorIs(t, err, ErrInvalidEventDate)

	_, err = svc.AddEvent(ctx, userID, AddEventInput{Date: "2026-09-01", Time: "9am", Type: domain.EventMeeting})
	require.ErrorIs(t, err, ErrInvalidEventTime)

	_, err = svc.AddEvent(ctx, userID, AddEventInput{Date: "2026-09-01", Time: "09:00", Type: domain.EventType("party")})
	require.ErrorIs(t, err, ErrInvalidEventType)
}

func TestDeleteEvent_DropsEmptyDateKey(t *testing.T) {
	svc, userID := newTestCalendarService()
	ctx := context.Background()

	cal, err := svc.AddEvent(ctx, userID, AddEventInput{
		Date: "2026-09-01", Time: "09:00", Title: "Open slot", Type: domain.EventAvailability,
	})
	require.NoError(t, err)
	eventID := cal.Events["2026-09-01"][0].ID

	cal, err = svc.DeleteEvent(ctx, userID, "2026-09-01", eventID)
	require.NoError(t, err)
	_, exists := cal.Events["2026-09-01"]
	require.False(t, exists)

	_, err = svc.DeleteEvent(ctx, userID, "2026-09-01", eventID)
	require.ErrorIs(t, err, ErrEventNotFound)
}

func TestReplace_NormalizesClientCopy(t *testing.T) {
	svc, userID := newTestCalendarService()
	ctx := context.Background()

	events := domain.EventsMap{
		"2026-09-01": {
			{Time: "14:00", Title: "Later", Type: domain.EventMeeting},
			{Time: "09:00", Title: "Earlier", Type: domain.EventAvailability},
		},
		"2026-09-02": {},
	}
	cal, err := svc.Replace(ctx, userID, events)
	require.NoError(t, err)

	day := cal.Events["2026-09-01"]
	require.Equal(t, "09:00", day[0].Time)
	require.NotEmpty(t, day[0].ID) // IDs are assigned server-side
	_, exists := cal.Events["2026-09-02"]
	require.False(t, exists)
}

func TestReplace_RejectsBadDate(t *testing.T) {
	svc, userID := newTestCalendarService()
	_, err := svc.Replace(context.Background(), userID, domain.EventsMap{
		"01/09/2026": {{Time: "09:00", Type: domain.EventMeeting}},
	})
	require.ErrorIs(t, err, ErrInvalidEventDate)
}
