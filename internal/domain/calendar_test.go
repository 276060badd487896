package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEventsMap_InsertSortsByTime(t *testing.T) {
	events := EventsMap{}
	events.Insert("2026-03-02", Event{ID: "a", Time: "14:00", Title: "Consult", Type: EventMeeting, Duration: 60})
	events.Insert("2026-03-02", Event{ID: "b", Time: "09:00", Title: "Open slot", Type: EventAvailability, Duration: 30})
	events.Insert("2026-03-02", Event{ID: "c", Time: "11:30", Title: "Session", Type: EventMeeting, Duration: 45})

	day := events["2026-03-02"]
	require.Len(t, day, 3)
	require.Equal(t, []string{"09:00", "11:30", "14:00"}, []string{day[0].Time, day[1].Time, day[2].Time})
}

func TestEventsMap_InsertIsStableForEqualTimes(t *testing.T) {
	events := EventsMap{}
	events.Insert("2026-03-02", Event{ID: "first", Time: "09:00"})
	events.Insert("2026-03-02", Event{ID: "second", Time: "09:00"})

	day := events["2026-03-02"]
	require.Equal(t, "first", day[0].ID)
	require.Equal(t, "second", day[1].ID)
}

func TestEventsMap_RemoveDropsEmptyDateKey(t *testing.T) {
	events := EventsMap{}
	events.Insert("2026-03-02", Event{ID: "a", Time: "09:00"})
	events.Insert("2026-03-02", Event{ID: "b", Time: "10:00"})

	require.True(t, events.Remove("2026-03-02", "a"))
	require.Len(t, events["2026-03-02"], 1)

	require.True(t, events.Remove("2026-03-02", "b"))
	_, ok := events["2026-03-02"]
	require.False(t, ok, "date key must be dropped once its list empties")
}

func TestEventsMap_RemoveUnknown(t *testing.T) {
	events := EventsMap{}
	events.Insert("2026-03-02", Event{ID: "a", Time: "09:00"})

	require.False(t, events.Remove("2026-03-02", "zzz"))
	require.False(t, events.Remove("2026-03-03", "a"))
	require.Len(t, events["2026-03-02"], 1)
}

func TestEventsMap_Normalize(t *testing.T) {
	events := EventsMap{
		"2026-03-02": {
			{ID: "b", Time: "15:00"},
			{ID: "a", Time: "07:45"},
		},
		"2026-03-03": {},
	}
	events.Normalize()

	require.Equal(t, "07:45", events["2026-03-02"][0].Time)
	_, ok := events["2026-03-03"]
	require.False(t, ok)
}
