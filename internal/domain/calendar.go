// internal/domain/calendar.go
package domain

import (
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventType distinguishes booked meetings from open availability slots.
type EventType string

const (
	EventMeeting      EventType = "meeting"
	EventAvailability EventType = "availability"
)

// Event is one calendar entry on a single date.
type Event struct {
	ID       string    `bson:"id" json:"id"`     // uuid, assigned on insert
	Time     string    `bson:"time" json:"time"` // "HH:MM", zero-padded 24-hour
	Title    string    `bson:"title" json:"title"`
	Type     EventType `bson:"type" json:"type"`
	Duration int       `bson:"duration" json:"duration"` // Minutes
}

// EventsMap holds a user's events keyed by ISO date string ("2006-01-02").
// Each date's list stays sorted by time ascending; lexicographic comparison
// is correct for zero-padded 24-hour times.
type EventsMap map[string][]Event

// Insert adds an event under date and re-sorts that date's list.
func (m EventsMap) Insert(date string, ev Event) {
	events := append(m[date], ev)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Time < events[j].Time
	})
	m[date] = events
}

// Remove deletes the event with the given id from date. The date key is
// dropped entirely when its list empties. Returns false if no event matched.
func (m EventsMap) Remove(date, eventID string) bool {
	events, ok := m[date]
	if !ok {
		return false
	}
	kept := events[:0]
	removed := false
	for _, ev := range events {
		if ev.ID == eventID {
			removed = true
			continue
		}
		kept = append(kept, ev)
	}
	if !removed {
		return false
	}
	if len(kept) == 0 {
		delete(m, date)
	} else {
		m[date] = kept
	}
	return true
}

// Normalize re-sorts every date's list and drops empty date keys. Used when
// accepting a whole-map replacement from a client.
func (m EventsMap) Normalize() {
	for date, events := range m {
		if len(events) == 0 {
			delete(m, date)
			continue
		}
		sort.SliceStable(events, func(i, j int) bool {
			return events[i].Time < events[j].Time
		})
		m[date] = events
	}
}

// Calendar is the single per-user event document.
type Calendar struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"` // One calendar per user
	Events    EventsMap          `bson:"events" json:"events"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
