package model

import (
	"strings"
	"time"
)

// Categories used across all sources. STANDARD is the academic
// calendar's fixed category; the other two are inferred from titles.
const (
	CategoryStandard    = "STANDARD"
	CategoryScholarship = "SCHOLARSHIP"
	CategoryEvent       = "EVENT"
)

// Event is the externally serializable calendar event. UID is opaque
// and regenerated per build; identity for de-duplication is Key(), not
// the UID.
type Event struct {
	UID string

	Summary     string
	Description string
	URL         string

	Categories []string

	AllDay bool

	// Start / End in the configured civil timezone. For all-day events
	// only the calendar date is meaningful.
	Start time.Time
	End   time.Time

	CreatedAt time.Time
}

// Key identifies "the same event" across runs: trimmed summary plus
// start and end calendar dates. Two events with equal keys survive a
// merge as one.
type Key struct {
	Name  string
	Start string
	End   string
}

const keyDateLayout = "2006-01-02"

func (e Event) Key() Key {
	start := e.Start.Format(keyDateLayout)
	end := start
	if !e.End.IsZero() {
		end = e.End.Format(keyDateLayout)
	}
	return Key{
		Name:  strings.TrimSpace(e.Summary),
		Start: start,
		End:   end,
	}
}

// HasAnyCategory reports whether the event's category set intersects
// the given subset. An event with no categories matches nothing; an
// empty subset matches nothing.
func (e Event) HasAnyCategory(subset map[string]bool) bool {
	for _, c := range e.Categories {
		if subset[c] {
			return true
		}
	}
	return false
}
