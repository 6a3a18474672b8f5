package ics

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yourssu/ssu-time/internal/dateparse"
	"github.com/yourssu/ssu-time/internal/model"
)

// DefaultThresholdDays is the span, in calendar days, at which a range
// stops being one long event and becomes start/deadline markers.
const DefaultThresholdDays = 7

const uidDomain = "@yourssu.com"

// ShapeOptions carries the per-source knobs for event shaping.
type ShapeOptions struct {
	Categories  []string
	URL         string
	Description string

	// ThresholdDays defaults to DefaultThresholdDays when <= 0.
	ThresholdDays int

	// Clock stamps CreatedAt; nil means time.Now.
	Clock func() time.Time
}

func (o ShapeOptions) clock() time.Time {
	if o.Clock != nil {
		return o.Clock()
	}
	return time.Now()
}

func (o ShapeOptions) threshold() int {
	if o.ThresholdDays <= 0 {
		return DefaultThresholdDays
	}
	return o.ThresholdDays
}

// Shape converts a resolved date or range plus a title into one or two
// calendar events:
//
//   - single date: one all-day event
//   - range shorter than the threshold: one spanning event, timed (and
//     marked 기간) when the match carried a time-of-day
//   - range at or past the threshold: an all-day 시작 marker at the
//     start and a 마감 event at the end; a timed end becomes a one-hour
//     deadline window instead of a whole day
func Shape(title string, r dateparse.Resolved, opts ShapeOptions) []model.Event {
	if !r.IsRange {
		return []model.Event{opts.newEvent(title, r.Start.Day(), r.Start.Day(), true)}
	}

	days := int(r.End.Day().Sub(r.Start.Day()).Hours() / 24)
	if days < opts.threshold() {
		if r.HasTime() {
			return []model.Event{opts.newEvent(markPeriod(title), r.Start.Time, r.End.Time, false)}
		}
		return []model.Event{opts.newEvent(title, r.Start.Day(), r.End.Day(), true)}
	}

	events := make([]model.Event, 0, 2)
	events = append(events, opts.newEvent(suffixTitle(title, "시작"), r.Start.Day(), r.Start.Day(), true))

	if r.End.HasTime {
		// One-hour deadline window ending at the announced time. The
		// subtraction also handles a midnight deadline, which rolls the
		// window back to 23:00 of the previous calendar day.
		end := r.End.Time
		events = append(events, opts.newEvent(suffixTitle(title, "마감"), end.Add(-time.Hour), end, false))
	} else {
		events = append(events, opts.newEvent(suffixTitle(title, "마감"), r.End.Day(), r.End.Day(), true))
	}
	return events
}

func (o ShapeOptions) newEvent(title string, start, end time.Time, allDay bool) model.Event {
	return model.Event{
		UID:         uuid.NewString() + uidDomain,
		Summary:     title,
		Description: o.Description,
		URL:         o.URL,
		Categories:  append([]string(nil), o.Categories...),
		AllDay:      allDay,
		Start:       start,
		End:         end,
		CreatedAt:   o.clock(),
	}
}

// suffixTitle appends a 시작/마감 marker. A 기간 already inside the
// title is replaced instead, so "수강신청 기간" becomes "수강신청 마감"
// rather than "수강신청 기간 마감".
func suffixTitle(title, word string) string {
	if strings.Contains(title, "기간") {
		return strings.Replace(title, "기간", word, 1)
	}
	return title + " " + word
}

// markPeriod tags a short timed span as a 기간 unless the title already
// says so.
func markPeriod(title string) string {
	if strings.Contains(title, "기간") {
		return title
	}
	return title + " 기간"
}
