package ics

import (
	"bytes"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "github.com/yourssu/ssu-time/internal/log"
	"github.com/yourssu/ssu-time/internal/model"
)

const productID = "-//yourssu//ssu-time//KO"

// Serialize assembles events into a VCALENDAR and renders the iCalendar
// text. Within one assembly pass duplicates are kept as-is; only Merge
// de-duplicates.
//
// All-day events are written with VALUE=DATE and an exclusive DTEND
// (inclusive end + 1 day), per RFC 5545; Parse reverses this so the
// model always holds inclusive dates.
func Serialize(events []model.Event) string {
	cal := ical.NewCalendar()
	cal.SetProductId(productID)
	cal.SetMethod(ical.MethodPublish)

	for _, e := range events {
		ve := cal.AddEvent(e.UID)

		ve.SetProperty(ical.ComponentPropertySummary, e.Summary)
		if e.AllDay {
			ve.SetAllDayStartAt(e.Start)
			ve.SetAllDayEndAt(e.End.AddDate(0, 0, 1))
		} else {
			ve.SetStartAt(e.Start)
			ve.SetEndAt(e.End)
		}
		if len(e.Categories) > 0 {
			ve.SetProperty(ical.ComponentPropertyCategories, strings.Join(e.Categories, ","))
		}
		if e.URL != "" {
			ve.SetProperty(ical.ComponentPropertyUrl, e.URL)
		}
		if e.Description != "" {
			ve.SetProperty(ical.ComponentPropertyDescription, e.Description)
		}

		created := e.CreatedAt
		if created.IsZero() {
			created = time.Now()
		}
		ve.SetCreatedTime(created)
		ve.SetDtStampTime(created)
	}

	return cal.Serialize()
}

// Parse reads a persisted calendar back into model events, anchoring
// date-times to loc. Individual malformed VEVENTs are skipped with a
// warning; only an unreadable calendar is an error.
func Parse(body []byte, loc *time.Location) ([]model.Event, error) {
	if len(body) == 0 {
		return nil, errors.New("empty calendar body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	events := make([]model.Event, 0)
	for _, ve := range cal.Events() {
		e, perr := parseVEvent(ve, loc)
		if perr != nil {
			appLog.Warn("skipping malformed vevent", "err", perr)
			continue
		}
		events = append(events, e)
	}
	return events, nil
}

func parseVEvent(ve *ical.VEvent, loc *time.Location) (model.Event, error) {
	var out model.Event

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uidProp.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyUrl); p != nil {
		out.URL = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyCategories); p != nil && p.Value != "" {
		for _, c := range strings.Split(p.Value, ",") {
			if c = strings.TrimSpace(c); c != "" {
				out.Categories = append(out.Categories, c)
			}
		}
	}

	startProp := ve.GetProperty(ical.ComponentPropertyDtStart)
	if startProp == nil || startProp.Value == "" {
		return out, errors.New("missing DTSTART")
	}
	start, startAllDay, err := parseICSTime(startProp.Value, loc)
	if err != nil {
		return out, err
	}
	out.Start = start
	out.AllDay = startAllDay

	// A DTSTART with VALUE=DATE is all-day even if the value somehow
	// carries a time component.
	if params := startProp.ICalParameters; params != nil {
		if vs, ok := params["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
			out.AllDay = true
		}
	}

	out.End = out.Start
	if endProp := ve.GetProperty(ical.ComponentPropertyDtEnd); endProp != nil && endProp.Value != "" {
		end, _, err := parseICSTime(endProp.Value, loc)
		if err != nil {
			return out, err
		}
		if out.AllDay {
			// Wire DTEND is exclusive for all-day events.
			end = end.AddDate(0, 0, -1)
		}
		out.End = end
	}

	if p := ve.GetProperty(ical.ComponentPropertyCreated); p != nil {
		if t, _, err := parseICSTime(p.Value, loc); err == nil {
			out.CreatedAt = t
		}
	}

	return out, nil
}

// parseICSTime parses the basic DATE / DATE-TIME / UTC forms. The bool
// result reports the date-only (all-day) form.
func parseICSTime(v string, loc *time.Location) (time.Time, bool, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false, errors.New("empty time value")
	}

	// UTC form, e.g. 20250101T090000Z.
	if strings.HasSuffix(v, "Z") {
		t, err := time.Parse("20060102T150405Z", v)
		if err != nil {
			return time.Time{}, false, err
		}
		return t.In(loc), false, nil
	}

	// Floating local date-time, e.g. 20250101T090000.
	if strings.Contains(v, "T") {
		t, err := time.ParseInLocation("20060102T150405", v, loc)
		return t, false, err
	}

	// Date-only (all-day), e.g. 20250101.
	t, err := time.ParseInLocation("20060102", v, loc)
	return t, true, err
}
