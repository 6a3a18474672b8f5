package ics

import (
	"github.com/yourssu/ssu-time/internal/model"
)

// Merge combines two event lists. Everything in a survives; an event
// from b is added only when no event in a shares its identity key.
// Once recorded under a given (name, start, end), an event can never be
// removed or replaced by a later run; only new distinct events appear.
func Merge(a, b []model.Event) []model.Event {
	out := make([]model.Event, 0, len(a)+len(b))
	seen := make(map[model.Key]bool, len(a))

	for _, e := range a {
		out = append(out, e)
		seen[e.Key()] = true
	}
	for _, e := range b {
		if seen[e.Key()] {
			continue
		}
		out = append(out, e)
		seen[e.Key()] = true
	}
	return out
}

// FilterByCategories keeps the events whose category set intersects the
// subset. The empty subset selects nothing, whatever the input; an
// event without categories is never selected.
func FilterByCategories(events []model.Event, subset map[string]bool) []model.Event {
	if len(subset) == 0 {
		return []model.Event{}
	}
	out := make([]model.Event, 0, len(events))
	for _, e := range events {
		if e.HasAnyCategory(subset) {
			out = append(out, e)
		}
	}
	return out
}
