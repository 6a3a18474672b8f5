// Package merge folds the per-source raw calendars into the eight
// category-combination exports under the merged/ prefix. History is
// append-only: events already present in merged_all.ics survive every
// later run, keyed by (name, start date, end date).
package merge

import (
	"errors"
	"fmt"
	"time"

	"github.com/yourssu/ssu-time/internal/config"
	"github.com/yourssu/ssu-time/internal/ics"
	appLog "github.com/yourssu/ssu-time/internal/log"
	"github.com/yourssu/ssu-time/internal/model"
	"github.com/yourssu/ssu-time/internal/store"
)

const historyFile = "merged_all.ics"

// Combination maps one export filename to the category subset it
// carries.
type Combination struct {
	Filename   string
	Categories map[string]bool
}

// Combinations is every category subset, the empty one included, so
// each possible subscription choice has a stable URL.
var Combinations = []Combination{
	{Filename: "merged_empty.ics", Categories: map[string]bool{}},
	{Filename: "merged_standard.ics", Categories: set(model.CategoryStandard)},
	{Filename: "merged_scholarship.ics", Categories: set(model.CategoryScholarship)},
	{Filename: "merged_event.ics", Categories: set(model.CategoryEvent)},
	{Filename: "merged_standard_scholarship.ics", Categories: set(model.CategoryStandard, model.CategoryScholarship)},
	{Filename: "merged_standard_event.ics", Categories: set(model.CategoryStandard, model.CategoryEvent)},
	{Filename: "merged_scholarship_event.ics", Categories: set(model.CategoryScholarship, model.CategoryEvent)},
	{Filename: "merged_all.ics", Categories: set(model.CategoryStandard, model.CategoryScholarship, model.CategoryEvent)},
}

func set(categories ...string) map[string]bool {
	m := make(map[string]bool, len(categories))
	for _, c := range categories {
		m[c] = true
	}
	return m
}

// Summary reports one merge run.
type Summary struct {
	RawFiles    int
	TotalEvents int
	FilesOut    int
}

// Pipeline runs the raw -> merged fold against a store.
type Pipeline struct {
	store *store.Store
	cfg   config.StorageConfig
	loc   *time.Location
}

func NewPipeline(st *store.Store, cfg config.StorageConfig, loc *time.Location) *Pipeline {
	return &Pipeline{store: st, cfg: cfg, loc: loc}
}

// Run loads every raw calendar, folds it with the persisted history,
// and writes all category combinations. A raw file that fails to parse
// is skipped with a warning; a malformed history file degrades to an
// empty history rather than aborting.
func (p *Pipeline) Run() (Summary, error) {
	keys, err := p.store.List(p.cfg.RawPrefix)
	if err != nil {
		return Summary{}, fmt.Errorf("merge: list raw: %w", err)
	}
	if len(keys) == 0 {
		appLog.Warn("no raw calendars to merge", "prefix", p.cfg.RawPrefix)
	}

	var combined []model.Event
	for _, key := range keys {
		body, err := p.store.Get(key)
		if err != nil {
			appLog.Warn("raw calendar read failed", "key", key)
			continue
		}
		events, err := ics.Parse(body, p.loc)
		if err != nil {
			appLog.Warn("raw calendar parse failed", "key", key)
			continue
		}
		combined = ics.Merge(combined, events)
		appLog.Info("raw calendar loaded", "key", key, "events", len(events))
	}

	existing := p.loadHistory()

	// Existing events come first so a re-crawled duplicate never
	// displaces what history already holds.
	all := ics.Merge(existing, combined)
	if len(all) == 0 {
		appLog.Warn("nothing to merge, leaving outputs untouched")
		return Summary{RawFiles: len(keys)}, nil
	}

	written := 0
	for _, combo := range Combinations {
		filtered := ics.FilterByCategories(all, combo.Categories)
		body := ics.Serialize(filtered)
		key := p.cfg.MergedPrefix + combo.Filename
		if err := p.store.Put(key, []byte(body)); err != nil {
			return Summary{}, fmt.Errorf("merge: write %s: %w", key, err)
		}
		written++
		appLog.Info("merged calendar written", "key", key, "events", len(filtered))
	}

	return Summary{RawFiles: len(keys), TotalEvents: len(all), FilesOut: written}, nil
}

func (p *Pipeline) loadHistory() []model.Event {
	key := p.cfg.MergedPrefix + historyFile
	body, err := p.store.Get(key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			appLog.Info("no merge history yet", "key", key)
		} else {
			appLog.Warn("merge history read failed", "key", key)
		}
		return nil
	}
	events, err := ics.Parse(body, p.loc)
	if err != nil {
		appLog.Warn("merge history unparseable, starting empty", "key", key)
		return nil
	}
	appLog.Info("merge history loaded", "key", key, "events", len(events))
	return events
}
