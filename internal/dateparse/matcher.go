package dateparse

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

// Date is a resolved point in time in the matcher's civil timezone.
// HasTime distinguishes "2025-11-03" from "2025-11-03 09:00".
type Date struct {
	Time    time.Time
	HasTime bool
}

// Day returns the calendar day with the time-of-day zeroed.
func (d Date) Day() time.Time {
	t := d.Time
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Resolved is the outcome of a successful date search: either a single
// date or a (start, end) range with Start <= End.
type Resolved struct {
	Start   Date
	End     Date
	IsRange bool
}

// HasTime reports whether either endpoint carries a time-of-day.
func (r Resolved) HasTime() bool {
	return r.Start.HasTime || r.End.HasTime
}

// rangeCombo is one pre-built "left ~ right" grammar combination.
type rangeCombo struct {
	re       *regexp.Regexp
	left     *Pattern
	right    *Pattern // nil when the right side is a bare HH:MM
	bareTime bool
}

// Matcher searches free text for date expressions against the
// priority-ordered pattern table. A match whose (end) date falls before
// the current calendar day is suppressed: stale announcements resolve
// to "not found", not to past events.
type Matcher struct {
	patterns []*Pattern
	combos   []rangeCombo

	loc *time.Location
	now func() time.Time
}

// NewMatcher builds a matcher over DefaultPatterns anchored to loc.
// now is injectable so staleness is testable against a fixed clock; nil
// means time.Now.
func NewMatcher(loc *time.Location, now func() time.Time) *Matcher {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	m := &Matcher{patterns: DefaultPatterns, loc: loc, now: now}
	m.combos = buildCombos(m.patterns)
	return m
}

// buildCombos produces the flat priority-ordered list of range
// grammars: for each left pattern, every right pattern in table order,
// then the bare-time variant. Built once, not per call.
func buildCombos(patterns []*Pattern) []rangeCombo {
	combos := make([]rangeCombo, 0, len(patterns)*(len(patterns)+1))
	for _, a := range patterns {
		for _, b := range patterns {
			combos = append(combos, rangeCombo{
				re:    regexp.MustCompile(a.src + `\s*~\s*` + b.src),
				left:  a,
				right: b,
			})
		}
		combos = append(combos, rangeCombo{
			re:       regexp.MustCompile(a.src + `\s*~\s*` + bareTimeSrc),
			left:     a,
			bareTime: true,
		})
	}
	return combos
}

// FromText is the entry point used by the crawlers: it strips weekday
// annotations, rewrites the 부터/까지 connective to the tilde form,
// prefers a range match when the text contains a tilde, and falls back
// to a single-date search. ok=false means no usable date: either
// nothing matched or the match was stale.
func (m *Matcher) FromText(text string) (Resolved, bool) {
	text = CollapseSpaces(ReplaceRangeWords(StripWeekdays(text)))

	if strings.Contains(text, "~") {
		if r, ok := m.findRange(text); ok {
			return r, true
		}
	}
	if d, ok := m.findSingle(text); ok {
		return Resolved{Start: d, End: d}, true
	}
	return Resolved{}, false
}

func (m *Matcher) findSingle(text string) (Date, bool) {
	for _, p := range m.patterns {
		loc := p.re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		c, ok := p.parse(text[loc[0]:loc[1]])
		if !ok {
			continue
		}
		d := m.materialize(c)
		if m.stale(d) {
			// A regex matched, but the date is in the past: deliberate
			// suppression, reported as "no match".
			return Date{}, false
		}
		return d, true
	}
	return Date{}, false
}

func (m *Matcher) findRange(text string) (Resolved, bool) {
	for _, combo := range m.combos {
		match := combo.re.FindString(text)
		if match == "" {
			continue
		}

		leftStr, rightStr, found := strings.Cut(match, "~")
		if !found {
			continue
		}
		leftC, ok := combo.left.parse(strings.TrimSpace(leftStr))
		if !ok {
			continue
		}

		var rightC components
		if combo.bareTime {
			groups := bareTimeRe.FindStringSubmatch(strings.TrimSpace(rightStr))
			if groups == nil {
				continue
			}
			rightC = components{hasTime: true}
			rightC.hour = atoiSafe(groups[1])
			rightC.minute = atoiSafe(groups[2])
			if rightC.hour > 23 || rightC.minute > 59 {
				continue
			}
		} else {
			rightC, ok = combo.right.parse(strings.TrimSpace(rightStr))
			if !ok {
				continue
			}
		}

		r, ok := m.resolveRange(leftC, rightC, combo.bareTime)
		if !ok {
			return Resolved{}, false
		}
		return r, true
	}
	return Resolved{}, false
}

// resolveRange turns two parsed sides into an ordered range, restoring
// omitted years and applying the rollover heuristics.
func (m *Matcher) resolveRange(leftC, rightC components, bareTime bool) (Resolved, bool) {
	left := m.materialize(leftC)

	if bareTime {
		// "Same day, later time": the right side inherits the left's
		// calendar date.
		rightC.year = left.Time.Year()
		rightC.month = int(left.Time.Month())
		rightC.day = left.Time.Day()
		rightC.yearExplicit = true
	}
	right := m.materialize(rightC)

	// Documented correction: an end parsed with a smaller year than an
	// explicitly later start inherits the start's year.
	if !left.Time.Before(right.Time) && left.Time.Year() > right.Time.Year() {
		right.Time = withYear(right.Time, left.Time.Year())
	}

	// An inferred-year end still behind the start means the range
	// crosses a calendar-year boundary ("12월 30일 ~ 1월 5일"); roll the
	// end forward one year to restore ordering.
	if right.Time.Before(left.Time) && !rightC.yearExplicit {
		right.Time = withYear(right.Time, left.Time.Year()+1)
	}

	// Contradictory explicit years: refuse to emit a reversed range.
	if right.Time.Before(left.Time) {
		return Resolved{}, false
	}

	if m.stale(right) {
		return Resolved{}, false
	}
	return Resolved{Start: left, End: right, IsRange: true}, true
}

// materialize builds a Date in the matcher's zone, defaulting an
// omitted year to the current calendar year.
func (m *Matcher) materialize(c components) Date {
	year := c.year
	if !c.yearExplicit {
		year = m.now().In(m.loc).Year()
	}
	return Date{
		Time:    time.Date(year, time.Month(c.month), c.day, c.hour, c.minute, 0, 0, m.loc),
		HasTime: c.hasTime,
	}
}

func (m *Matcher) stale(d Date) bool {
	now := m.now().In(m.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, m.loc)
	return d.Day().Before(today)
}

// FindAllDates returns every non-overlapping single-date mention in the
// block, in text order; overlapping candidates are settled by pattern
// priority. No staleness filtering: callers window-filter whole
// schedules instead. Used by the scholarship schedule extractor.
func (m *Matcher) FindAllDates(text string) []Date {
	text = CollapseSpaces(ReplaceRangeWords(StripWeekdays(text)))

	type candidate struct {
		start, end int
		priority   int
		c          components
	}
	var cands []candidate
	for pri, p := range m.patterns {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			c, ok := p.parse(text[loc[0]:loc[1]])
			if !ok {
				continue
			}
			cands = append(cands, candidate{start: loc[0], end: loc[1], priority: pri, c: c})
		}
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].start != cands[j].start {
			return cands[i].start < cands[j].start
		}
		return cands[i].priority < cands[j].priority
	})

	var out []Date
	lastEnd := -1
	for _, cand := range cands {
		if cand.start < lastEnd {
			continue
		}
		out = append(out, m.materialize(cand.c))
		lastEnd = cand.end
	}
	return out
}

// FirstDateIndex returns the byte offset of the earliest date or
// month-only mention in text, or -1 when nothing matches. Callers that
// slice the text by the returned offset must pass it already
// normalized.
func (m *Matcher) FirstDateIndex(text string) int {
	best := -1
	for _, p := range m.patterns {
		loc := p.re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		if best == -1 || loc[0] < best {
			best = loc[0]
		}
	}
	if loc := monthOnlyRe.FindStringIndex(text); loc != nil {
		if best == -1 || loc[0] < best {
			best = loc[0]
		}
	}
	return best
}

// FindMonthRange matches "YYYY.MM월" and expands it to the first and
// last day of that month.
func (m *Matcher) FindMonthRange(text string) (Resolved, bool) {
	groups := monthOnlyRe.FindStringSubmatch(text)
	if groups == nil {
		return Resolved{}, false
	}
	year := atoiSafe(groups[1])
	month := atoiSafe(groups[2])
	if month < 1 || month > 12 {
		return Resolved{}, false
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, m.loc)
	last := first.AddDate(0, 1, -1)
	return Resolved{Start: Date{Time: first}, End: Date{Time: last}, IsRange: true}, true
}

// WindowRange is the forward-looking retention window: the first day of
// the current month through the last moment of the month `months` ahead.
func WindowRange(now time.Time, months int, loc *time.Location) (time.Time, time.Time) {
	now = now.In(loc)
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	// Last day of the target month, 23:59:59.
	end := start.AddDate(0, months+1, 0).Add(-time.Second)
	return start, end
}

// InWindow reports start <= t <= end.
func InWindow(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

func withYear(t time.Time, year int) time.Time {
	return time.Date(year, t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, t.Location())
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}
