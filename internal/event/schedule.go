package event

import (
	"regexp"
	"sort"

	"github.com/yourssu/ssu-time/internal/dateparse"
)

// ScheduleEvent is one titled occurrence produced from a schedule line
// in a scholarship notice, ready for shaping into calendar events.
type ScheduleEvent struct {
	Title      string
	Occurrence dateparse.Resolved
}

var applicationLabelRe = regexp.MustCompile(`(신청|접수|모집|추천|제출)`)

// IsApplicationLabel reports whether a schedule label describes an
// application-style period (vs. e.g. 서류심사).
func IsApplicationLabel(label string) bool {
	return applicationLabelRe.MatchString(label)
}

// BuildScheduleEvents turns one extracted schedule line (a label plus
// the date mentions found in its block) into titled occurrences:
//
//   - one date: a single 마감 deadline
//   - an application-period span within the threshold: one 신청기간 span
//   - a longer application span: separate 신청 시작 / 신청 마감 markers
//   - non-application labels keep the label word in the same shapes
//
// The split boundary agrees with the shaper's: an inclusive day count
// above the threshold is the same condition as an exclusive count at or
// past it.
func BuildScheduleEvents(foundation, label string, dates []dateparse.Date, thresholdDays int) []ScheduleEvent {
	if len(dates) == 0 {
		return nil
	}

	sorted := append([]dateparse.Date(nil), dates...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	start := sorted[0]
	end := sorted[len(sorted)-1]
	base := foundation + " 장학금"

	single := func(title string, d dateparse.Date) ScheduleEvent {
		return ScheduleEvent{Title: title, Occurrence: dateparse.Resolved{Start: d, End: d}}
	}
	span := func(title string) ScheduleEvent {
		return ScheduleEvent{Title: title, Occurrence: dateparse.Resolved{Start: start, End: end, IsRange: true}}
	}

	if len(sorted) == 1 || start.Day().Equal(end.Day()) {
		return []ScheduleEvent{single(base+" 마감", start)}
	}

	deltaDays := int(end.Day().Sub(start.Day()).Hours()/24) + 1
	if IsApplicationLabel(label) {
		if deltaDays <= thresholdDays {
			return []ScheduleEvent{span(base + " 신청기간")}
		}
		return []ScheduleEvent{
			single(base+" 신청 시작", start),
			single(base+" 신청 마감", end),
		}
	}

	if deltaDays <= thresholdDays {
		return []ScheduleEvent{span(base + " " + label)}
	}
	return []ScheduleEvent{
		single(base+" "+label+" 시작", start),
		single(base+" "+label+" 마감", end),
	}
}
