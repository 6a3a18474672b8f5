package dateparse

import (
	"regexp"
	"strings"
)

var (
	parenWeekdayRe  = regexp.MustCompile(`\(\s*[월화수목금토일]\s*\)`)
	suffixWeekdayRe = regexp.MustCompile(`[월화수목금토일]요일`)
	spacesRe        = regexp.MustCompile(`\s+`)
	fromWordRe      = regexp.MustCompile(`\s*부터\s*`)
	untilWordRe     = regexp.MustCompile(`\s*까지`)
)

// StripWeekdays removes parenthesized day-of-week glyphs ("(월)") and
// "X요일" forms. Announcement text decorates dates with weekdays that
// carry no information the date itself doesn't.
func StripWeekdays(s string) string {
	s = parenWeekdayRe.ReplaceAllString(s, "")
	return suffixWeekdayRe.ReplaceAllString(s, "")
}

// ReplaceRangeWords rewrites the "A 부터 B 까지" connective into the
// tilde form the range grammars understand: "부터" becomes "~" and
// "까지" is dropped.
func ReplaceRangeWords(s string) string {
	s = fromWordRe.ReplaceAllString(s, "~")
	return untilWordRe.ReplaceAllString(s, "")
}

// CollapseSpaces collapses runs of whitespace into a single space and
// trims the ends.
func CollapseSpaces(s string) string {
	return strings.TrimSpace(spacesRe.ReplaceAllString(s, " "))
}

// TightenTildes normalizes range-separator variants (" ~ ", "~ ", " ~")
// to a bare "~". Used by the academic-calendar date cells, which are
// split on the tilde directly; the generic matcher works on the
// weekday-stripped text instead and tolerates spaces around the tilde
// in its own regexps.
func TightenTildes(s string) string {
	s = strings.ReplaceAll(s, " ~ ", "~")
	s = strings.ReplaceAll(s, "~ ", "~")
	s = strings.ReplaceAll(s, " ~", "~")
	return strings.TrimSpace(s)
}
