package dateparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Pattern is a date-expression grammar written with strftime-style
// placeholders plus literal separators:
//
//	%Y 4-digit year   %y 2-digit year
//	%m month  %d day  %H hour  %M minute (1-2 digits each)
//	%a single day-of-week glyph (월..일)
//
// Literal spaces match any run of whitespace. Patterns are compiled
// once at init; the process-wide table below is ordered from most to
// least specific, and that order is the matching priority.
type Pattern struct {
	Template string

	re  *regexp.Regexp
	src string // regex source, reused to build range combinations

	fields []rune // capture-group order: subset of Y y m d H M

	hasYear      bool
	twoDigitYear bool
	hasDate      bool
	hasTime      bool
}

// fields parsed out of one matched date expression, before year
// restoration and timezone anchoring.
type components struct {
	year, month, day, hour, minute int

	yearExplicit bool
	hasTime      bool
}

// MustCompile compiles a placeholder template, panicking on malformed
// templates. Only used for the process-wide tables.
func MustCompile(template string) *Pattern {
	p, err := compile(template)
	if err != nil {
		panic(err)
	}
	return p
}

func compile(template string) (*Pattern, error) {
	p := &Pattern{Template: template}

	var sb strings.Builder
	runes := []rune(template)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '%' && i+1 < len(runes) {
			i++
			switch runes[i] {
			case 'Y':
				sb.WriteString(`(\d{4})`)
				p.fields = append(p.fields, 'Y')
				p.hasYear = true
			case 'y':
				sb.WriteString(`(\d{2})`)
				p.fields = append(p.fields, 'y')
				p.hasYear = true
				p.twoDigitYear = true
			case 'm':
				sb.WriteString(`(\d{1,2})`)
				p.fields = append(p.fields, 'm')
				p.hasDate = true
			case 'd':
				sb.WriteString(`(\d{1,2})`)
				p.fields = append(p.fields, 'd')
				p.hasDate = true
			case 'H':
				sb.WriteString(`(\d{1,2})`)
				p.fields = append(p.fields, 'H')
				p.hasTime = true
			case 'M':
				sb.WriteString(`(\d{1,2})`)
				p.fields = append(p.fields, 'M')
				p.hasTime = true
			case 'a':
				sb.WriteString(`[월화수목금토일]`)
			default:
				return nil, fmt.Errorf("dateparse: unknown placeholder %%%c in %q", runes[i], template)
			}
			continue
		}
		if r == ' ' {
			sb.WriteString(`\s*`)
			continue
		}
		sb.WriteString(regexp.QuoteMeta(string(r)))
	}

	p.src = sb.String()
	re, err := regexp.Compile(p.src)
	if err != nil {
		return nil, fmt.Errorf("dateparse: compile %q: %w", template, err)
	}
	p.re = re
	return p, nil
}

// parse extracts components from text previously matched by p.re.
func (p *Pattern) parse(matched string) (components, bool) {
	groups := p.re.FindStringSubmatch(matched)
	if groups == nil {
		return components{}, false
	}

	c := components{month: 1, day: 1, yearExplicit: p.hasYear, hasTime: p.hasTime}
	for i, f := range p.fields {
		n, err := strconv.Atoi(groups[i+1])
		if err != nil {
			return components{}, false
		}
		switch f {
		case 'Y':
			c.year = n
		case 'y':
			c.year = 2000 + n
		case 'm':
			c.month = n
		case 'd':
			c.day = n
		case 'H':
			c.hour = n
		case 'M':
			c.minute = n
		}
	}

	if c.month < 1 || c.month > 12 || c.day < 1 || c.day > 31 {
		return components{}, false
	}
	if c.hour > 23 || c.minute > 59 {
		return components{}, false
	}
	return c, true
}

// DefaultPatterns is the priority-ordered grammar table: range-capable
// forms with year + weekday + time first, bare dot-separated forms
// last. First match wins; no backtracking across patterns.
var DefaultPatterns = []*Pattern{
	MustCompile("%Y년 %m월 %d일(%a) %H:%M"),
	MustCompile("%Y년 %m월 %d일 %H:%M"),
	MustCompile("%Y.%m.%d.(%a) %H:%M"),
	MustCompile("%Y.%m.%d. %H:%M"),
	MustCompile("%Y.%m.%d %H:%M"),
	MustCompile("%Y-%m-%d %H:%M"),
	MustCompile("%m월 %d일(%a) %H:%M"),
	MustCompile("%m월 %d일 %H:%M"),
	MustCompile("%Y년 %m월 %d일(%a)"),
	MustCompile("%Y년 %m월 %d일"),
	MustCompile("%m월 %d일(%a)"),
	MustCompile("%m월 %d일"),
	MustCompile("%Y.%m.%d"),
	MustCompile("%Y-%m-%d"),
	MustCompile("%y.%m.%d"),
}

// bareTimeSrc matches a lone HH:MM, used as the right-hand side of a
// range meaning "same day, later time".
const bareTimeSrc = `(\d{1,2}):(\d{1,2})`

var bareTimeRe = regexp.MustCompile(bareTimeSrc)

// monthOnlyRe matches "YYYY.MM월", which stands for the whole month.
var monthOnlyRe = regexp.MustCompile(`(\d{4})\.(\d{1,2})\s*월`)
