package crawler

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/yourssu/ssu-time/internal/dateparse"
)

// Link is one announcement found on a board listing page.
type Link struct {
	Title string
	URL   string
}

// CollectDetailLinks parses a listing page and returns the detail links
// found by the first selector that matches anything. Relative hrefs are
// resolved against baseURL; duplicate URLs collapse to the first hit.
func CollectDetailLinks(html, baseURL string, selectors []string) ([]Link, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("scrape: parse listing: %w", err)
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("scrape: base url: %w", err)
	}

	for _, sel := range selectors {
		var links []Link
		seen := make(map[string]bool)

		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			href, ok := s.Attr("href")
			if !ok || href == "" {
				return
			}
			ref, perr := url.Parse(href)
			if perr != nil {
				return
			}
			abs := base.ResolveReference(ref).String()
			if seen[abs] {
				return
			}
			seen[abs] = true
			links = append(links, Link{
				Title: dateparse.CollapseSpaces(s.Text()),
				URL:   abs,
			})
		})

		if len(links) > 0 {
			return links, nil
		}
	}
	return nil, nil
}

// ContentText returns the text of the first content selector present in
// the document, preserving block boundaries as newlines so schedule
// lines stay separable.
func ContentText(html string, selectors []string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", false
	}
	for _, sel := range selectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		var b strings.Builder
		node.Find("p, li, td, div, span, h1, h2, h3, h4").Each(func(_ int, s *goquery.Selection) {
			if s.Children().Length() > 0 {
				return
			}
			text := strings.TrimSpace(s.Text())
			if text == "" {
				return
			}
			b.WriteString(text)
			b.WriteString("\n")
		})
		if b.Len() == 0 {
			return strings.TrimSpace(node.Text()), true
		}
		return b.String(), true
	}
	return "", false
}

// ScheduleLine is one announcement line that names a period: a label
// like 접수기간 plus the dates mentioned after it.
type ScheduleLine struct {
	Label string
	Dates []dateparse.Date
}

var lineMarkerRe = regexp.MustCompile(`^(?:[가-힣]\s*\.|\d+\s*\.|[-•*▶■□○◦▪]+)\s*`)

// ExtractScheduleLines walks the content text line by line and keeps
// the lines that mention both a configured label keyword and a date.
// The label is the text before the colon (or before the first date when
// there is none) with list markers stripped; when the keyword only
// appears after the dates ("...부터 ...까지 접수기간"), the keyword
// itself is the label. A line naming only "YYYY.MM월" expands to that
// whole month.
func ExtractScheduleLines(text string, labelKeywords []string, m *dateparse.Matcher) []ScheduleLine {
	var out []ScheduleLine
	seen := make(map[string]bool)

	for _, raw := range strings.Split(text, "\n") {
		line := dateparse.CollapseSpaces(dateparse.ReplaceRangeWords(dateparse.StripWeekdays(raw)))
		if line == "" {
			continue
		}

		idx := m.FirstDateIndex(line)
		if idx < 0 {
			continue
		}

		var label string
		if prefix := line[:idx]; containsAny(prefix, labelKeywords) {
			label = extractLabel(prefix)
		} else if kw, ok := firstContained(line[idx:], labelKeywords); ok {
			label = kw
		} else {
			continue
		}

		dates := m.FindAllDates(line)
		if len(dates) == 0 {
			if r, ok := m.FindMonthRange(line); ok {
				dates = []dateparse.Date{r.Start, r.End}
			}
		}
		if len(dates) == 0 {
			continue
		}

		sl := ScheduleLine{Label: label, Dates: dates}
		key := scheduleKey(sl)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, sl)
	}
	return out
}

func scheduleKey(sl ScheduleLine) string {
	var b strings.Builder
	b.WriteString(sl.Label)
	for _, d := range sl.Dates {
		b.WriteString("|")
		b.WriteString(d.Time.Format("2006-01-02T15:04"))
	}
	return b.String()
}

func containsAny(s string, keywords []string) bool {
	_, ok := firstContained(s, keywords)
	return ok
}

func firstContained(s string, keywords []string) (string, bool) {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return k, true
		}
	}
	return "", false
}

func extractLabel(prefix string) string {
	label := prefix
	if i := strings.IndexAny(label, ":："); i >= 0 {
		label = label[:i]
	}
	label = lineMarkerRe.ReplaceAllString(strings.TrimSpace(label), "")
	label = strings.Trim(label, " :-~()[]")
	label = dateparse.CollapseSpaces(label)
	if label == "" {
		return "일정"
	}
	return label
}
