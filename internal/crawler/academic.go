package crawler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/yourssu/ssu-time/internal/config"
	"github.com/yourssu/ssu-time/internal/dateparse"
	"github.com/yourssu/ssu-time/internal/event"
	"github.com/yourssu/ssu-time/internal/ics"
	appLog "github.com/yourssu/ssu-time/internal/log"
	"github.com/yourssu/ssu-time/internal/model"
)

const (
	academicDateCellSelector  = "div.col-12.col-lg-4.col-xl-3.font-weight-normal.text-primary"
	academicTitleCellSelector = "div.col-12.col-lg-8.col-xl-9"
)

// Academic crawls the university's academic calendar page, one request
// per year: the current year from the current month onward and the next
// year through February.
type Academic struct {
	cfg           config.AcademicConfig
	fetcher       *Fetcher
	loc           *time.Location
	now           func() time.Time
	windowMonths  int
	thresholdDays int
}

func NewAcademic(cfg config.AcademicConfig, fetcher *Fetcher, loc *time.Location, now func() time.Time, windowMonths, thresholdDays int) *Academic {
	if now == nil {
		now = time.Now
	}
	return &Academic{
		cfg:           cfg,
		fetcher:       fetcher,
		loc:           loc,
		now:           now,
		windowMonths:  windowMonths,
		thresholdDays: thresholdDays,
	}
}

// Crawl fetches both year pages and returns the shaped events. A failed
// year page is logged and skipped; when no page could be fetched at all
// the run fails rather than producing an empty artifact.
func (c *Academic) Crawl(ctx context.Context) ([]model.Event, []Miss, error) {
	now := c.now().In(c.loc)
	currentYear := now.Year()

	var events []model.Event
	var misses []Miss

	pages := []struct {
		year       int
		monthLimit int
		limitIsMax bool
	}{
		{year: currentYear, monthLimit: int(now.Month()), limitIsMax: false},
		{year: currentYear + 1, monthLimit: 2, limitIsMax: true},
	}

	fetched := 0
	for _, p := range pages {
		url := fmt.Sprintf("%s?years=%d", c.cfg.URL, p.year)
		html, err := c.fetcher.FetchText(ctx, url)
		if err != nil {
			appLog.Error("academic page fetch failed", err, "year", p.year)
			continue
		}
		fetched++
		evs, ms := c.parsePage(html, p.year, p.monthLimit, p.limitIsMax)
		events = append(events, evs...)
		misses = append(misses, ms...)
		appLog.Info("academic year crawled", "year", p.year, "events", len(evs))
	}
	if fetched == 0 {
		return nil, nil, fmt.Errorf("academic: every year page fetch failed")
	}
	return events, misses, nil
}

// parsePage extracts one year's rows. monthLimit is a lower bound on
// the start month for the current year and an upper bound for the next.
func (c *Academic) parsePage(html string, year, monthLimit int, limitIsMax bool) ([]model.Event, []Miss) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		appLog.Error("academic page parse failed", err, "year", year)
		return nil, nil
	}

	windowStart, windowEnd := dateparse.WindowRange(c.now(), c.windowMonths, c.loc)

	var events []model.Event
	var misses []Miss
	seen := make(map[[2]string]bool)

	doc.Find("div.row").Each(func(_ int, row *goquery.Selection) {
		dateCell := row.Find(academicDateCellSelector).First()
		titleCell := row.Find(academicTitleCellSelector).First()
		if dateCell.Length() == 0 || titleCell.Length() == 0 {
			return
		}

		dateText := dateparse.TightenTildes(dateparse.CollapseSpaces(dateCell.Text()))
		title := dateparse.CollapseSpaces(titleCell.Text())

		semester := event.SemesterLabel(title)
		title = event.StripSemesterLabel(title)

		key := [2]string{dateText, title}
		if seen[key] {
			return
		}
		seen[key] = true

		start, end, err := parseAcademicDates(dateText, year, c.loc)
		if err != nil {
			appLog.Warn("academic date parse failed", "date", dateText, "title", title)
			misses = append(misses, Miss{Title: title, Reason: "unparseable date cell"})
			return
		}

		if limitIsMax && int(start.Month()) > monthLimit {
			return
		}
		if !limitIsMax && int(start.Month()) < monthLimit {
			return
		}
		if !dateparse.InWindow(end, windowStart, windowEnd) {
			return
		}

		r := dateparse.Resolved{
			Start:   dateparse.Date{Time: start},
			End:     dateparse.Date{Time: end},
			IsRange: !start.Equal(end),
		}
		events = append(events, ics.Shape(title, r, ics.ShapeOptions{
			Categories:    []string{model.CategoryStandard},
			Description:   semester,
			ThresholdDays: c.thresholdDays,
			Clock:         c.now,
		})...)
	})

	return events, misses
}

// parseAcademicDates splits a cleaned date cell ("2026.03.02~03.06" or
// a single "2026.03.02") and anchors year-less sides to the page year.
func parseAcademicDates(dateText string, year int, loc *time.Location) (time.Time, time.Time, error) {
	first, second, found := strings.Cut(dateText, "~")
	if !found {
		second = first
	}

	parseSide := func(side string) (time.Time, error) {
		side, _, _ = strings.Cut(strings.TrimSpace(side), "(")
		side = strings.TrimSpace(side)
		if !strings.HasPrefix(side, strconv.Itoa(year)) {
			side = strconv.Itoa(year) + "." + side
		}
		return time.ParseInLocation("2006.1.2", side, loc)
	}

	start, err := parseSide(first)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseSide(second)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}
