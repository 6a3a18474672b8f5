package crawler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/yourssu/ssu-time/internal/config"
	"github.com/yourssu/ssu-time/internal/dateparse"
	"github.com/yourssu/ssu-time/internal/event"
	"github.com/yourssu/ssu-time/internal/ics"
	appLog "github.com/yourssu/ssu-time/internal/log"
	"github.com/yourssu/ssu-time/internal/model"
)

const scholarshipTitleSelector = "h1, h2, .title, .post-title"

// Scholarship crawls the scholarship notice board: one listing fetch,
// then a bounded fan-out over the detail pages. Each detail page
// contributes the schedule lines its body names (접수기간, 서류심사,
// ...), shaped into deadline or period events per foundation.
type Scholarship struct {
	cfg           config.ScholarshipConfig
	fetcher       *Fetcher
	matcher       *dateparse.Matcher
	loc           *time.Location
	now           func() time.Time
	windowMonths  int
	thresholdDays int
}

func NewScholarship(cfg config.ScholarshipConfig, fetcher *Fetcher, matcher *dateparse.Matcher, loc *time.Location, now func() time.Time, windowMonths, thresholdDays int) *Scholarship {
	if now == nil {
		now = time.Now
	}
	return &Scholarship{
		cfg:           cfg,
		fetcher:       fetcher,
		matcher:       matcher,
		loc:           loc,
		now:           now,
		windowMonths:  windowMonths,
		thresholdDays: thresholdDays,
	}
}

// detail is one crawled detail page's outcome, in listing order.
type detail struct {
	link  Link
	title string
	lines []ScheduleLine
	err   error
}

// Crawl fetches the listing and the detail pages. A listing failure
// aborts the run; a single detail page failure only records a miss.
func (c *Scholarship) Crawl(ctx context.Context) ([]model.Event, []Miss, error) {
	listHTML, err := c.fetcher.FetchText(ctx, c.cfg.ListURL)
	if err != nil {
		return nil, nil, fmt.Errorf("scholarship: listing: %w", err)
	}
	links, err := CollectDetailLinks(listHTML, c.cfg.ListURL, c.cfg.LinkSelectors)
	if err != nil {
		return nil, nil, fmt.Errorf("scholarship: listing: %w", err)
	}
	appLog.Info("scholarship links collected", "count", len(links))
	if len(links) == 0 {
		return nil, nil, nil
	}

	// Each goroutine writes its own slot, so the slice needs no lock.
	details := make([]detail, len(links))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.MaxConcurrency)
	for i, link := range links {
		i, link := i, link
		g.Go(func() error {
			details[i] = c.crawlDetail(gctx, link)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	windowStart, windowEnd := dateparse.WindowRange(c.now(), c.windowMonths, c.loc)

	var events []model.Event
	var misses []Miss
	for _, d := range details {
		if d.err != nil {
			appLog.Warn("scholarship detail fetch failed", "url", d.link.URL)
			misses = append(misses, Miss{Title: d.link.Title, URL: d.link.URL, Reason: "fetch failed"})
			continue
		}
		if len(d.lines) == 0 {
			misses = append(misses, Miss{Title: d.title, URL: d.link.URL, Reason: "no schedule found"})
			continue
		}

		foundation := event.ExtractFoundationName(d.title)
		for _, line := range d.lines {
			for _, se := range event.BuildScheduleEvents(foundation, line.Label, line.Dates, c.thresholdDays) {
				if !dateparse.InWindow(se.Occurrence.End.Day(), windowStart, windowEnd) {
					continue
				}
				events = append(events, ics.Shape(se.Title, se.Occurrence, ics.ShapeOptions{
					Categories:    []string{model.CategoryScholarship},
					URL:           d.link.URL,
					ThresholdDays: c.thresholdDays,
					Clock:         c.now,
				})...)
			}
		}
	}
	return events, misses, nil
}

func (c *Scholarship) crawlDetail(ctx context.Context, link Link) detail {
	html, err := c.fetcher.FetchText(ctx, link.URL)
	if err != nil {
		return detail{link: link, err: err}
	}
	title, lines := c.parseDetail(html)
	if title == "" {
		title = link.Title
	}
	return detail{link: link, title: title, lines: lines}
}

// parseDetail pulls the post title and the schedule lines out of a
// detail page body.
func (c *Scholarship) parseDetail(html string) (string, []ScheduleLine) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", nil
	}
	title := dateparse.CollapseSpaces(doc.Find(scholarshipTitleSelector).First().Text())

	text, ok := ContentText(html, c.cfg.ContentSelectors)
	if !ok {
		text = doc.Find("body").Text()
	}
	return title, ExtractScheduleLines(text, c.cfg.LabelKeywords, c.matcher)
}
