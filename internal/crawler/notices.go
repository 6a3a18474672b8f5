package crawler

import (
	"context"
	"fmt"
	"net/url"
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
	noticeLinkSelector    = "a[href^='/notice/']"
	noticeArticleSelector = "article > section"
)

// Notices crawls the student-council notice board. The board is a
// client-rendered app, so both the listing and the articles go through
// headless Chromium.
type Notices struct {
	cfg           config.NoticesConfig
	renderer      PageRenderer
	matcher       *dateparse.Matcher
	timeout       time.Duration
	thresholdDays int
	now           func() time.Time
}

func NewNotices(cfg config.NoticesConfig, renderer PageRenderer, matcher *dateparse.Matcher, timeout time.Duration, thresholdDays int, now func() time.Time) *Notices {
	if now == nil {
		now = time.Now
	}
	return &Notices{
		cfg:           cfg,
		renderer:      renderer,
		matcher:       matcher,
		timeout:       timeout,
		thresholdDays: thresholdDays,
		now:           now,
	}
}

// Crawl renders the configured number of listing pages, keeps the
// keyword-matched posts, and pulls the first date expression out of
// each post body. A post whose body yields no date is a miss, not an
// error.
func (c *Notices) Crawl(ctx context.Context) ([]model.Event, []Miss, error) {
	var links []Link
	for page := 1; page <= c.cfg.Pages; page++ {
		pageURL := fmt.Sprintf("%s&page=%d", c.cfg.URL, page)
		html, err := c.renderer.RenderHTML(ctx, RenderOptions{
			URL:          pageURL,
			WaitSelector: noticeLinkSelector,
			Timeout:      c.timeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("notices: list page %d: %w", page, err)
		}
		pageLinks, err := c.parseListing(html)
		if err != nil {
			return nil, nil, fmt.Errorf("notices: list page %d: %w", page, err)
		}
		links = append(links, pageLinks...)
		appLog.Info("notices page crawled", "page", page, "matched", len(pageLinks))
	}

	var events []model.Event
	var misses []Miss
	for _, link := range links {
		html, err := c.renderer.RenderHTML(ctx, RenderOptions{
			URL:          link.URL,
			WaitSelector: noticeArticleSelector,
			Timeout:      c.timeout,
		})
		if err != nil {
			appLog.Warn("notice article render failed", "title", link.Title, "url", link.URL)
			misses = append(misses, Miss{Title: link.Title, URL: link.URL, Reason: "render failed"})
			continue
		}

		r, ok := c.extractDate(html)
		if !ok {
			misses = append(misses, Miss{Title: link.Title, URL: link.URL, Reason: "no date found"})
			continue
		}

		title := event.CleanNoticeTitle(link.Title)
		events = append(events, ics.Shape(title, r, ics.ShapeOptions{
			Categories:    []string{event.CategoryFromTitle(title)},
			URL:           link.URL,
			ThresholdDays: c.thresholdDays,
			Clock:         c.now,
		})...)
	}
	return events, misses, nil
}

// parseListing extracts the keyword-matched post links from a rendered
// listing page.
func (c *Notices) parseListing(html string) ([]Link, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	base, err := url.Parse(c.cfg.URL)
	if err != nil {
		return nil, err
	}

	var links []Link
	seen := make(map[string]bool)
	doc.Find(noticeLinkSelector).Each(func(_ int, s *goquery.Selection) {
		title := dateparse.CollapseSpaces(s.Find("h1").First().Text())
		if title == "" || !event.ContainsKeyword(title, c.cfg.Keywords) {
			return
		}
		href, ok := s.Attr("href")
		if !ok {
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
		links = append(links, Link{Title: title, URL: abs})
	})
	return links, nil
}

// extractDate scans the article body paragraph by paragraph and returns
// the first resolvable date expression. Bodies without paragraph tags
// fall back to the whole article text.
func (c *Notices) extractDate(html string) (dateparse.Resolved, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return dateparse.Resolved{}, false
	}

	article := doc.Find(noticeArticleSelector).First()
	if article.Length() == 0 {
		return dateparse.Resolved{}, false
	}

	paragraphs := article.Find("p")
	if paragraphs.Length() == 0 {
		return c.matcher.FromText(article.Text())
	}

	var found dateparse.Resolved
	ok := false
	paragraphs.EachWithBreak(func(_ int, p *goquery.Selection) bool {
		text := strings.TrimSpace(p.Text())
		if len([]rune(text)) < 5 {
			return true
		}
		if r, matched := c.matcher.FromText(text); matched {
			found, ok = r, true
			return false
		}
		return true
	})
	return found, ok
}
