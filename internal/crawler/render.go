package crawler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

const defaultRenderTimeout = 30 * time.Second

// RenderOptions defines parameters for rendering a JS-driven page in
// headless Chromium.
type RenderOptions struct {
	// URL to render.
	URL string

	// WaitSelector, when set, delays the DOM snapshot until the selector
	// is visible. Empty means wait for document.body only.
	WaitSelector string

	// Timeout bounds the whole navigation + render. Zero means a sane
	// default.
	Timeout time.Duration
}

// Renderer produces post-JavaScript HTML for pages a plain GET cannot
// see. The zero value is ready to use.
type Renderer struct{}

// RenderHTML launches headless Chromium via chromedp, navigates to
// opts.URL, waits for the page to settle, and returns the rendered
// outer HTML of the document.
func (Renderer) RenderHTML(parentCtx context.Context, opts RenderOptions) (string, error) {
	if opts.URL == "" {
		return "", errors.New("render: URL is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultRenderTimeout
	}

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	wait := opts.WaitSelector
	if wait == "" {
		wait = "body"
	}

	var html string
	tasks := chromedp.Tasks{
		chromedp.Navigate(opts.URL),
		chromedp.WaitVisible(wait, chromedp.ByQuery),
		// Small extra delay so late paints and fetches land.
		chromedp.Sleep(500 * time.Millisecond),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}

	if err := chromedp.Run(ctx, tasks); err != nil {
		return "", fmt.Errorf("render: chromedp run failed: %w", err)
	}
	return html, nil
}

// PageRenderer is the rendering seam the notices crawler depends on,
// so tests can feed static HTML instead of launching a browser.
type PageRenderer interface {
	RenderHTML(ctx context.Context, opts RenderOptions) (string, error)
}
