// Package capture rasterizes grid pages into PNG images with headless
// Chromium. This is the one CPU-heavy step of an export, so captures run
// through a fixed-size gate: callers block until a slot frees up instead
// of piling concurrent browser instances onto the host.
package capture

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"colloscope/internal/export"
)

// Default capture parameters, sized for an A4-ish portrait page.
const (
	DefaultWidth      = 1240
	DefaultHeight     = 1754
	DefaultTimeoutSec = 30

	// maxConcurrentCaptures bounds simultaneous Chromium instances.
	maxConcurrentCaptures = 2
)

var captureSlots = make(chan struct{}, maxConcurrentCaptures)

// Options defines parameters for a single page capture.
type Options struct {
	// Width and Height are the viewport dimensions in pixels. If zero,
	// DefaultWidth / DefaultHeight are used.
	Width  int
	Height int

	// Timeout bounds one capture operation. If zero, DefaultTimeoutSec
	// is used.
	Timeout time.Duration
}

// PagePNG renders one grid page to a PNG screenshot.
//
// The page HTML is templated in-process and handed to Chromium through a
// data: URL, so no web server round-trip is needed. The grid template
// marks its body with data-ready="true"; the capture waits for that
// before screenshotting, same contract as a live page would honor.
func PagePNG(parentCtx context.Context, page export.GridPage, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := export.RenderGridHTML(&buf, page.Group, []export.GridPage{page}); err != nil {
		return nil, fmt.Errorf("capture: render page html: %w", err)
	}
	return htmlPNG(parentCtx, buf.Bytes(), opts)
}

// GridPNGs renders every page of a grid export, in order.
func GridPNGs(ctx context.Context, pages []export.GridPage, opts Options) ([][]byte, error) {
	out := make([][]byte, 0, len(pages))
	for _, page := range pages {
		png, err := PagePNG(ctx, page, opts)
		if err != nil {
			return nil, fmt.Errorf("capture: page %d/%d: %w", page.Index, page.Total, err)
		}
		out = append(out, png)
	}
	return out, nil
}

func htmlPNG(parentCtx context.Context, html []byte, opts Options) ([]byte, error) {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.Timeout <= 0 {
		opts.Timeout = time.Duration(DefaultTimeoutSec) * time.Second
	}

	// Acquire a capture slot or give up with the caller's context.
	select {
	case captureSlots <- struct{}{}:
		defer func() { <-captureSlots }()
	case <-parentCtx.Done():
		return nil, fmt.Errorf("capture: waiting for slot: %w", parentCtx.Err())
	}

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	url := "data:text/html;base64," + base64.StdEncoding.EncodeToString(html)

	var png []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
		chromedp.Navigate(url),
		chromedp.WaitVisible(`[data-ready="true"]`, chromedp.ByQuery),
		// Small extra delay to allow final paints.
		chromedp.Sleep(200 * time.Millisecond),
		chromedp.FullScreenshot(&png, 100),
	}

	if err := chromedp.Run(ctx, tasks); err != nil {
		return nil, fmt.Errorf("capture: chromedp run failed: %w", err)
	}

	return png, nil
}
