package capture

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"

	appLog "calpick/internal/log"
)

// Default capture parameters for the picker page.
const (
	DefaultWidth      = 640
	DefaultHeight     = 720
	DefaultTimeoutSec = 30
)

// Options defines parameters for a Chromium-based screenshot capture.
type Options struct {
	// URL to capture, e.g. "http://127.0.0.1:8080/?picker=<id>&tasks=external".
	URL string

	// OutputPath is where the PNG screenshot will be written.
	OutputPath string

	// Width and Height are the viewport dimensions in pixels. If zero,
	// DefaultWidth / DefaultHeight are used.
	Width  int
	Height int

	// Timeout bounds the entire capture operation. If zero,
	// DefaultTimeoutSec is used.
	Timeout time.Duration

	// ScrollTo lists element ids to bring into view before the screenshot,
	// in order. Ids missing from the page are skipped.
	ScrollTo []string

	// FullPage captures the whole document instead of the viewport.
	FullPage bool
}

func (o *Options) normalize() error {
	if o.URL == "" {
		return fmt.Errorf("capture: URL is required")
	}
	if o.OutputPath == "" {
		return fmt.Errorf("capture: OutputPath is required")
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Timeout <= 0 {
		o.Timeout = time.Duration(DefaultTimeoutSec) * time.Second
	}
	return nil
}

// scrollScript brings the element with id into view and reports whether it
// exists.
func scrollScript(id string) string {
	quoted, _ := json.Marshal(id)
	return fmt.Sprintf(`(() => {
  const el = document.getElementById(%s);
  if (!el) return false;
  el.scrollIntoView({block: "center"});
  return true;
})()`, quoted)
}

// scrollActions runs one scroll per id. A missing element is logged, not
// fatal.
func scrollActions(ids []string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		for _, id := range ids {
			var found bool
			if err := chromedp.Evaluate(scrollScript(id), &found).Do(ctx); err != nil {
				return fmt.Errorf("capture: scroll to %q: %w", id, err)
			}
			if !found {
				appLog.Debug("capture: scroll target not found", "element_id", id)
			}
		}
		return nil
	})
}

// CapturePNG launches a headless Chromium instance via chromedp, navigates
// to opts.URL, waits for the page to signal that rendering is complete,
// runs the requested scrolls and writes a PNG screenshot.
//
// Rendering-complete condition: the page sets data-ready="true" on <body>.
func CapturePNG(parentCtx context.Context, opts Options) error {
	if err := opts.normalize(); err != nil {
		return err
	}

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	var png []byte
	shot := chromedp.CaptureScreenshot(&png)
	if opts.FullPage {
		shot = chromedp.FullScreenshot(&png, 100)
	}

	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
		chromedp.Navigate(opts.URL),
		chromedp.WaitVisible(`body[data-ready="true"]`, chromedp.ByQuery),
		scrollActions(opts.ScrollTo),
		// Small extra delay to allow final paints.
		chromedp.Sleep(300 * time.Millisecond),
		shot,
	}

	if err := chromedp.Run(ctx, tasks); err != nil {
		return fmt.Errorf("capture: chromedp run failed: %w", err)
	}

	if dir := filepath.Dir(opts.OutputPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("capture: failed to create output dir: %w", err)
		}
	}
	if err := os.WriteFile(opts.OutputPath, png, 0o644); err != nil {
		return fmt.Errorf("capture: failed to write PNG: %w", err)
	}

	appLog.Info("capture written", "path", opts.OutputPath, "bytes", len(png), "scrolls", len(opts.ScrollTo))
	return nil
}
