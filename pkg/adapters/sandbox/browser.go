package sandbox

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

const navigateTimeout = 30 * time.Second

// OpenURL navigates the session's browser to url over CDP and waits for the
// page to load. It exists so the agent does not burn loop iterations opening
// a browser and typing an address by hand. Callers treat failures as
// advisory: log and continue.
func OpenURL(ctx context.Context, s Session, url string) error {
	cdpURL, err := s.CDPURL(ctx)
	if err != nil {
		return fmt.Errorf("cdp endpoint: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, navigateTimeout)
	defer cancel()

	allocCtx, allocCancel := chromedp.NewRemoteAllocator(ctx, cdpURL)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	// Attach to an existing page target when one exists: chromedp leaves
	// attached targets open on detach, so the loaded page survives for the
	// agent. A fresh browser with no pages gets a new tab instead.
	opts := []chromedp.ContextOption{}
	if targets, err := chromedp.Targets(browserCtx); err == nil {
		for _, t := range targets {
			if t.Type == "page" {
				opts = append(opts, chromedp.WithTargetID(t.TargetID))
				break
			}
		}
	}
	tabCtx, tabCancel := chromedp.NewContext(browserCtx, opts...)
	defer tabCancel()

	err = chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}
