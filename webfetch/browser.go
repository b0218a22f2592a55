package webfetch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
)

// Browser renders JS-heavy pages through a shared headless Chrome.
// It is the escalation path for sites where a plain GET returns a shell.
type Browser struct {
	browser *rod.Browser
	logger  *slog.Logger
}

// BrowserConfig controls the Chrome lifecycle.
type BrowserConfig struct {
	// Remote is an existing devtools websocket URL. Empty launches a
	// local headless Chrome.
	Remote string
	Logger *slog.Logger
}

// NewBrowser connects to (or launches) Chrome. Returns an error rather
// than panicking when no Chrome is available, so callers can degrade to
// static fetching.
func NewBrowser(cfg BrowserConfig) (b *Browser, err error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	// rod panics on connection failure; keep that inside this boundary.
	defer func() {
		if r := recover(); r != nil {
			b = nil
			err = fmt.Errorf("webfetch: browser connect: %v", r)
		}
	}()

	wsURL := cfg.Remote
	if wsURL == "" {
		wsURL, err = launcher.New().Headless(true).Launch()
		if err != nil {
			return nil, fmt.Errorf("webfetch: launch chrome: %w", err)
		}
	}

	br := rod.New().ControlURL(wsURL)
	if err := br.Connect(); err != nil {
		return nil, fmt.Errorf("webfetch: browser connect: %w", err)
	}
	return &Browser{browser: br, logger: cfg.Logger}, nil
}

// FetchRendered navigates to the URL with stealth applied and returns
// the rendered DOM as HTML.
func (b *Browser) FetchRendered(ctx context.Context, pageURL string) (body []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			body = nil
			err = fmt.Errorf("webfetch: render %s: %v", pageURL, r)
		}
	}()

	page, err := stealth.Page(b.browser)
	if err != nil {
		return nil, fmt.Errorf("webfetch: create tab: %w", err)
	}
	defer page.Close()

	navCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		return nil, fmt.Errorf("webfetch: navigate %s: %w", pageURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		b.logger.Warn("webfetch: wait load timeout", "url", pageURL, "error", err)
	}

	res, err := page.Context(navCtx).Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return nil, fmt.Errorf("webfetch: get DOM: %w", err)
	}
	return []byte(res.Value.Str()), nil
}

// Close shuts the browser down.
func (b *Browser) Close() error {
	return b.browser.Close()
}
