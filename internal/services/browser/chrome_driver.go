package browser

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	cdpbrowser "github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/inspector"
	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/leadhound/internal/common"
	"github.com/ternarybob/leadhound/internal/models"
)

// ChromeDriverConfig holds the fixed settings of one headless Chrome instance
type ChromeDriverConfig struct {
	Headless        bool
	NoSandbox       bool
	DisableImages   bool
	WindowWidth     int
	WindowHeight    int
	UserAgent       string
	ExecPath        string
	PageLoadTimeout time.Duration
	ImplicitWait    time.Duration
	StartupTimeout  time.Duration
}

// NewChromeDriverConfig resolves the browser section of the application config
func NewChromeDriverConfig(config common.BrowserConfig) ChromeDriverConfig {
	return ChromeDriverConfig{
		Headless:        config.Headless,
		NoSandbox:       config.NoSandbox,
		DisableImages:   config.DisableImages,
		WindowWidth:     config.WindowWidth,
		WindowHeight:    config.WindowHeight,
		UserAgent:       config.UserAgent,
		ExecPath:        config.ExecPath,
		PageLoadTimeout: common.ParseDuration(config.PageLoadTimeout, 15*time.Second),
		ImplicitWait:    common.ParseDuration(config.ImplicitWait, 5*time.Second),
		StartupTimeout:  common.ParseDuration(config.StartupTimeout, 30*time.Second),
	}
}

// ChromeDriver drives a single headless Chrome through chromedp.
// Every navigation runs in its own tab which is closed afterwards, so a
// crashed renderer takes down one tab rather than the shared browser context.
type ChromeDriver struct {
	config          ChromeDriverConfig
	logger          arbor.ILogger
	browserCtx      context.Context
	browserCancel   context.CancelFunc
	allocatorCancel context.CancelFunc
}

// NewChromeDriver creates a driver; the browser is not launched until Start
func NewChromeDriver(config ChromeDriverConfig, logger arbor.ILogger) *ChromeDriver {
	return &ChromeDriver{
		config: config,
		logger: logger,
	}
}

// NewChromeDriverFactory returns a DriverFactory building identically configured drivers
func NewChromeDriverFactory(config ChromeDriverConfig, logger arbor.ILogger) DriverFactory {
	return func() Driver {
		return NewChromeDriver(config, logger)
	}
}

// allocatorOptions builds the constrained Chrome flag set
func (d *ChromeDriver) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", d.config.Headless),
		chromedp.Flag("no-sandbox", d.config.NoSandbox),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-software-rasterizer", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("disable-crash-reporter", true),
		chromedp.Flag("disable-breakpad", true),
		chromedp.Flag("js-flags", "--max-old-space-size=512"),
		chromedp.WindowSize(d.config.WindowWidth, d.config.WindowHeight),
		chromedp.UserAgent(d.config.UserAgent),
	)

	// Scripts stay enabled: the audio platform renders its search results client side
	if d.config.DisableImages {
		opts = append(opts, chromedp.Flag("blink-settings", "imagesEnabled=false"))
	}
	if d.config.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(d.config.ExecPath))
	}

	return opts
}

// Start launches Chrome and checks it can load a blank page
func (d *ChromeDriver) Start(ctx context.Context) error {
	startTime := time.Now()

	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(context.Background(), d.allocatorOptions()...)
	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx,
		chromedp.WithLogf(func(s string, i ...interface{}) {
			d.logger.Debug().Msgf("chromedp: "+s, i...)
		}),
	)

	// First Run allocates the browser; it must not carry a timeout or the
	// browser would die with the timeout context
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocatorCancel()
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	d.browserCtx = browserCtx
	d.browserCancel = browserCancel
	d.allocatorCancel = allocatorCancel

	var product string
	readVersion := chromedp.ActionFunc(func(ctx context.Context) error {
		// Version is informational only
		if _, p, _, _, _, err := cdpbrowser.GetVersion().Do(ctx); err == nil {
			product = p
		}
		return nil
	})

	if err := d.runInTab(ctx, d.config.StartupTimeout, chromedp.Navigate("about:blank"), readVersion); err != nil {
		d.Close()
		return fmt.Errorf("browser failed startup test: %w", err)
	}

	d.logger.Info().
		Str("product", product).
		Str("exec_path", d.config.ExecPath).
		Bool("headless", d.config.Headless).
		Int("window_width", d.config.WindowWidth).
		Int("window_height", d.config.WindowHeight).
		Dur("startup_time", time.Since(startTime)).
		Msg("Browser started")

	return nil
}

// Navigate loads url in a fresh tab and returns the rendered document
func (d *ChromeDriver) Navigate(ctx context.Context, url string) (string, error) {
	if d.browserCtx == nil {
		return "", fmt.Errorf("%w: driver not started", models.ErrSessionUnavailable)
	}

	var html string
	err := d.runInTab(ctx, d.config.PageLoadTimeout,
		chromedp.Navigate(url),
		chromedp.Sleep(d.config.ImplicitWait),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", err
	}
	return html, nil
}

// runInTab executes actions in a new tab bounded by timeout.
// The tab context is never wrapped in a timeout child; on expiry the tab is
// cancelled instead, which closes it cleanly.
func (d *ChromeDriver) runInTab(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	tabCtx, tabCancel := chromedp.NewContext(d.browserCtx)
	defer tabCancel()

	var crashed atomic.Bool
	chromedp.ListenTarget(tabCtx, func(ev interface{}) {
		if _, ok := ev.(*inspector.EventTargetCrashed); ok {
			crashed.Store(true)
		}
	})

	done := common.SafeGo(d.logger, "chromedp.run", func() error {
		return chromedp.Run(tabCtx, actions...)
	})

	var err error
	select {
	case err = <-done:
	case <-time.After(timeout):
		tabCancel()
		<-done
		err = fmt.Errorf("navigation timed out after %s: %w", timeout, context.DeadlineExceeded)
	case <-ctx.Done():
		tabCancel()
		<-done
		err = ctx.Err()
	}

	if err == nil {
		return nil
	}

	// A dead browser context or a target crash event means the session is gone
	if crashed.Load() || d.browserCtx.Err() != nil {
		return fmt.Errorf("%w: %v", models.ErrSessionCrashed, err)
	}
	return err
}

// Close shuts the browser down; safe to call more than once
func (d *ChromeDriver) Close() error {
	var err error
	if d.browserCtx != nil && d.browserCtx.Err() == nil {
		err = chromedp.Cancel(d.browserCtx)
	}
	if d.browserCancel != nil {
		d.browserCancel()
	}
	if d.allocatorCancel != nil {
		d.allocatorCancel()
	}
	d.browserCtx = nil
	d.browserCancel = nil
	d.allocatorCancel = nil
	return err
}
