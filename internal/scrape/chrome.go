package scrape

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// ChromeConfig controls the chromedp browser.
type ChromeConfig struct {
	// UserDataDir points Chrome at a profile that is already signed in.
	UserDataDir       string
	ExecPath          string
	Headless          bool
	UserAgent         string
	NavigationTimeout time.Duration
}

// Chrome implements Browser with one chromedp tab per page.
type Chrome struct {
	cfg           ChromeConfig
	logger        *zap.Logger
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// NewChrome starts a browser process. Close must be called to stop it.
func NewChrome(cfg ChromeConfig, logger *zap.Logger) (*Chrome, error) {
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = 45 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("enable-automation", false),
	)
	if cfg.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(cfg.UserDataDir))
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("chromedp warmup: %w", err)
	}

	return &Chrome{
		cfg:           cfg,
		logger:        logger,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

// Close stops the browser.
func (c *Chrome) Close() {
	if c == nil {
		return
	}
	c.browserCancel()
	c.allocCancel()
}

// Open creates a new tab and navigates it to url.
func (c *Chrome) Open(ctx context.Context, url string) (Page, error) {
	if c == nil {
		return nil, errors.New("chrome is not started")
	}

	tabCtx, cancelTab := chromedp.NewContext(c.browserCtx)
	page := &chromePage{url: url, ctx: tabCtx, cancel: cancelTab}

	navCtx, cancelNav := context.WithTimeout(tabCtx, c.cfg.NavigationTimeout)
	defer cancelNav()
	stop := forwardCancel(ctx, cancelNav)
	defer stop()

	actions := []chromedp.Action{
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	}
	if err := chromedp.Run(navCtx, actions...); err != nil {
		cancelTab()
		return nil, fmt.Errorf("navigate: %w", err)
	}

	c.logger.Debug("page opened", zap.String("url", url))
	return page, nil
}

type chromePage struct {
	url    string
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

func (p *chromePage) URL() string {
	return p.url
}

func (p *chromePage) Evaluate(ctx context.Context, script string, out any) error {
	runCtx, cancel := context.WithCancel(p.ctx)
	defer cancel()
	stop := forwardCancel(ctx, cancel)
	defer stop()

	awaitPromise := func(params *runtime.EvaluateParams) *runtime.EvaluateParams {
		return params.WithAwaitPromise(true)
	}

	if err := chromedp.Run(runCtx, chromedp.Evaluate(script, out, awaitPromise)); err != nil {
		return fmt.Errorf("evaluate script: %w", err)
	}
	return nil
}

// Close closes the tab.
func (p *chromePage) Close() error {
	p.once.Do(p.cancel)
	return nil
}

// forwardCancel cancels a chromedp context when the caller's context is done.
func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	if parent == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}
