// Package scrape loads pages in a browser and extracts prospect data from them.
package scrape

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoResults is returned when an extraction script finds nothing on the page.
var ErrNoResults = errors.New("no data found on the page")

// Page is a loaded browser tab.
type Page interface {
	// Evaluate runs script in the page and decodes its result into out.
	// Promises are awaited.
	Evaluate(ctx context.Context, script string, out any) error
	URL() string
	Close() error
}

// Browser opens ephemeral pages.
type Browser interface {
	Open(ctx context.Context, url string) (Page, error)
}

// PanicError is returned by WithPage when fn panics.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("page work panicked: %v", e.Value)
}

// WithPage opens url, runs fn against the page and closes it on every exit
// path, including a panic inside fn.
func WithPage(ctx context.Context, browser Browser, url string, fn func(ctx context.Context, page Page) error) (err error) {
	if browser == nil {
		return errors.New("browser is not configured")
	}

	page, err := browser.Open(ctx, url)
	if err != nil {
		return fmt.Errorf("open page %s: %w", url, err)
	}

	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
		if closeErr := page.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close page %s: %w", url, closeErr)
		}
	}()

	return fn(ctx, page)
}

// Observer is notified when pages are opened and closed.
type Observer interface {
	PageOpened()
	PageClosed()
}

// Observe wraps browser so that o sees every successful open and the matching close.
func Observe(browser Browser, o Observer) Browser {
	if o == nil {
		return browser
	}
	return &observedBrowser{Browser: browser, observer: o}
}

type observedBrowser struct {
	Browser
	observer Observer
}

func (b *observedBrowser) Open(ctx context.Context, url string) (Page, error) {
	page, err := b.Browser.Open(ctx, url)
	if err != nil {
		return nil, err
	}
	b.observer.PageOpened()
	return &observedPage{Page: page, observer: b.observer}, nil
}

type observedPage struct {
	Page
	observer Observer
	closed   bool
}

func (p *observedPage) Close() error {
	if !p.closed {
		p.closed = true
		p.observer.PageClosed()
	}
	return p.Page.Close()
}
