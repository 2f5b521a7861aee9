package session

import (
	"context"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// Session is the authenticated browser capability the pipeline depends on.
// Locators starting with "//" are treated as XPath, anything else as CSS.
type Session interface {
	// Navigate loads the given URL in the session
	Navigate(url string) error

	// WaitVisible blocks until the locator matches a visible element or the timeout elapses
	WaitVisible(locator string, timeout time.Duration) error

	// Fill types a value into the element matched by the locator
	Fill(locator, value string) error

	// Click clicks the element matched by the locator
	Click(locator string) error

	// PageContent returns the current page markup
	PageContent() (string, error)

	// Close tears the session down and releases the browser
	Close() error
}

// Browser implements Session on top of a headless Chrome instance
type Browser struct {
	ctx    context.Context
	cancel context.CancelFunc
}

var _ Session = (*Browser)(nil)

// NewBrowser starts a Chrome instance and returns a ready session
func NewBrowser(headless bool) (*Browser, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1280, 900),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	ctx, ctxCancel := chromedp.NewContext(allocCtx)

	cancel := func() {
		ctxCancel()
		allocCancel()
	}

	// Run a no-op to launch the browser process eagerly, so a broken
	// Chrome install surfaces here instead of mid-pipeline.
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		return nil, err
	}

	return &Browser{ctx: ctx, cancel: cancel}, nil
}

// Navigate loads the given URL
func (b *Browser) Navigate(url string) error {
	return chromedp.Run(b.ctx, chromedp.Navigate(url))
}

// WaitVisible waits for the locator within the given timeout
func (b *Browser) WaitVisible(locator string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(b.ctx, timeout)
	defer cancel()
	return chromedp.Run(ctx, chromedp.WaitVisible(locator, queryOpt(locator)))
}

// Fill types a value into the matched element
func (b *Browser) Fill(locator, value string) error {
	return chromedp.Run(b.ctx, chromedp.SendKeys(locator, value, queryOpt(locator)))
}

// Click clicks the matched element
func (b *Browser) Click(locator string) error {
	return chromedp.Run(b.ctx, chromedp.Click(locator, queryOpt(locator)))
}

// PageContent returns the serialized markup of the current page
func (b *Browser) PageContent() (string, error) {
	var html string
	err := chromedp.Run(b.ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

// Close releases the browser contexts; safe to call on any exit path
func (b *Browser) Close() error {
	b.cancel()
	return nil
}

func queryOpt(locator string) chromedp.QueryOption {
	if isXPath(locator) {
		return chromedp.BySearch
	}
	return chromedp.ByQuery
}

func isXPath(locator string) bool {
	return strings.HasPrefix(locator, "//") || strings.HasPrefix(locator, "(")
}
