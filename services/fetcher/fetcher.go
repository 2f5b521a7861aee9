package fetcher

import (
	mathrand "math/rand"
	"strings"
	"time"

	"cardpricewatcher/helpers"
	"cardpricewatcher/internal/session"
	errs "cardpricewatcher/pkg/errors"
	"cardpricewatcher/services/cache"

	"github.com/PuerkitoBio/goquery"
)

// PageFetcher retrieves a parsed document for a URL, applying a politeness
// delay before every request. waitFor names a locator that must become
// visible before the page is read; implementations that do not render the
// page ignore it.
type PageFetcher interface {
	Fetch(url string, waitFor string) (*goquery.Document, error)
}

// Options configures the delay and containment behavior of a fetcher
type Options struct {
	// MinDelay and MaxDelay bound the randomized pre-request sleep.
	// Equal values give a fixed delay.
	MinDelay time.Duration
	MaxDelay time.Duration

	// WaitTimeout bounds the wait for the waitFor locator
	WaitTimeout time.Duration

	// CacheKey and BlockTime drive the rate-limit block cache; an empty
	// key disables blocking.
	CacheKey  string
	BlockTime time.Duration
}

// SessionFetcher fetches pages through the authenticated browser session
type SessionFetcher struct {
	sess     session.Session
	cacheSvc cache.CacheService
	opts     Options
	rnd      *mathrand.Rand
	sleep    func(time.Duration)
}

var _ PageFetcher = (*SessionFetcher)(nil)

// NewSessionFetcher creates a fetcher backed by the browser session
func NewSessionFetcher(sess session.Session, cacheSvc cache.CacheService, opts Options) *SessionFetcher {
	return &SessionFetcher{
		sess:     sess,
		cacheSvc: cacheSvc,
		opts:     opts,
		rnd:      mathrand.New(mathrand.NewSource(time.Now().UnixNano())),
		sleep:    time.Sleep,
	}
}

// Fetch navigates to the URL, optionally waits for a locator, and parses
// the rendered page. Errors never escape with partial state; callers decide
// whether to skip or abort.
func (f *SessionFetcher) Fetch(url string, waitFor string) (*goquery.Document, error) {
	if err := checkBlocked(f.cacheSvc, f.opts); err != nil {
		return nil, err
	}

	f.sleep(randomDelay(f.rnd, f.opts.MinDelay, f.opts.MaxDelay))

	if err := f.sess.Navigate(url); err != nil {
		return nil, errs.NewNetwork("fetcher", "navigation failed for "+url, err)
	}
	if waitFor != "" {
		if err := f.sess.WaitVisible(waitFor, f.opts.WaitTimeout); err != nil {
			return nil, errs.NewNetwork("fetcher", "page landmark "+waitFor+" did not appear", err)
		}
	}

	html, err := f.sess.PageContent()
	if err != nil {
		return nil, errs.NewNetwork("fetcher", "could not read page content", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, errs.NewParsing("fetcher", "could not parse page markup", err)
	}
	return doc, nil
}

// HTTPFetcher fetches pages over plain HTTP. Only suitable for the public
// catalog pages, which need no authentication and no script execution.
type HTTPFetcher struct {
	cacheSvc cache.CacheService
	opts     Options
	rnd      *mathrand.Rand
	sleep    func(time.Duration)
}

var _ PageFetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher creates a fetcher backed by plain HTTP requests
func NewHTTPFetcher(cacheSvc cache.CacheService, opts Options) *HTTPFetcher {
	return &HTTPFetcher{
		cacheSvc: cacheSvc,
		opts:     opts,
		rnd:      mathrand.New(mathrand.NewSource(time.Now().UnixNano())),
		sleep:    time.Sleep,
	}
}

// Fetch retrieves and parses the URL; waitFor is ignored. A rate-limited
// response records a block marker so subsequent calls back off immediately.
func (f *HTTPFetcher) Fetch(url string, waitFor string) (*goquery.Document, error) {
	if err := checkBlocked(f.cacheSvc, f.opts); err != nil {
		return nil, err
	}

	f.sleep(randomDelay(f.rnd, f.opts.MinDelay, f.opts.MaxDelay))

	body, err := helpers.FetchWithRandomHeaders(url)
	if err != nil {
		if strings.Contains(err.Error(), "rate limited") {
			f.recordBlock()
			return nil, errs.NewRateLimit("fetcher", "upstream rate limited "+url, err)
		}
		return nil, errs.NewNetwork("fetcher", "fetch failed for "+url, err)
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, errs.NewParsing("fetcher", "could not parse page markup", err)
	}
	return doc, nil
}

func (f *HTTPFetcher) recordBlock() {
	if f.cacheSvc == nil || f.opts.CacheKey == "" {
		return
	}
	f.cacheSvc.Set(f.opts.CacheKey, []byte(f.opts.BlockTime.String()), f.opts.BlockTime)
}

func checkBlocked(cacheSvc cache.CacheService, opts Options) error {
	if cacheSvc == nil || opts.CacheKey == "" {
		return nil
	}
	if _, err := cacheSvc.Get(opts.CacheKey); err == nil {
		return errs.NewRateLimit("fetcher", opts.CacheKey+": blocked, not sending further requests", nil)
	}
	return nil
}

func randomDelay(rnd *mathrand.Rand, min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rnd.Int63n(int64(max-min)))
}
