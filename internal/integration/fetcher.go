package integration

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	"golang.org/x/net/html/charset"
)

// DefaultFetchTimeout bounds a single source, retries included
const DefaultFetchTimeout = 10 * time.Second

// FetchError is a per-source retrieval failure: network, timeout, status, robots or parse
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ErrDisallowed is returned when robots.txt forbids fetching a source
var ErrDisallowed = errors.New("disallowed by robots.txt")

// Document is a parsed page together with the character encoding it was decoded from
type Document struct {
	*goquery.Document
	URL      string
	Encoding string
}

// FetcherConfig holds the retrieval settings for DocumentFetcher
type FetcherConfig struct {
	Timeout           time.Duration
	UserAgent         string
	MaxBytes          int64
	MaxRetries        int
	RequestsPerSecond float64
	Burst             int
	RespectRobots     bool
	RobotsTTL         time.Duration
}

// DocumentFetcher retrieves and parses HTML pages
type DocumentFetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	timeout    time.Duration
	maxRetries int
	limiter    *HostLimiter
	robots     *RobotsChecker
}

type fetchedPage struct {
	body        []byte
	contentType string
}

// NewDocumentFetcher creates a fetcher from the given configuration
func NewDocumentFetcher(cfg FetcherConfig) *DocumentFetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultFetchTimeout
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 4 << 20
	}
	if cfg.RobotsTTL <= 0 {
		cfg.RobotsTTL = time.Hour
	}

	f := &DocumentFetcher{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		userAgent:  cfg.UserAgent,
		maxBytes:   cfg.MaxBytes,
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		limiter:    NewHostLimiter(cfg.RequestsPerSecond, cfg.Burst),
	}
	if cfg.RespectRobots {
		f.robots = NewRobotsChecker(cfg.UserAgent, cfg.Timeout, cfg.RobotsTTL)
	}
	return f
}

// Fetch retrieves rawURL within the configured timeout and parses it. Every failure is a *FetchError.
func (f *DocumentFetcher) Fetch(ctx context.Context, rawURL string) (*Document, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	if f.robots != nil {
		allowed, err := f.robots.Allowed(ctx, rawURL)
		if err != nil {
			return nil, &FetchError{URL: rawURL, Err: err}
		}
		if !allowed {
			return nil, &FetchError{URL: rawURL, Err: ErrDisallowed}
		}
	}

	if err := f.limiter.Wait(ctx, rawURL); err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(newRetryBackOff(), uint64(max(f.maxRetries, 0))), ctx)
	page, err := backoff.RetryNotifyWithData(func() (fetchedPage, error) {
		return f.fetchOnce(ctx, rawURL)
	}, policy, func(err error, wait time.Duration) {
		log.Printf("Warning: fetching %s failed, retrying in %s: %v", rawURL, wait.Round(time.Millisecond), err)
	})
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}

	_, encoding, _ := charset.DetermineEncoding(page.body, page.contentType)
	reader, err := charset.NewReaderLabel(encoding, bytes.NewReader(page.body))
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("decode %s: %w", encoding, err)}
	}

	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("parse HTML: %w", err)}
	}

	return &Document{Document: doc, URL: rawURL, Encoding: encoding}, nil
}

func (f *DocumentFetcher) fetchOnce(ctx context.Context, rawURL string) (fetchedPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fetchedPage{}, backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ja,en;q=0.8")

	res, err := f.httpClient.Do(req)
	if err != nil {
		return fetchedPage{}, fmt.Errorf("request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		err := fmt.Errorf("unexpected status: %s", res.Status)
		if res.StatusCode >= 400 && res.StatusCode < 500 && res.StatusCode != http.StatusTooManyRequests {
			return fetchedPage{}, backoff.Permanent(err)
		}
		return fetchedPage{}, err
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, f.maxBytes))
	if err != nil {
		return fetchedPage{}, fmt.Errorf("read body: %w", err)
	}

	return fetchedPage{body: body, contentType: res.Header.Get("Content-Type")}, nil
}

func newRetryBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.RandomizationFactor = 0.2
	b.Multiplier = 2
	b.MaxInterval = 4 * time.Second
	return b
}
