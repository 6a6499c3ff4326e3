package feed

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/pders01/cratuity/internal/config"
)

const defaultRetryAfter = 5 * time.Minute

// Validators are the conditional-request headers remembered per feed URL.
type Validators struct {
	ETag         string
	LastModified string
}

type Fetcher struct {
	client    *http.Client
	userAgent string
}

func NewFetcher(cfg *config.Config) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: cfg.API.HTTPTimeout,
		},
		userAgent: cfg.API.UserAgent,
	}
}

// Fetch performs a conditional GET. It returns updated=false with a nil
// response when the server answers 304.
func (f *Fetcher) Fetch(url string, v Validators) (*http.Response, bool, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")

	if v.ETag != "" {
		req.Header.Set("If-None-Match", v.ETag)
	}

	if v.LastModified != "" {
		req.Header.Set("If-Modified-Since", v.LastModified)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("fetching feed: %w", err)
	}

	if resp.StatusCode == http.StatusNotModified {
		resp.Body.Close()
		return nil, false, nil
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		wait := GetRetryAfter(resp)
		resp.Body.Close()
		return nil, false, fmt.Errorf("rate limited, retry in %s", wait)
	}

	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, false, fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	return resp, true, nil
}

// ValidatorsFrom extracts the headers to send on the next request.
func ValidatorsFrom(resp *http.Response) Validators {
	return Validators{
		ETag:         resp.Header.Get("ETag"),
		LastModified: resp.Header.Get("Last-Modified"),
	}
}

func GetRetryAfter(resp *http.Response) time.Duration {
	if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
		if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds >= 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultRetryAfter
}
