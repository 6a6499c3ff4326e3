package crates

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pders01/cratuity/internal/config"
	"github.com/pders01/cratuity/internal/debuglog"
)

// MaxPerPage bounds the count argument of Search.
const MaxPerPage = config.MaxPerPage

const (
	DefaultBaseURL   = "https://crates.io/api/v1"
	defaultUserAgent = "cratuity/1.0 (crates.io quick search TUI)"
	defaultTimeout   = 30 * time.Second
)

// ErrTransport is matched by every error Search returns.
var ErrTransport = errors.New("crates.io request failed")

// TransportError describes a failed round trip. StatusCode is zero when the
// server was never reached or the body could not be decoded.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: HTTP error: %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// Client performs crate searches. It keeps no state between calls besides
// the underlying connection pool.
type Client struct {
	client    *http.Client
	baseURL   string
	userAgent string
}

func NewClient(cfg *config.Config) *Client {
	timeout := cfg.API.HTTPTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	base := strings.TrimRight(cfg.API.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	ua := cfg.API.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	return &Client{
		client:    &http.Client{Timeout: timeout},
		baseURL:   base,
		userAgent: ua,
	}
}

// Search fetches one remote page. page is 1-based and count is the remote
// page size; both must be at least 1.
func (c *Client) Search(query string, page, count uint32, sort Sort) (*SearchResult, error) {
	if page == 0 || count == 0 {
		panic("crates: Search requires page >= 1 and count >= 1")
	}
	if count > MaxPerPage {
		return nil, &TransportError{
			Op:  "building request",
			Err: fmt.Errorf("per_page %d exceeds the crates.io limit of %d", count, MaxPerPage),
		}
	}

	params := url.Values{}
	params.Set("page", strconv.FormatUint(uint64(page), 10))
	params.Set("per_page", strconv.FormatUint(uint64(count), 10))
	params.Set("q", query)
	params.Set("sort", sort.Token())
	endpoint := c.baseURL + "/crates?" + params.Encode()

	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &TransportError{Op: "creating request", Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	debuglog.WithFields(map[string]any{
		"q": query, "page": page, "per_page": count, "sort": sort.Token(),
	}).Debugf("GET %s/crates", c.baseURL)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "fetching crates", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{Op: "fetching crates", StatusCode: resp.StatusCode}
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &TransportError{Op: "decoding response", Err: err}
	}

	return &SearchResult{Total: body.Meta.Total, Crates: body.Crates}, nil
}
