package feed

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/pders01/cratuity/internal/config"
	"github.com/pders01/cratuity/internal/debuglog"
)

type cachedFeed struct {
	validators Validators
	releases   []Release
}

// Manager loads crate release feeds and remembers the last good copy of each
// so unchanged feeds are answered from a 304.
type Manager struct {
	fetcher *Fetcher
	parser  *Parser
	baseURL string

	mu    sync.Mutex
	feeds map[string]cachedFeed
}

func NewManager(cfg *config.Config) *Manager {
	return &Manager{
		fetcher: NewFetcher(cfg),
		parser:  NewParser(),
		baseURL: strings.TrimRight(cfg.API.ReleaseFeedURL, "/"),
		feeds:   make(map[string]cachedFeed),
	}
}

// FeedURL returns the release feed location for a crate.
func (m *Manager) FeedURL(crate string) string {
	return fmt.Sprintf("%s/%s.xml", m.baseURL, url.PathEscape(crate))
}

// Releases returns the crate's published versions.
func (m *Manager) Releases(crate string) ([]Release, error) {
	if strings.TrimSpace(crate) == "" {
		return nil, fmt.Errorf("empty crate name")
	}

	feedURL := m.FeedURL(crate)

	m.mu.Lock()
	cached, ok := m.feeds[feedURL]
	m.mu.Unlock()

	resp, updated, err := m.fetcher.Fetch(feedURL, cached.validators)
	if err != nil {
		debuglog.Warnf("release feed for %s: %v", crate, err)
		return nil, fmt.Errorf("loading releases for %s: %w", crate, err)
	}

	if !updated {
		if ok {
			debuglog.Debugf("release feed for %s not modified", crate)
			return cached.releases, nil
		}
		return nil, fmt.Errorf("loading releases for %s: not modified without a cached copy", crate)
	}
	defer resp.Body.Close()

	releases, err := m.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("loading releases for %s: %w", crate, err)
	}

	m.mu.Lock()
	m.feeds[feedURL] = cachedFeed{validators: ValidatorsFrom(resp), releases: releases}
	m.mu.Unlock()

	debuglog.Debugf("loaded %d releases for %s", len(releases), crate)
	return releases, nil
}
