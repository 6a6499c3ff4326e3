package crates

import (
	"fmt"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Crate is a single search hit as returned by the crates.io API. Values are
// never mutated once decoded.
type Crate struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	UpdatedAt       time.Time `json:"updated_at"`
	CreatedAt       time.Time `json:"created_at"`
	Downloads       uint64    `json:"downloads"`
	RecentDownloads uint64    `json:"recent_downloads"`
	MaxVersion      string    `json:"max_version"`
	NewestVersion   string    `json:"newest_version"`
	Description     string    `json:"description,omitempty"`
	Documentation   string    `json:"documentation,omitempty"`
	Repository      string    `json:"repository,omitempty"`
	Homepage        string    `json:"homepage,omitempty"`
	Links           Links     `json:"links"`
	ExactMatch      bool      `json:"exact_match"`
}

type Links struct {
	VersionDownloads    string `json:"version_downloads"`
	Versions            string `json:"versions"`
	Owners              string `json:"owners"`
	OwnerTeam           string `json:"owner_team"`
	OwnerUser           string `json:"owner_user"`
	ReverseDependencies string `json:"reverse_dependencies"`
}

// SearchResult is one page of the remote result set.
type SearchResult struct {
	Total  uint32
	Crates []Crate
}

type searchResponse struct {
	Crates []Crate `json:"crates"`
	Meta   struct {
		Total uint32 `json:"total"`
	} `json:"meta"`
}

// DependencyLine renders the crate as a Cargo.toml dependency entry.
func (c Crate) DependencyLine() (string, error) {
	version := c.NewestVersion
	if version == "" {
		version = c.MaxVersion
	}
	if c.Name == "" || version == "" {
		return "", fmt.Errorf("crate %q has no published version", c.Name)
	}

	data, err := toml.Marshal(map[string]string{c.Name: version})
	if err != nil {
		return "", fmt.Errorf("encoding dependency line: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// PreferredLink picks the best page to open for the crate: documentation,
// then repository, then homepage, then the crates.io page itself.
func (c Crate) PreferredLink() string {
	switch {
	case c.Documentation != "":
		return c.Documentation
	case c.Repository != "":
		return c.Repository
	case c.Homepage != "":
		return c.Homepage
	default:
		return "https://crates.io/crates/" + c.Name
	}
}
