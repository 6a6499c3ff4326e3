package tui

import (
	"github.com/pders01/cratuity/internal/cache"
	"github.com/pders01/cratuity/internal/crates"
	"github.com/pders01/cratuity/internal/feed"
)

type Mode int

const (
	ModeNormal Mode = iota
	ModeInput
	ModeSorting
	ModeDetails
	ModeFind
)

// Submitter hands a planned fetch to the search worker. TrySubmit never
// blocks and reports false while the worker's slot is full.
type Submitter interface {
	TrySubmit(req cache.FetchRequest) (bool, error)
}

type Opener interface {
	Open(link string) error
}

type ReleaseSource interface {
	Releases(crate string) ([]feed.Release, error)
}

type Finder interface {
	Find(query string, limit int) ([]crates.Crate, error)
}

type detailsLoadedMsg struct {
	name    string
	content string
}

type findResultsMsg struct {
	query   string
	results []crates.Crate
	err     error
}

type copiedMsg struct {
	line string
	err  error
}

type openedMsg struct {
	link string
	err  error
}
