// Package events merges the search worker and the ticker into one ordered
// stream consumed by the UI loop.
package events

import (
	"time"

	"github.com/pders01/cratuity/internal/cache"
	"github.com/pders01/cratuity/internal/crates"
)

// Event is anything delivered to the UI loop through a Stream.
type Event interface {
	isEvent()
}

// Results carries a completed remote batch.
type Results struct {
	Request cache.FetchRequest
	Total   uint32
	Crates  []crates.Crate
}

// FetchFailed reports a remote batch that could not be fetched. The cache is
// left untouched.
type FetchFailed struct {
	Request cache.FetchRequest
	Err     error
}

// Tick drives time-based UI state such as toast expiry.
type Tick struct {
	At time.Time
}

func (Results) isEvent()     {}
func (FetchFailed) isEvent() {}
func (Tick) isEvent()        {}
