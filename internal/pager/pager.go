// Package pager answers UI page requests from the cache and plans remote
// fetches for misses. It is used only from the UI goroutine.
package pager

import (
	"github.com/pders01/cratuity/internal/cache"
	"github.com/pders01/cratuity/internal/crates"
	"github.com/pders01/cratuity/internal/debuglog"
	"github.com/pders01/cratuity/internal/events"
)

// Request is one UI page of a result set.
type Request struct {
	Query    string
	Page     uint32
	PageSize uint32
	Sort     crates.Sort
}

// Indexer receives every crate applied to the cache.
type Indexer interface {
	Add(cs []crates.Crate) error
}

// Pager answers page requests from one cache and plans fetches for misses.
type Pager struct {
	cache *cache.Cache
	index Indexer
}

// New creates a pager over c. idx may be nil.
func New(c *cache.Cache, idx Indexer) *Pager {
	return &Pager{cache: c, index: idx}
}

// BatchFactor is the number of UI pages one planned fetch covers.
func (p *Pager) BatchFactor() uint32 {
	return p.cache.BatchFactor()
}

// Current returns the page if it is resident. It never plans a fetch.
func (p *Pager) Current(req Request) (cache.Page, bool) {
	return p.cache.Lookup(req.Query, req.Page, req.PageSize, req.Sort)
}

// Request returns the page on a hit. On a miss it returns the remote batch
// that would make the page resident; the caller submits it.
func (p *Pager) Request(req Request) (cache.Page, *cache.FetchRequest) {
	if page, ok := p.Current(req); ok {
		debuglog.Debugf("cache hit %q page %d/%d", req.Query, req.Page, req.PageSize)
		return page, nil
	}

	plan := p.cache.Plan(req.Query, req.Page, req.PageSize, req.Sort)
	debuglog.Debugf("cache miss %q page %d, planning %s", req.Query, req.Page, plan)
	return cache.Page{}, &plan
}

// Apply stores a completed batch.
func (p *Pager) Apply(res events.Results) {
	r := res.Request
	p.cache.Ingest(r.Query, r.Page, r.Count, r.Sort, res.Total, res.Crates)

	if p.index != nil && len(res.Crates) > 0 {
		if err := p.index.Add(res.Crates); err != nil {
			debuglog.Warnf("failed to index %d crates: %v", len(res.Crates), err)
		}
	}
}

// NumPages returns how many pages of pageSize cover total.
func NumPages(total, pageSize uint32) uint32 {
	return cache.CeilDiv(total, pageSize)
}
