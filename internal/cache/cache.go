// Package cache holds search results keyed by query and sort order so pages
// already fetched can be redrawn without another round trip.
package cache

import (
	"fmt"

	"github.com/pders01/cratuity/internal/crates"
)

// DefaultBatchFactor is how many UI pages one remote fetch covers.
const DefaultBatchFactor uint32 = 10

// Signature identifies one logical result set.
type Signature struct {
	Query string
	Sort  crates.Sort
}

// Entry is the cached state of one signature. Records are keyed by absolute
// position in the full result set, not by page.
type Entry struct {
	Total   uint32
	Records map[uint32]crates.Crate
}

// Page is a fully resident window of an entry.
type Page struct {
	Total  uint32
	Crates []crates.Crate
}

// FetchRequest is a remote request in the API's own pagination: Count records
// starting at (Page-1)*Count.
type FetchRequest struct {
	Query string
	Sort  crates.Sort
	Page  uint32
	Count uint32
}

func (r FetchRequest) String() string {
	return fmt.Sprintf("%q sort=%s page=%d count=%d", r.Query, r.Sort.Token(), r.Page, r.Count)
}

// Cache is not safe for concurrent use. It is owned by the UI goroutine.
type Cache struct {
	entries     map[Signature]*Entry
	batchFactor uint32
}

// New creates an empty cache. A batchFactor of 0 selects DefaultBatchFactor.
func New(batchFactor uint32) *Cache {
	if batchFactor == 0 {
		batchFactor = DefaultBatchFactor
	}
	return &Cache{
		entries:     make(map[Signature]*Entry),
		batchFactor: batchFactor,
	}
}

// BatchFactor returns the over-fetch multiplier used by Plan.
func (c *Cache) BatchFactor() uint32 {
	return c.batchFactor
}

// CeilDiv returns ceil(a/b). It panics if b is zero.
func CeilDiv(a, b uint32) uint32 {
	if b == 0 {
		panic("cache: CeilDiv by zero")
	}
	if a == 0 {
		return 0
	}
	return uint32((uint64(a) + uint64(b) - 1) / uint64(b))
}

func mustValid(op string, page, pageSize uint32) {
	if page == 0 || pageSize == 0 {
		panic(fmt.Sprintf("cache: invalid %s page=%d size=%d", op, page, pageSize))
	}
}

// window returns the absolute range [start, end) for a page, clamped to total.
func window(page, pageSize, total uint32) (uint64, uint64) {
	start := uint64(page-1) * uint64(pageSize)
	end := start + uint64(pageSize)
	if end > uint64(total) {
		end = uint64(total)
	}
	if start > end {
		start = end
	}
	return start, end
}

// Lookup returns the requested window if every record in it is cached.
// Partial windows are reported as a miss.
func (c *Cache) Lookup(query string, page, pageSize uint32, sort crates.Sort) (Page, bool) {
	mustValid("lookup", page, pageSize)
	e, ok := c.entries[Signature{Query: query, Sort: sort}]
	if !ok {
		return Page{}, false
	}

	start, end := window(page, pageSize, e.Total)
	out := make([]crates.Crate, 0, end-start)
	for i := start; i < end; i++ {
		rec, ok := e.Records[uint32(i)]
		if !ok {
			return Page{}, false
		}
		out = append(out, rec)
	}
	return Page{Total: e.Total, Crates: out}, true
}

// IsResident reports whether Lookup would hit.
func (c *Cache) IsResident(query string, page, pageSize uint32, sort crates.Sort) bool {
	mustValid("lookup", page, pageSize)
	e, ok := c.entries[Signature{Query: query, Sort: sort}]
	if !ok {
		return false
	}

	start, end := window(page, pageSize, e.Total)
	for i := start; i < end; i++ {
		if _, ok := e.Records[uint32(i)]; !ok {
			return false
		}
	}
	return true
}

// Ingest stores a completed fetch. Records land at (page-1)*pageSize onward
// and the entry's total is replaced.
func (c *Cache) Ingest(query string, page, pageSize uint32, sort crates.Sort, total uint32, records []crates.Crate) {
	mustValid("ingest", page, pageSize)

	sig := Signature{Query: query, Sort: sort}
	e, ok := c.entries[sig]
	if !ok {
		e = &Entry{Records: make(map[uint32]crates.Crate, len(records))}
		c.entries[sig] = e
	}

	e.Total = total
	start := uint64(page-1) * uint64(pageSize)
	for i, rec := range records {
		e.Records[uint32(start+uint64(i))] = rec
	}
}

// Entry returns a copy of the cached state for a signature.
func (c *Cache) Entry(query string, sort crates.Sort) (Entry, bool) {
	e, ok := c.entries[Signature{Query: query, Sort: sort}]
	if !ok {
		return Entry{}, false
	}

	records := make(map[uint32]crates.Crate, len(e.Records))
	for k, v := range e.Records {
		records[k] = v
	}
	return Entry{Total: e.Total, Records: records}, true
}

// Len returns the number of cached signatures.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Plan converts a UI page into the remote batch that contains it:
// remote page ceil(page/factor) of factor*pageSize records.
func (c *Cache) Plan(query string, page, pageSize uint32, sort crates.Sort) FetchRequest {
	mustValid("plan", page, pageSize)
	return FetchRequest{
		Query: query,
		Sort:  sort,
		Page:  CeilDiv(page, c.batchFactor),
		Count: c.batchFactor * pageSize,
	}
}
