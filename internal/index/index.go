// Package index keeps an in-memory full-text index of every crate seen during
// the session so the user can find one again without another remote search.
package index

import (
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/pders01/cratuity/internal/crates"
)

// Index is safe for concurrent use.
type Index struct {
	mu     sync.RWMutex
	idx    bleve.Index
	crates map[string]crates.Crate
}

// New creates an empty memory-only index.
func New() (*Index, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("creating session index: %w", err)
	}
	return &Index{idx: idx, crates: make(map[string]crates.Crate)}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentMapping()

	name := bleve.NewTextFieldMapping()
	name.Analyzer = standard.Name
	name.Store = true
	name.IncludeTermVectors = true

	desc := bleve.NewTextFieldMapping()
	desc.Analyzer = standard.Name
	desc.Store = false

	dm.AddFieldMappingsAt("name", name)
	dm.AddFieldMappingsAt("description", desc)

	im.DefaultMapping = dm
	return im
}

// Add indexes crates, replacing earlier copies with the same name.
func (i *Index) Add(cs []crates.Crate) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	batch := i.idx.NewBatch()
	added := make(map[string]crates.Crate, len(cs))
	for _, c := range cs {
		if c.Name == "" {
			continue
		}
		if err := batch.Index(c.Name, map[string]any{
			"name":        c.Name,
			"description": c.Description,
		}); err != nil {
			return fmt.Errorf("indexing %s: %w", c.Name, err)
		}
		added[c.Name] = c
	}
	if err := i.idx.Batch(batch); err != nil {
		return fmt.Errorf("indexing %d crates: %w", len(added), err)
	}

	for name, c := range added {
		i.crates[name] = c
	}
	return nil
}

// Find returns up to limit crates matching query, best match first. Queries
// shorter than two characters return nothing.
func (i *Index) Find(query string, limit int) ([]crates.Crate, error) {
	if len(strings.TrimSpace(query)) < 2 || limit <= 0 {
		return []crates.Crate{}, nil
	}

	var qs []bleveQuery.Query
	for _, tok := range tokenize(query) {
		qn := bleve.NewMatchQuery(tok)
		qn.SetField("name")
		qn.SetBoost(4.0)
		qs = append(qs, qn)

		qnp := bleve.NewPrefixQuery(tok)
		qnp.SetField("name")
		qnp.SetBoost(3.5)
		qs = append(qs, qnp)

		qd := bleve.NewMatchQuery(tok)
		qd.SetField("description")
		qd.SetBoost(2.0)
		qs = append(qs, qd)

		qdp := bleve.NewPrefixQuery(tok)
		qdp.SetField("description")
		qdp.SetBoost(1.8)
		qs = append(qs, qdp)
	}
	if len(qs) == 0 {
		return []crates.Crate{}, nil
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(qs...), limit, 0, false)
	res, err := i.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("searching session index: %w", err)
	}

	out := make([]crates.Crate, 0, len(res.Hits))
	for _, h := range res.Hits {
		if c, ok := i.crates[h.ID]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// DocCount reports how many crates are indexed.
func (i *Index) DocCount() (int, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	n, err := i.idx.DocCount()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.idx.Close()
}

func tokenize(text string) []string {
	var terms []string
	current := strings.Builder{}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			current.WriteRune(unicode.ToLower(r))
		} else if current.Len() > 0 {
			if term := current.String(); len(term) > 1 {
				terms = append(terms, term)
			}
			current.Reset()
		}
	}

	if current.Len() > 1 {
		terms = append(terms, current.String())
	}

	return terms
}
