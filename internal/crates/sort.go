package crates

import (
	"fmt"
	"strings"
)

// Sort selects the ordering crates.io applies to search results.
type Sort int

const (
	SortRelevance Sort = iota
	SortAllTimeDownloads
	SortRecentDownloads
	SortRecentUpdates
	SortNewlyAdded
)

// AllSorts lists every sort in picker order.
var AllSorts = []Sort{
	SortRelevance,
	SortAllTimeDownloads,
	SortRecentDownloads,
	SortRecentUpdates,
	SortNewlyAdded,
}

// Token returns the query parameter value understood by the API.
func (s Sort) Token() string {
	switch s {
	case SortAllTimeDownloads:
		return "downloads"
	case SortRecentDownloads:
		return "recent-downloads"
	case SortRecentUpdates:
		return "recent-updates"
	case SortNewlyAdded:
		return "new"
	default:
		return "relevance"
	}
}

func (s Sort) String() string {
	switch s {
	case SortAllTimeDownloads:
		return "All Time Downloads"
	case SortRecentDownloads:
		return "Recent Downloads"
	case SortRecentUpdates:
		return "Recently Updated"
	case SortNewlyAdded:
		return "Newly Added"
	default:
		return "Relevance"
	}
}

// ParseSort accepts either a wire token ("recent-downloads") or a display
// name ("Recent Downloads"), case-insensitively.
func ParseSort(s string) (Sort, error) {
	in := strings.ToLower(strings.TrimSpace(s))
	if in == "" {
		return SortRelevance, nil
	}
	for _, candidate := range AllSorts {
		if in == candidate.Token() || in == strings.ToLower(candidate.String()) {
			return candidate, nil
		}
	}
	return SortRelevance, fmt.Errorf("unknown sort %q", s)
}
