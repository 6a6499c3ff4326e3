package feed

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// Release is one published version of a crate.
type Release struct {
	Version   string
	Title     string
	Link      string
	Published time.Time
}

type Parser struct {
	parser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		parser: gofeed.NewParser(),
	}
}

var versionPattern = regexp.MustCompile(`v?(\d+\.\d+\.\d+(?:[-+][0-9A-Za-z.\-+]+)?)`)

// Parse reads a crate's release feed, newest first as published.
func (p *Parser) Parse(reader io.Reader) ([]Release, error) {
	feed, err := p.parser.Parse(reader)
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}

	releases := make([]Release, 0, len(feed.Items))
	for _, item := range feed.Items {
		r := Release{
			Version: extractVersion(item),
			Title:   strings.TrimSpace(item.Title),
			Link:    item.Link,
		}

		if item.PublishedParsed != nil {
			r.Published = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			r.Published = *item.UpdatedParsed
		}

		releases = append(releases, r)
	}

	return releases, nil
}

func extractVersion(item *gofeed.Item) string {
	for _, s := range []string{item.Title, item.Link, item.GUID} {
		if m := versionPattern.FindStringSubmatch(s); m != nil {
			return m[1]
		}
	}
	return strings.TrimSpace(item.Title)
}
