package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/cratuity/internal/crates"
	"github.com/pders01/cratuity/internal/debuglog"
	"github.com/pders01/cratuity/internal/feed"
	"github.com/pders01/cratuity/internal/validation"
)

// maxReleases caps the release history shown in the details view.
const maxReleases = 15

var clipboardWrite = clipboard.WriteAll

func (a *App) copyCrate(c crates.Crate) tea.Cmd {
	return func() tea.Msg {
		line, err := c.DependencyLine()
		if err != nil {
			return copiedMsg{err: err}
		}
		if err := clipboardWrite(line); err != nil {
			return copiedMsg{line: line, err: err}
		}
		return copiedMsg{line: line}
	}
}

func (a *App) openCrate(c crates.Crate) tea.Cmd {
	opener := a.opener
	if opener == nil {
		return nil
	}
	link := c.PreferredLink()
	return func() tea.Msg {
		return openedMsg{link: link, err: opener.Open(link)}
	}
}

func (a *App) loadDetails(c crates.Crate) tea.Cmd {
	renderer, rerr := a.getRenderer()
	source := a.releases
	return func() tea.Msg {
		var (
			releases []feed.Release
			relErr   error
		)
		switch {
		case source == nil:
			relErr = errors.New("no release source")
		default:
			if relErr = validation.ValidateCrateName(c.Name); relErr == nil {
				releases, relErr = source.Releases(c.Name)
			}
		}
		if relErr != nil {
			debuglog.Debugf("releases for %s: %v", c.Name, relErr)
		}

		md := detailsMarkdown(c, releases, relErr)
		if rerr != nil {
			return detailsLoadedMsg{name: c.Name, content: md}
		}
		out, err := renderer.Render(md)
		if err != nil {
			debuglog.Warnf("render details for %s: %v", c.Name, err)
			return detailsLoadedMsg{name: c.Name, content: md}
		}
		return detailsLoadedMsg{name: c.Name, content: out}
	}
}

func (a *App) findCrates(query string) tea.Cmd {
	finder := a.finder
	if finder == nil {
		return nil
	}
	return func() tea.Msg {
		results, err := finder.Find(query, findLimit)
		return findResultsMsg{query: query, results: results, err: err}
	}
}

func detailsMarkdown(c crates.Crate, releases []feed.Release, relErr error) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", c.Name)
	if c.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", singleLine(c.Description))
	}

	b.WriteString("| | |\n|---|---|\n")
	if c.MaxVersion != "" {
		fmt.Fprintf(&b, "| Max version | `%s` |\n", c.MaxVersion)
	}
	if c.NewestVersion != "" && c.NewestVersion != c.MaxVersion {
		fmt.Fprintf(&b, "| Newest version | `%s` |\n", c.NewestVersion)
	}
	fmt.Fprintf(&b, "| Downloads | %s |\n", formatCount(c.Downloads))
	fmt.Fprintf(&b, "| Recent downloads | %s |\n", formatCount(c.RecentDownloads))
	if !c.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "| Created | %s |\n", c.CreatedAt.Format("Jan 2, 2006"))
	}
	if !c.UpdatedAt.IsZero() {
		fmt.Fprintf(&b, "| Updated | %s |\n", c.UpdatedAt.Format("Jan 2, 2006"))
	}

	b.WriteString("\n## Links\n\n")
	if c.Documentation != "" {
		fmt.Fprintf(&b, "- Documentation: %s\n", c.Documentation)
	}
	if c.Repository != "" {
		fmt.Fprintf(&b, "- Repository: %s\n", c.Repository)
	}
	if c.Homepage != "" {
		fmt.Fprintf(&b, "- Homepage: %s\n", c.Homepage)
	}
	fmt.Fprintf(&b, "- crates.io: https://crates.io/crates/%s\n", c.Name)

	if line, err := c.DependencyLine(); err == nil {
		fmt.Fprintf(&b, "\n## Cargo.toml\n\n```toml\n%s\n```\n", line)
	}

	b.WriteString("\n## Releases\n\n")
	switch {
	case relErr != nil:
		fmt.Fprintf(&b, "_%s_\n", MsgNoReleases)
	case len(releases) == 0:
		b.WriteString("_No releases published_\n")
	default:
		for i, r := range releases {
			if i == maxReleases {
				fmt.Fprintf(&b, "- …and %d more\n", len(releases)-maxReleases)
				break
			}
			label := r.Version
			if label == "" {
				label = r.Title
			}
			if r.Published.IsZero() {
				fmt.Fprintf(&b, "- **%s**\n", label)
			} else {
				fmt.Fprintf(&b, "- **%s** · %s\n", label, r.Published.Format("Jan 2, 2006"))
			}
		}
	}

	return b.String()
}
