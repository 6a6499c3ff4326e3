package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/cratuity/internal/crates"
)

// renderHeader returns a title row with a muted subtitle right-aligned
// beside it, truncated to width.
func renderHeader(title, subtitle string, width int) string {
	title = truncateEnd(title, width-2)
	if subtitle == "" {
		return HeaderStyle.Render(title)
	}
	gap := width - lipgloss.Width(title) - lipgloss.Width(subtitle) - 2
	if gap < 2 {
		return lipgloss.JoinVertical(lipgloss.Left,
			HeaderStyle.Render(title),
			renderMuted(truncateEnd(subtitle, width-2)),
		)
	}
	return HeaderStyle.Render(title) + strings.Repeat(" ", gap) + renderMuted(subtitle)
}

// renderInputFrame draws a rounded bordered container around a rendered
// input view.
func renderInputFrame(inputView string, focused bool, contentWidth int) string {
	borderColor := MutedColor
	if focused {
		borderColor = AccentColor
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(contentWidth + 4).
		Render(inputView)
}

func renderCentered(width, height int, content string) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// contentBox pins the body to a fixed height so the footer does not jump.
func contentBox(width, height int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		MaxHeight(height)
}

func renderMuted(text string) string {
	return lipgloss.NewStyle().Foreground(MutedColor).Render(text)
}

func renderHelp(text string) string {
	return HelpStyle.Render(text)
}

// renderCrateCard draws one result: name and version, a one-line
// description and download statistics.
func renderCrateCard(c crates.Crate, selected bool, width int) string {
	inner := max(width-6, 20)

	name := CrateNameStyle.Render(c.Name)
	if selected {
		name = SelectedItemStyle.Render(c.Name)
	}
	version := c.NewestVersion
	if version == "" {
		version = c.MaxVersion
	}
	title := name
	if version != "" {
		title += "  " + renderMuted("v"+version)
	}

	desc := singleLine(c.Description)
	if desc == "" {
		desc = "No description"
	}

	stats := fmt.Sprintf("↓ %s total · %s recent", formatCount(c.Downloads), formatCount(c.RecentDownloads))
	if !c.UpdatedAt.IsZero() {
		stats += " · updated " + c.UpdatedAt.Format("Jan 2, 2006")
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		title,
		truncateEnd(desc, inner),
		TimeStyle.Render(truncateEnd(stats, inner)),
	)

	style := CardStyle
	if selected {
		style = SelectedCardStyle
	}
	return style.Width(inner + 2).Render(body)
}
