package tui

import (
	"fmt"
	"strings"
)

// Canonical short status messages used across the app.
const (
	MsgSearching      = "Searching…"
	MsgNoResults      = "No crates found"
	MsgLoadingDetails = "Loading details…"
	MsgNoSelection    = "Nothing selected"
	MsgSearchFailed   = "Search failed"
	MsgRetryHint      = "Search failed. Press r to retry."
	MsgClipboardError = "Clipboard error"
	MsgOpenError      = "Cannot open in browser"
	MsgNoReleases     = "Release history unavailable"
)

func MsgPage(page, pages uint32) string {
	if pages == 0 {
		pages = 1
	}
	return fmt.Sprintf("Page %d of %d", page, pages)
}

func MsgResultsCount(n uint32) string {
	if n == 1 {
		return "1 crate"
	}
	return fmt.Sprintf("%s crates", formatCount(uint64(n)))
}

func MsgCopied(line string) string {
	return fmt.Sprintf("Copied %s", strings.TrimSpace(line))
}

func MsgPageSize(n uint32) string {
	return fmt.Sprintf("%d crates per page", n)
}
