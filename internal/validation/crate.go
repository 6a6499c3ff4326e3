package validation

import (
	"fmt"
	"strings"
)

// MaxCrateNameLength is the longest name crates.io accepts.
const MaxCrateNameLength = 64

// ValidateCrateName checks a name against the crates.io naming rules: ASCII
// letters, digits, '-' and '_', starting with a letter.
func ValidateCrateName(name string) error {
	if name == "" {
		return fmt.Errorf("crate name cannot be empty")
	}
	if len(name) > MaxCrateNameLength {
		return fmt.Errorf("crate name too long (max %d characters)", MaxCrateNameLength)
	}

	first := name[0]
	if !(first >= 'a' && first <= 'z' || first >= 'A' && first <= 'Z') {
		return fmt.Errorf("crate name must start with a letter")
	}

	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return fmt.Errorf("crate name contains invalid character %q", r)
		}
	}
	return nil
}

// SanitizeQuery collapses whitespace and strips control characters from a
// search term.
func SanitizeQuery(query string) string {
	var b strings.Builder
	for _, r := range query {
		if r < 0x20 || r == 0x7f {
			r = ' '
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
