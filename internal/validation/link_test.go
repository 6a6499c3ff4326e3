package validation

import (
	"strings"
	"testing"
)

func TestLinkValidator_ValidateAndNormalize(t *testing.T) {
	validator := NewLinkValidator()

	tests := []struct {
		name        string
		input       string
		expected    string
		expectError bool
	}{
		{"docs.rs link", "https://docs.rs/serde", "https://docs.rs/serde", false},
		{"repository link", "https://github.com/serde-rs/serde", "https://github.com/serde-rs/serde", false},
		{"missing scheme", "serde.rs", "https://serde.rs", false},
		{"surrounding whitespace", "  https://docs.rs/tokio  ", "https://docs.rs/tokio", false},
		{"plain http", "http://example.org/crate", "http://example.org/crate", false},
		{"empty", "", "", true},
		{"ftp scheme", "ftp://example.org/file", "", true},
		{"javascript scheme", "javascript://alert(1)", "", true},
		{"file scheme", "file:///etc/passwd", "", true},
		{"html injection", "https://docs.rs/<script>", "", true},
		{"embedded space", "https://docs.rs/a b", "", true},
		{"localhost", "http://localhost:8080/docs", "", true},
		{"loopback ip", "http://127.0.0.1/docs", "", true},
		{"private ip", "http://192.168.1.10/docs", "", true},
		{"ipv6 loopback", "http://[::1]:80/", "", true},
		{"javascript query", "https://docs.rs/?u=javascript:alert(1)", "", true},
		{"too long", "https://docs.rs/" + strings.Repeat("a", 2048), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validator.ValidateAndNormalize(tt.input)
			if tt.expectError {
				if err == nil {
					t.Errorf("expected error for %q, got %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error for %q: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ValidateAndNormalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestPermissiveLinkValidator(t *testing.T) {
	validator := NewPermissiveLinkValidator()

	for _, input := range []string{
		"http://localhost:8080/docs",
		"http://127.0.0.1:3000/",
		"http://192.168.1.10/docs",
	} {
		if _, err := validator.ValidateAndNormalize(input); err != nil {
			t.Errorf("permissive validator rejected %q: %v", input, err)
		}
	}
}

func TestIsPrivateIP(t *testing.T) {
	tests := map[string]bool{
		"10.1.2.3":     true,
		"172.16.0.1":   true,
		"192.168.0.1":  true,
		"169.254.1.1":  true,
		"127.0.0.1":    true,
		"0.0.0.0":      true,
		"fd00::1":      true,
		"fe80::1":      true,
		"8.8.8.8":      false,
		"151.101.1.55": false,
		"2606:4700::1": false,
	}

	for input, expected := range tests {
		ip := parseIP(t, input)
		if got := isPrivateIP(ip); got != expected {
			t.Errorf("isPrivateIP(%s) = %v, want %v", input, got, expected)
		}
	}
}
