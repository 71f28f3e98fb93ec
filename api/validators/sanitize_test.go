package validators

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  hello  ", 10); got != "hello" {
		t.Fatalf("expected trimmed value, got %q", got)
	}
	if got := SanitizeString("abcdef", 3); got != "abc" {
		t.Fatalf("expected capped value, got %q", got)
	}
	if got := SanitizeString("abcdef", 0); got != "abcdef" {
		t.Fatalf("expected uncapped value, got %q", got)
	}
}

func TestSanitizeStringKeepsRunesIntact(t *testing.T) {
	input := strings.Repeat("é", 5)
	got := SanitizeString(input, 3)
	if !utf8.ValidString(got) {
		t.Fatalf("truncated value is not valid UTF-8: %q", got)
	}
	if got != strings.Repeat("é", 3) {
		t.Fatalf("expected three runes, got %q", got)
	}
}
