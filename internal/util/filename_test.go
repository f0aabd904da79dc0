package util

import "testing"

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		// Untouched input
		{"plain word", "Beach", "Beach"},
		{"case preserved", "MomAndDad", "MomAndDad"},
		{"internal space kept", "Beach 2024", "Beach 2024"},
		{"time tag", "2024-06", "2024-06"},

		// Reserved characters
		{"slash", "Mom/Dad", "Mom-Dad"},
		{"backslash", `a\b`, "a-b"},
		{"colon and wildcard", "a:b*c", "a-b-c"},
		{"quotes and angles", `<"trip">`, "trip"},
		{"pipe", "a|b", "a-b"},
		{"reserved run collapses", "a//\\b", "a-b"},

		// Whitespace and trimming
		{"surrounding whitespace", "  trip  ", "trip"},
		{"whitespace collapsed", "summer \t trip", "summer trip"},
		{"trailing dots", "trip...", "trip"},
		{"surrounding dashes", "--trip--", "trip"},

		// Control characters
		{"control chars stripped", "tr\x00ip\n", "trip"},

		// Edge cases
		{"empty string", "", ""},
		{"only reserved", "///", ""},
		{"only dots", "...", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SanitizeFilename(tt.input)
			if result != tt.expected {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
