// Package util provides common utility functions.
package util

import (
	"regexp"
	"strings"
)

var (
	// Matches path separators and characters reserved on common filesystems.
	reservedCharRe = regexp.MustCompile(`[/\\:*?"<>|]+`)
	// Matches ASCII control characters.
	controlCharRe = regexp.MustCompile(`[\x00-\x1f\x7f]+`)
	// Matches runs of whitespace.
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// SanitizeFilename makes input safe to use as a single path component.
// Case is preserved; only characters that cannot appear in a filename
// are replaced.
//
// Rules:
//  1. Strip control characters
//  2. Replace reserved characters (path separators, wildcards, quotes) with dashes
//  3. Collapse runs of whitespace to a single space
//  4. Trim surrounding whitespace, dots, and dashes
//
// Examples:
//
//	"Mom/Dad"        → "Mom-Dad"
//	"Beach 2024"     → "Beach 2024"
//	"  trip... "     → "trip"
//	"a:b*c"          → "a-b-c"
func SanitizeFilename(input string) string {
	s := controlCharRe.ReplaceAllString(input, "")
	s = reservedCharRe.ReplaceAllString(s, "-")
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = strings.Trim(s, " .-")
	return s
}
