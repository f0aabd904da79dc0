// Package id generates collision-resistant identifiers for domain objects.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Well-known prefixes used across the catalog.
// Time tags keep the "time-" prefix clients historically relied on.
const (
	PrefixImage   = "img"
	PrefixGroup   = "grp"
	PrefixTag     = "tag"
	PrefixTimeTag = "time"
)

// Generate creates a prefixed unique ID using NanoID, e.g. "tag-V1StGXR8_Z5jdHi6B-myT".
//
// The earlier scheme derived IDs from timestamps, which collides when two
// objects are created within the same tick. NanoIDs are random and compact
// (21 URL-safe characters); the string stays opaque to comparison.
//
// Returns an error if the system has insufficient entropy.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
// Use only where entropy exhaustion should crash the program.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}
