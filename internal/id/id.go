// Package id generates prefixed, URL-safe record identifiers.
package id

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// PrefixProfile tags sensitivity profile IDs.
const PrefixProfile = "sens"

// Generate returns prefix-nanoid, e.g. "sens-V1StGXR8_Z5jdHi6B-myT".
// It fails only when the system cannot supply secure randomness.
func Generate(prefix string) (string, error) {
	nid, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + nid, nil
}

// MustGenerate is like Generate but panics on failure. Seed tooling only.
func MustGenerate(prefix string) string {
	v, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return v
}

// HasPrefix reports whether v looks like an ID minted with prefix.
func HasPrefix(v, prefix string) bool {
	rest, ok := strings.CutPrefix(v, prefix+"-")
	return ok && rest != ""
}
