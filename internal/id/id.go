// Package id generates prefixed, URL-safe record identifiers.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// RecipePrefix is the prefix for recipe identifiers.
const RecipePrefix = "rcp"

// Generate creates a prefixed unique ID using NanoID.
// Format: prefix-nanoid (e.g., "rcp-V1StGXR8_Z5jdHi6B-myT").
//
// Returns an error if the system has insufficient entropy for secure random generation.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}
