// Package id provides unique identifier generation for assembly runs.
package id

import "github.com/google/uuid"

// Prefix starts every run ID.
const Prefix = "run-"

// Generate creates a new unique run ID.
// Format: run-<uuid>
// Example: run-6f1c2b9e-3d4a-4c8e-9b7a-1f2e3d4c5b6a
func Generate() string {
	return Prefix + uuid.New().String()
}
