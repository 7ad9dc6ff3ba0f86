// Package apperr defines sentinel errors shared across service layers.
package apperr

import "errors"

// ErrNotFound marks a missing key, project, or task. Callers branch on it
// with errors.Is to map storage misses to their own not-found semantics.
var ErrNotFound = errors.New("not found")
