// ABOUTME: Common media store errors
// ABOUTME: Enables consistent error handling for gallery callers

package store

import "errors"

// ErrNotFound is returned when neither artifact of a record exists.
var ErrNotFound = errors.New("not found")
