// Package errorspkg provides common app errors.
package errorspkg

import "errors"

var (
	// ErrInternal indicates internal server error.
	ErrInternal = errors.New("internal")
	// ErrTimeout indicates that a store operation did not complete in time.
	ErrTimeout = errors.New("store timeout")
)
