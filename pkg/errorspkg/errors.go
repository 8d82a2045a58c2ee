// Package errorspkg provides common app errors.
package errorspkg

import "errors"

var (
	// ErrInternal indicates internal server error, including any storage failure.
	ErrInternal = errors.New("internal")
	// ErrConflict indicates that the storage rejected a unit of work because of a concurrent update.
	// The whole unit of work may be retried.
	ErrConflict = errors.New("storage conflict")
)
