package store

import (
	"fmt"

	"pouch/internal/domain"
)

// PartialReadError reports a ranges-list read that failed partway through
// the batch. Groups holds the result groups collected before the failure so
// callers can keep the partial history; Err is the underlying cause.
type PartialReadError struct {
	Groups [][]*domain.Message
	Err    error
}

func (e *PartialReadError) Error() string {
	return fmt.Sprintf("range read failed after %d of the requested ranges: %v", len(e.Groups), e.Err)
}

func (e *PartialReadError) Unwrap() error {
	return e.Err
}
