package event

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingData reports an absent field or out-of-range index seen by a
	// stage. The stage's features fall back to their sentinels.
	ErrMissingData = errors.New("missing data")

	// ErrNoCandidate reports that a stage found nothing to work on, such as
	// an event without jets. It is not a failure.
	ErrNoCandidate = errors.New("no candidate")

	// ErrMalformed reports a record whose counts and arrays disagree. No
	// stage can run on such a record and the run is aborted.
	ErrMalformed = errors.New("malformed event")
)

// PreconditionError describes a malformed record.
type PreconditionError struct {
	Event int64
	Field string
	Count int
	Len   int
}

func (e *PreconditionError) Error() string {
	if e.Count < 0 {
		return fmt.Sprintf("event %d: %s: negative count %d", e.Event, e.Field, e.Count)
	}
	return fmt.Sprintf("event %d: %s has %d entries, count is %d", e.Event, e.Field, e.Len, e.Count)
}

func (e *PreconditionError) Is(target error) bool {
	return target == ErrMalformed
}
