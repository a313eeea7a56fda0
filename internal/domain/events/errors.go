package events

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("event not found")

	// ErrRegistrationClosed refuses a registration because acceptJobs is
	// false. The flag is re-read inside the insert transaction, so a
	// toggle that lands before the insert wins.
	ErrRegistrationClosed = errors.New("event is not accepting registrations")

	ErrJobRequirementNotFound = errors.New("job requirement not found")

	ErrSubscriberNotFound = errors.New("subscriber not found")
)

// CrossEntityError reports a reference that exists but belongs to a
// different parent, such as a job requirement from another event.
type CrossEntityError struct {
	Field   string
	Message string
}

func (e CrossEntityError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
