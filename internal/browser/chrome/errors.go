package chrome

import (
	"errors"
	"fmt"
)

var (
	// ErrNotLaunched is returned when a session is requested before Launch succeeded.
	ErrNotLaunched = errors.New("browser not launched")
	// ErrSessionClosed is returned by operations on a closed session.
	ErrSessionClosed = errors.New("session closed")
	// ErrWaitTimeout is returned when the awaited event did not arrive in time.
	ErrWaitTimeout = errors.New("timed out waiting for event")
)

// NotOkResponse reports a navigation that reached the server but came back
// with a status outside the 2xx range.
type NotOkResponse struct {
	URL        string
	Status     int64
	StatusText string
}

func (e *NotOkResponse) Error() string {
	return fmt.Sprintf("URL: %s status %d txt %s", e.URL, e.Status, e.StatusText)
}
