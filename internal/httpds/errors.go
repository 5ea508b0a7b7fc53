package httpds

import "fmt"

// APIError is the structured failure surfaced after the final attempt:
// the vendor's last response, or the last transport failure when no
// response was received (Status == 0). The URL has credential-bearing
// query parameters masked, since API errors end up in logs.
type APIError struct {
	Status     int
	StatusText string
	URL        string
	Body       string

	cause error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("vendor request %s failed: %v", e.URL, e.cause)
	}
	return fmt.Sprintf("vendor request %s failed: %d %s", e.URL, e.Status, e.StatusText)
}

// Unwrap exposes the transport-level cause so callers can match
// context.DeadlineExceeded and friends with errors.Is.
func (e *APIError) Unwrap() error { return e.cause }
