package client

import "fmt"

// RemoteError wraps a transport or HTTP failure from the service with
// the request context that produced it.
type RemoteError struct {
	Op     string // HTTP method
	URL    string
	Status int // zero when the request never reached the service
	Err    error
}

func (e *RemoteError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s failed with status %d: %v", e.Op, e.URL, e.Status, e.Err)
	}

	return fmt.Sprintf("%s %s failed: %v", e.Op, e.URL, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}
