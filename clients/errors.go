package clients

import "fmt"

// TransportError reports a failed exchange with the GraphQL endpoint.
// StatusCode is zero when no response was received.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("rewatch %s: HTTP %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("rewatch %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// MalformedResponseError reports a response body that does not have the
// shape of a videos page.
type MalformedResponseError struct {
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("rewatch decode: %s: %v", e.Reason, e.Err)
	}
	return "rewatch decode: " + e.Reason
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

func malformed(reason string, err error) error {
	return &MalformedResponseError{Reason: reason, Err: err}
}
