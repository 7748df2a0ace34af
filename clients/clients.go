package clients

import (
	"net/http"
	"time"
)

const defaultTimeout = 60 * time.Second

type HTTP struct{ c *http.Client }

// NewHTTP returns a client with the given timeout; zero keeps the default.
func NewHTTP(timeout time.Duration) *HTTP {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTP{c: &http.Client{Timeout: timeout}}
}

// WrapHTTP reuses an existing client, e.g. one built by httptest.
func WrapHTTP(c *http.Client) *HTTP {
	if c == nil {
		return NewHTTP(0)
	}
	return &HTTP{c: c}
}
