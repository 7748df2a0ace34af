package orchestrator

import (
	"fmt"
	"regexp"
	"strings"
)

// InvalidInputError is returned before any network call when a
// FetchRequest cannot be used.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

var subdomainRE = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9-]{0,61}[A-Za-z0-9])?$`)

// Validate checks the caller-side preconditions. The API key's value is
// never part of the error.
func (r FetchRequest) Validate() error {
	if strings.TrimSpace(r.Subdomain) == "" {
		return &InvalidInputError{Field: "subdomain", Reason: "is required"}
	}
	if !subdomainRE.MatchString(r.Subdomain) {
		return &InvalidInputError{Field: "subdomain", Reason: fmt.Sprintf("%q is not a single DNS label", r.Subdomain)}
	}
	if strings.TrimSpace(r.APIKey) == "" {
		return &InvalidInputError{Field: "api key", Reason: "is required"}
	}
	return nil
}
