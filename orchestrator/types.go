package orchestrator

import (
	"strings"
	"time"
)

// FetchRequest is everything one fetch needs. StartDate and EndDate are
// calendar dates; only their year, month and day are used.
type FetchRequest struct {
	Subdomain string
	APIKey    string
	StartDate time.Time
	EndDate   time.Time
}

// Placement of a video relative to the requested window.
type Placement int

const (
	InRange Placement = iota
	BeforeRange
	AfterRange
)

func (p Placement) String() string {
	switch p {
	case InRange:
		return "in-range"
	case BeforeRange:
		return "before-range"
	case AfterRange:
		return "after-range"
	}
	return "unknown"
}

// runState is owned by a single Fetch call.
type runState struct {
	rendered       strings.Builder
	matched        int
	seen           int
	pages          int
	cursor         string
	shouldContinue bool
	stoppedEarly   bool
}

// Report is the result of a successful fetch.
type Report struct {
	RunID        string
	Subdomain    string
	Text         string
	MeetingCount int // every video observed, in range or not
	Matched      int
	Pages        int
	StoppedEarly bool
	Window       Window
	Elapsed      time.Duration
}
