package orchestrator

import "time"

// Window is the inclusive instant range covered by two calendar dates:
// from midnight starting StartDate to the last nanosecond of EndDate.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow builds the window in loc. The lower bound is midnight of the
// start date itself, not of the day before it. When end is before start the
// window is empty and matches nothing.
func NewWindow(start, end time.Time, loc *time.Location) Window {
	if loc == nil {
		loc = time.Local
	}
	return Window{
		Start: startOfDay(start, loc),
		End:   startOfDay(end, loc).AddDate(0, 0, 1).Add(-time.Nanosecond),
	}
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// Classify places t against the window. Anything not in range and not
// older than Start counts as after the window.
func (w Window) Classify(t time.Time) Placement {
	if t.Before(w.Start) {
		return BeforeRange
	}
	if !t.After(w.End) {
		return InRange
	}
	return AfterRange
}

// Empty reports whether no instant can fall inside the window.
func (w Window) Empty() bool { return w.End.Before(w.Start) }
