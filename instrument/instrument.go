// Package instrument captures fetch timings for diagnostics. Nothing here
// may change the outcome of a fetch: write failures are logged and dropped.
package instrument

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type PageTiming struct {
	Page       int
	Records    int
	Matched    int
	Request    time.Duration
	Processing time.Duration
	Total      time.Duration
}

type Recorder interface {
	PageDone(t PageTiming)
	RunDone(elapsed time.Duration)
}

// Nop discards everything.
type Nop struct{}

func (Nop) PageDone(PageTiming) {}
func (Nop) RunDone(time.Duration) {}

const rule = "=================================================="

// TimingLog keeps a plain-text timing log and optionally mirrors the
// numbers into Metrics. Close writes both artifacts.
type TimingLog struct {
	mu      sync.Mutex
	buf     strings.Builder
	path    string
	metrics *Metrics
	log     *logrus.Entry
}

func NewTimingLog(path string, m *Metrics, log *logrus.Entry) *TimingLog {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &TimingLog{path: path, metrics: m, log: log}
}

func (t *TimingLog) PageDone(p PageTiming) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(&t.buf, "Page %d: %d videos, %d matched\n", p.Page, p.Records, p.Matched)
	fmt.Fprintf(&t.buf, "Query execution time: %d ms\n", p.Total.Milliseconds())
	fmt.Fprintf(&t.buf, "Request time: %d ms\n", p.Request.Milliseconds())
	fmt.Fprintf(&t.buf, "Processing time: %d ms\n", p.Processing.Milliseconds())
	t.buf.WriteString(rule + "\n")
	if t.metrics != nil {
		t.metrics.observePage(p)
	}
}

func (t *TimingLog) RunDone(elapsed time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(&t.buf, "Overall execution time: %d ms\n", elapsed.Milliseconds())
	if t.metrics != nil {
		t.metrics.observeRun(elapsed)
	}
}

// String returns the log text collected so far.
func (t *TimingLog) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buf.String()
}

// Close writes the timing log and the metrics textfile. Failures are logged
// and returned for callers that care; a fetch never should.
func (t *TimingLog) Close(metricsPath string) error {
	var firstErr error
	if t.path != "" {
		if err := os.WriteFile(t.path, []byte(t.String()), 0o644); err != nil {
			t.log.WithError(err).WithField("path", t.path).Warn("could not write timing log")
			firstErr = err
		}
	}
	if t.metrics != nil && metricsPath != "" {
		if err := t.metrics.WriteTextfile(metricsPath); err != nil {
			t.log.WithError(err).WithField("path", metricsPath).Warn("could not write metrics textfile")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
