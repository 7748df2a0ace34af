package instrument

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "rewatch_fetch"

// Metrics holds fetch timings on a private registry so repeated runs in one
// process (tests, for instance) never collide on registration.
type Metrics struct {
	registry *prometheus.Registry

	RequestSeconds    prometheus.Histogram
	ProcessingSeconds prometheus.Histogram
	Pages             prometheus.Counter
	Videos            *prometheus.CounterVec
	RunSeconds        prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "GraphQL page request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		ProcessingSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "page_processing_duration_seconds",
			Help:      "Time spent parsing, filtering and rendering one page",
			Buckets:   prometheus.DefBuckets,
		}),
		Pages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_total",
			Help:      "Pages fetched",
		}),
		Videos: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "videos_total",
			Help:      "Videos observed, by outcome",
		}, []string{"outcome"}),
		RunSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of the last fetch",
		}),
	}
	m.registry.MustRegister(m.RequestSeconds, m.ProcessingSeconds, m.Pages, m.Videos, m.RunSeconds)
	return m
}

func (m *Metrics) observePage(p PageTiming) {
	m.Pages.Inc()
	m.RequestSeconds.Observe(p.Request.Seconds())
	m.ProcessingSeconds.Observe(p.Processing.Seconds())
	m.Videos.WithLabelValues("matched").Add(float64(p.Matched))
	m.Videos.WithLabelValues("skipped").Add(float64(p.Records - p.Matched))
}

func (m *Metrics) observeRun(d time.Duration) {
	m.RunSeconds.Set(d.Seconds())
}

// WriteTextfile writes the node-exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
