package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const Namespace = "rss_later"

// Submission results recorded by the /add handler.
const (
	ResultAdded        = "added"
	ResultDuplicate    = "duplicate"
	ResultMissingToken = "missing_token"
	ResultInvalidToken = "invalid_token"
	ResultInvalidURL   = "invalid_url"
	ResultError        = "error"
)

type Metrics struct {
	SubmissionsTotal     *prometheus.CounterVec
	FetchesTotal         *prometheus.CounterVec
	FetchDurationSeconds prometheus.Histogram
	PersistFailuresTotal prometheus.Counter
	FeedEntries          prometheus.Gauge
	FeedReadsTotal       *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registers all metrics on a private registry together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)
	m := &Metrics{gatherer: reg}

	m.SubmissionsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "submissions_total",
			Help:      "Link submissions by result",
		},
		[]string{"result"},
	)

	m.FetchesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "fetches_total",
			Help:      "Page metadata fetches by page kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	m.FetchDurationSeconds = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of page metadata fetches in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		},
	)

	m.PersistFailuresTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "persist_failures_total",
			Help:      "Appends that failed to write the feed file",
		},
	)

	m.FeedEntries = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "feed_entries",
			Help:      "Number of entries currently in the feed",
		},
	)

	m.FeedReadsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "feed_reads_total",
			Help:      "Feed document requests by HTTP status",
		},
		[]string{"status"},
	)

	return m
}

func (m *Metrics) Submission(result string) {
	m.SubmissionsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) Fetch(kind string, failed bool, elapsed time.Duration) {
	outcome := "ok"
	if failed {
		outcome = "failed"
	}
	m.FetchesTotal.WithLabelValues(kind, outcome).Inc()
	m.FetchDurationSeconds.Observe(elapsed.Seconds())
}

func (m *Metrics) PersistFailure() {
	m.PersistFailuresTotal.Inc()
}

func (m *Metrics) SetEntries(n int) {
	m.FeedEntries.Set(float64(n))
}

func (m *Metrics) FeedRead(status int) {
	m.FeedReadsTotal.WithLabelValues(strconv.Itoa(status)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
