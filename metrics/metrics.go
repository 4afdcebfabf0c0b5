package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const DefaultNamespace = "rest"

// Recorder receives executor events. It satisfies httpclient.IHttpStatusHandler.
type Recorder interface {
	OnRequest(status string)
	OnRetry()
	ObserveRequestDuration(method string, d time.Duration)
	RecordExhausted()
	RecordTranscriptWrite(status string)
	RecordReplay(status string)
}

type NoopMetrics struct{}

func NewNoopMetrics() Recorder {
	return &NoopMetrics{}
}

func (n *NoopMetrics) OnRequest(status string) {}

func (n *NoopMetrics) OnRetry() {}

func (n *NoopMetrics) ObserveRequestDuration(method string, d time.Duration) {}

func (n *NoopMetrics) RecordExhausted() {}

func (n *NoopMetrics) RecordTranscriptWrite(status string) {}

func (n *NoopMetrics) RecordReplay(status string) {}

// Config defines configuration for executor metrics
type Config struct {
	Namespace string // default: "rest"
}

type PrometheusMetrics struct {
	requests         *prometheus.CounterVec
	retries          prometheus.Counter
	exhausted        prometheus.Counter
	requestDuration  *prometheus.HistogramVec
	transcriptWrites *prometheus.CounterVec
	replayLookups    *prometheus.CounterVec
}

// NewPrometheusMetrics registers the executor metrics with reg.
// A nil reg registers with the default Prometheus registry.
func NewPrometheusMetrics(cfg Config, reg prometheus.Registerer) *PrometheusMetrics {
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultNamespace
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)

	return &PrometheusMetrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "requests_total",
			Help:      "The total number of command attempts",
		}, []string{"status"}), // status: "success", "error"

		retries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "retries_total",
			Help:      "The total number of retries after a failed attempt",
		}),

		exhausted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "retry_exhausted_total",
			Help:      "The total number of retried commands that never succeeded",
		}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "request_duration_seconds",
			Help:      "Duration of single command attempts",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),

		transcriptWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "transcript_writes_total",
			Help:      "Transcript append attempts",
		}, []string{"status"}), // status: "success", "error"

		replayLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "replay_lookups_total",
			Help:      "Replay store lookups",
		}, []string{"status"}), // status: "hit", "miss"
	}
}

func (p *PrometheusMetrics) OnRequest(status string) {
	p.requests.WithLabelValues(status).Inc()
}

func (p *PrometheusMetrics) OnRetry() {
	p.retries.Inc()
}

func (p *PrometheusMetrics) ObserveRequestDuration(method string, d time.Duration) {
	p.requestDuration.WithLabelValues(method).Observe(d.Seconds())
}

func (p *PrometheusMetrics) RecordExhausted() {
	p.exhausted.Inc()
}

func (p *PrometheusMetrics) RecordTranscriptWrite(status string) {
	p.transcriptWrites.WithLabelValues(status).Inc()
}

func (p *PrometheusMetrics) RecordReplay(status string) {
	p.replayLookups.WithLabelValues(status).Inc()
}
