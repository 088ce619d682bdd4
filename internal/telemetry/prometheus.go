package telemetry

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var durationBucketsMS = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000}

// PrometheusInstruments records the same metrics as Instruments into a
// dedicated registry served by Handler.
type PrometheusInstruments struct {
	registry      *prometheus.Registry
	queryCount    prometheus.Counter
	queryErrors   prometheus.Counter
	queryDuration prometheus.Histogram
	rejections    *prometheus.CounterVec
	toolDuration  prometheus.Histogram
}

func NewPrometheusInstruments() *PrometheusInstruments {
	p := &PrometheusInstruments{
		registry: prometheus.NewRegistry(),
		queryCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "querygate_queries_total",
			Help: "Validated SQL queries executed successfully.",
		}),
		queryErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "querygate_query_errors_total",
			Help: "Validated SQL queries that failed during execution.",
		}),
		queryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "querygate_query_duration_ms",
			Help:    "SQL query execution duration in milliseconds.",
			Buckets: durationBucketsMS,
		}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "querygate_validation_rejections_total",
			Help: "Candidate SQL rejected by validation.",
		}, []string{"reason"}),
		toolDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "querygate_tool_duration_ms",
			Help:    "MCP tool call duration in milliseconds.",
			Buckets: durationBucketsMS,
		}),
	}
	p.registry.MustRegister(
		p.queryCount, p.queryErrors, p.queryDuration, p.rejections, p.toolDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusInstruments) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

func (p *PrometheusInstruments) RecordQueryDuration(_ context.Context, ms float64) {
	p.queryDuration.Observe(ms)
}

func (p *PrometheusInstruments) IncrementQueryCount(context.Context) {
	p.queryCount.Inc()
}

func (p *PrometheusInstruments) IncrementQueryErrors(context.Context) {
	p.queryErrors.Inc()
}

func (p *PrometheusInstruments) IncrementRejections(_ context.Context, reason string) {
	p.rejections.WithLabelValues(reason).Inc()
}

func (p *PrometheusInstruments) RecordToolDuration(_ context.Context, ms float64) {
	p.toolDuration.Observe(ms)
}
