package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	metricPrefix = "recon_"

	resultSuccess = "success"
	resultError   = "error"

	statusReconciled   = "reconciled"
	statusUnreconciled = "unreconciled"
)

var (
	registerOnce sync.Once

	batchLoadTotal    *prometheus.CounterVec
	batchLoadLatency  *prometheus.HistogramVec
	statementsLoaded  prometheus.Counter
	statementsDropped *prometheus.CounterVec

	accountVerdicts *prometheus.CounterVec

	enrichmentLookups *prometheus.CounterVec

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec

	parseJobsTotal   *prometheus.CounterVec
	parseJobsLatency *prometheus.HistogramVec

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
)

// Init registers the reconciliation metrics with the default registry.
// Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		batchLoadTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "batch_load_total",
				Help: "Total batch loads by result",
			},
			[]string{"result"},
		)
		batchLoadLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "batch_load_latency_seconds",
				Help:    "Batch load latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		statementsLoaded = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "statements_loaded_total",
				Help: "Total parsing results mapped into reconciliation rows",
			},
		)
		statementsDropped = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "statements_dropped_total",
				Help: "Total parsing results dropped from a batch by reason",
			},
			[]string{"reason"},
		)

		accountVerdicts = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "account_verdicts_total",
				Help: "Total account verdicts by status",
			},
			[]string{"status"},
		)

		enrichmentLookups = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "enrichment_lookups_total",
				Help: "Total enrichment lookups by result",
			},
			[]string{"result"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total report exports by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		parseJobsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "parse_jobs_total",
				Help: "Total statement parse jobs by result",
			},
			[]string{"result"},
		)
		parseJobsLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "parse_job_latency_seconds",
				Help:    "Statement parse job latency in seconds",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
			},
			[]string{"result"},
		)

		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "Total HTTP requests by method, route and status code",
			},
			[]string{"method", "route", "code"},
		)
		httpLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_request_latency_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		)

		prometheus.MustRegister(
			batchLoadTotal,
			batchLoadLatency,
			statementsLoaded,
			statementsDropped,
			accountVerdicts,
			enrichmentLookups,
			exportTotal,
			exportLatency,
			parseJobsTotal,
			parseJobsLatency,
			httpRequests,
			httpLatency,
		)
	})
}

// Handler exposes the default registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}

func resultOf(err error) string {
	if err != nil {
		return resultError
	}
	return resultSuccess
}

// ObserveBatchLoad records batch load duration and outcome.
func ObserveBatchLoad(err error, loaded int, duration time.Duration) {
	result := resultOf(err)
	if batchLoadTotal != nil {
		batchLoadTotal.WithLabelValues(result).Inc()
	}
	if batchLoadLatency != nil {
		batchLoadLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
	if statementsLoaded != nil && loaded > 0 {
		statementsLoaded.Add(float64(loaded))
	}
}

// IncDropped increments the dropped statement counter.
func IncDropped(reason string) {
	if reason == "" {
		reason = "unknown"
	}
	if statementsDropped != nil {
		statementsDropped.WithLabelValues(reason).Inc()
	}
}

// IncVerdict counts one account verdict.
func IncVerdict(reconciled bool) {
	status := statusUnreconciled
	if reconciled {
		status = statusReconciled
	}
	if accountVerdicts != nil {
		accountVerdicts.WithLabelValues(status).Inc()
	}
}

// IncEnrichmentLookup counts one enrichment lookup.
func IncEnrichmentLookup(err error) {
	if enrichmentLookups != nil {
		enrichmentLookups.WithLabelValues(resultOf(err)).Inc()
	}
}

// ObserveExport records report export latency and result.
func ObserveExport(format string, err error, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	result := resultOf(err)
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// ObserveParseJob records parse job latency and result.
func ObserveParseJob(err error, duration time.Duration) {
	result := resultOf(err)
	if parseJobsTotal != nil {
		parseJobsTotal.WithLabelValues(result).Inc()
	}
	if parseJobsLatency != nil {
		parseJobsLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveHTTPRequest records one served request.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	if httpRequests != nil {
		httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	}
	if httpLatency != nil {
		httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
