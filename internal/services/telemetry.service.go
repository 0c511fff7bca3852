package services

import (
	"net/http"
	"strconv"
	"time"

	"volumescope/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const telemetryNamespace = "volumescope"

var telemetryRegistry = prometheus.NewRegistry()

var (
	factory = promauto.With(telemetryRegistry)

	scansTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: telemetryNamespace,
		Name:      "scans_total",
		Help:      "Scans performed, by result.",
	}, []string{"result"})

	scanDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: telemetryNamespace,
		Name:      "scan_duration_seconds",
		Help:      "Wall time of successful scans.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 4, 9),
	})

	lastScanBytes = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: telemetryNamespace,
		Name:      "last_scan_total_bytes",
		Help:      "Total size reported by the most recent successful scan.",
	})

	lastScanFolders = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: telemetryNamespace,
		Name:      "last_scan_folders",
		Help:      "Folder count reported by the most recent successful scan.",
	})

	walkSkipped = factory.NewCounter(prometheus.CounterOpts{
		Namespace: telemetryNamespace,
		Name:      "walk_skipped_total",
		Help:      "Entries skipped by the size walker because they could not be read.",
	})

	httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: telemetryNamespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests handled, by method, route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: telemetryNamespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency, by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	liveClients = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: telemetryNamespace,
		Name:      "live_clients",
		Help:      "Connected live feed clients.",
	})
)

func init() {
	telemetryRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// TelemetryHandler serves the Prometheus exposition for this process
func TelemetryHandler() http.Handler {
	return promhttp.HandlerFor(telemetryRegistry, promhttp.HandlerOpts{})
}

// RecordScan records the outcome of one scan
func RecordScan(elapsed time.Duration, result *models.ScanResult, err error) {
	if err != nil {
		scansTotal.WithLabelValues("error").Inc()
		return
	}
	scansTotal.WithLabelValues("ok").Inc()
	scanDuration.Observe(elapsed.Seconds())
	if result != nil {
		lastScanBytes.Set(float64(result.TotalSize))
		lastScanFolders.Set(float64(len(result.Folders)))
	}
}

// RecordWalkSkipped adds n unreadable entries to the skipped counter
func RecordWalkSkipped(n uint64) {
	if n > 0 {
		walkSkipped.Add(float64(n))
	}
}

// RecordHTTPRequest records a handled HTTP request
func RecordHTTPRequest(method, route string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
