package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "infogrid_http_requests_total",
		Help: "HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "infogrid_http_request_duration_seconds",
		Help:    "HTTP request latency by route",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	ContentMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "infogrid_content_mutations_total",
		Help: "Content records created, updated or deleted",
	}, []string{"kind", "op"})

	ImageCleanupFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "infogrid_image_cleanup_failures_total",
		Help: "Best-effort stored image deletions that failed",
	}, []string{"kind"})

	NewsAPIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "infogrid_newsapi_requests_total",
		Help: "Upstream news search calls by outcome",
	}, []string{"outcome"})

	BoardClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "infogrid_board_clients",
		Help: "Board displays connected over websocket",
	})
)

func ObserveRequest(route, method string, status int, duration time.Duration) {
	label := strings.TrimSpace(route)
	if label == "" {
		label = "unmatched"
	}
	HTTPRequestsTotal.WithLabelValues(label, method, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(label, method).Observe(duration.Seconds())
}

func RecordMutation(kind, op string) {
	ContentMutations.WithLabelValues(kind, op).Inc()
}

func RecordCleanupFailure(kind string) {
	ImageCleanupFailures.WithLabelValues(kind).Inc()
}

func RecordNewsAPI(outcome string) {
	NewsAPIRequests.WithLabelValues(outcome).Inc()
}

func SetBoardClients(count int) {
	if count < 0 {
		count = 0
	}
	BoardClients.Set(float64(count))
}
