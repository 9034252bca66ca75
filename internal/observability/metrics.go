package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChatResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "telepost_chat_resolutions_total",
		Help: "The total number of chat resolutions by outcome",
	}, []string{"status"})

	DeliveryAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "telepost_delivery_attempts_total",
		Help: "Upstream delivery attempts by strategy and outcome",
	}, []string{"strategy", "outcome"})

	Deliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "telepost_deliveries_total",
		Help: "Delivered messages by message kind and final status",
	}, []string{"kind", "status"})

	MetricsCollections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "telepost_metrics_collections_total",
		Help: "Metrics collections by path (real, estimated) and degradation",
	}, []string{"path", "degraded"})

	SnapshotWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "telepost_snapshot_writes_total",
		Help: "Metrics snapshot writes by result",
	}, []string{"result"})

	MediaFetchBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "telepost_media_fetch_bytes",
		Help:    "Size of media fetched for direct upload",
		Buckets: prometheus.ExponentialBuckets(16*1024, 4, 8),
	})
)
