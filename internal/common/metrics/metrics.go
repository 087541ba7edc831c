// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SearchesStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "knowledge_searches_started_total",
			Help: "Total number of knowledge-base search runs opened",
		},
		[]string{"language"},
	)

	SearchesFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "knowledge_searches_failed_total",
			Help: "Total number of search runs that ended in the fallback snapshot",
		},
		[]string{"language"},
	)

	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "knowledge_search_duration_seconds",
			Help: "Duration of one streaming search run in seconds",
		},
		[]string{"language"},
	)

	ChatTurns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "knowledge_chat_turns_total",
			Help: "Total number of assistant chat turns streamed",
		},
		[]string{"language", "outcome"},
	)

	SpeechRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "knowledge_speech_requests_total",
			Help: "Total number of speech synthesis requests",
		},
		[]string{"outcome"},
	)

	StaleSnapshotsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gateway_stale_snapshots_dropped_total",
			Help: "Snapshots discarded because a newer query superseded their run",
		},
	)
)
