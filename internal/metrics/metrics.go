package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Event Metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsPublished,
			Help: HelpTextEventsPublished,
		},
		[]string{LabelType},
	)

	EventHandlerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventHandlerErrors,
			Help: HelpTextEventHandlerErrors,
		},
		[]string{LabelType},
	)
)

// Quest Engine Metrics
var (
	QuestsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameQuestsGenerated,
			Help: HelpTextQuestsGenerated,
		},
		[]string{LabelGranularity},
	)

	QuestsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameQuestsCompleted,
			Help: HelpTextQuestsCompleted,
		},
		[]string{LabelGranularity},
	)

	QuestsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameQuestsSkipped,
			Help: HelpTextQuestsSkipped,
		},
		[]string{LabelGranularity},
	)

	QuestsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameQuestsExpired,
			Help: HelpTextQuestsExpired,
		},
	)

	GranularityResets = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameGranularityResets,
			Help: HelpTextGranularityResets,
		},
		[]string{LabelGranularity},
	)

	PoolExhaustions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNamePoolExhaustions,
			Help: HelpTextPoolExhaustions,
		},
		[]string{LabelGranularity},
	)

	XPAwarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameXPAwarded,
			Help: HelpTextXPAwarded,
		},
	)

	PlayerLevelUps = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNamePlayerLevelUps,
			Help: HelpTextPlayerLevelUps,
		},
	)

	StreakLength = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: MetricNameStreakLength,
			Help: HelpTextStreakLength,
		},
		[]string{LabelGranularity},
	)
)
