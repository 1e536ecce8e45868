package metrics

// Metric Names

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Event metric names
const (
	MetricNameEventsPublished    = "events_published_total"
	MetricNameEventHandlerErrors = "event_handler_errors_total"
)

// Quest engine metric names
const (
	MetricNameQuestsGenerated      = "quests_generated_total"
	MetricNameQuestsCompleted      = "quests_completed_total"
	MetricNameQuestsSkipped        = "quests_skipped_total"
	MetricNameQuestsExpired        = "quests_expired_total"
	MetricNameGranularityResets    = "granularity_resets_total"
	MetricNamePoolExhaustions      = "template_pool_exhaustions_total"
	MetricNameXPAwarded            = "xp_awarded_total"
	MetricNamePlayerLevelUps       = "player_level_ups_total"
	MetricNameStreakLength         = "quest_streak_length"
)

// Metric Help Text

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Event metric help text
const (
	HelpTextEventsPublished    = "Total number of events published"
	HelpTextEventHandlerErrors = "Total number of event handler errors"
)

// Quest engine metric help text
const (
	HelpTextQuestsGenerated   = "Total number of quests generated"
	HelpTextQuestsCompleted   = "Total number of quests completed"
	HelpTextQuestsSkipped     = "Total number of quests skipped"
	HelpTextQuestsExpired     = "Total number of quests that expired unfinished"
	HelpTextGranularityResets = "Total number of quest set resets"
	HelpTextPoolExhaustions   = "Total number of generations that ran out of eligible templates"
	HelpTextXPAwarded         = "Total XP awarded from quest completions"
	HelpTextPlayerLevelUps    = "Total number of player level-ups"
	HelpTextStreakLength      = "Current streak length observed at reset"
)

// Labels
const (
	LabelMethod      = "method"
	LabelPath        = "path"
	LabelStatus      = "status"
	LabelType        = "type"
	LabelGranularity = "granularity"
)

// Log messages
const (
	LogMsgMetricsRecorded        = "Metrics recorded for event"
	LogMsgEventPayloadUnexpected = "Event payload has unexpected type"
)

// HTTPLatencyBuckets are the histogram buckets for request latency.
var HTTPLatencyBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}
