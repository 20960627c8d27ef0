package engine

import "github.com/VictoriaMetrics/metrics"

// Process-wide engine counters, exposed in Prometheus format by the serve
// command's metrics endpoint.
var (
	metricRequestsSent   = metrics.GetOrCreateCounter(`corrix_requests_sent_total`)
	metricNotifsSent     = metrics.GetOrCreateCounter(`corrix_notifications_sent_total`)
	metricRepliesMatched = metrics.GetOrCreateCounter(`corrix_replies_matched_total`)
	metricTimeouts       = metrics.GetOrCreateCounter(`corrix_request_timeouts_total`)
	metricDecodeFailures = metrics.GetOrCreateCounter(`corrix_decode_failures_total`)
	metricUnknownMethods = metrics.GetOrCreateCounter(`corrix_unknown_methods_total`)
	metricGuardRejects   = metrics.GetOrCreateCounter(`corrix_guard_rejections_total`)
	metricHandlerErrors  = metrics.GetOrCreateCounter(`corrix_handler_errors_total`)

	metricHandlerDuration = metrics.GetOrCreateHistogram(`corrix_handler_duration_seconds`)
)
