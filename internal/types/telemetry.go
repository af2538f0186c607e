package types

// Telemetry metric names for CloudWatch.
const (
	MetricInboundOutcome      = "InboundOutcome"
	MetricRepliesSent         = "RepliesSent"
	MetricSuppressionsWritten = "SuppressionsWritten"
	MetricFeedbackIgnored     = "FeedbackIgnored"
	MetricExternalAPIFailure  = "ExternalAPIFailure"

	DimOutcome      = "Outcome"
	DimFeedbackKind = "FeedbackKind"
	DimUnits        = "Units"
	DimProvider     = "Provider"

	MetricNamespace = "WxrMessenger"
)
