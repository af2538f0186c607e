// Package telemetry emits operational counters for the bridge.
package telemetry

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"wxrmessenger/internal/config"
	"wxrmessenger/internal/types"
)

// Metrics records pipeline and feedback outcomes. Implementations must not
// fail the caller; emission errors are logged and dropped.
type Metrics interface {
	RecordInboundOutcome(ctx context.Context, outcome string)
	RecordRepliesSent(ctx context.Context, units types.UnitSystem, count int)
	RecordSuppressionWritten(ctx context.Context, kind string)
	RecordFeedbackIgnored(ctx context.Context, kind string)
	RecordExternalFailure(ctx context.Context, provider string)
}

// CloudWatchClient abstracts the CloudWatch PutMetricData operation for testability.
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

var _ Metrics = (*CloudWatchMetrics)(nil)

// CloudWatchMetrics publishes one datum per call.
type CloudWatchMetrics struct {
	client    CloudWatchClient
	namespace string
	logger    types.Logger
}

// NewCloudWatchMetrics creates a CloudWatchMetrics. An empty namespace falls
// back to types.MetricNamespace.
func NewCloudWatchMetrics(client CloudWatchClient, namespace string, logger types.Logger) *CloudWatchMetrics {
	if namespace == "" {
		namespace = types.MetricNamespace
	}
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &CloudWatchMetrics{client: client, namespace: namespace, logger: logger}
}

// New returns CloudWatch-backed metrics, or Noop when metrics are disabled or
// the process runs locally.
func New(cfg *config.Config, awsCfg aws.Config, logger types.Logger) Metrics {
	if cfg.IsLocal() || !cfg.Observability.EnableMetrics {
		return Noop{}
	}
	return NewCloudWatchMetrics(cloudwatch.NewFromConfig(awsCfg), cfg.Observability.MetricNamespace, logger)
}

// RecordInboundOutcome counts one processed inbound event, dimensioned by outcome.
func (m *CloudWatchMetrics) RecordInboundOutcome(ctx context.Context, outcome string) {
	m.put(ctx, types.MetricInboundOutcome, 1, types.DimOutcome, outcome)
}

// RecordRepliesSent counts reply segments dispatched for one event.
func (m *CloudWatchMetrics) RecordRepliesSent(ctx context.Context, units types.UnitSystem, count int) {
	if count <= 0 {
		return
	}
	m.put(ctx, types.MetricRepliesSent, float64(count), types.DimUnits, string(units))
}

func (m *CloudWatchMetrics) RecordSuppressionWritten(ctx context.Context, kind string) {
	m.put(ctx, types.MetricSuppressionsWritten, 1, types.DimFeedbackKind, kind)
}

func (m *CloudWatchMetrics) RecordFeedbackIgnored(ctx context.Context, kind string) {
	m.put(ctx, types.MetricFeedbackIgnored, 1, types.DimFeedbackKind, kind)
}

func (m *CloudWatchMetrics) RecordExternalFailure(ctx context.Context, provider string) {
	m.put(ctx, types.MetricExternalAPIFailure, 1, types.DimProvider, provider)
}

func (m *CloudWatchMetrics) put(ctx context.Context, name string, value float64, dimName, dimValue string) {
	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: aws.String(name),
				Value:      aws.Float64(value),
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: []cwtypes.Dimension{
					{
						Name:  aws.String(dimName),
						Value: aws.String(dimValue),
					},
				},
			},
		},
	}

	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		m.logger.Error("failed to record metric",
			"error", err.Error(),
			"metric", name,
			dimName, dimValue,
		)
	}
}

// Noop discards all metrics.
type Noop struct{}

func (Noop) RecordInboundOutcome(context.Context, string) {}

func (Noop) RecordRepliesSent(context.Context, types.UnitSystem, int) {}

func (Noop) RecordSuppressionWritten(context.Context, string) {}

func (Noop) RecordFeedbackIgnored(context.Context, string) {}

func (Noop) RecordExternalFailure(context.Context, string) {}
