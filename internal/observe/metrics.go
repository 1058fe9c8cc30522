// Package observe provides OpenTelemetry metrics for the matching engine,
// exported through a Prometheus bridge so they can be scraped via the
// standard /metrics endpoint.
package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all AuthentiX metrics.
const meterName = "github.com/dmitrijs2005/authentix"

// Metrics holds the metric instruments for the matching engine. All fields
// are safe for concurrent use.
type Metrics struct {
	// AuthAttempts counts enrollment/verification attempts. Attributes:
	// modality, operation ("enroll"/"verify"), decision.
	AuthAttempts metric.Int64Counter

	// VerifyDuration tracks end-to-end verification latency in seconds,
	// including extraction.
	VerifyDuration metric.Float64Histogram

	// ExtractDuration tracks feature-extraction latency in seconds.
	ExtractDuration metric.Float64Histogram
}

// NewMetrics creates the instruments against the given provider. Tests pass
// a private provider to avoid cross-test pollution.
func NewMetrics(provider metric.MeterProvider) (*Metrics, error) {
	meter := provider.Meter(meterName)

	attempts, err := meter.Int64Counter("auth_attempts_total",
		metric.WithDescription("Enrollment and verification attempts by modality and decision"))
	if err != nil {
		return nil, err
	}

	verifyDur, err := meter.Float64Histogram("verify_duration_seconds",
		metric.WithDescription("End-to-end verification latency"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	extractDur, err := meter.Float64Histogram("extract_duration_seconds",
		metric.WithDescription("Feature extraction latency"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		AuthAttempts:    attempts,
		VerifyDuration:  verifyDur,
		ExtractDuration: extractDur,
	}, nil
}

// RecordAttempt increments the attempt counter.
func (m *Metrics) RecordAttempt(ctx context.Context, modality, operation, decision string) {
	if m == nil {
		return
	}
	m.AuthAttempts.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("modality", modality),
			attribute.String("operation", operation),
			attribute.String("decision", decision),
		))
}

// RecordVerifyDuration records one verification round trip.
func (m *Metrics) RecordVerifyDuration(ctx context.Context, modality string, d time.Duration) {
	if m == nil {
		return
	}
	m.VerifyDuration.Record(ctx, d.Seconds(),
		metric.WithAttributes(attribute.String("modality", modality)))
}

// RecordExtractDuration records one extractor call.
func (m *Metrics) RecordExtractDuration(ctx context.Context, modality string, d time.Duration) {
	if m == nil {
		return
	}
	m.ExtractDuration.Record(ctx, d.Seconds(),
		metric.WithAttributes(attribute.String("modality", modality)))
}
