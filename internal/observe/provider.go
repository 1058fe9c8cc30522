package observe

import (
	"context"

	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// InitProvider initialises the OTel SDK with a Prometheus exporter so
// metrics can be scraped via /metrics, and registers it as the global meter
// provider.
//
// Returns the provider and a shutdown function that flushes the exporter.
// Call the shutdown in a defer from main().
func InitProvider(ctx context.Context, serviceName string) (*sdkmetric.MeterProvider, func(context.Context) error, error) {
	if serviceName == "" {
		serviceName = "authentix"
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, nil, err
	}

	promExp, err := promexporter.New()
	if err != nil {
		return nil, nil, err
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(promExp),
	)
	otel.SetMeterProvider(mp)

	return mp, mp.Shutdown, nil
}
