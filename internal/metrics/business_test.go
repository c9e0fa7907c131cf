package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestInstrumentsUsableBeforeInit(t *testing.T) {
	ctx := context.Background()
	require.NotPanics(t, func() {
		RecipeFetchTotal.Add(ctx, 1)
		RecipeFetchDuration.Record(ctx, 0.5)
		SubmitRejectedTotal.Add(ctx, 1)
	})
}

func TestInitRegistersInstruments(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	prev := otel.GetMeterProvider()
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	t.Cleanup(func() { otel.SetMeterProvider(prev) })

	require.NoError(t, Init())

	ctx := context.Background()
	RecipeFetchTotal.Add(ctx, 2)
	ExternalAPICallsTotal.Add(ctx, 1)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
		}
	}
	require.True(t, names["recipe.fetch.total"], "recipe.fetch.total not exported: %v", names)
	require.True(t, names["external.api.calls.total"], "external.api.calls.total not exported: %v", names)
}
