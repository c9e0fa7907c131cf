package metrics

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Instruments default to no-ops so packages can record before Init runs (tests, tools).
var (
	// Recipe fetch metrics
	RecipeFetchTotal    metric.Int64Counter     = noop.Int64Counter{}
	RecipeFetchDuration metric.Float64Histogram = noop.Float64Histogram{}

	// External API metrics
	ExternalAPICallsTotal metric.Int64Counter     = noop.Int64Counter{}
	ExternalAPIDuration   metric.Float64Histogram = noop.Float64Histogram{}

	// AI metrics
	AIGenerationDuration metric.Float64Histogram = noop.Float64Histogram{}

	// View metrics
	SubmitRejectedTotal metric.Int64Counter = noop.Int64Counter{}
)

func Init() error {
	meter := otel.Meter("socialchef/mise")

	var err error

	RecipeFetchTotal, err = meter.Int64Counter(
		"recipe.fetch.total",
		metric.WithDescription("Total number of recipe fetches by outcome"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	RecipeFetchDuration, err = meter.Float64Histogram(
		"recipe.fetch.duration",
		metric.WithDescription("Duration of a recipe fetch including parsing"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2, 5, 10, 30, 60),
	)
	if err != nil {
		return err
	}

	ExternalAPICallsTotal, err = meter.Int64Counter(
		"external.api.calls.total",
		metric.WithDescription("Total number of external API calls"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	ExternalAPIDuration, err = meter.Float64Histogram(
		"external.api.duration",
		metric.WithDescription("Duration of external API calls"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2, 5, 10, 30),
	)
	if err != nil {
		return err
	}

	AIGenerationDuration, err = meter.Float64Histogram(
		"ai.generation.duration",
		metric.WithDescription("Duration of AI recipe generation"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2, 5, 10, 30, 60),
	)
	if err != nil {
		return err
	}

	SubmitRejectedTotal, err = meter.Int64Counter(
		"view.submit.rejected.total",
		metric.WithDescription("Submits refused because a fetch was in flight or the query was blank"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	return nil
}
