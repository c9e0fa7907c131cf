// Package telemetry provides OpenTelemetry initialization and helpers
// for tracing, logs and metrics across the mise recipe service.
//
// The package configures OTLP HTTP export for all three signals, with
// support for Grafana Cloud style gateways and local collectors.
package telemetry
