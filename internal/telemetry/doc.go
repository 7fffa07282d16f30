// Package telemetry wires OpenTelemetry tracing for the server.
//
// Tracing is opt-in through the telemetry config section. Packages create
// spans through otel.Tracer and pay nothing when Setup was not enabled.
package telemetry
