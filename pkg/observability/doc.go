/*
Package observability turns engine lifecycle events into logs and Prometheus
metrics.

Metrics.Hooks and LogHooks both return domain.LifecycleHooks; Combine merges
them so one engine option feeds every sink.
*/
package observability
