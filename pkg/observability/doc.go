/*
Package observability turns engine lifecycle events into metrics and logs.

Metrics exposes Prometheus counters fed by domain.LifecycleHooks; Combine lets
several hook sets (metrics, audit logging, tests) observe the same engine.
*/
package observability
