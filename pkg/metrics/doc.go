/*
Package metrics provides Prometheus metrics collection and health
reporting.

All metrics are registered on the default registry at package init and
exposed through Handler() on /metrics. The Collector refreshes the
inventory gauges (projects, users, devices by vendor, document families)
from the store every 15 seconds; counters and histograms are updated
inline by the API middleware, the upload pipeline and the analysis
controller.

Label discipline: labels are bounded sets (vendor, analysis kind, chi
route pattern, HTTP status). Project ids and device names never appear as
label values.

The health checker tracks per-component liveness for /healthz and /ready.
Components register themselves at startup and update their state on
failure; readiness requires the store and api components to be healthy.
*/
package metrics
