// Package events is the in-process publish/subscribe broker. Producers
// (upload pipeline, analysis controller, project lifecycle) publish typed
// events; consumers subscribe for logging or cache invalidation. Delivery
// is best-effort: a slow subscriber drops events rather than blocking
// producers.
package events
