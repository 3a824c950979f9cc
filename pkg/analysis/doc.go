/*
Package analysis runs LLM jobs against project and device state.

Admission is single-slot per project: Submit sets a durable in-flight
marker under a per-project lock and rejects with ErrBusy while any kind
holds the slot. The adapter call runs in the background; the marker is
cleared on completion or failure and clients poll Get for the artifact.
Markers survive restarts, so a crashed process cannot double-admit, and a
lost marker is recoverable because completion writes the artifact
regardless.

Verification computes a field-by-field JSON-tree diff of the reviewer's
document against the AI draft, bucketing changes by leaf field name and
scoring accuracy as 100 minus the weighted change ratio.
*/
package analysis
