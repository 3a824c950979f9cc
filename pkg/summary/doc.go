// Package summary projects stored device records onto the per-project
// summary table, the dashboard metric rollup and the CSV export.
//
// Projection is tolerant: malformed records still produce a row, with the
// status column carrying the warning. Drift is detected by re-parsing the
// two latest versions of a device's configuration document and comparing
// the projected rows; it clears itself when a newer upload matches.
package summary
