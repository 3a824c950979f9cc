// Package topology serves the merged network diagram: parsed devices
// unioned with AI-proposed nodes, role-classified with stored overrides
// winning, plus the persisted layout. Layout saves replace the whole state
// wholesale; synthesized positions for newly seen nodes are relaxed apart
// before persisting so the first render is readable.
package topology
