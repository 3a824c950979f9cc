/*
Package types defines the core data structures used throughout NetLens.

This package contains all fundamental types that represent the platform's
domain model: projects and membership, the foldered document store with
per-filename version chains, parsed device records, analysis artifacts and
their review state, topology layout state, and the summary projection.
These types are used by all other packages for persistence, parsing, job
control, and the REST API.

# Core Types

Access control:
  - User: platform login with bcrypt password hash
  - Project: owner of every other entity
  - Member: (project, username, role) with role ∈ admin/manager/engineer/viewer

Document store:
  - Folder: tree node; Config and Other are reserved, synthesized ids
  - Document: version family keyed by (project, filename, folder)
  - DocumentVersion: one chain entry; exactly one IsLatest per family
  - VersionMetadata: the 5W+description carried per version

Parsing:
  - DeviceRecord: normalized vendor-agnostic parse of one device
  - DeviceOverview, Interface, VLANInfo, STPInfo, RoutingInfo, Neighbor,
    MACARPInfo, SecurityInfo, HAInfo: extraction areas

Analysis:
  - AnalysisKind: the six supported job flavors
  - AnalysisArtifact: latest AI output plus review state per (project, kind, device)
  - InFlightMarker: durable single-slot token per project
  - LLMMetrics / AccuracyMetrics: adapter and verification accounting

Topology:
  - TopologyState: persisted positions, links, label and role overrides
  - TopologyNode: merged node returned by the topology view

# Design Patterns

Enumerations use typed string constants. Numeric fields that may be absent
in source configs are pointers so JSON carries null rather than zero; string
absence is the empty string, rendered as a placeholder only at the
presentation edge. All types serialize to JSON for both the REST surface
and the bbolt store.
*/
package types
