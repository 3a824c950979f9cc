/*
Package storage provides persistent state storage for NetLens using BoltDB.

One bucket per logical table (users, projects, members, folders, documents,
document_versions, blobs, blob_refs, device_records, analysis_artifacts,
topology_states, in_flight_markers, project_options, device_images). Rows
are JSON-marshalled; composite keys join their parts with "/" so project-
scoped listings are cheap cursor prefix scans.

Blobs are content-addressed by lowercase hex SHA-256 and reference counted:
PutBlob deduplicates (and detects the theoretical hash collision by byte
comparison), AppendVersion bumps the count inside the version-append
transaction, and the count reaches zero only when project deletion or GC
unreferences the last version, at which point the bytes are removed.

Two operations carry the store's atomicity guarantees:

  - AppendVersion demotes the prior latest version, writes the new one, and
    updates the document row in one transaction, so exactly one version per
    family ever has is_latest set.
  - SetMarker refuses to overwrite an existing in-flight marker, returning
    ErrConflict. This makes the per-project analysis slot safe even if more
    than one process shares the database file.

All errors that correspond to missing or conflicting rows wrap ErrNotFound
or ErrConflict for errors.Is matching at the API edge.
*/
package storage
