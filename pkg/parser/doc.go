/*
Package parser turns heterogeneous vendor configuration dumps into the
normalized DeviceRecord structure.

Vendor selection is heuristic and first-match: VRP markers (display
version, display current-configuration, sysname) select the Huawei
variant; Cisco banners and IOS/NX-OS signatures select the Cisco variant;
anything else falls through to a best-effort generic parse. Each variant
implements the same Parser interface, so new vendors are added without
touching callers.

The parse is tolerant by contract: malformed or empty input still yields a
record with empty arrays and nil numerics, never an error. Original bytes
are preserved on the record for the raw view, and parsing identical bytes
twice yields identical records apart from the parse timestamp.

The package also owns the two naming heuristics the rest of the platform
leans on: DeviceNameFromFilename (extension, version and timestamp suffix
stripping) and ClassifyRole (core/dist/access/router substring matching),
plus allowed-VLAN expression expansion with "all" handling.
*/
package parser
