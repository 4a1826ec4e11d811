// Package domain models canonical transit and road-incident records.
//
// # Data Sources
//
// Two uncontrolled upstream providers feed this core:
//
//   - A transit provider answering coordinate-based nearest-stop queries and
//     stop-id departure-board queries with JSON payloads. Field presence is
//     inconsistent: a departure always carries a scheduled timestamp, but the
//     expected (realtime) timestamp and the arrival time at the final stop
//     may be missing or malformed.
//   - A road-incident provider answering coordinate+radius situation queries.
//     Each deviation embeds its position as a WKT-style point string,
//     "POINT (longitude latitude)". Longitude comes first; swapping the two
//     puts Stockholm in the Indian Ocean, so [ExtractPoint] and its tests
//     guard the order explicitly.
//
// # Normalization Conventions
//
// Timestamps arrive in several shapes (RFC 3339 with offset, bare local
// wall time, minute precision). Parsing is layered and never fails a record:
// an unparseable arrival timestamp degrades the arrival time and duration to
// "unknown" rather than producing a garbage value.
//
// Severity is a coarse four-level classification derived from the provider's
// numeric priority code: 1-2 high, 3 medium, anything else low, absent
// unknown.
//
// # ID Generation
//
// The incident provider does not guarantee stable identifiers across
// refreshes, and occasionally omits them entirely. When an id is missing,
// [DeriveIncidentID] produces a deterministic SHA-256 hash of
// type|lat|lng|start so records stay unique within a batch and reprocessing
// the same raw record yields the same id. Consumers must still treat each
// refresh as a full replacement, never a delta.
package domain
