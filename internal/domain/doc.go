// Package domain models Portland 911 incident-report data.
//
// # Data Sources
//
// Incident reports arrive from two places: a bulk archive of historical
// reports published as a CSV file, and the City of Portland's live Atom feed
// of recent dispatches (portlandonline.com 911incidents.cfm). Both carry the
// same free-text summary format; only transport and timestamp encoding differ.
//
// # Summary Grammar
//
// Report summaries follow a fixed shape:
//
//	"<category> at <address> [<id>]"  →  e.g. "THEFT at 100 MAIN ST, PORT [A1234]"
//
// The first " at " separates the crime category from the remainder; the first
// " [" separates the address from the bracketed dispatch ID. Both separators
// are optional: a summary with no " at " parses as category-only, and a
// missing bracket leaves the ID empty. Parsing never fails on malformed text.
//
// Addresses use city abbreviations that are expanded during parsing:
//
//	", PORT" → ", PORTLAND"
//	", GRSM" → ", GRESHAM"
//
// # Timestamps
//
// The live feed emits RFC 3339 timestamps with a zone offset; the archive may
// emit naive timestamps, which are assumed UTC. Every parsed incident is
// converted to America/Los_Angeles before anything downstream sees it, and
// hour/day buckets are floored in that zone. DST fold-backs are taken as-is.
//
// Event labels are the human-readable form used in map hover text:
//
//	"1/2 3:04PM - <category>"  (no zero padding, 12-hour clock)
//
// # Deduplication
//
// The two sources overlap in time and can redeliver the same physical event.
// A record's identity is the tuple (timestamp, raw summary text, raw
// coordinate string); [MergeDedup] collapses identical tuples to one record
// and orders the result ascending by timestamp.
//
// # Coordinate Reconciliation
//
// The same address is sometimes reported with slightly different coordinates
// across time (geocoding drift upstream). [CanonicalizeCoordinates] groups
// incidents by address, picks the most frequently observed raw coordinate
// string as canonical, and rewrites the whole group to it. Frequency ties
// resolve to the first-encountered string in grouping order, an arbitrary
// but deterministic rule kept from the source data's stable ordering.
package domain
