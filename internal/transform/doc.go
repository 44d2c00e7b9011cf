// Package transform flattens raw demo-board records into the rows written
// by the exporter.
//
// Two projections are produced for every record:
//
//   - a full row with the ten columns of domain.FullColumns, where the
//     nested externalOpportunity object is flattened one level and the
//     demoUuids list is joined into a single cell
//   - a summary row with exactly the six renamed columns of
//     domain.SummaryColumns
//
// Both projections are pure functions. Records that lack a field produce an
// empty cell rather than an error, so one row is always produced per record.
//
// Usage:
//
//	full, summary := transform.Records(records, transform.Options{ListSeparator: ";"})
//	stats := transform.Describe(full, domain.FullColumns())
package transform
