// Package patterns defines the behavioral records produced by the nightly
// analysis pipeline.
//
// Everything here is a plain value: analyzers construct these records, the
// aggregator snapshots them, and no field is mutated after construction. The
// only persistence type is PatternSnapshot, which stores one immutable
// AggregatedPatterns per user per version.
package patterns
