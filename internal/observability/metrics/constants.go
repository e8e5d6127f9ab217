// Package metrics provides constants used across metric definitions.
package metrics

// Histogram bucket parameters
const (
	// BucketStart1ms is the first bucket upper bound in seconds
	BucketStart1ms = 0.001
	// BucketFactor2 doubles each successive bucket
	BucketFactor2 = 2.0
	// BucketCount15 covers 1ms to ~16s
	BucketCount15 = 15
)

// Status label values
const (
	StatusSuccess   = "success"
	StatusError     = "error"
	StatusCommitted = "committed"
	StatusRollback  = "rollback"
)

// Row outcome label values for import metrics
const (
	RowImported = "imported"
	RowSkipped  = "skipped"
	RowFailed   = "failed"
)
