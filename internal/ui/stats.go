package ui

import "sync/atomic"

// Stats accumulates totals across the whole run for the final summary.
type Stats struct {
	TotalVolumes    atomic.Int64
	FailedVolumes   atomic.Int64
	TotalChapters   atomic.Int64
	SkippedEpisodes atomic.Int64
	TotalImages     atomic.Int64
	TotalBytes      atomic.Int64
}
