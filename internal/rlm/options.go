package rlm

import (
	"github.com/dgallion1/rlmproc/internal/chunk"
)

const (
	// DefaultAggregateThreshold is the combined-findings size, in
	// characters, above which aggregation pre-summarizes halves instead of
	// synthesizing directly.
	DefaultAggregateThreshold = 50000

	// FilterMinChunks is the chunk count a run must exceed before the
	// relevance filter is worth its false-negative risk.
	FilterMinChunks = 3
)

// Options carries the configuration for one pipeline run. All knobs are
// threaded explicitly; nothing is read from ambient state. Use
// DefaultOptions as the base and override fields from there.
type Options struct {
	// ChunkSize is the target chunk size in characters.
	ChunkSize int
	// Overlap is the character overlap between consecutive chunks in
	// character mode.
	Overlap int
	// FilterEnabled turns keyword relevance filtering on.
	FilterEnabled bool
	// Keywords overrides keyword derivation from the query when non-nil.
	Keywords []string
	// Fast selects the fast model for all oracle calls.
	Fast bool
	// Strategy forces a splitting strategy; empty means auto-detect.
	Strategy chunk.Strategy
	// AggregateThreshold caps the combined findings size for one synthesis
	// call.
	AggregateThreshold int
	// Concurrency bounds parallel chunk processing. 1 (or less) processes
	// chunks strictly sequentially in original order.
	Concurrency int
}

// DefaultOptions returns the standard run configuration.
func DefaultOptions() Options {
	return Options{
		ChunkSize:          chunk.DefaultChunkSize,
		Overlap:            chunk.DefaultOverlap,
		FilterEnabled:      true,
		AggregateThreshold: DefaultAggregateThreshold,
		Concurrency:        1,
	}
}

// withDefaults fills invalid fields so a zero value stays usable.
func (o Options) withDefaults() Options {
	if o.ChunkSize <= 0 {
		o.ChunkSize = chunk.DefaultChunkSize
	}
	if o.Overlap < 0 || o.Overlap >= o.ChunkSize {
		o.Overlap = 0
	}
	if o.AggregateThreshold <= 0 {
		o.AggregateThreshold = DefaultAggregateThreshold
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
	return o
}
