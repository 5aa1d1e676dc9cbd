package rlm

import (
	"github.com/dgallion1/rlmproc/internal/chunk"
)

// Extraction is the relevant material one chunk yielded, keyed by the
// chunk's position in the original document. Indices are never renumbered
// after filtering.
type Extraction struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// ChunkStatus describes how a chunk's oracle call ended.
type ChunkStatus string

const (
	// StatusExtracted means the chunk yielded relevant material.
	StatusExtracted ChunkStatus = "extracted"
	// StatusNoInfo means the oracle judged the chunk irrelevant.
	StatusNoInfo ChunkStatus = "no_info"
	// StatusFailed means the oracle call failed. The answer treats this the
	// same as no_info; the outcome keeps the distinction visible.
	StatusFailed ChunkStatus = "failed"
)

// ChunkOutcome records what happened to one processed chunk, so callers
// can tell "genuinely nothing relevant" apart from "oracle call failed".
type ChunkOutcome struct {
	Index  int         `json:"index"`
	Status ChunkStatus `json:"status"`
	Err    string      `json:"error,omitempty"`
}

// Result is the terminal artifact of one pipeline run.
type Result struct {
	Answer        string         `json:"answer"`
	Strategy      chunk.Strategy `json:"strategy"`
	ChunkCount    int            `json:"chunk_count"`
	SelectedCount int            `json:"selected_count"`
	Extracted     int            `json:"extracted"`
	NoInfo        int            `json:"no_info"`
	Failed        int            `json:"failed"`
	Outcomes      []ChunkOutcome `json:"outcomes,omitempty"`
	ElapsedMs     int64          `json:"elapsed_ms"`
}
