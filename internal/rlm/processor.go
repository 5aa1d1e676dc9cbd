package rlm

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dgallion1/rlmproc/internal/oracle"
)

// Processor runs the decompose/extract/recombine pipeline against an
// oracle. It holds no per-run state; one Processor serves any number of
// concurrent runs.
type Processor struct {
	oracle oracle.Oracle
	log    *slog.Logger
}

func New(o oracle.Oracle, log *slog.Logger) *Processor {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Processor{oracle: o, log: log}
}

// ProcessChunk queries the oracle for material relevant to the query
// within one chunk. A reply carrying the no-info sentinel and an oracle
// failure both yield a nil extraction; the outcome records which it was.
// Failures are logged and never propagate.
func (p *Processor) ProcessChunk(ctx context.Context, chunkText string, index, total int, query string, opts Options) (*Extraction, ChunkOutcome) {
	reply, err := p.oracle.Query(ctx, oracle.Request{
		Prompt:    BuildChunkPrompt(index, total, query, chunkText),
		Fast:      opts.Fast,
		MaxTokens: ExtractMaxTokens,
	})
	if err != nil {
		p.log.Warn("chunk extraction failed", "chunk", index, "error", err)
		return nil, ChunkOutcome{Index: index, Status: StatusFailed, Err: err.Error()}
	}
	if strings.Contains(reply, NoInfoSentinel) {
		return nil, ChunkOutcome{Index: index, Status: StatusNoInfo}
	}
	return &Extraction{Index: index, Text: strings.TrimSpace(reply)}, ChunkOutcome{Index: index, Status: StatusExtracted}
}
