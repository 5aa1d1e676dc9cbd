package rlm

import (
	"context"
	"fmt"
	"strings"

	"github.com/dgallion1/rlmproc/internal/oracle"
)

// DegradedFindingsLimit bounds the raw-findings prefix embedded in a
// degraded answer after a synthesis failure.
const DegradedFindingsLimit = 5000

// Aggregate combines extractions into one final answer. Empty input
// returns the fixed no-information answer without an oracle call. When the
// labeled findings exceed the size threshold, the pair list is halved by
// position and each half pre-summarized recursively before the final
// synthesis. A synthesis failure degrades to a textual answer embedding
// the error and a prefix of the raw findings. Aggregate always returns an
// answer, never an error.
func (p *Processor) Aggregate(ctx context.Context, extractions []Extraction, query string, opts Options) string {
	return p.aggregate(ctx, extractions, query, opts.withDefaults())
}

func (p *Processor) aggregate(ctx context.Context, extractions []Extraction, query string, opts Options) string {
	if len(extractions) == 0 {
		return NoRelevantInfoAnswer
	}

	combined := combineLabeled(extractions)

	if len(combined) > opts.AggregateThreshold && len(extractions) > 1 {
		// Too big for one synthesis call: pre-summarize each half, then
		// synthesize over the two summaries. Each split strictly reduces
		// the pair count, so the recursion terminates.
		mid := len(extractions) / 2
		p.log.Info("findings exceed synthesis budget, pre-summarizing",
			"size", len(combined), "pairs", len(extractions))
		left := p.aggregate(ctx, extractions[:mid], SummarizeQuery, opts)
		right := p.aggregate(ctx, extractions[mid:], SummarizeQuery, opts)
		combined = "Summary Part 1:\n" + left + "\n\nSummary Part 2:\n" + right
	}
	if len(combined) > opts.AggregateThreshold {
		// A single oversized finding cannot shrink by splitting. Cut it to
		// the budget and synthesize from the prefix.
		combined = combined[:opts.AggregateThreshold]
	}

	reply, err := p.oracle.Query(ctx, oracle.Request{
		Prompt:    BuildSynthesisPrompt(combined, query),
		Fast:      opts.Fast,
		MaxTokens: SynthesisMaxTokens,
	})
	if err != nil {
		p.log.Error("synthesis failed", "error", err)
		limit := DegradedFindingsLimit
		if len(combined) < limit {
			limit = len(combined)
		}
		return fmt.Sprintf("Error during aggregation: %s\n\nRaw findings:\n%s", err, combined[:limit])
	}
	return strings.TrimSpace(reply)
}

// combineLabeled renders extractions as labeled section blocks. Labels use
// one-based positions from the original document so the synthesized answer
// can cite them.
func combineLabeled(extractions []Extraction) string {
	blocks := make([]string, len(extractions))
	for i, e := range extractions {
		blocks[i] = fmt.Sprintf("[Section %d]\n%s", e.Index+1, e.Text)
	}
	return strings.Join(blocks, "\n\n")
}
