package rlm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dgallion1/rlmproc/internal/chunk"
	"github.com/dgallion1/rlmproc/internal/convert"
	"github.com/dgallion1/rlmproc/internal/relevance"
)

// Process runs the full pipeline over in-memory content: strategy
// detection, chunking, relevance filtering, per-chunk extraction and
// hierarchical aggregation. Per-chunk failures degrade to absent
// extractions; the only error returned is context cancellation.
func (p *Processor) Process(ctx context.Context, content, query string, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	start := time.Now()

	strategy := opts.Strategy
	if strategy == "" {
		strategy = chunk.DetectStrategy(content, opts.ChunkSize)
	}
	chunks := chunk.SplitByStrategy(content, strategy, opts.ChunkSize, opts.Overlap)
	p.log.Info("content chunked", "strategy", strategy, "chunks", len(chunks), "chars", len(content))

	var selected []relevance.Selected
	if opts.FilterEnabled && len(chunks) > FilterMinChunks {
		selected = relevance.Filter(chunks, query, opts.Keywords)
		if len(selected) < len(chunks) {
			p.log.Info("filtered chunks", "kept", len(selected), "total", len(chunks))
		}
	} else {
		selected = relevance.All(chunks)
	}

	extractions, outcomes, err := p.processSelected(ctx, selected, len(chunks), query, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Strategy:      strategy,
		ChunkCount:    len(chunks),
		SelectedCount: len(selected),
		Outcomes:      outcomes,
	}
	for _, o := range outcomes {
		switch o.Status {
		case StatusExtracted:
			result.Extracted++
		case StatusNoInfo:
			result.NoInfo++
		case StatusFailed:
			result.Failed++
		}
	}
	p.log.Info("extraction complete",
		"extracted", result.Extracted, "no_info", result.NoInfo, "failed", result.Failed)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result.Answer = p.aggregate(ctx, extractions, query, opts)
	result.ElapsedMs = time.Since(start).Milliseconds()
	return result, nil
}

// ProcessFile loads path through the converter and runs Process on the
// text. Load failures surface immediately; once content is obtained the
// run cannot fail except by cancellation.
func (p *Processor) ProcessFile(ctx context.Context, path, query string, opts Options) (*Result, error) {
	content, err := convert.ToText(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return p.Process(ctx, content, query, opts)
}

// processSelected runs the chunk processor over every selected chunk.
// Sequential by default; with Concurrency > 1 a bounded pool runs calls in
// parallel. Either way extractions come back ordered by original index.
func (p *Processor) processSelected(ctx context.Context, selected []relevance.Selected, total int, query string, opts Options) ([]Extraction, []ChunkOutcome, error) {
	exts := make([]*Extraction, len(selected))
	outcomes := make([]ChunkOutcome, len(selected))

	if opts.Concurrency <= 1 {
		for i, sel := range selected {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
			exts[i], outcomes[i] = p.ProcessChunk(ctx, sel.Text, sel.Index, total, query, opts)
		}
	} else {
		sem := make(chan struct{}, opts.Concurrency)
		var wg sync.WaitGroup
		for i, sel := range selected {
			wg.Add(1)
			sem <- struct{}{}
			go func(i int, sel relevance.Selected) {
				defer wg.Done()
				defer func() { <-sem }()
				exts[i], outcomes[i] = p.ProcessChunk(ctx, sel.Text, sel.Index, total, query, opts)
			}(i, sel)
		}
		wg.Wait()
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
	}

	var extractions []Extraction
	for _, e := range exts {
		if e != nil {
			extractions = append(extractions, *e)
		}
	}
	return extractions, outcomes, nil
}
