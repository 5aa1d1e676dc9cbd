package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgallion1/rlmproc/internal/chunk"
	"github.com/dgallion1/rlmproc/internal/convert"
	"github.com/dgallion1/rlmproc/internal/relevance"
	"github.com/dgallion1/rlmproc/internal/rlm"
)

// Worker processes a single document job.
type Worker struct {
	proc *rlm.Processor
	log  *slog.Logger
}

func NewWorker(proc *rlm.Processor, log *slog.Logger) *Worker {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Worker{proc: proc, log: log}
}

// Process runs the full pipeline for one job: convert the upload to text,
// chunk it, filter chunks against the query, extract from each chunk and
// aggregate the findings into an answer. Per-chunk failures are recorded
// on the job and degrade the final status to partial; they never abort
// the run.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)
	start := time.Now()

	// Phase 1: Convert
	job.SetStatus(StatusConverting, "converting")
	text, err := convert.Convert(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("conversion failed", "error", err)
		job.AddError(fmt.Sprintf("convert: %s", err))
		job.SetStatus(StatusFailed, "converting")
		return
	}
	if strings.TrimSpace(text) == "" {
		log.Warn("no extractable content")
		job.AddError("no extractable content")
		job.SetStatus(StatusFailed, "converting")
		return
	}
	job.SetContentHash(ContentHashHex([]byte(text)))
	// The raw upload is dead weight once converted.
	job.SetFileData(nil)

	opts := job.Options()

	// Phase 2: Chunk
	job.SetStatus(StatusChunking, "chunking")
	strategy := opts.Strategy
	if strategy == "" {
		strategy = chunk.DetectStrategy(text, opts.ChunkSize)
	}
	chunks := chunk.SplitByStrategy(text, strategy, opts.ChunkSize, opts.Overlap)
	log.Info("chunked document", "strategy", strategy, "chunks", len(chunks), "chars", len(text))

	if len(chunks) == 0 {
		log.Warn("no chunks produced")
		job.AddError("no extractable content")
		job.SetStatus(StatusFailed, "chunking")
		return
	}

	// Phase 3: Filter
	job.SetStatus(StatusFiltering, "filtering")
	var selected []relevance.Selected
	if opts.FilterEnabled && len(chunks) > rlm.FilterMinChunks {
		selected = relevance.Filter(chunks, job.Query, opts.Keywords)
	} else {
		selected = relevance.All(chunks)
	}
	job.SetChunkCounts(len(chunks), len(selected))
	if len(selected) < len(chunks) {
		log.Info("filtered chunks", "kept", len(selected), "total", len(chunks))
	}

	// Phase 4: Extract from chunks with bounded concurrency.
	job.SetStatus(StatusExtracting, "extracting")
	type chunkResult struct {
		idx     int
		ext     *rlm.Extraction
		outcome rlm.ChunkOutcome
	}
	results := make(chan chunkResult, len(selected))
	conc := opts.Concurrency
	if conc < 1 {
		conc = 1
	}
	sem := make(chan struct{}, conc)

	for i, sel := range selected {
		sem <- struct{}{}
		go func(i int, sel relevance.Selected) {
			defer func() { <-sem }()
			ext, outcome := w.proc.ProcessChunk(ctx, sel.Text, sel.Index, len(chunks), job.Query, opts)
			results <- chunkResult{idx: i, ext: ext, outcome: outcome}
		}(i, sel)
	}

	// Collect extraction results, keeping original chunk order.
	exts := make([]*rlm.Extraction, len(selected))
	outcomes := make([]rlm.ChunkOutcome, len(selected))
	failed := 0
	for range selected {
		r := <-results
		exts[r.idx] = r.ext
		outcomes[r.idx] = r.outcome
		job.IncrChunksProcessed()
		if r.outcome.Status == rlm.StatusFailed {
			log.Error("extraction failed", "chunk", r.outcome.Index, "error", r.outcome.Err)
			job.AddError(fmt.Sprintf("chunk %d: %s", r.outcome.Index, r.outcome.Err))
			failed++
		}
	}

	if ctx.Err() != nil {
		job.AddError("processing canceled")
		job.SetStatus(StatusFailed, "extracting")
		return
	}

	var extractions []rlm.Extraction
	for _, e := range exts {
		if e != nil {
			extractions = append(extractions, *e)
		}
	}
	job.AddRelevant(len(extractions))
	log.Info("extraction complete", "relevant", len(extractions), "failed", failed)

	if len(extractions) == 0 && failed > 0 {
		job.SetStatus(StatusFailed, "extracting")
		return
	}

	// Phase 5: Aggregate findings into the final answer.
	job.SetStatus(StatusAggregating, "aggregating")
	answer := w.proc.Aggregate(ctx, extractions, job.Query, opts)

	res := &rlm.Result{
		Answer:        answer,
		Strategy:      strategy,
		ChunkCount:    len(chunks),
		SelectedCount: len(selected),
		Outcomes:      outcomes,
		ElapsedMs:     time.Since(start).Milliseconds(),
	}
	for _, o := range outcomes {
		switch o.Status {
		case rlm.StatusExtracted:
			res.Extracted++
		case rlm.StatusNoInfo:
			res.NoInfo++
		case rlm.StatusFailed:
			res.Failed++
		}
	}
	job.SetResult(res)
	log.Info("job complete",
		"extracted", res.Extracted, "no_info", res.NoInfo, "failed", res.Failed,
		"elapsed_ms", res.ElapsedMs)

	if failed > 0 {
		job.SetStatus(StatusPartial, "done")
	} else {
		job.SetStatus(StatusCompleted, "done")
	}
}
