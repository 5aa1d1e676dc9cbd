package dirproc

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dgallion1/rlmproc/internal/chunk"
	"github.com/dgallion1/rlmproc/internal/convert"
	"github.com/dgallion1/rlmproc/internal/rlm"
)

// NoFilesAnswer is returned when no file produced relevant information.
const NoFilesAnswer = "No relevant information found in any files for this query."

// FileResult records the outcome for one file in per-file mode.
type FileResult struct {
	File   string `json:"file"`
	Type   string `json:"type"`
	Size   int64  `json:"size"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Outcome is the result of processing a directory.
type Outcome struct {
	Answer    string
	FileCount int
	Skipped   SkipCounts
	Files     []FileResult // per-file mode only
}

// Processor answers queries over directory trees.
type Processor struct {
	rlm *rlm.Processor
	log *slog.Logger
}

func New(p *rlm.Processor, log *slog.Logger) *Processor {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Processor{rlm: p, log: log}
}

// Process discovers files under dir and answers query over them.
// Combined mode concatenates everything into one stream, which suits
// cross-file questions. Per-file mode processes files independently and
// aggregates across them, which suits file-scoped questions.
func (d *Processor) Process(ctx context.Context, dir, query string, opts Options) (*Outcome, error) {
	opts = opts.withDefaults()

	entries, skips, err := Discover(dir, opts)
	if err != nil {
		return nil, err
	}
	out := &Outcome{FileCount: len(entries), Skipped: skips}

	if len(entries) == 0 {
		switch {
		case skips.String() != "":
			out.Answer = fmt.Sprintf("No processable files found in %s. Skipped: %s.", dir, skips)
		case len(opts.Include) > 0:
			out.Answer = fmt.Sprintf("No files matched the include patterns: %s", strings.Join(opts.Include, ", "))
		default:
			out.Answer = fmt.Sprintf("No processable files found in %s.", dir)
		}
		return out, nil
	}
	d.log.Info("discovered files", "dir", dir, "count", len(entries))

	total := LoadContents(entries, d.log)
	loaded := 0
	for _, e := range entries {
		if e.Loaded {
			loaded++
		}
	}
	if loaded == 0 {
		out.Answer = "All files failed to load. Check file permissions and formats."
		return out, nil
	}
	d.log.Info("loaded contents", "loaded", loaded, "files", len(entries), "chars", total)

	manifest := Manifest(dir, entries, total)

	if opts.PerFile {
		answer, results, err := d.processPerFile(ctx, entries, query, opts)
		if err != nil {
			return nil, err
		}
		out.Answer, out.Files = answer, results
		return out, nil
	}

	ropts := rlm.DefaultOptions()
	ropts.ChunkSize = opts.ChunkSize
	ropts.Fast = opts.Fast
	res, err := d.rlm.Process(ctx, BuildCombined(entries, manifest), query, ropts)
	if err != nil {
		return nil, err
	}
	out.Answer = res.Answer
	return out, nil
}

// processPerFile runs the pipeline over each loaded file on its own,
// then aggregates the per-file answers into one.
func (d *Processor) processPerFile(ctx context.Context, entries []*Entry, query string, opts Options) (string, []FileResult, error) {
	ropts := rlm.DefaultOptions()
	ropts.ChunkSize = opts.ChunkSize
	ropts.Fast = opts.Fast

	var results []FileResult
	var answers []rlm.Extraction

	for _, e := range entries {
		if !e.Loaded {
			continue
		}
		if err := ctx.Err(); err != nil {
			return "", nil, err
		}

		fr := FileResult{File: filepath.ToSlash(e.RelPath), Type: e.Type, Size: e.Size}
		fileContext := fmt.Sprintf("File: %s (%s, %s)\n\n%s",
			fr.File, e.Type, convert.FormatSize(e.Size), e.Content)

		var answer string
		if len(fileContext) <= ropts.ChunkSize {
			ext, _ := d.rlm.ProcessChunk(ctx, fileContext, 0, 1, query, ropts)
			if ext != nil {
				answer = ext.Text
			}
		} else {
			strategy := chunk.DetectStrategy(fileContext, ropts.ChunkSize)
			chunks := chunk.SplitByStrategy(fileContext, strategy, ropts.ChunkSize, ropts.Overlap)
			var exts []rlm.Extraction
			for ci, c := range chunks {
				ext, _ := d.rlm.ProcessChunk(ctx, c, ci, len(chunks), query, ropts)
				if ext != nil {
					exts = append(exts, *ext)
				}
			}
			if len(exts) > 0 {
				answer = d.rlm.Aggregate(ctx, exts, query, ropts)
			}
		}

		if answer != "" {
			fr.Result = answer
			answers = append(answers, rlm.Extraction{
				Index: len(answers),
				Text:  fmt.Sprintf("[File: %s]\n%s", fr.File, answer),
			})
			d.log.Info("file answered", "file", fr.File)
		} else {
			fr.Error = "No relevant info found"
			d.log.Info("no relevant info", "file", fr.File)
		}
		results = append(results, fr)
	}

	if len(answers) == 0 {
		return NoFilesAnswer, results, nil
	}
	d.log.Info("aggregating across files", "files", len(answers))
	return d.rlm.Aggregate(ctx, answers, query, ropts), results, nil
}
