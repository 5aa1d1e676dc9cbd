package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dgallion1/rlmproc/internal/apiclient"
	"github.com/dgallion1/rlmproc/internal/chunk"
	"github.com/dgallion1/rlmproc/internal/rlm"
	"github.com/spf13/cobra"
)

var processCmd = &cobra.Command{
	Use:   "process <file> <query>",
	Short: "Answer a query over a single large file",
	Long: `Process a long context file with recursive decomposition: chunk,
filter, extract per chunk, then synthesize one answer.

PDF, DOCX, HTML, Markdown, JSON, CSV and archive inputs are converted
to plain text before chunking.`,
	Example: `  # Basic usage
  rlm process document.txt "What are the main conclusions?"

  # Process a codebase dump with the faster model
  rlm process codebase.txt "Find potential security issues" --fast

  # Smaller chunks for denser content
  rlm process data.txt "Count entries by category" --chunk-size 20000

  # Skip pre-filtering for comprehensive analysis
  rlm process report.txt "Summarize everything" --no-filter

  # Submit to a shared daemon instead of calling the LLM directly
  rlm process big.pdf "List all findings" --remote http://localhost:8090`,
	Args: cobra.ExactArgs(2),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().IntP("chunk-size", "c", chunk.DefaultChunkSize, "target chunk size in characters")
	processCmd.Flags().BoolP("fast", "f", false, "use the faster model for chunk extraction")
	processCmd.Flags().Bool("no-filter", false, "disable keyword-based chunk pre-filtering")
	processCmd.Flags().BoolP("quiet", "q", false, "suppress progress output")
	processCmd.Flags().StringP("output", "o", "", "write the answer to a file")
	processCmd.Flags().String("strategy", "", "force a chunking strategy (document_separator, markdown_headers, line_count, character_count)")
	processCmd.Flags().Int("concurrency", 1, "process up to N chunks in parallel")
	processCmd.Flags().String("remote", "", "submit to a processing service at this base URL")
	processCmd.Flags().String("api-key", "", "service API key for --remote (default: RLM_API_KEY)")
}

func runProcess(cmd *cobra.Command, args []string) error {
	path, query := args[0], args[1]
	chunkSize, _ := cmd.Flags().GetInt("chunk-size")
	fast, _ := cmd.Flags().GetBool("fast")
	noFilter, _ := cmd.Flags().GetBool("no-filter")
	quiet, _ := cmd.Flags().GetBool("quiet")
	output, _ := cmd.Flags().GetString("output")
	strategy, _ := cmd.Flags().GetString("strategy")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	remote, _ := cmd.Flags().GetString("remote")
	apiKey, _ := cmd.Flags().GetString("api-key")

	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("file not found: %s", path)
	}
	if err := validStrategy(strategy); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if remote != "" {
		opts := apiclient.SubmitOptions{
			ChunkSize: chunkSize,
			Overlap:   chunk.DefaultOverlap,
			Filter:    !noFilter,
			Fast:      fast,
			Strategy:  strategy,
		}
		return processRemote(ctx, remote, apiKey, path, query, opts, quiet, output)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	oc, err := newOracle(cfg)
	if err != nil {
		return err
	}
	defer oc.Close()

	proc := rlm.New(oc, newLogger(quiet))

	opts := rlm.DefaultOptions()
	opts.ChunkSize = chunkSize
	opts.FilterEnabled = !noFilter
	opts.Fast = fast
	opts.Strategy = chunk.Strategy(strategy)
	opts.Concurrency = concurrency

	res, err := proc.ProcessFile(ctx, path, query, opts)
	if err != nil {
		return err
	}
	return printAnswer(res.Answer, output)
}

func validStrategy(s string) error {
	switch chunk.Strategy(s) {
	case "", chunk.StrategyDocumentSeparator, chunk.StrategyMarkdownHeaders,
		chunk.StrategyLineCount, chunk.StrategyCharacterCount:
		return nil
	}
	return fmt.Errorf("unknown strategy %q", s)
}

func processRemote(ctx context.Context, baseURL, apiKey, path, query string, opts apiclient.SubmitOptions, quiet bool, output string) error {
	if apiKey == "" {
		apiKey = os.Getenv("RLM_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("service API key required: pass --api-key or set RLM_API_KEY")
	}

	c := apiclient.NewClient(baseURL, apiKey)
	defer c.Close()

	ack, err := c.Submit(ctx, path, query, opts)
	if err != nil {
		return err
	}
	if !quiet {
		fmt.Fprintf(os.Stderr, "[remote] job %s queued\n", ack.JobID)
	}

	var lastPhase string
	res, err := c.Wait(ctx, ack.JobID, 2*time.Second, func(st apiclient.JobStatus) {
		if quiet || st.Phase == lastPhase {
			return
		}
		lastPhase = st.Phase
		if st.Progress.SelectedChunks > 0 {
			fmt.Fprintf(os.Stderr, "[remote] %s (%d/%d chunks)\n",
				st.Phase, st.Progress.ChunksProcessed, st.Progress.SelectedChunks)
			return
		}
		fmt.Fprintf(os.Stderr, "[remote] %s\n", st.Phase)
	})
	if err != nil {
		return err
	}
	if res.Result == nil {
		return fmt.Errorf("job %s %s: %s", res.JobID, res.Status, strings.Join(res.Errors, "; "))
	}
	if res.Status == "partial" && !quiet {
		fmt.Fprintf(os.Stderr, "[remote] warning: %d chunk(s) failed, answer may be incomplete\n", res.Result.Failed)
	}
	return printAnswer(res.Result.Answer, output)
}
