package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dgallion1/rlmproc/internal/chunk"
	"github.com/dgallion1/rlmproc/internal/dirproc"
	"github.com/dgallion1/rlmproc/internal/rlm"
	"github.com/spf13/cobra"
)

var dirCmd = &cobra.Command{
	Use:   "dir <directory> <query>",
	Short: "Answer a query over a directory of files",
	Long: `Discover processable files under a directory, load them, and answer
the query over all of them.

Combined mode (default) concatenates files into one stream with a
manifest, which suits cross-file questions. Per-file mode processes
each file independently and aggregates the answers, which suits
file-scoped questions.`,
	Example: `  # Analyze a codebase
  rlm dir ./src "What does this application do?"

  # Only Python files, each summarized independently
  rlm dir ./src "Summarize each module" --include "*.py" --per-file

  # Exclude tests, save the answer
  rlm dir ./src "Document the API" --exclude "*_test.go" -o docs.md

  # Non-recursive with per-file JSON results
  rlm dir ./configs "Check for issues" --no-recursive --per-file --json results.json`,
	Args: cobra.ExactArgs(2),
	RunE: runDir,
}

func init() {
	dirCmd.Flags().String("include", "", `comma-separated include patterns (e.g. "*.py,*.js")`)
	dirCmd.Flags().String("exclude", "", `comma-separated exclude patterns (e.g. "*.test.js")`)
	dirCmd.Flags().Bool("per-file", false, "process each file independently instead of combined")
	dirCmd.Flags().IntP("chunk-size", "c", chunk.DefaultChunkSize, "target chunk size in characters")
	dirCmd.Flags().BoolP("fast", "f", false, "use the faster model for chunk extraction")
	dirCmd.Flags().Int64("max-file-size", dirproc.DefaultMaxFileSize, "skip files larger than N bytes")
	dirCmd.Flags().Bool("no-recursive", false, "do not recurse into subdirectories")
	dirCmd.Flags().BoolP("quiet", "q", false, "suppress progress output")
	dirCmd.Flags().StringP("output", "o", "", "write the answer to a file")
	dirCmd.Flags().String("json", "", "save per-file results as JSON (requires --per-file)")
}

func runDir(cmd *cobra.Command, args []string) error {
	dir, query := args[0], args[1]
	include, _ := cmd.Flags().GetString("include")
	exclude, _ := cmd.Flags().GetString("exclude")
	perFile, _ := cmd.Flags().GetBool("per-file")
	chunkSize, _ := cmd.Flags().GetInt("chunk-size")
	fast, _ := cmd.Flags().GetBool("fast")
	maxFileSize, _ := cmd.Flags().GetInt64("max-file-size")
	noRecursive, _ := cmd.Flags().GetBool("no-recursive")
	quiet, _ := cmd.Flags().GetBool("quiet")
	output, _ := cmd.Flags().GetString("output")
	jsonPath, _ := cmd.Flags().GetString("json")

	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		return fmt.Errorf("directory not found: %s", dir)
	}
	if jsonPath != "" && !perFile {
		return fmt.Errorf("--json requires --per-file")
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

	log := newLogger(quiet)
	d := dirproc.New(rlm.New(oc, log), log)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	out, err := d.Process(ctx, dir, query, dirproc.Options{
		Include:     splitPatterns(include),
		Exclude:     splitPatterns(exclude),
		PerFile:     perFile,
		ChunkSize:   chunkSize,
		Fast:        fast,
		MaxFileSize: maxFileSize,
		NoRecurse:   noRecursive,
	})
	if err != nil {
		return err
	}

	if jsonPath != "" {
		data, err := json.MarshalIndent(out.Files, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal per-file results: %w", err)
		}
		if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", jsonPath, err)
		}
		fmt.Fprintf(os.Stderr, "[Per-file results saved to %s]\n", jsonPath)
	}
	return printAnswer(out.Answer, output)
}

func splitPatterns(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
