package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/rlmproc/internal/config"
	"github.com/dgallion1/rlmproc/internal/convert"
	"github.com/dgallion1/rlmproc/internal/oracle"
	"github.com/spf13/cobra"
)

var (
	cfgPath string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "rlm",
	Short: "Answer queries over contexts far larger than an LLM window",
	Long: `rlm answers queries over documents too large for a single LLM call.

Content is split into chunks along natural boundaries, optionally
pre-filtered by query keywords, examined chunk by chunk with focused
extraction prompts, and the findings are synthesized into one answer.

Reference: Zhang, Kraska, Khattab - "Recursive Language Models" (arXiv:2512.24601)`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to a TOML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		processCmd,
		dirCmd,
		analyzeCmd,
		organizeCmd,
		queryCmd,
		convertCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger builds the progress logger for one command run. Progress
// goes to stderr so stdout stays clean for answers.
func newLogger(quiet bool) *slog.Logger {
	level := slog.LevelInfo
	if quiet {
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return cfg, err
	}
	convert.PDFFallback = cfg.PDFFallbackPdftotext
	return cfg, nil
}

// newOracle builds the LLM client, failing when no API key is
// configured.
func newOracle(cfg config.Config) (*oracle.Client, error) {
	if cfg.AnthropicAPIKey == "" {
		if dir := config.ClaudeDir(); dir != "" {
			return nil, fmt.Errorf("API key not configured: set ANTHROPIC_API_KEY or create %s",
				filepath.Join(dir, "api_key.txt"))
		}
		return nil, fmt.Errorf("API key not configured: set ANTHROPIC_API_KEY")
	}
	return oracle.NewClient(cfg.AnthropicAPIKey, oracle.WithModels(cfg.Model, cfg.FastModel)), nil
}

// printAnswer writes the final answer block to stdout and optionally to
// a file.
func printAnswer(answer, outputPath string) error {
	rule := strings.Repeat("=", 60)
	fmt.Printf("\n%s\nFINAL ANSWER\n%s\n%s\n", rule, rule, answer)
	if outputPath != "" {
		if err := os.WriteFile(outputPath, []byte(answer), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", outputPath, err)
		}
		fmt.Fprintf(os.Stderr, "\n[Saved to %s]\n", outputPath)
	}
	return nil
}

// clip shortens a string for one-line progress output.
func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
