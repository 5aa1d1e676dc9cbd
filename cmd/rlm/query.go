package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dgallion1/rlmproc/internal/config"
	"github.com/dgallion1/rlmproc/internal/oracle"
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query [prompt]",
	Short: "Send a single prompt to the LLM",
	Long: `Send one prompt straight to the LLM, without chunking or filtering.
The prompt comes from the argument, --file, or piped stdin.`,
	Example: `  rlm query "What is the capital of France?"
  rlm query --file my_prompt.txt
  rlm query "Summarize this..." --fast
  cat notes.txt | rlm query
  rlm query --check-key`,
	Args: cobra.MaximumNArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringP("file", "f", "", "read the prompt from a file")
	queryCmd.Flags().StringP("model", "m", "", "model to use (default: "+oracle.ModelDefault+")")
	queryCmd.Flags().Bool("fast", false, "use the fast model ("+oracle.ModelFast+")")
	queryCmd.Flags().IntP("max-tokens", "t", oracle.DefaultMaxTokens, "maximum response tokens")
	queryCmd.Flags().Float64("temperature", 0, "sampling temperature")
	queryCmd.Flags().StringP("system", "s", "", "system prompt")
	queryCmd.Flags().Bool("json", false, "print the response as JSON")
	queryCmd.Flags().Bool("check-key", false, "check whether an API key is configured")
}

func runQuery(cmd *cobra.Command, args []string) error {
	if checkKey, _ := cmd.Flags().GetBool("check-key"); checkKey {
		return runCheckKey()
	}

	file, _ := cmd.Flags().GetString("file")
	model, _ := cmd.Flags().GetString("model")
	fast, _ := cmd.Flags().GetBool("fast")
	maxTokens, _ := cmd.Flags().GetInt("max-tokens")
	temperature, _ := cmd.Flags().GetFloat64("temperature")
	system, _ := cmd.Flags().GetString("system")
	asJSON, _ := cmd.Flags().GetBool("json")

	prompt, err := resolvePrompt(args, file)
	if err != nil {
		return err
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

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	req := oracle.Request{
		Prompt:      prompt,
		System:      system,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
	// The fast flag wins over an explicit model, matching process.
	if fast {
		req.Fast = true
	} else if model != "" {
		req.Model = model
	}

	resp, err := oc.Query(ctx, req)
	if err != nil {
		return err
	}

	if asJSON {
		out, err := json.MarshalIndent(map[string]string{"response": resp}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}
	fmt.Println(resp)
	return nil
}

// resolvePrompt picks the prompt source: --file, then the argument, then
// piped stdin.
func resolvePrompt(args []string, file string) (string, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if fi, err := os.Stdin.Stat(); err == nil && fi.Mode()&os.ModeCharDevice == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(string(data)) != "" {
			return string(data), nil
		}
	}
	return "", errors.New("no prompt provided: pass an argument, --file, or pipe stdin")
}

func runCheckKey() error {
	key := config.LoadAPIKey()
	dir := config.ClaudeDir()
	if key == "" {
		fmt.Println("[X] API key not found")
		if dir != "" {
			fmt.Printf("  Config dir: %s\n", dir)
		}
		return nil
	}
	masked := "***"
	if len(key) > 20 {
		masked = key[:10] + "..." + key[len(key)-4:]
	}
	fmt.Printf("[OK] API key found: %s\n", masked)
	if dir != "" {
		fmt.Printf("  Config dir: %s\n", dir)
	}
	return nil
}
