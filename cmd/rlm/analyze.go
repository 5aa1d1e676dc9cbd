package main

import (
	"fmt"

	"github.com/dgallion1/rlmproc/internal/analyze"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Report the structure of a context file before processing",
	Long: `Inspect a context file without calling the LLM: size, line statistics,
detected content patterns, first and last lines, and a suggested
chunking approach.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rep, err := analyze.AnalyzeFile(args[0])
		if err != nil {
			return err
		}
		fmt.Print(rep.Render())
		return nil
	},
}
