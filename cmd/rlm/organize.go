package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/dgallion1/rlmproc/internal/organize"
	"github.com/spf13/cobra"
)

var organizeCmd = &cobra.Command{
	Use:     "organize <directory>",
	Short:   "Categorize research papers by practical usefulness",
	Long:    organizeLong(),
	Example: `  # Analyze papers and write a report
  rlm organize ~/Papers

  # Tell the judge what you work on
  rlm organize ~/Papers --context "I build retrieval systems for legal documents"

  # File papers into category folders, moving instead of copying
  rlm organize ~/Papers --folders --move

  # Quick pass over the first five papers with the fast model
  rlm organize ~/Papers --limit 5 --fast`,
	Args: cobra.ExactArgs(1),
	RunE: runOrganize,
}

func init() {
	organizeCmd.Flags().StringP("output", "o", "papers_report.md", "output report path")
	organizeCmd.Flags().StringP("json", "j", "", "also save results as a JSON file")
	organizeCmd.Flags().Bool("folders", false, "file papers into category folders")
	organizeCmd.Flags().Bool("move", false, "move files instead of copying (with --folders)")
	organizeCmd.Flags().BoolP("fast", "f", false, "use the faster model")
	organizeCmd.Flags().StringP("context", "c", "", `your work context for relevance (e.g. "I work on computer vision")`)
	organizeCmd.Flags().IntP("limit", "l", 0, "limit the number of papers processed (0 = all)")
	organizeCmd.Flags().Bool("no-recursive", false, "do not search subdirectories")
	organizeCmd.Flags().BoolP("quiet", "q", false, "minimal output")
}

// organizeLong renders the command help from the category definitions so
// help and behavior cannot drift apart.
func organizeLong() string {
	var b strings.Builder
	b.WriteString(`Scan a directory of PDF papers, judge each one with the LLM, and
write a Markdown report grouped by category.

Categories:
`)
	for _, c := range []organize.Category{organize.CategoryUseful, organize.CategoryMeaningful, organize.CategoryImpractical} {
		info := organize.Categories[c]
		fmt.Fprintf(&b, "\n  %s %s: %s\n", info.Marker, c, info.Description)
		for _, crit := range info.Criteria {
			fmt.Fprintf(&b, "      - %s\n", crit)
		}
	}
	fmt.Fprintf(&b, "\nPapers that fail extraction or analysis land in %s.\n", organize.ReviewFolder)
	return b.String()
}

func runOrganize(cmd *cobra.Command, args []string) error {
	dir := args[0]
	output, _ := cmd.Flags().GetString("output")
	jsonPath, _ := cmd.Flags().GetString("json")
	folders, _ := cmd.Flags().GetBool("folders")
	move, _ := cmd.Flags().GetBool("move")
	fast, _ := cmd.Flags().GetBool("fast")
	userContext, _ := cmd.Flags().GetString("context")
	limit, _ := cmd.Flags().GetInt("limit")
	noRecursive, _ := cmd.Flags().GetBool("no-recursive")
	quiet, _ := cmd.Flags().GetBool("quiet")

	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		return fmt.Errorf("directory not found: %s", dir)
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
	analyzer := organize.NewAnalyzer(oc, log)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pdfs, err := organize.FindPDFs(dir, !noRecursive)
	if err != nil {
		return err
	}
	if len(pdfs) == 0 {
		fmt.Fprintln(os.Stderr, "No PDF files found.")
		return nil
	}
	if limit > 0 && len(pdfs) > limit {
		pdfs = pdfs[:limit]
	}
	if !quiet {
		fmt.Fprintf(os.Stderr, "Found %d PDF files in %s\n\n", len(pdfs), dir)
	}

	analyses := make([]organize.PaperAnalysis, 0, len(pdfs))
	for i, path := range pdfs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !quiet {
			fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", i+1, len(pdfs), clip(filepath.Base(path), 50))
		}
		a := analyzer.AnalyzePaper(ctx, path, userContext, fast)
		analyses = append(analyses, a)
		if !quiet {
			if a.Error != "" {
				fmt.Fprintf(os.Stderr, "  [!] %s\n", clip(a.Error, 60))
			} else {
				fmt.Fprintf(os.Stderr, "  [%s] (%s) %s\n", a.Category, a.Confidence, clip(a.Title, 40))
			}
		}
	}

	if err := organize.WriteReport(analyses, output); err != nil {
		return err
	}
	if jsonPath != "" {
		if err := organize.WriteJSON(analyses, jsonPath); err != nil {
			return err
		}
	}
	if folders {
		if !quiet {
			fmt.Fprintln(os.Stderr, "\nOrganizing papers into folders...")
		}
		if _, err := organize.FileInto(analyses, dir, move, log); err != nil {
			return err
		}
	}

	printOrganizeSummary(analyses, output, jsonPath, folders, dir)
	return nil
}

func printOrganizeSummary(analyses []organize.PaperAnalysis, reportPath, jsonPath string, organized bool, dir string) {
	counts := map[organize.Category]int{}
	for _, a := range analyses {
		counts[a.Category]++
	}

	rule := strings.Repeat("=", 60)
	fmt.Printf("\n%s\nSUMMARY\n%s\n", rule, rule)
	for _, c := range []organize.Category{organize.CategoryUseful, organize.CategoryMeaningful, organize.CategoryImpractical} {
		fmt.Printf("  [%s] %d papers\n", c, counts[c])
	}
	if n := counts[organize.CategoryUnknown]; n > 0 {
		fmt.Printf("  [?] unknown/errors: %d papers\n", n)
	}
	fmt.Printf("\nReport saved to: %s\n", reportPath)
	if jsonPath != "" {
		fmt.Printf("JSON saved to: %s\n", jsonPath)
	}
	if organized {
		fmt.Printf("Papers organized into: %s\n", dir)
	}
	fmt.Println(rule)
}
