package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/dgallion1/rlmproc/internal/convert"
	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert <input> [output]",
	Short: "Convert a document to plain text",
	Long: `Run the document converter on its own. The extracted text goes to
stdout, or to the output path when given.

Supported formats:
  Documents:  .pdf, .docx, .txt, .md
  Data:       .json, .jsonl, .ndjson, .xml, .csv, .tsv
  Web:        .html, .htm
  Archives:   .zip, .tar, .tar.gz, .tgz

Files with other extensions are sniffed by content and read as plain
text when they are not binary.`,
	Example: `  rlm convert document.pdf
  rlm convert report.docx output.txt
  rlm convert codebase.zip --info`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().BoolP("info", "i", false, "show file info only")
}

func runConvert(cmd *cobra.Command, args []string) error {
	input := args[0]
	var output string
	if len(args) == 2 {
		output = args[1]
	}
	infoOnly, _ := cmd.Flags().GetBool("info")

	if _, err := os.Stat(input); err != nil {
		return fmt.Errorf("file not found: %s", input)
	}

	if infoOnly {
		fi, err := convert.Info(input)
		if err != nil {
			return err
		}
		fmt.Printf("File: %s\n", fi.Name)
		fmt.Printf("Type: %s\n", fi.Kind)
		fmt.Printf("Size: %s\n", fi.SizeHuman)
		fmt.Printf("Path: %s\n", fi.Path)
		return nil
	}

	if _, err := loadConfig(); err != nil {
		return err
	}

	text, err := convert.ToText(input)
	if err != nil {
		return err
	}
	if output != "" {
		if err := os.WriteFile(output, []byte(text), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", output, err)
		}
		fmt.Fprintf(os.Stderr, "Extracted %s characters to %s\n", humanize.Comma(int64(len(text))), output)
		return nil
	}
	fmt.Print(text)
	return nil
}
