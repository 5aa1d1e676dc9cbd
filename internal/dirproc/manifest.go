package dirproc

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/dgallion1/rlmproc/internal/convert"
)

// Manifest renders a tree-style summary of the discovered files. It
// leads the combined stream so the model can orient itself before the
// file blocks.
func Manifest(dir string, entries []*Entry, totalContentSize int) string {
	dirName := filepath.Base(strings.TrimRight(dir, "/\\"))
	if dirName == "" || dirName == "." {
		dirName = dir
	}

	dirsSeen := map[string]bool{}
	for _, e := range entries {
		parent := path.Dir(filepath.ToSlash(e.RelPath))
		if parent == "." {
			continue
		}
		parts := strings.Split(parent, "/")
		for i := range parts {
			dirsSeen[strings.Join(parts[:i+1], "/")] = true
		}
	}

	var b strings.Builder
	b.WriteString("=== DIRECTORY MANIFEST ===\n")
	fmt.Fprintf(&b, "%s/ (%d files, %d dirs, %s text content)\n",
		dirName, len(entries), len(dirsSeen), convert.FormatSize(int64(totalContentSize)))

	for _, e := range entries {
		rel := filepath.ToSlash(e.RelPath)
		indent := strings.Repeat("  ", strings.Count(rel, "/")+1)
		status := "[" + e.Type + "]"
		if e.LoadErr != "" {
			status = "[error]"
		}
		fmt.Fprintf(&b, "%s%-32s %-10s %8s\n", indent, path.Base(rel), status, convert.FormatSize(e.Size))
	}
	b.WriteString("=== END MANIFEST ===")
	return b.String()
}

// BuildCombined concatenates loaded file contents with the manifest as
// preamble and a marker line before each file.
func BuildCombined(entries []*Entry, manifest string) string {
	parts := []string{manifest, ""}
	for _, e := range entries {
		if !e.Loaded {
			continue
		}
		parts = append(parts, fmt.Sprintf("=== FILE: %s ===", filepath.ToSlash(e.RelPath)), e.Content, "")
	}
	return strings.Join(parts, "\n")
}
