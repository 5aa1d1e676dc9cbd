package organize

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// FindPDFs lists the PDF files under dir in sorted path order. With
// recurse false only the directory itself is scanned.
func FindPDFs(dir string, recurse bool) ([]string, error) {
	if !recurse {
		dirents, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("read directory: %w", err)
		}
		var pdfs []string
		for _, d := range dirents {
			if !d.IsDir() && isPDF(d.Name()) {
				pdfs = append(pdfs, filepath.Join(dir, d.Name()))
			}
		}
		return pdfs, nil
	}

	var pdfs []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && isPDF(d.Name()) {
			pdfs = append(pdfs, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan directory: %w", err)
	}
	return pdfs, nil
}

func isPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

// FileInto copies or moves analyzed papers into their category folder
// under sourceDir, creating the folders as needed. A paper already sitting
// in its folder is counted but left alone. Per-file copy failures are
// logged and skipped so one locked file does not abort the batch.
func FileInto(analyses []PaperAnalysis, sourceDir string, move bool, log *slog.Logger) (map[Category]int, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	counts := map[Category]int{
		CategoryUseful:      0,
		CategoryMeaningful:  0,
		CategoryImpractical: 0,
		CategoryUnknown:     0,
	}

	for _, a := range analyses {
		cat := bucket(a.Category)
		folder := ReviewFolder
		if info, ok := Categories[cat]; ok {
			folder = info.Folder
		}

		destDir := filepath.Join(sourceDir, folder)
		if err := os.MkdirAll(destDir, 0o755); err != nil {
			return counts, fmt.Errorf("create %s: %w", destDir, err)
		}

		src := a.Filepath
		dest := filepath.Join(destDir, filepath.Base(src))
		if filepath.Dir(src) == destDir {
			counts[cat]++
			continue
		}

		var err error
		if move {
			err = movePaper(src, dest)
		} else {
			err = copyFile(src, dest)
		}
		if err != nil {
			log.Warn("filing paper failed", "file", filepath.Base(src), "error", err)
			continue
		}
		counts[cat]++
		log.Info("filed paper", "file", filepath.Base(src), "folder", folder, "category", cat, "moved", move)
	}
	return counts, nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// movePaper renames, falling back to copy-and-delete for cross-device
// destinations.
func movePaper(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}
	if err := copyFile(src, dest); err != nil {
		return err
	}
	return os.Remove(src)
}
