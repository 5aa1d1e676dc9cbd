package convert

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
)

// maxArchiveEntry caps how much of a single archive member is read.
const maxArchiveEntry = 10 << 20

// skipDirParts are directory names whose contents never matter.
var skipDirParts = map[string]bool{
	"node_modules": true,
	"__pycache__":  true,
	"venv":         true,
	".git":         true,
}

// ZipConverter concatenates the text files inside a zip archive into
// labeled blocks.
type ZipConverter struct{}

func (c *ZipConverter) Convert(r io.Reader, filename string) (string, error) {
	// archive/zip needs a ReaderAt+size, so write to a temp file.
	tmp, err := os.CreateTemp("", "rlmproc-zip-*.zip")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	zr, err := zip.OpenReader(tmpPath)
	if err != nil {
		return "", fmt.Errorf("open zip: %w", err)
	}
	defer zr.Close()

	var out strings.Builder
	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() || !includeArchiveEntry(zf.Name) {
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			writeEntryBlock(&out, zf.Name, "", err)
			continue
		}
		data, err := io.ReadAll(io.LimitReader(rc, maxArchiveEntry))
		rc.Close()
		writeEntryBlock(&out, zf.Name, string(data), err)
	}
	return strings.TrimSpace(out.String()), nil
}

// TarConverter does the same for tar archives, optionally gzipped.
type TarConverter struct {
	Gzip bool
}

func (c *TarConverter) Convert(r io.Reader, filename string) (string, error) {
	var src io.Reader = r
	if c.Gzip {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return "", fmt.Errorf("open gzip: %w", err)
		}
		defer gz.Close()
		src = gz
	}

	tr := tar.NewReader(src)
	var out strings.Builder
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read tar: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg || !includeArchiveEntry(hdr.Name) {
			continue
		}
		data, err := io.ReadAll(io.LimitReader(tr, maxArchiveEntry))
		writeEntryBlock(&out, hdr.Name, string(data), err)
	}
	return strings.TrimSpace(out.String()), nil
}

// includeArchiveEntry filters archive members down to text files on
// safe relative paths. Hidden files, vendored trees and anything that
// escapes the archive root are dropped.
func includeArchiveEntry(name string) bool {
	clean := path.Clean(strings.ReplaceAll(name, "\\", "/"))
	if clean == "." || path.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return false
	}
	for _, part := range strings.Split(clean, "/") {
		if skipDirParts[part] || strings.HasPrefix(part, ".") {
			return false
		}
	}
	return textLikeExt(path.Ext(clean))
}

func textLikeExt(ext string) bool {
	switch strings.ToLower(ext) {
	case ".txt", ".text", ".log", ".md", ".markdown", ".csv", ".json", ".jsonl",
		".xml", ".html", ".htm", ".yaml", ".yml", ".toml", ".ini", ".cfg", ".conf",
		".py", ".go", ".js", ".ts", ".java", ".c", ".h", ".cpp", ".rs", ".rb", ".sh", ".sql":
		return true
	}
	return false
}

func writeEntryBlock(out *strings.Builder, name, content string, err error) {
	fmt.Fprintf(out, "=== FILE: %s ===\n", name)
	if err != nil {
		fmt.Fprintf(out, "[Error reading file: %v]\n\n", err)
		return
	}
	out.WriteString(strings.TrimRight(content, "\n"))
	out.WriteString("\n\n")
}
