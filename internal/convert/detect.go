package convert

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var codeExtensions = map[string]bool{
	".py": true, ".js": true, ".ts": true, ".jsx": true, ".tsx": true,
	".java": true, ".c": true, ".cpp": true, ".h": true, ".hpp": true,
	".go": true, ".rs": true, ".rb": true, ".php": true, ".swift": true,
	".kt": true, ".scala": true, ".cs": true, ".vb": true,
	".sh": true, ".bash": true, ".ps1": true, ".sql": true,
}

var textExtensions = map[string]bool{
	".txt": true, ".md": true, ".rst": true, ".text": true, ".log": true,
	".ini": true, ".cfg": true, ".conf": true, ".toml": true, ".env": true,
	".zsh": true, ".fish": true, ".bat": true, ".cmd": true,
	".graphql": true, ".proto": true,
	".css": true, ".scss": true, ".sass": true, ".less": true,
	".markdown": true,
}

// DetectType classifies a file as pdf, docx, doc, json, xml, html, csv,
// yaml, archive, code, text, binary or unknown. The extension decides
// first; unknown extensions get a content probe.
func DetectType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		return "pdf"
	case ".docx":
		return "docx"
	case ".doc":
		return "doc"
	case ".json", ".jsonl", ".ndjson":
		return "json"
	case ".xml":
		return "xml"
	case ".html", ".htm":
		return "html"
	case ".csv", ".tsv":
		return "csv"
	case ".yaml", ".yml":
		return "yaml"
	case ".zip", ".tar", ".gz", ".tgz":
		return "archive"
	}
	if codeExtensions[ext] {
		return "code"
	}
	if textExtensions[ext] {
		return "text"
	}

	f, err := os.Open(path)
	if err != nil {
		return "unknown"
	}
	defer f.Close()

	head := make([]byte, 512)
	n, _ := io.ReadFull(f, head)
	head = head[:n]

	switch {
	case bytes.HasPrefix(head, []byte("%PDF")):
		return "pdf"
	case bytes.HasPrefix(head, []byte("PK\x03\x04")):
		if zipHasWordDocument(path) {
			return "docx"
		}
		return "archive"
	case bytes.ContainsRune(head, 0):
		return "binary"
	default:
		return "text"
	}
}

// sniffConverter picks a converter from file content when the extension
// is unrecognized. Anything with NUL bytes is rejected as binary, the
// rest reads as text.
func sniffConverter(path string) (Converter, error) {
	switch DetectType(path) {
	case "pdf":
		return &PDFConverter{FallbackPdftotext: PDFFallback}, nil
	case "docx":
		return &DOCXConverter{}, nil
	case "archive":
		if strings.HasSuffix(strings.ToLower(path), ".gz") {
			return &TarConverter{Gzip: true}, nil
		}
		return &ZipConverter{}, nil
	case "binary":
		return nil, fmt.Errorf("unsupported binary file: %s", filepath.Base(path))
	case "unknown":
		return nil, fmt.Errorf("unreadable file: %s", filepath.Base(path))
	default:
		return &TextConverter{}, nil
	}
}

func zipHasWordDocument(path string) bool {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return false
	}
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			return true
		}
	}
	return false
}
