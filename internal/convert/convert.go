package convert

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// MaxPDFSize bounds how large a PDF the converter will open.
const MaxPDFSize = 500 << 20

// errUnknownExtension marks extensions with no dedicated converter, as
// opposed to recognized formats that cannot be converted at all. Callers
// may sniff or fall back on the former, never on the latter.
var errUnknownExtension = errors.New("unknown file extension")

// Converter turns raw document bytes into plain text ready for chunking.
type Converter interface {
	Convert(r io.Reader, filename string) (string, error)
}

// SupportedExtensions lists file extensions with a dedicated converter.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".text":     true,
	".log":      true,
	".md":       true,
	".markdown": true,
	".xml":      true,
	".csv":      true,
	".tsv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
	".json":     true,
	".jsonl":    true,
	".ndjson":   true,
	".zip":      true,
	".tar":      true,
	".tgz":      true,
}

// ForFile returns the appropriate converter for a filename.
func ForFile(filename string) (Converter, error) {
	lower := strings.ToLower(filename)
	if strings.HasSuffix(lower, ".tar.gz") || strings.HasSuffix(lower, ".tgz") {
		return &TarConverter{Gzip: true}, nil
	}
	switch filepath.Ext(lower) {
	case ".txt", ".text", ".log", ".md", ".markdown", ".xml":
		return &TextConverter{}, nil
	case ".csv", ".tsv":
		return &CSVConverter{}, nil
	case ".html", ".htm":
		return &HTMLConverter{}, nil
	case ".pdf":
		return &PDFConverter{FallbackPdftotext: PDFFallback}, nil
	case ".docx":
		return &DOCXConverter{}, nil
	case ".doc":
		return nil, fmt.Errorf("legacy .doc format not supported, convert to .docx or pdf first")
	case ".json":
		return &JSONConverter{}, nil
	case ".jsonl", ".ndjson":
		return &JSONLConverter{}, nil
	case ".zip":
		return &ZipConverter{}, nil
	case ".tar":
		return &TarConverter{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", errUnknownExtension, filepath.Ext(lower))
	}
}

// IsSupportedExtension checks if a file extension has a dedicated converter.
func IsSupportedExtension(filename string) bool {
	lower := strings.ToLower(filename)
	if strings.HasSuffix(lower, ".tar.gz") {
		return true
	}
	return SupportedExtensions[filepath.Ext(lower)]
}

// ToText loads path and converts it to plain text. Unknown extensions
// are sniffed by content and fall back to a plain read unless the bytes
// look binary.
func ToText(path string) (string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if strings.EqualFold(filepath.Ext(path), ".pdf") && fi.Size() > MaxPDFSize {
		return "", fmt.Errorf("pdf too large: %s (limit %s)", FormatSize(fi.Size()), FormatSize(MaxPDFSize))
	}

	conv, err := ForFile(path)
	if errors.Is(err, errUnknownExtension) {
		conv, err = sniffConverter(path)
	}
	if err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return conv.Convert(f, filepath.Base(path))
}

// Convert converts an in-memory document, picking the converter from
// the filename. Unknown extensions convert as plain text.
func Convert(r io.Reader, filename string) (string, error) {
	conv, err := ForFile(filename)
	switch {
	case errors.Is(err, errUnknownExtension):
		conv = &TextConverter{}
	case err != nil:
		return "", err
	}
	return conv.Convert(r, filename)
}
