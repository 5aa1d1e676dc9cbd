package organize

import (
	"fmt"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// Extraction limits. Papers are front-loaded, so everything the analysis
// needs sits in the opening pages; the cap keeps pathological PDFs from
// flooding the prompt.
const (
	MaxPages   = 15
	FirstPages = 3
)

// ExtractText pulls plain text from a PDF paper. It returns the full text
// (capped at MaxPages, with a truncation marker when the cap is hit) and
// the text of the opening pages, which carry the title and authors.
func ExtractText(path string) (full, first string, err error) {
	f, r, err := pdflib.Open(path)
	if err != nil {
		return "", "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var parts, firstParts []string
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if !page.V.IsNull() {
			text, err := page.GetPlainText(nil)
			if err == nil && text != "" {
				parts = append(parts, text)
				if i <= FirstPages {
					firstParts = append(firstParts, text)
				}
			}
		}
		if i > MaxPages {
			parts = append(parts, fmt.Sprintf("\n[... Truncated after %d pages ...]", MaxPages))
			break
		}
	}
	return strings.Join(parts, "\n\n"), strings.Join(firstParts, "\n\n"), nil
}
