package chunk

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// CountHeadings returns the number of markdown heading lines in content.
// Headings are found by parsing rather than pattern matching, so marker
// characters inside fenced code blocks are not miscounted.
func CountHeadings(content string) int {
	src := []byte(content)
	count := 0
	for _, h := range topLevelHeadings(src) {
		if isATX(src, h) {
			count++
		}
	}
	return count
}

// ByHeaders splits content immediately before each level-1 or level-2
// heading line, so every heading stays attached to the section it opens.
// Content with no such headings becomes a single chunk. Segments are
// trimmed and blank segments dropped.
func ByHeaders(content string) []string {
	src := []byte(content)

	var bounds []int
	for _, h := range topLevelHeadings(src) {
		if h.Level > 2 || !isATX(src, h) {
			continue
		}
		if off, ok := headingLineStart(src, h); ok {
			bounds = append(bounds, off)
		}
	}

	if len(bounds) == 0 {
		if t := strings.TrimSpace(content); t != "" {
			return []string{t}
		}
		return nil
	}
	if bounds[0] != 0 {
		bounds = append([]int{0}, bounds...)
	}

	var chunks []string
	for i, start := range bounds {
		end := len(content)
		if i+1 < len(bounds) {
			end = bounds[i+1]
		}
		part := strings.TrimSpace(content[start:end])
		if part != "" {
			chunks = append(chunks, part)
		}
	}
	return chunks
}

// topLevelHeadings parses content and collects document-level heading
// nodes. Headings nested inside lists or quotes do not mark section
// boundaries.
func topLevelHeadings(src []byte) []*ast.Heading {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	var headings []*ast.Heading
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok {
			headings = append(headings, h)
		}
	}
	return headings
}

// isATX reports whether the heading uses # markers rather than setext
// underlining. Only marker headings participate in structure detection.
func isATX(src []byte, h *ast.Heading) bool {
	off, ok := headingLineStart(src, h)
	if !ok {
		// A heading with no text lines can only be an empty # heading.
		return true
	}
	return off < len(src) && src[off] == '#'
}

// headingLineStart returns the byte offset of the start of the line the
// heading's first text segment sits on.
func headingLineStart(src []byte, h *ast.Heading) (int, bool) {
	if h.Lines().Len() == 0 {
		return 0, false
	}
	seg := h.Lines().At(0)
	return bytes.LastIndexByte(src[:seg.Start], '\n') + 1, true
}
