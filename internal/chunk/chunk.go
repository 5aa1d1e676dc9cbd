package chunk

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Defaults for the splitting algorithms. Sizes are in characters.
const (
	DefaultChunkSize     = 40000
	DefaultOverlap       = 500
	DefaultLinesPerChunk = 500
	DefaultSeparator     = "\n---\n"
)

// ByChars splits content into fixed-size windows of chunkSize characters,
// with overlap characters shared between consecutive windows. The final
// window may be shorter. Empty content yields no chunks.
func ByChars(content string, chunkSize, overlap int) []string {
	if content == "" {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}

	var chunks []string
	start := 0
	for start < len(content) {
		end := start + chunkSize
		if end > len(content) {
			end = len(content)
		} else {
			end = snapToRuneStart(content, end)
			if end <= start {
				// The window is smaller than the rune at start; take the
				// whole rune so the loop always advances.
				_, size := utf8.DecodeRuneInString(content[start:])
				end = start + size
			}
		}
		chunks = append(chunks, content[start:end])
		if end >= len(content) {
			break
		}
		next := snapToRuneStart(content, end-overlap)
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}

// ByLines splits content on newlines and groups the lines into chunks of
// linesPerChunk, rejoined with newlines. Empty content yields exactly one
// empty chunk, unlike the character splitter.
func ByLines(content string, linesPerChunk int) []string {
	if linesPerChunk <= 0 {
		linesPerChunk = DefaultLinesPerChunk
	}
	lines := strings.Split(content, "\n")
	chunks := make([]string, 0, (len(lines)+linesPerChunk-1)/linesPerChunk)
	for i := 0; i < len(lines); i += linesPerChunk {
		end := i + linesPerChunk
		if end > len(lines) {
			end = len(lines)
		}
		chunks = append(chunks, strings.Join(lines[i:end], "\n"))
	}
	return chunks
}

// BySeparator splits content on a literal separator token. Segments are
// trimmed and blank segments dropped.
func BySeparator(content, sep string) []string {
	if sep == "" {
		sep = DefaultSeparator
	}
	var chunks []string
	for _, part := range strings.Split(content, sep) {
		part = strings.TrimSpace(part)
		if part != "" {
			chunks = append(chunks, part)
		}
	}
	return chunks
}

// ByRegex splits content on a regular expression. A pattern that never
// matches yields the whole content as a single chunk. Segments are trimmed
// and blank segments dropped.
func ByRegex(content, pattern string) ([]string, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile split pattern: %w", err)
	}
	var chunks []string
	for _, part := range re.Split(content, -1) {
		part = strings.TrimSpace(part)
		if part != "" {
			chunks = append(chunks, part)
		}
	}
	return chunks, nil
}

// snapToRuneStart moves i left until it sits on a UTF-8 rune boundary, so a
// window edge never cuts a multi-byte sequence in half. ASCII content is
// unaffected.
func snapToRuneStart(s string, i int) int {
	if i <= 0 {
		return 0
	}
	if i >= len(s) {
		return len(s)
	}
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}
