package analyze

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/dgallion1/rlmproc/internal/doctree"
)

// Patterns counts the structural markers found in the content.
type Patterns struct {
	JSONObjects        int `json:"json_objects"`
	MarkdownHeaders    int `json:"markdown_headers"`
	CodeBlocks         int `json:"code_blocks"`
	XMLTags            int `json:"xml_tags"`
	DocumentSeparators int `json:"document_separators"`
	NumberedItems      int `json:"numbered_items"`
	BulletPoints       int `json:"bullet_points"`
}

// LineStats summarizes line lengths.
type LineStats struct {
	AvgLength   int `json:"avg_length"`
	MaxLength   int `json:"max_length"`
	MinNonEmpty int `json:"min_non_empty"`
}

// Report is the structural analysis of a context file.
type Report struct {
	Path              string    `json:"file_path,omitempty"`
	TotalChars        int       `json:"total_chars"`
	TotalLines        int       `json:"total_lines"`
	NonEmptyLines     int       `json:"non_empty_lines"`
	EstimatedTokens   int       `json:"estimated_tokens"`
	Patterns          Patterns  `json:"patterns"`
	LineStats         LineStats `json:"line_stats"`
	FirstLines        []string  `json:"first_lines"`
	LastLines         []string  `json:"last_lines"`
	SuggestedChunking string    `json:"suggested_chunking"`

	// Outline is the heading tree for content with markdown headers,
	// nil otherwise.
	Outline *doctree.Node `json:"-"`
}

var (
	jsonObjectRe = regexp.MustCompile(`(?m)^\s*\{`)
	headerRe     = regexp.MustCompile(`(?m)^#+\s+`)
	xmlTagRe     = regexp.MustCompile(`<[a-zA-Z][^>]*>`)
	separatorRe  = regexp.MustCompile(`\n---+\n|\n===+\n|\n\*\*\*+\n`)
	numberedRe   = regexp.MustCompile(`(?m)^\s*\d+[.)]\s+`)
	bulletRe     = regexp.MustCompile(`(?m)^\s*[-*•]\s+`)
)

// Analyze inspects content and reports its structure.
func Analyze(content string) *Report {
	lines := strings.Split(content, "\n")

	r := &Report{
		TotalChars:      len(content),
		TotalLines:      len(lines),
		EstimatedTokens: EstimateTokens(content),
	}

	r.Patterns = Patterns{
		JSONObjects:        len(jsonObjectRe.FindAllStringIndex(content, -1)),
		MarkdownHeaders:    len(headerRe.FindAllStringIndex(content, -1)),
		CodeBlocks:         strings.Count(content, "```") / 2,
		XMLTags:            len(xmlTagRe.FindAllStringIndex(content, -1)),
		DocumentSeparators: len(separatorRe.FindAllStringIndex(content, -1)),
		NumberedItems:      len(numberedRe.FindAllStringIndex(content, -1)),
		BulletPoints:       len(bulletRe.FindAllStringIndex(content, -1)),
	}

	var sum, maxLen, minNonEmpty int
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			r.NonEmptyLines++
		}
		n := len(l)
		sum += n
		if n > maxLen {
			maxLen = n
		}
		if n > 0 && (minNonEmpty == 0 || n < minNonEmpty) {
			minNonEmpty = n
		}
	}
	r.LineStats = LineStats{
		AvgLength:   sum / len(lines),
		MaxLength:   maxLen,
		MinNonEmpty: minNonEmpty,
	}

	if len(lines) > 20 {
		r.FirstLines = lines[:20]
	} else {
		r.FirstLines = lines
	}
	if len(lines) > 10 {
		r.LastLines = lines[len(lines)-10:]
	} else {
		r.LastLines = lines
	}

	if r.Patterns.MarkdownHeaders > 0 {
		r.Outline = doctree.Outline(content)
	}

	r.SuggestedChunking = suggestChunking(r)
	return r
}

// AnalyzeFile reads path as text and analyzes it.
func AnalyzeFile(path string) (*Report, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	r := Analyze(string(b))
	r.Path = path
	return r, nil
}

func suggestChunking(r *Report) string {
	switch {
	case r.Patterns.DocumentSeparators > 5:
		return "document_boundaries"
	case r.Patterns.JSONObjects > 10:
		return "json_objects"
	case r.Patterns.MarkdownHeaders > 10:
		return "markdown_sections"
	case r.TotalLines > 1000:
		return "line_count"
	default:
		return "character_count"
	}
}

// Recommendation maps estimated tokens to a processing tier and a
// suggested chunk count. Moderate contexts carry no count.
type Recommendation struct {
	Tier       string `json:"tier"`
	ChunkCount int    `json:"chunk_count,omitempty"`
}

func (r *Report) Recommendation() Recommendation {
	switch {
	case r.EstimatedTokens > 100000:
		return Recommendation{Tier: "aggressive", ChunkCount: r.EstimatedTokens / 30000}
	case r.EstimatedTokens > 50000:
		return Recommendation{Tier: "standard", ChunkCount: r.EstimatedTokens / 40000}
	default:
		return Recommendation{Tier: "moderate"}
	}
}

// Render formats the report for terminal output.
func (r *Report) Render() string {
	var b strings.Builder
	bar := strings.Repeat("=", 60)
	rule := strings.Repeat("-", 40)

	fmt.Fprintf(&b, "%s\nCONTEXT ANALYSIS REPORT\n%s\n\n", bar, bar)
	if r.Path != "" {
		fmt.Fprintf(&b, "File: %s\n", r.Path)
	}
	fmt.Fprintf(&b, "Size: %s characters\n", humanize.Comma(int64(r.TotalChars)))
	fmt.Fprintf(&b, "Lines: %s total (%s non-empty)\n",
		humanize.Comma(int64(r.TotalLines)), humanize.Comma(int64(r.NonEmptyLines)))
	fmt.Fprintf(&b, "Estimated tokens: ~%s\n", humanize.Comma(int64(r.EstimatedTokens)))

	fmt.Fprintf(&b, "\nLINE STATISTICS:\n")
	fmt.Fprintf(&b, "   Average length: %d chars\n", r.LineStats.AvgLength)
	fmt.Fprintf(&b, "   Max length: %d chars\n", r.LineStats.MaxLength)

	fmt.Fprintf(&b, "\nSTRUCTURE PATTERNS:\n")
	for _, p := range []struct {
		name  string
		count int
	}{
		{"json_objects", r.Patterns.JSONObjects},
		{"markdown_headers", r.Patterns.MarkdownHeaders},
		{"code_blocks", r.Patterns.CodeBlocks},
		{"xml_tags", r.Patterns.XMLTags},
		{"document_separators", r.Patterns.DocumentSeparators},
		{"numbered_items", r.Patterns.NumberedItems},
		{"bullet_points", r.Patterns.BulletPoints},
	} {
		if p.count > 0 {
			fmt.Fprintf(&b, "   %s: %d\n", p.name, p.count)
		}
	}

	if r.Outline != nil {
		if n := r.Outline.Count(); n > 0 {
			const maxOutlineLines = 15
			fmt.Fprintf(&b, "\nOUTLINE (%d headings):\n%s\n", n, rule)
			b.WriteString(r.Outline.Render(maxOutlineLines))
			if n > maxOutlineLines {
				fmt.Fprintf(&b, "     ... (%d more)\n", n-maxOutlineLines)
			}
		}
	}

	fmt.Fprintf(&b, "\nSUGGESTED CHUNKING: %s\n", r.SuggestedChunking)

	fmt.Fprintf(&b, "\nFIRST %d LINES:\n%s\n", len(r.FirstLines), rule)
	for i, line := range r.FirstLines {
		fmt.Fprintf(&b, "%4d | %s\n", i+1, previewLine(line))
	}

	fmt.Fprintf(&b, "\nLAST %d LINES:\n%s\n", len(r.LastLines), rule)
	start := r.TotalLines - len(r.LastLines) + 1
	for i, line := range r.LastLines {
		fmt.Fprintf(&b, "%4d | %s\n", start+i, previewLine(line))
	}

	fmt.Fprintf(&b, "\n%s\n", bar)
	rec := r.Recommendation()
	switch rec.Tier {
	case "aggressive":
		fmt.Fprintf(&b, "VERY LARGE CONTEXT - Aggressive chunking recommended\n")
		fmt.Fprintf(&b, "   Suggested chunk count: %d chunks\n", rec.ChunkCount)
	case "standard":
		fmt.Fprintf(&b, "LARGE CONTEXT - Standard RLM processing recommended\n")
		fmt.Fprintf(&b, "   Suggested chunk count: %d chunks\n", rec.ChunkCount)
	default:
		fmt.Fprintf(&b, "MODERATE CONTEXT - May fit in context window, but RLM still beneficial\n")
	}
	fmt.Fprintf(&b, "%s\n", bar)

	return b.String()
}

func previewLine(line string) string {
	r := []rune(line)
	if len(r) > 80 {
		return string(r[:80]) + "..."
	}
	return line
}
