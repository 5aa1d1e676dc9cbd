package organize

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dgallion1/rlmproc/internal/oracle"
)

// AnalysisMaxTokens bounds the verdict reply.
const AnalysisMaxTokens = 2000

// Prompt budgets in bytes. The opening pages carry the metadata; a slice
// of the body past them gives the oracle enough to judge practicality.
const (
	firstPagesPromptLimit = 8000
	fullTextPromptLimit   = 20000
)

// Analyzer asks the oracle for a categorized verdict on each paper.
type Analyzer struct {
	oracle oracle.Oracle
	log    *slog.Logger
}

func NewAnalyzer(o oracle.Oracle, log *slog.Logger) *Analyzer {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Analyzer{oracle: o, log: log}
}

// AnalyzePaper extracts a paper's text and asks the oracle to categorize
// it. Failures never propagate: an unreadable PDF files the paper for
// review, and a malformed verdict falls back to the meaningful bucket with
// the parse error attached.
func (a *Analyzer) AnalyzePaper(ctx context.Context, pdfPath, userContext string, fast bool) PaperAnalysis {
	filename := filepath.Base(pdfPath)

	full, first, err := ExtractText(pdfPath)
	if err != nil {
		a.log.Warn("pdf extraction failed", "file", filename, "error", err)
		return extractionFailed(filename, pdfPath, fmt.Sprintf("Error extracting PDF: %v", err))
	}
	if full == "" {
		a.log.Warn("pdf produced no text", "file", filename)
		return extractionFailed(filename, pdfPath, "")
	}

	reply, err := a.oracle.Query(ctx, oracle.Request{
		Prompt:    buildAnalysisPrompt(first, full, userContext),
		Fast:      fast,
		MaxTokens: AnalysisMaxTokens,
	})
	if err != nil {
		a.log.Warn("paper analysis failed", "file", filename, "error", err)
		return PaperAnalysis{
			Filename:             filename,
			Filepath:             pdfPath,
			Title:                filename,
			Authors:              "Unknown",
			Year:                 "Unknown",
			Category:             CategoryUnknown,
			Confidence:           "LOW",
			Summary:              "Analysis failed",
			RelevanceReasoning:   err.Error(),
			EstimatedTimeToValue: "Unknown",
			Tags:                 []string{"error"},
			Error:                err.Error(),
		}
	}

	analysis, err := parseVerdict(reply)
	if err != nil {
		a.log.Warn("verdict parsing failed", "file", filename, "error", err)
		return PaperAnalysis{
			Filename:             filename,
			Filepath:             pdfPath,
			Title:                filename,
			Authors:              "Unknown",
			Year:                 "Unknown",
			Category:             CategoryMeaningful,
			Confidence:           "LOW",
			Summary:              "Analysis completed but response parsing failed",
			RelevanceReasoning:   "JSON parsing error: " + truncate(err.Error(), 100),
			EstimatedTimeToValue: "Unknown",
			Tags:                 []string{"parse-error"},
			Error:                "JSON parse error: " + err.Error(),
		}
	}

	analysis.Filename = filename
	analysis.Filepath = pdfPath
	if strings.TrimSpace(analysis.Title) == "" {
		analysis.Title = filename
	}
	Normalize(&analysis)
	return analysis
}

func extractionFailed(filename, path, extractErr string) PaperAnalysis {
	reason, errMsg := "PDF extraction failed", "Empty PDF"
	if extractErr != "" {
		reason, errMsg = extractErr, extractErr
	}
	return PaperAnalysis{
		Filename:             filename,
		Filepath:             path,
		Title:                "[Extraction Failed]",
		Authors:              "Unknown",
		Year:                 "Unknown",
		Category:             CategoryUnknown,
		Confidence:           "LOW",
		Summary:              "Could not extract text from PDF",
		RelevanceReasoning:   reason,
		EstimatedTimeToValue: "Unknown",
		Tags:                 []string{"extraction-error"},
		Error:                errMsg,
	}
}

const analysisSchema = `{
    "title": "Full paper title",
    "authors": "First Author et al.",
    "year": "2024" or "Unknown",
    "category": "USEFUL" or "MEANINGFUL" or "IMPRACTICAL",
    "confidence": "HIGH" or "MEDIUM" or "LOW",
    "summary": "2-3 sentence summary of what the paper does",
    "key_contributions": ["contribution 1", "contribution 2"],
    "practical_applications": ["application 1", "application 2"],
    "limitations": ["limitation 1", "limitation 2"],
    "relevance_reasoning": "Why this category? 2-3 sentences explaining the classification",
    "estimated_time_to_value": "Immediate" or "3-6 months" or "6-12 months" or "1+ years" or "Theoretical only",
    "tags": ["tag1", "tag2", "tag3"]
}`

func buildAnalysisPrompt(first, full, userContext string) string {
	firstClip := first
	if len(firstClip) > firstPagesPromptLimit {
		firstClip = firstClip[:firstPagesPromptLimit]
	}
	additional := "[No additional content]"
	if len(full) > firstPagesPromptLimit {
		end := len(full)
		if end > fullTextPromptLimit {
			end = fullTextPromptLimit
		}
		additional = full[firstPagesPromptLimit:end]
	}

	var sb strings.Builder
	sb.WriteString("Analyze this ML/AI research paper and categorize it.\n\n")
	sb.WriteString("PAPER TEXT (first pages for metadata):\n---\n")
	sb.WriteString(firstClip)
	sb.WriteString("\n---\n\n")
	sb.WriteString("ADDITIONAL CONTENT:\n---\n")
	sb.WriteString(additional)
	sb.WriteString("\n---\n")
	if userContext != "" {
		sb.WriteString("\nUSER CONTEXT (consider this when determining relevance):\n")
		sb.WriteString(userContext)
		sb.WriteString("\n")
	}
	sb.WriteString("\nCATEGORIES:\n")
	for _, c := range categoryOrder {
		fmt.Fprintf(&sb, "- %s: %s\n", c, Categories[c].Description)
	}
	sb.WriteString("\nRespond in this exact JSON format (no markdown, just JSON):\n")
	sb.WriteString(analysisSchema)
	sb.WriteString("\n\nBe practical and realistic. Consider:\n")
	sb.WriteString("- Is there working code available?\n")
	sb.WriteString("- How much compute/data is needed?\n")
	sb.WriteString("- Is this solving a real problem or just advancing benchmarks?\n")
	sb.WriteString("- Would a practitioner benefit from reading this?\n\n")
	sb.WriteString("JSON response:")
	return sb.String()
}

// looseString accepts a JSON string, number, or list of strings. The
// oracle is asked for strings but drifts, sending author arrays and bare
// numeric years.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = looseString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err == nil {
		*s = looseString(num.String())
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*s = looseString(strings.Join(list, ", "))
		return nil
	}
	return fmt.Errorf("expected string, number, or string list: %s", truncate(string(b), 50))
}

func parseVerdict(reply string) (PaperAnalysis, error) {
	var v struct {
		Title                 looseString `json:"title"`
		Authors               looseString `json:"authors"`
		Year                  looseString `json:"year"`
		Category              string      `json:"category"`
		Confidence            string      `json:"confidence"`
		Summary               string      `json:"summary"`
		KeyContributions      []string    `json:"key_contributions"`
		PracticalApplications []string    `json:"practical_applications"`
		Limitations           []string    `json:"limitations"`
		RelevanceReasoning    string      `json:"relevance_reasoning"`
		EstimatedTimeToValue  string      `json:"estimated_time_to_value"`
		Tags                  []string    `json:"tags"`
	}
	if err := json.Unmarshal([]byte(stripCodeBlock(reply)), &v); err != nil {
		return PaperAnalysis{}, err
	}
	return PaperAnalysis{
		Title:                 string(v.Title),
		Authors:               string(v.Authors),
		Year:                  string(v.Year),
		Category:              Category(v.Category),
		Confidence:            v.Confidence,
		Summary:               v.Summary,
		KeyContributions:      v.KeyContributions,
		PracticalApplications: v.PracticalApplications,
		Limitations:           v.Limitations,
		RelevanceReasoning:    v.RelevanceReasoning,
		EstimatedTimeToValue:  v.EstimatedTimeToValue,
		Tags:                  v.Tags,
	}, nil
}

// maxTags bounds the tag list a single verdict may carry.
const maxTags = 8

// Normalize clamps a verdict onto the known category and confidence
// vocabulary, fills the unknowable fields, and slugifies the tags. An
// empty category defaults to the cautious middle bucket; an unrecognized
// one files the paper for review.
func Normalize(a *PaperAnalysis) {
	c := Category(strings.ToUpper(strings.TrimSpace(string(a.Category))))
	if c == "" {
		a.Category = CategoryMeaningful
	} else if _, ok := Categories[c]; ok {
		a.Category = c
	} else {
		a.Category = CategoryUnknown
	}

	switch conf := strings.ToUpper(strings.TrimSpace(a.Confidence)); conf {
	case "HIGH", "MEDIUM", "LOW":
		a.Confidence = conf
	default:
		a.Confidence = "MEDIUM"
	}

	if strings.TrimSpace(a.Authors) == "" {
		a.Authors = "Unknown"
	}
	if strings.TrimSpace(a.Year) == "" {
		a.Year = "Unknown"
	}
	if strings.TrimSpace(a.EstimatedTimeToValue) == "" {
		a.EstimatedTimeToValue = "Unknown"
	}

	tags := a.Tags[:0]
	for _, t := range a.Tags {
		if s := Slugify(t); s != "" {
			tags = append(tags, s)
		}
	}
	if len(tags) > maxTags {
		tags = tags[:maxTags]
	}
	a.Tags = tags
}

var (
	codeBlockRe    = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")
	slugStripRe    = regexp.MustCompile(`[^a-z0-9-]`)
	slugCollapseRe = regexp.MustCompile(`-+`)
)

func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

// Slugify converts a tag to a lowercase hyphenated form so the report
// carries one consistent tag vocabulary.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugStripRe.ReplaceAllString(s, "-")
	s = slugCollapseRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 50 {
		s = s[:50]
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
