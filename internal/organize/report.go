package organize

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// RenderReport builds the markdown report: summary counts, a quick
// reference table over every paper, then the full verdicts grouped by
// category with the strongest confidence first.
func RenderReport(analyses []PaperAnalysis) string {
	byCategory := map[Category][]PaperAnalysis{}
	for _, a := range analyses {
		c := bucket(a.Category)
		byCategory[c] = append(byCategory[c], a)
	}

	var lines []string
	lines = append(lines, "# ML/AI Papers Analysis Report")
	lines = append(lines, fmt.Sprintf("\n**Generated:** %s", time.Now().Format("2006-01-02 15:04")))
	lines = append(lines, fmt.Sprintf("**Total Papers:** %d", len(analyses)))
	lines = append(lines, "")

	lines = append(lines, "## Summary\n")
	lines = append(lines, "| Category | Count | Description |")
	lines = append(lines, "|----------|-------|-------------|")
	for _, cat := range categoryOrder {
		info := Categories[cat]
		lines = append(lines, fmt.Sprintf("| %s **%s** | %d | %s |", info.Marker, cat, len(byCategory[cat]), info.Description))
	}
	if n := len(byCategory[CategoryUnknown]); n > 0 {
		lines = append(lines, fmt.Sprintf("| ❓ UNKNOWN | %d | Could not be categorized |", n))
	}
	lines = append(lines, "")

	lines = append(lines, "## Quick Reference\n")
	lines = append(lines, "| # | Title | Category | Time to Value | Tags |")
	lines = append(lines, "|---|-------|----------|---------------|------|")
	for i, a := range analyses {
		if a.Error != "" {
			continue
		}
		marker := "❓"
		if info, ok := Categories[a.Category]; ok {
			marker = info.Marker
		}
		tags := "-"
		if len(a.Tags) > 0 {
			tags = strings.Join(capList(a.Tags, 3), ", ")
		}
		title := a.Title
		if len(title) > 40 {
			title = title[:40] + "..."
		}
		lines = append(lines, fmt.Sprintf("| %d | %s | %s %s | %s | %s |",
			i+1, title, marker, a.Category, a.EstimatedTimeToValue, tags))
	}
	lines = append(lines, "")

	for _, cat := range categoryOrder {
		papers := byCategory[cat]
		if len(papers) == 0 {
			continue
		}
		info := Categories[cat]
		lines = append(lines, fmt.Sprintf("\n---\n\n## %s %s: %s", info.Marker, cat, info.Description))
		lines = append(lines, fmt.Sprintf("\n*%d papers in this category*\n", len(papers)))

		sort.SliceStable(papers, func(i, j int) bool {
			ri, rj := confidenceRank(papers[i].Confidence), confidenceRank(papers[j].Confidence)
			if ri != rj {
				return ri < rj
			}
			return papers[i].Title < papers[j].Title
		})

		for i, paper := range papers {
			lines = append(lines, fmt.Sprintf("### %d. %s", i+1, paper.Title))
			lines = append(lines, fmt.Sprintf("**Authors:** %s (%s)", paper.Authors, paper.Year))
			lines = append(lines, fmt.Sprintf("**Confidence:** %s | **Time to Value:** %s", paper.Confidence, paper.EstimatedTimeToValue))
			lines = append(lines, fmt.Sprintf("**File:** `%s`", paper.Filename))
			lines = append(lines, "")
			lines = append(lines, fmt.Sprintf("**Summary:** %s", paper.Summary))
			lines = append(lines, "")

			if len(paper.KeyContributions) > 0 {
				lines = append(lines, "**Key Contributions:**")
				for _, c := range capList(paper.KeyContributions, 3) {
					lines = append(lines, fmt.Sprintf("- %s", c))
				}
				lines = append(lines, "")
			}
			if len(paper.PracticalApplications) > 0 {
				lines = append(lines, "**Practical Applications:**")
				for _, app := range capList(paper.PracticalApplications, 3) {
					lines = append(lines, fmt.Sprintf("- %s", app))
				}
				lines = append(lines, "")
			}
			if paper.RelevanceReasoning != "" {
				lines = append(lines, fmt.Sprintf("**Why %s?** %s", cat, paper.RelevanceReasoning))
				lines = append(lines, "")
			}
			if len(paper.Tags) > 0 {
				lines = append(lines, fmt.Sprintf("**Tags:** %s", strings.Join(paper.Tags, ", ")))
			}
			lines = append(lines, "\n---\n")
		}
	}

	if unknown := byCategory[CategoryUnknown]; len(unknown) > 0 {
		lines = append(lines, "\n## ❓ Papers with Errors\n")
		for _, paper := range unknown {
			errMsg := paper.Error
			if errMsg == "" {
				errMsg = "Unknown error"
			}
			lines = append(lines, fmt.Sprintf("- **%s**: %s", paper.Filename, errMsg))
		}
	}

	return strings.Join(lines, "\n")
}

// WriteReport renders the markdown report to a file.
func WriteReport(analyses []PaperAnalysis, path string) error {
	if err := os.WriteFile(path, []byte(RenderReport(analyses)), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// WriteJSON saves the raw verdicts for programmatic use.
func WriteJSON(analyses []PaperAnalysis, path string) error {
	data, err := json.MarshalIndent(analyses, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal analyses: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

func confidenceRank(c string) int {
	switch c {
	case "HIGH":
		return 0
	case "MEDIUM":
		return 1
	default:
		return 2
	}
}

func capList(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
