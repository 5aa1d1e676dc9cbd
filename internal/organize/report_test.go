package organize

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func sampleAnalyses() []PaperAnalysis {
	return []PaperAnalysis{
		{
			Filename:              "zeta.pdf",
			Title:                 "Zeta Optimizer",
			Authors:               "Ruiz et al.",
			Year:                  "2025",
			Category:              CategoryUseful,
			Confidence:            "HIGH",
			Summary:               "Speeds up training.",
			KeyContributions:      []string{"2x faster convergence"},
			PracticalApplications: []string{"drop-in optimizer swap"},
			RelevanceReasoning:    "Code available.",
			EstimatedTimeToValue:  "Immediate",
			Tags:                  []string{"training", "optimizer"},
		},
		{
			Filename:             "alpha.pdf",
			Title:                "Alpha Theory",
			Authors:              "Chen",
			Year:                 "2024",
			Category:             CategoryUseful,
			Confidence:           "MEDIUM",
			Summary:              "A theory with a usable library.",
			EstimatedTimeToValue: "3-6 months",
		},
		{
			Filename:             "deep.pdf",
			Title:                "Deep Proof of Convergence in Infinite Regime",
			Authors:              "Unknown",
			Year:                 "Unknown",
			Category:             CategoryImpractical,
			Confidence:           "LOW",
			Summary:              "Pure theory.",
			EstimatedTimeToValue: "Theoretical only",
		},
		{
			Filename:   "broken.pdf",
			Title:      "[Extraction Failed]",
			Category:   CategoryUnknown,
			Confidence: "LOW",
			Error:      "Empty PDF",
		},
	}
}

func TestRenderReport_SummaryAndSections(t *testing.T) {
	report := RenderReport(sampleAnalyses())

	if !strings.HasPrefix(report, "# ML/AI Papers Analysis Report") {
		t.Errorf("report should open with the title")
	}
	if !strings.Contains(report, "**Total Papers:** 4") {
		t.Errorf("report missing the total count")
	}
	if !strings.Contains(report, "| 🟢 **USEFUL** | 2 |") {
		t.Errorf("summary table missing the useful count:\n%s", report)
	}
	if !strings.Contains(report, "| ❓ UNKNOWN | 1 | Could not be categorized |") {
		t.Errorf("summary table missing the unknown row")
	}

	zeta := strings.Index(report, "### 1. Zeta Optimizer")
	alpha := strings.Index(report, "### 2. Alpha Theory")
	if zeta < 0 || alpha < 0 || zeta > alpha {
		t.Errorf("high-confidence paper should lead its category section")
	}
	if !strings.Contains(report, "**Why USEFUL?** Code available.") {
		t.Errorf("report missing the reasoning line")
	}
	if !strings.Contains(report, "**Tags:** training, optimizer") {
		t.Errorf("report missing the tags line")
	}
	if !strings.Contains(report, "## ❓ Papers with Errors") || !strings.Contains(report, "- **broken.pdf**: Empty PDF") {
		t.Errorf("report missing the errors section")
	}
}

func TestRenderReport_QuickReferenceSkipsErroredButKeepsNumbering(t *testing.T) {
	report := RenderReport(sampleAnalyses())

	if !strings.Contains(report, "| 1 | Zeta Optimizer |") {
		t.Errorf("quick reference missing the first paper")
	}
	if !strings.Contains(report, "| 3 | Deep Proof of Convergence in Infinite Re... |") {
		t.Errorf("quick reference should truncate long titles at 40 chars:\n%s", report)
	}
	if strings.Contains(report, "| 4 | ") {
		t.Errorf("the errored paper should leave a numbering gap, not a row")
	}
}

func TestRenderReport_EmptyCategoriesOmitDetailSections(t *testing.T) {
	report := RenderReport(sampleAnalyses()[:2])

	if strings.Contains(report, "## 🔴") {
		t.Errorf("a category with no papers should have no detail section")
	}
	if strings.Contains(report, "## ❓ Papers with Errors") {
		t.Errorf("no errors section without errored papers")
	}
}

func TestWriteJSON_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "papers.json")
	if err := WriteJSON(sampleAnalyses()[:2], path); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.Contains(string(data), `"key_contributions"`) {
		t.Errorf("JSON should use snake_case keys")
	}

	var got []PaperAnalysis
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 2 || got[0].Title != "Zeta Optimizer" || got[0].Category != CategoryUseful {
		t.Errorf("round trip mismatch: %+v", got)
	}
}
