package relevance

import (
	"fmt"
	"testing"
)

func TestKeywords_StripsStopWordsAndShortTokens(t *testing.T) {
	got := Keywords("What does the Memory Allocator do with freed pages?")

	want := []string{"memory", "allocator", "freed", "pages"}
	if len(got) != len(want) {
		t.Fatalf("expected keywords %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("keyword %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestKeywords_AllStopWordsYieldsNone(t *testing.T) {
	if got := Keywords("what about this that"); len(got) != 0 {
		t.Errorf("expected no keywords, got %v", got)
	}
}

func TestFilter_SelectsMatchingChunks(t *testing.T) {
	chunks := []string{
		"This chunk discusses security vulnerabilities in web applications",
		"Cooking recipes for pasta and pizza dishes",
		"Security best practices for API design",
	}

	selected := Filter(chunks, "security issues", nil)

	if len(selected) != 2 {
		t.Fatalf("expected 2 selected chunks, got %d", len(selected))
	}
	if selected[0].Index != 0 || selected[1].Index != 2 {
		t.Errorf("expected indices [0 2], got [%d %d]", selected[0].Index, selected[1].Index)
	}
}

func TestFilter_PreservesOriginalIndicesAndOrder(t *testing.T) {
	chunks := []string{
		"alpha database entry",
		"nothing of note",
		"database migration log",
		"unrelated text",
		"final database record",
	}

	selected := Filter(chunks, "database contents", nil)

	wantIndices := []int{0, 2, 4}
	if len(selected) != len(wantIndices) {
		t.Fatalf("expected %d chunks, got %d", len(wantIndices), len(selected))
	}
	for i, s := range selected {
		if s.Index != wantIndices[i] {
			t.Errorf("selection %d: expected index %d, got %d", i, wantIndices[i], s.Index)
		}
		if s.Text != chunks[s.Index] {
			t.Errorf("selection %d: text does not match original chunk", i)
		}
	}
}

func TestFilter_NoKeywordsReturnsEverything(t *testing.T) {
	chunks := []string{"one", "two", "three"}
	selected := Filter(chunks, "what is this about", nil)

	if len(selected) != len(chunks) {
		t.Fatalf("expected all %d chunks, got %d", len(chunks), len(selected))
	}
	for i, s := range selected {
		if s.Index != i {
			t.Errorf("selection %d: expected index %d, got %d", i, i, s.Index)
		}
	}
}

func TestFilter_FallbackWhenUnderTenPercent(t *testing.T) {
	// 100 chunks, exactly one mentioning the keyword. 1% is under the
	// floor, so the filter must back off and return the full set.
	chunks := make([]string, 100)
	for i := range chunks {
		chunks[i] = fmt.Sprintf("filler content block %d", i)
	}
	chunks[42] = "the kubernetes cluster configuration"

	selected := Filter(chunks, "kubernetes setup", nil)

	if len(selected) != 100 {
		t.Fatalf("expected fallback to all 100 chunks, got %d", len(selected))
	}
}

func TestFilter_ExactlyTenPercentIsKept(t *testing.T) {
	chunks := make([]string, 10)
	for i := range chunks {
		chunks[i] = fmt.Sprintf("plain block %d", i)
	}
	chunks[3] = "contains the elephant keyword"

	selected := Filter(chunks, "elephant facts", nil)

	if len(selected) != 1 {
		t.Fatalf("expected 1 chunk at the 10%% boundary, got %d", len(selected))
	}
	if selected[0].Index != 3 {
		t.Errorf("expected index 3, got %d", selected[0].Index)
	}
}

func TestFilter_ExplicitKeywordsOverrideQuery(t *testing.T) {
	chunks := []string{
		"talks about zebras",
		"talks about lions",
	}

	// The query would match nothing; the explicit keyword drives selection.
	selected := Filter(chunks, "completely unrelated topic", []string{"lions"})

	if len(selected) != 1 || selected[0].Index != 1 {
		t.Fatalf("expected only index 1, got %v", selected)
	}
}

func TestFilter_CaseInsensitiveMatching(t *testing.T) {
	chunks := []string{"DATABASE INDEX REBUILD", "lowercase filler"}
	selected := Filter(chunks, "database performance", nil)

	if len(selected) != 1 || selected[0].Index != 0 {
		t.Fatalf("expected uppercase chunk to match, got %v", selected)
	}
}

func TestFilter_QuotesRegexMetacharacters(t *testing.T) {
	chunks := []string{"uses c++1z features", "plain go code"}

	selected := Filter(chunks, "", []string{"c++1z"})

	if len(selected) != 1 || selected[0].Index != 0 {
		t.Fatalf("expected metacharacter keyword to match literally, got %v", selected)
	}
}
