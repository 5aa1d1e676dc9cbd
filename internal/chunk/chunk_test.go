package chunk

import (
	"strings"
	"testing"
)

func TestByChars_ContentFitsSingleChunk(t *testing.T) {
	content := strings.Repeat("x", 1000)
	chunks := ByChars(content, 1000, 100)

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != content {
		t.Errorf("expected chunk to equal content, got %d chars", len(chunks[0]))
	}
}

func TestByChars_OverlapWindows(t *testing.T) {
	// 200 chars, window 100, overlap 20 -> starts at 0, 80, 160.
	content := strings.Repeat("abcdefghij", 20)
	chunks := ByChars(content, 100, 20)

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	wantLens := []int{100, 100, 40}
	for i, c := range chunks {
		if len(c) != wantLens[i] {
			t.Errorf("chunk %d: expected %d chars, got %d", i, wantLens[i], len(c))
		}
	}
	// Each chunk after the first repeats the last 20 chars of its predecessor.
	for i := 1; i < len(chunks); i++ {
		prevTail := chunks[i-1][len(chunks[i-1])-20:]
		if !strings.HasPrefix(chunks[i], prevTail) {
			t.Errorf("chunk %d does not start with predecessor's tail", i)
		}
	}
}

func TestByChars_CountFormula(t *testing.T) {
	// ceil((L - o) / (chunkSize - o)) chunks for L > chunkSize.
	cases := []struct {
		length, size, overlap int
		want                  int
	}{
		{100000, 40000, 0, 3},
		{200, 100, 20, 3},
		{1001, 1000, 0, 2},
		{5000, 1000, 100, 6},
	}
	for _, tc := range cases {
		chunks := ByChars(strings.Repeat("z", tc.length), tc.size, tc.overlap)
		if len(chunks) != tc.want {
			t.Errorf("length %d size %d overlap %d: expected %d chunks, got %d",
				tc.length, tc.size, tc.overlap, tc.want, len(chunks))
		}
	}
}

func TestByChars_EmptyContentYieldsNoChunks(t *testing.T) {
	if chunks := ByChars("", 1000, 100); len(chunks) != 0 {
		t.Errorf("expected 0 chunks for empty content, got %d", len(chunks))
	}
}

func TestByChars_OverlapAtLeastChunkSizeStillTerminates(t *testing.T) {
	content := strings.Repeat("y", 350)
	chunks := ByChars(content, 100, 100)

	// Overlap is clamped to zero so windows advance by the full size.
	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(chunks))
	}
	if strings.Join(chunks, "") != content {
		t.Errorf("chunks do not reconstruct content")
	}
}

func TestByChars_DoesNotSplitRunes(t *testing.T) {
	content := strings.Repeat("héllo wörld ", 50)
	for _, c := range ByChars(content, 100, 10) {
		if !strings.Contains(content, c) {
			t.Fatalf("chunk is not a substring of content: %q", c)
		}
		for _, r := range c {
			if r == '�' {
				t.Fatalf("chunk contains a broken rune: %q", c)
			}
		}
	}
}

func TestByChars_WindowSmallerThanRuneStillAdvances(t *testing.T) {
	// Each rune is 3 bytes, wider than the window. Snapping the window
	// edge to a rune boundary must not stall the loop.
	chunks := ByChars("日本語", 2, 1)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d: %q", len(chunks), chunks)
	}
	if strings.Join(chunks, "") != "日本語" {
		t.Errorf("chunks do not reconstruct content: %q", chunks)
	}
}

func TestByLines_GroupsAndRejoins(t *testing.T) {
	lines := make([]string, 25)
	for i := range lines {
		lines[i] = strings.Repeat("a", i+1)
	}
	content := strings.Join(lines, "\n")

	chunks := ByLines(content, 10)

	// ceil(25 / 10) = 3 groups.
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if strings.Join(chunks, "\n") != content {
		t.Errorf("rejoined chunks do not reproduce the original line sequence")
	}
}

func TestByLines_EmptyContentYieldsOneEmptyChunk(t *testing.T) {
	chunks := ByLines("", 100)
	if len(chunks) != 1 {
		t.Fatalf("expected exactly 1 chunk for empty content, got %d", len(chunks))
	}
	if chunks[0] != "" {
		t.Errorf("expected the single chunk to be empty, got %q", chunks[0])
	}
}

func TestBySeparator_DropsBlankSegments(t *testing.T) {
	content := "first section\n---\n\n   \n---\nsecond section\n---\n"
	chunks := BySeparator(content, "\n---\n")

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %q", len(chunks), chunks)
	}
	for i, c := range chunks {
		if strings.TrimSpace(c) == "" {
			t.Errorf("chunk %d is blank", i)
		}
	}
	if chunks[0] != "first section" || chunks[1] != "second section" {
		t.Errorf("unexpected chunks: %q", chunks)
	}
}

func TestByRegex_NoMatchYieldsWholeContent(t *testing.T) {
	content := "no boundaries here at all"
	chunks, err := ByRegex(content, `\n==SPLIT==\n`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 || chunks[0] != content {
		t.Errorf("expected single whole-content chunk, got %q", chunks)
	}
}

func TestByRegex_InvalidPattern(t *testing.T) {
	if _, err := ByRegex("content", `([`); err == nil {
		t.Fatal("expected error for invalid pattern")
	}
}

func TestByHeaders_SplitsBeforeHeadings(t *testing.T) {
	content := "intro text\n# Alpha\nalpha body\n## Beta\nbeta body\n### Gamma\ngamma body"
	chunks := ByHeaders(content)

	// Level-3 headings do not open a new section.
	want := []string{
		"intro text",
		"# Alpha\nalpha body",
		"## Beta\nbeta body\n### Gamma\ngamma body",
	}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d: %q", len(want), len(chunks), chunks)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunk %d: expected %q, got %q", i, want[i], chunks[i])
		}
	}
}

func TestByHeaders_NoHeadingsYieldsSingleChunk(t *testing.T) {
	chunks := ByHeaders("just a paragraph\nand another line")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
}

func TestCountHeadings_IgnoresFencedCodeBlocks(t *testing.T) {
	var b strings.Builder
	b.WriteString("# Real One\ntext\n\n```\n")
	for i := 0; i < 12; i++ {
		b.WriteString("# not a heading\n")
	}
	b.WriteString("```\n\n## Real Two\nmore text\n")

	if got := CountHeadings(b.String()); got != 2 {
		t.Errorf("expected 2 headings, got %d", got)
	}
}

func TestDetectStrategy_DocumentSeparators(t *testing.T) {
	sections := make([]string, 8)
	for i := range sections {
		sections[i] = strings.Repeat("section text ", 10)
	}
	content := strings.Join(sections, "\n---\n")

	if got := DetectStrategy(content, DefaultChunkSize); got != StrategyDocumentSeparator {
		t.Errorf("expected %s, got %s", StrategyDocumentSeparator, got)
	}
}

func TestDetectStrategy_MarkdownHeaders(t *testing.T) {
	// 15 short sections, each under a level-2 header.
	var b strings.Builder
	for i := 0; i < 15; i++ {
		b.WriteString("## Section ")
		b.WriteByte(byte('A' + i))
		b.WriteString("\nshort section body\n\n")
	}
	content := b.String()

	if got := DetectStrategy(content, DefaultChunkSize); got != StrategyMarkdownHeaders {
		t.Errorf("expected %s, got %s", StrategyMarkdownHeaders, got)
	}

	chunks, strategy := Auto(content, DefaultChunkSize)
	if strategy != StrategyMarkdownHeaders {
		t.Fatalf("expected auto strategy %s, got %s", StrategyMarkdownHeaders, strategy)
	}
	if len(chunks) != 15 {
		t.Errorf("expected 15 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if !strings.HasPrefix(c, "## Section") {
			t.Errorf("chunk %d does not start with its header: %q", i, c)
		}
	}
}

func TestDetectStrategy_LineOrientedData(t *testing.T) {
	lines := make([]string, 150)
	for i := range lines {
		lines[i] = "id,name,value,flag"
	}
	content := strings.Join(lines, "\n")

	if got := DetectStrategy(content, DefaultChunkSize); got != StrategyLineCount {
		t.Errorf("expected %s, got %s", StrategyLineCount, got)
	}
}

func TestDetectStrategy_CharacterCountFallback(t *testing.T) {
	content := strings.Repeat("a", 100000)
	if got := DetectStrategy(content, 40000); got != StrategyCharacterCount {
		t.Errorf("expected %s, got %s", StrategyCharacterCount, got)
	}

	// With zero overlap the windows are exact: 40000 + 40000 + 20000.
	chunks := ByChars(content, 40000, 0)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	wantLens := []int{40000, 40000, 20000}
	for i, c := range chunks {
		if len(c) != wantLens[i] {
			t.Errorf("chunk %d: expected %d chars, got %d", i, wantLens[i], len(c))
		}
	}
}

func TestAuto_SeparatedDocumentSplitsOnRules(t *testing.T) {
	sections := make([]string, 8)
	for i := range sections {
		sections[i] = strings.Repeat("body text ", 20)
	}
	content := strings.Join(sections, "\n---\n")

	chunks, strategy := Auto(content, DefaultChunkSize)
	if strategy != StrategyDocumentSeparator {
		t.Fatalf("expected strategy %s, got %s", StrategyDocumentSeparator, strategy)
	}
	if len(chunks) != 8 {
		t.Errorf("expected 8 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if strings.TrimSpace(c) == "" {
			t.Errorf("chunk %d is blank", i)
		}
	}
}

func TestAuto_PlainTextUsesCharacterWindows(t *testing.T) {
	content := strings.Repeat("plain prose without structure ", 2000)
	chunks, strategy := Auto(content, 10000)

	if strategy != StrategyCharacterCount {
		t.Fatalf("expected strategy %s, got %s", StrategyCharacterCount, strategy)
	}
	if len(chunks) < 2 {
		t.Errorf("expected multiple chunks, got %d", len(chunks))
	}
}
