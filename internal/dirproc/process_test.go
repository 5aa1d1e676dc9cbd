package dirproc

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/dgallion1/rlmproc/internal/oracle"
	"github.com/dgallion1/rlmproc/internal/rlm"
)

type stubOracle struct {
	mu    sync.Mutex
	calls []oracle.Request
	reply func(req oracle.Request) (string, error)
}

func (s *stubOracle) Query(_ context.Context, req oracle.Request) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	s.mu.Unlock()
	if s.reply != nil {
		return s.reply(req)
	}
	return "ok", nil
}

func (s *stubOracle) recorded() []oracle.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]oracle.Request(nil), s.calls...)
}

func isSynthesisPrompt(req oracle.Request) bool {
	return strings.Contains(req.Prompt, "Here are the relevant findings:")
}

func TestProcess_CombinedModeBuildsManifestAndFileBlocks(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.txt", "alpha facts")
	writeTree(t, root, "b.txt", "beta facts")

	stub := &stubOracle{reply: func(req oracle.Request) (string, error) {
		if isSynthesisPrompt(req) {
			return "combined answer", nil
		}
		return "found it", nil
	}}
	d := New(rlm.New(stub, nil), nil)

	out, err := d.Process(context.Background(), root, "what facts", Options{})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if out.Answer != "combined answer" {
		t.Errorf("answer = %q", out.Answer)
	}
	if out.FileCount != 2 {
		t.Errorf("file count = %d, want 2", out.FileCount)
	}
	if out.Files != nil {
		t.Errorf("combined mode should not produce per-file results")
	}

	calls := stub.recorded()
	if len(calls) != 2 {
		t.Fatalf("expected 1 extraction + 1 synthesis call, got %d", len(calls))
	}
	chunkPrompt := calls[0].Prompt
	for _, want := range []string{
		"=== DIRECTORY MANIFEST ===",
		"=== FILE: a.txt ===",
		"alpha facts",
		"beta facts",
	} {
		if !strings.Contains(chunkPrompt, want) {
			t.Errorf("chunk prompt missing %q", want)
		}
	}
}

func TestProcess_PerFileModeRecordsPerFileOutcomes(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.txt", "alpha facts")
	writeTree(t, root, "b.txt", "beta notes")

	stub := &stubOracle{reply: func(req oracle.Request) (string, error) {
		if isSynthesisPrompt(req) {
			return "final answer", nil
		}
		if strings.Contains(req.Prompt, "alpha facts") {
			return "alpha extract", nil
		}
		return rlm.NoInfoSentinel, nil
	}}
	d := New(rlm.New(stub, nil), nil)

	out, err := d.Process(context.Background(), root, "what facts", Options{PerFile: true})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if out.Answer != "final answer" {
		t.Errorf("answer = %q", out.Answer)
	}
	if len(out.Files) != 2 {
		t.Fatalf("expected 2 file results, got %d", len(out.Files))
	}
	if out.Files[0].File != "a.txt" || out.Files[0].Result != "alpha extract" || out.Files[0].Error != "" {
		t.Errorf("unexpected first file result: %+v", out.Files[0])
	}
	if out.Files[1].File != "b.txt" || out.Files[1].Result != "" || out.Files[1].Error != "No relevant info found" {
		t.Errorf("unexpected second file result: %+v", out.Files[1])
	}

	var synthesis string
	for _, c := range stub.recorded() {
		if isSynthesisPrompt(c) {
			synthesis = c.Prompt
		}
	}
	if synthesis == "" {
		t.Fatalf("no cross-file synthesis call recorded")
	}
	if !strings.Contains(synthesis, "[File: a.txt]\nalpha extract") {
		t.Errorf("synthesis prompt should label findings with their file:\n%s", synthesis)
	}
	if strings.Contains(synthesis, "b.txt") {
		t.Errorf("files without findings must not reach the synthesis prompt")
	}
}

func TestProcess_PerFileChunksLargeFiles(t *testing.T) {
	root := t.TempDir()
	sections := make([]string, 7)
	for i := range sections {
		sections[i] = fmt.Sprintf("section %d has a handful of words in it", i+1)
	}
	writeTree(t, root, "big.md", strings.Join(sections, "\n---\n"))

	stub := &stubOracle{reply: func(req oracle.Request) (string, error) {
		if isSynthesisPrompt(req) {
			return "merged", nil
		}
		return "piece", nil
	}}
	d := New(rlm.New(stub, nil), nil)

	out, err := d.Process(context.Background(), root, "q", Options{PerFile: true, ChunkSize: 300})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	// 7 separator chunks, one file-level synthesis, one cross-file synthesis.
	calls := stub.recorded()
	if len(calls) != 9 {
		t.Fatalf("expected 9 oracle calls, got %d", len(calls))
	}
	if !strings.Contains(calls[0].Prompt, "chunk 1 of 7") {
		t.Errorf("first chunk prompt should cover 7 chunks:\n%s", calls[0].Prompt)
	}
	if !strings.Contains(calls[0].Prompt, "File: big.md") {
		t.Errorf("chunk prompt should carry the file header")
	}
	if out.Files[0].Result != "merged" || out.Answer != "merged" {
		t.Errorf("result = %q, answer = %q, want merged", out.Files[0].Result, out.Answer)
	}
}

func TestProcess_EmptyDirectoryAnswersWithoutOracle(t *testing.T) {
	root := t.TempDir()

	stub := &stubOracle{}
	d := New(rlm.New(stub, nil), nil)

	out, err := d.Process(context.Background(), root, "q", Options{})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	want := fmt.Sprintf("No processable files found in %s.", root)
	if out.Answer != want {
		t.Errorf("answer = %q, want %q", out.Answer, want)
	}
	if len(stub.recorded()) != 0 {
		t.Errorf("empty directory must not reach the oracle")
	}
}

func TestProcess_IncludeMismatchNamesThePatterns(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "notes.md", "# notes")

	d := New(rlm.New(&stubOracle{}, nil), nil)
	out, err := d.Process(context.Background(), root, "q", Options{Include: []string{"*.go", "*.py"}})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if out.Answer != "No files matched the include patterns: *.go, *.py" {
		t.Errorf("answer = %q", out.Answer)
	}
}

func TestProcess_PerFileAllNoInfoUsesFixedAnswer(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.txt", "alpha")
	writeTree(t, root, "b.txt", "beta")

	stub := &stubOracle{reply: func(oracle.Request) (string, error) {
		return rlm.NoInfoSentinel, nil
	}}
	d := New(rlm.New(stub, nil), nil)

	out, err := d.Process(context.Background(), root, "q", Options{PerFile: true})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if out.Answer != NoFilesAnswer {
		t.Errorf("answer = %q, want %q", out.Answer, NoFilesAnswer)
	}
	if got := len(stub.recorded()); got != 2 {
		t.Errorf("expected 2 calls and no synthesis, got %d", got)
	}
	for _, fr := range out.Files {
		if fr.Error != "No relevant info found" {
			t.Errorf("file %s should record the no-info error, got %+v", fr.File, fr)
		}
	}
}
