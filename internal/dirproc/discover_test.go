package dirproc

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTree(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", rel, err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func TestDiscover_SkipsExcludedAndHidden(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "readme.md", "# project")
	writeTree(t, root, "src/main.go", "package main")
	writeTree(t, root, "node_modules/x.js", "vendored")
	writeTree(t, root, ".git/config", "gitstuff")
	writeTree(t, root, ".secret.txt", "hidden")
	writeTree(t, root, "logo.png", "imagedata")
	writeTree(t, root, "big.log", string(make([]byte, 200)))
	writeTree(t, root, "empty.txt", "")

	entries, skips, err := Discover(root, Options{MaxFileSize: 100})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	if len(entries) != 2 {
		var got []string
		for _, e := range entries {
			got = append(got, e.RelPath)
		}
		t.Fatalf("expected 2 entries, got %v", got)
	}
	if entries[0].RelPath != "readme.md" || entries[1].RelPath != filepath.Join("src", "main.go") {
		t.Errorf("unexpected entries: %s, %s", entries[0].RelPath, entries[1].RelPath)
	}
	if skips.Excluded != 1 {
		t.Errorf("excluded count = %d, want 1 (the png)", skips.Excluded)
	}
	if skips.TooLarge != 1 {
		t.Errorf("too-large count = %d, want 1", skips.TooLarge)
	}
}

func TestDiscover_PriorityOrdering(t *testing.T) {
	root := t.TempDir()
	for rel, content := range map[string]string{
		"zz.md":       "docs",
		"readme.md":   "# readme",
		"main.go":     "package main",
		"util_test.go": "package main",
		"config.toml": "key = 1",
		"data.csv":    "a,b\n1,2",
		"notes.xyz":   "plain words",
	} {
		writeTree(t, root, rel, content)
	}

	entries, _, err := Discover(root, Options{})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	want := []string{"readme.md", "zz.md", "main.go", "util_test.go", "config.toml", "data.csv", "notes.xyz"}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for i, w := range want {
		if entries[i].RelPath != w {
			t.Errorf("position %d: got %s, want %s", i, entries[i].RelPath, w)
		}
	}
}

func TestDiscover_IncludeExcludePatterns(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "main.go", "package main")
	writeTree(t, root, "main_test.go", "package main")
	writeTree(t, root, "notes.md", "# notes")

	entries, skips, err := Discover(root, Options{
		Include: []string{"*.go"},
		Exclude: []string{"*_test.go"},
	})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(entries) != 1 || entries[0].RelPath != "main.go" {
		t.Fatalf("expected only main.go, got %d entries", len(entries))
	}
	if skips.Excluded != 1 {
		t.Errorf("excluded count = %d, want 1 (the test file)", skips.Excluded)
	}
}

func TestDiscover_NoRecurse(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "top.txt", "top level")
	writeTree(t, root, "sub/nested.txt", "nested")

	entries, _, err := Discover(root, Options{NoRecurse: true})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(entries) != 1 || entries[0].RelPath != "top.txt" {
		t.Fatalf("expected only the top-level file, got %d entries", len(entries))
	}
}

func TestDiscover_RejectsNonDirectory(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "file.txt", "content")
	if _, _, err := Discover(filepath.Join(root, "file.txt"), Options{}); err == nil {
		t.Fatalf("expected an error for a file path")
	}
}

func TestClassifyPriority(t *testing.T) {
	tests := []struct {
		rel      string
		fileType string
		want     string
	}{
		{"README.md", "text", "readme"},
		{"CHANGELOG", "text", "readme"},
		{"guide/readme_first.md", "text", "readme"},
		{"notes.txt", "text", "doc"},
		{"src/docs/api.html", "html", "doc"},
		{"test_utils.py", "code", "test"},
		{"app.spec.js", "code", "test"},
		{"pkg/helper_test.go", "code", "test"},
		{"main.go", "code", "source"},
		{"package.json", "json", "config"},
		{"settings.ini", "text", "config"},
		{"rows.csv", "csv", "data"},
		{"feed.xml", "xml", "data"},
		{"misc.foo", "text", "other"},
	}
	for _, tt := range tests {
		if got := classifyPriority(tt.rel, tt.fileType); got != tt.want {
			t.Errorf("classifyPriority(%q, %q) = %q, want %q", tt.rel, tt.fileType, got, tt.want)
		}
	}
}

func TestLoadContents_RecordsPerFileErrors(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "ok.txt", "fine")

	entries := []*Entry{
		{AbsPath: filepath.Join(root, "ok.txt"), RelPath: "ok.txt"},
		{AbsPath: filepath.Join(root, "gone.txt"), RelPath: "gone.txt"},
	}
	total := LoadContents(entries, nil)
	if total != 4 {
		t.Errorf("total chars = %d, want 4", total)
	}
	if !entries[0].Loaded || entries[0].Content != "fine" {
		t.Errorf("first entry should load")
	}
	if entries[1].Loaded || entries[1].LoadErr == "" {
		t.Errorf("missing file should record a load error")
	}
}
