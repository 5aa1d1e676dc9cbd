package dirproc

import (
	"strings"
	"testing"
)

func TestManifest_TreeFormat(t *testing.T) {
	entries := []*Entry{
		{RelPath: "readme.md", Size: 12, Type: "text", Loaded: true},
		{RelPath: "src/main.go", Size: 2048, Type: "code", Loaded: true},
		{RelPath: "data/broken.csv", Size: 5, Type: "csv", LoadErr: "conversion failed"},
	}

	m := Manifest("/tmp/proj", entries, 5000)

	if !strings.HasPrefix(m, "=== DIRECTORY MANIFEST ===\nproj/ (3 files, 2 dirs, 4.9 KB text content)\n") {
		t.Errorf("unexpected manifest header:\n%s", m)
	}
	if !strings.HasSuffix(m, "=== END MANIFEST ===") {
		t.Errorf("manifest should end with the closing marker")
	}
	if !strings.Contains(m, "  readme.md") {
		t.Errorf("top-level file should be indented one level:\n%s", m)
	}
	if !strings.Contains(m, "    main.go") {
		t.Errorf("nested file should be indented two levels:\n%s", m)
	}
	if !strings.Contains(m, "[text]") || !strings.Contains(m, "[code]") {
		t.Errorf("manifest rows should carry file types:\n%s", m)
	}
	if !strings.Contains(m, "[error]") {
		t.Errorf("a failed load should be marked [error]:\n%s", m)
	}
	if !strings.Contains(m, "12 B") || !strings.Contains(m, "2.0 KB") {
		t.Errorf("manifest rows should carry human sizes:\n%s", m)
	}
}

func TestManifest_TrailingSeparatorInDirName(t *testing.T) {
	m := Manifest("/tmp/proj/", []*Entry{{RelPath: "a.txt", Size: 1, Type: "text"}}, 1)
	if !strings.Contains(m, "proj/ (1 files, 0 dirs") {
		t.Errorf("trailing slash should not hide the directory name:\n%s", m)
	}
}

func TestBuildCombined_ManifestThenLoadedFiles(t *testing.T) {
	entries := []*Entry{
		{RelPath: "readme.md", Content: "hello readme", Loaded: true},
		{RelPath: "src/main.go", Content: "package main", Loaded: true},
		{RelPath: "data/broken.csv", LoadErr: "conversion failed"},
	}

	combined := BuildCombined(entries, "MANIFEST BLOCK")

	if !strings.HasPrefix(combined, "MANIFEST BLOCK\n") {
		t.Errorf("combined content should open with the manifest")
	}
	if !strings.Contains(combined, "=== FILE: readme.md ===\nhello readme") {
		t.Errorf("missing first file block:\n%s", combined)
	}
	if !strings.Contains(combined, "=== FILE: src/main.go ===\npackage main") {
		t.Errorf("missing second file block:\n%s", combined)
	}
	if strings.Contains(combined, "broken.csv") {
		t.Errorf("unloaded entries must not appear in the combined content")
	}
	if strings.Index(combined, "readme.md") > strings.Index(combined, "src/main.go") {
		t.Errorf("file blocks should keep discovery order")
	}
}
