package convert

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func buildZip(t *testing.T, files map[string]string) *bytes.Reader {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create zip entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write zip entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return bytes.NewReader(buf.Bytes())
}

func TestZipConverter_ConcatenatesTextMembers(t *testing.T) {
	r := buildZip(t, map[string]string{
		"a.txt":             "alpha content",
		"sub/b.md":          "beta content",
		"bin/tool.exe":      "binary junk",
		".hidden/c.txt":     "hidden",
		"node_modules/x.js": "vendored",
	})

	c := &ZipConverter{}
	got, err := c.Convert(r, "bundle.zip")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"=== FILE: a.txt ===", "alpha content", "=== FILE: sub/b.md ===", "beta content"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}
	for _, skip := range []string{"tool.exe", "hidden", "vendored"} {
		if strings.Contains(got, skip) {
			t.Errorf("expected %q to be filtered out", skip)
		}
	}
}

func buildTarGz(t *testing.T, name, content string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	if err := tw.WriteHeader(&tar.Header{
		Name:     name,
		Mode:     0o644,
		Size:     int64(len(content)),
		Typeflag: tar.TypeReg,
	}); err != nil {
		t.Fatalf("write tar header: %v", err)
	}
	if _, err := tw.Write([]byte(content)); err != nil {
		t.Fatalf("write tar content: %v", err)
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close tar: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("close gzip: %v", err)
	}
	return buf.Bytes()
}

func TestTarConverter_ReadsGzippedMembers(t *testing.T) {
	data := buildTarGz(t, "notes/log.txt", "hello from tar")

	c := &TarConverter{Gzip: true}
	got, err := c.Convert(bytes.NewReader(data), "notes.tar.gz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "=== FILE: notes/log.txt ===") {
		t.Errorf("expected member header, got %q", got)
	}
	if !strings.Contains(got, "hello from tar") {
		t.Errorf("expected member content, got %q", got)
	}
}

func TestToText_BareGzipReadsAsTarball(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "dump.gz")
	if err := os.WriteFile(p, buildTarGz(t, "readme.txt", "inside bare gz"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	got, err := ToText(p)
	if err != nil {
		t.Fatalf("ToText: %v", err)
	}
	if !strings.Contains(got, "inside bare gz") {
		t.Errorf("expected extracted member content, got %q", got)
	}
}

func TestIncludeArchiveEntry(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"a.txt", true},
		{"docs/readme.md", true},
		{"../escape.txt", false},
		{"/abs.txt", false},
		{"node_modules/pkg/index.js", false},
		{".env", false},
		{"dir/photo.png", false},
	}
	for _, tt := range tests {
		if got := includeArchiveEntry(tt.name); got != tt.want {
			t.Errorf("includeArchiveEntry(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
