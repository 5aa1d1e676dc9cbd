package dirproc

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dgallion1/rlmproc/internal/chunk"
	"github.com/dgallion1/rlmproc/internal/convert"
)

// DefaultMaxFileSize skips files larger than 1MB unless overridden.
const DefaultMaxFileSize = 1_000_000

// excludedDirs never get walked.
var excludedDirs = map[string]bool{
	".git": true, "node_modules": true, "__pycache__": true,
	"venv": true, ".venv": true, "dist": true, "build": true,
	".next": true, ".cache": true, ".tox": true, ".mypy_cache": true,
	".pytest_cache": true, ".eggs": true, ".svn": true, ".hg": true,
	".idea": true, ".vscode": true,
}

// excludedFilePatterns drop compiled artifacts, media and archives by
// name before any content inspection.
var excludedFilePatterns = []string{
	"*.pyc", "*.pyo", "*.so", "*.dll", "*.exe", "*.bin",
	"*.o", "*.obj", "*.class", "*.jar",
	"*.png", "*.jpg", "*.jpeg", "*.gif", "*.ico", "*.svg", "*.bmp", "*.webp",
	"*.woff", "*.woff2", "*.ttf", "*.eot",
	"*.mp3", "*.mp4", "*.avi", "*.mov", "*.wav", "*.flac",
	"*.zip", "*.tar", "*.gz", "*.rar", "*.7z",
	"*.lock", "*.map",
}

// priorityRank orders content groups in the manifest and the combined
// stream: docs lead, then source, tests, config and data.
var priorityRank = map[string]int{
	"readme": 0,
	"doc":    1,
	"source": 2,
	"test":   3,
	"config": 4,
	"data":   5,
	"other":  6,
}

// Entry is a discovered file with metadata.
type Entry struct {
	AbsPath  string
	RelPath  string
	Size     int64
	Type     string
	Priority string
	Content  string
	Loaded   bool
	LoadErr  string
}

// SkipCounts tallies files dropped during discovery.
type SkipCounts struct {
	Binary     int
	TooLarge   int
	Excluded   int
	Permission int
}

func (s SkipCounts) String() string {
	var parts []string
	if s.Binary > 0 {
		parts = append(parts, fmt.Sprintf("%d binary", s.Binary))
	}
	if s.TooLarge > 0 {
		parts = append(parts, fmt.Sprintf("%d too_large", s.TooLarge))
	}
	if s.Excluded > 0 {
		parts = append(parts, fmt.Sprintf("%d excluded", s.Excluded))
	}
	if s.Permission > 0 {
		parts = append(parts, fmt.Sprintf("%d permission", s.Permission))
	}
	return strings.Join(parts, ", ")
}

// Options controls discovery and processing.
type Options struct {
	Include     []string
	Exclude     []string
	PerFile     bool
	ChunkSize   int
	Fast        bool
	MaxFileSize int64
	NoRecurse   bool
}

func (o Options) withDefaults() Options {
	if o.ChunkSize <= 0 {
		o.ChunkSize = chunk.DefaultChunkSize
	}
	if o.MaxFileSize <= 0 {
		o.MaxFileSize = DefaultMaxFileSize
	}
	return o
}

// Discover walks dir and returns processable files sorted by priority
// group then path. Hidden files, excluded directories, binaries,
// empty and oversized files are dropped.
func Discover(dir string, opts Options) ([]*Entry, SkipCounts, error) {
	opts = opts.withDefaults()
	var skips SkipCounts

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, skips, err
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return nil, skips, err
	}
	if !fi.IsDir() {
		return nil, skips, fmt.Errorf("not a directory: %s", dir)
	}

	var entries []*Entry
	err = filepath.WalkDir(abs, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			skips.Permission++
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if p == abs {
				return nil
			}
			if strings.HasPrefix(d.Name(), ".") || excludedDirs[d.Name()] || opts.NoRecurse {
				return fs.SkipDir
			}
			return nil
		}

		name := d.Name()
		if strings.HasPrefix(name, ".") {
			return nil
		}
		rel, err := filepath.Rel(abs, p)
		if err != nil {
			return nil
		}

		lower := strings.ToLower(name)
		if matchAny(excludedFilePatterns, lower) {
			skips.Excluded++
			return nil
		}
		if len(opts.Include) > 0 && !matchAnyFold(opts.Include, lower) {
			return nil
		}
		if len(opts.Exclude) > 0 && matchAnyFold(opts.Exclude, lower) {
			skips.Excluded++
			return nil
		}

		info, err := d.Info()
		if err != nil {
			skips.Permission++
			return nil
		}
		if info.Size() > opts.MaxFileSize {
			skips.TooLarge++
			return nil
		}
		if info.Size() == 0 {
			return nil
		}

		ftype := convert.DetectType(p)
		if ftype == "binary" || ftype == "unknown" {
			skips.Binary++
			return nil
		}

		entries = append(entries, &Entry{
			AbsPath:  p,
			RelPath:  rel,
			Size:     info.Size(),
			Type:     ftype,
			Priority: classifyPriority(rel, ftype),
		})
		return nil
	})
	if err != nil {
		return nil, skips, err
	}

	sort.Slice(entries, func(i, j int) bool {
		pi, pj := priorityRank[entries[i].Priority], priorityRank[entries[j].Priority]
		if pi != pj {
			return pi < pj
		}
		return entries[i].RelPath < entries[j].RelPath
	})
	return entries, skips, nil
}

// classifyPriority assigns a file to an ordering group by its path,
// name and detected type.
func classifyPriority(relPath, fileType string) string {
	name := strings.ToLower(filepath.Base(relPath))
	ext := strings.ToLower(filepath.Ext(relPath))
	stem := strings.TrimSuffix(name, ext)
	parts := strings.ToLower(filepath.ToSlash(relPath))

	switch stem {
	case "readme", "changelog", "contributing", "license", "authors":
		return "readme"
	}

	if strings.Contains(parts, "/docs/") || strings.Contains(parts, "/doc/") ||
		ext == ".md" || ext == ".rst" || ext == ".txt" {
		if strings.HasPrefix(stem, "readme") {
			return "readme"
		}
		return "doc"
	}

	if strings.Contains(parts, "/test/") || strings.Contains(parts, "/tests/") ||
		strings.Contains(parts, "/spec/") || strings.Contains(parts, "/specs/") ||
		strings.Contains(parts, "__tests__") ||
		strings.HasPrefix(name, "test_") || strings.HasSuffix(name, "_test"+ext) ||
		strings.Contains(name, ".test.") || strings.Contains(name, ".spec.") {
		return "test"
	}

	if fileType == "code" {
		return "source"
	}

	switch name {
	case "package.json", "tsconfig.json", "pyproject.toml", "setup.py",
		"setup.cfg", "makefile", "dockerfile", "docker-compose.yml",
		"docker-compose.yaml", ".eslintrc", ".prettierrc", "jest.config.js",
		"webpack.config.js", "vite.config.js", "cargo.toml":
		return "config"
	}
	switch ext {
	case ".toml", ".cfg", ".ini", ".env":
		return "config"
	}

	switch fileType {
	case "csv", "json", "yaml", "xml":
		return "data"
	}
	return "other"
}

// LoadContents converts every entry to text, recording per-file errors
// instead of failing the batch. Returns total characters loaded.
func LoadContents(entries []*Entry, log *slog.Logger) int {
	total := 0
	for _, e := range entries {
		content, err := convert.ToText(e.AbsPath)
		if err != nil {
			e.LoadErr = err.Error()
			if log != nil {
				log.Warn("load failed", "file", e.RelPath, "error", err)
			}
			continue
		}
		e.Content = content
		e.Loaded = true
		total += len(content)
	}
	return total
}

func matchAny(patterns []string, name string) bool {
	for _, pat := range patterns {
		if ok, _ := path.Match(pat, name); ok {
			return true
		}
	}
	return false
}

func matchAnyFold(patterns []string, lowerName string) bool {
	for _, pat := range patterns {
		if ok, _ := path.Match(strings.ToLower(pat), lowerName); ok {
			return true
		}
	}
	return false
}
