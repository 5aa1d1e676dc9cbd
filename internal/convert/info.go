package convert

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileInfo describes a file before conversion.
type FileInfo struct {
	Path      string `json:"path"`
	Name      string `json:"name"`
	Size      int64  `json:"size"`
	SizeHuman string `json:"size_human"`
	Kind      string `json:"kind"`
}

// Info stats path and reports its size and detected kind.
func Info(path string) (*FileInfo, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	return &FileInfo{
		Path:      path,
		Name:      filepath.Base(path),
		Size:      fi.Size(),
		SizeHuman: FormatSize(fi.Size()),
		Kind:      DetectType(path),
	}, nil
}

// FormatSize renders a byte count in binary units with one decimal.
func FormatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGT"[exp])
}
