package convert

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
)

// JSONConverter pretty-prints a JSON document so nested structure
// survives as indented, line-oriented text. Invalid JSON falls back to
// the raw bytes.
type JSONConverter struct{}

func (c *JSONConverter) Convert(r io.Reader, filename string) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return string(b), nil
	}
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return string(b), nil
	}
	return string(pretty), nil
}

// JSONLConverter renders JSON Lines as separator-delimited blocks, one
// pretty-printed record each, so the document separator strategy splits
// on record boundaries.
type JSONLConverter struct{}

func (c *JSONLConverter) Convert(r io.Reader, filename string) (string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var blocks []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var v any
		if err := json.Unmarshal([]byte(line), &v); err != nil {
			blocks = append(blocks, line)
			continue
		}
		pretty, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			blocks = append(blocks, line)
			continue
		}
		blocks = append(blocks, string(pretty))
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return strings.Join(blocks, "\n---\n"), nil
}
