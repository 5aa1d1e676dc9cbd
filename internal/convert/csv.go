package convert

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSVConverter renders rows as header-labeled lines so column meaning
// survives chunking.
type CSVConverter struct{}

func (c *CSVConverter) Convert(r io.Reader, filename string) (string, error) {
	reader := csv.NewReader(r)
	if strings.HasSuffix(strings.ToLower(filename), ".tsv") {
		reader.Comma = '\t'
	}
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return "", nil
	}

	// First row is headers.
	headers := records[0]

	var out strings.Builder
	out.WriteString("Headers: " + strings.Join(headers, ", ") + "\n")
	for _, row := range records[1:] {
		for j, cell := range row {
			if j > 0 {
				out.WriteString(", ")
			}
			if j < len(headers) {
				out.WriteString(headers[j] + ": " + cell)
			} else {
				out.WriteString(cell)
			}
		}
		out.WriteString("\n")
	}
	return out.String(), nil
}
