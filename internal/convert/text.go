package convert

import (
	"bytes"
	"io"
)

// TextConverter handles plain text files. Markdown and XML pass through
// here too, since the chunker works on their raw form.
type TextConverter struct{}

func (c *TextConverter) Convert(r io.Reader, filename string) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	b = bytes.TrimPrefix(b, []byte("\xef\xbb\xbf"))
	return string(b), nil
}
