package convert

import (
	"strings"
	"testing"
)

func TestHTMLConverter_HeadingsBecomeMarkdownLines(t *testing.T) {
	input := `<html><head><title>Report</title></head><body>
<h1>Main</h1>
<p>Body paragraph.</p>
<h2>Detail</h2>
<p>Detail paragraph.</p>
<script>junk()</script>
</body></html>`

	c := &HTMLConverter{}
	got, err := c.Convert(strings.NewReader(input), "page.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(got, "# Report") {
		t.Errorf("expected the document title first, got %q", got)
	}
	for _, want := range []string{"# Main", "## Detail", "Body paragraph.", "Detail paragraph."} {
		if !strings.Contains(got, want) {
			t.Errorf("expected output to contain %q, got %q", want, got)
		}
	}
	if strings.Contains(got, "junk") {
		t.Errorf("script content should be dropped, got %q", got)
	}
}

func TestHTMLConverter_SkipsChromeElements(t *testing.T) {
	input := `<html><body>
<nav>site nav</nav>
<p>real content</p>
<footer>copyright row</footer>
</body></html>`

	c := &HTMLConverter{}
	got, err := c.Convert(strings.NewReader(input), "page.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "real content") {
		t.Errorf("expected body paragraph, got %q", got)
	}
	if strings.Contains(got, "site nav") || strings.Contains(got, "copyright row") {
		t.Errorf("nav and footer should be dropped, got %q", got)
	}
}

func TestHTMLConverter_ListItemsOnOwnLines(t *testing.T) {
	input := `<html><body><ul><li>first</li><li>second</li></ul></body></html>`
	c := &HTMLConverter{}
	got, err := c.Convert(strings.NewReader(input), "list.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "first") || !strings.Contains(got, "second") {
		t.Errorf("expected both list items, got %q", got)
	}
	if strings.Contains(got, "firstsecond") {
		t.Errorf("list items should not run together, got %q", got)
	}
}
