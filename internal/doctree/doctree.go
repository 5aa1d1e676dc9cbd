// Package doctree arranges the headings of a markdown document into a
// tree, giving structural reports an outline of the content.
package doctree

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Node is one heading section. The root node has no title and holds the
// top-level sections as children.
type Node struct {
	Title    string
	Level    int // 1-6, 0 for the root
	Line     int // 1-based source line of the heading
	Children []*Node
}

// Outline parses markdown content and nests its headings by level.
// Levels may skip (an h3 directly under an h1); each heading attaches
// to the nearest shallower heading before it. Headings inside lists or
// quotes are ignored, matching how chunking treats structure.
func Outline(content string) *Node {
	src := []byte(content)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	root := &Node{}
	stack := []*Node{root}
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok {
			continue
		}
		node := &Node{
			Title: headingTitle(src, h),
			Level: h.Level,
			Line:  headingLine(src, h),
		}
		for len(stack) > 1 && stack[len(stack)-1].Level >= h.Level {
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1]
		parent.Children = append(parent.Children, node)
		stack = append(stack, node)
	}
	return root
}

// Count returns the number of headings under n, excluding n itself.
func (n *Node) Count() int {
	total := len(n.Children)
	for _, c := range n.Children {
		total += c.Count()
	}
	return total
}

// Render formats the outline as an indented list with source line
// numbers, at most max lines (0 means no cap). Deeper sections indent
// under their parents regardless of absolute heading level.
func (n *Node) Render(max int) string {
	var b strings.Builder
	count := 0
	var walk func(node *Node, depth int) bool
	walk = func(node *Node, depth int) bool {
		for _, c := range node.Children {
			if max > 0 && count >= max {
				return false
			}
			fmt.Fprintf(&b, "%4d | %s%s\n", c.Line, strings.Repeat("  ", depth), c.Title)
			count++
			if !walk(c, depth+1) {
				return false
			}
		}
		return true
	}
	walk(n, 0)
	return b.String()
}

// headingTitle joins the heading's text lines as written, keeping any
// inline markup.
func headingTitle(src []byte, h *ast.Heading) string {
	var b strings.Builder
	for i := 0; i < h.Lines().Len(); i++ {
		seg := h.Lines().At(i)
		b.Write(seg.Value(src))
	}
	return strings.TrimSpace(b.String())
}

func headingLine(src []byte, h *ast.Heading) int {
	if h.Lines().Len() == 0 {
		return 0
	}
	seg := h.Lines().At(0)
	return bytes.Count(src[:seg.Start], []byte("\n")) + 1
}
