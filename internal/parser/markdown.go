package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownSource reads Markdown. Headings and strong emphasis count as bold;
// list markers are restored so numbering survives the list syntax.
type MarkdownSource struct{}

func (MarkdownSource) Lines(r io.Reader) ([]Line, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read markdown: %w", err)
	}
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var (
		lines  []Line
		prefix string // list marker waiting for the item's first line
	)
	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.ListItem:
			prefix = listMarker(node)
		case *ast.Heading, *ast.Paragraph, *ast.TextBlock:
			_, heading := node.(*ast.Heading)
			for _, ln := range mdBlockLines(node, src, heading) {
				if prefix != "" {
					ln.Text = prefix + ln.Text
					prefix = ""
				}
				lines = append(lines, ln)
			}
			return ast.WalkSkipChildren, nil
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			segs := node.Lines()
			for i := 0; i < segs.Len(); i++ {
				seg := segs.At(i)
				if t := cleanText(string(seg.Value(src))); t != "" {
					lines = append(lines, Line{Text: t})
				}
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk markdown: %w", err)
	}
	return lines, nil
}

// listMarker rebuilds the marker of a list item: "3. " in an ordered list
// starting at 1, "- " in a bullet list.
func listMarker(item *ast.ListItem) string {
	list, ok := item.Parent().(*ast.List)
	if !ok {
		return ""
	}
	if !list.IsOrdered() {
		return string(list.Marker) + " "
	}
	idx := 0
	for c := list.FirstChild(); c != nil && c != ast.Node(item); c = c.NextSibling() {
		idx++
	}
	return fmt.Sprintf("%d%c ", list.Start+idx, list.Marker)
}

// mdBlockLines splits a leaf block into lines at soft and hard line breaks.
func mdBlockLines(block ast.Node, src []byte, heading bool) []Line {
	var (
		out  []Line
		sb   strings.Builder
		bold bool
		seen bool
	)
	flush := func() {
		if t := cleanText(sb.String()); t != "" {
			out = append(out, Line{Text: t, Bold: heading || bold})
		}
		sb.Reset()
		bold, seen = false, false
	}
	write := func(n ast.Node, s string) {
		if !seen && strings.TrimSpace(s) != "" {
			bold, seen = mdStrong(n, block), true
		}
		sb.WriteString(s)
	}

	var visit func(n ast.Node)
	visit = func(n ast.Node) {
		switch t := n.(type) {
		case *ast.Text:
			write(n, string(t.Segment.Value(src)))
			if t.SoftLineBreak() || t.HardLineBreak() {
				flush()
			}
			return
		case *ast.String:
			write(n, string(t.Value))
			return
		}
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			visit(c)
		}
	}
	visit(block)
	flush()
	return out
}

// mdStrong reports whether n sits inside strong emphasis within block.
func mdStrong(n, block ast.Node) bool {
	for p := n.Parent(); p != nil && p != block; p = p.Parent() {
		if e, ok := p.(*ast.Emphasis); ok && e.Level >= 2 {
			return true
		}
	}
	return false
}
