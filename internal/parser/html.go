package parser

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// HTMLSource extracts lines from legal-document HTML pages.
type HTMLSource struct{}

func (HTMLSource) Lines(r io.Reader) ([]Line, error) {
	return ExtractLinesReader(r)
}

// ExtractLines turns an HTML string into lines. Malformed markup is parsed
// leniently and empty input yields no lines.
func ExtractLines(htmlContent string) []Line {
	lines, err := ExtractLinesReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil
	}
	return lines
}

// ExtractLinesReader is ExtractLines over a reader. It fails only when the
// reader does.
func ExtractLinesReader(r io.Reader) ([]Line, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("read html: %w", err)
	}
	container := contentContainer(doc)
	container.Find("script, style, iframe, noscript").Remove()
	if len(container.Nodes) == 0 {
		return nil, nil
	}

	x := &lineExtractor{root: container.Nodes[0]}
	x.walkMixed(x.root)
	return x.lines, nil
}

// contentContainer picks the element holding the document text, falling back
// from the CMS content divs to the body and finally the whole document.
func contentContainer(doc *goquery.Document) *goquery.Selection {
	for _, sel := range []string{"div.content1", "div#contentBody", "body"} {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			return s
		}
	}
	return doc.Selection
}

var blockTags = map[string]bool{
	"p": true, "div": true, "li": true, "td": true, "th": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true, "dt": true, "dd": true, "caption": true,
	"section": true, "article": true, "center": true,
}

// Elements that only group blocks and never emit text of their own.
var groupTags = map[string]bool{
	"table": true, "thead": true, "tbody": true, "tfoot": true, "tr": true,
	"ul": true, "ol": true, "dl": true,
}

var heavyWeight = regexp.MustCompile(`(?i)font-weight\s*:\s*(?:bold|bolder|[6-9]00)\b`)

type lineExtractor struct {
	root          *html.Node
	lines         []Line
	pendingAnchor string
}

// piece is a text run together with the formatting of its position.
type piece struct {
	text   string
	bold   bool
	anchor string
	br     bool
}

func isBlock(n *html.Node) bool {
	return n.Type == html.ElementNode && (blockTags[n.Data] || groupTags[n.Data])
}

func hasBlockDescendant(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isBlock(c) || hasBlockDescendant(c) {
			return true
		}
	}
	return false
}

// walkMixed visits a node whose children may mix blocks and inline runs.
// Each inline run between blocks becomes its own line. Inline wrappers around
// blocks (form, span, font, a) are walked through, not flattened.
func (x *lineExtractor) walkMixed(n *html.Node) {
	var run []*html.Node
	flush := func() {
		if len(run) > 0 {
			x.emitInline(run)
			run = nil
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !isBlock(c) {
			if c.Type == html.ElementNode && hasBlockDescendant(c) {
				flush()
				if name := structuralAnchor(c); c.Data == "a" && name != "" {
					x.pendingAnchor = name
				}
				x.walkMixed(c)
				continue
			}
			run = append(run, c)
			continue
		}
		flush()
		x.walkBlock(c)
	}
	flush()
}

func (x *lineExtractor) walkBlock(n *html.Node) {
	switch {
	case n.Data == "tr":
		x.walkRow(n)
	case !groupTags[n.Data] && !hasBlockDescendant(n):
		x.emitInline(children(n))
	default:
		x.walkMixed(n)
	}
}

// walkRow renders a table row of plain cells as "| a | b |". Rows whose cells
// hold nested blocks are walked cell by cell instead.
func (x *lineExtractor) walkRow(tr *html.Node) {
	var cells []*html.Node
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
			if hasBlockDescendant(c) {
				x.walkMixed(tr)
				return
			}
			cells = append(cells, c)
		}
	}

	var texts []string
	var first piece
	anchor := ""
	for _, cell := range cells {
		pieces := x.collect(children(cell))
		var sb strings.Builder
		for _, p := range pieces {
			if p.br {
				sb.WriteString(" ")
				continue
			}
			sb.WriteString(p.text)
			if anchor == "" {
				anchor = p.anchor
			}
		}
		t := cleanText(sb.String())
		if t == "" {
			continue
		}
		if len(texts) == 0 {
			first = leading(pieces)
		}
		texts = append(texts, t)
	}

	switch len(texts) {
	case 0:
		if anchor != "" {
			x.pendingAnchor = anchor
		}
	case 1:
		x.emit(Line{Text: texts[0], Bold: first.bold, AnchorID: anchor})
	default:
		x.emit(Line{Text: "| " + strings.Join(texts, " | ") + " |", Bold: first.bold, AnchorID: anchor})
	}
}

// emitInline turns a run of inline nodes into one line per <br> segment.
func (x *lineExtractor) emitInline(nodes []*html.Node) {
	var seg []piece
	flush := func() {
		x.emitSegment(seg)
		seg = nil
	}
	for _, p := range x.collect(nodes) {
		if p.br {
			flush()
			continue
		}
		seg = append(seg, p)
	}
	flush()
}

func (x *lineExtractor) emitSegment(seg []piece) {
	var sb strings.Builder
	anchor := ""
	for _, p := range seg {
		sb.WriteString(p.text)
		if anchor == "" {
			anchor = p.anchor
		}
	}
	text := cleanText(sb.String())
	if text == "" {
		if anchor != "" {
			x.pendingAnchor = anchor
		}
		return
	}
	x.emit(Line{Text: text, Bold: leading(seg).bold, AnchorID: anchor})
}

func (x *lineExtractor) emit(ln Line) {
	if ln.AnchorID == "" {
		ln.AnchorID = x.pendingAnchor
	}
	x.pendingAnchor = ""
	x.lines = append(x.lines, ln)
}

// collect flattens inline nodes into text pieces in document order.
func (x *lineExtractor) collect(nodes []*html.Node) []piece {
	var out []piece
	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			out = append(out, piece{text: n.Data, bold: x.bold(n)})
			return
		case html.ElementNode:
			switch n.Data {
			case "br":
				out = append(out, piece{br: true})
				return
			case "a":
				if name := structuralAnchor(n); name != "" {
					out = append(out, piece{anchor: name})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	for _, n := range nodes {
		visit(n)
	}
	return out
}

// bold reports whether a text node renders bold: it sits inside b, strong,
// h3-h5 or an element with a heavy inline font weight, up to the container.
func (x *lineExtractor) bold(n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			switch p.Data {
			case "b", "strong", "h3", "h4", "h5":
				return true
			}
			if heavyWeight.MatchString(attr(p, "style")) {
				return true
			}
		}
		if p == x.root {
			break
		}
	}
	return false
}

// leading returns the first piece carrying visible text.
func leading(seg []piece) piece {
	for _, p := range seg {
		if cleanText(p.text) != "" {
			return p
		}
	}
	return piece{}
}

// structuralAnchor returns an anchor's name unless it labels a title.
func structuralAnchor(n *html.Node) string {
	name := strings.TrimSpace(attr(n, "name"))
	if name == "" || strings.HasSuffix(name, "_name") {
		return ""
	}
	return name
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}
