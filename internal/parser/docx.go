package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/fumiama/go-docx"
)

// DOCXSource reads Word documents. A paragraph is bold when its first visible
// run is bold or it carries a heading style; <w:br> splits lines.
type DOCXSource struct{}

func (DOCXSource) Lines(r io.Reader) ([]Line, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var lines []Line
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			lines = append(lines, docxParagraphLines(it)...)
		case *docx.Table:
			lines = append(lines, docxTableLines(it)...)
		}
	}
	return lines, nil
}

func docxParagraphLines(para *docx.Paragraph) []Line {
	heading := docxIsHeading(para)
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
	addRun := func(run *docx.Run) {
		runBold := run.RunProperties != nil && run.RunProperties.Bold != nil
		for _, rc := range run.Children {
			switch c := rc.(type) {
			case *docx.Text:
				if !seen && strings.TrimSpace(c.Text) != "" {
					bold, seen = runBold, true
				}
				sb.WriteString(c.Text)
			case *docx.Tab:
				sb.WriteString(" ")
			case *docx.BarterRabbet:
				flush()
			}
		}
	}
	for _, child := range para.Children {
		switch c := child.(type) {
		case *docx.Run:
			addRun(c)
		case *docx.Hyperlink:
			addRun(&c.Run)
		}
	}
	flush()
	return out
}

// docxTableLines renders rows like the HTML extractor: "| a | b |", or the
// bare text when only one cell has any.
func docxTableLines(tbl *docx.Table) []Line {
	var out []Line
	for _, row := range tbl.TableRows {
		var texts []string
		bold := false
		for _, cell := range row.TableCells {
			var parts []string
			for _, p := range cell.Paragraphs {
				for _, ln := range docxParagraphLines(p) {
					if len(texts) == 0 && len(parts) == 0 {
						bold = ln.Bold
					}
					parts = append(parts, ln.Text)
				}
			}
			if t := strings.Join(parts, " "); t != "" {
				texts = append(texts, t)
			}
		}
		switch len(texts) {
		case 0:
		case 1:
			out = append(out, Line{Text: texts[0], Bold: bold})
		default:
			out = append(out, Line{Text: "| " + strings.Join(texts, " | ") + " |", Bold: bold})
		}
	}
	return out
}

func docxIsHeading(para *docx.Paragraph) bool {
	if para.Properties == nil || para.Properties.Style == nil {
		return false
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	return strings.HasPrefix(style, "heading") || style == "title"
}
