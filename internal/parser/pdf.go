package parser

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"sort"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// PDFSource reads PDFs with the Go library, grouping glyphs into rows and
// reading boldness from the font name. It falls back to pdftotext, without
// bold information, when the library yields nothing.
type PDFSource struct {
	FallbackPdftotext bool
}

func (s PDFSource) Lines(r io.Reader) ([]Line, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	lines, err := pdfLines(data)
	if (err != nil || len(lines) == 0) && s.FallbackPdftotext {
		text, ferr := extractPdftotext(data)
		if ferr == nil {
			return textLines(text), nil
		}
		if err == nil {
			err = ferr
		}
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}
	return lines, nil
}

func pdfLines(data []byte) (lines []Line, err error) {
	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	// The content interpreter panics on some malformed streams.
	defer func() {
		if r := recover(); r != nil {
			lines, err = nil, fmt.Errorf("pdf content: %v", r)
		}
	}()
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		lines = append(lines, pageLines(page.Content().Text)...)
	}
	return lines, nil
}

// pageLines groups positioned glyphs into rows, top to bottom, and renders
// each row left to right.
func pageLines(glyphs []pdflib.Text) []Line {
	rows := map[int64][]pdflib.Text{}
	for _, g := range glyphs {
		y := int64(math.Round(g.Y))
		rows[y] = append(rows[y], g)
	}
	ys := make([]int64, 0, len(rows))
	for y := range rows {
		ys = append(ys, y)
	}
	sort.Slice(ys, func(i, j int) bool { return ys[i] > ys[j] })

	var out []Line
	for _, y := range ys {
		row := rows[y]
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })
		var sb strings.Builder
		bold, seen := false, false
		for j, g := range row {
			if j > 0 {
				prev := row[j-1]
				if gap := g.X - (prev.X + prev.W); gap > 0.25*g.FontSize {
					sb.WriteString(" ")
				}
			}
			if !seen && strings.TrimSpace(g.S) != "" {
				bold, seen = isBoldFont(g.Font), true
			}
			sb.WriteString(g.S)
		}
		if t := cleanText(sb.String()); t != "" {
			out = append(out, Line{Text: t, Bold: bold})
		}
	}
	return out
}

func isBoldFont(name string) bool {
	n := strings.ToLower(name)
	for _, w := range []string{"bold", "black", "heavy", "semibold", "demi"} {
		if strings.Contains(n, w) {
			return true
		}
	}
	return false
}

func extractPdftotext(data []byte) (string, error) {
	tmp, err := os.CreateTemp("", "vbtree-pdf-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	out, err := exec.Command("pdftotext", "-layout", tmp.Name(), "-").Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}
