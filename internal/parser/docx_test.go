package parser

import (
	"bytes"
	"testing"

	"github.com/fumiama/go-docx"
)

func buildDocx(t *testing.T, build func(d *docx.Docx)) *bytes.Buffer {
	t.Helper()
	d := docx.New().WithDefaultTheme()
	build(d)
	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		t.Fatalf("write docx: %v", err)
	}
	return &buf
}

func TestDOCXSource_ParagraphsAndBold(t *testing.T) {
	buf := buildDocx(t, func(d *docx.Docx) {
		d.AddParagraph().AddText("Điều 1. Phạm vi điều chỉnh").Bold()
		p := d.AddParagraph()
		p.AddText("1. Nghị định này quy định")
		p.AddText(" chi tiết một số điều.")
		d.AddParagraph().AddText("a) dòng một\nb) dòng hai")
	})

	lines, err := DOCXSource{}.Lines(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Line{
		{Text: "Điều 1. Phạm vi điều chỉnh", Bold: true},
		{Text: "1. Nghị định này quy định chi tiết một số điều."},
		{Text: "a) dòng một"},
		{Text: "b) dòng hai"},
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d: %+v", len(want), len(lines), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: expected %+v, got %+v", i, want[i], lines[i])
		}
	}
}

func TestDOCXSource_TableRows(t *testing.T) {
	buf := buildDocx(t, func(d *docx.Docx) {
		tbl := d.AddTable(1, 2, 0, nil)
		tbl.TableRows[0].TableCells[0].AddParagraph().AddText("Nơi nhận:")
		tbl.TableRows[0].TableCells[1].AddParagraph().AddText("TM. CHÍNH PHỦ")
	})

	lines, err := DOCXSource{}.Lines(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 1 || lines[0].Text != "| Nơi nhận: | TM. CHÍNH PHỦ |" {
		t.Errorf("expected one table row line, got %+v", lines)
	}
}

func TestDOCXSource_RejectsGarbage(t *testing.T) {
	if _, err := (DOCXSource{}).Lines(bytes.NewBufferString("not a zip")); err == nil {
		t.Error("expected error for non-docx input")
	}
}
