package doctree

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestKind_LevelsAndNames(t *testing.T) {
	want := map[Kind]struct {
		level int
		name  string
	}{
		Document: {0, "document"},
		Part:     {1, "part"},
		Chapter:  {2, "chapter"},
		Section:  {3, "section"},
		Article:  {4, "article"},
		Item:     {4, "item"},
		Clause:   {5, "clause"},
		Subitem:  {5, "subitem"},
		Point:    {6, "point"},
	}
	for _, k := range Kinds {
		w := want[k]
		if k.Level() != w.level {
			t.Errorf("%s: expected level %d, got %d", k, w.level, k.Level())
		}
		if k.String() != w.name {
			t.Errorf("expected name %q, got %q", w.name, k.String())
		}
		parsed, err := ParseKind(w.name)
		if err != nil || parsed != k {
			t.Errorf("ParseKind(%q) = %v, %v", w.name, parsed, err)
		}
	}
	if _, err := ParseKind("paragraph"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestNode_MarshalShape(t *testing.T) {
	root := &Node{
		Kind:  Document,
		Title: "Luật Quản lý thuế",
		Children: []*Node{
			{
				Kind:     Article,
				Title:    "Điều 1. Phạm vi điều chỉnh",
				AnchorID: "dieu_1",
				Content:  []string{"Luật này quy định", "việc quản lý thuế."},
			},
		},
	}
	b, err := json.Marshal(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"type":"document","title":"Luật Quản lý thuế","children":[{"type":"article","title":"Điều 1. Phạm vi điều chỉnh","html_id":"dieu_1","content":"Luật này quy định\nviệc quản lý thuế."}]}`
	if string(b) != want {
		t.Errorf("expected\n%s\ngot\n%s", want, b)
	}
}

func TestNode_MarshalOmitsEmptyFields(t *testing.T) {
	b, err := json.Marshal(&Node{Kind: Chapter, Title: "Chương I"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := string(b)
	for _, field := range []string{"content", "children", "html_id"} {
		if strings.Contains(s, field) {
			t.Errorf("expected %q to be omitted, got %s", field, s)
		}
	}
}

func TestResult_EmptyMarshalsLists(t *testing.T) {
	b, err := json.Marshal(NewResult("T"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"structure":{"type":"document","title":"T"},"metadata":{"recipients":[],"signers":[]},"attachments":[]}`
	if string(b) != want {
		t.Errorf("expected %s, got %s", want, b)
	}
}

func TestResult_UnmarshalRestoresTree(t *testing.T) {
	in := `{"structure":{"type":"document","title":"T","children":[{"type":"clause","title":"1","content":"a\nb"}]},"metadata":{"recipients":["Nơi nhận:"],"signers":[]},"attachments":[{"title":"Phụ lục I","content":"x"}]}`
	var r Result
	if err := json.Unmarshal([]byte(in), &r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Root == nil || len(r.Root.Children) != 1 {
		t.Fatalf("expected one child, got %+v", r.Root)
	}
	c := r.Root.Children[0]
	if c.Kind != Clause || len(c.Content) != 2 {
		t.Errorf("expected clause with 2 content lines, got %s %q", c.Kind, c.Content)
	}
	if len(r.Metadata.Recipients) != 1 || len(r.Attachments) != 1 {
		t.Errorf("expected side channels restored, got %+v %+v", r.Metadata, r.Attachments)
	}
}

func TestCountByKindAndCollect(t *testing.T) {
	b := NewBuilder("Doc")
	b.Open(Candidate{Kind: Article, Title: "Điều 1"})
	b.Open(Candidate{Kind: Clause, Title: "1"})
	b.Open(Candidate{Kind: Clause, Title: "2"})
	b.Open(Candidate{Kind: Article, Title: "Điều 2"})
	root := b.Finish()

	counts := CountByKind(root)
	if counts[Article] != 2 || counts[Clause] != 2 || counts[Document] != 0 {
		t.Errorf("unexpected counts: %v", counts)
	}
	arts := Collect(root, Article)
	if len(arts) != 2 || arts[1].Title != "Điều 2" {
		t.Errorf("expected 2 articles in order, got %+v", arts)
	}
}

func TestFullText(t *testing.T) {
	n := &Node{
		Kind:    Article,
		Title:   "Điều 1",
		Content: []string{"intro"},
		Children: []*Node{
			{Kind: Clause, Title: "1", Content: []string{"first"}},
			{Kind: Clause, Title: "2", Children: []*Node{{Kind: Point, Title: "a)", Content: []string{"deep"}}}},
		},
	}
	want := "intro\n1\nfirst\n2\na)\ndeep"
	if got := FullText(n); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestCheckLevels_DetectsViolation(t *testing.T) {
	bad := &Node{Kind: Document, Children: []*Node{{Kind: Clause, Children: []*Node{{Kind: Article}}}}}
	if err := CheckLevels(bad); err == nil {
		t.Error("expected level violation to be reported")
	}
}
