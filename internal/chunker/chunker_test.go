package chunker

import (
	"strings"
	"testing"

	"github.com/dgallion1/vbtree/internal/doctree"
)

func sampleResult() *doctree.Result {
	res := doctree.NewResult("Luật Quản lý thuế")
	res.Root.Content = []string{"Căn cứ Hiến pháp nước Cộng hòa xã hội chủ nghĩa Việt Nam;"}
	res.Root.Children = []*doctree.Node{
		{
			Kind:  doctree.Chapter,
			Title: "Chương I. QUY ĐỊNH CHUNG",
			Children: []*doctree.Node{
				{
					Kind:    doctree.Article,
					Title:   "Điều 1. Phạm vi điều chỉnh",
					Content: []string{"Luật này quy định việc quản lý các loại thuế."},
					Children: []*doctree.Node{
						{
							Kind:    doctree.Clause,
							Title:   "1.",
							Content: []string{"Thuế thu nhập."},
							Children: []*doctree.Node{
								{Kind: doctree.Point, Title: "a)", Content: []string{"cá nhân;"}},
							},
						},
					},
				},
				{
					Kind:     doctree.Article,
					Title:    "Điều 2. Đối tượng áp dụng",
					Content:  []string{"Người nộp thuế."},
					AnchorID: "dieu_2",
				},
			},
		},
	}
	return res
}

func TestChunkResult_ArticleChunks(t *testing.T) {
	chunks := ChunkResult(sampleResult(), DefaultConfig())

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d: %+v", len(chunks), chunks)
	}

	if chunks[0].Kind != doctree.Document || chunks[0].Breadcrumb != nil {
		t.Errorf("expected preamble chunk with no breadcrumb, got %+v", chunks[0])
	}

	wantText := "Điều 1. Phạm vi điều chỉnh\nLuật này quy định việc quản lý các loại thuế.\n1.\nThuế thu nhập.\na)\ncá nhân;"
	if chunks[1].Text != wantText {
		t.Errorf("expected article text %q, got %q", wantText, chunks[1].Text)
	}
	if chunks[1].Kind != doctree.Article {
		t.Errorf("expected article chunk, got %s", chunks[1].Kind)
	}

	wantBC := []string{"Chương I. QUY ĐỊNH CHUNG", "Điều 1. Phạm vi điều chỉnh"}
	if len(chunks[1].Breadcrumb) != len(wantBC) {
		t.Fatalf("expected breadcrumb %v, got %v", wantBC, chunks[1].Breadcrumb)
	}
	for i := range wantBC {
		if chunks[1].Breadcrumb[i] != wantBC[i] {
			t.Errorf("breadcrumb[%d]: expected %q, got %q", i, wantBC[i], chunks[1].Breadcrumb[i])
		}
	}

	if chunks[2].AnchorID != "dieu_2" {
		t.Errorf("expected anchor dieu_2, got %q", chunks[2].AnchorID)
	}
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d: expected index %d, got %d", i, i, c.Index)
		}
	}
}

func TestChunkResult_BreadcrumbIsolation(t *testing.T) {
	res := doctree.NewResult("Doc")
	res.Root.Children = []*doctree.Node{
		{Kind: doctree.Chapter, Title: "Chương I", Children: []*doctree.Node{
			{Kind: doctree.Article, Title: "Điều 1.", Content: []string{"một"}},
		}},
		{Kind: doctree.Chapter, Title: "Chương II", Children: []*doctree.Node{
			{Kind: doctree.Article, Title: "Điều 2.", Content: []string{"hai"}},
		}},
	}

	chunks := ChunkResult(res, DefaultConfig())
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if got := strings.Join(chunks[0].Breadcrumb, " > "); got != "Chương I > Điều 1." {
		t.Errorf("chunk 0 breadcrumb: got %q", got)
	}
	if got := strings.Join(chunks[1].Breadcrumb, " > "); got != "Chương II > Điều 2." {
		t.Errorf("chunk 1 breadcrumb: got %q", got)
	}
}

func TestChunkResult_SectionContentAndItems(t *testing.T) {
	res := doctree.NewResult("Kế hoạch")
	res.Root.Children = []*doctree.Node{
		{
			Kind:    doctree.Section,
			Title:   "I. MỤC ĐÍCH, YÊU CẦU",
			Content: []string{"Triển khai kịp thời."},
			Children: []*doctree.Node{
				{Kind: doctree.Item, Title: "1. Mục đích", Children: []*doctree.Node{
					{Kind: doctree.Subitem, Title: "1.1. Nâng cao nhận thức", Content: []string{"cho cán bộ."}},
				}},
			},
		},
	}

	chunks := ChunkResult(res, DefaultConfig())
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %+v", len(chunks), chunks)
	}
	if chunks[0].Kind != doctree.Section || chunks[0].Text != "Triển khai kịp thời." {
		t.Errorf("unexpected section chunk: %+v", chunks[0])
	}
	if chunks[1].Kind != doctree.Item || !strings.Contains(chunks[1].Text, "1.1. Nâng cao nhận thức\ncho cán bộ.") {
		t.Errorf("expected item chunk to carry its subitems, got %+v", chunks[1])
	}
}

func TestChunkResult_UnitsWithoutArticles(t *testing.T) {
	// Decisions without articles put clauses directly under the document.
	res := doctree.NewResult("Quyết định")
	res.Root.Children = []*doctree.Node{
		{Kind: doctree.Clause, Title: "1.", Content: []string{"Phê duyệt đề án."}},
	}
	chunks := ChunkResult(res, DefaultConfig())
	if len(chunks) != 1 || chunks[0].Text != "1.\nPhê duyệt đề án." {
		t.Fatalf("expected clause chunk, got %+v", chunks)
	}
}

func TestChunkResult_SplitsOversizedUnitWithOverlap(t *testing.T) {
	var lines []string
	for range 300 {
		lines = append(lines, "Người nộp thuế có trách nhiệm kê khai đúng hạn.")
	}
	res := doctree.NewResult("Doc")
	res.Root.Children = []*doctree.Node{
		{Kind: doctree.Article, Title: "Điều 5. Kê khai", Content: lines},
	}

	cfg := Config{ChunkSize: 500, ChunkOverlap: 50, MinChunk: 1}
	chunks := ChunkResult(res, cfg)

	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d: expected index %d, got %d", i, i, c.Index)
		}
		if tokens := EstimateTokens(c.Text); tokens > cfg.ChunkSize*2 {
			t.Errorf("chunk %d: %d tokens exceeds 2x target %d", i, tokens, cfg.ChunkSize)
		}
		if len(c.Breadcrumb) != 1 || c.Breadcrumb[0] != "Điều 5. Kê khai" {
			t.Errorf("chunk %d: unexpected breadcrumb %v", i, c.Breadcrumb)
		}
	}

	overlap := getOverlapText(chunks[0].Text, cfg.ChunkOverlap)
	if overlap == "" || !strings.HasPrefix(chunks[1].Text, overlap) {
		t.Errorf("expected chunk 1 to start with the tail of chunk 0")
	}
}

func TestChunkResult_SplitsLongLineBySentence(t *testing.T) {
	line := strings.Repeat("Tổ chức, cá nhân phải chấp hành quy định này; ", 200)
	res := doctree.NewResult("Doc")
	res.Root.Children = []*doctree.Node{
		{Kind: doctree.Article, Title: "Điều 1.", Content: []string{line}},
	}

	chunks := ChunkResult(res, Config{ChunkSize: 300, ChunkOverlap: 30})
	if len(chunks) < 2 {
		t.Fatalf("expected a long line to split, got %d chunks", len(chunks))
	}
}

func TestChunkResult_MinChunkFiltering(t *testing.T) {
	res := doctree.NewResult("Doc")
	res.Root.Children = []*doctree.Node{
		{Kind: doctree.Article, Title: "Điều 9. Bãi bỏ"},
	}
	chunks := ChunkResult(res, Config{ChunkSize: 800, MinChunk: 10})
	if len(chunks) != 0 {
		t.Errorf("expected 0 chunks below MinChunk, got %d", len(chunks))
	}
}

func TestChunkResult_Empty(t *testing.T) {
	if chunks := ChunkResult(doctree.NewResult("Empty"), DefaultConfig()); len(chunks) != 0 {
		t.Errorf("expected 0 chunks, got %d", len(chunks))
	}
	if chunks := ChunkResult(nil, Config{}); chunks != nil {
		t.Errorf("expected nil for nil result, got %v", chunks)
	}
}

func TestChunkResult_ZeroConfigUsesDefaults(t *testing.T) {
	chunks := ChunkResult(sampleResult(), Config{})
	if len(chunks) != 3 {
		t.Errorf("expected defaults to keep all 3 chunks, got %d", len(chunks))
	}
}

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"   ", 0},
		{"thuế", 1},
		{"quản lý thuế", 4},
	}
	for _, tc := range tests {
		if got := EstimateTokens(tc.text); got != tc.want {
			t.Errorf("EstimateTokens(%q): expected %d, got %d", tc.text, tc.want, got)
		}
	}
}
