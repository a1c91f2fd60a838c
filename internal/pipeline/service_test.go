package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/dgallion1/vbtree/internal/config"
)

const decisionHTML = `<html><body><div class="content1">
<p><b>Điều 1. Phạm vi điều chỉnh</b></p>
<p>1. Khoản một.</p>
<p>a) Điểm a.</p>
<p><b>Nơi nhận:</b></p>
<p>- Như Điều 3;</p>
</div></body></html>`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, mutate func(*config.Config)) *Service {
	t.Helper()
	cfg := config.Defaults()
	if mutate != nil {
		mutate(&cfg)
	}
	svc, err := NewService(cfg, nil, testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestService_ParseInfersTypeFromTitle(t *testing.T) {
	svc := newTestService(t, nil)
	data := []byte(decisionHTML)

	doc, err := svc.Parse(context.Background(), data, Request{Title: "Quyết định 12/QĐ-UBND"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Info.DocType != "Quyết định" || doc.Info.Profile != "decision" {
		t.Errorf("expected Quyết định/decision, got %s/%s", doc.Info.DocType, doc.Info.Profile)
	}
	if doc.Info.ContentHash != ContentHashHex(data) {
		t.Errorf("unexpected content hash %q", doc.Info.ContentHash)
	}
	for kind, want := range map[string]int{"article": 1, "clause": 1, "point": 1} {
		if doc.Stats[kind] != want {
			t.Errorf("expected %d %s, got %d (stats %v)", want, kind, doc.Stats[kind], doc.Stats)
		}
	}
	if doc.NodeCount() != 3 {
		t.Errorf("expected 3 nodes, got %d", doc.NodeCount())
	}
	recips := doc.Result.Metadata.Recipients
	if len(recips) != 2 || recips[1] != "- Như Điều 3;" {
		t.Errorf("unexpected recipients: %v", recips)
	}
}

func TestService_ProfileSelection(t *testing.T) {
	tests := []struct {
		name        string
		defaultType string
		req         Request
		profile     string
	}{
		{"declared type wins", "", Request{Title: "Quyết định 1", DocType: "Thông báo"}, "directive"},
		{"inferred from title", "", Request{Title: "Kế hoạch triển khai"}, "plan"},
		{"configured default", "Công điện", Request{}, "directive"},
		{"unknown falls back to hierarchical", "", Request{Title: "Văn bản"}, "hierarchical"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestService(t, func(c *config.Config) { c.DefaultDocType = tc.defaultType })
			doc, err := svc.Parse(context.Background(), []byte(decisionHTML), tc.req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if doc.Info.Profile != tc.profile {
				t.Errorf("expected profile %s, got %s", tc.profile, doc.Info.Profile)
			}
		})
	}
}

func TestService_ReferenceGuardSwitch(t *testing.T) {
	on := newTestService(t, nil)
	off := newTestService(t, func(c *config.Config) { c.ReferenceGuard = false })

	if !on.ProfileFor("Luật").ReferenceGuard {
		t.Error("expected guard on for Luật by default")
	}
	if off.ProfileFor("Luật").ReferenceGuard {
		t.Error("expected guard disabled by config")
	}
	if on.ProfileFor("Quyết định").ReferenceGuard {
		t.Error("expected config not to enable the guard for profiles without it")
	}
}

func TestService_CachesByContentAndProfile(t *testing.T) {
	svc := newTestService(t, nil)
	data := []byte(decisionHTML)
	ctx := context.Background()

	first, err := svc.Parse(ctx, data, Request{Title: "Quyết định 1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Parse(ctx, data, Request{Title: "Quyết định 1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Result != second.Result {
		t.Error("expected identical request to be served from cache")
	}

	other, err := svc.Parse(ctx, data, Request{Title: "Quyết định 1", DocType: "Luật"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if other.Result == first.Result {
		t.Error("expected a different profile to bypass the cache entry")
	}

	if snap := svc.Stats().Snapshot(); snap.Count != 2 {
		t.Errorf("expected 2 recorded parses (cache hits excluded), got %d", snap.Count)
	}
}

func TestService_TextSourceByFilename(t *testing.T) {
	svc := newTestService(t, nil)
	data := []byte("Điều 1. ABC\n1. xyz\na) foo\n")

	doc, err := svc.Parse(context.Background(), data, Request{Filename: "qd.txt", Title: "Quyết định 7"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Info.Filename != "qd.txt" {
		t.Errorf("expected filename in info, got %q", doc.Info.Filename)
	}
	art := doc.Result.Root.Children
	if len(art) != 1 || art[0].Title != "Điều 1. ABC" {
		t.Fatalf("expected one article, got %+v", art)
	}
	if len(art[0].Children) != 1 || len(art[0].Children[0].Children) != 1 {
		t.Errorf("expected article > clause > point nesting")
	}
}

func TestService_Chunks(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	plain, err := svc.Parse(ctx, []byte(decisionHTML), Request{Title: "Quyết định 1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw, _ := json.Marshal(plain)
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	for _, key := range []string{"document_info", "structure", "metadata", "attachments", "stats"} {
		if _, ok := m[key]; !ok {
			t.Errorf("expected key %q in %s", key, raw)
		}
	}
	if _, ok := m["chunks"]; ok {
		t.Error("expected no chunks unless requested")
	}

	chunked, err := svc.Parse(ctx, []byte(decisionHTML), Request{Title: "Quyết định 1", Chunks: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunked.Chunks) != 1 || chunked.Chunks[0].Breadcrumb[0] != "Điều 1. Phạm vi điều chỉnh" {
		t.Errorf("expected one article chunk, got %+v", chunked.Chunks)
	}
	if plain.Chunks != nil {
		t.Error("expected cached document not to share chunks with earlier results")
	}
}

func TestService_Errors(t *testing.T) {
	svc := newTestService(t, nil)

	if _, err := svc.Parse(context.Background(), []byte("x"), Request{Filename: "a.xls"}); err == nil {
		t.Error("expected error for unsupported extension")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.Parse(ctx, []byte(decisionHTML), Request{}); err == nil {
		t.Error("expected error for cancelled context")
	}

	if _, err := svc.Parse(context.Background(), []byte("not a zip"), Request{Filename: "a.docx"}); err == nil {
		t.Error("expected error for corrupt docx")
	}
	if snap := svc.Stats().Snapshot(); snap.Failed != 1 {
		t.Errorf("expected 1 failed parse recorded, got %d", snap.Failed)
	}
}

func TestResolveType(t *testing.T) {
	tests := []struct {
		declared, title, fallback, want string
	}{
		{"Luật", "Quyết định 1", "Kế hoạch", "Luật"},
		{"", "Nghị định 15/2020/NĐ-CP", "Kế hoạch", "Nghị định"},
		{"", "Văn bản", "Kế hoạch", "Kế hoạch"},
		{"", "", "", ""},
	}
	for _, tc := range tests {
		if got := ResolveType(tc.declared, tc.title, tc.fallback); got != tc.want {
			t.Errorf("ResolveType(%q, %q, %q): expected %q, got %q", tc.declared, tc.title, tc.fallback, tc.want, got)
		}
	}
}
