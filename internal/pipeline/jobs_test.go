package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/dgallion1/vbtree/internal/doctree"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestContentHashHex_EmptyInput(t *testing.T) {
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if h := ContentHashHex([]byte{}); h != want {
		t.Errorf("expected hash %q, got %q", want, h)
	}
}

func TestNewJob(t *testing.T) {
	job := NewJob("qd.html", "Quyết định 1", "", []byte("<p>x</p>"))
	if len(job.ID) != 36 {
		t.Errorf("expected a UUID job id, got %q", job.ID)
	}
	if job.Status != StatusQueued || job.Phase != "queued" {
		t.Errorf("expected queued job, got %s/%s", job.Status, job.Phase)
	}
	if job.ContentHash != ContentHashHex([]byte("<p>x</p>")) {
		t.Errorf("unexpected content hash %q", job.ContentHash)
	}
	if other := NewJob("qd.html", "", "", nil); other.ID == job.ID {
		t.Error("expected distinct job ids")
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := NewJob("a.html", "", "", []byte("a"))

	before := job.UpdatedAt
	time.Sleep(time.Millisecond)
	job.SetStatus(StatusParsing, "parsing")
	if job.Status != StatusParsing || job.Phase != "parsing" {
		t.Errorf("expected parsing, got %s/%s", job.Status, job.Phase)
	}
	if !job.UpdatedAt.After(before) {
		t.Error("expected UpdatedAt to advance after SetStatus")
	}

	res := doctree.NewResult("Doc")
	res.Root.Children = []*doctree.Node{{Kind: doctree.Article, Title: "Điều 1."}}
	job.Complete(newDocument(DocumentInfo{Title: "Doc", Profile: "decision"}, res))

	snap := job.Snapshot()
	if snap.Status != StatusCompleted || snap.Phase != "done" {
		t.Errorf("expected completed/done, got %s/%s", snap.Status, snap.Phase)
	}
	if snap.Summary.Profile != "decision" || snap.Summary.Nodes != 1 {
		t.Errorf("unexpected summary: %+v", snap.Summary)
	}
	if job.FileData() != nil {
		t.Error("expected upload to be released after completion")
	}
	if job.Document() == nil {
		t.Error("expected document after completion")
	}
}

func TestJob_Fail(t *testing.T) {
	job := NewJob("a.pdf", "", "", []byte("a"))
	job.Fail("parsing", errors.New("parse a.pdf: no text"))
	job.Fail("parsing", errors.New("parse a.pdf: retry"))

	snap := job.Snapshot()
	if snap.Status != StatusFailed || snap.Phase != "parsing" {
		t.Errorf("expected failed/parsing, got %s/%s", snap.Status, snap.Phase)
	}
	if len(snap.Summary.Errors) != 2 || snap.Summary.Errors[0] != "parse a.pdf: no text" {
		t.Errorf("unexpected errors: %v", snap.Summary.Errors)
	}
	if job.Document() != nil || job.FileData() != nil {
		t.Error("expected no document and no upload after failure")
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	snap := NewJob("a.html", "", "", nil).Snapshot()
	if snap.Summary.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := NewJob("a.html", "", "", nil)
	store.Put(job)

	got := store.Get(job.ID)
	if got == nil || got.ID != job.ID {
		t.Fatalf("expected to get job %q back, got %v", job.ID, got)
	}
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 job, got %d", store.Len())
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(time.Minute)

	expired := NewJob("old.html", "", "", nil)
	expired.UpdatedAt = time.Now().Add(-2 * time.Minute)
	store.Put(expired)

	fresh := NewJob("new.html", "", "", nil)
	store.Put(fresh)

	store.Cleanup()

	if store.Get(expired.ID) != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get(fresh.ID) == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}

func TestJobStore_CleanupEmpty(t *testing.T) {
	NewJobStore(time.Hour).Cleanup()
}
