package pipeline

import (
	"encoding/json"

	"github.com/dgallion1/vbtree/internal/doctree"
)

// DocumentInfo identifies a parsed document and how it was parsed.
type DocumentInfo struct {
	Title       string `json:"title"`
	DocType     string `json:"doc_type"`
	Profile     string `json:"profile"`
	ContentHash string `json:"content_hash"`
	Filename    string `json:"filename,omitempty"`
}

// Document is a parse result with its envelope. Result is shared with the
// cache and must not be modified.
type Document struct {
	Info   DocumentInfo
	Result *doctree.Result
	Stats  map[string]int // Node count per kind name
	Chunks []doctree.Chunk // Set only when chunking was requested

	chunked bool
}

func newDocument(info DocumentInfo, res *doctree.Result) *Document {
	counts := make(map[string]int)
	for kind, n := range doctree.CountByKind(res.Root) {
		counts[kind.String()] = n
	}
	return &Document{Info: info, Result: res, Stats: counts}
}

// NodeCount returns the number of nodes below the document root.
func (d *Document) NodeCount() int {
	total := 0
	for _, n := range d.Stats {
		total += n
	}
	return total
}

type documentJSON struct {
	Info        DocumentInfo         `json:"document_info"`
	Structure   *doctree.Node        `json:"structure"`
	Metadata    doctree.Metadata     `json:"metadata"`
	Attachments []doctree.Attachment `json:"attachments"`
	Stats       map[string]int       `json:"stats"`
	Chunks      *[]doctree.Chunk     `json:"chunks,omitempty"`
}

func (d *Document) MarshalJSON() ([]byte, error) {
	atts := d.Result.Attachments
	if atts == nil {
		atts = []doctree.Attachment{}
	}
	stats := d.Stats
	if stats == nil {
		stats = map[string]int{}
	}
	out := documentJSON{
		Info:        d.Info,
		Structure:   d.Result.Root,
		Metadata:    d.Result.Metadata,
		Attachments: atts,
		Stats:       stats,
	}
	if d.chunked {
		chunks := d.Chunks
		if chunks == nil {
			chunks = []doctree.Chunk{}
		}
		out.Chunks = &chunks
	}
	return json.Marshal(out)
}
