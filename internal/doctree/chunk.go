package doctree

// Chunk is a sized text segment with structural context, ready for indexing.
type Chunk struct {
	Text       string   `json:"text"`
	Index      int      `json:"index"`
	Breadcrumb []string `json:"breadcrumb"` // Ancestor titles, e.g. ["Chương I. QUY ĐỊNH CHUNG", "Điều 1. Phạm vi điều chỉnh"]
	Kind       Kind     `json:"type"`       // Kind of the node the chunk was cut from
	AnchorID   string   `json:"html_id,omitempty"`
}
