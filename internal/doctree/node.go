package doctree

import (
	"encoding/json"
	"strings"
)

// Node is a structural unit of a legal document.
type Node struct {
	Kind     Kind
	Title    string   // Header text as rendered, possibly merged from several source lines
	Content  []string // Text lines owned directly by this node, not by a child
	Children []*Node
	AnchorID string // Originating HTML anchor name, if any
}

// Level returns the hierarchy depth of the node.
func (n *Node) Level() int { return n.Kind.Level() }

// Text joins the node's own content lines.
func (n *Node) Text() string {
	return strings.TrimSpace(strings.Join(n.Content, "\n"))
}

type nodeJSON struct {
	Type     Kind    `json:"type"`
	Title    string  `json:"title"`
	HTMLID   string  `json:"html_id,omitempty"`
	Content  string  `json:"content,omitempty"`
	Children []*Node `json:"children,omitempty"`
}

func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(nodeJSON{
		Type:     n.Kind,
		Title:    n.Title,
		HTMLID:   n.AnchorID,
		Content:  n.Text(),
		Children: n.Children,
	})
}

func (n *Node) UnmarshalJSON(b []byte) error {
	var raw nodeJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*n = Node{
		Kind:     raw.Type,
		Title:    raw.Title,
		AnchorID: raw.HTMLID,
		Children: raw.Children,
	}
	if raw.Content != "" {
		n.Content = strings.Split(raw.Content, "\n")
	}
	return nil
}

// Metadata holds the footer side channel of a document.
type Metadata struct {
	Recipients []string `json:"recipients"`
	Signers    []string `json:"signers"`
}

func (m Metadata) MarshalJSON() ([]byte, error) {
	type plain Metadata
	out := plain(m)
	if out.Recipients == nil {
		out.Recipients = []string{}
	}
	if out.Signers == nil {
		out.Signers = []string{}
	}
	return json.Marshal(out)
}

// Attachment is an appendix or sample form collected outside the main tree.
type Attachment struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Result is the output of parsing one document.
type Result struct {
	Root        *Node
	Metadata    Metadata
	Attachments []Attachment
}

// NewResult returns an empty result rooted at a document node with the given title.
func NewResult(title string) *Result {
	return &Result{
		Root:        &Node{Kind: Document, Title: title},
		Attachments: []Attachment{},
	}
}

type resultJSON struct {
	Structure   *Node        `json:"structure"`
	Metadata    Metadata     `json:"metadata"`
	Attachments []Attachment `json:"attachments"`
}

func (r *Result) MarshalJSON() ([]byte, error) {
	atts := r.Attachments
	if atts == nil {
		atts = []Attachment{}
	}
	return json.Marshal(resultJSON{
		Structure:   r.Root,
		Metadata:    r.Metadata,
		Attachments: atts,
	})
}

func (r *Result) UnmarshalJSON(b []byte) error {
	var raw resultJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	r.Root = raw.Structure
	r.Metadata = raw.Metadata
	r.Attachments = raw.Attachments
	return nil
}
