package doctree

import "strings"

// Candidate is a freshly classified header waiting to be placed in the tree.
type Candidate struct {
	Kind     Kind
	Title    string
	Content  []string
	AnchorID string
}

type arenaNode struct {
	kind     Kind
	title    string
	content  []string
	children []int
	anchor   string
}

// Builder assembles a tree from a stream of candidates. Nodes live in a flat
// arena and reference their children by index; path holds the indexes of the
// currently open nodes from the root (always index 0) to the top.
//
// Path levels strictly increase from bottom to top.
type Builder struct {
	MergeDuplicates bool

	nodes []arenaNode
	path  []int
}

// NewBuilder starts a tree whose root is a document node with the given title.
func NewBuilder(title string) *Builder {
	return &Builder{
		MergeDuplicates: true,
		nodes:           []arenaNode{{kind: Document, title: title}},
		path:            []int{0},
	}
}

func (b *Builder) top() *arenaNode { return &b.nodes[b.path[len(b.path)-1]] }

func (b *Builder) push(idx int) { b.path = append(b.path, idx) }

func (b *Builder) pop() { b.path = b.path[:len(b.path)-1] }

// Top returns the kind of the innermost open node.
func (b *Builder) Top() Kind { return b.top().kind }

// TopTitle returns the title of the innermost open node.
func (b *Builder) TopTitle() string { return b.top().title }

// Context returns the kind of the innermost open node that is not a point.
// Numbering decisions look through points to the clause or item that owns them.
func (b *Builder) Context() Kind {
	for i := len(b.path) - 1; i >= 0; i-- {
		if k := b.nodes[b.path[i]].kind; k != Point {
			return k
		}
	}
	return Document
}

// Open attaches c at the correct depth and makes it the innermost open node.
// Open nodes at the same or a deeper level are closed first. When c duplicates
// the last child of its parent, the two are merged and the existing node is
// reopened instead; merged reports whether that happened.
func (b *Builder) Open(c Candidate) (merged bool) {
	level := c.Kind.Level()
	for len(b.path) > 1 && b.top().kind.Level() >= level {
		b.pop()
	}
	parentIdx := b.path[len(b.path)-1]

	if b.MergeDuplicates {
		if kids := b.nodes[parentIdx].children; len(kids) > 0 {
			lastIdx := kids[len(kids)-1]
			if last := &b.nodes[lastIdx]; isDuplicate(last.kind, last.title, c.Kind, c.Title) {
				mergeInto(last, c)
				b.push(lastIdx)
				return true
			}
		}
	}

	idx := len(b.nodes)
	b.nodes = append(b.nodes, arenaNode{
		kind:    c.Kind,
		title:   c.Title,
		content: append([]string(nil), c.Content...),
		anchor:  c.AnchorID,
	})
	b.nodes[parentIdx].children = append(b.nodes[parentIdx].children, idx)
	b.push(idx)
	return false
}

// AppendContent adds a text line to the innermost open node.
func (b *Builder) AppendContent(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	t := b.top()
	t.content = append(t.content, text)
}

// ExtendTitle appends a continuation line to the innermost open node's title.
func (b *Builder) ExtendTitle(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	t := b.top()
	if t.title == "" {
		t.title = text
		return
	}
	t.title += " " + text
}

// Finish converts the arena into a pointer tree. The builder must not be used
// afterwards.
func (b *Builder) Finish() *Node {
	return b.materialize(0)
}

func (b *Builder) materialize(idx int) *Node {
	an := b.nodes[idx]
	n := &Node{
		Kind:     an.kind,
		Title:    an.title,
		Content:  an.content,
		AnchorID: an.anchor,
	}
	if len(an.children) > 0 {
		n.Children = make([]*Node, 0, len(an.children))
		for _, c := range an.children {
			n.Children = append(n.Children, b.materialize(c))
		}
	}
	return n
}

func mergeInto(existing *arenaNode, c Candidate) {
	if len([]rune(c.Title)) > len([]rune(existing.title)) {
		existing.title = c.Title
	}
	seen := make(map[string]bool, len(existing.content))
	for _, line := range existing.content {
		seen[line] = true
	}
	for _, line := range c.Content {
		if !seen[line] {
			existing.content = append(existing.content, line)
			seen[line] = true
		}
	}
	if existing.anchor == "" && c.AnchorID != "" {
		existing.anchor = c.AnchorID
	}
}

// isDuplicate reports whether two headers are the same logical node rendered
// twice: same kind and equal normalized titles, or one title is the other
// followed by a delimiter ("Điều 1" / "Điều 1. Phạm vi", but not "Điều 10").
func isDuplicate(k1 Kind, title1 string, k2 Kind, title2 string) bool {
	if k1 != k2 {
		return false
	}
	t1 := normalizeTitle(title1)
	t2 := normalizeTitle(title2)
	if t1 == t2 {
		return true
	}
	return delimitedPrefix(t1, t2) || delimitedPrefix(t2, t1)
}

func normalizeTitle(s string) string {
	s = strings.Join(strings.Fields(strings.ToLower(s)), " ")
	return strings.TrimRight(s, ".")
}

// delimitedPrefix reports whether short is a prefix of long that ends at a
// '.', ' ' or ':' in long. A '.' followed by a digit continues a number
// ("1" vs "1.1") and does not count as a delimiter.
func delimitedPrefix(long, short string) bool {
	if short == "" || len(long) <= len(short) || !strings.HasPrefix(long, short) {
		return false
	}
	switch long[len(short)] {
	case ' ', ':':
		return true
	case '.':
		rest := long[len(short)+1:]
		return rest == "" || rest[0] < '0' || rest[0] > '9'
	}
	return false
}
