package doctree

import "fmt"

// Kind is the structural type of a node in a legal document tree.
type Kind uint8

const (
	Document Kind = iota
	Part
	Chapter
	Section
	Article
	Item
	Clause
	Subitem
	Point
)

var kindNames = [...]string{
	Document: "document",
	Part:     "part",
	Chapter:  "chapter",
	Section:  "section",
	Article:  "article",
	Item:     "item",
	Clause:   "clause",
	Subitem:  "subitem",
	Point:    "point",
}

// Kinds lists every kind in level order.
var Kinds = []Kind{Document, Part, Chapter, Section, Article, Item, Clause, Subitem, Point}

// Level returns the fixed hierarchy depth of the kind:
// 0 document, 1 part, 2 chapter, 3 section, 4 article/item, 5 clause/subitem, 6 point.
func (k Kind) Level() int {
	switch k {
	case Document:
		return 0
	case Part:
		return 1
	case Chapter:
		return 2
	case Section:
		return 3
	case Article, Item:
		return 4
	case Clause, Subitem:
		return 5
	case Point:
		return 6
	}
	return 0
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind maps a wire name back to its Kind.
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), nil
		}
	}
	return Document, fmt.Errorf("unknown node type: %q", s)
}

func (k Kind) MarshalText() ([]byte, error) {
	if int(k) >= len(kindNames) {
		return nil, fmt.Errorf("invalid node kind %d", uint8(k))
	}
	return []byte(kindNames[k]), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
