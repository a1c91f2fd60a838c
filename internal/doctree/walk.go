package doctree

import (
	"fmt"
	"strings"
)

// Walk visits n and its descendants depth-first in source order. Returning
// false from fn skips the node's children.
func Walk(n *Node, fn func(n *Node, depth int) bool) {
	walk(n, 0, fn)
}

func walk(n *Node, depth int, fn func(*Node, int) bool) {
	if n == nil || !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		walk(c, depth+1, fn)
	}
}

// CountByKind counts the descendants of root per kind. The root itself is not
// counted.
func CountByKind(root *Node) map[Kind]int {
	counts := make(map[Kind]int)
	Walk(root, func(n *Node, depth int) bool {
		if depth > 0 {
			counts[n.Kind]++
		}
		return true
	})
	return counts
}

// Collect returns every node of the given kind in source order.
func Collect(root *Node, kind Kind) []*Node {
	var out []*Node
	Walk(root, func(n *Node, depth int) bool {
		if n.Kind == kind && depth > 0 {
			out = append(out, n)
		}
		return true
	})
	return out
}

// FullText joins a node's own content with the titles and content of all of
// its descendants, one line each.
func FullText(n *Node) string {
	var sb strings.Builder
	if t := n.Text(); t != "" {
		sb.WriteString(t)
	}
	for _, c := range n.Children {
		Walk(c, func(d *Node, _ int) bool {
			for _, s := range []string{d.Title, d.Text()} {
				if s == "" {
					continue
				}
				if sb.Len() > 0 {
					sb.WriteString("\n")
				}
				sb.WriteString(s)
			}
			return true
		})
	}
	return sb.String()
}

// CheckLevels verifies that every child is strictly deeper than its parent.
func CheckLevels(root *Node) error {
	var err error
	Walk(root, func(n *Node, _ int) bool {
		if err != nil {
			return false
		}
		for _, c := range n.Children {
			if c.Level() <= n.Level() {
				err = fmt.Errorf("%s %q (level %d) under %s %q (level %d)",
					c.Kind, c.Title, c.Level(), n.Kind, n.Title, n.Level())
				return false
			}
		}
		return true
	})
	return err
}
