package parser

import (
	"regexp"
	"strings"

	"github.com/dgallion1/vbtree/internal/doctree"
)

// classification is the classifier's verdict for one body line.
type classification struct {
	cand   doctree.Candidate
	header bool   // false means plain content
	lead   string // prose preceding a mid-line header, owned by the open node
}

// headerAt matches a prefix-tolerant header pattern and splits off any prose
// in front of it.
func headerAt(re *regexp.Regexp, text string) (lead, header string, ok bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", "", false
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
}

func (e *engine) guarded(text string) bool {
	return e.prof.ReferenceGuard && isReference(text)
}

// classify proposes a node for a body line given the currently open node.
func (e *engine) classify(ln Line) classification {
	text := ln.Text
	p := e.pats
	content := classification{}

	if k, ok := anchorKind(ln.AnchorID); ok && e.prof.Enables(k) {
		c := doctree.Candidate{Kind: k, Title: text, AnchorID: ln.AnchorID}
		if k == doctree.Clause {
			if num, rest, ok := e.numbering(text); ok {
				c.Title = num
				c.Content = nonEmpty(rest)
			}
		}
		return classification{cand: c, header: true}
	}

	for _, h := range []struct {
		kind doctree.Kind
		re   *regexp.Regexp
	}{
		{doctree.Part, p.part},
		{doctree.Chapter, p.chapter},
		{doctree.Section, p.section},
	} {
		if !e.prof.Enables(h.kind) {
			continue
		}
		lead, title, ok := headerAt(h.re, text)
		if !ok {
			continue
		}
		if !ln.Bold || e.guarded(text) {
			return content
		}
		return classification{
			cand:   doctree.Candidate{Kind: h.kind, Title: title, AnchorID: ln.AnchorID},
			header: true,
			lead:   lead,
		}
	}

	if p.roman.MatchString(text) {
		switch {
		case e.prof.RomanChapters && e.prof.Enables(doctree.Chapter):
			if (ln.Bold || runeLen(text) <= 100) && !e.guarded(text) {
				return header(doctree.Chapter, text, ln.AnchorID)
			}
			return content
		case e.prof.RomanSections && e.prof.Enables(doctree.Section):
			if ln.Bold {
				return header(doctree.Section, text, ln.AnchorID)
			}
			return content
		}
	}

	if e.prof.Enables(doctree.Article) && p.article.MatchString(text) {
		switch {
		case !e.prof.StrictArticles, ln.Bold:
			return header(doctree.Article, text, ln.AnchorID)
		case e.prof.LooseArticles && p.articleStrict.MatchString(text) && !e.guarded(text):
			return header(doctree.Article, text, ln.AnchorID)
		}
		return content
	}

	if num, rest, ok := e.numbering(text); ok {
		kind, ok := e.numberedKind(num)
		if !ok {
			return content
		}
		return classification{
			cand:   doctree.Candidate{Kind: kind, Title: num, Content: nonEmpty(rest), AnchorID: ln.AnchorID},
			header: true,
		}
	}

	if e.prof.Enables(doctree.Point) {
		if m := p.point.FindStringSubmatch(text); m != nil {
			return classification{
				cand:   doctree.Candidate{Kind: doctree.Point, Title: m[1], Content: nonEmpty(m[2]), AnchorID: ln.AnchorID},
				header: true,
			}
		}
	}
	return content
}

func header(k doctree.Kind, title, anchor string) classification {
	return classification{cand: doctree.Candidate{Kind: k, Title: title, AnchorID: anchor}, header: true}
}

// numbering splits "1. text", "1.2. text" or "1.2 text" into number and
// remainder. An undotted number without a trailing period ("10 người") is
// prose.
func (e *engine) numbering(text string) (num, rest string, ok bool) {
	m := e.pats.loose.FindStringSubmatch(text)
	if m == nil {
		return "", "", false
	}
	if m[2] == "" && !strings.Contains(m[1], ".") {
		return "", "", false
	}
	return m[1], strings.TrimSpace(m[3]), true
}

// numberedKind places a numbered line relative to the open node.
func (e *engine) numberedKind(num string) (doctree.Kind, bool) {
	dotted := strings.Contains(num, ".")
	switch e.prof.Numbering {
	case NumberClauses:
		if !e.prof.Enables(doctree.Clause) {
			return 0, false
		}
		switch e.b.Top() {
		case doctree.Article, doctree.Clause, doctree.Point:
			return doctree.Clause, true
		}
	case NumberItems:
		switch e.b.Context() {
		case doctree.Document:
			return doctree.Item, true
		case doctree.Item, doctree.Subitem:
			if dotted {
				return doctree.Subitem, true
			}
			return doctree.Item, true
		}
	case NumberPlanItems:
		switch e.b.Context() {
		case doctree.Section:
			return doctree.Item, true
		case doctree.Item, doctree.Subitem:
			if dotted {
				return doctree.Subitem, true
			}
			return doctree.Item, true
		}
	}
	return 0, false
}

// isStructural reports whether a line would start something of its own and so
// cannot continue a header title.
func (e *engine) isStructural(ln Line) bool {
	if k, ok := anchorKind(ln.AnchorID); ok && e.prof.Enables(k) {
		return true
	}
	p := e.pats
	t := ln.Text
	if p.part.MatchString(t) || p.chapter.MatchString(t) || p.section.MatchString(t) ||
		p.article.MatchString(t) || p.roman.MatchString(t) || p.appendix.MatchString(t) ||
		p.recipients.MatchString(t) || p.signature.MatchString(t) || p.point.MatchString(t) {
		return true
	}
	_, _, numbered := e.numbering(t)
	return numbered
}

func nonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}
