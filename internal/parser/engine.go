package parser

import (
	"strings"
	"unicode"

	"github.com/dgallion1/vbtree/internal/doctree"
)

// Number of lines a bare part/chapter/section header may absorb as its title.
const maxTitleContinuation = 3

// engine holds the state of one parse. It is not reused across documents.
type engine struct {
	prof Profile
	pats *patternSet
	b    *doctree.Builder
	res  *doctree.Result

	phase       phase
	attachments [][]string // content lines per entry of res.Attachments

	// Title continuation: lines the open header may still absorb, and
	// whether it is an article (which takes one letter-led line instead of
	// bold or uppercase ones).
	cont        int
	contArticle bool
	// echo is set after a duplicate merge; a following line the merged title
	// already contains is dropped.
	echo bool
}

func newEngine(prof Profile, title string) *engine {
	b := doctree.NewBuilder(title)
	b.MergeDuplicates = prof.MergeDuplicates
	return &engine{
		prof: prof,
		pats: patterns(),
		b:    b,
		res:  doctree.NewResult(title),
	}
}

func (e *engine) run(lines []Line) *doctree.Result {
	for _, ln := range repairLines(lines) {
		if strings.TrimSpace(ln.Text) == "" {
			continue
		}
		e.feed(ln)
	}
	return e.finish()
}

func (e *engine) feed(ln Line) {
	echo := e.echo
	e.echo = false

	if e.phase == phaseBody && e.continueTitle(ln) {
		return
	}
	if e.route(ln) {
		return
	}
	if echo && e.isEcho(ln) {
		return
	}

	c := e.classify(ln)
	if !c.header {
		e.cont = 0
		e.b.AppendContent(ln.Text)
		return
	}
	if c.lead != "" {
		e.b.AppendContent(c.lead)
	}
	merged := e.b.Open(c.cand)
	e.arm(c.cand.Kind, merged)
}

// arm starts title continuation when the open header is bare, e.g. "Chương IV"
// with its name on the following line.
func (e *engine) arm(k doctree.Kind, merged bool) {
	e.cont = 0
	e.contArticle = false
	title := e.b.TopTitle()
	switch k {
	case doctree.Part, doctree.Chapter, doctree.Section:
		if e.pats.soloHeader.MatchString(title) {
			e.cont = maxTitleContinuation
		}
	case doctree.Article:
		if e.pats.soloArticle.MatchString(title) {
			e.cont = 1
			e.contArticle = true
		}
	}
	if merged && e.cont == 0 {
		e.echo = true
	}
}

// continueTitle appends ln to the open header's title when it is the header's
// name rendered on its own line.
func (e *engine) continueTitle(ln Line) bool {
	if e.cont == 0 {
		return false
	}
	if e.isStructural(ln) {
		e.cont = 0
		return false
	}
	ok := ln.Bold || isUpper(ln.Text)
	if e.contArticle {
		_, _, numbered := e.numbering(ln.Text)
		ok = startsLetter(ln.Text) && !numbered && !e.pats.point.MatchString(ln.Text)
	}
	if !ok {
		e.cont = 0
		return false
	}
	e.b.ExtendTitle(ln.Text)
	e.cont--
	if e.contArticle {
		e.cont = 0
	}
	return true
}

// isEcho reports whether ln repeats the name of a header that was just merged
// with its duplicate.
func (e *engine) isEcho(ln Line) bool {
	if !ln.Bold && !isUpper(ln.Text) {
		return false
	}
	return strings.Contains(strings.ToLower(e.b.TopTitle()), strings.ToLower(ln.Text))
}

func (e *engine) finish() *doctree.Result {
	e.res.Root = e.b.Finish()
	for i, lines := range e.attachments {
		e.res.Attachments[i].Content = strings.Join(lines, "\n")
	}
	return e.res
}

func startsLetter(s string) bool {
	return unicode.IsLetter(firstRune(s))
}
