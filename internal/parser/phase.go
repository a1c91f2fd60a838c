package parser

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/dgallion1/vbtree/internal/doctree"
)

type phase uint8

const (
	phaseBody phase = iota
	phaseMetadata
	phaseAppendix
)

// signatureMaxLen bounds non-bold signature block lines.
const signatureMaxLen = 100

// appendixMaxLen bounds non-bold appendix headers.
const appendixMaxLen = 100

// route sends footer and appendix lines to their side channels. It reports
// whether the line was consumed; unconsumed lines belong to the body tree.
func (e *engine) route(ln Line) bool {
	p := e.pats
	text := ln.Text

	if p.recipients.MatchString(text) {
		e.toMetadata()
		e.res.Metadata.Recipients = append(e.res.Metadata.Recipients, text)
		return true
	}
	if e.phase == phaseBody {
		if before, rest, ok := e.splitRecipients(ln); ok {
			e.b.AppendContent(before)
			e.toMetadata()
			e.res.Metadata.Recipients = append(e.res.Metadata.Recipients, rest)
			return true
		}
	}
	if p.signature.MatchString(text) && (ln.Bold || runeLen(text) < signatureMaxLen) {
		e.toMetadata()
		e.res.Metadata.Signers = append(e.res.Metadata.Signers, text)
		return true
	}

	if e.phase == phaseMetadata {
		if !e.endsMetadata(ln) {
			e.routeFooter(text)
			return true
		}
		e.phase = phaseBody
	}

	if e.prof.Appendix && e.isAppendixHeader(ln) {
		e.openAttachment(text)
		return true
	}
	if e.phase == phaseAppendix {
		if e.endsAppendix(ln) {
			e.phase = phaseBody
			return false
		}
		last := len(e.attachments) - 1
		e.attachments[last] = append(e.attachments[last], text)
		return true
	}
	return false
}

// splitRecipients finds a recipients marker after a '|', '.' or ';' and splits
// the line there. Only bold or table lines are split; in prose the marker is
// usually quoted.
func (e *engine) splitRecipients(ln Line) (before, rest string, ok bool) {
	if !ln.Bold && !strings.Contains(ln.Text, "|") {
		return "", "", false
	}
	m := e.pats.recipientsMid.FindStringSubmatchIndex(ln.Text)
	if m == nil {
		return "", "", false
	}
	before = strings.TrimLeft(ln.Text[:m[2]], "| ")
	before = strings.TrimRight(before, "|./ ")
	rest = strings.TrimRight(ln.Text[m[2]:m[3]], "| ")
	return before, rest, true
}

// routeFooter files a line that arrived while in the footer.
func (e *engine) routeFooter(text string) {
	if strings.HasPrefix(text, "-") {
		e.res.Metadata.Recipients = append(e.res.Metadata.Recipients, text)
		return
	}
	if runeLen(text) >= e.prof.SignerMaxLen {
		return
	}
	if e.prof.SignerUpperFirst && !unicode.IsUpper(firstRune(text)) {
		return
	}
	e.res.Metadata.Signers = append(e.res.Metadata.Signers, text)
}

// endsMetadata reports whether a footer line is really the start of more body
// text: a structural anchor or an unambiguous header of an enabled kind.
func (e *engine) endsMetadata(ln Line) bool {
	if k, ok := anchorKind(ln.AnchorID); ok && e.prof.Enables(k) {
		return true
	}
	p := e.pats
	text := ln.Text
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
		if lead, _, ok := headerAt(h.re, text); ok && lead == "" {
			return true
		}
	}
	if e.prof.Enables(doctree.Article) && p.article.MatchString(text) {
		return true
	}
	if e.prof.RomanSections && ln.Bold && p.roman.MatchString(text) {
		return true
	}
	return e.prof.Appendix && e.isAppendixHeader(ln)
}

// endsAppendix reports whether a line inside an attachment resumes the body:
// a structural anchor, an unprefixed part or chapter header, or an article
// header that would also open an article in the body.
func (e *engine) endsAppendix(ln Line) bool {
	if k, ok := anchorKind(ln.AnchorID); ok && e.prof.Enables(k) {
		return true
	}
	p := e.pats
	text := ln.Text
	if isReference(text) {
		return false
	}
	for _, h := range []struct {
		kind doctree.Kind
		re   *regexp.Regexp
	}{
		{doctree.Part, p.part},
		{doctree.Chapter, p.chapter},
	} {
		if !e.prof.Enables(h.kind) || !ln.Bold {
			continue
		}
		if lead, _, ok := headerAt(h.re, text); ok && lead == "" {
			return true
		}
	}
	if !e.prof.Enables(doctree.Article) || !p.articleStrict.MatchString(text) {
		return false
	}
	return ln.Bold || e.prof.LooseArticles
}

func (e *engine) isAppendixHeader(ln Line) bool {
	if !e.pats.appendix.MatchString(ln.Text) {
		return false
	}
	if !ln.Bold && runeLen(ln.Text) >= appendixMaxLen {
		return false
	}
	return !isReference(ln.Text)
}

func (e *engine) toMetadata() {
	e.phase = phaseMetadata
	e.cont = 0
}

func (e *engine) openAttachment(title string) {
	e.phase = phaseAppendix
	e.cont = 0
	e.res.Attachments = append(e.res.Attachments, doctree.Attachment{Title: title})
	e.attachments = append(e.attachments, nil)
}
