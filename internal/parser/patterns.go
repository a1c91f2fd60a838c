package parser

import (
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/dgallion1/vbtree/internal/doctree"
)

// patternSet is the classification table shared by every parse. It is built
// on first use and never mutated afterwards.
type patternSet struct {
	// Part, chapter and section headers may follow a sentence ending in '.'
	// or ':'; group 1 is the preceding text, group 2 the header onward.
	part    *regexp.Regexp
	chapter *regexp.Regexp
	section *regexp.Regexp

	roman         *regexp.Regexp // "I. Mục tiêu", uppercase numerals only
	article       *regexp.Regexp
	articleStrict *regexp.Regexp // "Điều 5." or "Điều 5:" with the delimiter
	point         *regexp.Regexp
	loose         *regexp.Regexp
	appendix      *regexp.Regexp

	recipients    *regexp.Regexp
	recipientsMid *regexp.Regexp
	signature     *regexp.Regexp

	soloHeader  *regexp.Regexp // header keyword and number with nothing after
	soloArticle *regexp.Regexp

	citation     *regexp.Regexp
	citedPair    *regexp.Regexp
	selfCitation *regexp.Regexp
}

const headerPrefix = `(?is)^(?:(.*?[.:])\s*)?`

var patterns = sync.OnceValue(func() *patternSet {
	return &patternSet{
		part:    regexp.MustCompile(headerPrefix + `(phần\s+(?:thứ\s+\p{L}+|[ivxlc]+|[a-z]|\d+)(?:[\s.:].*)?)$`),
		chapter: regexp.MustCompile(headerPrefix + `(chương\s+[ivxlc0-9]+(?:[\s.:].*)?)$`),
		section: regexp.MustCompile(headerPrefix + `(mục\s+\d+(?:[\s.:].*)?)$`),

		roman:         regexp.MustCompile(`^\s*([IVX]+)\.\s+(.*)$`),
		article:       regexp.MustCompile(`(?i)^\s*(điều\s+\d+[a-z]?)\s*[.:]?\s*(.*)$`),
		articleStrict: regexp.MustCompile(`(?i)^\s*điều\s+\d+[a-z]?\s*[.:]`),
		point:         regexp.MustCompile(`^\s*([a-zđ][).])(?:\s+(.*))?$`),
		loose:         regexp.MustCompile(`^\s*(\d{1,3}(?:\.\d{1,3})*)(\.?)(?:\s+(.*))?$`),
		appendix:      regexp.MustCompile(`(?i)^\s*(phụ lục|mẫu số)(?:\s|$|[.:])`),

		recipients:    regexp.MustCompile(`(?i)^\s*nơi (?:nhận|gửi)\s*[:;]`),
		recipientsMid: regexp.MustCompile(`(?i)(?:\|\s*|[.;]\s+)(nơi (?:nhận|gửi)\s*[:;].*)$`),
		signature:     regexp.MustCompile(`^\s*(?:TM\.|KT\.|TL\.|PP\.|CHỦ TỊCH|THỦ TƯỚNG|BỘ TRƯỞNG|THỐNG ĐỐC|GIÁM ĐỐC|TỔNG GIÁM ĐỐC|QUYỀN|KÝ THAY|(?i:thay mặt))`),

		soloHeader:  regexp.MustCompile(`(?i)^\s*(?:phần\s+(?:thứ\s+\p{L}+|[ivxlc]+|[a-z]|\d+)|chương\s+[ivxlc0-9]+|mục\s+\d+)\s*[.:]?$`),
		soloArticle: regexp.MustCompile(`(?i)^\s*điều\s+\d+[a-z]?\s*[.:]?$`),

		citation:     regexp.MustCompile(`(?i)quy định tại|căn cứ|tại chương|của chương|tại điều|của điều`),
		citedPair:    regexp.MustCompile(`(?i)(?:chương|điều)\s+\d+\s*[,;]\s*(?:chương|điều)`),
		selfCitation: regexp.MustCompile(`(?i)(?:thông tư|nghị định|luật|văn bản) này[.;,]?$`),
	}
})

// maxHeaderLen is the length in characters above which a line is treated as
// prose even if it starts like a header.
const maxHeaderLen = 300

// isReference reports whether a line cites another provision rather than
// introducing one.
func isReference(text string) bool {
	if runeLen(text) > maxHeaderLen {
		return true
	}
	p := patterns()
	return p.citation.MatchString(text) || p.citedPair.MatchString(text) || p.selfCitation.MatchString(text)
}

// anchorPrefixes maps anchor name prefixes to the node kind they mark.
var anchorPrefixes = []struct {
	prefix string
	kind   doctree.Kind
}{
	{"dieu_", doctree.Article},
	{"chuong_", doctree.Chapter},
	{"phan_", doctree.Part},
	{"muc_", doctree.Section},
	{"khoan_", doctree.Clause},
}

// anchorKind returns the kind an anchor name marks. Names ending in "_name"
// label a title and carry no structure.
func anchorKind(id string) (doctree.Kind, bool) {
	if id == "" || strings.HasSuffix(id, "_name") {
		return doctree.Document, false
	}
	for _, ap := range anchorPrefixes {
		if strings.HasPrefix(id, ap.prefix) {
			return ap.kind, true
		}
	}
	return doctree.Document, false
}

// isUpper reports whether s contains letters and none of them is lowercase.
func isUpper(s string) bool {
	letters := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			letters = true
		}
	}
	return letters
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}
