package parser

import (
	"slices"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/dgallion1/vbtree/internal/doctree"
)

// Numbering selects how loose "n." / "n.n" numbering is placed.
type Numbering uint8

const (
	// NumberClauses makes numbered lines clauses of the open article.
	NumberClauses Numbering = iota
	// NumberItems makes numbered lines top-level items, dotted ones subitems.
	NumberItems
	// NumberPlanItems makes numbered lines items of the open Roman section.
	NumberPlanItems
)

// Profile parameterizes the engine for one family of document types.
type Profile struct {
	Name  string
	Kinds []doctree.Kind // Node kinds the profile may create

	// StrictArticles requires bold on "Điều n" headers unless LooseArticles
	// is set and the header carries its delimiter.
	StrictArticles bool
	LooseArticles  bool

	// RomanChapters treats short "I. ..." lines as chapters.
	RomanChapters bool
	// RomanSections treats bold "I. ..." lines as sections.
	RomanSections bool

	Numbering       Numbering
	Appendix        bool // Collect "Phụ lục" / "Mẫu số" blocks as attachments
	ReferenceGuard  bool // Reject header lines that cite other provisions
	MergeDuplicates bool

	SignerMaxLen     int  // Footer lines shorter than this are signers
	SignerUpperFirst bool // Signers must also start with an uppercase letter
}

// Enables reports whether the profile may create nodes of kind k.
func (p Profile) Enables(k doctree.Kind) bool {
	return slices.Contains(p.Kinds, k)
}

// Hierarchical handles fully nested statutes: Part, Chapter, Section, Article,
// Clause, Point.
var Hierarchical = Profile{
	Name:             "hierarchical",
	Kinds:            []doctree.Kind{doctree.Part, doctree.Chapter, doctree.Section, doctree.Article, doctree.Clause, doctree.Point},
	StrictArticles:   true,
	RomanChapters:    true,
	Numbering:        NumberClauses,
	Appendix:         true,
	ReferenceGuard:   true,
	MergeDuplicates:  true,
	SignerMaxLen:     50,
	SignerUpperFirst: true,
}

// Decision handles short decisions and resolutions built from articles.
var Decision = Profile{
	Name:         "decision",
	Kinds:        []doctree.Kind{doctree.Article, doctree.Clause, doctree.Point},
	Numbering:    NumberClauses,
	SignerMaxLen: 60,
}

// Directive handles notices and dispatches made of numbered paragraphs.
var Directive = Profile{
	Name:         "directive",
	Kinds:        []doctree.Kind{doctree.Item, doctree.Subitem, doctree.Point},
	Numbering:    NumberItems,
	SignerMaxLen: 60,
}

// Plan handles plans, instructions and reports split into Roman sections.
var Plan = Profile{
	Name:          "plan",
	Kinds:         []doctree.Kind{doctree.Section, doctree.Item, doctree.Subitem, doctree.Point},
	RomanSections: true,
	Numbering:     NumberPlanItems,
	SignerMaxLen:  60,
}

// Profiles lists the built-in profiles.
var Profiles = []Profile{Hierarchical, Decision, Directive, Plan}

var typeProfiles = map[string]Profile{
	"Luật":               Hierarchical,
	"Nghị định":          Hierarchical,
	"Thông tư":           Hierarchical,
	"Thông tư liên tịch": Hierarchical,
	"Pháp lệnh":          Hierarchical,
	"Văn bản hợp nhất":   Hierarchical,
	"Quy chế":            Hierarchical,
	"Quy định":           Hierarchical,

	"Quyết định": Decision,
	"Lệnh":       Decision,
	"Sắc lệnh":   Decision,
	"Nghị quyết": Decision,

	"Thông báo": Directive,
	"Công điện": Directive,
	"Thông tri": Directive,

	"Chỉ thị":   Plan,
	"Kế hoạch":  Plan,
	"Hướng dẫn": Plan,
	"Báo cáo":   Plan,
}

// Types whose article headers are often not bold.
var looseArticleTypes = []string{"Thông tư", "Nghị quyết", "Quyết định", "Chỉ thị", "Kế hoạch", "Hướng dẫn"}

func foldType(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(norm.NFC.String(s)), " "))
}

// ForType selects the profile for a declared document type. Matching ignores
// case and Unicode composition; unknown types get Hierarchical.
func ForType(docType string) Profile {
	key := foldType(docType)
	p := Hierarchical
	for t, tp := range typeProfiles {
		if foldType(t) == key {
			p = tp
			break
		}
	}
	for _, t := range looseArticleTypes {
		if foldType(t) == key {
			p.LooseArticles = true
			break
		}
	}
	return p
}

// ProfileByName returns the built-in profile with the given name.
func ProfileByName(name string) (Profile, bool) {
	for _, p := range Profiles {
		if p.Name == strings.ToLower(name) {
			return p, true
		}
	}
	return Profile{}, false
}

// DocTypes returns the known document types in sorted order.
func DocTypes() []string {
	types := make([]string, 0, len(typeProfiles))
	for t := range typeProfiles {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// InferType guesses the document type from the leading words of a title such
// as "Thông tư 80/2021/TT-BTC hướng dẫn ...". Longer type names win so that
// "Thông tư liên tịch" is not read as "Thông tư". It returns "" when no type
// matches.
func InferType(title string) string {
	t := foldType(title)
	best := ""
	for typ := range typeProfiles {
		f := foldType(typ)
		if !strings.HasPrefix(t, f) {
			continue
		}
		if rest := t[len(f):]; rest != "" && rest[0] != ' ' && rest[0] != ',' && rest[0] != ':' {
			continue
		}
		if len(f) > len(foldType(best)) {
			best = typ
		}
	}
	return best
}
