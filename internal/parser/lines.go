package parser

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Line is one visual line of a source document with the formatting signals
// the classifier relies on.
type Line struct {
	Text     string
	Bold     bool   // Bold, strong, h3-h5 or heavy inline weight
	AnchorID string // Name of the first structural anchor on the line
}

var invisibles = strings.NewReplacer(
	"\u00a0", " ",
	"\r", " ",
	"\u200b", "",
	"\u200c", "",
	"\u200d", "",
	"\u2060", "",
	"\ufeff", "",
)

// cleanText normalizes a raw text run: NFC, no invisible characters, single
// ASCII spaces, trimmed.
func cleanText(s string) string {
	s = norm.NFC.String(s)
	s = invisibles.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

var (
	bareKeyword   = regexp.MustCompile(`(?i)^(điều|chương)\s*[.:]?$`)
	numberOrRoman = regexp.MustCompile(`(?i)^(?:\d+|[ivxlc]+)(?:[\s.:]|$)`)
)

// repairLines joins header keywords that the source split from their number,
// e.g. "Điều" followed by "5. Hiệu lực thi hành".
func repairLines(lines []Line) []Line {
	out := make([]Line, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		ln := lines[i]
		if i+1 < len(lines) && bareKeyword.MatchString(ln.Text) && numberOrRoman.MatchString(lines[i+1].Text) {
			next := lines[i+1]
			kw := strings.TrimRight(ln.Text, ".: ")
			ln = Line{
				Text:     kw + " " + next.Text,
				Bold:     ln.Bold || next.Bold,
				AnchorID: firstNonEmpty(ln.AnchorID, next.AnchorID),
			}
			i++
		}
		out = append(out, ln)
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// runeLen counts characters, not bytes; Vietnamese text is mostly multi-byte.
func runeLen(s string) int { return len([]rune(s)) }
