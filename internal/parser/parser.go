package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/vbtree/internal/doctree"
)

// LineSource converts raw document bytes into lines for the engine.
type LineSource interface {
	Lines(r io.Reader) ([]Line, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".html":     true,
	".htm":      true,
	".docx":     true,
	".pdf":      true,
	".md":       true,
	".markdown": true,
	".txt":      true,
}

// ForFile returns the line source for a filename.
func ForFile(filename string, pdfFallback bool) (LineSource, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".html", ".htm":
		return HTMLSource{}, nil
	case ".docx":
		return DOCXSource{}, nil
	case ".pdf":
		return PDFSource{FallbackPdftotext: pdfFallback}, nil
	case ".md", ".markdown":
		return MarkdownSource{}, nil
	case ".txt":
		return TextSource{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Parser recovers the structure of legal documents using one profile. It holds
// no mutable state and is safe for concurrent use.
type Parser struct {
	profile Profile
}

// New returns a parser for the given profile.
func New(p Profile) *Parser {
	return &Parser{profile: p}
}

// Profile returns the parser's profile.
func (p *Parser) Profile() Profile { return p.profile }

// Parse extracts the structure of an HTML document. It never fails: input the
// engine cannot make sense of ends up as content of the root.
func (p *Parser) Parse(htmlContent, title string) *doctree.Result {
	return p.ParseLines(ExtractLines(htmlContent), title)
}

// ParseReader is Parse over a reader. It returns an error only when reading
// fails.
func (p *Parser) ParseReader(r io.Reader, title string) (*doctree.Result, error) {
	lines, err := ExtractLinesReader(r)
	if err != nil {
		return nil, err
	}
	return p.ParseLines(lines, title), nil
}

// ParseLines runs the engine over lines from any source.
func (p *Parser) ParseLines(lines []Line, title string) *doctree.Result {
	return newEngine(p.profile, title).run(lines)
}

// ParseSource reads r with src and parses the resulting lines.
func (p *Parser) ParseSource(src LineSource, r io.Reader, title string) (*doctree.Result, error) {
	lines, err := src.Lines(r)
	if err != nil {
		return nil, err
	}
	return p.ParseLines(lines, title), nil
}
