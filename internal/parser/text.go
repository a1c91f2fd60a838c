package parser

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// TextSource reads plain text, one line per source line. Plain text carries no
// formatting, so no line is bold.
type TextSource struct{}

func (TextSource) Lines(r io.Reader) ([]Line, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []Line
	for scanner.Scan() {
		for _, part := range strings.Split(scanner.Text(), "\f") {
			if t := cleanText(part); t != "" {
				lines = append(lines, Line{Text: t})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}
	return lines, nil
}

func textLines(s string) []Line {
	lines, _ := TextSource{}.Lines(strings.NewReader(s))
	return lines
}
