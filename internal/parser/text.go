package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/docgrade/internal/doctree"
)

// TextParser handles plain text files. Plain text carries no styles, so
// every blank-line separated block becomes a body paragraph.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) ([]doctree.Paragraph, error) {
	return splitBlocks(r)
}

// splitBlocks turns blank-line separated blocks into Normal paragraphs.
func splitBlocks(r io.Reader) ([]doctree.Paragraph, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []doctree.Paragraph
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			paragraphs = append(paragraphs, doctree.Paragraph{Text: current.String(), Style: NormalStyle})
			current.Reset()
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return paragraphs, nil
}
