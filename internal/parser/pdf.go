package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docgrade/internal/doctree"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser handles PDF files. PDF text carries no paragraph styles, so
// every block becomes a Normal paragraph and the document yields no entries
// unless it is converted to .docx first.
type PDFParser struct{}

func (p *PDFParser) Parse(r io.Reader, filename string) ([]doctree.Paragraph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	var paragraphs []doctree.Paragraph
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		blocks, err := splitBlocks(strings.NewReader(text))
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		paragraphs = append(paragraphs, blocks...)
	}
	return paragraphs, nil
}
