package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docgrade/internal/doctree"
)

// Parser converts raw document bytes into its ordered body paragraphs.
type Parser interface {
	Parse(r io.Reader, filename string) ([]doctree.Paragraph, error)
}

// NormalStyle is reported for body paragraphs of formats without named styles.
const NormalStyle = "Normal"

// SupportedExtensions lists file extensions this tool can read.
var SupportedExtensions = map[string]bool{
	".docx":     true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".txt":      true,
	".pdf":      true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".docx":
		return &DOCXParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".txt":
		return &TextParser{}, nil
	case ".pdf":
		return &PDFParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// headingStyle names a heading level the way word processors do.
func headingStyle(level int) string {
	return fmt.Sprintf("Heading %d", level)
}
