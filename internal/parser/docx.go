package parser

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docgrade/internal/doctree"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) ([]doctree.Paragraph, error) {
	// go-docx needs a ReaderAt+size.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	size := int64(len(data))

	doc, err := docx.Parse(bytes.NewReader(data), size)
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}
	styles, err := readStyleTable(bytes.NewReader(data), size)
	if err != nil {
		return nil, fmt.Errorf("read styles: %w", err)
	}

	var paragraphs []doctree.Paragraph
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		paragraphs = append(paragraphs, doctree.Paragraph{
			Text:  docxParagraphText(para),
			Style: styles.resolve(docxStyleID(para)),
		})
	}
	return paragraphs, nil
}

func docxStyleID(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return para.Properties.Style.Val
}

// docxParagraphText concatenates the text of runs and hyperlinked runs.
// Tabs become "\t" and line breaks "\n"; page and column breaks add nothing.
func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		switch c := child.(type) {
		case *docx.Run:
			writeRunText(&buf, c)
		case *docx.Hyperlink:
			writeRunText(&buf, &c.Run)
		}
	}
	return buf.String()
}

func writeRunText(buf *strings.Builder, run *docx.Run) {
	for _, rc := range run.Children {
		switch c := rc.(type) {
		case *docx.Text:
			buf.WriteString(c.Text)
		case *docx.Tab:
			buf.WriteByte('\t')
		case *docx.BarterRabbet:
			if c.Type == "" || c.Type == "textWrapping" {
				buf.WriteByte('\n')
			}
		}
	}
}

// styleTable maps paragraph style IDs (w:pStyle) to display names.
// Localized Word writes IDs like "1" for "heading 1", so the ID alone
// cannot classify headings.
type styleTable struct {
	names        map[string]string
	defaultStyle string
}

type stylesDocument struct {
	Styles []struct {
		Type    string `xml:"type,attr"`
		ID      string `xml:"styleId,attr"`
		Default string `xml:"default,attr"`
		Name    struct {
			Val string `xml:"val,attr"`
		} `xml:"name"`
	} `xml:"style"`
}

func readStyleTable(r io.ReaderAt, size int64) (*styleTable, error) {
	table := &styleTable{names: map[string]string{}, defaultStyle: NormalStyle}

	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, err
	}
	var stylesFile *zip.File
	for _, f := range zr.File {
		if f.Name == "word/styles.xml" {
			stylesFile = f
			break
		}
	}
	if stylesFile == nil {
		return table, nil
	}

	rc, err := stylesFile.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	if err := table.load(rc); err != nil {
		return nil, err
	}
	return table, nil
}

func (t *styleTable) load(r io.Reader) error {
	var doc stylesDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return fmt.Errorf("decode styles.xml: %w", err)
	}
	for _, s := range doc.Styles {
		if s.Type != "" && s.Type != "paragraph" {
			continue
		}
		name := uiStyleName(s.Name.Val)
		if name == "" {
			name = s.ID
		}
		t.names[s.ID] = name
		if s.Default == "1" || s.Default == "true" {
			t.defaultStyle = name
		}
	}
	return nil
}

// resolve returns the display name for a style ID. Paragraphs without a
// pStyle, or whose pStyle is not defined in styles.xml, use the document's
// default paragraph style.
func (t *styleTable) resolve(id string) string {
	if name, ok := t.names[id]; ok && id != "" {
		return name
	}
	return t.defaultStyle
}

// builtinStyleNames maps the lower-case names Word stores for built-in
// styles to the names shown in its UI.
var builtinStyleNames = map[string]string{
	"caption":  "Caption",
	"footer":   "Footer",
	"header":   "Header",
	"normal":   "Normal",
	"subtitle": "Subtitle",
	"title":    "Title",
	"toc 1":    "TOC 1",
	"toc 2":    "TOC 2",
	"toc 3":    "TOC 3",
}

func uiStyleName(name string) string {
	if ui, ok := builtinStyleNames[name]; ok {
		return ui
	}
	if rest, ok := strings.CutPrefix(name, "heading "); ok {
		return "Heading " + rest
	}
	return name
}
