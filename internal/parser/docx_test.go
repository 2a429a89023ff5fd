package parser

import (
	"archive/zip"
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/dgallion1/docgrade/internal/doctree"
	"github.com/dgallion1/docgrade/internal/sections"
	"github.com/fumiama/go-docx"
)

const stylesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:style w:type="paragraph" w:default="1" w:styleId="a">
    <w:name w:val="Normal"/>
  </w:style>
  <w:style w:type="paragraph" w:styleId="1">
    <w:name w:val="heading 1"/>
  </w:style>
  <w:style w:type="paragraph" w:styleId="Heading2">
    <w:name w:val="heading 2"/>
  </w:style>
  <w:style w:type="paragraph" w:styleId="ThesisTitle">
    <w:name w:val="Heading Thesis"/>
  </w:style>
  <w:style w:type="character" w:styleId="10">
    <w:name w:val="标题 1 字符"/>
  </w:style>
</w:styles>`

func loadTestStyles(t *testing.T) *styleTable {
	t.Helper()
	table := &styleTable{names: map[string]string{}, defaultStyle: NormalStyle}
	if err := table.load(strings.NewReader(stylesXML)); err != nil {
		t.Fatalf("load styles: %v", err)
	}
	return table
}

func TestStyleTable_Resolve(t *testing.T) {
	table := loadTestStyles(t)

	tests := []struct {
		id   string
		want string
	}{
		{"1", "Heading 1"},
		{"Heading2", "Heading 2"},
		{"ThesisTitle", "Heading Thesis"},
		{"a", "Normal"},
		{"", "Normal"},
		{"Unknown7", "Normal"},
		// Character styles never name a paragraph.
		{"10", "Normal"},
	}
	for _, tt := range tests {
		if got := table.resolve(tt.id); got != tt.want {
			t.Errorf("resolve(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestStyleTable_InvalidXML(t *testing.T) {
	table := &styleTable{names: map[string]string{}}
	if err := table.load(strings.NewReader("<w:styles><w:style")); err == nil {
		t.Fatal("expected decode error for truncated styles.xml")
	}
}

func TestUIStyleName(t *testing.T) {
	cases := map[string]string{
		"heading 3": "Heading 3",
		"title":     "Title",
		"normal":    "Normal",
		"Body Text": "Body Text",
		"":          "",
	}
	for in, want := range cases {
		if got := uiStyleName(in); got != want {
			t.Errorf("uiStyleName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDocxParagraphTextAndStyle(t *testing.T) {
	para := &docx.Paragraph{
		Properties: &docx.ParagraphProperties{Style: &docx.Style{Val: "Heading2"}},
		Children: []interface{}{
			&docx.Run{Children: []interface{}{&docx.Text{Text: "Related "}}},
			&docx.Run{Children: []interface{}{&docx.Text{Text: "Work"}}},
		},
	}
	if got := docxParagraphText(para); got != "Related Work" {
		t.Errorf("expected %q, got %q", "Related Work", got)
	}
	if got := docxStyleID(para); got != "Heading2" {
		t.Errorf("expected style id %q, got %q", "Heading2", got)
	}

	bare := &docx.Paragraph{}
	if got := docxStyleID(bare); got != "" {
		t.Errorf("expected empty style id, got %q", got)
	}
}

func TestDocxParagraphText_HyperlinksTabsBreaks(t *testing.T) {
	para := &docx.Paragraph{
		Children: []interface{}{
			&docx.Run{Children: []interface{}{&docx.Text{Text: "see "}}},
			&docx.Hyperlink{ID: "rId9", Run: docx.Run{Children: []interface{}{&docx.Text{Text: "link"}}}},
			&docx.Run{Children: []interface{}{
				&docx.Tab{},
				&docx.Text{Text: "a"},
				&docx.BarterRabbet{},
				&docx.Text{Text: "b"},
				&docx.BarterRabbet{Type: "page"},
				&docx.Text{Text: "c"},
			}},
		},
	}
	if got, want := docxParagraphText(para), "see link\ta\nbc"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
  <w:body>
    <w:p><w:pPr><w:pStyle w:val="1"/></w:pPr><w:r><w:t>绪论</w:t></w:r></w:p>
    <w:p><w:r><w:t xml:space="preserve">参见 </w:t></w:r><w:hyperlink r:id="rId5"><w:r><w:t>附录</w:t></w:r></w:hyperlink></w:p>
    <w:p><w:pPr><w:pStyle w:val="Heading2"/></w:pPr><w:r><w:t>研究背景</w:t></w:r></w:p>
    <w:p><w:pPr><w:pStyle w:val="a"/></w:pPr><w:r><w:t>背景内容</w:t></w:r></w:p>
    <w:p><w:pPr><w:pStyle w:val="ThesisTitle"/></w:pPr><w:r><w:t>discarded</w:t></w:r></w:p>
    <w:p><w:pPr><w:pStyle w:val="1"/></w:pPr><w:r><w:t>方法</w:t></w:r></w:p>
    <w:p><w:r><w:t>步骤</w:t></w:r></w:p>
  </w:body>
</w:document>`

func buildDocx(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDOCXParser_Archive(t *testing.T) {
	data := buildDocx(t, map[string]string{
		"word/document.xml": documentXML,
		"word/styles.xml":   stylesXML,
	})

	paras, err := (&DOCXParser{}).Parse(bytes.NewReader(data), "thesis.docx")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []doctree.Paragraph{
		{Text: "绪论", Style: "Heading 1"},
		{Text: "参见 附录", Style: "Normal"},
		{Text: "研究背景", Style: "Heading 2"},
		{Text: "背景内容", Style: "Normal"},
		{Text: "discarded", Style: "Heading Thesis"},
		{Text: "方法", Style: "Heading 1"},
		{Text: "步骤", Style: "Normal"},
	}
	if !reflect.DeepEqual(paras, want) {
		t.Fatalf("paragraphs mismatch:\n got %+v\nwant %+v", paras, want)
	}

	entries := sections.Extract(paras)
	wantEntries := []doctree.Entry{
		{Path: []string{"绪论"}, Content: "参见 附录"},
		{Path: []string{"绪论", "研究背景"}, Content: "背景内容"},
		{Path: []string{"方法"}, Content: "步骤"},
	}
	if !reflect.DeepEqual(entries, wantEntries) {
		t.Errorf("entries mismatch:\n got %+v\nwant %+v", entries, wantEntries)
	}
}

func TestDOCXParser_NoStylesPart(t *testing.T) {
	data := buildDocx(t, map[string]string{"word/document.xml": documentXML})

	paras, err := (&DOCXParser{}).Parse(bytes.NewReader(data), "thesis.docx")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	// Without styles.xml no ID can be resolved, so every paragraph is Normal.
	for _, p := range paras {
		if p.Style != NormalStyle {
			t.Errorf("%q: expected style %q, got %q", p.Text, NormalStyle, p.Style)
		}
	}
	if entries := sections.Extract(paras); len(entries) != 0 {
		t.Errorf("expected no entries, got %+v", entries)
	}
}

func TestDOCXParser_NotAZip(t *testing.T) {
	if _, err := (&DOCXParser{}).Parse(strings.NewReader("not a docx"), "x.docx"); err == nil {
		t.Fatal("expected error for non-zip input")
	}
}
