package doctree

import "strings"

// Paragraph is one body paragraph of a source document in reading order.
type Paragraph struct {
	Text  string // Raw paragraph text
	Style string // Style name, e.g. "Heading 2", "Normal"
}

// Entry is one extracted section: the heading path that leads to it and the
// body text found under it before the next heading of any level.
type Entry struct {
	Path    []string `json:"path"`    // Heading titles, index 0 = top level
	Content string   `json:"content"` // Newline-joined body paragraphs
}

// PathSeparator joins heading titles in reports and derived filenames.
const PathSeparator = " → "

// Depth returns the number of headings in the entry's path.
func (e Entry) Depth() int {
	return len(e.Path)
}

// JoinedPath returns the heading titles joined by PathSeparator.
func (e Entry) JoinedPath() string {
	return strings.Join(e.Path, PathSeparator)
}
