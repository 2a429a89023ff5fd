// Package sections flattens a styled paragraph sequence into heading-path
// entries and persists them as a report and as one file per entry.
package sections

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/dgallion1/docgrade/internal/doctree"
)

var headingStyleRe = regexp.MustCompile(`^Heading\s*(\d+)`)

// ParseHeadingStyle classifies a paragraph style name. heading reports
// whether the style belongs to the heading family at all; ok reports whether
// it also carries a usable numeric level.
func ParseHeadingStyle(style string) (level int, ok bool, heading bool) {
	if !strings.HasPrefix(style, "Heading") {
		return 0, false, false
	}
	m := headingStyleRe.FindStringSubmatch(style)
	if m == nil {
		return 0, false, true
	}
	n, err := strconv.Atoi(m[1])
	if errors.Is(err, strconv.ErrRange) {
		// Too many digits for an int: deeper than any real path.
		n, err = math.MaxInt, nil
	}
	if err != nil || n < 1 {
		return 0, false, true
	}
	return n, true, true
}

// Extract scans paragraphs once and emits one entry per heading, in document
// order. A heading-family paragraph without a valid level is dropped along
// with its text.
func Extract(paragraphs []doctree.Paragraph) []doctree.Entry {
	entries := []doctree.Entry{}
	var path []string
	var content []string

	flush := func() {
		entries = append(entries, doctree.Entry{
			Path:    append([]string(nil), path...),
			Content: strings.Join(content, "\n"),
		})
		content = content[:0]
	}

	for _, para := range paragraphs {
		level, ok, heading := ParseHeadingStyle(para.Style)
		if heading {
			if !ok {
				continue
			}
			if len(path) > 0 {
				flush()
			}
			if level-1 < len(path) {
				path = path[:level-1]
			}
			path = append(path, strings.TrimSpace(para.Text))
			continue
		}

		if text := strings.TrimSpace(para.Text); text != "" {
			content = append(content, text)
		}
	}

	if len(path) > 0 {
		flush()
	}
	return entries
}
