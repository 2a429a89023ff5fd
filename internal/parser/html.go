package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docgrade/internal/doctree"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML files. h1–h6 become "Heading N" paragraphs;
// p, li, td and blockquote become body paragraphs.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) ([]doctree.Paragraph, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var paragraphs []doctree.Paragraph
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				paragraphs = append(paragraphs, doctree.Paragraph{
					Text:  textContent(n),
					Style: headingStyle(level),
				})
				return
			}

			switch n.Data {
			case "script", "style", "nav", "footer", "header":
				return
			case "p", "li", "td", "blockquote":
				if t := textContent(n); t != "" {
					paragraphs = append(paragraphs, doctree.Paragraph{Text: t, Style: NormalStyle})
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}
	return paragraphs, nil
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
