package document

import (
	"bytes"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/yuin/goldmark"
	"golang.org/x/net/html"
)

// Normalize reduces submitted content to the plain text the keyword
// generator reads. Plain text is kept as submitted.
func Normalize(content string, format Format) (string, error) {
	switch format {
	case "", FormatText:
		return content, nil
	case FormatHTML:
		return htmlText(strings.NewReader(content))
	case FormatMarkdown:
		var buf bytes.Buffer
		if err := goldmark.Convert([]byte(content), &buf); err != nil {
			return "", eris.Wrap(err, "rendering markdown")
		}
		return htmlText(&buf)
	default:
		return "", eris.Wrapf(ErrUnknownFormat, "format %q", format)
	}
}

var skippedElements = map[string]bool{
	"head":     true,
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"br": true, "dd": true, "div": true, "dl": true, "dt": true,
	"figcaption": true, "figure": true, "footer": true, "h1": true,
	"h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "li": true, "main": true, "nav": true,
	"ol": true, "p": true, "pre": true, "section": true, "table": true,
	"td": true, "th": true, "tr": true, "ul": true,
}

func htmlText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", eris.Wrap(err, "parsing html content")
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		switch node.Type {
		case html.TextNode:
			buf.WriteString(node.Data)
		case html.ElementNode:
			if skippedElements[node.Data] {
				return
			}
		}

		block := node.Type == html.ElementNode && blockElements[node.Data]
		if block {
			buf.WriteString("\n")
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
		if block {
			buf.WriteString("\n")
		}
	}
	walk(doc)

	return collapseLines(buf.String()), nil
}

// collapseLines squeezes runs of whitespace inside each line and drops blank lines.
func collapseLines(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if collapsed := strings.Join(strings.Fields(line), " "); collapsed != "" {
			kept = append(kept, collapsed)
		}
	}
	return strings.Join(kept, "\n")
}
