package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// blockElements start a new line in NodeText output
var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"tr": true, "table": true, "dd": true, "dt": true, "dl": true,
	"blockquote": true, "section": true, "article": true, "hr": true,
}

// skippedElements never contribute text
var skippedElements = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
}

// layoutBreaks turns source line breaks inside text nodes into spaces
var layoutBreaks = strings.NewReplacer("\r", " ", "\n", " ")

// citationPattern matches inline reference markers such as [3], [a] or [citation needed]
var citationPattern = regexp.MustCompile(`\[(?:\d+|[a-z]|note \d+|nb \d+|citation needed|clarification needed)\]`)

// NodeText returns the text of a selection with one line per block element
// or <br>. Lines are whitespace-collapsed and trimmed; empty lines are dropped.
func NodeText(sel *goquery.Selection) string {
	var buf strings.Builder
	for _, n := range sel.Nodes {
		writeNodeText(n, &buf)
		buf.WriteByte('\n')
	}
	return joinLines(buf.String())
}

func writeNodeText(n *html.Node, buf *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		buf.WriteString(layoutBreaks.Replace(n.Data))
		return
	case html.ElementNode:
		if skippedElements[n.Data] {
			return
		}
	}

	block := n.Type == html.ElementNode && blockElements[n.Data]
	if block {
		buf.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeNodeText(c, buf)
	}
	if block {
		buf.WriteByte('\n')
	}
}

func joinLines(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = CleanText(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// Lines splits NodeText output back into lines
func Lines(sel *goquery.Selection) []string {
	text := NodeText(sel)
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// CleanText collapses all whitespace runs (including non-breaking spaces)
// to single spaces and trims the result
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Paragraphs returns the cleaned text of each non-empty <p> in sel, in order
func Paragraphs(sel *goquery.Selection) []string {
	var paras []string
	sel.Find("p").Each(func(_ int, p *goquery.Selection) {
		if text := CleanText(p.Text()); text != "" {
			paras = append(paras, text)
		}
	})
	return paras
}

// FragmentText converts an HTML fragment to plain text: paragraphs joined by
// blank lines, or line-per-block text when the fragment has no <p>
func FragmentText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<div>" + fragment + "</div>"))
	if err != nil {
		return CleanText(fragment)
	}

	body := doc.Find("body")
	if paras := Paragraphs(body); len(paras) > 0 {
		return strings.Join(paras, "\n\n")
	}
	return NodeText(body)
}

// StripCitations removes inline citation markers and tidies the spacing they leave
func StripCitations(s string) string {
	s = citationPattern.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, " .", ".")
	s = strings.ReplaceAll(s, " ,", ",")
	return s
}
