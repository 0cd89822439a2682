package extract

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// ErrParse is returned when a body cannot be turned into a document tree
var ErrParse = errors.New("parse document")

// Document is a parsed HTML page. Lookups that match nothing return empty
// selections, never errors.
type Document struct {
	doc *goquery.Document
}

// Parse decodes body using the declared content type (or a <meta> charset,
// falling back to windows-1252 for non-UTF-8 bytes) and builds the tree.
// Empty, binary and undecodable input fails with ErrParse.
func Parse(body []byte, contentType string) (*Document, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrParse)
	}

	if isBinary(body, contentType) {
		return nil, fmt.Errorf("%w: binary content (%s)", ErrParse, http.DetectContentType(body))
	}

	reader, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrParse, err)
	}

	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	return &Document{doc: doc}, nil
}

// isBinary reports whether the body is not text, by declared type or sniffing
func isBinary(body []byte, contentType string) bool {
	if contentType != "" {
		if mt, _, err := mime.ParseMediaType(contentType); err == nil {
			switch {
			case strings.HasPrefix(mt, "image/"), strings.HasPrefix(mt, "audio/"),
				strings.HasPrefix(mt, "video/"), mt == "application/pdf",
				mt == "application/zip", mt == "application/octet-stream":
				return true
			}
		}
	}

	sniffed := http.DetectContentType(body)
	return !strings.HasPrefix(sniffed, "text/")
}

// Root returns the whole document as a selection
func (d *Document) Root() *goquery.Selection {
	return d.doc.Selection
}

// Find returns the elements matching a CSS selector
func (d *Document) Find(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

// Exists reports whether any element matches selector
func (d *Document) Exists(selector string) bool {
	return d.doc.Find(selector).Length() > 0
}

// Title returns the cleaned <title> text
func (d *Document) Title() string {
	return CleanText(d.doc.Find("title").First().Text())
}
