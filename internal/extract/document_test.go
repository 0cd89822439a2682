package extract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_HTML(t *testing.T) {
	doc, err := Parse([]byte(`<html><head><title> Pieris  brassicae </title></head>
<body><div class="speciestext"><p>White wings.</p></div></body></html>`), "text/html; charset=utf-8")
	require.NoError(t, err)

	assert.Equal(t, "Pieris brassicae", doc.Title())
	assert.True(t, doc.Exists("div.speciestext"))
	assert.False(t, doc.Exists("div.missing"))
	assert.Equal(t, 0, doc.Find("table").Length())
}

func TestParse_Latin1(t *testing.T) {
	// "Kännetecken" encoded as ISO-8859-1
	body := []byte("<html><body><td>K\xe4nnetecken: vit</td></body></html>")

	doc, err := Parse(body, "text/html; charset=iso-8859-1")
	require.NoError(t, err)
	assert.Equal(t, "Kännetecken: vit", CleanText(doc.Find("body").Text()))

	// Undeclared non-UTF-8 bytes fall back to windows-1252
	doc, err = Parse(body, "")
	require.NoError(t, err)
	assert.Contains(t, doc.Find("body").Text(), "Kännetecken")
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name        string
		body        []byte
		contentType string
	}{
		{"empty", nil, "text/html"},
		{"whitespace", []byte("  \n\t "), "text/html"},
		{"png", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), ""},
		{"declared pdf", []byte("%PDF-1.4 ..."), "application/pdf"},
		{"nul bytes", []byte("abc\x00\x01\x02def"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.body, tt.contentType)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrParse))
		})
	}
}

func TestParse_MalformedMarkupIsNotAnError(t *testing.T) {
	doc, err := Parse([]byte("<div><p>unclosed <b>bold</div><td>stray"), "text/html")
	require.NoError(t, err)
	assert.Contains(t, doc.Root().Text(), "unclosed bold")
}

func TestNodeText(t *testing.T) {
	doc, err := Parse([]byte(`<div id="x">
  <p>First   paragraph
     continues.</p>
  <p>Second<br>line two<br/>line three</p>
  <script>var x = 1;</script>
  <ul><li>one</li><li>two</li></ul>
  inline <i>italic</i> tail
</div>`), "text/html")
	require.NoError(t, err)

	want := "First paragraph continues.\nSecond\nline two\nline three\none\ntwo\ninline italic tail"
	assert.Equal(t, want, NodeText(doc.Find("#x")))
	assert.Equal(t, []string{"First paragraph continues.", "Second", "line two", "line three", "one", "two", "inline italic tail"}, Lines(doc.Find("#x")))
	assert.Equal(t, "", NodeText(doc.Find("#missing")))
	assert.Nil(t, Lines(doc.Find("#missing")))
}

func TestParagraphs(t *testing.T) {
	doc, err := Parse([]byte(`<div><p> a </p><p></p><p>b <b>c</b></p></div>`), "text/html")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b c"}, Paragraphs(doc.Root()))
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a b c", CleanText("  a  b\n\tc "))
	assert.Equal(t, "", CleanText(" \n "))
}

func TestFragmentText(t *testing.T) {
	assert.Equal(t, "One.\n\nTwo &amp; more.", FragmentText("<p>One.</p><p>Two &amp;amp; more.</p>"))
	assert.Equal(t, "Line a\nLine b", FragmentText("Line a<br>Line b"))
	assert.Equal(t, "plain text", FragmentText("plain   text"))
	assert.Equal(t, "", FragmentText("   "))
}

func TestStripCitations(t *testing.T) {
	assert.Equal(t, "Wingspan 60 mm. Larva green.",
		StripCitations("Wingspan 60 mm[1]. Larva green[a][citation needed]."))
	assert.Equal(t, "Keeps [brackets] alone", StripCitations("Keeps [brackets] alone"))
}
