package render

import (
	"archive/zip"
	"bytes"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/dgallion1/docreport/internal/doctree"
	"github.com/dgallion1/docreport/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func render(t *testing.T, doc *doctree.Document) []parser.Paragraph {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, New(nil).Write(doc, &buf))
	paras, err := parser.ParseDOCX(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	return paras
}

// parts renders doc and returns the named zip entries.
func parts(t *testing.T, doc *doctree.Document, names ...string) map[string]string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, New(nil).Write(doc, &buf))
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	out := make(map[string]string, len(names))
	for _, name := range names {
		f, err := zr.Open(name)
		require.NoError(t, err, name)
		data, err := io.ReadAll(f)
		f.Close()
		require.NoError(t, err, name)
		out[name] = string(data)
	}
	return out
}

func TestWrite_HeadingsAndParagraphs(t *testing.T) {
	doc := doctree.New("Calibri", 11)
	doc.AddHeading("Report", 0).Align = doctree.AlignCenter
	doc.AddHeading("1. Aim", 1)
	doc.AddParagraph(
		doctree.TextRun{Text: "Tech Stack: ", Bold: true},
		doctree.TextRun{Text: "Go", Break: true},
		doctree.TextRun{Text: "UI: ", Bold: true},
		doctree.TextRun{Text: "none"},
	)

	paras := render(t, doc)
	require.Len(t, paras, 3)
	assert.Equal(t, parser.Paragraph{Style: "Title", Text: "Report"}, paras[0])
	assert.Equal(t, parser.Paragraph{Style: "Heading1", Text: "1. Aim"}, paras[1])
	assert.Equal(t, "Tech Stack: Go\nUI: none", paras[2].Text)
}

func TestWrite_ListingLinesKeepStyle(t *testing.T) {
	doc := doctree.New("Calibri", 11)
	doc.AddParagraph(
		doctree.TextRun{Text: "a := 1", Font: "Courier New", Size: 8, Break: true},
		doctree.TextRun{Text: "", Font: "Courier New", Size: 8, Break: true},
		doctree.TextRun{Text: "b := 2", Font: "Courier New", Size: 8},
	).Style = "No Spacing"

	paras := render(t, doc)
	require.Len(t, paras, 1)
	assert.Equal(t, "NoSpacing", paras[0].Style)
	assert.Equal(t, "a := 1\n\nb := 2", paras[0].Text)
}

func TestWrite_TrailingBreakEndsParagraph(t *testing.T) {
	doc := doctree.New("Calibri", 11)
	doc.AddParagraph(doctree.TextRun{Break: true})

	xml := parts(t, doc, "word/document.xml")["word/document.xml"]
	assert.NotContains(t, xml, "<w:br")

	paras := render(t, doc)
	require.Len(t, paras, 1)
	assert.Equal(t, "", paras[0].Text)
}

func TestWrite_DocumentXMLKeepsIndentationAndBreaks(t *testing.T) {
	doc := doctree.New("Calibri", 11)
	doc.AddParagraph(
		doctree.TextRun{Text: "int f() {", Font: "Courier New", Size: 8, Break: true},
		doctree.TextRun{Text: "    return 1;", Font: "Courier New", Size: 8, Break: true},
		doctree.TextRun{Text: "}", Font: "Courier New", Size: 8},
	).Style = "No Spacing"
	doc.AddParagraph(
		doctree.TextRun{Text: "Tech Stack: ", Bold: true},
		doctree.TextRun{Text: "Go"},
	)

	xml := parts(t, doc, "word/document.xml")["word/document.xml"]
	assert.Contains(t, xml, `<w:t xml:space="preserve">    return 1;</w:t>`)
	assert.Contains(t, xml, `<w:t xml:space="preserve">Tech Stack: </w:t>`)
	assert.Equal(t, 2, strings.Count(xml, "<w:br"), "one line break per listing line boundary")
	assert.Equal(t, 2, strings.Count(xml, "<w:p>")+strings.Count(xml, "<w:p "))
	assert.Contains(t, xml, `w:ascii="Courier New"`)
	assert.Contains(t, xml, `w:hAnsi="Courier New"`)
}

func TestWrite_DocumentXMLImageExtent(t *testing.T) {
	doc := doctree.New("Calibri", 11)
	doc.AddImage(&doctree.Image{Name: "home.png", Data: pngBytes(t, 4, 2), Width: 6 * doctree.EMUPerInch, Height: 3 * doctree.EMUPerInch})

	xml := parts(t, doc, "word/document.xml")["word/document.xml"]
	assert.Contains(t, xml, `cx="5486400"`)
	assert.Contains(t, xml, `cy="2743200"`)
}

var (
	pStyleRe  = regexp.MustCompile(`<w:pStyle w:val="([^"]+)"`)
	styleIDRe = regexp.MustCompile(`w:styleId="([^"]+)"`)
)

func TestWrite_ParagraphStylesAreDefined(t *testing.T) {
	doc := doctree.New("Calibri", 11)
	doc.AddHeading("DSA Mastery", 0)
	doc.AddHeading("1. Aim", 1)
	doc.AddHeading("Sub", 2)
	doc.AddHeading("home.png", 3)
	doc.AddText("body")
	doc.AddParagraph(doctree.TextRun{Text: "x := 1"}).Style = "No Spacing"
	doc.AddParagraph(doctree.TextRun{Text: "quote"}).Style = "Intense Quote"

	p := parts(t, doc, "word/document.xml", "word/styles.xml")
	defined := map[string]bool{}
	for _, m := range styleIDRe.FindAllStringSubmatch(p["word/styles.xml"], -1) {
		defined[m[1]] = true
	}

	var referenced []string
	for _, m := range pStyleRe.FindAllStringSubmatch(p["word/document.xml"], -1) {
		referenced = append(referenced, m[1])
		assert.True(t, defined[m[1]], "pStyle %q has no w:styleId in styles.xml", m[1])
	}
	assert.ElementsMatch(t, []string{"Title", "Heading1", "Heading2", "Heading3", "NoSpacing", "IntenseQuote"}, referenced)
	assert.Contains(t, p["word/styles.xml"], `<w:name w:val="heading 1"/>`)
	assert.Contains(t, p["word/styles.xml"], `<w:name w:val="No Spacing"/>`)
}

func TestWithStyles(t *testing.T) {
	base := []byte(`<w:styles><w:style w:type="paragraph" w:styleId="a"/><w:style w:type="paragraph" w:styleId="Title"/></w:styles>`)

	out, err := withStyles(base, map[string]bool{"Title": true, "Heading2": true, "NoSpacing": true})
	require.NoError(t, err)
	s := string(out)
	assert.Equal(t, 1, strings.Count(s, `w:styleId="Title"`), "existing definitions are not duplicated")
	assert.Contains(t, s, `w:styleId="Heading2"`)
	assert.Contains(t, s, `<w:outlineLvl w:val="1"/>`)
	assert.Contains(t, s, `w:styleId="NoSpacing"`)
	assert.True(t, strings.HasSuffix(s, "</w:styles>"))
	assert.Less(t, strings.Index(s, `w:styleId="Heading2"`), strings.Index(s, `w:styleId="NoSpacing"`))

	_, err = withStyles([]byte("<w:styles>"), nil)
	assert.Error(t, err)
}

func TestWrite_ImageAndPageBreak(t *testing.T) {
	doc := doctree.New("Calibri", 11)
	doc.AddPageBreak()
	doc.AddImage(&doctree.Image{Name: "home.png", Data: pngBytes(t, 4, 2), Width: 6 * doctree.EMUPerInch, Height: 3 * doctree.EMUPerInch})

	paras := render(t, doc)
	require.Len(t, paras, 2)
	assert.Zero(t, paras[0].Images)
	assert.Equal(t, 1, paras[1].Images)
}

func TestWrite_UnembeddableImageFallsBackToText(t *testing.T) {
	doc := doctree.New("Calibri", 11)
	doc.AddImage(&doctree.Image{Name: "bad.png", Data: []byte("nope"), Width: 1, Height: 1})

	paras := render(t, doc)
	require.Len(t, paras, 1)
	assert.Zero(t, paras[0].Images)
	assert.Contains(t, paras[0].Text, "[Error adding image:")
}

func TestWriteFile_ReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "report.docx")
	require.NoError(t, os.WriteFile(out, []byte("old"), 0o644))

	doc := doctree.New("Calibri", 11)
	doc.AddText("hello")
	require.NoError(t, New(nil).WriteFile(doc, out))

	paras, err := parser.ParseFile(out)
	require.NoError(t, err)
	require.Len(t, paras, 1)
	assert.Equal(t, "hello", paras[0].Text)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestWriteFile_MissingDirectoryWritesNothing(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nope", "report.docx")
	doc := doctree.New("Calibri", 11)
	doc.AddText("hello")

	err := New(nil).WriteFile(doc, out)
	require.Error(t, err)
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSelfCheck(t *testing.T) {
	assert.NoError(t, New(nil).SelfCheck())
}

func TestStyleHelpers(t *testing.T) {
	assert.Equal(t, "Title", HeadingStyle(0))
	assert.Equal(t, "Heading3", HeadingStyle(3))
	assert.Equal(t, "NoSpacing", StyleID("No Spacing"))
	assert.Equal(t, "16", HalfPoints(8))
	assert.Equal(t, "22", HalfPoints(11))
}
