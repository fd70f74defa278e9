// Package render writes a doctree.Document as a .docx file.
package render

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/docreport/internal/doctree"
	"github.com/fumiama/go-docx"
	"go.uber.org/zap"
)

// Renderer converts documents with go-docx.
type Renderer struct {
	log *zap.Logger
}

func New(log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{log: log}
}

// SelfCheck renders a one-paragraph document in memory. A failure means
// no report can be produced at all.
func (r *Renderer) SelfCheck() (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("docx backend panicked: %v", p)
		}
	}()
	doc := doctree.New("Calibri", 11)
	doc.AddHeading("self-check", 1)
	doc.AddText("ok")
	return r.Write(doc, io.Discard)
}

// Write renders doc to w.
func (r *Renderer) Write(doc *doctree.Document, w io.Writer) error {
	f := docx.New()
	used := make(map[string]bool)
	for i := range doc.Blocks {
		r.block(f, doc, &doc.Blocks[i], used)
	}

	theme, err := newThemeFS(used)
	if err != nil {
		return err
	}
	f.UseTemplate(templateName, docx.DefaultTemplateFilesList, theme)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

// WriteFile renders doc to path. The document is first written to a
// temporary file in the same directory and renamed into place, so a failed
// run never leaves a partial file at path.
func (r *Renderer) WriteFile(doc *doctree.Document, path string) error {
	var buf bytes.Buffer
	if err := r.Write(doc, &buf); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".docreport-*.docx")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}

func (r *Renderer) block(f *docx.Docx, doc *doctree.Document, b *doctree.Block, used map[string]bool) {
	switch b.Kind {
	case doctree.KindHeading:
		style := HeadingStyle(b.Level)
		used[style] = true
		p := f.AddParagraph().Style(style)
		justify(p, b.Align)
		for _, run := range b.Runs {
			preserveSpace(p.AddText(run.Text))
		}
	case doctree.KindParagraph:
		r.paragraph(f, doc, b, used)
	case doctree.KindPageBreak:
		f.AddParagraph().AddPageBreaks()
	case doctree.KindImage:
		r.image(f, b)
	}
}

// paragraph writes a block as one paragraph. Breaks between runs become
// <w:br/>; a break on the last run is the paragraph end itself.
func (r *Renderer) paragraph(f *docx.Docx, doc *doctree.Document, b *doctree.Block, used map[string]bool) {
	p := f.AddParagraph()
	if b.Style != "" {
		style := StyleID(b.Style)
		used[style] = true
		p.Style(style)
	}
	justify(p, b.Align)

	for i, run := range b.Runs {
		text := run.Text
		if run.Break && i < len(b.Runs)-1 {
			text += "\n"
		}
		if text == "" {
			continue
		}
		wr := p.AddText(text)
		preserveSpace(wr)
		styleRun(wr, doc, run)
	}
}

// preserveSpace keeps leading and trailing blanks in every w:t of a run;
// without it Word collapses code indentation and spaces between runs.
func preserveSpace(r *docx.Run) {
	for _, c := range r.Children {
		if t, ok := c.(*docx.Text); ok {
			t.XMLSpace = "preserve"
		}
	}
}

func (r *Renderer) image(f *docx.Docx, b *doctree.Block) {
	img := b.Image
	p := f.AddParagraph()
	run, err := p.AddInlineDrawing(img.Data)
	if err != nil {
		// The builder already probed the image; this only trips on formats
		// the docx library itself refuses.
		r.log.Warn("image rejected by docx writer", zap.String("image", img.Name), zap.Error(err))
		preserveSpace(p.AddText(fmt.Sprintf("[Error adding image: %v]", err)))
		return
	}
	for _, c := range run.Children {
		if d, ok := c.(*docx.Drawing); ok && d.Inline != nil {
			d.Inline.Size(img.Width, img.Height)
		}
	}
}

func styleRun(r *docx.Run, doc *doctree.Document, run doctree.TextRun) {
	font := run.Font
	if font == "" {
		font = doc.DefaultFont
	}
	size := run.Size
	if size <= 0 {
		size = doc.DefaultFontSize
	}
	if font != "" {
		r.Font(font, font, font, "")
	}
	if size > 0 {
		r.Size(HalfPoints(size))
	}
	if run.Bold {
		r.Bold()
	}
	if run.Italic {
		r.Italic()
	}
}

func justify(p *docx.Paragraph, align string) {
	switch align {
	case "":
	case "left":
		p.Justification("start")
	case "right":
		p.Justification("end")
	default:
		p.Justification(align)
	}
}

// HeadingStyle maps a heading level to its built-in style id.
func HeadingStyle(level int) string {
	if level <= 0 {
		return "Title"
	}
	return "Heading" + strconv.Itoa(level)
}

// StyleID turns a style name such as "No Spacing" into its id.
func StyleID(name string) string {
	return strings.ReplaceAll(name, " ", "")
}

// HalfPoints formats a point size the way w:sz expects it.
func HalfPoints(pt float64) string {
	return strconv.Itoa(int(pt*2 + 0.5))
}
