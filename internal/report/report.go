// Package report assembles the report Document from a template and the
// optional resources found in the working directory.
package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgallion1/docreport/internal/doctree"
	"github.com/dgallion1/docreport/internal/markup"
	"github.com/dgallion1/docreport/internal/outline"
	"github.com/dgallion1/docreport/internal/resource"
	"go.uber.org/zap"
)

// Kind is the type of optional resource an Outcome describes.
type Kind string

const (
	KindSnippet    Kind = "snippet"
	KindScreenshot Kind = "screenshot"
)

// Status is how a resource ended up in the document.
type Status string

const (
	StatusEmbedded Status = "embedded"
	StatusMissing  Status = "missing"
	StatusFailed   Status = "failed"
)

// Outcome records what happened to one optional resource.
type Outcome struct {
	Kind   Kind
	Name   string
	Path   string
	Status Status
	Detail string // Placeholder text or truncation note
}

// Result is a fully built document and the per-resource outcomes.
type Result struct {
	Doc      *doctree.Document
	Outcomes []Outcome
}

// Placeholders counts outcomes that did not embed.
func (r *Result) Placeholders() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status != StatusEmbedded {
			n++
		}
	}
	return n
}

// Builder turns a template into a Document.
type Builder struct {
	root string
	tmpl *outline.Template
	log  *zap.Logger
	doc  *doctree.Document
	res  []Outcome
}

// NewBuilder creates a builder that resolves resources relative to root.
func NewBuilder(root string, tmpl *outline.Template, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{root: root, tmpl: tmpl, log: log}
}

// Build appends every template block in order. Missing or unreadable
// resources become placeholder paragraphs; only cancellation fails a build.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	b.doc = doctree.New(b.tmpl.Font.Name, b.tmpl.Font.Size)
	b.res = nil

	for i := range b.tmpl.Blocks {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("build cancelled: %w", err)
		}
		blk := &b.tmpl.Blocks[i]
		switch {
		case blk.Heading != "":
			b.doc.AddHeading(blk.Heading, blk.Level).Align = blk.Align
		case blk.Text != "":
			b.addText(blk.Text, blk.Align)
		case blk.Spacer:
			b.doc.AddParagraph()
		case blk.PageBreak:
			b.doc.AddPageBreak()
		case blk.Snippet != nil:
			b.addSnippet(blk.Snippet)
		case blk.Screenshot != nil:
			b.addScreenshot(blk.Screenshot)
		}
	}

	return &Result{Doc: b.doc, Outcomes: b.res}, nil
}

func (b *Builder) addText(src, align string) {
	for _, runs := range markup.Parse(src) {
		b.doc.AddParagraph(runs...).Align = align
	}
}

// embedOrPlaceholder runs embed and, when it fails, writes a placeholder
// paragraph in its place. Every resource leaves an outcome.
func (b *Builder) embedOrPlaceholder(o Outcome, embed func() (string, error), placeholder func(error) string) {
	detail, err := embed()
	switch {
	case err == nil:
		o.Status = StatusEmbedded
		o.Detail = detail
		b.log.Debug("resource embedded",
			zap.String("kind", string(o.Kind)),
			zap.String("path", o.Path),
			zap.String("detail", detail))
	default:
		o.Status = StatusFailed
		if errors.Is(err, resource.ErrMissing) {
			o.Status = StatusMissing
		}
		o.Detail = placeholder(err)
		b.doc.AddText(o.Detail)
		b.log.Warn("resource replaced by placeholder",
			zap.String("kind", string(o.Kind)),
			zap.String("path", o.Path),
			zap.String("status", string(o.Status)),
			zap.Error(err))
	}
	b.res = append(b.res, o)
}

func (b *Builder) addSnippet(s *outline.Snippet) {
	name := s.DisplayName()
	o := Outcome{Kind: KindSnippet, Name: name, Path: s.Path}

	b.embedOrPlaceholder(o, func() (string, error) {
		snip, err := resource.ReadSnippet(b.root, s.Path, s.MaxLines, s.Elision)
		if err != nil {
			return "", err
		}
		b.addListing(snip.Text)
		if snip.Truncated {
			return fmt.Sprintf("%d of %d lines", snip.Kept, snip.TotalLines), nil
		}
		return fmt.Sprintf("%d lines", snip.TotalLines), nil
	}, func(err error) string {
		if errors.Is(err, resource.ErrMissing) {
			return fmt.Sprintf("(%s not found)", name)
		}
		return fmt.Sprintf("(%s could not be read: %v)", name, err)
	})
}

// addListing writes code as one paragraph with a break per source line.
func (b *Builder) addListing(text string) {
	lines := resource.Lines(text)
	runs := make([]doctree.TextRun, len(lines))
	for i, line := range lines {
		runs[i] = doctree.TextRun{
			Text:  line,
			Font:  b.tmpl.Code.Font,
			Size:  b.tmpl.Code.Size,
			Break: i < len(lines)-1,
		}
	}
	b.doc.AddParagraph(runs...).Style = b.tmpl.Code.Style
}

func (b *Builder) addScreenshot(s *outline.Screenshot) {
	path := b.tmpl.ScreenshotPath(s)
	o := Outcome{Kind: KindScreenshot, Name: s.Caption, Path: path}

	pic, err := resource.LoadImage(b.root, path)
	if errors.Is(err, resource.ErrMissing) {
		b.embedOrPlaceholder(o, func() (string, error) { return "", err }, func(error) string {
			return fmt.Sprintf("[Screenshot missing: %s - File not found at %s]", s.Caption, path)
		})
		return
	}

	// The caption is written whenever the file exists, even if it turns
	// out not to be embeddable.
	b.doc.AddHeading(s.Caption, 3)
	b.embedOrPlaceholder(o, func() (string, error) {
		if err != nil {
			return "", err
		}
		cx, cy := pic.ScaleToWidth(b.tmpl.ImageWidth, doctree.EMUPerInch)
		b.doc.AddImage(&doctree.Image{Name: s.File, Data: pic.Data, Width: cx, Height: cy})
		return fmt.Sprintf("%s %dx%d", pic.Format, pic.Width, pic.Height), nil
	}, func(err error) string {
		return fmt.Sprintf("[Error adding image: %v]", err)
	})
	b.doc.AddParagraph(doctree.TextRun{Break: true})
}
