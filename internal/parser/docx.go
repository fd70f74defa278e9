package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dgallion1/docreport/internal/doctree"
	"github.com/fumiama/go-docx"
)

// Paragraph is one body paragraph of a parsed .docx.
type Paragraph struct {
	Style  string
	Text   string
	Images int
}

// ParseDOCX reads every body paragraph of a .docx in order.
func ParseDOCX(r io.ReaderAt, size int64) ([]Paragraph, error) {
	doc, err := docx.Parse(r, size)
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var out []Paragraph
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		p := Paragraph{Text: docxParagraphText(para)}
		if para.Properties != nil && para.Properties.Style != nil {
			p.Style = para.Properties.Style.Val
		}
		for _, child := range para.Children {
			run, ok := child.(*docx.Run)
			if !ok {
				continue
			}
			for _, rc := range run.Children {
				if _, ok := rc.(*docx.Drawing); ok {
					p.Images++
				}
			}
		}
		out = append(out, p)
	}
	return out, nil
}

// ParseFile opens path and parses it with ParseDOCX.
func ParseFile(path string) ([]Paragraph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	return ParseDOCX(f, info.Size())
}

// BuildOutline nests paragraphs under their headings. Paragraphs and
// images are counted on the closest enclosing heading.
func BuildOutline(paras []Paragraph) *doctree.Outline {
	tree := &doctree.Outline{}

	type stackEntry struct {
		node  *doctree.Section
		level int
	}
	root := &doctree.Section{}
	stack := []stackEntry{{node: root, level: -1}}

	for _, p := range paras {
		level := headingLevel(p.Style)
		if level == 0 && tree.Title == "" {
			tree.Title = p.Text
			continue
		}
		if level > 0 && p.Text != "" {
			sec := &doctree.Section{Title: p.Text, Level: level}
			for len(stack) > 1 && stack[len(stack)-1].level >= level {
				stack = stack[:len(stack)-1]
			}
			parent := stack[len(stack)-1].node
			parent.Children = append(parent.Children, sec)
			stack = append(stack, stackEntry{node: sec, level: level})
			continue
		}

		top := stack[len(stack)-1].node
		top.Images += p.Images
		if strings.TrimSpace(p.Text) != "" {
			top.Paragraphs++
		}
	}

	tree.Children = root.Children
	return tree
}

// headingLevel returns 0 for the title, 1-9 for headings and -1 otherwise.
func headingLevel(style string) int {
	if strings.EqualFold(style, "Title") {
		return 0
	}
	s := strings.ToLower(strings.ReplaceAll(style, " ", ""))
	if !strings.HasPrefix(s, "heading") {
		return -1
	}
	rest := strings.TrimPrefix(s, "heading")
	if len(rest) != 1 || rest[0] < '1' || rest[0] > '9' {
		return -1
	}
	return int(rest[0] - '0')
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			switch c := rc.(type) {
			case *docx.Text:
				buf.WriteString(c.Text)
			case *docx.Tab:
				buf.WriteByte('\t')
			case *docx.BarterRabbet:
				// Page and column breaks carry a type; plain line breaks do not.
				if c.Type == "" {
					buf.WriteByte('\n')
				}
			}
		}
	}
	return buf.String()
}
