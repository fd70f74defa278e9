// Package markup turns the inline Markdown used in report templates into
// styled text runs.
package markup

import (
	"github.com/dgallion1/docreport/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MonoFont is used for `code spans` and fenced blocks.
const MonoFont = "Courier New"

type style struct {
	bold   bool
	italic bool
	mono   bool
}

// Parse converts Markdown into paragraphs of runs. Blank lines separate
// paragraphs; line breaks inside a paragraph become run breaks.
func Parse(src string) [][]doctree.TextRun {
	source := []byte(src)
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(source))

	var paras [][]doctree.TextRun
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		var runs []doctree.TextRun
		collect(n, source, style{}, &runs)
		runs = merge(runs)
		if len(runs) > 0 {
			runs[len(runs)-1].Break = false
			paras = append(paras, runs)
		}
	}
	return paras
}

// Runs parses src and flattens every paragraph into one run list, with a
// break between paragraphs.
func Runs(src string) []doctree.TextRun {
	var out []doctree.TextRun
	for i, p := range Parse(src) {
		if i > 0 {
			out[len(out)-1].Break = true
		}
		out = append(out, p...)
	}
	return out
}

func collect(n ast.Node, src []byte, st style, runs *[]doctree.TextRun) {
	switch node := n.(type) {
	case *ast.Text:
		*runs = append(*runs, run(string(node.Segment.Value(src)), st))
		if node.SoftLineBreak() || node.HardLineBreak() {
			(*runs)[len(*runs)-1].Break = true
		}
		return
	case *ast.String:
		*runs = append(*runs, run(string(node.Value), st))
		return
	case *ast.Emphasis:
		if node.Level >= 2 {
			st.bold = true
		} else {
			st.italic = true
		}
	case *ast.CodeSpan:
		st.mono = true
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		st.mono = true
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			v := string(line.Value(src))
			r := run(trimNewline(v), st)
			r.Break = true
			*runs = append(*runs, r)
		}
		return
	}

	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		collect(c, src, st, runs)
	}
	// Block children (list items, quotes) end on a break.
	if n.Type() == ast.TypeBlock && n.Parent() != nil && n.Parent().Kind() != ast.KindDocument && len(*runs) > 0 {
		(*runs)[len(*runs)-1].Break = true
	}
}

func run(s string, st style) doctree.TextRun {
	r := doctree.TextRun{Text: s, Bold: st.bold, Italic: st.italic}
	if st.mono {
		r.Font = MonoFont
	}
	return r
}

// merge joins neighbouring runs that share a style.
func merge(runs []doctree.TextRun) []doctree.TextRun {
	var out []doctree.TextRun
	for _, r := range runs {
		if r.Text == "" && !r.Break {
			continue
		}
		if n := len(out); n > 0 {
			last := &out[n-1]
			if !last.Break && last.Bold == r.Bold && last.Italic == r.Italic && last.Font == r.Font {
				last.Text += r.Text
				last.Break = r.Break
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
