package doctree

// BlockKind identifies the type of a Block.
type BlockKind int

const (
	KindHeading BlockKind = iota
	KindParagraph
	KindPageBreak
	KindImage
)

func (k BlockKind) String() string {
	switch k {
	case KindHeading:
		return "heading"
	case KindParagraph:
		return "paragraph"
	case KindPageBreak:
		return "page-break"
	case KindImage:
		return "image"
	}
	return "unknown"
}

// Alignment values map onto w:jc.
const (
	AlignLeft   = ""
	AlignCenter = "center"
)

// Document is an append-only sequence of blocks built for a single run.
type Document struct {
	DefaultFont     string  // Body font family
	DefaultFontSize float64 // Body font size in points
	Blocks          []Block
}

// Block is one top-level element of the document body.
type Block struct {
	Kind  BlockKind
	Level int    // Heading level; 0 is the document title
	Style string // Paragraph style name, e.g. "No Spacing"
	Align string
	Runs  []TextRun // Heading and paragraph content
	Image *Image    // Set for KindImage
}

// TextRun is a styled span of text inside a block.
type TextRun struct {
	Text   string
	Font   string  // Empty inherits the document default
	Size   float64 // Points; 0 inherits
	Bold   bool
	Italic bool
	Break  bool // Line break after the text
}

// Image is an embedded picture with its display size in EMUs.
type Image struct {
	Name   string
	Data   []byte
	Width  int64
	Height int64
}

// EMUPerInch is the number of English Metric Units in an inch.
const EMUPerInch = 914400

// New returns an empty document with the given body font.
func New(font string, size float64) *Document {
	return &Document{DefaultFont: font, DefaultFontSize: size}
}

// AddHeading appends a heading. Level 0 is the title.
func (d *Document) AddHeading(text string, level int) *Block {
	return d.add(Block{Kind: KindHeading, Level: level, Runs: []TextRun{{Text: text}}})
}

// AddParagraph appends a paragraph made of runs. A paragraph with no runs
// is an empty spacer.
func (d *Document) AddParagraph(runs ...TextRun) *Block {
	return d.add(Block{Kind: KindParagraph, Runs: runs})
}

// AddText appends a paragraph with a single plain run.
func (d *Document) AddText(text string) *Block {
	return d.AddParagraph(TextRun{Text: text})
}

func (d *Document) AddPageBreak() *Block {
	return d.add(Block{Kind: KindPageBreak})
}

func (d *Document) AddImage(img *Image) *Block {
	return d.add(Block{Kind: KindImage, Image: img})
}

func (d *Document) add(b Block) *Block {
	d.Blocks = append(d.Blocks, b)
	return &d.Blocks[len(d.Blocks)-1]
}

// Text concatenates the text of a block's runs, turning breaks into newlines.
func (b *Block) Text() string {
	var n int
	for _, r := range b.Runs {
		n += len(r.Text) + 1
	}
	buf := make([]byte, 0, n)
	for _, r := range b.Runs {
		buf = append(buf, r.Text...)
		if r.Break {
			buf = append(buf, '\n')
		}
	}
	return string(buf)
}

// Outline is a heading hierarchy recovered from a persisted document.
type Outline struct {
	Title    string
	Children []*Section
}

// Section is one heading of an Outline with what sits under it.
type Section struct {
	Title      string
	Level      int
	Paragraphs int
	Images     int
	Children   []*Section
}
