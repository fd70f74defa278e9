package render

import (
	"bytes"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fumiama/go-docx"
)

const (
	templateName = "default"
	stylesPart   = "word/styles.xml"
)

// paragraphStyles are the definitions the report relies on. go-docx's
// default theme only carries Normal and the table/list basics.
var paragraphStyles = map[string]string{
	"Title": `<w:style w:type="paragraph" w:styleId="Title">` +
		`<w:name w:val="Title"/><w:next w:val="a"/><w:uiPriority w:val="10"/><w:qFormat/>` +
		`<w:pPr><w:spacing w:before="240" w:after="240"/><w:contextualSpacing/><w:jc w:val="center"/></w:pPr>` +
		`<w:rPr><w:b/><w:kern w:val="28"/><w:sz w:val="56"/><w:szCs w:val="56"/></w:rPr>` +
		`</w:style>`,
	"NoSpacing": `<w:style w:type="paragraph" w:styleId="NoSpacing">` +
		`<w:name w:val="No Spacing"/><w:uiPriority w:val="1"/><w:qFormat/>` +
		`<w:pPr><w:spacing w:before="0" w:after="0" w:line="240" w:lineRule="auto"/><w:jc w:val="left"/></w:pPr>` +
		`</w:style>`,
}

// headingSizes holds w:sz (half-points) per heading level.
var headingSizes = [...]int{0, 32, 26, 24, 22, 22, 22, 22, 22, 22}

func headingStyleXML(level int) string {
	id := HeadingStyle(level)
	return fmt.Sprintf(`<w:style w:type="paragraph" w:styleId="%s">`+
		`<w:name w:val="heading %d"/><w:next w:val="a"/><w:uiPriority w:val="9"/><w:qFormat/>`+
		`<w:pPr><w:keepNext/><w:keepLines/><w:spacing w:before="240" w:after="120"/><w:jc w:val="left"/><w:outlineLvl w:val="%d"/></w:pPr>`+
		`<w:rPr><w:b/><w:bCs/><w:sz w:val="%d"/><w:szCs w:val="%d"/></w:rPr>`+
		`</w:style>`, id, level, level-1, headingSizes[level], headingSizes[level])
}

// styleXML returns the definition for a style id. Ids outside the known
// set get a plain paragraph style so the reference still resolves.
func styleXML(id string) string {
	if def, ok := paragraphStyles[id]; ok {
		return def
	}
	if strings.HasPrefix(id, "Heading") {
		if n, err := strconv.Atoi(strings.TrimPrefix(id, "Heading")); err == nil && n >= 1 && n <= 9 {
			return headingStyleXML(n)
		}
	}
	return fmt.Sprintf(`<w:style w:type="paragraph" w:customStyle="1" w:styleId="%s"><w:name w:val="%s"/><w:basedOn w:val="a"/></w:style>`, id, id)
}

// withStyles returns the default theme's styles.xml with definitions for
// every id in used that it does not already declare.
func withStyles(base []byte, used map[string]bool) ([]byte, error) {
	const closing = "</w:styles>"
	idx := bytes.LastIndex(base, []byte(closing))
	if idx < 0 {
		return nil, fmt.Errorf("styles.xml: missing %s", closing)
	}

	ids := make([]string, 0, len(used))
	for id := range used {
		if !bytes.Contains(base, []byte(`w:styleId="`+id+`"`)) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	var buf bytes.Buffer
	buf.Grow(len(base) + 1024*len(ids))
	buf.Write(base[:idx])
	for _, id := range ids {
		buf.WriteString(styleXML(id))
	}
	buf.Write(base[idx:])
	return buf.Bytes(), nil
}

// themeFS serves go-docx's embedded default theme with styles.xml
// replaced.
type themeFS struct {
	styles []byte
}

func newThemeFS(used map[string]bool) (*themeFS, error) {
	base, err := fs.ReadFile(docx.TemplateXMLFS, themePath(stylesPart))
	if err != nil {
		return nil, fmt.Errorf("read default styles: %w", err)
	}
	styles, err := withStyles(base, used)
	if err != nil {
		return nil, err
	}
	return &themeFS{styles: styles}, nil
}

func (t *themeFS) Open(name string) (fs.File, error) {
	if name == themePath(stylesPart) {
		return &memFile{Reader: bytes.NewReader(t.styles), name: path.Base(name)}, nil
	}
	return docx.TemplateXMLFS.Open(name)
}

func themePath(part string) string {
	return "xml/" + templateName + "/" + part
}

// memFile is an in-memory fs.File; it is its own FileInfo.
type memFile struct {
	*bytes.Reader
	name string
}

func (f *memFile) Stat() (fs.FileInfo, error) { return f, nil }
func (f *memFile) Close() error               { return nil }
func (f *memFile) Name() string               { return f.name }
func (f *memFile) Mode() fs.FileMode          { return 0o444 }
func (f *memFile) ModTime() time.Time         { return time.Time{} }
func (f *memFile) IsDir() bool                { return false }
func (f *memFile) Sys() any                   { return nil }
