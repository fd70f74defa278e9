// Package outline defines the report template: the fixed narrative and the
// resources the builder pulls in from the working directory.
package outline

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Template describes a report from top to bottom.
type Template struct {
	Output        string  `yaml:"output"`
	Font          Font    `yaml:"font"`
	Code          Code    `yaml:"code"`
	ScreenshotDir string  `yaml:"screenshot_dir"`
	ImageWidth    float64 `yaml:"image_width"` // inches
	Blocks        []Block `yaml:"blocks"`
}

// Font is the body font.
type Font struct {
	Name string  `yaml:"name"`
	Size float64 `yaml:"size"`
}

// Code styles embedded listings.
type Code struct {
	Font  string  `yaml:"font"`
	Size  float64 `yaml:"size"`
	Style string  `yaml:"style"`
}

// Block is one template entry. Exactly one of Heading, Text, Spacer,
// PageBreak, Snippet or Screenshot is set.
type Block struct {
	Heading    string      `yaml:"heading,omitempty"`
	Level      int         `yaml:"level,omitempty"`
	Text       string      `yaml:"text,omitempty"` // inline Markdown
	Align      string      `yaml:"align,omitempty"`
	Spacer     bool        `yaml:"spacer,omitempty"`
	PageBreak  bool        `yaml:"page_break,omitempty"`
	Snippet    *Snippet    `yaml:"snippet,omitempty"`
	Screenshot *Screenshot `yaml:"screenshot,omitempty"`
}

// Snippet is a source file embedded as a code listing.
type Snippet struct {
	Name     string `yaml:"name"` // shown in the not-found placeholder
	Path     string `yaml:"path"` // relative to the working directory
	MaxLines int    `yaml:"max_lines,omitempty"`
	Elision  string `yaml:"elision,omitempty"`
}

// Screenshot is an image under ScreenshotDir.
type Screenshot struct {
	File    string `yaml:"file"`
	Caption string `yaml:"caption"`
}

// Default returns the built-in DSA Mastery report template.
func Default() *Template {
	t, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("outline: built-in template: %v", err))
	}
	return t
}

// DefaultYAML returns the source of the built-in template.
func DefaultYAML() []byte {
	out := make([]byte, len(defaultYAML))
	copy(out, defaultYAML)
	return out
}

// Load reads a template from a YAML file.
func Load(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", path, err)
	}
	return t, nil
}

// Parse decodes and validates a template.
func Parse(data []byte) (*Template, error) {
	var t Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	t.applyDefaults()
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *Template) applyDefaults() {
	if t.Output == "" {
		t.Output = "report.docx"
	}
	if t.Font.Name == "" {
		t.Font.Name = "Calibri"
	}
	if t.Font.Size <= 0 {
		t.Font.Size = 11
	}
	if t.Code.Font == "" {
		t.Code.Font = "Courier New"
	}
	if t.Code.Size <= 0 {
		t.Code.Size = 8
	}
	if t.ImageWidth <= 0 {
		t.ImageWidth = 6
	}
}

// Validate checks that every block has exactly one kind.
func (t *Template) Validate() error {
	if filepath.Ext(t.Output) != ".docx" {
		return fmt.Errorf("output %q must have a .docx extension", t.Output)
	}
	if len(t.Blocks) == 0 {
		return fmt.Errorf("template has no blocks")
	}
	for i, b := range t.Blocks {
		n := 0
		if b.Heading != "" {
			n++
			if b.Level < 0 || b.Level > 9 {
				return fmt.Errorf("block %d: heading level %d out of range 0-9", i, b.Level)
			}
		}
		if b.Text != "" {
			n++
		}
		if b.Spacer {
			n++
		}
		if b.PageBreak {
			n++
		}
		if b.Snippet != nil {
			n++
			if b.Snippet.Path == "" {
				return fmt.Errorf("block %d: snippet path is required", i)
			}
			if b.Snippet.MaxLines < 0 {
				return fmt.Errorf("block %d: snippet max_lines must not be negative", i)
			}
		}
		if b.Screenshot != nil {
			n++
			if b.Screenshot.File == "" {
				return fmt.Errorf("block %d: screenshot file is required", i)
			}
		}
		if n != 1 {
			return fmt.Errorf("block %d: expected exactly one of heading, text, spacer, page_break, snippet, screenshot; got %d", i, n)
		}
		switch b.Align {
		case "", "left", "center", "right", "both":
		default:
			return fmt.Errorf("block %d: unknown alignment %q", i, b.Align)
		}
	}
	return nil
}

// DisplayName is the name a snippet placeholder uses.
func (s *Snippet) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return filepath.Base(s.Path)
}

// ScreenshotPath returns the screenshot path relative to the working directory.
func (t *Template) ScreenshotPath(s *Screenshot) string {
	return filepath.Join(t.ScreenshotDir, s.File)
}
