package resource

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrMissing reports that an optional input does not exist.
var ErrMissing = errors.New("file not found")

// Snippet is source text ready to embed as a listing.
type Snippet struct {
	Path       string
	Text       string
	TotalLines int  // Lines in the source file
	Kept       int  // Lines copied into Text
	Truncated  bool // A line cap was applied
}

// ReadSnippet reads rel under root. With maxLines > 0 only the first
// maxLines lines are kept and elision is appended after a blank line;
// otherwise the file content is returned unchanged.
func ReadSnippet(root, rel string, maxLines int, elision string) (*Snippet, error) {
	path := filepath.Join(root, rel)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissing, rel)
		}
		return nil, fmt.Errorf("read %s: %w", rel, err)
	}

	content := string(data)
	lines := strings.Split(content, "\n")
	s := &Snippet{
		Path:       rel,
		Text:       content,
		TotalLines: len(lines),
		Kept:       len(lines),
	}
	if maxLines <= 0 {
		return s, nil
	}

	if len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	s.Kept = len(lines)
	s.Truncated = true
	s.Text = strings.Join(lines, "\n") + "\n\n" + elision + "\n"
	return s, nil
}

// Lines splits a listing into display lines. A trailing newline does not
// produce an extra empty line.
func Lines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}
