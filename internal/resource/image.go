package resource

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// nativeFormats can be placed in a .docx as-is. Anything else the image
// package can decode is converted to PNG first.
var nativeFormats = map[string]bool{
	"png":  true,
	"jpeg": true,
	"gif":  true,
}

// Picture is a decoded-enough image ready to embed.
type Picture struct {
	Path   string
	Format string // Format of the file on disk
	Data   []byte // Bytes to embed; PNG when the source format was converted
	Width  int    // Pixels
	Height int
}

// LoadImage reads and probes rel under root. A file that exists but cannot
// be decoded returns an error that is not ErrMissing.
func LoadImage(root, rel string) (*Picture, error) {
	path := filepath.Join(root, rel)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissing, rel)
		}
		return nil, fmt.Errorf("stat %s: %w", rel, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", rel)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rel, err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", rel, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("decode %s: empty image %dx%d", rel, cfg.Width, cfg.Height)
	}

	pic := &Picture{
		Path:   rel,
		Format: format,
		Data:   data,
		Width:  cfg.Width,
		Height: cfg.Height,
	}
	if nativeFormats[format] {
		return pic, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", rel, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("convert %s to png: %w", rel, err)
	}
	pic.Data = buf.Bytes()
	return pic, nil
}

// ScaleToWidth returns the display size in EMUs for a picture shown at
// width inches, keeping its aspect ratio.
func (p *Picture) ScaleToWidth(inches float64, emuPerInch int64) (int64, int64) {
	cx := int64(inches * float64(emuPerInch))
	cy := cx * int64(p.Height) / int64(p.Width)
	return cx, cy
}
