package render

import (
	"fmt"
	"os"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// Font is a TrueType font with a per-size face cache.
// It implements Measurer. A Font is not safe for concurrent use.
type Font struct {
	ttf   *truetype.Font
	faces map[float64]font.Face
}

// ParseFont parses TrueType font data
func ParseFont(data []byte) (*Font, error) {
	ttf, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return &Font{ttf: ttf, faces: make(map[float64]font.Face)}, nil
}

// LoadFont reads a TrueType font file. An empty path selects the embedded
// Go Regular font.
func LoadFont(path string) (*Font, error) {
	if path == "" {
		return DefaultFont(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}
	return ParseFont(data)
}

// DefaultFont returns the embedded Go Regular font
func DefaultFont() *Font {
	f, err := ParseFont(goregular.TTF)
	if err != nil {
		panic(fmt.Sprintf("embedded font is invalid: %v", err))
	}
	return f
}

// Face returns the font face for a size in pixels
func (f *Font) Face(size float64) font.Face {
	if face, ok := f.faces[size]; ok {
		return face
	}
	face := truetype.NewFace(f.ttf, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	f.faces[size] = face
	return face
}

// MeasureString returns the advance width of s in pixels
func (f *Font) MeasureString(s string, size float64) float64 {
	return float64(font.MeasureString(f.Face(size), s)) / 64
}

// Metrics returns the line height and ascent in pixels
func (f *Font) Metrics(size float64) (lineHeight, ascent float64) {
	m := f.Face(size).Metrics()
	return float64(m.Height) / 64, float64(m.Ascent) / 64
}
