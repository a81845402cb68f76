// Package render removes the original text from a comic page and draws
// translated text in its place.
//
// Composition runs in two passes over the page. First every original word
// box, padded by a few pixels, is erased with a fixed color, with the mean
// color found around it, or by inpainting. Then each translated block is
// fitted into its block rectangle with FitText and drawn centered.
//
// Drawing uses fogleman/gg with TrueType faces from golang/freetype. The
// embedded Go Regular font is used unless another TTF file is configured.
package render

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"github.com/gardar/comictrans/pkg/textblock"
)

// Options configures a Composer
type Options struct {
	Font         *Font        // nil selects DefaultFont
	Fit          FitOptions   // Font size range
	Erase        EraseOptions // How original words are removed
	TextColor    color.Color  // nil selects black
	AutoContrast bool         // pick black or white per block from its background
	Inpainter    Inpainter    // required for EraseInpaint
}

// Placement is the layout computed for one translated block
type Placement struct {
	Index  int                       // Position of the block in the input
	Block  textblock.TranslatedBlock // The block being drawn
	Rect   image.Rectangle           // Block bbox in pixels
	Layout Layout                    // Fitted text
}

// Composer draws translated blocks onto page images
type Composer struct {
	font         *Font
	fit          FitOptions
	eraser       *Eraser
	textColor    color.Color
	autoContrast bool
}

// NewComposer validates opts and returns a Composer
func NewComposer(opts Options) (*Composer, error) {
	eraser, err := NewEraser(opts.Erase, opts.Inpainter)
	if err != nil {
		return nil, err
	}
	f := opts.Font
	if f == nil {
		f = DefaultFont()
	}
	textColor := opts.TextColor
	if textColor == nil {
		textColor = color.Black
	}
	return &Composer{
		font:         f,
		fit:          opts.Fit.normalized(),
		eraser:       eraser,
		textColor:    textColor,
		autoContrast: opts.AutoContrast,
	}, nil
}

// Plan fits every block with non-blank translated text into its bbox on a
// raster of the given size
func (c *Composer) Plan(size image.Point, blocks []textblock.TranslatedBlock) []Placement {
	var out []Placement
	for i, b := range blocks {
		if strings.TrimSpace(b.TranslatedText) == "" {
			continue
		}
		rect := b.BBox.Pixels(size.X, size.Y)
		out = append(out, Placement{
			Index:  i,
			Block:  b,
			Rect:   rect,
			Layout: FitText(c.font, rect, b.TranslatedText, c.fit),
		})
	}
	return out
}

// Compose erases the original words of every block and draws the
// translations. The returned image has the same size as img.
func (c *Composer) Compose(img image.Image, blocks []textblock.TranslatedBlock) (image.Image, []Placement, error) {
	if img == nil {
		return nil, nil, fmt.Errorf("no image to compose")
	}
	bounds := img.Bounds()
	size := bounds.Size()

	canvas := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	draw.Draw(canvas, canvas.Bounds(), img, bounds.Min, draw.Src)

	// text color is chosen against the background before erasing
	placements := c.Plan(size, blocks)
	colors := make([]color.Color, len(placements))
	for i, p := range placements {
		colors[i] = c.textColor
		if c.autoContrast {
			if bg, ok := RingColor(canvas, p.Rect); ok {
				colors[i] = ContrastColor(bg)
			}
		}
	}

	var rects []image.Rectangle
	for _, b := range blocks {
		for _, w := range b.Words {
			rects = append(rects, w.BBox.Pixels(size.X, size.Y))
		}
	}
	if err := c.eraser.Erase(canvas, rects); err != nil {
		return nil, nil, err
	}

	dc := gg.NewContextForRGBA(canvas)
	for i, p := range placements {
		dc.SetFontFace(c.font.Face(p.Layout.Size))
		dc.SetColor(colors[i])
		for _, line := range p.Layout.Lines {
			dc.DrawString(line.Text, line.X, line.Y+p.Layout.Ascent)
		}
	}

	return dc.Image(), placements, nil
}
