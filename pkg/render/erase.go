package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"
)

// EraseMode selects how original text regions are cleared
type EraseMode string

// Erase modes
const (
	EraseFill    EraseMode = "fill"    // paint a fixed color
	EraseSample  EraseMode = "sample"  // paint the mean color around the region
	EraseInpaint EraseMode = "inpaint" // reconstruct the region from its surroundings
)

// Erase defaults
const (
	DefaultPadding       = 2
	DefaultInpaintRadius = 3.0
)

// Inpainter fills the pixels set in mask from their surroundings
type Inpainter interface {
	Inpaint(img image.Image, mask *image.Gray, radius float64) (image.Image, error)
}

// EraseOptions configures an Eraser
type EraseOptions struct {
	Mode          EraseMode
	Padding       int         // Pixels added around every word box
	Color         color.Color // Fill color, and fallback when sampling finds no pixels
	InpaintRadius float64
}

// Eraser clears text regions of an image
type Eraser struct {
	opts      EraseOptions
	inpainter Inpainter
}

// NewEraser returns an Eraser. inpainter is required for EraseInpaint only.
func NewEraser(opts EraseOptions, inpainter Inpainter) (*Eraser, error) {
	if opts.Mode == "" {
		opts.Mode = EraseFill
	}
	if opts.Color == nil {
		opts.Color = color.White
	}
	if opts.Padding < 0 {
		opts.Padding = 0
	}
	if opts.InpaintRadius <= 0 {
		opts.InpaintRadius = DefaultInpaintRadius
	}

	switch opts.Mode {
	case EraseFill, EraseSample:
	case EraseInpaint:
		if inpainter == nil {
			return nil, fmt.Errorf("erase mode %q requires an inpainter", opts.Mode)
		}
	default:
		return nil, fmt.Errorf("unknown erase mode %q", opts.Mode)
	}
	return &Eraser{opts: opts, inpainter: inpainter}, nil
}

// Regions pads rects and clips them to bounds, dropping empty results
func (e *Eraser) Regions(rects []image.Rectangle, bounds image.Rectangle) []image.Rectangle {
	out := make([]image.Rectangle, 0, len(rects))
	for _, r := range rects {
		r = r.Inset(-e.opts.Padding).Intersect(bounds)
		if !r.Empty() {
			out = append(out, r)
		}
	}
	return out
}

// Erase clears the padded rects in dst
func (e *Eraser) Erase(dst *image.RGBA, rects []image.Rectangle) error {
	regions := e.Regions(rects, dst.Bounds())
	if len(regions) == 0 {
		return nil
	}

	switch e.opts.Mode {
	case EraseSample:
		for _, r := range regions {
			fill := e.opts.Color
			if c, ok := RingColor(dst, r); ok {
				fill = c
			}
			draw.Draw(dst, r, image.NewUniform(fill), image.Point{}, draw.Src)
		}
	case EraseInpaint:
		mask := image.NewGray(dst.Bounds())
		for _, r := range regions {
			draw.Draw(mask, r, image.NewUniform(color.Gray{Y: 255}), image.Point{}, draw.Src)
		}
		out, err := e.inpainter.Inpaint(dst, mask, e.opts.InpaintRadius)
		if err != nil {
			return fmt.Errorf("failed to inpaint text regions: %w", err)
		}
		if out.Bounds().Size() != dst.Bounds().Size() {
			return fmt.Errorf("inpainted image is %v, expected %v", out.Bounds().Size(), dst.Bounds().Size())
		}
		draw.Draw(dst, dst.Bounds(), out, out.Bounds().Min, draw.Src)
	default:
		for _, r := range regions {
			draw.Draw(dst, r, image.NewUniform(e.opts.Color), image.Point{}, draw.Src)
		}
	}
	return nil
}

// RingColor returns the mean color, averaged in CIE L*a*b*, of the one pixel
// ring just outside r. ok is false when the ring lies outside the image.
func RingColor(img image.Image, r image.Rectangle) (colorful.Color, bool) {
	bounds := img.Bounds()
	outer := r.Inset(-1)

	var l, a, b float64
	n := 0
	add := func(x, y int) {
		if !image.Pt(x, y).In(bounds) {
			return
		}
		c, ok := colorful.MakeColor(img.At(x, y))
		if !ok {
			return
		}
		cl, ca, cb := c.Lab()
		l, a, b = l+cl, a+ca, b+cb
		n++
	}

	for x := outer.Min.X; x < outer.Max.X; x++ {
		add(x, outer.Min.Y)
		add(x, outer.Max.Y-1)
	}
	for y := outer.Min.Y + 1; y < outer.Max.Y-1; y++ {
		add(outer.Min.X, y)
		add(outer.Max.X-1, y)
	}

	if n == 0 {
		return colorful.Color{}, false
	}
	return colorful.Lab(l/float64(n), a/float64(n), b/float64(n)).Clamped(), true
}

// ContrastColor returns black or white, whichever reads better on bg
func ContrastColor(bg color.Color) color.Color {
	c, ok := colorful.MakeColor(bg)
	if !ok {
		return color.Black
	}
	if lum, _, _ := c.Lab(); lum < 0.5 {
		return color.White
	}
	return color.Black
}
