package render

import (
	"image"
	"math"
	"strings"
)

// Font size defaults, in pixels
const (
	DefaultMaxSize = 40.0
	DefaultMinSize = 10.0
	DefaultStep    = 2.0
)

// Measurer measures text set in a font at a given size
type Measurer interface {
	MeasureString(s string, size float64) float64
	Metrics(size float64) (lineHeight, ascent float64)
}

// FitOptions bounds the font sizes tried by FitText
type FitOptions struct {
	MaxSize float64 // First size tried
	MinSize float64 // Smallest size, used even when the text does not fit
	Step    float64 // Decrement between attempts
}

// DefaultFitOptions returns 40 down to 10 in steps of 2
func DefaultFitOptions() FitOptions {
	return FitOptions{MaxSize: DefaultMaxSize, MinSize: DefaultMinSize, Step: DefaultStep}
}

// normalized fills zero values with defaults and keeps MinSize <= MaxSize
func (o FitOptions) normalized() FitOptions {
	if o.MaxSize <= 0 {
		o.MaxSize = DefaultMaxSize
	}
	if o.MinSize <= 0 {
		o.MinSize = math.Min(DefaultMinSize, o.MaxSize)
	}
	if o.Step <= 0 {
		o.Step = DefaultStep
	}
	if o.MinSize > o.MaxSize {
		o.MaxSize = o.MinSize
	}
	return o
}

// MaxIterations is the number of sizes FitText may try
func (o FitOptions) MaxIterations() int {
	o = o.normalized()
	return int(math.Floor((o.MaxSize-o.MinSize)/o.Step+1e-9)) + 1
}

// Point is a position in pixel space
type Point struct {
	X float64
	Y float64
}

// Line is one wrapped line of a layout. X, Y is its top-left corner.
type Line struct {
	Text  string
	X     float64
	Y     float64
	Width float64
}

// Layout is the result of fitting text into a rectangle
type Layout struct {
	Size       float64 // Chosen font size
	LineHeight float64 // Distance between consecutive line tops
	Ascent     float64 // Baseline offset from a line top
	Lines      []Line  // Wrapped lines, individually centered
	Origin     Point   // Top-left corner of the text block
	Width      float64 // Widest line
	Height     float64 // LineHeight times the number of lines
	Iterations int     // Number of sizes tried
	Overflow   bool    // True when even MinSize did not fit
}

// Center returns the center of the text block
func (l Layout) Center() Point {
	return Point{X: l.Origin.X + l.Width/2, Y: l.Origin.Y + l.Height/2}
}

// FitText picks the largest font size, from MaxSize down by Step, whose
// greedy word wrap fits inside rect. When no size fits, the text is laid
// out at MinSize and Overflow is set. The text block is centered in rect
// and every line is centered horizontally.
func FitText(m Measurer, rect image.Rectangle, text string, opts FitOptions) Layout {
	opts = opts.normalized()
	words := strings.Fields(text)
	width, height := float64(rect.Dx()), float64(rect.Dy())

	attempts := opts.MaxIterations()
	for i := 0; i < attempts; i++ {
		size := opts.MaxSize - float64(i)*opts.Step
		l := layoutAt(m, words, width, size)
		l.Iterations = i + 1
		if l.Width <= width && l.Height <= height {
			return center(l, rect)
		}
	}

	l := layoutAt(m, words, width, opts.MinSize)
	l.Iterations = attempts
	l.Overflow = true
	return center(l, rect)
}

// layoutAt wraps words greedily to width at the given size
func layoutAt(m Measurer, words []string, width, size float64) Layout {
	lineHeight, ascent := m.Metrics(size)
	l := Layout{Size: size, LineHeight: lineHeight, Ascent: ascent}

	var current string
	flush := func() {
		if current == "" {
			return
		}
		w := m.MeasureString(current, size)
		l.Lines = append(l.Lines, Line{Text: current, Width: w})
		l.Width = math.Max(l.Width, w)
		current = ""
	}

	for _, word := range words {
		if current == "" {
			current = word
			continue
		}
		candidate := current + " " + word
		if m.MeasureString(candidate, size) <= width {
			current = candidate
			continue
		}
		flush()
		current = word
	}
	flush()

	l.Height = lineHeight * float64(len(l.Lines))
	return l
}

// center positions the block and its lines inside rect
func center(l Layout, rect image.Rectangle) Layout {
	x0, y0 := float64(rect.Min.X), float64(rect.Min.Y)
	w, h := float64(rect.Dx()), float64(rect.Dy())

	l.Origin = Point{X: x0 + (w-l.Width)/2, Y: y0 + (h-l.Height)/2}
	for i := range l.Lines {
		l.Lines[i].X = x0 + (w-l.Lines[i].Width)/2
		l.Lines[i].Y = l.Origin.Y + float64(i)*l.LineHeight
	}
	return l
}
