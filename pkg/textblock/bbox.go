package textblock

import (
	"encoding/json"
	"fmt"
	"image"
	"math"
)

// BBox is an axis-aligned rectangle in normalized page coordinates.
// X1, Y1 is the top-left corner and X2, Y2 the bottom-right corner.
// Its JSON form is the nested array [[x1,y1],[x2,y2]].
type BBox struct {
	X1 float64
	Y1 float64
	X2 float64
	Y2 float64
}

// NewBBox creates a bounding box from its corner coordinates
func NewBBox(x1, y1, x2, y2 float64) BBox {
	return BBox{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// Union returns the smallest box containing both b and o
func (b BBox) Union(o BBox) BBox {
	return BBox{
		X1: math.Min(b.X1, o.X1),
		Y1: math.Min(b.Y1, o.Y1),
		X2: math.Max(b.X2, o.X2),
		Y2: math.Max(b.Y2, o.Y2),
	}
}

// Width of the box
func (b BBox) Width() float64 { return b.X2 - b.X1 }

// Height of the box
func (b BBox) Height() float64 { return b.Y2 - b.Y1 }

// Center returns the midpoint of the box
func (b BBox) Center() (float64, float64) {
	return (b.X1 + b.X2) / 2, (b.Y1 + b.Y2) / 2
}

// Pixels converts the box to pixel coordinates of a w x h raster.
// Coordinates are truncated towards zero.
func (b BBox) Pixels(w, h int) image.Rectangle {
	return image.Rect(
		int(b.X1*float64(w)),
		int(b.Y1*float64(h)),
		int(b.X2*float64(w)),
		int(b.Y2*float64(h)),
	)
}

// Validate checks that the box is finite, ordered and inside the unit square
func (b BBox) Validate() error {
	for _, v := range []float64{b.X1, b.Y1, b.X2, b.Y2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("coordinate %v is not finite", v)
		}
		if v < 0 || v > 1 {
			return fmt.Errorf("coordinate %v is outside [0,1]", v)
		}
	}
	if b.X1 > b.X2 || b.Y1 > b.Y2 {
		return fmt.Errorf("corners are not ordered: [[%v,%v],[%v,%v]]", b.X1, b.Y1, b.X2, b.Y2)
	}
	return nil
}

// MarshalJSON writes the box as [[x1,y1],[x2,y2]]
func (b BBox) MarshalJSON() ([]byte, error) {
	return json.Marshal([2][2]float64{{b.X1, b.Y1}, {b.X2, b.Y2}})
}

// UnmarshalJSON reads the box from [[x1,y1],[x2,y2]]
func (b *BBox) UnmarshalJSON(data []byte) error {
	var pts [][]float64
	if err := json.Unmarshal(data, &pts); err != nil {
		return fmt.Errorf("bbox must be [[x1,y1],[x2,y2]]: %w", err)
	}
	if len(pts) != 2 || len(pts[0]) != 2 || len(pts[1]) != 2 {
		return fmt.Errorf("bbox must be [[x1,y1],[x2,y2]], got %d points", len(pts))
	}
	*b = NewBBox(pts[0][0], pts[0][1], pts[1][0], pts[1][1])
	return nil
}
