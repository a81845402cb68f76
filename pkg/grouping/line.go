package grouping

import (
	"image"
	"math"

	"github.com/gardar/comictrans/pkg/textblock"
)

// DefaultThreshold is the line proximity threshold on both axes
const DefaultThreshold = 0.1

// LineProximity groups words that share a visual line or continue one.
//
// Words are visited in reading order. A word joins the current block when
// its top edge is within ThresholdY of the block top, or when its left edge
// is within ThresholdX of the block's right edge. Otherwise the block is
// closed and the word starts a new one.
type LineProximity struct {
	ThresholdX float64
	ThresholdY float64
}

// Group implements Strategy. size is not used.
func (s LineProximity) Group(words []textblock.WordDetection, _ image.Point) []textblock.TextBlock {
	if len(words) == 0 {
		return []textblock.TextBlock{}
	}

	tx, ty := s.ThresholdX, s.ThresholdY
	if tx <= 0 {
		tx = DefaultThreshold
	}
	if ty <= 0 {
		ty = DefaultThreshold
	}

	sorted := make([]textblock.WordDetection, len(words))
	copy(sorted, words)
	sortReadingOrder(sorted)

	var blocks []textblock.TextBlock
	current := []textblock.WordDetection{sorted[0]}
	bbox := sorted[0].BBox

	for _, w := range sorted[1:] {
		sameLine := math.Abs(w.BBox.Y1-bbox.Y1) < ty
		contiguous := math.Abs(w.BBox.X1-bbox.X2) < tx
		if sameLine || contiguous {
			current = append(current, w)
			bbox = bbox.Union(w.BBox)
			continue
		}
		blocks = append(blocks, textblock.NewBlock(current))
		current = []textblock.WordDetection{w}
		bbox = w.BBox
	}
	blocks = append(blocks, textblock.NewBlock(current))

	return blocks
}
