// Package grouping clusters OCR word detections into text blocks.
//
// A comic page usually holds several speech bubbles, each made of a few
// words spread over one or more lines. Translating word by word loses the
// sentence, so words that belong together are grouped first and every
// group is translated as one unit.
//
// Two strategies are available:
//
// - LineProximity: walks the words in reading order and merges a word into
// the current block when it is on the same visual line or horizontally
// contiguous with it. This is the default.
// - DensityCluster: clusters word centers in pixel space with DBSCAN using a
// fixed radius.
//
// Both strategies return a partition of the input: every word ends up in
// exactly one block. Dropping low-confidence blocks is a separate step, see
// FilterConfidence.
package grouping

import (
	"fmt"
	"image"
	"sort"
	"strings"

	"github.com/gardar/comictrans/pkg/textblock"
)

// Strategy names accepted by New
const (
	StrategyLine    = "line"
	StrategyDensity = "density"
)

// Strategy groups the words of one page into blocks.
// size is the pixel size of the page raster; strategies working in
// normalized coordinates ignore it.
type Strategy interface {
	Group(words []textblock.WordDetection, size image.Point) []textblock.TextBlock
}

// Options configures the strategies created by New
type Options struct {
	ThresholdX float64 // LineProximity horizontal gap (normalized)
	ThresholdY float64 // LineProximity vertical distance (normalized)
	Radius     float64 // DensityCluster neighbourhood radius in pixels
	MinPoints  int     // DensityCluster minimum cluster size
}

// DefaultOptions returns the thresholds used by the default pipeline
func DefaultOptions() Options {
	return Options{
		ThresholdX: DefaultThreshold,
		ThresholdY: DefaultThreshold,
		Radius:     DefaultRadius,
		MinPoints:  DefaultMinPoints,
	}
}

// New returns the strategy registered under name
func New(name string, opts Options) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", StrategyLine:
		return LineProximity{ThresholdX: opts.ThresholdX, ThresholdY: opts.ThresholdY}, nil
	case StrategyDensity:
		return DensityCluster{Radius: opts.Radius, MinPoints: opts.MinPoints}, nil
	default:
		return nil, fmt.Errorf("unknown grouping strategy %q", name)
	}
}

// FilterConfidence splits blocks into those whose mean confidence reaches
// floor and those below it. Order is preserved in both results.
func FilterConfidence(blocks []textblock.TextBlock, floor float64) (kept, dropped []textblock.TextBlock) {
	kept = make([]textblock.TextBlock, 0, len(blocks))
	for _, b := range blocks {
		if b.Confidence < floor {
			dropped = append(dropped, b)
			continue
		}
		kept = append(kept, b)
	}
	return kept, dropped
}

// sortReadingOrder sorts words top to bottom, then left to right.
// The sort is stable so equal positions keep their input order.
func sortReadingOrder(words []textblock.WordDetection) {
	sort.SliceStable(words, func(i, j int) bool {
		if words[i].BBox.Y1 != words[j].BBox.Y1 {
			return words[i].BBox.Y1 < words[j].BBox.Y1
		}
		return words[i].BBox.X1 < words[j].BBox.X1
	})
}

// sortBlocks orders blocks by the top-left corner of their bbox
func sortBlocks(blocks []textblock.TextBlock) {
	sort.SliceStable(blocks, func(i, j int) bool {
		if blocks[i].BBox.Y1 != blocks[j].BBox.Y1 {
			return blocks[i].BBox.Y1 < blocks[j].BBox.Y1
		}
		return blocks[i].BBox.X1 < blocks[j].BBox.X1
	})
}
