package hocr

import (
	"fmt"
	"math"
	"strings"

	"github.com/gardar/comictrans/pkg/textblock"
)

// AllWords returns the words of a page in document order.
// Words inside lines come first, followed by words without a line parent.
func (p Page) AllWords() []Word {
	var words []Word
	for _, line := range p.Lines {
		words = append(words, line.Words...)
	}
	return append(words, p.Words...)
}

// Text returns the page text with one line of output per hOCR line
func (p Page) Text() string {
	var sb strings.Builder
	for _, line := range p.Lines {
		texts := make([]string, 0, len(line.Words))
		for _, w := range line.Words {
			texts = append(texts, w.Text)
		}
		sb.WriteString(strings.Join(texts, " "))
		sb.WriteString("\n")
	}
	return sb.String()
}

// Detections converts the words of a page into word detections normalized
// by the page bbox. Words with empty text are skipped and 'x_wconf' values
// are mapped from 0-100 to 0-1.
func Detections(p Page) ([]textblock.WordDetection, error) {
	w, h := p.BBox.Width(), p.BBox.Height()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("page %q has no usable bbox", p.ID)
	}

	norm := func(v, origin, size float64) float64 {
		return math.Min(1, math.Max(0, (v-origin)/size))
	}

	var out []textblock.WordDetection
	for _, word := range p.AllWords() {
		if strings.TrimSpace(word.Text) == "" {
			continue
		}
		out = append(out, textblock.WordDetection{
			Text: word.Text,
			BBox: textblock.NewBBox(
				norm(word.BBox.X1, p.BBox.X1, w),
				norm(word.BBox.Y1, p.BBox.Y1, h),
				norm(word.BBox.X2, p.BBox.X1, w),
				norm(word.BBox.Y2, p.BBox.Y1, h),
			),
			Confidence: math.Min(1, math.Max(0, word.Confidence/100)),
		})
	}
	return out, nil
}
