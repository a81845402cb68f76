package gdocai

import (
	"fmt"
	"math"
	"strings"

	"cloud.google.com/go/documentai/apiv1/documentaipb"

	"github.com/gardar/comictrans/pkg/textblock"
)

// WordsFromProto converts the tokens of a Document AI page to word
// detections in normalized coordinates. Normalized vertices are used when
// present, otherwise pixel vertices are divided by the page dimension.
// Blank tokens and tokens without geometry are skipped.
func WordsFromProto(doc *documentaipb.Document, page *documentaipb.Document_Page) ([]textblock.WordDetection, error) {
	if page == nil {
		return nil, fmt.Errorf("no documentai page provided")
	}

	words := make([]textblock.WordDetection, 0, len(page.Tokens))
	for _, token := range page.Tokens {
		text := strings.TrimSpace(textFromLayout(token.GetLayout(), doc.GetText()))
		if text == "" {
			continue
		}
		bbox, ok := tokenBox(token.GetLayout().GetBoundingPoly(), page.GetDimension())
		if !ok {
			continue
		}
		words = append(words, textblock.WordDetection{
			Text:       text,
			BBox:       bbox,
			Confidence: clamp(float64(token.GetLayout().GetConfidence())),
		})
	}
	return words, nil
}

// tokenBox returns the bounding rectangle of a polygon in normalized coordinates
func tokenBox(poly *documentaipb.BoundingPoly, dim *documentaipb.Document_Page_Dimension) (textblock.BBox, bool) {
	var xs, ys []float64
	switch {
	case len(poly.GetNormalizedVertices()) > 0:
		for _, v := range poly.NormalizedVertices {
			xs = append(xs, float64(v.X))
			ys = append(ys, float64(v.Y))
		}
	case len(poly.GetVertices()) > 0 && dim.GetWidth() > 0 && dim.GetHeight() > 0:
		for _, v := range poly.Vertices {
			xs = append(xs, float64(v.X)/float64(dim.Width))
			ys = append(ys, float64(v.Y)/float64(dim.Height))
		}
	default:
		return textblock.BBox{}, false
	}

	b := textblock.NewBBox(math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1))
	for i := range xs {
		b.X1 = math.Min(b.X1, xs[i])
		b.Y1 = math.Min(b.Y1, ys[i])
		b.X2 = math.Max(b.X2, xs[i])
		b.Y2 = math.Max(b.Y2, ys[i])
	}
	return textblock.NewBBox(clamp(b.X1), clamp(b.Y1), clamp(b.X2), clamp(b.Y2)), true
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
