package render

import (
	"fmt"
	"image"
	"strings"
	"unicode/utf8"

	"github.com/gardar/comictrans/pkg/hocr"
)

// PageHOCR describes the text drawn by placements as an hOCR document.
// Each laid-out line becomes an ocr_caption line; word boxes split the
// line width in proportion to rune counts, as only line widths are
// measured during fitting.
func PageHOCR(imageName string, size image.Point, placements []Placement, lang string) *hocr.HOCR {
	page := hocr.Page{
		ID:         "page_1",
		PageNumber: 0,
		ImageName:  imageName,
		Lang:       lang,
		BBox:       hocr.NewBoundingBox(0, 0, float64(size.X), float64(size.Y)),
	}

	for _, p := range placements {
		for li, line := range p.Layout.Lines {
			top, bottom := line.Y, line.Y+p.Layout.LineHeight
			page.Lines = append(page.Lines, hocr.Line{
				ID:    fmt.Sprintf("line_%d_%d", p.Index, li),
				Kind:  "ocr_caption",
				Lang:  lang,
				BBox:  hocr.NewBoundingBox(line.X, top, line.X+line.Width, bottom),
				Words: lineWords(line, top, bottom),
			})
		}
	}

	return &hocr.HOCR{
		Title:    imageName,
		Language: lang,
		Metadata: map[string]string{
			"ocr-system":          "comictrans",
			"ocr-number-of-pages": "1",
			"ocr-capabilities":    "ocr_page ocr_caption ocrx_word",
			"ocr-langs":           lang,
		},
		Pages: []hocr.Page{page},
	}
}

func lineWords(line Line, top, bottom float64) []hocr.Word {
	total := utf8.RuneCountInString(line.Text)
	if total == 0 {
		return nil
	}
	perRune := line.Width / float64(total)

	var words []hocr.Word
	offset := 0
	for _, field := range strings.Split(line.Text, " ") {
		n := utf8.RuneCountInString(field)
		if n > 0 {
			x1 := line.X + float64(offset)*perRune
			words = append(words, hocr.Word{
				Text:       field,
				BBox:       hocr.NewBoundingBox(x1, top, x1+float64(n)*perRune, bottom),
				Confidence: 100,
			})
		}
		offset += n + 1
	}
	return words
}
