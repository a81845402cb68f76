package pdfocr

import (
	"fmt"

	"codeberg.org/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"

	"github.com/gardar/comictrans/pkg/hocr"
)

// drawOCRLayer draws the hOCR words of a page onto a layer in the pdf
func drawOCRLayer(
	pdf *fpdf.Fpdf,
	page hocr.Page,
	config OCRConfig,
	layerName string,
	transform func(x, y float64) (float64, float64),
) error {
	fontConfig := config.Font
	layer := pdf.AddLayer(layerName, true)
	pdf.BeginLayer(layer)
	pdf.SetFont(fontConfig.Name, fontConfig.Style, fontConfig.Size)

	if config.Debug {
		pdf.SetTextColor(255, 0, 0) // highlight text in red
		pdf.SetDrawColor(255, 0, 0)
	} else {
		pdf.SetAlpha(0.0, "Normal") // hide text from normal view
	}

	encodingErrors := 0
	words := page.AllWords()
	for _, word := range words {
		drawWord(pdf, word, transform, fontConfig, config.Debug, &encodingErrors)
	}

	if !config.Debug {
		pdf.SetAlpha(1.0, "Normal")
	}
	pdf.EndLayer()

	if encodingErrors > 0 && config.LogWarnings {
		fmt.Fprintf(getLogger(config), "Warning: %d of %d words could not be encoded as ISO-8859-1\n",
			encodingErrors, len(words))
	}

	// Report encoding errors if more than a threshold
	if len(words) > 0 && encodingErrors > len(words)/10 {
		return fmt.Errorf("character encoding issues in %d of %d words",
			encodingErrors, len(words))
	}

	return pdf.Error()
}

// drawWord renders a single word onto the PDF layer
func drawWord(pdf *fpdf.Fpdf, word hocr.Word, transform func(x, y float64) (float64, float64),
	fontConfig FontConfig, debug bool, encodingErrors *int) {

	x, top := transform(word.BBox.X1, word.BBox.Y1)
	x2, bottom := transform(word.BBox.X2, word.BBox.Y2)
	wordWidth := x2 - x

	// Convert text to ISO-8859-1 to avoid PDF encoding issues
	latin1, err := charmap.ISO8859_1.NewEncoder().String(word.Text)
	if err != nil {
		*encodingErrors++
		latin1 = word.Text // fallback to raw text
	}

	strWidth := pdf.GetStringWidth(latin1)
	if strWidth > 0 {
		scale := wordWidth / strWidth
		pdf.SetFontSize(fontConfig.Size * scale)
	}

	fontSize, _ := pdf.GetFontSize()
	pdf.Text(x, top+fontSize*fontConfig.AscentRatio, latin1)
	pdf.SetFontSize(fontConfig.Size)

	if debug {
		pdf.Rect(x, top, wordWidth, bottom-top, "D")
	}
}
