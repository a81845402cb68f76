package pdfocr

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"codeberg.org/go-pdf/fpdf"

	"github.com/gardar/comictrans/pkg/hocr"
)

// createPDFFromImage builds a new PDF from images with their corresponding hOCR data.
// This function assumes inputs have been validated by the caller.
func createPDFFromImage(hOCRData hocr.HOCR, imagesData [][]byte, config OCRConfig) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetCreator("comictrans", true)
	if hOCRData.Title != "" {
		pdf.SetTitle(hOCRData.Title, true)
	}
	multiPage := len(hOCRData.Pages) > 1

	for i, page := range hOCRData.Pages {
		hocrW, hocrH := page.BBox.Width(), page.BBox.Height()
		if hocrW <= 0 || hocrH <= 0 {
			return nil, fmt.Errorf("page %d has no usable bbox", i+1)
		}

		imgCfg, _, err := image.DecodeConfig(bytes.NewReader(imagesData[i]))
		if err != nil {
			return nil, fmt.Errorf("failed to read image %d: %w", i+1, err)
		}
		w, h := float64(imgCfg.Width), float64(imgCfg.Height)

		orientation := "P"
		if w > h {
			orientation = "L"
		}
		pdf.AddPageFormat(orientation, fpdf.SizeType{Wd: w, Ht: h})

		imageName := fmt.Sprintf("img%d", i)
		imageType, err := detectImageType(imagesData[i])
		if err != nil {
			return nil, fmt.Errorf("failed to detect image type for image %d: %w", i, err)
		}

		opts := fpdf.ImageOptions{ReadDpi: false, ImageType: imageType}
		pdf.RegisterImageOptionsReader(imageName, opts, bytes.NewReader(imagesData[i]))
		pdf.ImageOptions(imageName, 0, 0, w, h, false, opts, 0, "")
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("failed to place image %d: %w", i+1, err)
		}

		origin := page.BBox
		transform := func(x, y float64) (float64, float64) {
			return normalizeCoords(x-origin.X1, y-origin.Y1, hocrW, hocrH, w, h)
		}

		layerName := config.LayerName
		if multiPage {
			layerName = fmt.Sprintf("%s (Page %d)", config.LayerName, i+1)
		}
		if err := drawOCRLayer(pdf, page, config, layerName, transform); err != nil {
			return nil, fmt.Errorf("failed to draw text layer for page %d: %w", i+1, err)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// detectImageType tries to figure out whether the data is PNG, JPEG, etc.
func detectImageType(data []byte) (string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode image config: %w", err)
	}
	switch format {
	case "png", "jpeg", "gif":
		return strings.ToUpper(format), nil
	default:
		return "", fmt.Errorf("image format %s cannot be embedded in a PDF", format)
	}
}
