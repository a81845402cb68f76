// Package pdfocr builds searchable PDFs of translated comic pages.
//
// Each page image becomes one PDF page of the same size. The hOCR words of
// the page are written on an optional content layer as invisible text, so
// the translation can be searched and selected while the artwork stays
// untouched. Compatible readers can toggle the layer; in debug mode the
// text is drawn in red together with its word boxes.
//
// Main Functions:
//
// - AssembleWithOCR: Creates a new PDF from images with an hOCR text layer
package pdfocr

import (
	"fmt"

	"github.com/gardar/comictrans/pkg/hocr"
)

// AssembleWithOCR is a high-level function for creating a PDF from images
// and applying the hOCR text overlay.
// It accepts either raw hOCR data ([]byte) or a parsed hOCR struct (*hocr.HOCR).
func AssembleWithOCR(
	hocrInput interface{},
	imagesData [][]byte,
	config OCRConfig,
) ([]byte, error) {
	var hocrStruct hocr.HOCR
	var err error

	switch h := hocrInput.(type) {
	case []byte:
		hocrStruct, err = hocr.ParseHOCR(h)
		if err != nil {
			return nil, fmt.Errorf("failed to parse HOCR data: %w", err)
		}
	case *hocr.HOCR:
		if h == nil {
			return nil, fmt.Errorf("HOCR struct is nil")
		}
		hocrStruct = *h
	default:
		return nil, fmt.Errorf("unsupported HOCR input type: %T", hocrInput)
	}

	if len(hocrStruct.Pages) == 0 {
		return nil, fmt.Errorf("HOCR data contains no pages")
	}
	if len(imagesData) == 0 {
		return nil, fmt.Errorf("no image data provided")
	}
	if len(imagesData) < len(hocrStruct.Pages) {
		return nil, fmt.Errorf("not enough images (%d) for HOCR pages (%d)",
			len(imagesData), len(hocrStruct.Pages))
	}

	for i, imgData := range imagesData {
		if len(imgData) == 0 {
			return nil, fmt.Errorf("image %d is empty", i+1)
		}
		imageType, err := detectImageType(imgData)
		if err != nil {
			return nil, fmt.Errorf("image %d has invalid format: %w", i+1, err)
		}
		if config.Debug {
			fmt.Fprintf(getLogger(config), "Image %d is of type: %s\n", i+1, imageType)
		}
	}

	finalPDF, err := createPDFFromImage(hocrStruct, imagesData, config)
	if err != nil {
		return nil, fmt.Errorf("error creating PDF from images: %w", err)
	}
	return finalPDF, nil
}
