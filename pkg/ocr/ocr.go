// Package ocr defines the OCR collaborator of the pipeline.
//
// An Engine turns a page image into word detections with normalized
// bounding boxes and confidences in [0,1]. Engines are created once per run
// and closed at exit. Three backends exist:
//
//   - hocr: reads hOCR produced elsewhere (HOCRFile, in this package)
//   - tesseract: local Tesseract through gosseract (package ocr/tesseract)
//   - documentai: Google Document AI (package gdocai)
//
// The tesseract backend needs cgo and the Tesseract libraries, so it lives in
// its own package and is only linked by the command line tools.
package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gardar/comictrans/pkg/hocr"
	"github.com/gardar/comictrans/pkg/textblock"
)

// Backend names
const (
	BackendHOCR       = "hocr"
	BackendTesseract  = "tesseract"
	BackendDocumentAI = "documentai"
)

// Engine recognizes the words of a page image
type Engine interface {
	Recognize(ctx context.Context, imagePath string) ([]textblock.WordDetection, error)
	Close() error
}

// FromHOCR parses an hOCR document and returns the words of its first page
func FromHOCR(data []byte) ([]textblock.WordDetection, error) {
	doc, err := hocr.ParseHOCR(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse hOCR: %w", err)
	}
	words, err := hocr.Detections(doc.Pages[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read hOCR words: %w", err)
	}
	return words, nil
}

// HOCRFile reads word detections from an hOCR file. With an empty Path
// the sidecar of the image is used: page.png is read from page.hocr.
type HOCRFile struct {
	Path string
}

// SidecarPath returns the hOCR file read for an image
func (h HOCRFile) SidecarPath(imagePath string) string {
	if h.Path != "" {
		return h.Path
	}
	return strings.TrimSuffix(imagePath, filepath.Ext(imagePath)) + ".hocr"
}

// Recognize implements Engine
func (h HOCRFile) Recognize(ctx context.Context, imagePath string) ([]textblock.WordDetection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := h.SidecarPath(imagePath)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read hOCR file: %w", err)
	}
	return FromHOCR(data)
}

// Close implements Engine
func (HOCRFile) Close() error { return nil }
