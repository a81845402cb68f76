// Package tesseract recognizes page images with a local Tesseract install.
package tesseract

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"

	"github.com/gardar/comictrans/pkg/ocr"
	"github.com/gardar/comictrans/pkg/textblock"
)

// DefaultPageSegMode treats the page as sparse text, which suits balloons
// scattered over artwork
const DefaultPageSegMode = gosseract.PSM_SPARSE_TEXT

// Options configures the Tesseract engine
type Options struct {
	Languages   []string // Tesseract language names, e.g. "eng"
	PageSegMode int      // 0 uses DefaultPageSegMode
	Variables   map[string]string
}

// Engine implements ocr.Engine with one reusable gosseract client
type Engine struct {
	client *gosseract.Client
}

var _ ocr.Engine = (*Engine)(nil)

// New creates the Tesseract client and applies the options
func New(opts Options) (*Engine, error) {
	c := gosseract.NewClient()

	if len(opts.Languages) > 0 {
		if err := c.SetLanguage(opts.Languages...); err != nil {
			c.Close()
			return nil, fmt.Errorf("set languages: %w", err)
		}
	}
	mode := gosseract.PageSegMode(opts.PageSegMode)
	if opts.PageSegMode == 0 {
		mode = DefaultPageSegMode
	}
	if err := c.SetPageSegMode(mode); err != nil {
		c.Close()
		return nil, fmt.Errorf("set page segmentation mode: %w", err)
	}
	for k, v := range opts.Variables {
		if err := c.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			c.Close()
			return nil, fmt.Errorf("set variable %s: %w", k, err)
		}
	}
	return &Engine{client: c}, nil
}

// Recognize runs Tesseract on the image and converts its hOCR output
func (e *Engine) Recognize(ctx context.Context, imagePath string) ([]textblock.WordDetection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := e.client.SetImage(imagePath); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	out, err := e.client.HOCRText()
	if err != nil {
		return nil, fmt.Errorf("recognize text: %w", err)
	}
	return ocr.FromHOCR([]byte(out))
}

// Close releases the Tesseract client
func (e *Engine) Close() error {
	return e.client.Close()
}
