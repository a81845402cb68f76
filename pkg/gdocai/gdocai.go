// Package gdocai recognizes the words of a comic page with Google Document AI.
//
// A Client wraps one Document Processor connection that is reused for every
// page of a run. Pages are uploaded as raw images; images larger than the
// configured pixel budget are downscaled before upload, which does not affect
// the result because Document AI reports normalized coordinates.
//
// Main Functions:
//
// - NewClient: Connects to the regional Document AI endpoint
// - Client.Recognize: Reads an image file and returns its word detections
// - Client.ProcessImage: Sends image bytes and returns the raw Document proto
// - WordsFromProto: Converts the tokens of a Document page to word detections
// - ToJSON: Dumps a Document AI response for debugging
//
// Usage Requirements:
//
// - Google Cloud project with Document AI API enabled
// - Document AI processor configured for OCR
// - Authentication via GOOGLE_APPLICATION_CREDENTIALS or Config.CredentialsFile
package gdocai

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/sirupsen/logrus"

	"github.com/gardar/comictrans/pkg/textblock"
)

// Recognize runs OCR on an image file and returns the words of its first page
func (c *Client) Recognize(ctx context.Context, imagePath string) ([]textblock.WordDetection, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	upload, mimeType, err := prepareImage(data, c.cfg.MaxPixels)
	if err != nil {
		return nil, err
	}

	doc, err := c.ProcessImage(ctx, upload, mimeType)
	if err != nil {
		return nil, err
	}

	if c.cfg.DumpDir != "" {
		if err := c.dump(doc, imagePath); err != nil {
			c.logger.WithError(err).Warn("Failed to write Document AI response")
		}
	}

	if len(doc.Pages) == 0 {
		return nil, fmt.Errorf("document AI returned no pages for %s", imagePath)
	}

	words, err := WordsFromProto(doc, doc.Pages[0])
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"image":    filepath.Base(imagePath),
		"words":    len(words),
		"language": DominantLanguage(doc),
	}).Debug("Document AI recognition finished")

	return words, nil
}

// dump writes the raw response next to other debug output as <image>.documentai.json
func (c *Client) dump(doc *documentaipb.Document, imagePath string) error {
	out, err := ToJSON(doc)
	if err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}
	if err := os.MkdirAll(c.cfg.DumpDir, 0755); err != nil {
		return fmt.Errorf("failed to create dump directory: %w", err)
	}
	base := strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))
	return os.WriteFile(filepath.Join(c.cfg.DumpDir, base+".documentai.json"), []byte(out), 0644)
}
