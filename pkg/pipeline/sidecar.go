package pipeline

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/gardar/comictrans/pkg/hocr"
	"github.com/gardar/comictrans/pkg/pdfocr"
	"github.com/gardar/comictrans/pkg/render"
)

// writeSidecars writes the optional hOCR and PDF files of a composed page.
// The translated image is already saved, so failures are logged and the
// page still counts as composed.
func (p *Pipeline) writeSidecars(logger *logrus.Entry, out *Output, size image.Point, placements []render.Placement, page, lang string) {
	doc := render.PageHOCR(filepath.Base(out.Image), size, placements, lang)
	base := filepath.Join(p.env.Dirs.Output, page+"_translated")

	if p.opts.WriteHOCR {
		path := base + ".hocr"
		if err := writeHOCR(path, doc); err != nil {
			logger.WithError(err).Warn("Failed to write hOCR output")
		} else {
			out.HOCR = path
		}
	}

	if p.opts.WritePDF {
		path := base + ".pdf"
		if err := p.writePDF(logger, path, out.Image, doc); err != nil {
			logger.WithError(err).Warn("Failed to write PDF output")
		} else {
			out.PDF = path
		}
	}
}

func writeHOCR(path string, doc *hocr.HOCR) error {
	html, err := hocr.GenerateHOCRDocument(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(html), 0644)
}

func (p *Pipeline) writePDF(logger *logrus.Entry, path, imagePath string, doc *hocr.HOCR) error {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("failed to read composed image: %w", err)
	}

	cfg := p.opts.PDF
	if cfg.Logger == nil {
		w := logger.WriterLevel(logrus.WarnLevel)
		defer w.Close()
		cfg.Logger = w
	}

	pdf, err := pdfocr.AssembleWithOCR(doc, [][]byte{data}, cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, pdf, 0644)
}
