package pipeline

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/gardar/comictrans/pkg/grouping"
	"github.com/gardar/comictrans/pkg/render"
	"github.com/gardar/comictrans/pkg/textblock"
	"github.com/gardar/comictrans/pkg/translate"
)

// Download fetches the page image into the downloads directory
func (p *Pipeline) Download(ctx context.Context, pageURL, page string) (string, error) {
	if p.stages.Downloader == nil {
		return "", p.fail(NewDownloadError(page, "no downloader configured", nil))
	}
	imagePath, err := p.stages.Downloader.Download(ctx, pageURL, page)
	if err != nil {
		return "", p.fail(NewDownloadError(page, "failed to download page", err))
	}
	p.log.WithFields(logrus.Fields{"stage": "download", "page": page, "path": imagePath}).Info("Downloaded page")
	return imagePath, nil
}

// Extract runs OCR on the image, groups the words into blocks, drops
// blocks under the confidence floor and saves the rest as
// extracted_text/{page}_text.json
func (p *Pipeline) Extract(ctx context.Context, imagePath, page string) (string, []textblock.TextBlock, error) {
	if p.stages.Recognizer == nil {
		return "", nil, p.fail(NewExtractionError(page, "no OCR engine configured", nil))
	}
	size, err := imageSize(imagePath)
	if err != nil {
		return "", nil, p.fail(NewExtractionError(page, "failed to read image", err))
	}

	words, err := p.stages.Recognizer.Recognize(ctx, imagePath)
	if err != nil {
		return "", nil, p.fail(NewExtractionError(page, "OCR failed", err))
	}
	if len(words) == 0 {
		return "", nil, p.fail(NewExtractionError(page, "no text detected", nil))
	}

	blocks, dropped := grouping.FilterConfidence(p.stages.Grouper.Group(words, size), p.opts.MinConfidence)
	if len(blocks) == 0 {
		return "", nil, p.fail(NewExtractionError(page,
			fmt.Sprintf("no block reaches confidence %.2f", p.opts.MinConfidence), nil))
	}

	out := filepath.Join(p.env.Dirs.Extracted, page+"_text.json")
	if err := textblock.SaveTextBlocks(out, blocks); err != nil {
		return "", nil, p.fail(NewExtractionError(page, "failed to save extracted text", err))
	}

	p.log.WithFields(logrus.Fields{
		"stage":   "extraction",
		"page":    page,
		"words":   len(words),
		"blocks":  len(blocks),
		"dropped": len(dropped),
		"path":    out,
	}).Info("Extracted text")
	return out, blocks, nil
}

// Translate translates every block of the extracted file and saves
// translated_text/{page}_text_translated.json. Nothing is written when any
// block fails.
func (p *Pipeline) Translate(ctx context.Context, extractedPath, page, lang string) (string, error) {
	if p.stages.Translator == nil {
		return "", p.fail(NewTranslationError(page, "no translator configured", nil))
	}
	blocks, err := textblock.LoadTextBlocks(extractedPath)
	if err != nil {
		return "", p.fail(NewTranslationError(page, "failed to load extracted text", err))
	}

	if p.opts.DetectSource {
		p.detectSource(ctx, page, blocks)
	}

	translated, err := translate.Blocks(ctx, p.stages.Translator, blocks, lang)
	if err != nil {
		return "", p.fail(NewTranslationError(page, "translation failed", err))
	}

	out := filepath.Join(p.env.Dirs.Translated, page+"_text_translated.json")
	if err := textblock.SaveTranslatedBlocks(out, translated); err != nil {
		return "", p.fail(NewTranslationError(page, "failed to save translation", err))
	}

	p.log.WithFields(logrus.Fields{
		"stage":  "translation",
		"page":   page,
		"lang":   lang,
		"blocks": len(translated),
		"path":   out,
	}).Info("Translated text")
	return out, nil
}

// detectSource logs the language of the page text. Detection problems are
// only logged since an explicit or automatic source language is still used.
func (p *Pipeline) detectSource(ctx context.Context, page string, blocks []textblock.TextBlock) {
	d, ok := p.stages.Translator.(translate.Detector)
	if !ok || len(blocks) == 0 {
		return
	}
	texts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		texts = append(texts, b.Text)
	}
	logger := p.log.WithFields(logrus.Fields{"stage": "translation", "page": page})
	code, err := d.DetectLanguage(ctx, strings.Join(texts, "\n"))
	if err != nil {
		logger.WithError(err).Warn("Source language detection failed")
		return
	}
	logger.WithFields(logrus.Fields{
		"source": code,
		"name":   translate.LanguageName(code),
	}).Info("Detected source language")
}

// Compose draws the translations over the page image and writes
// output/{page}_translated.{ext}, plus the hOCR and PDF files when enabled.
// lang only labels the hOCR output.
func (p *Pipeline) Compose(ctx context.Context, imagePath, translatedPath, page, lang string) (Output, error) {
	if p.stages.Composer == nil {
		return Output{}, p.fail(NewCompositionError(page, "no composer configured", nil))
	}
	if err := ctx.Err(); err != nil {
		return Output{}, p.fail(NewCompositionError(page, "cancelled", err))
	}

	img, format, err := render.ReadImage(imagePath)
	if err != nil {
		return Output{}, p.fail(NewCompositionError(page, "failed to read image", err))
	}
	blocks, err := textblock.LoadTranslatedBlocks(translatedPath)
	if err != nil {
		return Output{}, p.fail(NewCompositionError(page, "failed to load translation", err))
	}

	composed, placements, err := p.stages.Composer.Compose(img, blocks)
	if err != nil {
		return Output{}, p.fail(NewCompositionError(page, "failed to compose page", err))
	}

	outFormat := render.OutputFormat(format)
	out := Output{Image: filepath.Join(p.env.Dirs.Output, page+"_translated"+render.Extension(outFormat))}
	if err := render.WriteImage(out.Image, composed, outFormat); err != nil {
		return Output{}, p.fail(NewCompositionError(page, "failed to write output image", err))
	}

	logger := p.log.WithFields(logrus.Fields{"stage": "composition", "page": page})
	overflow := 0
	for _, pl := range placements {
		if pl.Layout.Overflow {
			overflow++
		}
	}
	if overflow > 0 {
		logger.WithField("blocks", overflow).Warn("Text did not fit at the minimum font size")
	}

	if p.opts.WriteHOCR || p.opts.WritePDF {
		p.writeSidecars(logger, &out, composed.Bounds().Size(), placements, page, lang)
	}

	logger.WithFields(logrus.Fields{
		"placed": len(placements),
		"path":   out.Image,
	}).Info("Composed page")
	return out, nil
}

func imageSize(path string) (image.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Point{}, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return image.Point{}, err
	}
	return image.Pt(cfg.Width, cfg.Height), nil
}
