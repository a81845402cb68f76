// Package pipeline chains the stages that translate one comic page.
//
// A page moves through Pending, Downloaded, Extracted, Translated and
// Composed in that order. Each stage persists its result so a later run can
// resume from it:
//
//	downloads/{page}.{ext}
//	extracted_text/{page}_text.json
//	translated_text/{page}_text_translated.json
//	output/{page}_translated.{ext}
//
// The first failing stage stops the page and is reported as an *Error of
// the matching Kind. Retrying is left to the collaborators.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gardar/comictrans/pkg/grouping"
	"github.com/gardar/comictrans/pkg/pdfocr"
	"github.com/gardar/comictrans/pkg/render"
	"github.com/gardar/comictrans/pkg/textblock"
	"github.com/gardar/comictrans/pkg/translate"
)

// Downloader fetches the image of a page
type Downloader interface {
	Download(ctx context.Context, pageURL, pageName string) (string, error)
}

// Recognizer runs OCR on a page image
type Recognizer interface {
	Recognize(ctx context.Context, imagePath string) ([]textblock.WordDetection, error)
}

// Composer erases the original text and draws the translations
type Composer interface {
	Compose(img image.Image, blocks []textblock.TranslatedBlock) (image.Image, []render.Placement, error)
}

// Stages are the collaborators of the pipeline. Downloader may be nil
// when only local images are processed.
type Stages struct {
	Downloader Downloader
	Recognizer Recognizer
	Grouper    grouping.Strategy
	Translator translate.Translator
	Composer   Composer
}

// Options tunes the stages
type Options struct {
	TargetLang    string  // used when a Request has none
	MinConfidence float64 // blocks below this mean confidence are dropped
	DetectSource  bool    // log the detected source language when the translator supports it
	WriteHOCR     bool    // write output/{page}_translated.hocr
	WritePDF      bool    // write output/{page}_translated.pdf
	PDF           pdfocr.OCRConfig
}

// Request describes one page to process. Either URL or ImagePath must be
// set; ExtractedPath resumes from an existing extracted JSON file.
type Request struct {
	URL           string
	ImagePath     string
	ExtractedPath string
	PageName      string
	TargetLang    string
}

// Output lists the files written by the composition stage
type Output struct {
	Image string
	HOCR  string
	PDF   string
}

// Result is the outcome of ProcessPage, complete or not
type Result struct {
	Page           string
	State          State
	ImagePath      string
	ExtractedPath  string
	TranslatedPath string
	Output         Output
	Duration       time.Duration
}

// Pipeline processes pages one at a time
type Pipeline struct {
	env    *Env
	stages Stages
	opts   Options
	log    *logrus.Logger
}

// New creates a pipeline. When opts.PDF is the zero value the pdfocr
// defaults are used.
func New(env *Env, stages Stages, opts Options) *Pipeline {
	if opts.PDF.Font.Name == "" {
		opts.PDF = pdfocr.DefaultConfig()
	}
	if stages.Grouper == nil {
		stages.Grouper = grouping.LineProximity{}
	}
	return &Pipeline{env: env, stages: stages, opts: opts, log: env.Log}
}

// ProcessPage runs every stage the request needs. The Result is returned
// in all cases and shows the last state reached and the files written.
func (p *Pipeline) ProcessPage(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	res := &Result{State: Pending}
	defer func() { res.Duration = time.Since(start) }()

	page, err := PageName(req)
	if err != nil {
		return res, NewDownloadError("", "invalid request", err)
	}
	res.Page = page
	lang := req.TargetLang
	if lang == "" {
		lang = p.opts.TargetLang
	}

	logger := p.log.WithField("page", page)
	logger.WithFields(logrus.Fields{"url": req.URL, "image": req.ImagePath, "lang": lang}).Info("Processing page")

	switch {
	case req.ImagePath != "":
		if _, err := os.Stat(req.ImagePath); err != nil {
			return res, p.fail(NewDownloadError(page, "local image is not readable", err))
		}
		res.ImagePath = req.ImagePath
	case req.URL != "":
		res.ImagePath, err = p.Download(ctx, req.URL, page)
		if err != nil {
			return res, err
		}
	default:
		return res, p.fail(NewDownloadError(page, "request has neither URL nor image path", nil))
	}
	res.State = Downloaded

	if req.ExtractedPath != "" {
		if _, err := textblock.LoadTextBlocks(req.ExtractedPath); err != nil {
			return res, p.fail(NewExtractionError(page, "extracted text cannot be resumed", err))
		}
		res.ExtractedPath = req.ExtractedPath
		logger.WithField("path", req.ExtractedPath).Info("Resuming from extracted text")
	} else {
		res.ExtractedPath, _, err = p.Extract(ctx, res.ImagePath, page)
		if err != nil {
			return res, err
		}
	}
	res.State = Extracted

	res.TranslatedPath, err = p.Translate(ctx, res.ExtractedPath, page, lang)
	if err != nil {
		return res, err
	}
	res.State = Translated

	res.Output, err = p.Compose(ctx, res.ImagePath, res.TranslatedPath, page, lang)
	if err != nil {
		return res, err
	}
	res.State = Composed

	logger.WithFields(logrus.Fields{
		"output":   res.Output.Image,
		"duration": time.Since(start).Round(time.Millisecond).String(),
	}).Info("Page translated")
	return res, nil
}

// fail logs a stage failure at its boundary and returns it
func (p *Pipeline) fail(err *Error) *Error {
	p.log.WithFields(logrus.Fields{
		"stage": stageName(err.Kind),
		"page":  err.Page,
	}).WithError(err.Err).Error(err.Msg)
	return err
}

func stageName(k Kind) string {
	switch k {
	case DownloadFailure:
		return "download"
	case ExtractionFailure:
		return "extraction"
	case TranslationFailure:
		return "translation"
	case CompositionFailure:
		return "composition"
	}
	return string(k)
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// PageName returns the request's page name, or derives one from the image
// path, the extracted file or the URL. Names are reduced to characters safe
// in file names.
func PageName(req Request) (string, error) {
	name := req.PageName
	switch {
	case name != "":
	case req.ImagePath != "":
		base := filepath.Base(req.ImagePath)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	case req.ExtractedPath != "":
		name = strings.TrimSuffix(filepath.Base(req.ExtractedPath), "_text.json")
	case req.URL != "":
		u, err := url.Parse(req.URL)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		base := path.Base(u.Path)
		name = strings.TrimSuffix(base, path.Ext(base))
		if name == "/" || name == "." {
			name = u.Hostname()
		}
	}

	name = strings.Trim(unsafeName.ReplaceAllString(name, "_"), "._")
	if name == "" {
		return "", fmt.Errorf("cannot derive a page name")
	}
	return name, nil
}
