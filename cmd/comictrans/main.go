// comictrans translates the text of a comic page and draws it back onto the page.
//
// The page is downloaded (or read from disk), recognized with OCR, grouped
// into text blocks, translated with a chat model and composed into a new
// image. Every stage writes its result under the data directory so a run can
// be resumed from the extracted text.
//
// Configuration:
//
// Settings are read from a YAML file; every key is optional:
//
//	data_dir: data
//	ocr:
//	  backend: tesseract        # tesseract, documentai or hocr
//	  languages: [eng]
//	grouping:
//	  strategy: line            # line or density
//	translate:
//	  provider: openai          # openai, ollama, anthropic or mistral
//	  model: gpt-4o-mini
//	  target_lang: pt
//	render:
//	  erase_mode: fill          # fill, sample or inpaint
//
// API keys are taken from the environment (OPENAI_API_KEY, ANTHROPIC_API_KEY,
// MISTRAL_API_KEY) or from a .env file.
//
// Usage:
//
//	comictrans -url https://example.com/chapter-1/page-3 [options]
//	comictrans -image page.jpg -lang fr [options]
//
// Input flags (one required):
//
//	-url string        Page URL, either a reader page or the image itself
//	-image string      Local page image
//
// Options:
//
//	-config string     Path to the YAML configuration file (default "config.yml")
//	-env string        Comma separated list of environment files (default ".env")
//	-extracted string  Resume from an extracted text JSON file
//	-name string       Page name used for output files
//	-lang string       Target language, overrides translate.target_lang
//	-grouping string   Grouping strategy, overrides grouping.strategy
//	-ocr string        OCR backend, overrides ocr.backend
//	-hocr-input string hOCR file for the hocr backend
//	-hocr              Also write the translated hOCR
//	-pdf               Also write a PDF with an invisible text layer
//
// Example:
//
//	export OPENAI_API_KEY=...
//	comictrans -config config.yml -url https://example.com/read/42 -lang pt -pdf
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gardar/comictrans/pkg/config"
	"github.com/gardar/comictrans/pkg/download"
	"github.com/gardar/comictrans/pkg/gdocai"
	"github.com/gardar/comictrans/pkg/grouping"
	"github.com/gardar/comictrans/pkg/logging"
	"github.com/gardar/comictrans/pkg/ocr"
	"github.com/gardar/comictrans/pkg/ocr/tesseract"
	"github.com/gardar/comictrans/pkg/pdfocr"
	"github.com/gardar/comictrans/pkg/pipeline"
	"github.com/gardar/comictrans/pkg/render"
	"github.com/gardar/comictrans/pkg/render/inpaint"
	"github.com/gardar/comictrans/pkg/translate"
)

func main() {
	configPath := flag.String("config", "config.yml", "Path to the config YAML file")
	envFiles := flag.String("env", ".env", "Comma separated list of environment files")

	pageURL := flag.String("url", "", "Page URL (required if -image is not specified)")
	imagePath := flag.String("image", "", "Local page image (required if -url is not specified)")
	extractedPath := flag.String("extracted", "", "Resume from an extracted text JSON file")
	pageName := flag.String("name", "", "Page name used for output files")

	lang := flag.String("lang", "", "Target language (ISO 639-1)")
	strategy := flag.String("grouping", "", "Grouping strategy: line or density")
	backend := flag.String("ocr", "", "OCR backend: tesseract, documentai or hocr")
	hocrInput := flag.String("hocr-input", "", "hOCR file for the hocr backend")
	writeHOCR := flag.Bool("hocr", false, "Also write the translated hOCR")
	writePDF := flag.Bool("pdf", false, "Also write a PDF with an invisible text layer")

	flag.Parse()

	if *pageURL == "" && *imagePath == "" {
		fmt.Fprintln(os.Stderr, "Error: Either -url or -image flag must be provided")
		fmt.Fprintln(os.Stderr, "Usage:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := config.LoadEnv(splitList(*envFiles)...); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Command line overrides
	if *lang != "" {
		cfg.Translate.TargetLang = *lang
	}
	if *strategy != "" {
		cfg.Grouping.Strategy = *strategy
	}
	if *backend != "" {
		cfg.OCR.Backend = *backend
	}
	if *hocrInput != "" {
		cfg.OCR.HOCRPath = *hocrInput
	}
	cfg.Output.HOCR = cfg.Output.HOCR || *writeHOCR
	cfg.Output.PDF = cfg.Output.PDF || *writePDF
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, logCloser, err := logging.New(logging.Config{
		Level:   cfg.Log.Level,
		File:    cfg.LogFile(),
		Console: cfg.Log.Console,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, pipeline.Request{
		URL:           *pageURL,
		ImagePath:     *imagePath,
		ExtractedPath: *extractedPath,
		PageName:      *pageName,
	}); err != nil {
		logger.WithError(err).Error("Page failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logCloser.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger, req pipeline.Request) error {
	env := &pipeline.Env{Dirs: pipeline.NewDirs(cfg.DataDir), Log: logger}
	if err := env.Ensure(); err != nil {
		return err
	}

	engine, err := newEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer engine.Close()

	grouper, err := grouping.New(cfg.Grouping.Strategy, cfg.GroupingOptions())
	if err != nil {
		return err
	}

	model, err := translate.NewModel(cfg.ProviderConfig())
	if err != nil {
		return err
	}
	translator, err := translate.NewLLM(model, cfg.LLMOptions(logger.WithField("component", "translate")))
	if err != nil {
		return err
	}

	composer, err := newComposer(cfg)
	if err != nil {
		return err
	}

	pdfConfig := pdfocr.DefaultConfig()
	pdfConfig.Debug = cfg.Output.PDFDebug

	p := pipeline.New(env, pipeline.Stages{
		Downloader: download.New(env.Dirs.Downloads, cfg.DownloadOptions()),
		Recognizer: engine,
		Grouper:    grouper,
		Translator: translator,
		Composer:   composer,
	}, pipeline.Options{
		TargetLang:    cfg.Translate.TargetLang,
		MinConfidence: cfg.Grouping.MinConfidence,
		DetectSource:  cfg.Translate.DetectSource,
		WriteHOCR:     cfg.Output.HOCR,
		WritePDF:      cfg.Output.PDF,
		PDF:           pdfConfig,
	})

	res, err := p.ProcessPage(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("Translated %s in %s\n", res.Page, res.Duration.Round(time.Millisecond))
	for _, path := range []string{res.Output.Image, res.Output.HOCR, res.Output.PDF} {
		if path != "" {
			fmt.Printf("  %s\n", path)
		}
	}
	return nil
}

// newEngine creates the configured OCR backend
func newEngine(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (ocr.Engine, error) {
	switch cfg.OCR.Backend {
	case ocr.BackendTesseract:
		return tesseract.New(tesseract.Options{
			Languages:   cfg.OCR.Languages,
			PageSegMode: cfg.OCR.PageSegMode,
		})
	case ocr.BackendDocumentAI:
		return gdocai.NewClient(ctx, cfg.DocumentAIConfig(logger.WithField("component", "documentai")))
	case ocr.BackendHOCR:
		return ocr.HOCRFile{Path: cfg.OCR.HOCRPath}, nil
	default:
		return nil, fmt.Errorf("unsupported OCR backend: %s", cfg.OCR.Backend)
	}
}

// newComposer loads the font and the inpainting backend the render section asks for
func newComposer(cfg *config.Config) (*render.Composer, error) {
	opts, err := cfg.RenderOptions()
	if err != nil {
		return nil, err
	}
	if cfg.Render.Font != "" {
		if opts.Font, err = render.LoadFont(cfg.Render.Font); err != nil {
			return nil, err
		}
	}
	if opts.Erase.Mode == render.EraseInpaint {
		if opts.Inpainter, err = inpaint.New(cfg.Render.InpaintMethod); err != nil {
			return nil, err
		}
	}
	return render.NewComposer(opts)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
