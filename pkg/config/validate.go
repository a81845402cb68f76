package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/gardar/comictrans/pkg/grouping"
	"github.com/gardar/comictrans/pkg/ocr"
	"github.com/gardar/comictrans/pkg/render"
	"github.com/gardar/comictrans/pkg/translate"
)

// Validate checks ranges and enumerated values. All problems are reported
// together.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...interface{}) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.DataDir != "", "data_dir is required")
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	check(c.Download.Timeout > 0, "download.timeout must be positive")

	switch c.OCR.Backend {
	case ocr.BackendTesseract, ocr.BackendHOCR:
	case ocr.BackendDocumentAI:
		d := c.OCR.DocumentAI
		check(d.ProjectID != "" && d.Location != "" && d.ProcessorID != "",
			"ocr.documentai needs project_id, location and processor_id")
		check(d.MaxPixels >= 0, "ocr.documentai.max_pixels must not be negative")
	default:
		errs = append(errs, fmt.Errorf("ocr.backend: unknown backend %q", c.OCR.Backend))
	}

	g := c.Grouping
	switch strings.ToLower(g.Strategy) {
	case "", grouping.StrategyLine:
		check(g.ThresholdX > 0 && g.ThresholdX <= 1, "grouping.threshold_x must be in (0,1]")
		check(g.ThresholdY > 0 && g.ThresholdY <= 1, "grouping.threshold_y must be in (0,1]")
	case grouping.StrategyDensity:
		check(g.Radius > 0, "grouping.radius must be positive")
		check(g.MinPoints >= 1, "grouping.min_points must be at least 1")
	default:
		errs = append(errs, fmt.Errorf("grouping.strategy: unknown strategy %q", g.Strategy))
	}
	check(g.MinConfidence >= 0 && g.MinConfidence <= 1, "grouping.min_confidence must be in [0,1]")

	t := c.Translate
	switch strings.ToLower(t.Provider) {
	case translate.ProviderOpenAI, translate.ProviderOllama, translate.ProviderAnthropic, translate.ProviderMistral:
	default:
		errs = append(errs, fmt.Errorf("translate.provider: unsupported provider %q", t.Provider))
	}
	check(t.Model != "", "translate.model is required")
	if !strings.EqualFold(t.SourceLang, translate.AutoLanguage) {
		if _, err := translate.ParseLanguage(t.SourceLang); err != nil {
			errs = append(errs, fmt.Errorf("translate.source_lang: %w", err))
		}
	}
	if _, err := translate.ParseLanguage(t.TargetLang); err != nil {
		errs = append(errs, fmt.Errorf("translate.target_lang: %w", err))
	}
	if t.Temperature != nil {
		check(*t.Temperature >= 0 && *t.Temperature <= 2, "translate.temperature must be in [0,2]")
	}

	r := c.Render
	check(r.MinSize > 0, "render.min_size must be positive")
	check(r.MaxSize >= r.MinSize, "render.max_size must not be below render.min_size")
	check(r.Step > 0, "render.step must be positive")
	check(r.Padding >= 0, "render.padding must not be negative")
	switch render.EraseMode(r.EraseMode) {
	case render.EraseFill, render.EraseSample:
	case render.EraseInpaint:
		check(r.InpaintRadius > 0, "render.inpaint_radius must be positive")
		m := strings.ToLower(r.InpaintMethod)
		check(m == "" || m == "telea" || m == "ns", "render.inpaint_method must be telea or ns")
	default:
		errs = append(errs, fmt.Errorf("render.erase_mode: unknown mode %q", r.EraseMode))
	}
	if _, err := ParseColor(r.FillColor); err != nil {
		errs = append(errs, fmt.Errorf("render.fill_color: %w", err))
	}
	if _, err := ParseColor(r.TextColor); err != nil {
		errs = append(errs, fmt.Errorf("render.text_color: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
