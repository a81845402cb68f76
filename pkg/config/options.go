package config

import (
	"github.com/sirupsen/logrus"

	"github.com/gardar/comictrans/pkg/download"
	"github.com/gardar/comictrans/pkg/gdocai"
	"github.com/gardar/comictrans/pkg/grouping"
	"github.com/gardar/comictrans/pkg/render"
	"github.com/gardar/comictrans/pkg/translate"
)

// DownloadOptions converts the download section
func (c *Config) DownloadOptions() download.Options {
	return download.Options{
		Timeout:     c.Download.Timeout,
		ImageClass:  c.Download.ImageClass,
		SourceAttrs: c.Download.SourceAttrs,
		UserAgent:   c.Download.UserAgent,
	}
}

// DocumentAIConfig converts the Document AI section
func (c *Config) DocumentAIConfig(logger *logrus.Entry) gdocai.Config {
	d := c.OCR.DocumentAI
	return gdocai.Config{
		ProjectID:       d.ProjectID,
		Location:        d.Location,
		ProcessorID:     d.ProcessorID,
		CredentialsFile: d.CredentialsFile,
		MaxPixels:       d.MaxPixels,
		DumpDir:         d.DumpDir,
		Logger:          logger,
	}
}

// GroupingOptions converts the grouping section
func (c *Config) GroupingOptions() grouping.Options {
	return grouping.Options{
		ThresholdX: c.Grouping.ThresholdX,
		ThresholdY: c.Grouping.ThresholdY,
		Radius:     c.Grouping.Radius,
		MinPoints:  c.Grouping.MinPoints,
	}
}

// ProviderConfig converts the model selection of the translate section
func (c *Config) ProviderConfig() translate.ProviderConfig {
	return translate.ProviderConfig{
		Provider: c.Translate.Provider,
		Model:    c.Translate.Model,
		BaseURL:  c.Translate.BaseURL,
		APIKey:   c.Translate.APIKey,
	}
}

// LLMOptions converts the retry and language settings of the translate section
func (c *Config) LLMOptions(logger *logrus.Entry) translate.LLMOptions {
	return translate.LLMOptions{
		SourceLang:  c.Translate.SourceLang,
		Temperature: c.Translate.Temperature,
		MaxRetries:  c.Translate.MaxRetries,
		RetryDelay:  c.Translate.RetryDelay,
		Logger:      logger,
	}
}

// RenderOptions converts the render section. Font and Inpainter are left
// for the caller, which owns loading the font file and the OpenCV backend.
func (c *Config) RenderOptions() (render.Options, error) {
	r := c.Render
	fill, err := ParseColor(r.FillColor)
	if err != nil {
		return render.Options{}, err
	}
	text, err := ParseColor(r.TextColor)
	if err != nil {
		return render.Options{}, err
	}
	return render.Options{
		Fit: render.FitOptions{
			MaxSize: r.MaxSize,
			MinSize: r.MinSize,
			Step:    r.Step,
		},
		Erase: render.EraseOptions{
			Mode:          render.EraseMode(r.EraseMode),
			Padding:       r.Padding,
			Color:         fill,
			InpaintRadius: r.InpaintRadius,
		},
		TextColor:    text,
		AutoContrast: r.AutoContrast,
	}, nil
}
