package config

import (
	"github.com/gardar/comictrans/pkg/download"
	"github.com/gardar/comictrans/pkg/gdocai"
	"github.com/gardar/comictrans/pkg/grouping"
	"github.com/gardar/comictrans/pkg/render"
	"github.com/gardar/comictrans/pkg/translate"
)

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		DataDir: "data",
		Log: LogConfig{
			Level:   "info",
			Console: true,
		},
		Download: DownloadConfig{
			Timeout:     download.DefaultTimeout,
			ImageClass:  download.DefaultImageClass,
			SourceAttrs: append([]string(nil), download.DefaultSourceAttrs...),
			UserAgent:   download.DefaultUserAgent,
		},
		OCR: OCRConfig{
			Backend:   "tesseract",
			Languages: []string{"eng"},
			DocumentAI: DocumentAIConfig{
				Location:  "us",
				MaxPixels: gdocai.DefaultMaxPixels,
			},
		},
		Grouping: GroupingConfig{
			Strategy:   grouping.StrategyLine,
			ThresholdX: grouping.DefaultThreshold,
			ThresholdY: grouping.DefaultThreshold,
			Radius:     grouping.DefaultRadius,
			MinPoints:  grouping.DefaultMinPoints,
		},
		Translate: TranslateConfig{
			Provider:   translate.ProviderOpenAI,
			Model:      "gpt-4o-mini",
			SourceLang: translate.AutoLanguage,
			TargetLang: "pt",
			MaxRetries: translate.DefaultMaxRetries,
			RetryDelay: translate.DefaultRetryDelay,
		},
		Render: RenderConfig{
			MaxSize:       render.DefaultMaxSize,
			MinSize:       render.DefaultMinSize,
			Step:          render.DefaultStep,
			EraseMode:     string(render.EraseFill),
			Padding:       render.DefaultPadding,
			FillColor:     "#ffffff",
			TextColor:     "#000000",
			InpaintMethod: "telea",
			InpaintRadius: render.DefaultInpaintRadius,
		},
	}
}
