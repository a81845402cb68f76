// Package config loads the comictrans configuration.
//
// Settings are read from a YAML file whose sections match the pipeline
// stages. Every setting has a default, so a missing file is not an error.
// Secrets never live in the file: API keys and credentials are taken from
// the environment, optionally populated from a .env file by LoadEnv.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load
const (
	EnvOpenAIKey       = "OPENAI_API_KEY"
	EnvAnthropicKey    = "ANTHROPIC_API_KEY"
	EnvMistralKey      = "MISTRAL_API_KEY"
	EnvOllamaHost      = "OLLAMA_HOST"
	EnvGoogleCreds     = "GOOGLE_APPLICATION_CREDENTIALS"
	DefaultLogFileName = "comic_translator.log"
)

// Config is the complete configuration of a run
type Config struct {
	DataDir   string          `yaml:"data_dir"`
	Log       LogConfig       `yaml:"log"`
	Download  DownloadConfig  `yaml:"download"`
	OCR       OCRConfig       `yaml:"ocr"`
	Grouping  GroupingConfig  `yaml:"grouping"`
	Translate TranslateConfig `yaml:"translate"`
	Render    RenderConfig    `yaml:"render"`
	Output    OutputConfig    `yaml:"output"`
}

// LogConfig controls the log file and console output
type LogConfig struct {
	Level   string `yaml:"level"`
	File    string `yaml:"file"` // empty: <data_dir>/logs/comic_translator.log
	Console bool   `yaml:"console"`
}

// DownloadConfig controls page downloads
type DownloadConfig struct {
	Timeout     time.Duration `yaml:"timeout"`
	ImageClass  string        `yaml:"image_class"`
	SourceAttrs []string      `yaml:"source_attrs"`
	UserAgent   string        `yaml:"user_agent"`
}

// OCRConfig selects and configures the OCR backend
type OCRConfig struct {
	Backend     string           `yaml:"backend"` // tesseract, documentai or hocr
	Languages   []string         `yaml:"languages"`
	PageSegMode int              `yaml:"page_seg_mode"`
	HOCRPath    string           `yaml:"hocr_path"`
	DocumentAI  DocumentAIConfig `yaml:"documentai"`
}

// DocumentAIConfig identifies the Document AI processor
type DocumentAIConfig struct {
	ProjectID       string `yaml:"project_id"`
	Location        string `yaml:"location"`
	ProcessorID     string `yaml:"processor_id"`
	CredentialsFile string `yaml:"credentials_file"`
	MaxPixels       int    `yaml:"max_pixels"`
	DumpDir         string `yaml:"dump_dir"`
}

// GroupingConfig selects the word grouping strategy
type GroupingConfig struct {
	Strategy      string  `yaml:"strategy"` // line or density
	ThresholdX    float64 `yaml:"threshold_x"`
	ThresholdY    float64 `yaml:"threshold_y"`
	Radius        float64 `yaml:"radius"`
	MinPoints     int     `yaml:"min_points"`
	MinConfidence float64 `yaml:"min_confidence"`
}

// TranslateConfig selects the translation model
type TranslateConfig struct {
	Provider     string        `yaml:"provider"`
	Model        string        `yaml:"model"`
	BaseURL      string        `yaml:"base_url"`
	SourceLang   string        `yaml:"source_lang"`
	TargetLang   string        `yaml:"target_lang"`
	Temperature  *float64      `yaml:"temperature"`
	MaxRetries   uint64        `yaml:"max_retries"`
	RetryDelay   time.Duration `yaml:"retry_delay"`
	DetectSource bool          `yaml:"detect_source"`
	APIKey       string        `yaml:"-"`
}

// RenderConfig controls erasing and text drawing
type RenderConfig struct {
	Font          string  `yaml:"font"` // TTF path, empty for the embedded font
	MaxSize       float64 `yaml:"max_size"`
	MinSize       float64 `yaml:"min_size"`
	Step          float64 `yaml:"step"`
	EraseMode     string  `yaml:"erase_mode"` // fill, sample or inpaint
	Padding       int     `yaml:"padding"`
	FillColor     string  `yaml:"fill_color"`
	TextColor     string  `yaml:"text_color"`
	AutoContrast  bool    `yaml:"auto_contrast"`
	InpaintMethod string  `yaml:"inpaint_method"` // telea or ns
	InpaintRadius float64 `yaml:"inpaint_radius"`
}

// OutputConfig enables the optional artifacts
type OutputConfig struct {
	HOCR     bool `yaml:"hocr"`
	PDF      bool `yaml:"pdf"`
	PDFDebug bool `yaml:"pdf_debug"`
}

// LoadEnv loads environment files, .env when none are given. Missing
// files are ignored; variables already set are kept.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads the YAML file at path over the defaults, applies the
// environment and validates the result. An empty path or a missing file
// yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to open config: %w", err)
		default:
			defer f.Close()
			dec := yaml.NewDecoder(f)
			dec.KnownFields(true)
			if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv fills secrets and endpoints from the environment
func (c *Config) applyEnv() {
	switch strings.ToLower(c.Translate.Provider) {
	case "openai":
		c.Translate.APIKey = os.Getenv(EnvOpenAIKey)
	case "anthropic":
		c.Translate.APIKey = os.Getenv(EnvAnthropicKey)
	case "mistral":
		c.Translate.APIKey = os.Getenv(EnvMistralKey)
	case "ollama":
		if c.Translate.BaseURL == "" {
			c.Translate.BaseURL = os.Getenv(EnvOllamaHost)
		}
	}
	if c.OCR.DocumentAI.CredentialsFile == "" {
		c.OCR.DocumentAI.CredentialsFile = os.Getenv(EnvGoogleCreds)
	}
}

// LogFile returns the path of the log file
func (c *Config) LogFile() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(c.DataDir, "logs", DefaultLogFileName)
}

// ParseColor parses a hex color such as "#ffffff"
func ParseColor(s string) (color.Color, error) {
	c, err := colorful.Hex(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return c, nil
}
