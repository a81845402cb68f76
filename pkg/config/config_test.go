package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gardar/comictrans/pkg/render"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))

	require.NoError(t, err)
	assert.Equal(t, Default().Grouping, cfg.Grouping)
	assert.Equal(t, "line", cfg.Grouping.Strategy)
	assert.Equal(t, filepath.Join("data", "logs", "comic_translator.log"), cfg.LogFile())

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "pt", cfg.Translate.TargetLang)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, "comictrans.yaml", `
data_dir: /srv/comics
download:
  timeout: 5s
grouping:
  strategy: density
  radius: 60
  min_confidence: 0.3
translate:
  provider: ollama
  model: llama3
  target_lang: de
  temperature: 0.2
  retry_delay: 250ms
render:
  erase_mode: sample
  text_color: "#202020"
output:
  pdf: true
`)
	t.Setenv(EnvOllamaHost, "http://gpu-box:11434")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "/srv/comics", cfg.DataDir)
	assert.Equal(t, 5*time.Second, cfg.Download.Timeout)
	assert.Equal(t, "density", cfg.Grouping.Strategy)
	assert.Equal(t, 60.0, cfg.Grouping.Radius)
	assert.Equal(t, 1, cfg.Grouping.MinPoints)
	assert.Equal(t, 0.3, cfg.Grouping.MinConfidence)
	assert.Equal(t, "http://gpu-box:11434", cfg.Translate.BaseURL)
	require.NotNil(t, cfg.Translate.Temperature)
	assert.Equal(t, 0.2, *cfg.Translate.Temperature)
	assert.Equal(t, 250*time.Millisecond, cfg.Translate.RetryDelay)
	assert.True(t, cfg.Output.PDF)
	assert.Equal(t, DefaultLogFileName, filepath.Base(cfg.LogFile()))

	opts, err := cfg.RenderOptions()
	require.NoError(t, err)
	assert.Equal(t, render.EraseSample, opts.Erase.Mode)
	r, g, b, _ := opts.TextColor.RGBA()
	assert.Equal(t, []uint32{0x2020, 0x2020, 0x2020}, []uint32{r, g, b})
}

func TestLoadAPIKeyFromEnv(t *testing.T) {
	path := writeFile(t, "c.yaml", "translate:\n  provider: anthropic\n  model: claude-3-5-haiku-latest\n")
	t.Setenv(EnvAnthropicKey, "sk-test")
	t.Setenv(EnvGoogleCreds, "/etc/gcp.json")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.ProviderConfig().APIKey)
	assert.Equal(t, "/etc/gcp.json", cfg.DocumentAIConfig(nil).CredentialsFile)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeFile(t, "c.yaml", "grouping:\n  stratgy: line\n")

	_, err := Load(path)

	assert.ErrorContains(t, err, "stratgy")
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"strategy":   func(c *Config) { c.Grouping.Strategy = "kmeans" },
		"threshold":  func(c *Config) { c.Grouping.ThresholdX = 0 },
		"confidence": func(c *Config) { c.Grouping.MinConfidence = 1.5 },
		"provider":   func(c *Config) { c.Translate.Provider = "babelfish" },
		"target":     func(c *Config) { c.Translate.TargetLang = "portuguese" },
		"source":     func(c *Config) { c.Translate.SourceLang = "fil" },
		"sizes":      func(c *Config) { c.Render.MaxSize = 5 },
		"erase":      func(c *Config) { c.Render.EraseMode = "blur" },
		"color":      func(c *Config) { c.Render.FillColor = "white" },
		"backend":    func(c *Config) { c.OCR.Backend = "abbyy" },
		"documentai": func(c *Config) { c.OCR.Backend = "documentai" },
		"level":      func(c *Config) { c.Log.Level = "loud" },
		"timeout":    func(c *Config) { c.Download.Timeout = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, Default().Validate())
}

func TestValidateReportsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Render.Step = 0
	cfg.Translate.Model = ""

	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "render.step")
	assert.Contains(t, err.Error(), "translate.model")
}

func TestLoadEnv(t *testing.T) {
	path := writeFile(t, ".env", "COMICTRANS_TEST_KEY=from-file\n")
	t.Setenv("COMICTRANS_TEST_KEY", "")
	os.Unsetenv("COMICTRANS_TEST_KEY")

	require.NoError(t, LoadEnv(path, filepath.Join(t.TempDir(), "missing.env")))
	assert.Equal(t, "from-file", os.Getenv("COMICTRANS_TEST_KEY"))
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#ff0000")
	require.NoError(t, err)
	assert.Equal(t, color.RGBAModel.Convert(color.RGBA{R: 255, A: 255}), color.RGBAModel.Convert(c))

	_, err = ParseColor("red")
	assert.Error(t, err)
}
