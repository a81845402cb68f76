package pdfocr

import (
	"io"
)

// OCRConfig holds user options for building the PDF
type OCRConfig struct {
	Debug       bool      // Draw the text layer in red with word boxes
	LayerName   string    // Base name of the text layer (page number is appended for multi-page output)
	LogWarnings bool      // Whether to print warnings
	Logger      io.Writer // Custom logger for warnings (nil = stdout)
	Font        FontConfig
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() OCRConfig {
	return OCRConfig{
		Debug:       false,
		LayerName:   "Translated Text",
		LogWarnings: true,
		Logger:      nil, // stdout
		Font:        DefaultFont,
	}
}

// FontConfig contains font settings for the text layer
type FontConfig struct {
	Name        string  // Font name (e.g., "Helvetica")
	Style       string  // Font style ("", "B", "I", "BI")
	Size        float64 // Default font size
	AscentRatio float64 // Vertical positioning ratio
}

// DefaultFont sets the default font to Helvetica which is tried and tested for the text layer
var DefaultFont = FontConfig{
	Name:        "Helvetica",
	Style:       "",
	Size:        10,
	AscentRatio: 0.718,
}
