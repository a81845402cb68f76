package render

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"strings"

	_ "golang.org/x/image/webp"
)

// JPEGQuality is used when writing JPEG output
const JPEGQuality = 95

// DecodeImage decodes PNG, JPEG, GIF or WebP data and reports the format name
func DecodeImage(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// ReadImage reads and decodes an image file
func ReadImage(path string) (image.Image, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image: %w", err)
	}
	return DecodeImage(data)
}

// OutputFormat maps an input format to the format written for it.
// JPEG stays JPEG, everything else is written as PNG.
func OutputFormat(format string) string {
	switch strings.ToLower(format) {
	case "jpeg", "jpg":
		return "jpeg"
	default:
		return "png"
	}
}

// Extension returns the file extension, dot included, for a format name
func Extension(format string) string {
	switch strings.ToLower(format) {
	case "jpeg", "jpg":
		return ".jpg"
	case "gif":
		return ".gif"
	case "webp":
		return ".webp"
	default:
		return ".png"
	}
}

// EncodeImage encodes img in the output format for format
func EncodeImage(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch OutputFormat(format) {
	case "jpeg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality})
	default:
		err = png.Encode(&buf, img)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteImage encodes img and writes it to path
func WriteImage(path string, img image.Image, format string) error {
	data, err := EncodeImage(img, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	return nil
}
