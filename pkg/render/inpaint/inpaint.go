// Package inpaint reconstructs erased text regions with OpenCV.
//
// It is kept apart from package render because gocv links against the
// OpenCV C++ libraries through cgo.
package inpaint

import (
	"fmt"
	"image"
	"strings"

	"gocv.io/x/gocv"
)

// Method names accepted by New
const (
	MethodTelea = "telea"
	MethodNS    = "ns"
)

// OpenCV implements render.Inpainter with cv::inpaint
type OpenCV struct {
	method gocv.InpaintMethods
}

// New returns an inpainter using the named method, Telea when empty
func New(method string) (*OpenCV, error) {
	switch strings.ToLower(method) {
	case "", MethodTelea:
		return &OpenCV{method: gocv.Telea}, nil
	case MethodNS:
		return &OpenCV{method: gocv.NS}, nil
	default:
		return nil, fmt.Errorf("unknown inpainting method %q", method)
	}
}

// Inpaint fills the non-zero pixels of mask from their neighbourhood
func (o *OpenCV) Inpaint(img image.Image, mask *image.Gray, radius float64) (image.Image, error) {
	if img.Bounds().Size() != mask.Bounds().Size() {
		return nil, fmt.Errorf("mask is %v, image is %v", mask.Bounds().Size(), img.Bounds().Size())
	}

	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}
	defer src.Close()

	m, err := gocv.ImageGrayToMatGray(mask)
	if err != nil {
		return nil, fmt.Errorf("failed to convert mask: %w", err)
	}
	defer m.Close()

	dst := gocv.NewMat()
	defer dst.Close()

	gocv.Inpaint(src, m, &dst, float32(radius), o.method)

	out, err := dst.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert inpainted image: %w", err)
	}
	return out, nil
}
