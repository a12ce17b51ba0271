package services

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// OverlaySpec describes a uniform color layer composited over the resized
// image at the given opacity.
type OverlaySpec struct {
	R, G, B uint8
	Alpha   float64
}

// ProcessOptions tunes a single resize pass. Brightness is a percentage delta
// in the -100..100 range; negative values darken.
type ProcessOptions struct {
	Brightness float64
	Overlay    *OverlaySpec
}

// ImageProcessor resizes a source image to fill a target box and applies the
// requested adjustments, writing the encoded result to dstPath.
type ImageProcessor interface {
	Process(srcPath, dstPath string, width, height int, opts ProcessOptions) error
}

type Imaging struct{}

func NewImaging() *Imaging {
	return &Imaging{}
}

func (p *Imaging) Process(srcPath, dstPath string, width, height int, opts ProcessOptions) error {
	src, err := imaging.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open source image: %w", err)
	}

	img := imaging.Fill(src, width, height, imaging.Center, imaging.Lanczos)

	if opts.Brightness != 0 {
		img = imaging.AdjustBrightness(img, opts.Brightness)
	}

	if opts.Overlay != nil {
		layer := imaging.New(width, height, color.NRGBA{R: opts.Overlay.R, G: opts.Overlay.G, B: opts.Overlay.B, A: 255})
		img = imaging.Overlay(img, layer, image.Pt(0, 0), opts.Overlay.Alpha)
	}

	if err := imaging.Save(img, dstPath); err != nil {
		return fmt.Errorf("save processed image: %w", err)
	}
	return nil
}
