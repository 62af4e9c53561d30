// Package imageio - reads images and model maps from disk into grids, and writes binary masks.
package imageio

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
	"github.com/nvr-ai/go-camoxai/images"
	"github.com/pkg/errors"
)

// MaxGray is the range of every map read by this package.
const MaxGray = 255

// GrayGrid converts img to gray levels in [0,255].
//
// A positive width and height resample the image to that size first, which aligns a map with
// the image it describes.
func GrayGrid(img image.Image, width, height int) images.Grid {
	b := img.Bounds()
	if width > 0 && height > 0 && (b.Dx() != width || b.Dy() != height) {
		img = imaging.Resize(img, width, height, imaging.Linear)
	}

	gray := imaging.Grayscale(img)
	g := images.NewGrid(gray.Rect.Dx(), gray.Rect.Dy())
	for y := 0; y < g.Height; y++ {
		row := gray.Pix[y*gray.Stride:]
		for x := 0; x < g.Width; x++ {
			g.Pix[y*g.Width+x] = float32(row[x*4])
		}
	}
	return g
}

// LoadGray reads a map file as a [0,255] grid of the given size. Zero sizes keep the file's size.
func LoadGray(path string, width, height int) (images.Grid, error) {
	img, err := Open(path)
	if err != nil {
		return images.Grid{}, err
	}
	return GrayGrid(img, width, height), nil
}

// ThresholdLevel converts a [0,1] threshold to the smallest 8-bit level strictly above it.
// ok is false when no 8-bit value is above the threshold.
func ThresholdLevel(t float64) (level uint8, ok bool) {
	l := math.Floor(t*MaxGray) + 1
	if l > MaxGray {
		return 0, false
	}
	return uint8(max(l, 0)), true
}

// BinaryMask thresholds img at t in [0,1]. Pixels strictly above the threshold are white.
func BinaryMask(img image.Image, t float64) *image.Gray {
	level, ok := ThresholdLevel(t)
	if !ok {
		return image.NewGray(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	}
	return segment.Threshold(img, level)
}

// SaveMask writes the binary mask of img at t to path. The format follows the file extension;
// WebP masks are written lossless.
func SaveMask(path string, img image.Image, t float64) error {
	mask := BinaryMask(img, t)
	if f, _ := FormatFromPath(path); f == FormatWebP {
		return saveWebP(path, mask)
	}
	if err := imaging.Save(mask, path); err != nil {
		return errors.Wrapf(err, "save mask %s", path)
	}
	return nil
}
