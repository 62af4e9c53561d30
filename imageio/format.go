package imageio

import (
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// Format is an image container format.
type Format string

// Format constants
const (
	// FormatJPEG is the JPEG image format.
	FormatJPEG Format = "jpeg"
	// FormatPNG is the PNG image format.
	FormatPNG Format = "png"
	// FormatBMP is the BMP image format.
	FormatBMP Format = "bmp"
	// FormatWebP is the WebP image format.
	FormatWebP Format = "webp"
)

var formatsByExt = map[string]Format{
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".png":  FormatPNG,
	".bmp":  FormatBMP,
	".webp": FormatWebP,
}

// FormatFromPath returns the format implied by the extension of path, case-insensitively.
func FormatFromPath(path string) (Format, bool) {
	f, ok := formatsByExt[strings.ToLower(filepath.Ext(path))]
	return f, ok
}

// Open decodes an image file.
//
// WebP files go through the libwebp decoder; everything else is left to imaging, which also
// honours the EXIF orientation of JPEG files.
func Open(path string) (image.Image, error) {
	if f, _ := FormatFromPath(path); f == FormatWebP {
		return openWebP(path)
	}
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrapf(err, "open image %s", path)
	}
	return img, nil
}

func openWebP(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open image %s", path)
	}
	defer file.Close()

	img, err := webp.Decode(file)
	if err != nil {
		return nil, errors.Wrapf(err, "decode webp %s", path)
	}
	return img, nil
}

func saveWebP(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := webp.Encode(file, img, &webp.Options{Lossless: true}); err != nil {
		file.Close()
		return errors.Wrapf(err, "encode webp %s", path)
	}
	return errors.Wrapf(file.Close(), "close %s", path)
}
