//go:build gocv

package images

import (
	"sort"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// CVExtractor is a BoxExtractor backed by OpenCV contour finding.
//
// It traces the external contour of every foreground region and returns its bounding rect.
// Unlike MaskToBoxes it does not widen boxes by the outside boundary pixels and it closes
// contours along the image border, so a region covering the whole image still yields a box.
// Boxes are returned in raster order of their top-left corner.
type CVExtractor struct{}

// Extract implements BoxExtractor.
func (CVExtractor) Extract(mask Grid) ([]Box, error) {
	if mask.Empty() || !mask.Any() {
		return nil, nil
	}

	mat := gocv.NewMatWithSize(mask.Height, mask.Width, gocv.MatTypeCV8UC1)
	defer mat.Close()
	if mat.Empty() {
		return nil, errors.New("failed to allocate mask matrix")
	}

	for y := 0; y < mask.Height; y++ {
		for x := 0; x < mask.Width; x++ {
			var v uint8
			if mask.Pix[y*mask.Width+x] != 0 {
				v = foregroundValue
			}
			mat.SetUCharAt(y, x, v)
		}
	}

	contours := gocv.FindContours(mat, gocv.RetrievalExternal, gocv.ChainApproxNone)
	defer contours.Close()

	boxes := make([]Box, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		rect := gocv.BoundingRect(contours.At(i))
		boxes = append(boxes, Box{
			X1: float32(rect.Min.X),
			Y1: float32(rect.Min.Y),
			X2: float32(rect.Max.X),
			Y2: float32(rect.Max.Y),
		})
	}

	sort.SliceStable(boxes, func(i, j int) bool {
		if boxes[i].Y1 != boxes[j].Y1 {
			return boxes[i].Y1 < boxes[j].Y1
		}
		return boxes[i].X1 < boxes[j].X1
	})

	return boxes, nil
}
