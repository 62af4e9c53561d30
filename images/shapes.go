// Package images - geometry primitives and region maps used to explain a camouflage verdict.
package images

import (
	"fmt"
	"image"

	"github.com/chewxy/math32"
	"github.com/nvr-ai/go-camoxai/common"
)

// Box is an axis-aligned bounding box in image pixel coordinates.
//
// The invariant X1 <= X2 && Y1 <= Y2 holds for every box produced by this package. Degenerate
// (zero width or height) boxes are valid; they count as areas but cannot be cropped.
type Box struct {
	X1 float32 `json:"x1"`
	Y1 float32 `json:"y1"`
	X2 float32 `json:"x2"`
	Y2 float32 `json:"y2"`
}

// NewBox returns the canonical box spanned by two corners.
func NewBox(x1, y1, x2, y2 float32) Box {
	return Box{
		X1: math32.Min(x1, x2),
		Y1: math32.Min(y1, y2),
		X2: math32.Max(x1, x2),
		Y2: math32.Max(y1, y2),
	}
}

// Width returns X2 - X1.
func (b Box) Width() float32 { return b.X2 - b.X1 }

// Height returns Y2 - Y1.
func (b Box) Height() float32 { return b.Y2 - b.Y1 }

// Area returns the box area, zero for degenerate boxes.
func (b Box) Area() float32 {
	w, h := b.Width(), b.Height()
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Degenerate reports whether the box has zero width or height.
func (b Box) Degenerate() bool {
	return b.Width() <= 0 || b.Height() <= 0
}

// Center returns the box centroid.
func (b Box) Center() (float32, float32) {
	return (b.X1 + b.X2) / 2, (b.Y1 + b.Y2) / 2
}

// ToRect converts the box to an image.Rectangle for cropping. Fractional pixels are truncated.
func (b Box) ToRect() image.Rectangle {
	return image.Rect(int(b.X1), int(b.Y1), int(b.X2), int(b.Y2)).Canon()
}

func (b Box) String() string {
	return fmt.Sprintf("(%g, %g), (%g, %g)", b.X1, b.Y1, b.X2, b.Y2)
}

// Overlaps reports whether the 1-D projections of a and b intersect on both axes.
//
// Bounds are inclusive, so boxes that only touch along an edge overlap. This is an existence
// test, not an area-weighted one.
func Overlaps(a, b Box) bool {
	overlap1D := func(lo1, hi1, lo2, hi2 float32) bool {
		return hi1 >= lo2 && hi2 >= lo1
	}
	return overlap1D(a.X1, a.X2, b.X1, b.X2) && overlap1D(a.Y1, a.Y2, b.Y1, b.Y2)
}

// IoU calculates the Intersection over Union of two boxes.
//
// The intersection corner is the max of the top-left corners and the min of the bottom-right
// corners. A non-positive intersection width or height means the boxes are disjoint and the
// result is 0. A box with non-positive area also yields 0, which keeps the division safe.
//
// Example:
//
//	a := Box{X1: 0, Y1: 0, X2: 100, Y2: 100}
//	b := Box{X1: 50, Y1: 50, X2: 150, Y2: 150}
//	IoU(a, b) // 2500 / 17500 ≈ 0.142857
func IoU(a, b Box) float32 {
	areaA, areaB := a.Area(), b.Area()
	if areaA <= 0 || areaB <= 0 {
		return 0
	}

	ix1 := math32.Max(a.X1, b.X1)
	iy1 := math32.Max(a.Y1, b.Y1)
	ix2 := math32.Min(a.X2, b.X2)
	iy2 := math32.Min(a.Y2, b.Y2)

	interW := ix2 - ix1
	interH := iy2 - iy1
	if interW <= 0 || interH <= 0 {
		return 0
	}
	interArea := interW * interH

	// Union(A, B) = Area(A) + Area(B) - Intersection(A, B)
	unionArea := areaA + areaB - interArea
	if unionArea <= 0 {
		return 0
	}
	return math32.Min(interArea/unionArea, 1)
}

// CentroidDistance returns the Euclidean distance between the centers of a and b.
func CentroidDistance(a, b Box) float32 {
	ax, ay := a.Center()
	bx, by := b.Center()
	dx, dy := ax-bx, ay-by
	return math32.Sqrt(dx*dx + dy*dy)
}

// UnionBox returns the smallest box enclosing every box in boxes.
//
// Returns an error wrapping common.ErrInvalidInput when boxes is empty.
func UnionBox(boxes []Box) (Box, error) {
	if len(boxes) == 0 {
		return Box{}, common.InvalidInput("union of an empty box list")
	}

	u := boxes[0]
	for _, b := range boxes[1:] {
		u.X1 = math32.Min(u.X1, b.X1)
		u.Y1 = math32.Min(u.Y1, b.Y1)
		u.X2 = math32.Max(u.X2, b.X2)
		u.Y2 = math32.Max(u.Y2, b.Y2)
	}
	return u, nil
}
