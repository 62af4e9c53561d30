package images

import (
	"image"
	"image/color"

	"github.com/nfnt/resize"
	"github.com/nvr-ai/go-camoxai/common"
)

// Grid is a dense 2-D scalar map stored row-major.
//
// A Grid holds binary maps (0 / 1), saliency or fixation maps (either [0,1] or [0,255]) and
// weak-camouflage region masks. Grids handed to the decision hierarchy are treated as
// immutable.
type Grid struct {
	Width  int
	Height int
	Pix    []float32
}

// NewGrid allocates a zeroed width x height grid.
func NewGrid(width, height int) Grid {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return Grid{Width: width, Height: height, Pix: make([]float32, width*height)}
}

// GridFromRows builds a grid from rows of equal length.
func GridFromRows(rows [][]float32) (Grid, error) {
	if len(rows) == 0 {
		return Grid{}, nil
	}
	g := NewGrid(len(rows[0]), len(rows))
	for y, row := range rows {
		if len(row) != g.Width {
			return Grid{}, common.DimensionMismatch("grid row", g.Width, 1, len(row), 1)
		}
		copy(g.Pix[y*g.Width:], row)
	}
	return g, nil
}

// At returns the value at (x, y), zero outside of the grid.
func (g Grid) At(x, y int) float32 {
	if x < 0 || y < 0 || x >= g.Width || y >= g.Height {
		return 0
	}
	return g.Pix[y*g.Width+x]
}

// Set stores v at (x, y). Out of range coordinates are ignored.
func (g Grid) Set(x, y int, v float32) {
	if x < 0 || y < 0 || x >= g.Width || y >= g.Height {
		return
	}
	g.Pix[y*g.Width+x] = v
}

// Empty reports whether the grid has no cells.
func (g Grid) Empty() bool {
	return g.Width == 0 || g.Height == 0
}

// Any reports whether any cell is non-zero. For a binary map this is "object present".
func (g Grid) Any() bool {
	for _, v := range g.Pix {
		if v != 0 {
			return true
		}
	}
	return false
}

// Count returns the number of non-zero cells.
func (g Grid) Count() int {
	n := 0
	for _, v := range g.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

// Max returns the largest value in the grid, zero for an empty grid.
func (g Grid) Max() float32 {
	var m float32
	for i, v := range g.Pix {
		if i == 0 || v > m {
			m = v
		}
	}
	return m
}

// SameSize returns an error wrapping common.ErrDimensionMismatch when g is not width x height.
func (g Grid) SameSize(what string, width, height int) error {
	if g.Width != width || g.Height != height {
		return common.DimensionMismatch(what, width, height, g.Width, g.Height)
	}
	return nil
}

// Clone returns a deep copy of g.
func (g Grid) Clone() Grid {
	out := Grid{Width: g.Width, Height: g.Height, Pix: make([]float32, len(g.Pix))}
	copy(out.Pix, g.Pix)
	return out
}

// Binarize returns a 0 / 1 map of the cells strictly above threshold.
//
// threshold must already be expressed in the native range of g (see policy.ScaleThreshold);
// comparing a [0,1] threshold against a [0,255] map classifies nearly everything as foreground.
func Binarize(g Grid, threshold float32) Grid {
	out := NewGrid(g.Width, g.Height)
	for i, v := range g.Pix {
		if v > threshold {
			out.Pix[i] = 1
		}
	}
	return out
}

// Normalize divides every cell by maxValue, mapping a [0,maxValue] map onto [0,1].
func Normalize(g Grid, maxValue float32) Grid {
	out := g.Clone()
	if maxValue <= 0 || maxValue == 1 {
		return out
	}
	for i := range out.Pix {
		out.Pix[i] /= maxValue
	}
	return out
}

// MaskWith keeps the values of g where mask is non-zero and clears the rest.
func MaskWith(g, mask Grid) (Grid, error) {
	if err := mask.SameSize("mask", g.Width, g.Height); err != nil {
		return Grid{}, err
	}
	out := NewGrid(g.Width, g.Height)
	for i, m := range mask.Pix {
		if m != 0 {
			out.Pix[i] = g.Pix[i]
		}
	}
	return out, nil
}

// WeakRegions marks the cells of a normalized fixation map whose value is above level.
//
// The fixation colormap is black up to one third of the range and ramps to red above it, so
// the default level used by the pipeline is 1/3.
func WeakRegions(fixation Grid, level float32) Grid {
	return Binarize(fixation, level)
}

// ResampleGrid rescales g to width x height with bilinear interpolation.
//
// Values are assumed to lie in [0, maxValue]; they are carried through a 16-bit gray image so
// the result keeps the same range.
func ResampleGrid(g Grid, width, height int, maxValue float32) (Grid, error) {
	if width <= 0 || height <= 0 {
		return Grid{}, common.InvalidInput("resample to %dx%d", width, height)
	}
	if g.Empty() {
		return Grid{}, common.InvalidInput("resample of an empty grid")
	}
	if g.Width == width && g.Height == height {
		return g.Clone(), nil
	}
	if maxValue <= 0 {
		maxValue = 1
	}

	src := image.NewGray16(image.Rect(0, 0, g.Width, g.Height))
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			v := g.Pix[y*g.Width+x] / maxValue
			v = min(max(v, 0), 1)
			src.SetGray16(x, y, color.Gray16{Y: uint16(v*0xffff + 0.5)})
		}
	}

	dst := resize.Resize(uint(width), uint(height), src, resize.Bilinear)

	out := NewGrid(width, height)
	b := dst.Bounds()
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.Gray16Model.Convert(dst.At(b.Min.X+x, b.Min.Y+y)).(color.Gray16)
			out.Pix[y*width+x] = float32(c.Y) / 0xffff * maxValue
		}
	}
	return out, nil
}
