package images

// BoxExtractor converts a region mask into candidate bounding boxes.
type BoxExtractor interface {
	Extract(mask Grid) ([]Box, error)
}

const (
	// foregroundValue is the intensity a set mask cell is traced at.
	foregroundValue = 255
	// contourLevel is the iso-level the boundary is traced at: the first step above background.
	contourLevel = 1
)

// ContourExtractor is the default BoxExtractor. It traces region boundaries with MaskToBoxes.
type ContourExtractor struct{}

// Extract implements BoxExtractor.
func (ContourExtractor) Extract(mask Grid) ([]Box, error) {
	return MaskToBoxes(mask), nil
}

// MaskToBoxes returns one bounding box per connected boundary traced in mask.
//
// The pipeline is:
//
//  1. Every non-zero mask cell is lifted to foregroundValue and iso-contour points are traced at
//     contourLevel with marching squares. Each crossing is linearly interpolated along the cell
//     edge and truncated to a pixel index.
//  2. Those pixels are rasterized into a boundary bitmap.
//  3. The bitmap is labeled into 8-connected components in raster order.
//  4. Each component yields its axis-aligned bounding box with exclusive X2/Y2.
//
// An all-background mask yields no boxes. Contours are open at the image border, so a region
// covering the whole image has no traced boundary, and a mask narrower than two cells in
// either direction has no marching-squares cells at all. A component that degenerates to a
// line still yields a box.
func MaskToBoxes(mask Grid) []Box {
	if mask.Width < 2 || mask.Height < 2 || !mask.Any() {
		return nil
	}

	border := traceBoundary(mask)
	return componentBoxes(border, mask.Width, mask.Height)
}

// traceBoundary rasterizes the iso-contour crossings of mask into a boundary bitmap.
func traceBoundary(mask Grid) []bool {
	w, h := mask.Width, mask.Height
	border := make([]bool, w*h)

	value := func(x, y int) float32 {
		if mask.Pix[y*w+x] != 0 {
			return foregroundValue
		}
		return 0
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := value(x, y)

			// Horizontal cell edge (x, y) -> (x+1, y).
			if x+1 < w {
				if f, ok := crossing(v, value(x+1, y)); ok {
					px := int(float32(x) + f)
					border[y*w+px] = true
				}
			}

			// Vertical cell edge (x, y) -> (x, y+1).
			if y+1 < h {
				if f, ok := crossing(v, value(x, y+1)); ok {
					py := int(float32(y) + f)
					border[py*w+x] = true
				}
			}
		}
	}

	return border
}

// crossing returns the fraction along an edge where the iso-level is crossed between two
// samples, and whether the edge straddles the level at all.
func crossing(from, to float32) (float32, bool) {
	if (from > contourLevel) == (to > contourLevel) {
		return 0, false
	}
	f := (contourLevel - from) / (to - from)
	if f >= 1 {
		// Guard the truncated index against rounding onto the neighbour beyond the edge.
		f = 0.999999
	}
	return f, true
}

// componentBoxes labels 8-connected components of set cells in raster order and returns the
// bounding box of each.
func componentBoxes(set []bool, w, h int) []Box {
	labels := make([]int, w*h)
	var boxes []Box
	label := 0
	queue := make([]int, 0, 64)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			start := y*w + x
			if !set[start] || labels[start] != 0 {
				continue
			}

			label++
			minX, minY, maxX, maxY := x, y, x, y
			labels[start] = label
			queue = append(queue[:0], start)

			for len(queue) > 0 {
				idx := queue[0]
				queue = queue[1:]
				cx, cy := idx%w, idx/w

				minX, maxX = min(minX, cx), max(maxX, cx)
				minY, maxY = min(minY, cy), max(maxY, cy)

				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						nx, ny := cx+dx, cy+dy
						if (dx == 0 && dy == 0) || nx < 0 || ny < 0 || nx >= w || ny >= h {
							continue
						}
						n := ny*w + nx
						if set[n] && labels[n] == 0 {
							labels[n] = label
							queue = append(queue, n)
						}
					}
				}
			}

			boxes = append(boxes, Box{
				X1: float32(minX),
				Y1: float32(minY),
				X2: float32(maxX + 1),
				Y2: float32(maxY + 1),
			})
		}
	}

	return boxes
}
