package imageio

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/nvr-ai/go-camoxai/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grayImage(w, h int, f func(x, y int) uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: f(x, y)})
		}
	}
	return img
}

func savePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, imaging.Save(img, path))
	return path
}

func TestLoadGray(t *testing.T) {
	dir := t.TempDir()
	path := savePNG(t, dir, "gt.png", grayImage(4, 3, func(x, y int) uint8 { return uint8(x * 60) }))

	g, err := LoadGray(path, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, g.Width)
	assert.Equal(t, 3, g.Height)
	assert.Equal(t, float32(0), g.At(0, 2))
	assert.Equal(t, float32(180), g.At(3, 1))

	resized, err := LoadGray(path, 8, 6)
	require.NoError(t, err)
	assert.Equal(t, 8, resized.Width)
	assert.Equal(t, 6, resized.Height)
	assert.LessOrEqual(t, resized.Max(), float32(MaxGray))

	_, err = LoadGray(filepath.Join(dir, "missing.png"), 0, 0)
	assert.Error(t, err)
}

func TestThresholdLevel(t *testing.T) {
	tests := []struct {
		t      float64
		want   uint8
		wantOK bool
	}{
		{0.45, 115, true}, // 114.75
		{0, 1, true},
		{0.5, 128, true}, // 127.5
		{0.999, 255, true},
		{1, 0, false},
	}
	for _, tt := range tests {
		got, ok := ThresholdLevel(tt.t)
		assert.Equal(t, tt.wantOK, ok, "t=%v", tt.t)
		assert.Equal(t, tt.want, got, "t=%v", tt.t)
	}
}

func TestBinaryMaskIsStrict(t *testing.T) {
	img := grayImage(4, 1, func(x, _ int) uint8 { return []uint8{0, 114, 115, 255}[x] })

	mask := BinaryMask(img, 0.45)
	assert.Equal(t, []uint8{0, 0, 255, 255}, mask.Pix[:4])

	none := BinaryMask(img, 1)
	assert.Equal(t, []uint8{0, 0, 0, 0}, none.Pix[:4])

	path := filepath.Join(t.TempDir(), "mask.png")
	require.NoError(t, SaveMask(path, img, 0.45))
	back, err := LoadGray(path, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 255, 255}, back.Pix)
}

func TestLoadSample(t *testing.T) {
	dir := t.TempDir()
	imgPath := savePNG(t, dir, "moth.png", grayImage(20, 10, func(int, int) uint8 { return 90 }))
	gtPath := savePNG(t, dir, "moth_gt.png", grayImage(10, 5, func(x, y int) uint8 {
		if x >= 2 && x < 6 && y >= 1 && y < 4 {
			return 255
		}
		return 0
	}))
	detPath := filepath.Join(dir, "moth.json")
	require.NoError(t, os.WriteFile(detPath, []byte(
		`{"detection_boxes": [[0.1, 0.1, 0.4, 0.3]], "detection_scores": [0.8], "detection_classes": [6]}`), 0o644))

	s, err := LoadSample(util.SampleFiles{Name: "moth.png", Image: imgPath, Confidence: gtPath, Detections: detPath})
	require.NoError(t, err)

	assert.Equal(t, "moth.png", s.Name)
	assert.Equal(t, 20, s.Width)
	assert.Equal(t, 10, s.Height)
	assert.Equal(t, float32(MaxGray), s.MaxValue)
	assert.Equal(t, 20, s.Confidence.Width, "maps are resampled to the image size")
	assert.Equal(t, 10, s.Confidence.Height)
	assert.True(t, s.Confidence.Any())
	assert.True(t, s.Fixation.Empty())
	require.Len(t, s.Proposals, 1)
	assert.Equal(t, 6, s.Proposals[0].Class)

	_, err = LoadSample(util.SampleFiles{Name: "x", Image: filepath.Join(dir, "missing.png")})
	assert.Error(t, err)
}
