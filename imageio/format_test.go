package imageio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chai2010/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
		ok   bool
	}{
		{"moth.jpg", FormatJPEG, true},
		{"moth.JPEG", FormatJPEG, true},
		{"maps/moth.png", FormatPNG, true},
		{"moth.Bmp", FormatBMP, true},
		{"moth.webp", FormatWebP, true},
		{"moth.json", "", false},
		{"moth", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := FormatFromPath(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpenWebP(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fix.webp")
	src := grayImage(6, 4, func(x, y int) uint8 { return uint8(x * 40) })

	file, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, webp.Encode(file, src, &webp.Options{Lossless: true}))
	require.NoError(t, file.Close())

	g, err := LoadGray(path, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 6, g.Width)
	assert.Equal(t, 4, g.Height)
	assert.InDelta(t, 200, g.At(5, 2), 1)
	assert.InDelta(t, 0, g.At(0, 0), 1)

	_, err = Open(filepath.Join(t.TempDir(), "missing.webp"))
	assert.Error(t, err)
}

func TestSaveMaskWebP(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moth_mask.webp")
	src := grayImage(4, 1, func(x, _ int) uint8 { return []uint8{0, 127, 128, 255}[x] })

	require.NoError(t, SaveMask(path, src, 0.5))

	g, err := LoadGray(path, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 255, 255}, g.Pix)
}
