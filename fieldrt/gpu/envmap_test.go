package gpu

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFace(t *testing.T, dir, stem string, size int, c color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	f, err := os.Create(filepath.Join(dir, stem+".png"))
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestLoadCubeFacesResamplesToSmallest(t *testing.T) {
	dir := t.TempDir()
	red := color.RGBA{R: 255, A: 255}
	for i, stem := range CubeFaces {
		size := 8
		if i == 2 {
			size = 4
		}
		writeFace(t, dir, stem, size, red)
	}

	faces, err := LoadCubeFaces(dir)
	require.NoError(t, err)
	for _, f := range faces {
		require.NotNil(t, f)
		assert.Equal(t, image.Rect(0, 0, 4, 4), f.Bounds())
	}
	assert.InDelta(t, 255, int(faces[0].RGBAAt(1, 1).R), 2)
	assert.InDelta(t, 0, int(faces[0].RGBAAt(1, 1).G), 2)
}

func TestLoadCubeFacesMissingFace(t *testing.T) {
	dir := t.TempDir()
	for _, stem := range CubeFaces[:5] {
		writeFace(t, dir, stem, 2, color.RGBA{A: 255})
	}
	_, err := LoadCubeFaces(dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "nz")
}

func TestNeutralFaces(t *testing.T) {
	faces := NeutralFaces()
	for _, f := range faces {
		assert.Equal(t, 1, f.Bounds().Dx())
		assert.Equal(t, uint8(128), f.RGBAAt(0, 0).R)
	}
}
