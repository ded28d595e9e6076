package gpu

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func rowBytes(values ...float32) []byte {
	b := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b
}

func TestAlignedBytesPerRow(t *testing.T) {
	assert.Equal(t, uint32(256), alignedBytesPerRow(1))
	assert.Equal(t, uint32(256), alignedBytesPerRow(16))
	assert.Equal(t, uint32(512), alignedBytesPerRow(17))
	assert.Equal(t, uint32(4096), alignedBytesPerRow(256))
}

func TestRowFinite(t *testing.T) {
	assert.True(t, rowFinite(rowBytes(1, 2, 3, 0.5, -4, 5, 6, 0.9), 2))

	nan := float32(math.NaN())
	assert.False(t, rowFinite(rowBytes(1, 2, 3, 0.5, nan, 5, 6, 0.9), 2))

	inf := float32(math.Inf(1))
	assert.False(t, rowFinite(rowBytes(inf, 2, 3, 0.5), 1))
}

func TestRowFiniteIgnoresPadding(t *testing.T) {
	nan := float32(math.NaN())
	assert.True(t, rowFinite(rowBytes(1, 2, 3, 0.5, nan, nan, nan, nan), 1))
}
