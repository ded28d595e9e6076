package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGrid_RejectsDegenerateSizes(t *testing.T) {
	tests := []struct {
		name string
		w, h int
	}{
		{"zero width", 0, 128},
		{"single column", 1, 128},
		{"single row", 256, 1},
		{"negative", -4, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGrid(tt.w, tt.h)
			assert.ErrorIs(t, err, ErrInvalidGrid)
		})
	}
}

func TestGrid_ReferenceIsBijective(t *testing.T) {
	g, err := NewGrid(256, 128)
	require.NoError(t, err)
	require.Equal(t, 32768, g.Len())

	seen := make(map[[2]float32]int, g.Len())
	for i := 0; i < g.Len(); i++ {
		ref := g.Reference(i)
		require.GreaterOrEqual(t, ref[0], float32(0))
		require.LessOrEqual(t, ref[0], float32(1))
		require.GreaterOrEqual(t, ref[1], float32(0))
		require.LessOrEqual(t, ref[1], float32(1))

		prev, dup := seen[ref]
		require.False(t, dup, "texels %d and %d share reference %v", prev, i, ref)
		seen[ref] = i

		require.Equal(t, i, g.Index(ref))
	}
}

func TestGrid_ReferenceCorners(t *testing.T) {
	g, err := NewGrid(256, 128)
	require.NoError(t, err)

	assert.Equal(t, [2]float32{0, 0}, g.Reference(0))
	assert.Equal(t, [2]float32{1, 0}, g.Reference(255))
	assert.Equal(t, [2]float32{0, 1}, g.Reference(256*127))
	assert.Equal(t, [2]float32{1, 1}, g.Reference(g.Len()-1))
}

func TestGrid_IndexClampsOutOfRange(t *testing.T) {
	g, err := NewGrid(4, 3)
	require.NoError(t, err)

	assert.Equal(t, 0, g.Index([2]float32{-1, -1}))
	assert.Equal(t, g.Len()-1, g.Index([2]float32{2, 2}))
}
