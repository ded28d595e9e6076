package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextRenderer_BuiltinFont(t *testing.T) {
	tr, err := NewTextRenderer(16)
	require.NoError(t, err)

	require.Contains(t, tr.Glyphs, 'A')
	require.Contains(t, tr.Glyphs, '9')

	verts := tr.BuildVertices([]TextItem{{Text: "AB", Scale: 1, Color: [4]float32{1, 1, 1, 1}}}, 640, 480)
	assert.Len(t, verts, 12)
	assert.Less(t, verts[0].Pos[0], verts[6].Pos[0], "second glyph is placed right of the first")

	assert.Nil(t, tr.BuildVertices([]TextItem{{Text: "AB", Scale: 1}}, 0, 480))
}

func TestTextRenderer_Measure(t *testing.T) {
	tr, err := NewTextRenderer(16)
	require.NoError(t, err)

	w1, h1 := tr.MeasureText("speed", 1)
	w2, h2 := tr.MeasureText("speed\nab", 1)
	assert.Greater(t, w1, float32(0))
	assert.Equal(t, w1, w2)
	assert.InDelta(t, 2*h1, h2, 1e-4)
	assert.Equal(t, tr.LineHeight(1), h1)
}

func TestTextRenderer_RejectsGarbage(t *testing.T) {
	_, err := NewTextRendererFromTTF([]byte("not a font"), 12)
	assert.Error(t, err)
}
