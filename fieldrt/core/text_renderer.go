package core

import (
	"fmt"
	"image"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const atlasSize = 512

type TextVertex struct {
	Pos   [2]float32
	UV    [2]float32
	Color [4]float32
}

// TextItem is one block of text anchored at its top left corner in pixels.
type TextItem struct {
	Text     string
	Position [2]float32
	Scale    float32
	Color    [4]float32
}

type GlyphInfo struct {
	UVMin [2]float32
	UVMax [2]float32
	Size  [2]float32
	Off   [2]float32
	Adv   float32
}

// TextRenderer rasterizes printable ASCII into an alpha atlas and turns text
// items into clip space quads.
type TextRenderer struct {
	Atlas  *image.Alpha
	Glyphs map[rune]GlyphInfo
	face   font.Face
}

// NewTextRenderer uses the bundled Go Regular face.
func NewTextRenderer(size float64) (*TextRenderer, error) {
	return NewTextRendererFromTTF(goregular.TTF, size)
}

func NewTextRendererFromTTF(ttf []byte, size float64) (*TextRenderer, error) {
	f, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("creating font face: %w", err)
	}
	atlas, glyphs := packGlyphs(face)
	return &TextRenderer{Atlas: atlas, Glyphs: glyphs, face: face}, nil
}

func packGlyphs(face font.Face) (*image.Alpha, map[rune]GlyphInfo) {
	atlas := image.NewAlpha(image.Rect(0, 0, atlasSize, atlasSize))
	glyphs := make(map[rune]GlyphInfo)

	x, y, rowHeight := 2, 2, 0
	for r := rune(32); r < 127; r++ {
		bounds, mask, _, adv, ok := face.Glyph(fixed.Point26_6{}, r)
		if !ok {
			continue
		}
		w, h := mask.Bounds().Dx(), mask.Bounds().Dy()
		if x+w >= atlasSize {
			x, y, rowHeight = 2, y+rowHeight+4, 0
		}
		if y+h >= atlasSize {
			break
		}
		draw.Draw(atlas, image.Rect(x, y, x+w, y+h), mask, mask.Bounds().Min, draw.Src)
		glyphs[r] = GlyphInfo{
			UVMin: [2]float32{float32(x) / atlasSize, float32(y) / atlasSize},
			UVMax: [2]float32{float32(x+w) / atlasSize, float32(y+h) / atlasSize},
			Size:  [2]float32{float32(w), float32(h)},
			Off:   [2]float32{float32(bounds.Min.X), float32(bounds.Min.Y)},
			Adv:   float32(adv) / 64,
		}
		x += w + 4
		rowHeight = max(rowHeight, h)
	}
	return atlas, glyphs
}

func (tr *TextRenderer) LineHeight(scale float32) float32 {
	return float32(tr.face.Metrics().Height.Ceil()) * scale
}

// BuildVertices lays out items on a screenW x screenH pixel surface.
func (tr *TextRenderer) BuildVertices(items []TextItem, screenW, screenH int) []TextVertex {
	if screenW <= 0 || screenH <= 0 {
		return nil
	}
	vertices := make([]TextVertex, 0, len(items)*6*16)
	sw, sh := float32(screenW), float32(screenH)
	ascent := float32(tr.face.Metrics().Ascent.Ceil())

	for _, item := range items {
		startX := item.Position[0]
		penX := startX
		penY := item.Position[1] + ascent*item.Scale

		for _, r := range item.Text {
			if r == '\n' {
				penX = startX
				penY += tr.LineHeight(item.Scale)
				continue
			}
			g, ok := tr.Glyphs[r]
			if !ok {
				continue
			}
			x0 := (penX+g.Off[0]*item.Scale)/sw*2 - 1
			y0 := 1 - (penY+g.Off[1]*item.Scale)/sh*2
			x1 := (penX+(g.Off[0]+g.Size[0])*item.Scale)/sw*2 - 1
			y1 := 1 - (penY+(g.Off[1]+g.Size[1])*item.Scale)/sh*2

			c := item.Color
			vertices = append(vertices,
				TextVertex{Pos: [2]float32{x0, y0}, UV: g.UVMin, Color: c},
				TextVertex{Pos: [2]float32{x1, y0}, UV: [2]float32{g.UVMax[0], g.UVMin[1]}, Color: c},
				TextVertex{Pos: [2]float32{x0, y1}, UV: [2]float32{g.UVMin[0], g.UVMax[1]}, Color: c},
				TextVertex{Pos: [2]float32{x1, y0}, UV: [2]float32{g.UVMax[0], g.UVMin[1]}, Color: c},
				TextVertex{Pos: [2]float32{x1, y1}, UV: g.UVMax, Color: c},
				TextVertex{Pos: [2]float32{x0, y1}, UV: [2]float32{g.UVMin[0], g.UVMax[1]}, Color: c},
			)
			penX += g.Adv * item.Scale
		}
	}
	return vertices
}

// MeasureText returns the width and height of text in pixels.
func (tr *TextRenderer) MeasureText(text string, scale float32) (float32, float32) {
	maxW, lineW := float32(0), float32(0)
	lines := 1
	for _, r := range text {
		if r == '\n' {
			maxW = max(maxW, lineW)
			lineW = 0
			lines++
			continue
		}
		if g, ok := tr.Glyphs[r]; ok {
			lineW += g.Adv * scale
		}
	}
	return max(maxW, lineW), tr.LineHeight(scale) * float32(lines)
}
