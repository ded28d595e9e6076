// Package core holds the device independent model of the particle field:
// texel addressing, tunables, simulation state and the CPU reference stepper,
// the per-instance transform, and the camera/viewport/pointer math shared by
// the renderer.
package core

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidGrid = errors.New("invalid particle grid")

// Grid maps particle indices to texels of a Width x Height simulation texture.
type Grid struct {
	Width  int
	Height int
}

func NewGrid(width, height int) (Grid, error) {
	if width < 2 || height < 2 {
		return Grid{}, fmt.Errorf("%w: %dx%d, both sides must be >= 2", ErrInvalidGrid, width, height)
	}
	return Grid{Width: width, Height: height}, nil
}

func (g Grid) Len() int {
	return g.Width * g.Height
}

// Texel returns the integer texel coordinate of particle i.
func (g Grid) Texel(i int) (x, y int) {
	return i % g.Width, i / g.Width
}

// Reference returns the normalized [0,1]^2 coordinate the renderer uses to
// sample particle i from the simulation textures.
func (g Grid) Reference(i int) [2]float32 {
	x, y := g.Texel(i)
	return [2]float32{
		float32(x) / float32(g.Width-1),
		float32(y) / float32(g.Height-1),
	}
}

// Index is the inverse of Reference. Out of range references are clamped to
// the grid edge.
func (g Grid) Index(ref [2]float32) int {
	x := int(math.Round(float64(ref[0]) * float64(g.Width-1)))
	y := int(math.Round(float64(ref[1]) * float64(g.Height-1)))
	x = min(max(x, 0), g.Width-1)
	y = min(max(y, 0), g.Height-1)
	return y*g.Width + x
}
