package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	DefaultPointerMaxDistance = 2000
	rayParallelEpsilon        = 1e-6
)

// PointerNDC converts a cursor position in window units to normalized device
// coordinates with +Y up.
func PointerNDC(cursorX, cursorY float64, width, height int) mgl32.Vec2 {
	if width <= 0 || height <= 0 {
		return mgl32.Vec2{}
	}
	return mgl32.Vec2{
		float32(cursorX/float64(width)*2 - 1),
		float32(-(cursorY/float64(height))*2 + 1),
	}
}

// PointerProjector turns the 2D pointer into a 3D target in front of the camera.
type PointerProjector struct {
	MaxDistance float32
}

// Project casts a ray from the camera through ndc (unprojected at the middle
// of the depth range) and places the target at |o|^2 / -(dir . o) along it.
// Rays parallel to or leaving the reference plane, and non-finite or too
// distant results, are clamped to MaxDistance. The second result reports the clamp.
func (p PointerProjector) Project(ndc mgl32.Vec2, cameraPos mgl32.Vec3, invViewProj mgl32.Mat4) (mgl32.Vec3, bool) {
	maxDist := p.MaxDistance
	if !(maxDist > 0) {
		maxDist = DefaultPointerMaxDistance
	}

	far := invViewProj.Mul4x1(mgl32.Vec4{ndc[0], ndc[1], 0.5, 1})
	if far[3] == 0 {
		return cameraPos, true
	}
	dir := far.Vec3().Mul(1 / far[3]).Sub(cameraPos)
	if dir.Len() < rayParallelEpsilon {
		return cameraPos, true
	}
	dir = dir.Normalize()

	denom := -dir.Dot(cameraPos)
	clamped := false
	var distance float32
	if denom <= rayParallelEpsilon {
		distance, clamped = maxDist, true
	} else {
		distance = cameraPos.Dot(cameraPos) / denom
		if math.IsNaN(float64(distance)) || math.IsInf(float64(distance), 0) || distance > maxDist {
			distance, clamped = maxDist, true
		}
	}
	return cameraPos.Add(dir.Mul(distance)), clamped
}
