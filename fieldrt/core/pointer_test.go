package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestPointerNDC(t *testing.T) {
	assert.Equal(t, mgl32.Vec2{-1, 1}, PointerNDC(0, 0, 800, 600))
	assert.Equal(t, mgl32.Vec2{1, -1}, PointerNDC(800, 600, 800, 600))
	assert.Equal(t, mgl32.Vec2{0, 0}, PointerNDC(400, 300, 800, 600))
	assert.Equal(t, mgl32.Vec2{}, PointerNDC(10, 10, 0, 600))
}

func TestPointerProjector_CenterRayHitsOrigin(t *testing.T) {
	cam := NewCamera(mgl32.Vec3{0, 0, 100}, mgl32.Vec3{}, 45, 10, 3000)
	p := PointerProjector{MaxDistance: 2000}

	target, clamped := p.Project(mgl32.Vec2{}, cam.Position, cam.InverseViewProjection())
	assert.False(t, clamped)
	assertVec3InDelta(t, mgl32.Vec3{}, target, 1e-2)
}

func TestPointerProjector_TargetLiesOnPlaneFacingCamera(t *testing.T) {
	cam := NewCamera(mgl32.Vec3{-160, 40, -200}, mgl32.Vec3{0, 20, 0}, 45, 10, 3000)
	cam.Aspect = 16.0 / 9.0
	p := PointerProjector{MaxDistance: 2000}

	for _, ndc := range []mgl32.Vec2{{0.5, 0.25}, {-0.8, -0.6}, {0.1, 0.9}} {
		target, clamped := p.Project(ndc, cam.Position, cam.InverseViewProjection())
		assert.False(t, clamped)
		o := cam.Position
		assert.InDelta(t, 0, target.Dot(o)/o.Len(), 0.05, "ndc %v", ndc)
	}
}

func TestPointerProjector_Clamps(t *testing.T) {
	t.Run("ray leaving the plane", func(t *testing.T) {
		cam := NewCamera(mgl32.Vec3{0, 0, 100}, mgl32.Vec3{0, 0, 200}, 45, 10, 3000)
		target, clamped := PointerProjector{MaxDistance: 2000}.Project(mgl32.Vec2{}, cam.Position, cam.InverseViewProjection())
		assert.True(t, clamped)
		assertVec3InDelta(t, mgl32.Vec3{0, 0, 2100}, target, 0.5)
	})
	t.Run("too far", func(t *testing.T) {
		cam := NewCamera(mgl32.Vec3{0, 0, 100}, mgl32.Vec3{}, 45, 10, 3000)
		target, clamped := PointerProjector{MaxDistance: 50}.Project(mgl32.Vec2{}, cam.Position, cam.InverseViewProjection())
		assert.True(t, clamped)
		assertVec3InDelta(t, mgl32.Vec3{0, 0, 50}, target, 1e-2)
	})
	t.Run("zero max distance uses default", func(t *testing.T) {
		cam := NewCamera(mgl32.Vec3{0, 0, 100}, mgl32.Vec3{0, 0, 200}, 45, 10, 3000)
		target, clamped := PointerProjector{}.Project(mgl32.Vec2{}, cam.Position, cam.InverseViewProjection())
		assert.True(t, clamped)
		assert.InDelta(t, 100+DefaultPointerMaxDistance, target[2], 0.5)
	})
}
