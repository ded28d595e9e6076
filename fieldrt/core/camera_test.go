package core

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestCamera_GPUDepthRange(t *testing.T) {
	cam := NewCamera(mgl32.Vec3{0, 0, 100}, mgl32.Vec3{}, 45, 10, 3000)
	vp := cam.GPUViewProjection()

	near := vp.Mul4x1(mgl32.Vec4{0, 0, 90, 1})
	far := vp.Mul4x1(mgl32.Vec4{0, 0, -2900, 1})
	assert.InDelta(t, 0, near[2]/near[3], 1e-4)
	assert.InDelta(t, 1, far[2]/far[3], 1e-4)
}

func TestCamera_ViewDepth(t *testing.T) {
	cam := NewCamera(mgl32.Vec3{0, 0, 100}, mgl32.Vec3{}, 45, 10, 3000)
	assert.InDelta(t, 100, cam.ViewDepth(mgl32.Vec3{}), 1e-3)
	assert.InDelta(t, 50, cam.ViewDepth(mgl32.Vec3{10, -5, 50}), 1e-3)
}

func TestOrbitControls_StationaryWithoutInput(t *testing.T) {
	start := mgl32.Vec3{0, 0, 100}
	o := NewOrbitControls(start, mgl32.Vec3{})
	assert.InDelta(t, 100, o.Distance(), 1e-4)
	assert.InDelta(t, math.Pi/2, o.Polar(), 1e-5)

	assertVec3InDelta(t, start, o.Update(), 1e-3)
}

func TestOrbitControls_Constraints(t *testing.T) {
	o := NewOrbitControls(mgl32.Vec3{0, 0, 800}, mgl32.Vec3{})
	o.MaxDistance = 500
	o.MaxPolar = math.Pi/2 - 0.1
	o.MinPolar = 0.3

	pos := o.Update()
	assert.InDelta(t, 500, o.Distance(), 1e-3)
	assert.InDelta(t, math.Pi/2-0.1, o.Polar(), 1e-5)
	assert.Greater(t, pos[1], float32(0), "polar clamp keeps the camera above the target")
}

func TestOrbitControls_DollyAndRotate(t *testing.T) {
	o := NewOrbitControls(mgl32.Vec3{0, 0, 100}, mgl32.Vec3{})
	o.Dolly(1)
	o.Update()
	assert.InDelta(t, 95, o.Distance(), 1e-3)

	before := o.Position()
	o.Rotate(100, 0, 600)
	for i := 0; i < 10; i++ {
		o.Update()
	}
	after := o.Position()
	assert.InDelta(t, 95, after.Len(), 1e-2, "rotation keeps the orbit radius")
	assert.Greater(t, before.Sub(after).Len(), float32(1))
}

func TestDirectionalLight_ViewProjection(t *testing.T) {
	l := DefaultDirectionalLight()
	clip := l.ViewProjection().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	ndc := clip.Vec3().Mul(1 / clip[3])
	assert.InDelta(t, 0, ndc[0], 1e-4)
	assert.InDelta(t, 0, ndc[1], 1e-4)
	assert.InDelta(t, (200.0-1)/(800-1), ndc[2], 1e-3)
}
