package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ClipCorrection remaps OpenGL style clip depth [-1,1] to WebGPU's [0,1].
var ClipCorrection = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

type Camera struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3
	FovY     float32 // degrees
	Near     float32
	Far      float32
	Aspect   float32
}

func NewCamera(position, target mgl32.Vec3, fovY, near, far float32) *Camera {
	return &Camera{
		Position: position,
		Target:   target,
		Up:       mgl32.Vec3{0, 1, 0},
		FovY:     fovY,
		Near:     near,
		Far:      far,
		Aspect:   1,
	}
}

func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Target, c.Up)
}

func (c *Camera) Projection() mgl32.Mat4 {
	aspect := c.Aspect
	if !(aspect > 0) {
		aspect = 1
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FovY), aspect, c.Near, c.Far)
}

// ViewProjection uses the OpenGL depth convention; pointer unprojection
// relies on it.
func (c *Camera) ViewProjection() mgl32.Mat4 {
	return c.Projection().Mul4(c.View())
}

// GPUViewProjection is ViewProjection with WebGPU clip depth.
func (c *Camera) GPUViewProjection() mgl32.Mat4 {
	return ClipCorrection.Mul4(c.ViewProjection())
}

func (c *Camera) InverseViewProjection() mgl32.Mat4 {
	return c.ViewProjection().Inv()
}

// ViewDepth is the distance of p along the viewing direction.
func (c *Camera) ViewDepth(p mgl32.Vec3) float32 {
	v := c.View().Mul4x1(p.Vec4(1))
	return -v[2]
}

// OrbitControls rotates and dollies the camera around a target on a sphere,
// easing toward the requested motion with a damping factor.
type OrbitControls struct {
	Target      mgl32.Vec3
	MinDistance float32
	MaxDistance float32
	MinPolar    float32
	MaxPolar    float32
	Damping     float32
	RotateSpeed float32
	ZoomSpeed   float32

	radius float32
	theta  float32
	phi    float32

	deltaTheta float32
	deltaPhi   float32
	scale      float32
}

func NewOrbitControls(position, target mgl32.Vec3) *OrbitControls {
	o := &OrbitControls{
		Target:      target,
		MinDistance: 0,
		MaxDistance: float32(math.Inf(1)),
		MinPolar:    0,
		MaxPolar:    math.Pi,
		Damping:     0.05,
		RotateSpeed: 1,
		ZoomSpeed:   1,
		scale:       1,
	}
	o.SetPosition(position)
	return o
}

// SetPosition re-derives the spherical coordinates from a camera position.
func (o *OrbitControls) SetPosition(position mgl32.Vec3) {
	offset := position.Sub(o.Target)
	o.radius = offset.Len()
	if o.radius == 0 {
		o.theta, o.phi = 0, 0
		return
	}
	o.theta = float32(math.Atan2(float64(offset[0]), float64(offset[2])))
	o.phi = float32(math.Acos(float64(clampUnit(offset[1] / o.radius))))
}

// Rotate queues a drag of dx, dy window units on a viewport of the given height.
func (o *OrbitControls) Rotate(dx, dy float32, height int) {
	if height <= 0 {
		return
	}
	h := float32(height)
	o.deltaTheta -= 2 * math.Pi * dx / h * o.RotateSpeed
	o.deltaPhi -= 2 * math.Pi * dy / h * o.RotateSpeed
}

// Dolly queues a zoom; positive steps move closer.
func (o *OrbitControls) Dolly(steps float32) {
	o.scale *= float32(math.Pow(0.95, float64(steps*o.ZoomSpeed)))
}

// Update applies the damped motion and constraints and returns the camera position.
func (o *OrbitControls) Update() mgl32.Vec3 {
	damping := o.Damping
	if !(damping > 0) {
		damping = 1
	}
	o.theta += o.deltaTheta * damping
	o.phi += o.deltaPhi * damping
	o.phi = min(max(o.phi, o.MinPolar), o.MaxPolar)
	o.phi = min(max(o.phi, 1e-6), math.Pi-1e-6)

	o.radius *= o.scale
	o.radius = min(max(o.radius, o.MinDistance), o.MaxDistance)

	o.deltaTheta *= 1 - damping
	o.deltaPhi *= 1 - damping
	o.scale = 1

	return o.Position()
}

func (o *OrbitControls) Position() mgl32.Vec3 {
	sinPhi := float32(math.Sin(float64(o.phi)))
	offset := mgl32.Vec3{
		o.radius * sinPhi * float32(math.Sin(float64(o.theta))),
		o.radius * float32(math.Cos(float64(o.phi))),
		o.radius * sinPhi * float32(math.Cos(float64(o.theta))),
	}
	return o.Target.Add(offset)
}

func (o *OrbitControls) Distance() float32 { return o.radius }
func (o *OrbitControls) Polar() float32    { return o.phi }

func clampUnit(x float32) float32 {
	return min(max(x, -1), 1)
}
