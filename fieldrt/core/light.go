package core

import "github.com/go-gl/mathgl/mgl32"

// DirectionalLight casts shadows through an orthographic camera placed at
// Position looking at Target.
type DirectionalLight struct {
	Position   mgl32.Vec3
	Target     mgl32.Vec3
	Color      mgl32.Vec3
	Intensity  float32
	HalfExtent float32
	Near       float32
	Far        float32
	MapSize    uint32
}

func DefaultDirectionalLight() DirectionalLight {
	return DirectionalLight{
		Position:   mgl32.Vec3{-3, 2, -0.35}.Normalize().Mul(200),
		Color:      mgl32.Vec3{1, 1, 1},
		Intensity:  4,
		HalfExtent: 250,
		Near:       1,
		Far:        800,
		MapSize:    2048,
	}
}

// Direction points from the light toward the lit scene.
func (l DirectionalLight) Direction() mgl32.Vec3 {
	return l.Target.Sub(l.Position).Normalize()
}

func (l DirectionalLight) ViewProjection() mgl32.Mat4 {
	up := mgl32.Vec3{0, 1, 0}
	if d := l.Direction(); d.Cross(up).Len() < 1e-4 {
		up = mgl32.Vec3{0, 0, 1}
	}
	view := mgl32.LookAtV(l.Position, l.Target, up)
	e := l.HalfExtent
	proj := mgl32.Ortho(-e, e, -e, e, l.Near, l.Far)
	return ClipCorrection.Mul4(proj.Mul4(view))
}
