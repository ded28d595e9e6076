package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// TransformVersion identifies the particle vertex transform. The WGSL
// particle_transform function carries the same number and must change with it.
const TransformVersion = 1

const (
	degenerateEpsilon = 1e-6
	maxStretch        = 4
	minLength         = 2
	stretchPerSpeed   = 3
)

// Rotation orients the mesh x axis along the velocity: a yaw about Y followed
// by a pitch about Z. A zero velocity yields the identity and a purely
// vertical one keeps yaw at zero.
func Rotation(velocity mgl32.Vec3) mgl32.Mat3 {
	if velocity.Len() < degenerateEpsilon {
		return mgl32.Ident3()
	}
	n := velocity.Normalize()
	n[2] = -n[2]

	xz := float32(math.Hypot(float64(n[0]), float64(n[2])))
	cosY, sinY := float32(1), float32(0)
	if xz >= degenerateEpsilon {
		cosY, sinY = n[0]/xz, n[2]/xz
	}
	cosZ := float32(math.Sqrt(math.Max(0, 1-float64(n[1]*n[1]))))
	sinZ := n[1]

	rotY := mgl32.Mat3{
		cosY, 0, -sinY,
		0, 1, 0,
		sinY, 0, cosY,
	}
	rotZ := mgl32.Mat3{
		cosZ, sinZ, 0,
		-sinZ, cosZ, 0,
		0, 0, 1,
	}
	return rotY.Mul3(rotZ)
}

// Stretch is the per axis mesh scale: long along the direction of travel.
func Stretch(velocity mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{min(maxStretch, stretchPerSpeed*velocity.Len()) + minLength, 1, 1}
}

// ParticleTransform places one base mesh vertex for the particle sampled at
// position (xyz, life) and velocity. It returns the world position and normal.
func ParticleTransform(local, normal mgl32.Vec3, position mgl32.Vec4, velocity mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	rot := Rotation(velocity)
	scale := Stretch(velocity)
	life := position[3]

	scaled := mgl32.Vec3{local[0] * scale[0], local[1] * scale[1], local[2] * scale[2]}.Mul(life)
	world := rot.Mul3x1(scaled).Add(position.Vec3())

	n := mgl32.Vec3{normal[0] / scale[0], normal[1] / scale[1], normal[2] / scale[2]}
	n = rot.Mul3x1(n)
	if l := n.Len(); l > 0 {
		n = n.Mul(1 / l)
	}
	return world, n
}
