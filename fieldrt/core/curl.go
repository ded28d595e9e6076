package core

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/ojrac/opensimplex-go"
)

const curlEpsilon = 1e-4

// CurlNoise is a divergence free flow field built from the curl of a three
// component simplex potential animated along the fourth noise axis.
type CurlNoise struct {
	px, py, pz opensimplex.Noise
}

func NewCurlNoise(seed int64) *CurlNoise {
	return &CurlNoise{
		px: opensimplex.New(seed),
		py: opensimplex.New(seed + 1),
		pz: opensimplex.New(seed + 2),
	}
}

// At samples the curl at p (already scaled by the curl size) and time t.
func (c *CurlNoise) At(p mgl32.Vec3, t float32) mgl32.Vec3 {
	x, y, z, w := float64(p[0]), float64(p[1]), float64(p[2]), float64(t)
	const e = curlEpsilon
	const inv = 1 / (2 * e)

	dPzdy := (c.pz.Eval4(x, y+e, z, w) - c.pz.Eval4(x, y-e, z, w)) * inv
	dPydz := (c.py.Eval4(x, y, z+e, w) - c.py.Eval4(x, y, z-e, w)) * inv
	dPxdz := (c.px.Eval4(x, y, z+e, w) - c.px.Eval4(x, y, z-e, w)) * inv
	dPzdx := (c.pz.Eval4(x+e, y, z, w) - c.pz.Eval4(x-e, y, z, w)) * inv
	dPydx := (c.py.Eval4(x+e, y, z, w) - c.py.Eval4(x-e, y, z, w)) * inv
	dPxdy := (c.px.Eval4(x, y+e, z, w) - c.px.Eval4(x, y-e, z, w)) * inv

	return mgl32.Vec3{
		float32(dPzdy - dPydz),
		float32(dPxdz - dPzdx),
		float32(dPydx - dPxdy),
	}
}
