package core

import "github.com/go-gl/mathgl/mgl32"

type MeshVertex struct {
	Position [3]float32
	Normal   [3]float32
}

// Octahedron returns a flat shaded, non-indexed octahedron with counter
// clockwise outward facing triangles.
func Octahedron(radius float32) []MeshVertex {
	verts := make([]MeshVertex, 0, 24)
	signs := [2]float32{1, -1}
	for _, sx := range signs {
		for _, sy := range signs {
			for _, sz := range signs {
				a := mgl32.Vec3{sx * radius, 0, 0}
				b := mgl32.Vec3{0, sy * radius, 0}
				c := mgl32.Vec3{0, 0, sz * radius}
				if sx*sy*sz < 0 {
					b, c = c, b
				}
				n := b.Sub(a).Cross(c.Sub(a)).Normalize()
				for _, p := range [3]mgl32.Vec3{a, b, c} {
					verts = append(verts, MeshVertex{Position: p, Normal: n})
				}
			}
		}
	}
	return verts
}

// Instance is the per particle vertex attribute block.
type Instance struct {
	Reference [2]float32
	Color     [3]float32
}

// BuildInstances assigns every texel a reference coordinate and a palette color.
func BuildInstances(grid Grid, palette Palette, pick func() float64) []Instance {
	out := make([]Instance, grid.Len())
	for i := range out {
		out[i] = Instance{
			Reference: grid.Reference(i),
			Color:     palette[palette.PickIndex(pick())],
		}
	}
	return out
}
