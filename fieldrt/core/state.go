package core

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
)

// State is the CPU side image of the simulation textures. Position holds
// (x, y, z, life), Velocity holds (vx, vy, vz, unused). Default is the
// snapshot of the initial positions and is never written after Seed.
type State struct {
	Grid     Grid
	Position []mgl32.Vec4
	Velocity []mgl32.Vec4
	Default  []mgl32.Vec4
}

func NewState(grid Grid) *State {
	n := grid.Len()
	return &State{
		Grid:     grid,
		Position: make([]mgl32.Vec4, n),
		Velocity: make([]mgl32.Vec4, n),
		Default:  make([]mgl32.Vec4, n),
	}
}

// Seed scatters particles in a spherical shell of the given radius with a
// random initial life and zero velocity, then takes the default snapshot.
func (s *State) Seed(rng *rand.Rand, radius float32) {
	for i := range s.Position {
		r := (0.5 + rng.Float64()*0.5) * float64(radius)
		phi := (rng.Float64() - 0.5) * math.Pi
		theta := rng.Float64() * 2 * math.Pi
		s.Position[i] = mgl32.Vec4{
			float32(r * math.Cos(theta) * math.Cos(phi)),
			float32(r * math.Sin(phi)),
			float32(r * math.Sin(theta) * math.Cos(phi)),
			float32(rng.Float64()),
		}
		s.Velocity[i] = mgl32.Vec4{}
	}
	copy(s.Default, s.Position)
}

// Reset restores positions from the default snapshot and zeroes velocities.
func (s *State) Reset() {
	copy(s.Position, s.Default)
	clear(s.Velocity)
}

func (s *State) Clone() *State {
	c := NewState(s.Grid)
	copy(c.Position, s.Position)
	copy(c.Velocity, s.Velocity)
	copy(c.Default, s.Default)
	return c
}

// Finite reports whether every position and velocity component is finite.
func (s *State) Finite() bool {
	for i := range s.Position {
		if !finite4(s.Position[i]) || !finite4(s.Velocity[i]) {
			return false
		}
	}
	return true
}

func finite4(v mgl32.Vec4) bool {
	for _, c := range v {
		if math.IsNaN(float64(c)) || math.IsInf(float64(c), 0) {
			return false
		}
	}
	return true
}

func finite3(v mgl32.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(float64(c)) || math.IsInf(float64(c), 0) {
			return false
		}
	}
	return true
}
