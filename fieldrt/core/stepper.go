package core

import (
	"fmt"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// DefaultBounds is the world distance the radius tunable is normalized against.
	DefaultBounds = 500

	maxDeltaRatio     = 6
	attractionNear    = 50
	attractionFar     = 350
	velocityRetention = 0.9
)

// Frame carries the per-step uniforms shared by both simulation passes.
type Frame struct {
	Time   float32
	Delta  float32
	Target mgl32.Vec3
	Params Params
	Bounds float32
}

// DeltaRatio converts a frame duration into steps of a 60 Hz reference frame,
// clamped so a long stall cannot blow the field apart.
func DeltaRatio(dt time.Duration) float32 {
	return DeltaRatioSeconds(dt.Seconds())
}

func DeltaRatioSeconds(seconds float64) float32 {
	d := float32(seconds * 60)
	if !(d > 0) {
		return 0
	}
	return min(d, maxDeltaRatio)
}

// Stepper advances a State on the CPU, running the passes in resolved order.
type Stepper struct {
	noise  *CurlNoise
	passes []PassDecl
}

func NewStepper(noise *CurlNoise) (*Stepper, error) {
	passes, err := OrderPasses(SimulationPasses())
	if err != nil {
		return nil, fmt.Errorf("ordering simulation passes: %w", err)
	}
	return &Stepper{noise: noise, passes: passes}, nil
}

func (s *Stepper) Passes() []PassDecl {
	return s.passes
}

// Step runs one simulation step. Each texel only reads its own previous and
// fresh values, so the passes update the buffers in place.
func (s *Stepper) Step(st *State, f Frame) {
	if f.Bounds <= 0 {
		f.Bounds = DefaultBounds
	}
	t := f.Time * f.Params.TimeScale
	for _, pass := range s.passes {
		switch pass.Writes {
		case ResourceVelocity:
			for i := range st.Velocity {
				p := st.Position[i]
				c := s.noise.At(p.Vec3().Mul(f.Params.CurlSize), t)
				st.Velocity[i] = VelocityStep(p, st.Velocity[i], c, f)
			}
		case ResourcePosition:
			for i := range st.Position {
				st.Position[i] = PositionStep(st.Position[i], st.Velocity[i], st.Default[i], f)
			}
		}
	}
}

// VelocityStep blends the velocity toward the curl flow plus the pull of the
// pointer target.
func VelocityStep(pos, vel mgl32.Vec4, curl mgl32.Vec3, f Frame) mgl32.Vec4 {
	p := pos.Vec3()
	desired := curl

	toTarget := f.Target.Sub(p)
	if d := toTarget.Len(); d > 1e-4 {
		falloff := 1 - smoothstep(attractionNear, attractionFar, d)
		desired = desired.Add(toTarget.Mul(f.Params.Attraction * falloff / d))
	}
	desired = desired.Mul(f.Params.Speed)

	blend := clamp01(1 - float32(math.Pow(velocityRetention, float64(f.Delta))))
	v := vel.Vec3()
	v = v.Add(desired.Sub(v).Mul(blend))
	if !finite3(v) {
		v = mgl32.Vec3{}
	}
	return v.Vec4(0)
}

// PositionStep integrates one particle and respawns it at its default
// position when its life runs out or it leaves the radius around the target.
func PositionStep(pos, vel, def mgl32.Vec4, f Frame) mgl32.Vec4 {
	life := pos[3] - f.Params.DieSpeed*f.Delta
	p := pos.Vec3().Add(vel.Vec3().Mul(f.Delta))

	respawn := !(life > 0) || !finite3(p)
	if !respawn && f.Params.Radius > 0 {
		bounds := f.Bounds
		if bounds <= 0 {
			bounds = DefaultBounds
		}
		respawn = p.Sub(f.Target).Len() > f.Params.Radius*bounds
	}
	if respawn {
		return mgl32.Vec4{def[0], def[1], def[2], RespawnLife(def[3], f.Time)}
	}
	return p.Vec4(life)
}

// RespawnLife derives a fresh life in [0.5, 1) from the snapshot life and the
// current time.
func RespawnLife(defaultLife, t float32) float32 {
	l := 0.5 + 0.5*fract(defaultLife*21.4131+t)
	return min(l, math.Nextafter32(1, 0))
}

func fract(x float32) float32 {
	f := x - float32(math.Floor(float64(x)))
	if f >= 1 {
		return 0
	}
	return f
}

func smoothstep(e0, e1, x float32) float32 {
	t := clamp01((x - e0) / (e1 - e0))
	return t * t * (3 - 2*t)
}

func clamp01(x float32) float32 {
	return min(max(x, 0), 1)
}
