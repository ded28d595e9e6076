package gpu

import (
	"encoding/binary"
	"math"

	"github.com/gekko3d/curlfield/fieldrt/core"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	SimUniformSize       = 64
	SceneUniformSize     = 240
	DofUniformSize       = 32
	CompositeUniformSize = 16
)

type uniformWriter []byte

func (w uniformWriter) f32(offset int, v float32) {
	binary.LittleEndian.PutUint32(w[offset:], math.Float32bits(v))
}

func (w uniformWriter) u32(offset int, v uint32) {
	binary.LittleEndian.PutUint32(w[offset:], v)
}

func (w uniformWriter) vec3(offset int, v mgl32.Vec3) {
	for i, c := range v {
		w.f32(offset+i*4, c)
	}
}

func (w uniformWriter) mat4(offset int, m mgl32.Mat4) {
	for i, c := range m {
		w.f32(offset+i*4, c)
	}
}

// PackSimUniforms lays out the SimUniforms block shared by both simulation
// passes.
func PackSimUniforms(grid core.Grid, f core.Frame) []byte {
	if f.Bounds <= 0 {
		f.Bounds = core.DefaultBounds
	}
	w := make(uniformWriter, SimUniformSize)
	w.vec3(0, f.Target)
	w.f32(12, f.Time)
	w.f32(16, f.Delta)
	w.f32(20, f.Params.Speed)
	w.f32(24, f.Params.Attraction)
	w.f32(28, f.Params.CurlSize)
	w.f32(32, f.Params.TimeScale)
	w.f32(36, f.Params.DieSpeed)
	w.f32(40, f.Params.Radius)
	w.f32(44, f.Bounds)
	w.u32(48, uint32(grid.Width))
	w.u32(52, uint32(grid.Height))
	return w
}

// SceneUniforms feeds the particle, shadow and floor programs.
type SceneUniforms struct {
	ViewProj      mgl32.Mat4
	LightViewProj mgl32.Mat4
	CameraPos     mgl32.Vec3
	Ambient       float32
	// LightDir points toward the light.
	LightDir       mgl32.Vec3
	LightIntensity float32
	LightColor     mgl32.Vec3
	Background     mgl32.Vec3
	FogNear        float32
	FogFar         float32
	Metalness      float32
	Roughness      float32
	EnvIntensity   float32
	Grid           core.Grid
	ShadowMapSize  uint32
	FloorY         float32
	FloorHalf      float32
}

func (s SceneUniforms) Bytes() []byte {
	w := make(uniformWriter, SceneUniformSize)
	w.mat4(0, s.ViewProj)
	w.mat4(64, s.LightViewProj)
	w.vec3(128, s.CameraPos)
	w.f32(140, s.Ambient)
	w.vec3(144, s.LightDir)
	w.f32(156, s.LightIntensity)
	w.vec3(160, s.LightColor)
	w.vec3(176, s.Background)
	w.f32(188, s.FogNear)
	w.f32(192, s.FogFar)
	w.f32(196, s.Metalness)
	w.f32(200, s.Roughness)
	w.f32(204, s.EnvIntensity)
	w.f32(208, float32(s.Grid.Width-1))
	w.f32(212, float32(s.Grid.Height-1))
	w.f32(216, float32(s.ShadowMapSize))
	w.f32(220, s.FloorY)
	w.f32(224, s.FloorHalf)
	return w
}

// DofUniforms drives the depth of field gather. FocusDepth is a view space
// distance.
type DofUniforms struct {
	FocusDepth     float32
	FocalLength    float32
	BokehScale     float32
	Near           float32
	Far            float32
	RadiusPerBokeh float32
	Width, Height  float32
}

func (d DofUniforms) Bytes() []byte {
	w := make(uniformWriter, DofUniformSize)
	w.f32(0, d.FocusDepth)
	w.f32(4, d.FocalLength)
	w.f32(8, d.BokehScale)
	w.f32(12, d.Near)
	w.f32(16, d.Far)
	w.f32(20, d.RadiusPerBokeh)
	w.f32(24, d.Width)
	w.f32(28, d.Height)
	return w
}

type CompositeUniforms struct {
	Exposure         float32
	VignetteOffset   float32
	VignetteDarkness float32
	EncodeSRGB       bool
}

func (c CompositeUniforms) Bytes() []byte {
	w := make(uniformWriter, CompositeUniformSize)
	w.f32(0, c.Exposure)
	w.f32(4, c.VignetteOffset)
	w.f32(8, c.VignetteDarkness)
	if c.EncodeSRGB {
		w.f32(12, 1)
	}
	return w
}
