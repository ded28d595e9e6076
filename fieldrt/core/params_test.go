package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParamSpec_Clamp(t *testing.T) {
	nan := float32(math.NaN())
	tests := []struct {
		name string
		spec ParamSpec
		in   float32
		want float32
	}{
		{"speed above range", SpeedSpec, 10, 4},
		{"speed below range", SpeedSpec, 0, 0.2},
		{"speed snapped to step", SpeedSpec, 1.1234, 1.123},
		{"die speed floor", DieSpeedSpec, 0, 0.001},
		{"radius inside", RadiusSpec, 0.5, 0.5},
		{"bokeh step", BokehScaleSpec, 1.234, 1.23},
		{"nan falls back to default", CurlSizeSpec, nan, 0.02},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.spec.Clamp(tt.in), 1e-6)
		})
	}
}

func TestParams_Clamped(t *testing.T) {
	d := DefaultParams()
	c := d.Clamped()
	assert.InDelta(t, d.Speed, c.Speed, 1e-6)
	assert.InDelta(t, d.Attraction, c.Attraction, 1e-6)
	assert.InDelta(t, d.CurlSize, c.CurlSize, 1e-6)
	assert.InDelta(t, d.TimeScale, c.TimeScale, 1e-6)
	assert.InDelta(t, d.DieSpeed, c.DieSpeed, 1e-6)
	assert.InDelta(t, d.Radius, c.Radius, 1e-6)

	zero := Params{}.Clamped()
	assert.InDelta(t, SpeedSpec.Min, zero.Speed, 1e-6)
	assert.InDelta(t, CurlSizeSpec.Min, zero.CurlSize, 1e-6)
	assert.InDelta(t, DieSpeedSpec.Min, zero.DieSpeed, 1e-6)
}

func TestDepthOfField_Clamped(t *testing.T) {
	d := DepthOfField{Enabled: true, BokehScale: 9, FocalLength: -1}.Clamped()
	assert.True(t, d.Enabled)
	assert.InDelta(t, 4, d.BokehScale, 1e-6)
	assert.InDelta(t, 0.001, d.FocalLength, 1e-6)

	def := DefaultDepthOfField()
	assert.False(t, def.Enabled)
	assert.InDelta(t, 2, def.BokehScale, 1e-6)
	assert.InDelta(t, 0.048, def.FocalLength, 1e-6)
}
