package core

import "math"

// ParamSpec declares the range, step and default of one runtime tunable.
type ParamSpec struct {
	Key     string
	Label   string
	Min     float32
	Max     float32
	Step    float32
	Default float32
}

// Clamp limits v to the declared range and snaps it to the step grid.
// NaN maps to the default.
func (s ParamSpec) Clamp(v float32) float32 {
	if v != v {
		return s.Default
	}
	x := math.Min(math.Max(float64(v), float64(s.Min)), float64(s.Max))
	if s.Step > 0 {
		step := float64(s.Step)
		n := math.Round((x - float64(s.Min)) / step)
		// values already on the grid are kept bit for bit
		if q := float64(s.Min) + n*step; math.Abs(q-x) > step*1e-3 {
			x = math.Min(math.Max(q, float64(s.Min)), float64(s.Max))
		}
	}
	return float32(x)
}

var (
	SpeedSpec       = ParamSpec{Key: "speed", Label: "speed", Min: 0.2, Max: 4, Step: 0.001, Default: 1.1}
	AttractionSpec  = ParamSpec{Key: "attraction", Label: "attraction", Min: 0, Max: 2.5, Step: 0.001, Default: 1}
	CurlSizeSpec    = ParamSpec{Key: "curl_size", Label: "curl size", Min: 0.005, Max: 0.1, Step: 0.001, Default: 0.02}
	TimeScaleSpec   = ParamSpec{Key: "time_scale", Label: "time scale", Min: 0, Max: 2, Step: 0.001, Default: 0.8}
	DieSpeedSpec    = ParamSpec{Key: "die_speed", Label: "die speed", Min: 0.001, Max: 0.03, Step: 0.001, Default: 0.013}
	RadiusSpec      = ParamSpec{Key: "radius", Label: "radius", Min: 0, Max: 1, Step: 0.001, Default: 0.36}
	BokehScaleSpec  = ParamSpec{Key: "bokeh_scale", Label: "bokeh scale", Min: 0, Max: 4, Step: 0.01, Default: 2}
	FocalLengthSpec = ParamSpec{Key: "focal_length", Label: "focal length", Min: 0.001, Max: 0.2, Step: 0.001, Default: 0.048}
)

// ParamSpecs lists every runtime tunable, simulation first.
var ParamSpecs = []ParamSpec{
	SpeedSpec, AttractionSpec, CurlSizeSpec, TimeScaleSpec, DieSpeedSpec, RadiusSpec,
	BokehScaleSpec, FocalLengthSpec,
}

// Params are the simulation tunables uploaded to the compute passes each frame.
type Params struct {
	Speed      float32
	Attraction float32
	CurlSize   float32
	TimeScale  float32
	DieSpeed   float32
	Radius     float32
}

func DefaultParams() Params {
	return Params{
		Speed:      SpeedSpec.Default,
		Attraction: AttractionSpec.Default,
		CurlSize:   CurlSizeSpec.Default,
		TimeScale:  TimeScaleSpec.Default,
		DieSpeed:   DieSpeedSpec.Default,
		Radius:     RadiusSpec.Default,
	}
}

func (p Params) Clamped() Params {
	return Params{
		Speed:      SpeedSpec.Clamp(p.Speed),
		Attraction: AttractionSpec.Clamp(p.Attraction),
		CurlSize:   CurlSizeSpec.Clamp(p.CurlSize),
		TimeScale:  TimeScaleSpec.Clamp(p.TimeScale),
		DieSpeed:   DieSpeedSpec.Clamp(p.DieSpeed),
		Radius:     RadiusSpec.Clamp(p.Radius),
	}
}

// DepthOfField holds the post-processing tunables.
type DepthOfField struct {
	Enabled     bool
	BokehScale  float32
	FocalLength float32
}

func DefaultDepthOfField() DepthOfField {
	return DepthOfField{
		Enabled:     false,
		BokehScale:  BokehScaleSpec.Default,
		FocalLength: FocalLengthSpec.Default,
	}
}

func (d DepthOfField) Clamped() DepthOfField {
	return DepthOfField{
		Enabled:     d.Enabled,
		BokehScale:  BokehScaleSpec.Clamp(d.BokehScale),
		FocalLength: FocalLengthSpec.Clamp(d.FocalLength),
	}
}
