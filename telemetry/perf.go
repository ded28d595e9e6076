// Package telemetry measures frame timing over a rolling window and writes
// periodic summaries.
package telemetry

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Phase names for the parts of a frame.
const (
	PhaseInput    = "input"
	PhaseUpdate   = "update"
	PhaseSimulate = "simulate"
	PhaseRender   = "render"
)

type FrameSample struct {
	Duration time.Duration
	Phases   map[string]time.Duration
}

// PerfCollector keeps the last windowSize frames.
type PerfCollector struct {
	windowSize  int
	samples     []FrameSample
	writeIndex  int
	sampleCount int
	frames      int64

	currentPhases map[string]time.Duration
	frameStart    time.Time
	phaseStart    time.Time
	lastPhase     string
	phaseOrder    []string
}

func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 120
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]FrameSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

func (p *PerfCollector) StartFrame() {
	p.frameStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase closes the running phase, if any, and opens the named one.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

func (p *PerfCollector) EndFrame() {
	if p.frameStart.IsZero() {
		return
	}
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
		p.lastPhase = ""
	}
	p.Record(now.Sub(p.frameStart), p.currentPhases)
}

// Record adds a finished frame to the window.
func (p *PerfCollector) Record(d time.Duration, phases map[string]time.Duration) {
	for name := range phases {
		if !slices.Contains(p.phaseOrder, name) {
			p.phaseOrder = append(p.phaseOrder, name)
		}
	}
	p.samples[p.writeIndex] = FrameSample{Duration: d, Phases: phases}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
	p.frames++
}

// Frames is the number of frames recorded since creation.
func (p *PerfCollector) Frames() int64 {
	return p.frames
}

type PerfStats struct {
	Frames    int
	Mean      time.Duration
	P50       time.Duration
	P95       time.Duration
	Max       time.Duration
	StdDevMs  float64
	FPS       float64
	PhaseMean map[string]time.Duration
	phases    []string
}

// Stats summarizes the current window.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{Frames: p.sampleCount, PhaseMean: make(map[string]time.Duration), phases: p.phaseOrder}
	if p.sampleCount == 0 {
		return s
	}

	ms := make([]float64, p.sampleCount)
	phaseMs := make(map[string][]float64)
	for i := 0; i < p.sampleCount; i++ {
		sample := p.samples[i]
		ms[i] = float64(sample.Duration) / float64(time.Millisecond)
		for _, name := range p.phaseOrder {
			phaseMs[name] = append(phaseMs[name], float64(sample.Phases[name])/float64(time.Millisecond))
		}
	}

	mean := stat.Mean(ms, nil)
	s.Mean = msToDuration(mean)
	s.StdDevMs = 0
	if len(ms) > 1 {
		s.StdDevMs = stat.StdDev(ms, nil)
	}

	sorted := slices.Clone(ms)
	slices.Sort(sorted)
	s.P50 = msToDuration(stat.Quantile(0.5, stat.Empirical, sorted, nil))
	s.P95 = msToDuration(stat.Quantile(0.95, stat.Empirical, sorted, nil))
	s.Max = msToDuration(sorted[len(sorted)-1])
	if mean > 0 {
		s.FPS = 1000 / mean
	}
	for name, values := range phaseMs {
		s.PhaseMean[name] = msToDuration(stat.Mean(values, nil))
	}
	return s
}

func msToDuration(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}

func (s PerfStats) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "fps=%.1f frame mean=%s p50=%s p95=%s max=%s",
		s.FPS, s.Mean.Round(time.Microsecond), s.P50.Round(time.Microsecond),
		s.P95.Round(time.Microsecond), s.Max.Round(time.Microsecond))
	for _, name := range s.phases {
		fmt.Fprintf(&sb, " %s=%s", name, s.PhaseMean[name].Round(time.Microsecond))
	}
	return sb.String()
}
