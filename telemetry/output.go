package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
)

// PerfRecord is one row of the perf CSV.
type PerfRecord struct {
	Session    string  `csv:"session"`
	Frame      int64   `csv:"frame"`
	Elapsed    float64 `csv:"elapsed_s"`
	Window     int     `csv:"window"`
	FPS        float64 `csv:"fps"`
	MeanMs     float64 `csv:"mean_ms"`
	P50Ms      float64 `csv:"p50_ms"`
	P95Ms      float64 `csv:"p95_ms"`
	MaxMs      float64 `csv:"max_ms"`
	StdDevMs   float64 `csv:"stddev_ms"`
	UpdateMs   float64 `csv:"update_ms"`
	SimulateMs float64 `csv:"simulate_ms"`
	RenderMs   float64 `csv:"render_ms"`
	Paused     bool    `csv:"paused"`
}

func durationMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func (s PerfStats) Record(session string, frame int64, elapsed time.Duration, paused bool) PerfRecord {
	return PerfRecord{
		Session:    session,
		Frame:      frame,
		Elapsed:    elapsed.Seconds(),
		Window:     s.Frames,
		FPS:        s.FPS,
		MeanMs:     durationMs(s.Mean),
		P50Ms:      durationMs(s.P50),
		P95Ms:      durationMs(s.P95),
		MaxMs:      durationMs(s.Max),
		StdDevMs:   s.StdDevMs,
		UpdateMs:   durationMs(s.PhaseMean[PhaseUpdate]),
		SimulateMs: durationMs(s.PhaseMean[PhaseSimulate]),
		RenderMs:   durationMs(s.PhaseMean[PhaseRender]),
		Paused:     paused,
	}
}

// PerfWriter appends PerfRecords to a CSV file, writing the header once.
type PerfWriter struct {
	file          *os.File
	headerWritten bool
}

// NewPerfWriter creates the file at path. It returns nil for an empty path;
// a nil writer accepts and drops records.
func NewPerfWriter(path string) (*PerfWriter, error) {
	if path == "" {
		return nil, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating perf output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating perf csv: %w", err)
	}
	return &PerfWriter{file: f}, nil
}

func (w *PerfWriter) Write(rec PerfRecord) error {
	if w == nil {
		return nil
	}
	records := []PerfRecord{rec}
	if !w.headerWritten {
		if err := gocsv.Marshal(records, w.file); err != nil {
			return fmt.Errorf("writing perf: %w", err)
		}
		w.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, w.file); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

func (w *PerfWriter) Close() error {
	if w == nil || w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}
