package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerfCollector_Timing(t *testing.T) {
	pc := NewPerfCollector(10)
	for i := 0; i < 3; i++ {
		pc.StartFrame()
		pc.StartPhase(PhaseSimulate)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseRender)
		time.Sleep(200 * time.Microsecond)
		pc.EndFrame()
	}

	stats := pc.Stats()
	assert.Equal(t, 3, stats.Frames)
	assert.Greater(t, stats.Mean, time.Duration(0))
	assert.Greater(t, stats.PhaseMean[PhaseSimulate], time.Duration(0))
	assert.Greater(t, stats.PhaseMean[PhaseRender], time.Duration(0))
	assert.Equal(t, int64(3), pc.Frames())
}

func TestPerfCollector_EndWithoutStartIsIgnored(t *testing.T) {
	pc := NewPerfCollector(4)
	pc.EndFrame()
	assert.Equal(t, 0, pc.Stats().Frames)
}

func TestPerfCollector_WindowStats(t *testing.T) {
	pc := NewPerfCollector(4)
	for _, ms := range []int{100, 100, 10, 20, 30, 40} {
		pc.Record(time.Duration(ms)*time.Millisecond, map[string]time.Duration{PhaseRender: time.Millisecond})
	}

	stats := pc.Stats()
	assert.Equal(t, 4, stats.Frames, "window keeps the newest frames only")
	assert.Equal(t, 25*time.Millisecond, stats.Mean)
	assert.Equal(t, 40*time.Millisecond, stats.Max)
	assert.Equal(t, 20*time.Millisecond, stats.P50)
	assert.Equal(t, 40*time.Millisecond, stats.P95)
	assert.InDelta(t, 40, stats.FPS, 1e-9)
	assert.Equal(t, time.Millisecond, stats.PhaseMean[PhaseRender])
	assert.Contains(t, stats.String(), "render=1ms")
}

func TestPerfWriter(t *testing.T) {
	w, err := NewPerfWriter("")
	require.NoError(t, err)
	assert.Nil(t, w)
	assert.NoError(t, w.Write(PerfRecord{}))
	assert.NoError(t, w.Close())

	path := filepath.Join(t.TempDir(), "out", "perf.csv")
	w, err = NewPerfWriter(path)
	require.NoError(t, err)

	pc := NewPerfCollector(2)
	pc.Record(16*time.Millisecond, nil)
	require.NoError(t, w.Write(pc.Stats().Record("s1", 1, time.Second, false)))
	require.NoError(t, w.Write(pc.Stats().Record("s1", 2, 2*time.Second, true)))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "session,frame,elapsed_s"))

	var rows []PerfRecord
	require.NoError(t, gocsv.UnmarshalBytes(data, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, int64(2), rows[1].Frame)
	assert.True(t, rows[1].Paused)
	assert.InDelta(t, 16, rows[0].MeanMs, 1e-9)
}
