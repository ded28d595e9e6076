package curlfield

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelemetryModule_WritesReports(t *testing.T) {
	path := filepath.Join(t.TempDir(), "perf", "frames.csv")
	app, logs := newHeadlessApp(t, TelemetryModule{Window: 8, LogInterval: 50 * time.Millisecond, CSVPath: path})
	tel := mustResource[Telemetry](t, app)
	assert.Len(t, tel.Session, 36)

	for i := 0; i < 12; i++ {
		require.True(t, app.Tick())
	}
	assert.Equal(t, int64(12), tel.Perf.Frames())
	assert.Contains(t, logs.String(), "perf fps=")

	app.Commands().ChangeState(StateExiting)
	assert.False(t, app.Tick())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Greater(t, len(lines), 2)
	assert.True(t, strings.HasPrefix(lines[0], "session,frame,elapsed_s"))
	assert.True(t, strings.HasPrefix(lines[1], tel.Session))
}
