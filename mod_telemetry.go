package curlfield

import (
	"time"

	"github.com/gekko3d/curlfield/telemetry"
	"github.com/google/uuid"
)

// Telemetry times the phases of every frame and reports a rolling summary.
type Telemetry struct {
	Session string
	Perf    *telemetry.PerfCollector

	writer      *telemetry.PerfWriter
	interval    time.Duration
	lastReport  time.Duration
	writeFailed bool
}

// TelemetryModule should be installed before the modules it measures so its
// phase markers lead each stage.
type TelemetryModule struct {
	Window      int
	LogInterval time.Duration
	// CSVPath receives one row per report; empty disables the file.
	CSVPath string
}

func (m TelemetryModule) Install(app *App, cmd *Commands) {
	writer, err := telemetry.NewPerfWriter(m.CSVPath)
	if err != nil {
		app.Logger().Warnf("perf csv disabled: %v", err)
		writer = nil
	}
	tel := &Telemetry{
		Session:  uuid.New().String(),
		Perf:     telemetry.NewPerfCollector(m.Window),
		writer:   writer,
		interval: m.LogInterval,
	}
	app.Logger().Infof("session %s", tel.Session)
	cmd.AddResources(tel)

	app.UseSystem(System(phaseMarker(telemetry.PhaseInput, true)).InStage(Prelude).RunAlways())
	app.UseSystem(System(phaseMarker(telemetry.PhaseUpdate, false)).InStage(Update).RunAlways())
	app.UseSystem(System(phaseMarker(telemetry.PhaseSimulate, false)).InStage(PreRender).RunAlways())
	app.UseSystem(System(phaseMarker(telemetry.PhaseRender, false)).InStage(Render).RunAlways())
	app.UseSystem(
		System(telemetryReportSystem).
			InStage(Finale).
			RunAlways(),
	)
	app.UseSystem(
		System(telemetryCloseSystem).
			InStage(Finale).
			InState(OnExit(StateExiting)),
	)
}

func phaseMarker(phase string, startFrame bool) func(*Telemetry) {
	return func(tel *Telemetry) {
		if startFrame {
			tel.Perf.StartFrame()
		}
		tel.Perf.StartPhase(phase)
	}
}

func telemetryReportSystem(tel *Telemetry, t *Time, cmd *Commands, logger Logger) {
	tel.Perf.EndFrame()
	if tel.interval <= 0 || t.Elapsed-tel.lastReport < tel.interval {
		return
	}
	tel.lastReport = t.Elapsed
	tel.report(t, cmd.State() == StatePaused, logger)
}

func (tel *Telemetry) report(t *Time, paused bool, logger Logger) {
	stats := tel.Perf.Stats()
	logger.Infof("perf %s", stats)
	if tel.writer == nil || tel.writeFailed {
		return
	}
	if err := tel.writer.Write(stats.Record(tel.Session, tel.Perf.Frames(), t.Elapsed, paused)); err != nil {
		logger.Errorf("%v, perf csv disabled", err)
		tel.writeFailed = true
	}
}

func telemetryCloseSystem(tel *Telemetry, t *Time, logger Logger) {
	if tel.Perf.Frames() > 0 {
		tel.report(t, false, logger)
	}
	if err := tel.writer.Close(); err != nil {
		logger.Errorf("closing perf csv: %v", err)
	}
}
