package curlfield

import (
	"time"
)

// Time is the frame clock. Elapsed is wall time since start, independent of
// the simulation clock which stops while paused.
type Time struct {
	Now     time.Time
	Dt      time.Duration
	Elapsed time.Duration
	Frame   uint64
	// Fixed, when set, replaces the measured frame duration.
	Fixed time.Duration

	started bool
}

type TimeModule struct {
	Fixed time.Duration
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Time{Now: time.Now(), Fixed: mod.Fixed})
	app.UseSystem(
		System(timeSystem).
			InStage(Prelude).
			RunAlways(),
	)
}

func timeSystem(t *Time) {
	now := time.Now()
	switch {
	case t.Fixed > 0:
		t.Dt = t.Fixed
	case !t.started:
		t.Dt = 0
	default:
		t.Dt = now.Sub(t.Now)
	}
	t.started = true
	t.Now = now
	t.Elapsed += t.Dt
	t.Frame++
}
