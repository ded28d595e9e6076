package curlfield

const (
	// StateRunning steps the simulation every frame.
	StateRunning State = iota
	// StatePaused keeps drawing, controls and telemetry alive but leaves the
	// simulation textures untouched.
	StatePaused
	// StateExiting is final: entering it ends the frame loop.
	StateExiting
)

func StateName(s State) string {
	switch s {
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateExiting:
		return "exiting"
	}
	return "unknown"
}
