package curlfield

type Commands struct {
	app *App
}

// ChangeState requests a transition applied at the end of the frame. The
// last request in a frame wins.
func (cmd *Commands) ChangeState(newState State) *Commands {
	cmd.app.changeState(newState)
	return cmd
}

func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.addResources(resources...)
	return cmd
}

// State returns the state the app is in, or the pending one if a change was
// requested this frame.
func (cmd *Commands) State() State {
	if cmd.app.stateTransitioning {
		return cmd.app.nextState
	}
	return cmd.app.state
}

func (cmd *Commands) Logger() Logger {
	return cmd.app.Logger()
}
