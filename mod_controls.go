package curlfield

import (
	"fmt"

	"github.com/gekko3d/curlfield/fieldrt/core"
)

const shiftMultiplier = 10

// ControlEntry is one tunable on the panel: a ranged value or a toggle.
type ControlEntry struct {
	Label  string
	Spec   core.ParamSpec
	Value  *float32
	Toggle *bool
}

func (e ControlEntry) String() string {
	if e.Toggle != nil {
		if *e.Toggle {
			return e.Label + "  on"
		}
		return e.Label + "  off"
	}
	return fmt.Sprintf("%s  %.3f", e.Label, *e.Value)
}

// ControlPanel edits the simulation and depth of field tunables in place.
// Every change goes through the entry's ParamSpec.
type ControlPanel struct {
	Entries     []ControlEntry
	Selected    int
	LineSpacing float32

	fps float64
}

func NewControlPanel(params *core.Params, dof *core.DepthOfField) *ControlPanel {
	ranged := func(spec core.ParamSpec, v *float32) ControlEntry {
		return ControlEntry{Label: spec.Label, Spec: spec, Value: v}
	}
	return &ControlPanel{
		Entries: []ControlEntry{
			ranged(core.SpeedSpec, &params.Speed),
			ranged(core.AttractionSpec, &params.Attraction),
			ranged(core.CurlSizeSpec, &params.CurlSize),
			ranged(core.TimeScaleSpec, &params.TimeScale),
			ranged(core.DieSpeedSpec, &params.DieSpeed),
			ranged(core.RadiusSpec, &params.Radius),
			{Label: "depth of field", Toggle: &dof.Enabled},
			ranged(core.BokehScaleSpec, &dof.BokehScale),
			ranged(core.FocalLengthSpec, &dof.FocalLength),
		},
		LineSpacing: 20,
	}
}

func (p *ControlPanel) Select(i int) bool {
	if i < 0 || i >= len(p.Entries) {
		return false
	}
	p.Selected = i
	return true
}

// Adjust moves the selected tunable by steps increments. Toggles flip on
// any non-zero step.
func (p *ControlPanel) Adjust(steps int) {
	if steps == 0 {
		return
	}
	e := p.Entries[p.Selected]
	if e.Toggle != nil {
		*e.Toggle = !*e.Toggle
		return
	}
	*e.Value = e.Spec.Clamp(*e.Value + float32(steps)*e.Spec.Step)
}

// Lines lays out the panel as HUD text, one item per line.
func (p *ControlPanel) Lines(status string) []core.TextItem {
	white := [4]float32{0.93, 0.93, 0.93, 1}
	accent := [4]float32{0, 0.68, 0.71, 1}
	dim := [4]float32{0.6, 0.6, 0.6, 1}

	x, y := float32(12), float32(10)
	items := make([]core.TextItem, 0, len(p.Entries)+2)
	items = append(items, core.TextItem{Text: status, Position: [2]float32{x, y}, Scale: 1, Color: white})
	for i, e := range p.Entries {
		y += p.LineSpacing
		c, marker := white, "  "
		if i == p.Selected {
			c, marker = accent, "> "
		}
		items = append(items, core.TextItem{
			Text:     fmt.Sprintf("%s[%d] %s", marker, i+1, e),
			Position: [2]float32{x, y},
			Scale:    1,
			Color:    c,
		})
	}
	y += p.LineSpacing
	items = append(items, core.TextItem{
		Text:     "1-9 select  up/down adjust (shift x10)  R reset  H hud  space pause  esc quit",
		Position: [2]float32{x, y},
		Scale:    0.8,
		Color:    dim,
	})
	return items
}

type ControlsModule struct {
	// HUD shows the overlay at startup.
	HUD bool
}

func (m ControlsModule) Install(app *App, cmd *Commands) {
	field, ok := Resource[ParticleField](app)
	if !ok {
		panic("ControlsModule needs the ParticlesModule installed first")
	}
	post, ok := Resource[PostSettings](app)
	if !ok {
		post = &PostSettings{Dof: core.DefaultDepthOfField()}
		cmd.AddResources(post)
	}
	if _, ok := Resource[Input](app); !ok {
		cmd.AddResources(&Input{})
	}
	if overlay, ok := Resource[Overlay](app); ok {
		overlay.Visible = overlay.Visible && m.HUD
	} else {
		cmd.AddResources(&Overlay{Visible: m.HUD})
	}
	cmd.AddResources(NewControlPanel(&field.Params, &post.Dof))

	app.UseSystem(
		System(controlsSystem).
			InStage(Update).
			RunAlways(),
	)
	app.UseSystem(
		System(controlsOverlaySystem).
			InStage(PostUpdate).
			RunAlways(),
	)
}

var selectKeys = [...]int{Key1, Key2, Key3, Key4, Key5, Key6, Key7, Key8, Key9}

func controlsSystem(panel *ControlPanel, input *Input, field *ParticleField, overlay *Overlay, cmd *Commands, logger Logger) {
	for i, key := range selectKeys {
		if input.JustPressed[key] {
			panel.Select(i)
		}
	}

	step := 0
	if input.JustPressed[KeyUp] || input.JustPressed[KeyEqual] || input.JustPressed[KeyKPPlus] {
		step++
	}
	if input.JustPressed[KeyDown] || input.JustPressed[KeyMinus] || input.JustPressed[KeyKPMinus] {
		step--
	}
	if input.Pressed[KeyShift] {
		step *= shiftMultiplier
	}
	if step != 0 {
		panel.Adjust(step)
		logger.Debugf("%s", panel.Entries[panel.Selected])
	}

	if input.JustPressed[KeyH] {
		overlay.Visible = !overlay.Visible
	}
	if input.JustPressed[KeyR] {
		field.RequestReset()
	}
	if input.JustPressed[KeySpace] {
		switch cmd.State() {
		case StateRunning:
			logger.Infof("paused at step %d", field.Steps)
			cmd.ChangeState(StatePaused)
		case StatePaused:
			logger.Infof("resumed")
			cmd.ChangeState(StateRunning)
		}
	}
	if input.JustPressed[KeyEscape] {
		cmd.ChangeState(StateExiting)
	}
}

func controlsOverlaySystem(panel *ControlPanel, overlay *Overlay, field *ParticleField, t *Time, cmd *Commands) {
	if dt := t.Dt.Seconds(); dt > 0 {
		fps := 1 / dt
		if panel.fps == 0 {
			panel.fps = fps
		} else {
			panel.fps += (fps - panel.fps) * 0.1
		}
	}
	status := fmt.Sprintf("%d particles  %s  %.0f fps", field.Grid.Len(), field.Backend(), panel.fps)
	if cmd.State() == StatePaused {
		status += "  PAUSED"
	}
	overlay.Items = panel.Lines(status)
}
