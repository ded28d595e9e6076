package curlfield

import (
	"github.com/gekko3d/curlfield/fieldrt/core"
	"github.com/go-gl/mathgl/mgl32"
)

const pointerClampKey = "pointer-clamp"

// Pointer is the 3D cursor: the window cursor unprojected into the scene.
// The simulation pulls particles toward Target and depth of field focuses
// on it.
type Pointer struct {
	NDC     mgl32.Vec2
	Target  mgl32.Vec3
	Clamped bool

	projector core.PointerProjector
}

type PointerModule struct {
	MaxDistance float32
}

func (m PointerModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Pointer{projector: core.PointerProjector{MaxDistance: m.MaxDistance}})
	if _, ok := Resource[LogOnce](app); !ok {
		cmd.AddResources(&LogOnce{})
	}

	if _, ok := Resource[Input](app); ok {
		app.UseSystem(
			System(pointerInputSystem).
				InStage(PostUpdate).
				RunAlways(),
		)
	}
	app.UseSystem(
		System(pointerProjectSystem).
			InStage(PostUpdate).
			RunAlways(),
	)
}

func pointerInputSystem(p *Pointer, input *Input, vp *core.Viewport) {
	if !input.MouseInside {
		return
	}
	p.NDC = core.PointerNDC(input.MouseX, input.MouseY, vp.Width, vp.Height)
}

func pointerProjectSystem(p *Pointer, rig *CameraRig, once *LogOnce, logger Logger) {
	cam := rig.Camera
	p.Target, p.Clamped = p.projector.Project(p.NDC, cam.Position, cam.InverseViewProjection())
	if p.Clamped {
		once.Warnf(logger, pointerClampKey, "pointer ray misses the reference plane, target clamped to %v", p.Target)
	} else {
		once.Clear(pointerClampKey)
	}
}
