package curlfield

import (
	"github.com/gekko3d/curlfield/fieldrt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// CameraRig is the scene camera and the orbit controls steering it.
type CameraRig struct {
	Camera *core.Camera
	Orbit  *core.OrbitControls
}

type CameraModule struct {
	Position    mgl32.Vec3
	Target      mgl32.Vec3
	FovY        float32
	Near        float32
	Far         float32
	MinDistance float32
	MaxDistance float32
	MinPolar    float32
	MaxPolar    float32
	Damping     float32
}

func (m CameraModule) Install(app *App, cmd *Commands) {
	orbit := core.NewOrbitControls(m.Position, m.Target)
	orbit.MinDistance = m.MinDistance
	if m.MaxDistance > 0 {
		orbit.MaxDistance = m.MaxDistance
	}
	orbit.MinPolar = m.MinPolar
	if m.MaxPolar > 0 {
		orbit.MaxPolar = m.MaxPolar
	}
	orbit.Damping = m.Damping

	rig := &CameraRig{
		Camera: core.NewCamera(m.Position, m.Target, m.FovY, m.Near, m.Far),
		Orbit:  orbit,
	}
	rig.Camera.Position = orbit.Update()
	cmd.AddResources(rig)

	if _, ok := Resource[Input](app); ok {
		app.UseSystem(
			System(orbitInputSystem).
				InStage(Update).
				RunAlways(),
		)
	}
	app.UseSystem(
		System(cameraSystem).
			InStage(Update).
			RunAlways(),
	)
}

func orbitInputSystem(rig *CameraRig, input *Input, vp *core.Viewport) {
	if input.Pressed[MouseButtonLeft] && !input.JustPressed[MouseButtonLeft] {
		rig.Orbit.Rotate(float32(input.MouseDeltaX), float32(input.MouseDeltaY), vp.Height)
	}
	if input.Scroll != 0 {
		rig.Orbit.Dolly(float32(input.Scroll))
	}
}

func cameraSystem(rig *CameraRig, vp *core.Viewport) {
	rig.Camera.Position = rig.Orbit.Update()
	rig.Camera.Target = rig.Orbit.Target
	rig.Camera.Aspect = vp.Aspect
}
