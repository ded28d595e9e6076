package curlfield

import (
	"github.com/gekko3d/curlfield/fieldrt/core"
)

// ViewportModule publishes a *core.Viewport. With a window present it
// follows the window size and content scale every frame and reconfigures
// the swapchain on change; without one it keeps the configured size.
type ViewportModule struct {
	Width      int
	Height     int
	PixelRatio float32
}

func (m ViewportModule) Install(app *App, cmd *Commands) {
	vp := core.NewViewport(m.Width, m.Height, m.PixelRatio)

	if ws, ok := Resource[WindowState](app); ok {
		w, h := ws.Size()
		vp.Update(w, h, ws.ContentScale())
		if gs, ok := Resource[GpuState](app); ok {
			vp.Subscribe(func(core.ViewportEvent) {
				gs.Reconfigure(ws.FramebufferSize())
			})
		}
		app.UseSystem(
			System(viewportSystem).
				InStage(PreUpdate).
				RunAlways(),
		)
	}

	logger := app.Logger()
	vp.Subscribe(func(ev core.ViewportEvent) {
		logger.Debugf("viewport %dx%d aspect %.3f ratio %.2f", ev.Width, ev.Height, ev.Aspect, ev.PixelRatio)
	})
	cmd.AddResources(vp)
}

func viewportSystem(ws *WindowState, vp *core.Viewport) {
	w, h := ws.Size()
	vp.Update(w, h, ws.ContentScale())
}
