package curlfield

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/gekko3d/curlfield/fieldrt/gpu"
	"github.com/go-gl/glfw/v3.3/glfw"
)

type WindowState struct {
	window *glfw.Window
	Title  string
}

// Size is the window size in screen coordinates.
func (s *WindowState) Size() (int, int) {
	return s.window.GetSize()
}

func (s *WindowState) FramebufferSize() (int, int) {
	return s.window.GetFramebufferSize()
}

// ContentScale is the device pixel ratio of the monitor the window is on.
func (s *WindowState) ContentScale() float32 {
	x, _ := s.window.GetContentScale()
	return x
}

type GpuState struct {
	surface       *wgpu.Surface
	adapter       *wgpu.Adapter
	device        *wgpu.Device
	queue         *wgpu.Queue
	surfaceConfig *wgpu.SurfaceConfiguration
	Context       *gpu.Context
}

func createWindowState(width, height int, title string) (*WindowState, error) {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("initializing glfw: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // WebGPU owns the surface
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("creating window: %w", err)
	}
	return &WindowState{window: win, Title: title}, nil
}

func createGpuState(s *WindowState) (*GpuState, error) {
	instance := wgpu.CreateInstance(nil)
	defer instance.Release()

	surface := instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(s.window))
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return nil, fmt.Errorf("requesting adapter: %w", err)
	}
	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
	})
	if err != nil {
		return nil, fmt.Errorf("requesting device: %w", err)
	}
	queue := device.GetQueue()

	caps := surface.GetCapabilities(adapter)
	if len(caps.Formats) == 0 || len(caps.AlphaModes) == 0 {
		return nil, errors.New("surface reports no formats")
	}
	w, h := s.FramebufferSize()
	surfaceConfig := wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(max(w, 1)),
		Height:      uint32(max(h, 1)),
		PresentMode: wgpu.PresentModeFifo, // vsync
		AlphaMode:   caps.AlphaModes[0],
	}
	surface.Configure(adapter, device, &surfaceConfig)

	return &GpuState{
		surface:       surface,
		adapter:       adapter,
		device:        device,
		queue:         queue,
		surfaceConfig: &surfaceConfig,
		Context:       &gpu.Context{Device: device, Queue: queue, Format: surfaceConfig.Format},
	}, nil
}

// Reconfigure resizes the swapchain. Zero sizes are ignored, the surface
// keeps its last configuration while the window is minimized.
func (g *GpuState) Reconfigure(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if uint32(width) == g.surfaceConfig.Width && uint32(height) == g.surfaceConfig.Height {
		return
	}
	g.surfaceConfig.Width = uint32(width)
	g.surfaceConfig.Height = uint32(height)
	g.surface.Configure(g.adapter, g.device, g.surfaceConfig)
}

func (g *GpuState) SurfaceSize() (int, int) {
	return int(g.surfaceConfig.Width), int(g.surfaceConfig.Height)
}

func (g *GpuState) release() {
	g.device.Release()
	g.adapter.Release()
	g.surface.Release()
}

// WindowModule opens the window and the WebGPU device on it. Failure here
// is fatal.
type WindowModule struct {
	Width  int
	Height int
	Title  string
}

func (m WindowModule) Install(app *App, cmd *Commands) {
	if _, ok := Resource[WindowState](app); ok {
		return
	}
	ws, err := createWindowState(max(m.Width, 1), max(m.Height, 1), m.Title)
	if err != nil {
		panic(err)
	}
	gs, err := createGpuState(ws)
	if err != nil {
		panic(err)
	}
	cmd.AddResources(ws, gs)
	app.Logger().Infof("window %dx%d, surface format %v", m.Width, m.Height, gs.surfaceConfig.Format)

	app.UseSystem(
		System(windowCloseSystem).
			InStage(Prelude).
			RunAlways(),
	)
	app.UseSystem(
		System(windowReleaseSystem).
			InStage(Finale).
			InState(OnExit(StateExiting)),
	)
}

func windowCloseSystem(ws *WindowState, cmd *Commands) {
	if ws.window.ShouldClose() && cmd.State() != StateExiting {
		cmd.ChangeState(StateExiting)
	}
}

func windowReleaseSystem(ws *WindowState, gs *GpuState) {
	gs.release()
	ws.window.Destroy()
	glfw.Terminate()
}
