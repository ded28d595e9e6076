package curlfield

import (
	"fmt"
	"image"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/curlfield/fieldrt/core"
	"github.com/gekko3d/curlfield/fieldrt/gpu"
	"github.com/go-gl/mathgl/mgl32"
)

const renderFrameKey = "render-frame"

type SceneSettings struct {
	Background   mgl32.Vec3
	Light        core.DirectionalLight
	FloorY       float32
	FloorSize    float32
	FogNear      float32
	FogFar       float32
	Ambient      float32
	Metalness    float32
	Roughness    float32
	EnvIntensity float32
	// EnvMapDir holds the six cube faces; empty uses a neutral cube.
	EnvMapDir string
}

// PostSettings are the post-processing tunables read every frame.
type PostSettings struct {
	Dof              core.DepthOfField
	Exposure         float32
	VignetteOffset   float32
	VignetteDarkness float32
}

// Overlay is the HUD text drawn over the composite.
type Overlay struct {
	Visible bool
	Items   []core.TextItem
}

type FieldRenderer struct {
	renderer    *gpu.Renderer
	scene       SceneSettings
	encodeSRGB  bool
	unsubscribe func()
}

type RendererModule struct {
	Scene    SceneSettings
	Post     PostSettings
	FontSize float64
}

func (m RendererModule) Install(app *App, cmd *Commands) {
	gs, ok := Resource[GpuState](app)
	if !ok {
		panic("RendererModule needs the WindowModule installed first")
	}
	field, ok := Resource[ParticleField](app)
	if !ok || field.Textures == nil {
		panic("RendererModule needs the ParticlesModule installed first")
	}
	vp, ok := Resource[core.Viewport](app)
	if !ok {
		panic("RendererModule needs the ViewportModule installed first")
	}
	logger := app.Logger()

	faces, err := loadEnvFaces(m.Scene.EnvMapDir)
	if err != nil {
		logger.Warnf("environment map: %v, using a neutral cube", err)
		faces = gpu.NeutralFaces()
	}

	fontSize := m.FontSize
	if fontSize <= 0 {
		fontSize = 16
	}
	text, err := core.NewTextRenderer(fontSize)
	if err != nil {
		logger.Warnf("HUD disabled: %v", err)
		text = nil
	}

	w, h := vp.ScaledSize()
	renderer, err := gpu.NewRenderer(gs.Context, gpu.RendererConfig{
		Width:         uint32(w),
		Height:        uint32(h),
		ShadowMapSize: m.Scene.Light.MapSize,
		EnvFaces:      faces,
		Mesh:          core.Octahedron(1),
		Instances:     field.Instances,
		Textures:      field.Textures,
		Text:          text,
	})
	if err != nil {
		panic(fmt.Errorf("creating renderer: %w", err))
	}

	fr := &FieldRenderer{
		renderer:   renderer,
		scene:      m.Scene,
		encodeSRGB: !gpu.IsSRGB(gs.Context.Format),
	}
	fr.unsubscribe = vp.Subscribe(func(ev core.ViewportEvent) {
		if ev.Width == 0 || ev.Height == 0 {
			return
		}
		w, h := vp.ScaledSize()
		if err := renderer.Resize(uint32(w), uint32(h)); err != nil {
			logger.Errorf("resizing render targets to %dx%d: %v", w, h, err)
		}
	})

	cmd.AddResources(fr, &Overlay{Visible: text != nil})
	if _, ok := Resource[PostSettings](app); !ok {
		post := m.Post
		cmd.AddResources(&post)
	}
	if _, ok := Resource[LogOnce](app); !ok {
		cmd.AddResources(&LogOnce{})
	}

	app.UseSystem(
		System(renderSystem).
			InStage(Render).
			RunAlways(),
	)
	app.UseSystem(
		System(rendererReleaseSystem).
			InStage(PostRender).
			InState(OnExit(StateExiting)),
	)
}

func loadEnvFaces(dir string) ([6]*image.RGBA, error) {
	if dir == "" {
		return gpu.NeutralFaces(), nil
	}
	return gpu.LoadCubeFaces(dir)
}

// frameInput derives all per frame uniforms. width and height are the
// pixel size of the offscreen targets.
func (fr *FieldRenderer) frameInput(field *ParticleField, rig *CameraRig, ptr *Pointer, post *PostSettings, width, height int) gpu.FrameInput {
	cam := rig.Camera
	light := fr.scene.Light
	dof := post.Dof.Clamped()

	return gpu.FrameInput{
		Scene: gpu.SceneUniforms{
			ViewProj:       cam.GPUViewProjection(),
			LightViewProj:  light.ViewProjection(),
			CameraPos:      cam.Position,
			Ambient:        fr.scene.Ambient,
			LightDir:       light.Direction().Mul(-1),
			LightIntensity: light.Intensity,
			LightColor:     light.Color,
			Background:     fr.scene.Background,
			FogNear:        fr.scene.FogNear,
			FogFar:         fr.scene.FogFar,
			Metalness:      fr.scene.Metalness,
			Roughness:      fr.scene.Roughness,
			EnvIntensity:   fr.scene.EnvIntensity,
			Grid:           field.Grid,
			ShadowMapSize:  light.MapSize,
			FloorY:         fr.scene.FloorY,
			FloorHalf:      fr.scene.FloorSize / 2,
		},
		Dof: gpu.DofUniforms{
			FocusDepth:     cam.ViewDepth(ptr.Target),
			FocalLength:    dof.FocalLength,
			BokehScale:     dof.BokehScale,
			Near:           cam.Near,
			Far:            cam.Far,
			RadiusPerBokeh: gpu.DofRadiusPerBokeh,
			Width:          float32(width),
			Height:         float32(height),
		},
		DofEnabled: dof.Enabled,
		Composite: gpu.CompositeUniforms{
			Exposure:         post.Exposure,
			VignetteOffset:   post.VignetteOffset,
			VignetteDarkness: post.VignetteDarkness,
			EncodeSRGB:       fr.encodeSRGB,
		},
		Background: fr.scene.Background,
		Current:    field.Current(),
	}
}

func renderSystem(gs *GpuState, fr *FieldRenderer, field *ParticleField, rig *CameraRig, ptr *Pointer,
	vp *core.Viewport, post *PostSettings, overlay *Overlay, once *LogOnce, logger Logger) {
	if vp.Minimized() {
		return
	}
	w, h := vp.ScaledSize()
	in := fr.frameInput(field, rig, ptr, post, w, h)
	in.TargetWidth, in.TargetHeight = gs.SurfaceSize()
	if overlay.Visible {
		in.Text = overlay.Items
	}

	if err := fr.present(gs, in); err != nil {
		once.Warnf(logger, renderFrameKey, "frame skipped: %v", err)
		return
	}
	once.Clear(renderFrameKey)
}

func (fr *FieldRenderer) present(gs *GpuState, in gpu.FrameInput) error {
	next, err := gs.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("acquiring surface texture: %w", err)
	}
	defer next.Release()
	view, err := next.CreateView(nil)
	if err != nil {
		return fmt.Errorf("creating surface view: %w", err)
	}
	defer view.Release()

	encoder, err := gs.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: "Frame"})
	if err != nil {
		return err
	}
	defer encoder.Release()
	if err := fr.renderer.Encode(encoder, view, in); err != nil {
		return err
	}
	cmdBuffer, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("finishing frame: %w", err)
	}
	defer cmdBuffer.Release()

	gs.queue.Submit(cmdBuffer)
	gs.surface.Present()
	return nil
}

func rendererReleaseSystem(fr *FieldRenderer) {
	if fr.unsubscribe != nil {
		fr.unsubscribe()
	}
	fr.renderer.Release()
}
