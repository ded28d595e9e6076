package gpu

import (
	"fmt"
	"image"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/curlfield/fieldrt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// RendererConfig carries what the renderer needs at creation.
type RendererConfig struct {
	Width, Height uint32
	ShadowMapSize uint32
	EnvFaces      [6]*image.RGBA
	Mesh          []core.MeshVertex
	Instances     []core.Instance
	Textures      *ParticleTextures
	Text          *core.TextRenderer
}

// FrameInput is everything one frame of rendering reads from the app.
type FrameInput struct {
	Scene      SceneUniforms
	Dof        DofUniforms
	DofEnabled bool
	Composite  CompositeUniforms
	Background mgl32.Vec3
	// Current is the ping-pong index of the latest simulation state.
	Current int
	Text    []core.TextItem
	// TargetWidth and TargetHeight are the pixel size of the final target,
	// used to lay out Text.
	TargetWidth, TargetHeight int
}

// Renderer records the shadow, scene, depth of field and composite passes of
// a frame.
type Renderer struct {
	ctx       *Context
	Scene     *Scene
	Particles *ParticleRenderer
	Post      *PostFX
	HUD       *HUD
}

func NewRenderer(ctx *Context, cfg RendererConfig) (*Renderer, error) {
	r := &Renderer{ctx: ctx}
	var err error
	if r.Scene, err = NewScene(ctx, cfg.ShadowMapSize, cfg.EnvFaces); err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	if r.Particles, err = NewParticleRenderer(ctx, r.Scene, cfg.Textures, cfg.Mesh, cfg.Instances); err != nil {
		r.Release()
		return nil, fmt.Errorf("particles: %w", err)
	}
	if r.Post, err = NewPostFX(ctx, cfg.Width, cfg.Height); err != nil {
		r.Release()
		return nil, fmt.Errorf("post: %w", err)
	}
	if cfg.Text != nil {
		if r.HUD, err = NewHUD(ctx, cfg.Text); err != nil {
			r.Release()
			return nil, fmt.Errorf("hud: %w", err)
		}
	}
	return r, nil
}

func (r *Renderer) Resize(w, h uint32) error {
	return r.Post.Resize(w, h)
}

// Encode records a whole frame ending in target. Uniform and HUD uploads
// happen on the queue before the passes are recorded.
func (r *Renderer) Encode(encoder *wgpu.CommandEncoder, target *wgpu.TextureView, in FrameInput) error {
	if err := r.Scene.Update(in.Scene); err != nil {
		return fmt.Errorf("scene uniforms: %w", err)
	}
	if err := r.Post.Update(in.Dof, in.Composite); err != nil {
		return fmt.Errorf("post uniforms: %w", err)
	}
	targets := r.Post.Targets()
	if r.HUD != nil {
		if err := r.HUD.Update(in.Text, in.TargetWidth, in.TargetHeight); err != nil {
			return fmt.Errorf("hud: %w", err)
		}
	}

	shadow := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "Shadow",
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            r.Scene.ShadowView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1,
		},
	})
	r.Particles.DrawShadow(shadow, r.Scene, in.Current)
	if err := shadow.End(); err != nil {
		return fmt.Errorf("shadow pass: %w", err)
	}

	bg := in.Background
	scene := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "Scene",
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       targets.HDRView,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: float64(bg[0]), G: float64(bg[1]), B: float64(bg[2]), A: 1},
		}},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            targets.DepthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1,
		},
	})
	r.Scene.DrawFloor(scene)
	r.Particles.Draw(scene, r.Scene, in.Current)
	if err := scene.End(); err != nil {
		return fmt.Errorf("scene pass: %w", err)
	}

	if in.DofEnabled {
		if err := r.Post.EncodeDepthOfField(encoder); err != nil {
			return fmt.Errorf("depth of field pass: %w", err)
		}
	}

	final := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "Composite",
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       target,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
		}},
	})
	r.Post.DrawComposite(final, in.DofEnabled)
	if r.HUD != nil {
		r.HUD.Draw(final)
	}
	if err := final.End(); err != nil {
		return fmt.Errorf("composite pass: %w", err)
	}
	return nil
}

func (r *Renderer) Release() {
	if r.HUD != nil {
		r.HUD.Release()
	}
	if r.Post != nil {
		r.Post.Release()
	}
	if r.Particles != nil {
		r.Particles.Release()
	}
	if r.Scene != nil {
		r.Scene.Release()
	}
}
