package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/curlfield/fieldrt/shaders"
)

// DofRadiusPerBokeh converts the bokeh scale to a maximum gather radius in
// pixels.
const DofRadiusPerBokeh = 4

// Targets are the offscreen attachments the scene renders into.
type Targets struct {
	Width, Height uint32

	hdr       *wgpu.Texture
	HDRView   *wgpu.TextureView
	depth     *wgpu.Texture
	DepthView *wgpu.TextureView
	dof       *wgpu.Texture
	DofView   *wgpu.TextureView
}

func newTarget(ctx *Context, label string, w, h uint32, format wgpu.TextureFormat) (*wgpu.Texture, *wgpu.TextureView, error) {
	tex, err := ctx.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Size:          wgpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating %s: %w", label, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, nil, fmt.Errorf("creating %s view: %w", label, err)
	}
	return tex, view, nil
}

func NewTargets(ctx *Context, w, h uint32) (*Targets, error) {
	t := &Targets{Width: max(w, 1), Height: max(h, 1)}
	var err error
	if t.hdr, t.HDRView, err = newTarget(ctx, "HDR Color", t.Width, t.Height, HDRFormat); err != nil {
		t.Release()
		return nil, err
	}
	if t.depth, t.DepthView, err = newTarget(ctx, "Scene Depth", t.Width, t.Height, DepthFormat); err != nil {
		t.Release()
		return nil, err
	}
	if t.dof, t.DofView, err = newTarget(ctx, "Depth Of Field", t.Width, t.Height, HDRFormat); err != nil {
		t.Release()
		return nil, err
	}
	return t, nil
}

func (t *Targets) Release() {
	for _, v := range []*wgpu.TextureView{t.HDRView, t.DepthView, t.DofView} {
		if v != nil {
			v.Release()
		}
	}
	for _, tex := range []*wgpu.Texture{t.hdr, t.depth, t.dof} {
		if tex != nil {
			tex.Release()
		}
	}
}

// PostFX runs the optional depth of field gather and the final composite
// (vignette, tone mapping, output encoding).
type PostFX struct {
	ctx     *Context
	sampler *wgpu.Sampler
	targets *Targets

	dofUniforms       *wgpu.Buffer
	compositeUniforms *wgpu.Buffer

	dofLayout       *wgpu.BindGroupLayout
	compositeLayout *wgpu.BindGroupLayout
	dofPipeline     *wgpu.RenderPipeline
	composite       *wgpu.RenderPipeline

	dofGroup *wgpu.BindGroup
	// compositeGroups[0] reads the scene color, [1] the depth of field output.
	compositeGroups [2]*wgpu.BindGroup
}

func NewPostFX(ctx *Context, w, h uint32) (*PostFX, error) {
	p := &PostFX{ctx: ctx}
	if err := p.init(); err != nil {
		p.Release()
		return nil, err
	}
	if err := p.Resize(w, h); err != nil {
		p.Release()
		return nil, err
	}
	return p, nil
}

func (p *PostFX) init() error {
	var err error
	p.sampler, err = p.ctx.linearSampler("Post Sampler")
	if err != nil {
		return err
	}
	if p.dofUniforms, err = p.ctx.uniformBuffer("DoF Uniforms", DofUniformSize); err != nil {
		return err
	}
	if p.compositeUniforms, err = p.ctx.uniformBuffer("Composite Uniforms", CompositeUniformSize); err != nil {
		return err
	}

	fragment := wgpu.ShaderStageFragment
	p.dofLayout, err = p.ctx.Device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "DoF BGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			uniformEntry(0, fragment),
			textureEntry(1, fragment, wgpu.TextureSampleTypeFloat, wgpu.TextureViewDimension2D),
			textureEntry(2, fragment, wgpu.TextureSampleTypeDepth, wgpu.TextureViewDimension2D),
			samplerEntry(3, fragment, wgpu.SamplerBindingTypeFiltering),
		},
	})
	if err != nil {
		return err
	}
	p.compositeLayout, err = p.ctx.Device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Composite BGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			uniformEntry(0, fragment),
			textureEntry(1, fragment, wgpu.TextureSampleTypeFloat, wgpu.TextureViewDimension2D),
			samplerEntry(2, fragment, wgpu.SamplerBindingTypeFiltering),
		},
	})
	if err != nil {
		return err
	}

	if p.dofPipeline, err = p.fullscreenPipeline("DoF", shaders.DepthOfFieldWGSL, p.dofLayout, HDRFormat); err != nil {
		return err
	}
	p.composite, err = p.fullscreenPipeline("Composite", shaders.CompositeWGSL, p.compositeLayout, p.ctx.Format)
	return err
}

func (p *PostFX) fullscreenPipeline(label, code string, bgl *wgpu.BindGroupLayout, format wgpu.TextureFormat) (*wgpu.RenderPipeline, error) {
	mod, err := p.ctx.shaderModule(label+" Shader", code)
	if err != nil {
		return nil, err
	}
	defer mod.Release()
	layout, err := p.ctx.Device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            label + " Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{bgl},
	})
	if err != nil {
		return nil, err
	}
	defer layout.Release()
	pipeline, err := p.ctx.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  label + " Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     mod,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     mod,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    format,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
		},
		Multisample: singleSample(),
	})
	if err != nil {
		return nil, fmt.Errorf("creating %s pipeline: %w", label, err)
	}
	return pipeline, nil
}

// Resize recreates the offscreen targets and the bind groups reading them.
func (p *PostFX) Resize(w, h uint32) error {
	targets, err := NewTargets(p.ctx, w, h)
	if err != nil {
		return err
	}
	p.releaseTargets()
	p.targets = targets

	p.dofGroup, err = p.ctx.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "DoF BG",
		Layout: p.dofLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: p.dofUniforms, Size: wgpu.WholeSize},
			{Binding: 1, TextureView: targets.HDRView},
			{Binding: 2, TextureView: targets.DepthView},
			{Binding: 3, Sampler: p.sampler},
		},
	})
	if err != nil {
		return fmt.Errorf("creating DoF bind group: %w", err)
	}
	for i, src := range []*wgpu.TextureView{targets.HDRView, targets.DofView} {
		p.compositeGroups[i], err = p.ctx.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  fmt.Sprintf("Composite BG %d", i),
			Layout: p.compositeLayout,
			Entries: []wgpu.BindGroupEntry{
				{Binding: 0, Buffer: p.compositeUniforms, Size: wgpu.WholeSize},
				{Binding: 1, TextureView: src},
				{Binding: 2, Sampler: p.sampler},
			},
		})
		if err != nil {
			return fmt.Errorf("creating composite bind group: %w", err)
		}
	}
	return nil
}

func (p *PostFX) Targets() *Targets { return p.targets }

func (p *PostFX) Update(dof DofUniforms, composite CompositeUniforms) error {
	dof.Width, dof.Height = float32(p.targets.Width), float32(p.targets.Height)
	if dof.RadiusPerBokeh == 0 {
		dof.RadiusPerBokeh = DofRadiusPerBokeh
	}
	if err := p.ctx.Queue.WriteBuffer(p.dofUniforms, 0, dof.Bytes()); err != nil {
		return err
	}
	return p.ctx.Queue.WriteBuffer(p.compositeUniforms, 0, composite.Bytes())
}

// EncodeDepthOfField gathers the scene color into the DoF target.
func (p *PostFX) EncodeDepthOfField(encoder *wgpu.CommandEncoder) error {
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "Depth Of Field",
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       p.targets.DofView,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
		}},
	})
	pass.SetPipeline(p.dofPipeline)
	pass.SetBindGroup(0, p.dofGroup, nil)
	pass.Draw(3, 1, 0, 0)
	return pass.End()
}

// DrawComposite writes the final image into the pass's color attachment.
func (p *PostFX) DrawComposite(pass *wgpu.RenderPassEncoder, useDof bool) {
	src := 0
	if useDof {
		src = 1
	}
	pass.SetPipeline(p.composite)
	pass.SetBindGroup(0, p.compositeGroups[src], nil)
	pass.Draw(3, 1, 0, 0)
}

func (p *PostFX) releaseTargets() {
	for i, g := range p.compositeGroups {
		if g != nil {
			g.Release()
			p.compositeGroups[i] = nil
		}
	}
	if p.dofGroup != nil {
		p.dofGroup.Release()
		p.dofGroup = nil
	}
	if p.targets != nil {
		p.targets.Release()
		p.targets = nil
	}
}

func (p *PostFX) Release() {
	p.releaseTargets()
	for _, rp := range []*wgpu.RenderPipeline{p.composite, p.dofPipeline} {
		if rp != nil {
			rp.Release()
		}
	}
	for _, l := range []*wgpu.BindGroupLayout{p.compositeLayout, p.dofLayout} {
		if l != nil {
			l.Release()
		}
	}
	for _, b := range []*wgpu.Buffer{p.compositeUniforms, p.dofUniforms} {
		if b != nil {
			b.Release()
		}
	}
	if p.sampler != nil {
		p.sampler.Release()
	}
}
