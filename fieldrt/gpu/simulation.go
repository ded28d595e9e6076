package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/curlfield/fieldrt/core"
	"github.com/gekko3d/curlfield/fieldrt/shaders"
)

const simWorkgroupSize = 8

type computePass struct {
	decl     core.PassDecl
	pipeline *wgpu.ComputePipeline
	layout   *wgpu.BindGroupLayout
	// groups are indexed by the current ping-pong index at dispatch time.
	groups [2]*wgpu.BindGroup
}

// Simulation advances ParticleTextures with one compute dispatch per
// declared pass, in dependency order.
type Simulation struct {
	ctx      *Context
	textures *ParticleTextures
	uniforms *wgpu.Buffer
	passes   []*computePass
}

func NewSimulation(ctx *Context, textures *ParticleTextures) (*Simulation, error) {
	decls, err := core.OrderPasses(core.SimulationPasses())
	if err != nil {
		return nil, err
	}
	s := &Simulation{ctx: ctx, textures: textures}
	s.uniforms, err = ctx.uniformBuffer("Simulation Uniforms", SimUniformSize)
	if err != nil {
		return nil, err
	}
	for _, d := range decls {
		p, err := s.createPass(d)
		if err != nil {
			s.Release()
			return nil, fmt.Errorf("%s pass: %w", d.Name, err)
		}
		s.passes = append(s.passes, p)
	}
	return s, nil
}

func passProgram(res core.Resource) (string, error) {
	switch res {
	case core.ResourcePosition:
		return shaders.PositionWGSL, nil
	case core.ResourceVelocity:
		return shaders.VelocityWGSL, nil
	}
	return "", fmt.Errorf("no program writes %s", res)
}

// Respawns read the default snapshot, so the position pass binds it after
// its declared reads.
func readsDefaults(d core.PassDecl) bool {
	return d.Writes == core.ResourcePosition
}

// PassLayout lists the bindings of a pass: uniforms at 0, the declared reads
// in order, the default snapshot where needed, then the write target.
func PassLayout(d core.PassDecl) []wgpu.BindGroupLayoutEntry {
	entries := []wgpu.BindGroupLayoutEntry{uniformEntry(0, wgpu.ShaderStageCompute)}
	binding := uint32(1)
	n := len(d.Reads)
	if readsDefaults(d) {
		n++
	}
	for ; binding <= uint32(n); binding++ {
		entries = append(entries, textureEntry(binding, wgpu.ShaderStageCompute,
			wgpu.TextureSampleTypeUnfilterableFloat, wgpu.TextureViewDimension2D))
	}
	return append(entries, storageEntry(binding, StateFormat))
}

// checkPassBindings compares the resource variables of a pass program with
// PassLayout so a mismatch is reported by name before pipeline creation.
func checkPassBindings(d core.PassDecl, code string) error {
	layout := PassLayout(d)
	bindings := shaders.Bindings(code)
	if len(bindings) != len(layout) {
		return fmt.Errorf("%s program declares %d bindings, its layout has %d", d.Name, len(bindings), len(layout))
	}
	for i, b := range bindings {
		e := layout[i]
		if b.Group != 0 || b.Index != e.Binding || b.Kind != layoutKind(e) {
			return fmt.Errorf("%s program binds %s (%s) at %d:%d, layout expects %s at 0:%d",
				d.Name, b.Name, b.Kind, b.Group, b.Index, layoutKind(e), e.Binding)
		}
	}
	return nil
}

func layoutKind(e wgpu.BindGroupLayoutEntry) shaders.BindingKind {
	switch {
	case e.Buffer.Type == wgpu.BufferBindingTypeUniform:
		return shaders.BindingUniform
	case e.StorageTexture.Format != wgpu.TextureFormatUndefined:
		return shaders.BindingStorageTexture
	case e.Sampler.Type >= wgpu.SamplerBindingTypeFiltering:
		return shaders.BindingSampler
	}
	return shaders.BindingTexture
}

func (s *Simulation) createPass(d core.PassDecl) (*computePass, error) {
	code, err := passProgram(d.Writes)
	if err != nil {
		return nil, err
	}
	if err := checkPassBindings(d, code); err != nil {
		return nil, err
	}
	mod, err := s.ctx.shaderModule(d.Name+" Simulation", code)
	if err != nil {
		return nil, err
	}
	defer mod.Release()

	bgl, err := s.ctx.Device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   d.Name + " BGL",
		Entries: PassLayout(d),
	})
	if err != nil {
		return nil, err
	}
	layout, err := s.ctx.Device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            d.Name + " Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{bgl},
	})
	if err != nil {
		bgl.Release()
		return nil, err
	}
	defer layout.Release()

	pipeline, err := s.ctx.Device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  d.Name + " Pipeline",
		Layout: layout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     mod,
			EntryPoint: "main",
		},
	})
	if err != nil {
		bgl.Release()
		return nil, err
	}

	p := &computePass{decl: d, pipeline: pipeline, layout: bgl}
	for current := 0; current < 2; current++ {
		p.groups[current], err = s.createBindGroup(p, current)
		if err != nil {
			p.release()
			return nil, err
		}
	}
	return p, nil
}

func (s *Simulation) createBindGroup(p *computePass, current int) (*wgpu.BindGroup, error) {
	next := 1 - current
	entries := []wgpu.BindGroupEntry{{Binding: 0, Buffer: s.uniforms, Size: wgpu.WholeSize}}
	binding := uint32(1)
	for _, r := range p.decl.Reads {
		idx := current
		if r.Fresh {
			idx = next
		}
		entries = append(entries, wgpu.BindGroupEntry{Binding: binding, TextureView: s.textures.View(r.Resource, idx)})
		binding++
	}
	if readsDefaults(p.decl) {
		entries = append(entries, wgpu.BindGroupEntry{Binding: binding, TextureView: s.textures.DefaultsView()})
		binding++
	}
	entries = append(entries, wgpu.BindGroupEntry{Binding: binding, TextureView: s.textures.View(p.decl.Writes, next)})

	return s.ctx.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   fmt.Sprintf("%s BG %d", p.decl.Name, current),
		Layout:  p.layout,
		Entries: entries,
	})
}

// Encode records one step. The caller submits the encoder and then swaps
// the textures.
func (s *Simulation) Encode(encoder *wgpu.CommandEncoder, f core.Frame) error {
	grid := s.textures.Grid()
	if err := s.ctx.Queue.WriteBuffer(s.uniforms, 0, PackSimUniforms(grid, f)); err != nil {
		return fmt.Errorf("writing simulation uniforms: %w", err)
	}
	current := s.textures.Current()
	wgX := (uint32(grid.Width) + simWorkgroupSize - 1) / simWorkgroupSize
	wgY := (uint32(grid.Height) + simWorkgroupSize - 1) / simWorkgroupSize
	for _, p := range s.passes {
		pass := encoder.BeginComputePass(&wgpu.ComputePassDescriptor{Label: p.decl.Name})
		pass.SetPipeline(p.pipeline)
		pass.SetBindGroup(0, p.groups[current], nil)
		pass.DispatchWorkgroups(wgX, wgY, 1)
		if err := pass.End(); err != nil {
			return fmt.Errorf("%s pass: %w", p.decl.Name, err)
		}
	}
	return nil
}

// Step encodes, submits and swaps in one go.
func (s *Simulation) Step(f core.Frame) error {
	encoder, err := s.ctx.Device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: "Simulation Step"})
	if err != nil {
		return err
	}
	defer encoder.Release()
	if err := s.Encode(encoder, f); err != nil {
		return err
	}
	cmd, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	defer cmd.Release()
	s.ctx.Queue.Submit(cmd)
	s.textures.Swap()
	return nil
}

func (p *computePass) release() {
	for _, g := range p.groups {
		if g != nil {
			g.Release()
		}
	}
	if p.layout != nil {
		p.layout.Release()
	}
	if p.pipeline != nil {
		p.pipeline.Release()
	}
}

func (s *Simulation) Release() {
	for _, p := range s.passes {
		p.release()
	}
	s.passes = nil
	if s.uniforms != nil {
		s.uniforms.Release()
	}
}
