package gpu

import (
	"fmt"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/curlfield/fieldrt/core"
	"github.com/gekko3d/curlfield/fieldrt/shaders"
)

// MeshLayout is the per vertex stream of the base octahedron.
func MeshLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: uint64(unsafe.Sizeof(core.MeshVertex{})),
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
		},
	}
}

// InstanceLayout is the per particle stream: reference coordinate and color.
func InstanceLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: uint64(unsafe.Sizeof(core.Instance{})),
		StepMode:    wgpu.VertexStepModeInstance,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 2},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 8, ShaderLocation: 3},
		},
	}
}

// ParticleRenderer draws one mesh instance per texel, placed in the vertex
// stage from the simulation textures. The color and shadow pipelines run the
// same particle_transform.
type ParticleRenderer struct {
	ctx *Context

	mesh          *wgpu.Buffer
	instances     *wgpu.Buffer
	vertexCount   uint32
	instanceCount uint32

	stateLayout *wgpu.BindGroupLayout
	// stateGroups are indexed by the current ping-pong index.
	stateGroups [2]*wgpu.BindGroup

	color  *wgpu.RenderPipeline
	shadow *wgpu.RenderPipeline
}

func NewParticleRenderer(ctx *Context, scene *Scene, textures *ParticleTextures, mesh []core.MeshVertex, instances []core.Instance) (*ParticleRenderer, error) {
	r := &ParticleRenderer{
		ctx:           ctx,
		vertexCount:   uint32(len(mesh)),
		instanceCount: uint32(len(instances)),
	}
	if err := r.init(scene, textures, mesh, instances); err != nil {
		r.Release()
		return nil, err
	}
	return r, nil
}

func (r *ParticleRenderer) init(scene *Scene, textures *ParticleTextures, mesh []core.MeshVertex, instances []core.Instance) error {
	var err error
	r.mesh, err = r.ctx.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Particle Mesh",
		Contents: wgpu.ToBytes(mesh),
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		return fmt.Errorf("creating mesh buffer: %w", err)
	}
	r.instances, err = r.ctx.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Particle Instances",
		Contents: wgpu.ToBytes(instances),
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		return fmt.Errorf("creating instance buffer: %w", err)
	}

	r.stateLayout, err = r.ctx.Device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Particle State BGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			textureEntry(0, wgpu.ShaderStageVertex, wgpu.TextureSampleTypeUnfilterableFloat, wgpu.TextureViewDimension2D),
			textureEntry(1, wgpu.ShaderStageVertex, wgpu.TextureSampleTypeUnfilterableFloat, wgpu.TextureViewDimension2D),
		},
	})
	if err != nil {
		return err
	}
	for i := 0; i < 2; i++ {
		r.stateGroups[i], err = r.ctx.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  fmt.Sprintf("Particle State BG %d", i),
			Layout: r.stateLayout,
			Entries: []wgpu.BindGroupEntry{
				{Binding: 0, TextureView: textures.View(core.ResourcePosition, i)},
				{Binding: 1, TextureView: textures.View(core.ResourceVelocity, i)},
			},
		})
		if err != nil {
			return fmt.Errorf("creating particle state bind group: %w", err)
		}
	}

	mod, err := r.ctx.shaderModule("Particle Shader", shaders.ParticlesWGSL)
	if err != nil {
		return err
	}
	defer mod.Release()

	buffers := []wgpu.VertexBufferLayout{MeshLayout(), InstanceLayout()}

	colorLayout, err := r.ctx.Device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Particle Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{scene.Layout, r.stateLayout},
	})
	if err != nil {
		return err
	}
	defer colorLayout.Release()
	r.color, err = r.ctx.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Particle Pipeline",
		Layout: colorLayout,
		Vertex: wgpu.VertexState{
			Module:     mod,
			EntryPoint: "vs_main",
			Buffers:    buffers,
		},
		Fragment: &wgpu.FragmentState{
			Module:     mod,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    HDRFormat,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeBack,
		},
		DepthStencil: depthState(0, 0),
		Multisample:  singleSample(),
	})
	if err != nil {
		return fmt.Errorf("creating particle pipeline: %w", err)
	}

	shadowLayout, err := r.ctx.Device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Particle Shadow Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{scene.ShadowLayout, r.stateLayout},
	})
	if err != nil {
		return err
	}
	defer shadowLayout.Release()
	r.shadow, err = r.ctx.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Particle Shadow Pipeline",
		Layout: shadowLayout,
		Vertex: wgpu.VertexState{
			Module:     mod,
			EntryPoint: "vs_shadow",
			Buffers:    buffers,
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		DepthStencil: depthState(shadowDepthBias, shadowSlopeBiasScale),
		Multisample:  singleSample(),
	})
	if err != nil {
		return fmt.Errorf("creating particle shadow pipeline: %w", err)
	}
	return nil
}

func (r *ParticleRenderer) bind(pass *wgpu.RenderPassEncoder, current int) {
	pass.SetBindGroup(1, r.stateGroups[current], nil)
	pass.SetVertexBuffer(0, r.mesh, 0, r.mesh.GetSize())
	pass.SetVertexBuffer(1, r.instances, 0, r.instances.GetSize())
}

func (r *ParticleRenderer) Draw(pass *wgpu.RenderPassEncoder, scene *Scene, current int) {
	pass.SetPipeline(r.color)
	pass.SetBindGroup(0, scene.Group, nil)
	r.bind(pass, current)
	pass.Draw(r.vertexCount, r.instanceCount, 0, 0)
}

func (r *ParticleRenderer) DrawShadow(pass *wgpu.RenderPassEncoder, scene *Scene, current int) {
	pass.SetPipeline(r.shadow)
	pass.SetBindGroup(0, scene.ShadowGroup, nil)
	r.bind(pass, current)
	pass.Draw(r.vertexCount, r.instanceCount, 0, 0)
}

func (r *ParticleRenderer) Release() {
	if r.shadow != nil {
		r.shadow.Release()
	}
	if r.color != nil {
		r.color.Release()
	}
	for _, g := range r.stateGroups {
		if g != nil {
			g.Release()
		}
	}
	if r.stateLayout != nil {
		r.stateLayout.Release()
	}
	if r.instances != nil {
		r.instances.Release()
	}
	if r.mesh != nil {
		r.mesh.Release()
	}
}
