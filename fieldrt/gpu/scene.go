package gpu

import (
	"fmt"
	"image"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/curlfield/fieldrt/shaders"
)

const (
	shadowDepthBias      = 2
	shadowSlopeBiasScale = 2.0
)

// Scene owns the bind group shared by every lit program: scene uniforms,
// the directional light's shadow map and the environment cube. It also
// draws the floor.
type Scene struct {
	ctx *Context

	uniforms      *wgpu.Buffer
	shadowMap     *wgpu.Texture
	ShadowView    *wgpu.TextureView
	ShadowSize    uint32
	shadowSampler *wgpu.Sampler
	envSampler    *wgpu.Sampler
	env           *EnvMap

	// Layout is group 0 of the lit programs, ShadowLayout the uniforms only
	// subset the depth-only pass binds.
	Layout       *wgpu.BindGroupLayout
	ShadowLayout *wgpu.BindGroupLayout
	Group        *wgpu.BindGroup
	ShadowGroup  *wgpu.BindGroup

	floor *wgpu.RenderPipeline
}

func SceneLayout() []wgpu.BindGroupLayoutEntry {
	fragment := wgpu.ShaderStageFragment
	return []wgpu.BindGroupLayoutEntry{
		uniformEntry(0, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment),
		textureEntry(1, fragment, wgpu.TextureSampleTypeDepth, wgpu.TextureViewDimension2D),
		samplerEntry(2, fragment, wgpu.SamplerBindingTypeComparison),
		textureEntry(3, fragment, wgpu.TextureSampleTypeFloat, wgpu.TextureViewDimensionCube),
		samplerEntry(4, fragment, wgpu.SamplerBindingTypeFiltering),
	}
}

func NewScene(ctx *Context, shadowSize uint32, faces [6]*image.RGBA) (*Scene, error) {
	s := &Scene{ctx: ctx, ShadowSize: shadowSize}
	if err := s.init(faces); err != nil {
		s.Release()
		return nil, err
	}
	return s, nil
}

func (s *Scene) init(faces [6]*image.RGBA) error {
	var err error
	s.uniforms, err = s.ctx.uniformBuffer("Scene Uniforms", SceneUniformSize)
	if err != nil {
		return err
	}

	s.shadowMap, err = s.ctx.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Shadow Map",
		Size:          wgpu.Extent3D{Width: s.ShadowSize, Height: s.ShadowSize, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        DepthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		return fmt.Errorf("creating shadow map: %w", err)
	}
	s.ShadowView, err = s.shadowMap.CreateView(nil)
	if err != nil {
		return fmt.Errorf("creating shadow map view: %w", err)
	}

	s.shadowSampler, err = s.ctx.Device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Shadow Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		Compare:       wgpu.CompareFunctionLess,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("creating shadow sampler: %w", err)
	}
	s.envSampler, err = s.ctx.linearSampler("Environment Sampler")
	if err != nil {
		return fmt.Errorf("creating environment sampler: %w", err)
	}
	s.env, err = NewEnvMap(s.ctx, faces)
	if err != nil {
		return err
	}

	s.Layout, err = s.ctx.Device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   "Scene BGL",
		Entries: SceneLayout(),
	})
	if err != nil {
		return err
	}
	s.ShadowLayout, err = s.ctx.Device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   "Shadow BGL",
		Entries: []wgpu.BindGroupLayoutEntry{uniformEntry(0, wgpu.ShaderStageVertex)},
	})
	if err != nil {
		return err
	}

	s.Group, err = s.ctx.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Scene BG",
		Layout: s.Layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: s.uniforms, Size: wgpu.WholeSize},
			{Binding: 1, TextureView: s.ShadowView},
			{Binding: 2, Sampler: s.shadowSampler},
			{Binding: 3, TextureView: s.env.View},
			{Binding: 4, Sampler: s.envSampler},
		},
	})
	if err != nil {
		return fmt.Errorf("creating scene bind group: %w", err)
	}
	s.ShadowGroup, err = s.ctx.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   "Shadow BG",
		Layout:  s.ShadowLayout,
		Entries: []wgpu.BindGroupEntry{{Binding: 0, Buffer: s.uniforms, Size: wgpu.WholeSize}},
	})
	if err != nil {
		return fmt.Errorf("creating shadow bind group: %w", err)
	}

	return s.createFloorPipeline()
}

func (s *Scene) createFloorPipeline() error {
	mod, err := s.ctx.shaderModule("Floor Shader", shaders.FloorWGSL)
	if err != nil {
		return err
	}
	defer mod.Release()
	layout, err := s.ctx.Device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Floor Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{s.Layout},
	})
	if err != nil {
		return err
	}
	defer layout.Release()

	s.floor, err = s.ctx.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Floor Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     mod,
			EntryPoint: "vs_main",
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
			Topology: wgpu.PrimitiveTopologyTriangleList,
			CullMode: wgpu.CullModeNone,
		},
		DepthStencil: depthState(0, 0),
		Multisample:  singleSample(),
	})
	if err != nil {
		return fmt.Errorf("creating floor pipeline: %w", err)
	}
	return nil
}

func depthState(bias int32, slopeScale float32) *wgpu.DepthStencilState {
	return &wgpu.DepthStencilState{
		Format:              DepthFormat,
		DepthWriteEnabled:   true,
		DepthCompare:        wgpu.CompareFunctionLess,
		DepthBias:           bias,
		DepthBiasSlopeScale: slopeScale,
		StencilFront:        wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		StencilBack:         wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
	}
}

func singleSample() wgpu.MultisampleState {
	return wgpu.MultisampleState{
		Count: 1,
		Mask:  0xFFFFFFFF,
	}
}

func (s *Scene) Update(u SceneUniforms) error {
	u.ShadowMapSize = s.ShadowSize
	return s.ctx.Queue.WriteBuffer(s.uniforms, 0, u.Bytes())
}

func (s *Scene) DrawFloor(pass *wgpu.RenderPassEncoder) {
	pass.SetPipeline(s.floor)
	pass.SetBindGroup(0, s.Group, nil)
	pass.Draw(6, 1, 0, 0)
}

func (s *Scene) Release() {
	if s.floor != nil {
		s.floor.Release()
	}
	if s.ShadowGroup != nil {
		s.ShadowGroup.Release()
	}
	if s.Group != nil {
		s.Group.Release()
	}
	if s.ShadowLayout != nil {
		s.ShadowLayout.Release()
	}
	if s.Layout != nil {
		s.Layout.Release()
	}
	if s.env != nil {
		s.env.Release()
	}
	if s.envSampler != nil {
		s.envSampler.Release()
	}
	if s.shadowSampler != nil {
		s.shadowSampler.Release()
	}
	if s.ShadowView != nil {
		s.ShadowView.Release()
	}
	if s.shadowMap != nil {
		s.shadowMap.Release()
	}
	if s.uniforms != nil {
		s.uniforms.Release()
	}
}
