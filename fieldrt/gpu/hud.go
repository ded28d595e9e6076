package gpu

import (
	"fmt"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/curlfield/fieldrt/core"
	"github.com/gekko3d/curlfield/fieldrt/shaders"
)

// HUD draws text quads from a TextRenderer atlas over the final image.
type HUD struct {
	ctx  *Context
	text *core.TextRenderer

	atlas     *wgpu.Texture
	atlasView *wgpu.TextureView
	sampler   *wgpu.Sampler
	layout    *wgpu.BindGroupLayout
	group     *wgpu.BindGroup
	pipeline  *wgpu.RenderPipeline

	vertices    *wgpu.Buffer
	vertexCount uint32
}

func NewHUD(ctx *Context, text *core.TextRenderer) (*HUD, error) {
	h := &HUD{ctx: ctx, text: text}
	if err := h.init(); err != nil {
		h.Release()
		return nil, err
	}
	return h, nil
}

func (h *HUD) init() error {
	w, ht := h.text.Atlas.Bounds().Dx(), h.text.Atlas.Bounds().Dy()
	var err error
	h.atlas, err = h.ctx.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Text Atlas",
		Size:          wgpu.Extent3D{Width: uint32(w), Height: uint32(ht), DepthOrArrayLayers: 1},
		Format:        wgpu.TextureFormatR8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return fmt.Errorf("creating text atlas: %w", err)
	}
	err = h.ctx.Queue.WriteTexture(h.atlas.AsImageCopy(), h.text.Atlas.Pix, &wgpu.TextureDataLayout{
		Offset:       0,
		BytesPerRow:  uint32(h.text.Atlas.Stride),
		RowsPerImage: uint32(ht),
	}, &wgpu.Extent3D{Width: uint32(w), Height: uint32(ht), DepthOrArrayLayers: 1})
	if err != nil {
		return fmt.Errorf("uploading text atlas: %w", err)
	}
	if h.atlasView, err = h.atlas.CreateView(nil); err != nil {
		return err
	}
	if h.sampler, err = h.ctx.linearSampler("Text Sampler"); err != nil {
		return err
	}

	fragment := wgpu.ShaderStageFragment
	h.layout, err = h.ctx.Device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Text BGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			textureEntry(0, fragment, wgpu.TextureSampleTypeFloat, wgpu.TextureViewDimension2D),
			samplerEntry(1, fragment, wgpu.SamplerBindingTypeFiltering),
		},
	})
	if err != nil {
		return err
	}
	h.group, err = h.ctx.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Text BG",
		Layout: h.layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: h.atlasView},
			{Binding: 1, Sampler: h.sampler},
		},
	})
	if err != nil {
		return fmt.Errorf("creating text bind group: %w", err)
	}

	mod, err := h.ctx.shaderModule("Text Shader", shaders.TextWGSL)
	if err != nil {
		return err
	}
	defer mod.Release()
	layout, err := h.ctx.Device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Text Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{h.layout},
	})
	if err != nil {
		return err
	}
	defer layout.Release()

	h.pipeline, err = h.ctx.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Text Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     mod,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: uint64(unsafe.Sizeof(core.TextVertex{})),
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
					{Format: wgpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
					{Format: wgpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2},
				},
			}},
		},
		Fragment: &wgpu.FragmentState{
			Module:     mod,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format: h.ctx.Format,
				Blend: &wgpu.BlendState{
					Color: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorSrcAlpha,
						DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
						Operation: wgpu.BlendOperationAdd,
					},
					Alpha: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorOne,
						DstFactor: wgpu.BlendFactorOne,
						Operation: wgpu.BlendOperationAdd,
					},
				},
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
		},
		Multisample: singleSample(),
	})
	if err != nil {
		return fmt.Errorf("creating text pipeline: %w", err)
	}
	return nil
}

// Update lays out items for a width x height surface, growing the vertex
// buffer when needed.
func (h *HUD) Update(items []core.TextItem, width, height int) error {
	vertices := h.text.BuildVertices(items, width, height)
	h.vertexCount = uint32(len(vertices))
	if len(vertices) == 0 {
		return nil
	}
	data := wgpu.ToBytes(vertices)
	if h.vertices == nil || h.vertices.GetSize() < uint64(len(data)) {
		if h.vertices != nil {
			h.vertices.Release()
		}
		var err error
		h.vertices, err = h.ctx.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "Text Vertices",
			Size:  uint64(len(data)) * 2,
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			h.vertexCount = 0
			return fmt.Errorf("creating text vertex buffer: %w", err)
		}
	}
	return h.ctx.Queue.WriteBuffer(h.vertices, 0, data)
}

func (h *HUD) Draw(pass *wgpu.RenderPassEncoder) {
	if h.vertexCount == 0 || h.vertices == nil {
		return
	}
	pass.SetPipeline(h.pipeline)
	pass.SetBindGroup(0, h.group, nil)
	pass.SetVertexBuffer(0, h.vertices, 0, h.vertices.GetSize())
	pass.Draw(h.vertexCount, 1, 0, 0)
}

func (h *HUD) Release() {
	if h.vertices != nil {
		h.vertices.Release()
	}
	if h.pipeline != nil {
		h.pipeline.Release()
	}
	if h.group != nil {
		h.group.Release()
	}
	if h.layout != nil {
		h.layout.Release()
	}
	if h.sampler != nil {
		h.sampler.Release()
	}
	if h.atlasView != nil {
		h.atlasView.Release()
	}
	if h.atlas != nil {
		h.atlas.Release()
	}
}
