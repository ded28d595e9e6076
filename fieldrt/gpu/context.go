// Package gpu records the particle field's compute and render work on a
// WebGPU device.
package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Context is the device state every pass records against.
type Context struct {
	Device *wgpu.Device
	Queue  *wgpu.Queue
	// Format of the swapchain the composite pass writes into.
	Format wgpu.TextureFormat
}

const (
	HDRFormat   = wgpu.TextureFormatRGBA16Float
	DepthFormat = wgpu.TextureFormatDepth32Float
	StateFormat = wgpu.TextureFormatRGBA32Float
)

// IsSRGB reports whether writes to format are encoded by the hardware.
func IsSRGB(format wgpu.TextureFormat) bool {
	switch format {
	case wgpu.TextureFormatRGBA8UnormSrgb, wgpu.TextureFormatBGRA8UnormSrgb:
		return true
	}
	return false
}

func (c *Context) shaderModule(label, code string) (*wgpu.ShaderModule, error) {
	mod, err := c.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: code},
	})
	if err != nil {
		return nil, fmt.Errorf("compiling %s: %w", label, err)
	}
	return mod, nil
}

func (c *Context) uniformBuffer(label string, size uint64) (*wgpu.Buffer, error) {
	buf, err := c.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", label, err)
	}
	return buf, nil
}

func (c *Context) linearSampler(label string) (*wgpu.Sampler, error) {
	return c.Device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         label,
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
}

func uniformEntry(binding uint32, stages wgpu.ShaderStage) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: stages,
		Buffer: wgpu.BufferBindingLayout{
			Type: wgpu.BufferBindingTypeUniform,
		},
	}
}

func textureEntry(binding uint32, stages wgpu.ShaderStage, sample wgpu.TextureSampleType, dim wgpu.TextureViewDimension) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: stages,
		Texture: wgpu.TextureBindingLayout{
			SampleType:    sample,
			ViewDimension: dim,
		},
	}
}

func samplerEntry(binding uint32, stages wgpu.ShaderStage, kind wgpu.SamplerBindingType) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: stages,
		Sampler:    wgpu.SamplerBindingLayout{Type: kind},
	}
}

func storageEntry(binding uint32, format wgpu.TextureFormat) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: wgpu.ShaderStageCompute,
		StorageTexture: wgpu.StorageTextureBindingLayout{
			Access:        wgpu.StorageTextureAccessWriteOnly,
			Format:        format,
			ViewDimension: wgpu.TextureViewDimension2D,
		},
	}
}
