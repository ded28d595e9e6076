package gpu

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/curlfield/fieldrt/shaders"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeshAndInstanceLayouts(t *testing.T) {
	mesh := MeshLayout()
	assert.Equal(t, uint64(24), mesh.ArrayStride)
	assert.Equal(t, wgpu.VertexStepModeVertex, mesh.StepMode)

	inst := InstanceLayout()
	assert.Equal(t, uint64(20), inst.ArrayStride)
	assert.Equal(t, wgpu.VertexStepModeInstance, inst.StepMode)

	locations := map[uint32]bool{}
	for _, a := range append(mesh.Attributes, inst.Attributes...) {
		assert.False(t, locations[a.ShaderLocation], "location %d reused", a.ShaderLocation)
		locations[a.ShaderLocation] = true
	}
	assert.Len(t, locations, 4)
}

func TestSceneLayout(t *testing.T) {
	entries := SceneLayout()
	require.Len(t, entries, 5)
	assert.Equal(t, wgpu.TextureSampleTypeDepth, entries[1].Texture.SampleType)
	assert.Equal(t, wgpu.SamplerBindingTypeComparison, entries[2].Sampler.Type)
	assert.Equal(t, wgpu.TextureViewDimensionCube, entries[3].Texture.ViewDimension)
	for i, e := range entries {
		assert.Equal(t, uint32(i), e.Binding)
	}
}

func TestIsSRGB(t *testing.T) {
	assert.True(t, IsSRGB(wgpu.TextureFormatBGRA8UnormSrgb))
	assert.False(t, IsSRGB(wgpu.TextureFormatBGRA8Unorm))
}

func TestSceneLayoutMatchesPrograms(t *testing.T) {
	layout := SceneLayout()
	for name, src := range map[string]string{"floor": shaders.FloorWGSL, "particles": shaders.ParticlesWGSL} {
		var scene []shaders.Binding
		for _, b := range shaders.Bindings(src) {
			if b.Group == 0 {
				scene = append(scene, b)
			}
		}
		require.Len(t, scene, len(layout), name)
		for i, b := range scene {
			assert.Equal(t, layout[i].Binding, b.Index, "%s %s", name, b.Name)
			assert.Equal(t, layoutKind(layout[i]), b.Kind, "%s %s", name, b.Name)
		}
	}
}
