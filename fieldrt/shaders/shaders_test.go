package shaders

import (
	"strings"
	"testing"

	"github.com/gekko3d/curlfield/fieldrt/core"
	"github.com/gogpu/naga"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformVersionMatchesCore(t *testing.T) {
	assert.Equal(t, core.TransformVersion, TransformVersion())
}

func TestParticleProgramSharesOneTransform(t *testing.T) {
	assert.Equal(t, 1, strings.Count(ParticlesWGSL, "fn particle_transform("))
	assert.Contains(t, ParticlesWGSL, "fn vs_main(")
	assert.Contains(t, ParticlesWGSL, "fn vs_shadow(")
	assert.Equal(t, 3, strings.Count(ParticlesWGSL, "particle_transform("))
}

func TestProgramsCompile(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"velocity", VelocityWGSL},
		{"position", PositionWGSL},
		{"particles", ParticlesWGSL},
		{"floor", FloorWGSL},
		{"dof", DepthOfFieldWGSL},
		{"composite", CompositeWGSL},
		{"text", TextWGSL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotEmpty(t, tt.src)
			spirv, err := naga.Compile(tt.src)
			require.NoError(t, err)
			assert.NotEmpty(t, spirv)
		})
	}
}

func TestBrokenProgramFailsToCompile(t *testing.T) {
	broken := strings.Replace(PositionWGSL, "fn main(", "fn main(oops", 1)
	_, err := naga.Compile(broken)
	assert.Error(t, err)
}

func TestBindings(t *testing.T) {
	got := Bindings(PositionWGSL)
	require.Len(t, got, 5)
	assert.Equal(t, Binding{Group: 0, Index: 0, Name: "sim", Kind: BindingUniform}, got[0])
	assert.Equal(t, "velocity_fresh", got[2].Name)
	assert.Equal(t, BindingTexture, got[3].Kind)
	assert.Equal(t, Binding{Group: 0, Index: 4, Name: "position_out", Kind: BindingStorageTexture}, got[4])

	kinds := map[string]BindingKind{}
	for _, b := range Bindings(FloorWGSL) {
		kinds[b.Name] = b.Kind
	}
	assert.Equal(t, BindingSampler, kinds["shadow_sampler"])
	assert.Equal(t, BindingTexture, kinds["shadow_map"])
	assert.Equal(t, BindingTexture, kinds["env_map"])
}

func TestSimulationWorkgroupSize(t *testing.T) {
	assert.Contains(t, VelocityWGSL, "@workgroup_size(8, 8)")
	assert.Contains(t, PositionWGSL, "@workgroup_size(8, 8)")
}
