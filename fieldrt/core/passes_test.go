package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passNames(passes []PassDecl) []string {
	names := make([]string, len(passes))
	for i, p := range passes {
		names[i] = p.Name
	}
	return names
}

func TestOrderPasses_VelocityBeforePosition(t *testing.T) {
	ordered, err := OrderPasses(SimulationPasses())
	require.NoError(t, err)
	assert.Equal(t, []string{"velocity", "position"}, passNames(ordered))

	decls := SimulationPasses()
	reversed := []PassDecl{decls[1], decls[0]}
	ordered, err = OrderPasses(reversed)
	require.NoError(t, err)
	assert.Equal(t, []string{"velocity", "position"}, passNames(ordered))
}

func TestOrderPasses_PreviousReadsKeepDeclarationOrder(t *testing.T) {
	decls := []PassDecl{
		{Name: "a", Writes: "x", Reads: []PassRead{{Resource: "y"}}},
		{Name: "b", Writes: "y", Reads: []PassRead{{Resource: "x"}}},
	}
	ordered, err := OrderPasses(decls)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, passNames(ordered))
}

func TestOrderPasses_Errors(t *testing.T) {
	t.Run("cycle", func(t *testing.T) {
		_, err := OrderPasses([]PassDecl{
			{Name: "a", Writes: "x", Reads: []PassRead{{Resource: "y", Fresh: true}}},
			{Name: "b", Writes: "y", Reads: []PassRead{{Resource: "x", Fresh: true}}},
		})
		assert.ErrorIs(t, err, ErrPassCycle)
	})
	t.Run("self fresh read", func(t *testing.T) {
		_, err := OrderPasses([]PassDecl{
			{Name: "a", Writes: "x", Reads: []PassRead{{Resource: "x", Fresh: true}}},
		})
		assert.ErrorIs(t, err, ErrPassCycle)
	})
	t.Run("missing writer", func(t *testing.T) {
		_, err := OrderPasses([]PassDecl{
			{Name: "a", Writes: "x", Reads: []PassRead{{Resource: "z", Fresh: true}}},
		})
		assert.Error(t, err)
	})
	t.Run("two writers", func(t *testing.T) {
		_, err := OrderPasses([]PassDecl{
			{Name: "a", Writes: "x"},
			{Name: "b", Writes: "x"},
		})
		assert.Error(t, err)
	})
}
