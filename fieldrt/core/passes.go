package core

import (
	"errors"
	"fmt"
	"slices"
)

var ErrPassCycle = errors.New("simulation pass dependency cycle")

type Resource string

const (
	ResourcePosition Resource = "position"
	ResourceVelocity Resource = "velocity"
)

// PassRead is one input of a pass. Fresh reads see the value written by
// another pass during the same step, the others see the previous step.
type PassRead struct {
	Resource Resource
	Fresh    bool
}

type PassDecl struct {
	Name   string
	Writes Resource
	Reads  []PassRead
}

// SimulationPasses declares the two coupled update passes of the field.
func SimulationPasses() []PassDecl {
	return []PassDecl{
		{
			Name:   "position",
			Writes: ResourcePosition,
			Reads: []PassRead{
				{Resource: ResourcePosition},
				{Resource: ResourceVelocity, Fresh: true},
			},
		},
		{
			Name:   "velocity",
			Writes: ResourceVelocity,
			Reads: []PassRead{
				{Resource: ResourcePosition},
				{Resource: ResourceVelocity},
			},
		},
	}
}

// OrderPasses returns the passes sorted so every fresh read runs after its
// writer. Ties keep declaration order.
func OrderPasses(decls []PassDecl) ([]PassDecl, error) {
	writer := make(map[Resource]int, len(decls))
	for i, d := range decls {
		if prev, ok := writer[d.Writes]; ok {
			return nil, fmt.Errorf("passes %q and %q both write %s", decls[prev].Name, d.Name, d.Writes)
		}
		writer[d.Writes] = i
	}

	indegree := make([]int, len(decls))
	dependents := make([][]int, len(decls))
	for i, d := range decls {
		for _, r := range d.Reads {
			if !r.Fresh {
				continue
			}
			w, ok := writer[r.Resource]
			if !ok {
				return nil, fmt.Errorf("pass %q reads fresh %s, which no pass writes", d.Name, r.Resource)
			}
			dependents[w] = append(dependents[w], i)
			indegree[i]++
		}
	}

	ready := make([]int, 0, len(decls))
	for i := range decls {
		if indegree[i] == 0 {
			ready = append(ready, i)
		}
	}

	ordered := make([]PassDecl, 0, len(decls))
	for len(ready) > 0 {
		slices.Sort(ready)
		i := ready[0]
		ready = ready[1:]
		ordered = append(ordered, decls[i])
		for _, j := range dependents[i] {
			indegree[j]--
			if indegree[j] == 0 {
				ready = append(ready, j)
			}
		}
	}

	if len(ordered) != len(decls) {
		return nil, ErrPassCycle
	}
	return ordered, nil
}
