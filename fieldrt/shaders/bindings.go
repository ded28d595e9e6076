package shaders

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
)

type BindingKind int

const (
	BindingUniform BindingKind = iota
	BindingTexture
	BindingStorageTexture
	BindingSampler
)

func (k BindingKind) String() string {
	switch k {
	case BindingUniform:
		return "uniform"
	case BindingTexture:
		return "texture"
	case BindingStorageTexture:
		return "storage texture"
	case BindingSampler:
		return "sampler"
	}
	return "binding(" + strconv.Itoa(int(k)) + ")"
}

// Binding is one resource variable declared at module scope.
type Binding struct {
	Group uint32
	Index uint32
	Name  string
	Kind  BindingKind
}

var bindingPattern = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(<[^>]*>)?\s+(\w+)\s*:\s*(\w+)`)

// Bindings lists the resource variables of a program sorted by group and
// index.
func Bindings(src string) []Binding {
	var out []Binding
	for _, m := range bindingPattern.FindAllStringSubmatch(src, -1) {
		group, _ := strconv.ParseUint(m[1], 10, 32)
		index, _ := strconv.ParseUint(m[2], 10, 32)
		b := Binding{Group: uint32(group), Index: uint32(index), Name: m[4]}
		switch typ := m[5]; {
		case m[3] == "<uniform>":
			b.Kind = BindingUniform
		case strings.HasPrefix(typ, "texture_storage"):
			b.Kind = BindingStorageTexture
		case strings.HasPrefix(typ, "sampler"):
			b.Kind = BindingSampler
		default:
			b.Kind = BindingTexture
		}
		out = append(out, b)
	}
	slices.SortFunc(out, func(a, b Binding) int {
		if a.Group != b.Group {
			return int(a.Group) - int(b.Group)
		}
		return int(a.Index) - int(b.Index)
	})
	return out
}
