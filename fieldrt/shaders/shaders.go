// Package shaders embeds the WGSL programs of the particle field. Programs
// that share declarations are assembled from their parts at init.
package shaders

import (
	_ "embed"
	"strconv"
	"strings"
)

//go:embed noise.wgsl
var noiseWGSL string

//go:embed velocity.wgsl
var velocityWGSL string

//go:embed position.wgsl
var PositionWGSL string

//go:embed scene_common.wgsl
var sceneCommonWGSL string

//go:embed particles.wgsl
var particlesWGSL string

//go:embed floor.wgsl
var floorWGSL string

//go:embed fullscreen.wgsl
var fullscreenWGSL string

//go:embed dof.wgsl
var dofWGSL string

//go:embed composite.wgsl
var compositeWGSL string

//go:embed text.wgsl
var TextWGSL string

var (
	VelocityWGSL     = join(noiseWGSL, velocityWGSL)
	ParticlesWGSL    = join(sceneCommonWGSL, particlesWGSL)
	FloorWGSL        = join(sceneCommonWGSL, floorWGSL)
	DepthOfFieldWGSL = join(fullscreenWGSL, dofWGSL)
	CompositeWGSL    = join(fullscreenWGSL, compositeWGSL)
)

func join(parts ...string) string {
	return strings.Join(parts, "\n")
}

// TransformVersion reads the TRANSFORM_VERSION constant declared in the
// particle program, or -1 when it is missing.
func TransformVersion() int {
	const marker = "const TRANSFORM_VERSION: u32 = "
	i := strings.Index(particlesWGSL, marker)
	if i < 0 {
		return -1
	}
	rest := particlesWGSL[i+len(marker):]
	end := strings.IndexByte(rest, 'u')
	if end < 0 {
		return -1
	}
	v, err := strconv.Atoi(rest[:end])
	if err != nil {
		return -1
	}
	return v
}
