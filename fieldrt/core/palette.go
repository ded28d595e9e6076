package core

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

var DefaultPalette = MustPalette("#EEEEEE", "#00ADB5", "#FF5722")

// Palette holds linear space colors.
type Palette []mgl32.Vec3

func ParsePalette(hexColors ...string) (Palette, error) {
	p := make(Palette, 0, len(hexColors))
	for _, h := range hexColors {
		c, err := ParseHexColor(h)
		if err != nil {
			return nil, err
		}
		p = append(p, c)
	}
	if len(p) == 0 {
		return nil, fmt.Errorf("empty palette")
	}
	return p, nil
}

func MustPalette(hexColors ...string) Palette {
	p, err := ParsePalette(hexColors...)
	if err != nil {
		panic(err)
	}
	return p
}

// ParseHexColor parses #RRGGBB and converts it from sRGB to linear.
func ParseHexColor(s string) (mgl32.Vec3, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) != 6 {
		return mgl32.Vec3{}, fmt.Errorf("color %q: want #RRGGBB", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return mgl32.Vec3{}, fmt.Errorf("color %q: %w", s, err)
	}
	return mgl32.Vec3{
		SRGBToLinear(float32((v>>16)&0xff) / 255),
		SRGBToLinear(float32((v>>8)&0xff) / 255),
		SRGBToLinear(float32(v&0xff) / 255),
	}, nil
}

func SRGBToLinear(c float32) float32 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return float32(math.Pow((float64(c)+0.055)/1.055, 2.4))
}

// PickIndex squares the uniform sample so earlier entries are more common.
func (p Palette) PickIndex(u float64) int {
	i := int(math.Floor(u * u * float64(len(p))))
	return min(max(i, 0), len(p)-1)
}

func (p Palette) Pick(rng *rand.Rand) mgl32.Vec3 {
	return p[p.PickIndex(rng.Float64())]
}
