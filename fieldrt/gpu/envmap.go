package gpu

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/cogentcore/webgpu/wgpu"
	"golang.org/x/image/draw"
)

// CubeFaces lists the face file stems in cube layer order.
var CubeFaces = [6]string{"px", "nx", "py", "ny", "pz", "nz"}

var faceExtensions = []string{".jpg", ".png"}

// NeutralFaces is the 1x1 cube used when no environment map is available.
func NeutralFaces() [6]*image.RGBA {
	var faces [6]*image.RGBA
	for i := range faces {
		img := image.NewRGBA(image.Rect(0, 0, 1, 1))
		img.SetRGBA(0, 0, color.RGBA{R: 128, G: 128, B: 128, A: 255})
		faces[i] = img
	}
	return faces
}

func decodeFace(dir, stem string) (image.Image, error) {
	for _, ext := range faceExtensions {
		file, err := os.Open(filepath.Join(dir, stem+ext))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		img, _, err := image.Decode(file)
		file.Close()
		if err != nil {
			return nil, fmt.Errorf("decoding %s%s: %w", stem, ext, err)
		}
		return img, nil
	}
	return nil, fmt.Errorf("cube face %s: %w", stem, os.ErrNotExist)
}

// LoadCubeFaces reads the six faces from dir and resamples them to the size
// of the smallest face so every layer of the cube matches.
func LoadCubeFaces(dir string) ([6]*image.RGBA, error) {
	var decoded [6]image.Image
	size := 0
	for i, stem := range CubeFaces {
		img, err := decodeFace(dir, stem)
		if err != nil {
			return [6]*image.RGBA{}, err
		}
		decoded[i] = img
		b := img.Bounds()
		side := min(b.Dx(), b.Dy())
		if size == 0 || side < size {
			size = side
		}
	}
	if size == 0 {
		return [6]*image.RGBA{}, errors.New("cube faces are empty")
	}

	var faces [6]*image.RGBA
	for i, img := range decoded {
		dst := image.NewRGBA(image.Rect(0, 0, size, size))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
		faces[i] = dst
	}
	return faces, nil
}

// EnvMap is an sRGB cube texture sampled for reflections.
type EnvMap struct {
	texture *wgpu.Texture
	View    *wgpu.TextureView
}

func NewEnvMap(ctx *Context, faces [6]*image.RGBA) (*EnvMap, error) {
	size := uint32(faces[0].Bounds().Dx())
	extent := wgpu.Extent3D{Width: size, Height: size, DepthOrArrayLayers: 6}
	tex, err := ctx.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Environment Cube",
		Size:          extent,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("creating environment cube: %w", err)
	}
	for layer, face := range faces {
		if uint32(face.Bounds().Dx()) != size || uint32(face.Bounds().Dy()) != size {
			tex.Release()
			return nil, fmt.Errorf("cube face %s is not %dx%d", CubeFaces[layer], size, size)
		}
		err := ctx.Queue.WriteTexture(
			&wgpu.ImageCopyTexture{
				Texture:  tex,
				MipLevel: 0,
				Origin:   wgpu.Origin3D{Z: uint32(layer)},
				Aspect:   wgpu.TextureAspectAll,
			},
			face.Pix,
			&wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  uint32(face.Stride),
				RowsPerImage: size,
			},
			&wgpu.Extent3D{Width: size, Height: size, DepthOrArrayLayers: 1},
		)
		if err != nil {
			tex.Release()
			return nil, fmt.Errorf("uploading cube face %s: %w", CubeFaces[layer], err)
		}
	}
	view, err := tex.CreateView(&wgpu.TextureViewDescriptor{
		Label:           "Environment Cube View",
		Format:          wgpu.TextureFormatRGBA8UnormSrgb,
		Dimension:       wgpu.TextureViewDimensionCube,
		BaseMipLevel:    0,
		MipLevelCount:   1,
		BaseArrayLayer:  0,
		ArrayLayerCount: 6,
		Aspect:          wgpu.TextureAspectAll,
	})
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("creating cube view: %w", err)
	}
	return &EnvMap{texture: tex, View: view}, nil
}

func (e *EnvMap) Release() {
	if e.View != nil {
		e.View.Release()
	}
	if e.texture != nil {
		e.texture.Release()
	}
}
