package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/curlfield/fieldrt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// ParticleTextures holds the simulation state on the device: two textures per
// variable and the default position snapshot used for respawns. The texture
// at index Current() holds the latest step.
type ParticleTextures struct {
	grid core.Grid

	position     [2]*wgpu.Texture
	positionView [2]*wgpu.TextureView
	velocity     [2]*wgpu.Texture
	velocityView [2]*wgpu.TextureView
	defaults     *wgpu.Texture
	defaultsView *wgpu.TextureView

	current int
}

func NewParticleTextures(ctx *Context, grid core.Grid) (*ParticleTextures, error) {
	t := &ParticleTextures{grid: grid}
	for i := 0; i < 2; i++ {
		var err error
		t.position[i], t.positionView[i], err = createStateTexture(ctx, fmt.Sprintf("Position %d", i), grid)
		if err != nil {
			t.Release()
			return nil, err
		}
		t.velocity[i], t.velocityView[i], err = createStateTexture(ctx, fmt.Sprintf("Velocity %d", i), grid)
		if err != nil {
			t.Release()
			return nil, err
		}
	}
	var err error
	t.defaults, t.defaultsView, err = createStateTexture(ctx, "Default Position", grid)
	if err != nil {
		t.Release()
		return nil, err
	}
	return t, nil
}

func createStateTexture(ctx *Context, label string, grid core.Grid) (*wgpu.Texture, *wgpu.TextureView, error) {
	tex, err := ctx.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Size:          wgpu.Extent3D{Width: uint32(grid.Width), Height: uint32(grid.Height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        StateFormat,
		Usage: wgpu.TextureUsageTextureBinding | wgpu.TextureUsageStorageBinding |
			wgpu.TextureUsageCopyDst | wgpu.TextureUsageCopySrc,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating %s texture: %w", label, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, nil, fmt.Errorf("creating %s view: %w", label, err)
	}
	return tex, view, nil
}

func (t *ParticleTextures) write(queue *wgpu.Queue, tex *wgpu.Texture, data []mgl32.Vec4) error {
	if len(data) != t.grid.Len() {
		return fmt.Errorf("state has %d texels, grid needs %d", len(data), t.grid.Len())
	}
	w, h := uint32(t.grid.Width), uint32(t.grid.Height)
	return queue.WriteTexture(
		tex.AsImageCopy(),
		wgpu.ToBytes(data),
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  w * 16,
			RowsPerImage: h,
		},
		&wgpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
}

// Upload writes the whole CPU state, including the default snapshot.
func (t *ParticleTextures) Upload(queue *wgpu.Queue, st *core.State) error {
	if err := t.write(queue, t.defaults, st.Default); err != nil {
		return fmt.Errorf("uploading defaults: %w", err)
	}
	return t.UploadCurrent(queue, st)
}

// UploadCurrent writes position and velocity into the current textures.
func (t *ParticleTextures) UploadCurrent(queue *wgpu.Queue, st *core.State) error {
	if err := t.write(queue, t.position[t.current], st.Position); err != nil {
		return fmt.Errorf("uploading positions: %w", err)
	}
	if err := t.write(queue, t.velocity[t.current], st.Velocity); err != nil {
		return fmt.Errorf("uploading velocities: %w", err)
	}
	return nil
}

// Reset restores the current positions from the default snapshot and zeroes
// the current velocities.
func (t *ParticleTextures) Reset(queue *wgpu.Queue, defaults []mgl32.Vec4) error {
	if err := t.write(queue, t.position[t.current], defaults); err != nil {
		return fmt.Errorf("resetting positions: %w", err)
	}
	if err := t.write(queue, t.velocity[t.current], make([]mgl32.Vec4, t.grid.Len())); err != nil {
		return fmt.Errorf("resetting velocities: %w", err)
	}
	return nil
}

func (t *ParticleTextures) Grid() core.Grid { return t.grid }

func (t *ParticleTextures) Current() int { return t.current }

// Swap makes the textures written by the last step current.
func (t *ParticleTextures) Swap() { t.current = 1 - t.current }

// View returns the view of res at ping-pong index i.
func (t *ParticleTextures) View(res core.Resource, i int) *wgpu.TextureView {
	switch res {
	case core.ResourcePosition:
		return t.positionView[i]
	case core.ResourceVelocity:
		return t.velocityView[i]
	}
	return nil
}

func (t *ParticleTextures) DefaultsView() *wgpu.TextureView { return t.defaultsView }

func (t *ParticleTextures) CurrentPosition() *wgpu.Texture { return t.position[t.current] }

func (t *ParticleTextures) Release() {
	for i := 0; i < 2; i++ {
		if t.positionView[i] != nil {
			t.positionView[i].Release()
		}
		if t.position[i] != nil {
			t.position[i].Release()
		}
		if t.velocityView[i] != nil {
			t.velocityView[i].Release()
		}
		if t.velocity[i] != nil {
			t.velocity[i].Release()
		}
	}
	if t.defaultsView != nil {
		t.defaultsView.Release()
	}
	if t.defaults != nil {
		t.defaults.Release()
	}
}
