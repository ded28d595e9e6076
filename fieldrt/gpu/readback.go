package gpu

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/curlfield/fieldrt/core"
)

type readbackState int

const (
	readbackIdle readbackState = iota
	readbackCopy
	readbackMapping
	readbackMapped
)

// Watchdog samples one row of the position texture at a time through a
// mapped buffer and reports whether it was finite. Copies and maps are
// spread over frames and never stall the queue.
type Watchdog struct {
	ctx         *Context
	buffer      *wgpu.Buffer
	grid        core.Grid
	bytesPerRow uint32
	row         uint32

	mu    sync.Mutex
	state readbackState
}

func alignedBytesPerRow(width uint32) uint32 {
	return (width*16 + 255) &^ uint32(255)
}

func NewWatchdog(ctx *Context, grid core.Grid) (*Watchdog, error) {
	bpr := alignedBytesPerRow(uint32(grid.Width))
	buf, err := ctx.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Position Readback",
		Size:  uint64(bpr),
		Usage: wgpu.BufferUsageCopyDst | wgpu.BufferUsageMapRead,
	})
	if err != nil {
		return nil, fmt.Errorf("creating readback buffer: %w", err)
	}
	return &Watchdog{ctx: ctx, buffer: buf, grid: grid, bytesPerRow: bpr}, nil
}

// Encode copies the next row of tex when no readback is in flight.
func (w *Watchdog) Encode(encoder *wgpu.CommandEncoder, tex *wgpu.Texture) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != readbackIdle {
		return false
	}
	encoder.CopyTextureToBuffer(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{X: 0, Y: w.row, Z: 0},
		},
		&wgpu.ImageCopyBuffer{
			Buffer: w.buffer,
			Layout: wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  w.bytesPerRow,
				RowsPerImage: 1,
			},
		},
		&wgpu.Extent3D{Width: uint32(w.grid.Width), Height: 1, DepthOrArrayLayers: 1},
	)
	w.row = (w.row + 1) % uint32(w.grid.Height)
	w.state = readbackCopy
	return true
}

// Poll advances the readback. checked is true once a row has been read, and
// finite reports whether every value in it was finite.
func (w *Watchdog) Poll() (checked, finite bool) {
	w.mu.Lock()
	if w.state == readbackCopy {
		w.state = readbackMapping
		w.buffer.MapAsync(wgpu.MapModeRead, 0, w.buffer.GetSize(), func(status wgpu.BufferMapAsyncStatus) {
			w.mu.Lock()
			defer w.mu.Unlock()
			if status == wgpu.BufferMapAsyncStatusSuccess {
				w.state = readbackMapped
			} else {
				w.state = readbackIdle
			}
		})
	}
	w.mu.Unlock()

	w.ctx.Device.Poll(false, nil)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != readbackMapped {
		return false, false
	}
	data := w.buffer.GetMappedRange(0, uint(w.buffer.GetSize()))
	finite = rowFinite(data, w.grid.Width)
	w.buffer.Unmap()
	w.state = readbackIdle
	return true, finite
}

// rowFinite checks the first width rgba32float texels of data.
func rowFinite(data []byte, width int) bool {
	n := min(width*4, len(data)/4)
	for i := 0; i < n; i++ {
		v := math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return false
		}
	}
	return true
}

func (w *Watchdog) Release() {
	if w.buffer != nil {
		w.buffer.Release()
	}
}
