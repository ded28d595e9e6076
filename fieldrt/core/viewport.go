package core

import "math"

const maxPixelRatio = 2

// ViewportEvent is delivered to subscribers after a change.
type ViewportEvent struct {
	Width      int
	Height     int
	Aspect     float32
	PixelRatio float32
}

// Viewport tracks the drawable size. Width and height are in window units;
// render targets are sized by ScaledSize.
type Viewport struct {
	Width      int
	Height     int
	Aspect     float32
	PixelRatio float32

	subscribers map[int]func(ViewportEvent)
	nextID      int
}

func NewViewport(width, height int, devicePixelRatio float32) *Viewport {
	v := &Viewport{Aspect: 1, PixelRatio: 1, subscribers: map[int]func(ViewportEvent){}}
	v.Update(width, height, devicePixelRatio)
	return v
}

// Update recomputes all derived values together and notifies subscribers
// when anything changed. A zero height keeps the previous aspect.
func (v *Viewport) Update(width, height int, devicePixelRatio float32) bool {
	width = max(width, 0)
	height = max(height, 0)

	ratio := devicePixelRatio
	if !(ratio > 0) {
		ratio = 1
	}
	ratio = min(ratio, maxPixelRatio)

	aspect := v.Aspect
	if width > 0 && height > 0 {
		aspect = float32(width) / float32(height)
	}

	if width == v.Width && height == v.Height && ratio == v.PixelRatio && aspect == v.Aspect {
		return false
	}
	v.Width, v.Height, v.Aspect, v.PixelRatio = width, height, aspect, ratio

	ev := v.Event()
	for id := 0; id < v.nextID; id++ {
		if fn, ok := v.subscribers[id]; ok {
			fn(ev)
		}
	}
	return true
}

func (v *Viewport) Event() ViewportEvent {
	return ViewportEvent{Width: v.Width, Height: v.Height, Aspect: v.Aspect, PixelRatio: v.PixelRatio}
}

// Subscribe registers fn for change events and returns its cancel function.
func (v *Viewport) Subscribe(fn func(ViewportEvent)) func() {
	if v.subscribers == nil {
		v.subscribers = map[int]func(ViewportEvent){}
	}
	id := v.nextID
	v.nextID++
	v.subscribers[id] = fn
	return func() { delete(v.subscribers, id) }
}

// ScaledSize is the pixel size of offscreen render targets, never below 1x1.
func (v *Viewport) ScaledSize() (int, int) {
	w := int(math.Round(float64(v.Width) * float64(v.PixelRatio)))
	h := int(math.Round(float64(v.Height) * float64(v.PixelRatio)))
	return max(w, 1), max(h, 1)
}

func (v *Viewport) Minimized() bool {
	return v.Width == 0 || v.Height == 0
}
