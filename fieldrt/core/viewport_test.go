package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViewport_UpdateNotifiesOnChangeOnly(t *testing.T) {
	v := NewViewport(800, 600, 1)
	assert.InDelta(t, 800.0/600.0, v.Aspect, 1e-6)
	assert.Equal(t, float32(1), v.PixelRatio)

	var events []ViewportEvent
	cancel := v.Subscribe(func(e ViewportEvent) { events = append(events, e) })

	assert.False(t, v.Update(800, 600, 1))
	assert.Empty(t, events)

	assert.True(t, v.Update(1024, 768, 3))
	if assert.Len(t, events, 1) {
		assert.Equal(t, ViewportEvent{Width: 1024, Height: 768, Aspect: 1024.0 / 768.0, PixelRatio: 2}, events[0])
	}

	cancel()
	v.Update(640, 480, 1)
	assert.Len(t, events, 1)
}

func TestViewport_PixelRatio(t *testing.T) {
	tests := []struct {
		dpr  float32
		want float32
	}{
		{1, 1},
		{1.5, 1.5},
		{2, 2},
		{3, 2},
		{0, 1},
		{-1, 1},
	}
	for _, tt := range tests {
		v := NewViewport(100, 100, tt.dpr)
		assert.Equal(t, tt.want, v.PixelRatio, "dpr %v", tt.dpr)
	}
}

func TestViewport_ZeroHeightKeepsAspect(t *testing.T) {
	v := NewViewport(1600, 900, 1)
	aspect := v.Aspect

	assert.True(t, v.Update(1600, 0, 1))
	assert.Equal(t, aspect, v.Aspect)
	assert.True(t, v.Minimized())

	w, h := v.ScaledSize()
	assert.Equal(t, 1600, w)
	assert.Equal(t, 1, h)
}

func TestViewport_ScaledSize(t *testing.T) {
	v := NewViewport(1280, 720, 1.5)
	w, h := v.ScaledSize()
	assert.Equal(t, 1920, w)
	assert.Equal(t, 1080, h)
}
