package curlfield

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInput_Press(t *testing.T) {
	var input Input

	input.Press(KeySpace, true)
	assert.True(t, input.Pressed[KeySpace])
	assert.True(t, input.JustPressed[KeySpace])

	input.Press(KeySpace, true)
	assert.True(t, input.Pressed[KeySpace])
	assert.False(t, input.JustPressed[KeySpace], "held keys are not pressed again")

	input.Press(KeySpace, false)
	assert.False(t, input.Pressed[KeySpace])
	assert.True(t, input.JustReleased[KeySpace])

	input.Press(KeySpace, false)
	assert.False(t, input.JustReleased[KeySpace])
}

func TestInput_Cursor(t *testing.T) {
	var input Input

	input.MoveCursor(10, 20)
	assert.True(t, input.MouseInside)
	assert.Zero(t, input.MouseDeltaX, "the first sample has no delta")

	input.MoveCursor(15, 10)
	assert.Equal(t, 5.0, input.MouseDeltaX)
	assert.Equal(t, -10.0, input.MouseDeltaY)
}

func TestInput_Scroll(t *testing.T) {
	var input Input

	input.AddScroll(1)
	input.AddScroll(0.5)
	assert.Zero(t, input.Scroll, "scroll is published once per frame")

	input.flushScroll()
	assert.Equal(t, 1.5, input.Scroll)
	input.flushScroll()
	assert.Zero(t, input.Scroll)
}
