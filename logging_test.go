package curlfield

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLogger_Levels(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewLogger(&out, &errOut, "field", false)

	l.Debugf("hidden")
	l.Infof("info %s", "line")
	l.Warnf("careful")
	l.Errorf("broken")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "[field] INFO: info line")
	assert.Contains(t, errOut.String(), "[field] WARN: careful")
	assert.Contains(t, errOut.String(), "[field] ERROR: broken")

	l.SetDebug(true)
	assert.True(t, l.DebugEnabled())
	l.Debugf("shown")
	assert.Contains(t, out.String(), "DEBUG: shown")
}

func TestLogOnce(t *testing.T) {
	var out bytes.Buffer
	l := NewLogger(&out, &out, "", false)
	once := &LogOnce{}

	assert.True(t, once.Warnf(l, "k", "first"))
	assert.False(t, once.Warnf(l, "k", "second"))
	assert.True(t, once.Warnf(l, "other", "third"))
	once.Clear("k")
	assert.True(t, once.Warnf(l, "k", "fourth"))

	assert.Equal(t, 3, strings.Count(out.String(), "WARN"))
	assert.NotContains(t, out.String(), "second")
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.SetDebug(true)
	assert.False(t, l.DebugEnabled())
	l.Errorf("dropped")
}
