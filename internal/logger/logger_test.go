package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerboseTogglesDebugOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer func() {
		SetVerbose(false)
	}()

	SetVerbose(false)
	Debug().Msg("hidden")
	assert.Empty(t, buf.String())

	SetVerbose(true)
	Debug().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestWarnAlwaysVisible(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Warn().Str("path", "Evidence/NETP3-01").Msg("partial listing")
	assert.Contains(t, buf.String(), "partial listing")
}
