package logx

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLoggerIsSilent(t *testing.T) {
	l := Logger()
	assert.NotNil(t, l)
	assert.False(t, l.Enabled(context.Background(), slog.LevelError))
}

func TestSetLogger(t *testing.T) {
	orig := Logger()
	defer SetLogger(orig)

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	Logger().Warn("unresolved reference", "ref", "#missing")
	assert.Contains(t, buf.String(), "ref=#missing")

	SetLogger(nil)
	assert.False(t, Logger().Enabled(context.Background(), slog.LevelError))
}
