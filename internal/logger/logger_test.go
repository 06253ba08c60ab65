package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"":        zap.InfoLevel,
		"DEBUG":   zap.DebugLevel,
		" warn ":  zap.WarnLevel,
		"warning": zap.WarnLevel,
		"error":   zap.ErrorLevel,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	log, err := New(Config{Level: "debug", Service: "commonfields"})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zap.DebugLevel))

	log, err = New(Config{Level: "error"})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zap.WarnLevel))

	_, err = New(Config{Level: "nope"})
	assert.Error(t, err)
}

func TestModuleReplacesGlobals(t *testing.T) {
	var got *zap.Logger
	app := fxtest.New(t,
		fx.Supply(Config{Level: "debug"}),
		Module,
		fx.Populate(&got),
	)
	app.RequireStart()
	assert.Same(t, got, zap.L())
	require.NoError(t, app.Stop(context.Background()))
	assert.NotSame(t, got, zap.L())
}
