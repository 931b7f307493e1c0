package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	for _, env := range []string{"prod", "dev", ""} {
		l, err := NewLogger(env, "", "")
		require.NoError(t, err, env)
		assert.NotNil(t, l)
	}
}

func TestNewLogger_UnknownEnv(t *testing.T) {
	_, err := NewLogger("staging", "", "")
	assert.Error(t, err)
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, err := NewLogger("dev", "loud", "")
	assert.Error(t, err)
}

func TestNewLogger_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lazyfilter.log")
	l, err := NewLogger("prod", "info", path)
	require.NoError(t, err)

	l.Info("hello")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}

func TestFromContext(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))

	l, err := NewLogger("dev", "debug", "")
	require.NoError(t, err)
	ctx := ContextWithLogger(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))
}
