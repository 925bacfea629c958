package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 16, cfg.QueueSize)
	assert.Equal(t, "python:3.12-alpine", cfg.Image)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 10*time.Second, cfg.MaxTimeout)
	assert.Equal(t, int64(128*1024*1024), cfg.MemoryLimit)
	assert.Equal(t, 64*1024, cfg.OutputLimit)
	assert.Equal(t, 64*1024, cfg.MaxStdinSize)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("WORKER_COUNT", "8")
	t.Setenv("EXEC_TIMEOUT_MS", "2000")
	t.Setenv("MAX_TIMEOUT_MS", "2000")
	t.Setenv("SANDBOX_IMAGE", "python:3.13-alpine")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, 2*time.Second, cfg.MaxTimeout)
	assert.Equal(t, "python:3.13-alpine", cfg.Image)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("WORKER_COUNT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Workers)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "port out of range", key: "PORT", value: "70000"},
		{name: "zero workers", key: "WORKER_COUNT", value: "0"},
		{name: "negative queue", key: "QUEUE_SIZE", value: "-1"},
		{name: "zero pool", key: "POOL_SIZE", value: "0"},
		{name: "max timeout below default timeout", key: "MAX_TIMEOUT_MS", value: "1000"},
		{name: "memory too small", key: "MEMORY_LIMIT_BYTES", value: "1024"},
		{name: "output cap too small", key: "OUTPUT_LIMIT_BYTES", value: "16"},
		{name: "negative stdin cap", key: "MAX_STDIN_SIZE_BYTES", value: "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
