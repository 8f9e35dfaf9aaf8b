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

	assert.Equal(t, ":8000", cfg.Addr)
	assert.Equal(t, "imgs", cfg.ImageDir)
	assert.Equal(t, "kanatcha.db", cfg.DBPath)
	assert.Equal(t, time.Minute, cfg.Timeout)
	assert.Equal(t, 3, cfg.GraceSeconds)
	assert.Equal(t, 3, cfg.MaxLevel)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 60.0, cfg.Render.FontSize)
	assert.Equal(t, 250, cfg.Render.ImageWidth)
	assert.Equal(t, 80, cfg.Render.ImageHeight)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("KANATCHA_ADDR", ":9001")
	t.Setenv("KANATCHA_TIMEOUT", "90s")
	t.Setenv("KANATCHA_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9001", cfg.Addr)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("KANATCHA_TIMEOUT", "0s")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("KANATCHA_TIMEOUT", "60s")
	t.Setenv("KANATCHA_TILT_MIN", "20")
	t.Setenv("KANATCHA_TILT_MAX", "10")
	_, err = Load()
	assert.Error(t, err)
}

func TestRecordTTL(t *testing.T) {
	cfg := Config{Timeout: 60 * time.Second, GraceSeconds: 3}
	assert.Equal(t, 63*time.Second, cfg.RecordTTL())
}
