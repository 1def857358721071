package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 9, cfg.WorkdayStartHour)
	assert.Equal(t, 17, cfg.WorkdayEndHour)
	assert.Equal(t, 5, cfg.BufferMinutes)
	assert.Equal(t, 7, cfg.MaxDaysAhead)
	assert.Equal(t, 10*time.Second, cfg.AssistantTimeout)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("TEMPORA_WORKDAY_START", "8")
	t.Setenv("TEMPORA_BUFFER_MINUTES", "10")
	t.Setenv("TEMPORA_ASSISTANT_TIMEOUT", "2s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 8, cfg.WorkdayStartHour)
	assert.Equal(t, 10, cfg.BufferMinutes)
	assert.Equal(t, 2*time.Second, cfg.AssistantTimeout)
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("TEMPORA_WORKDAY_END", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 17, cfg.WorkdayEndHour)
}
