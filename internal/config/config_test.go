package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/bowling/internal/frame"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "5175", cfg.Port)
	assert.Equal(t, "sqlite", cfg.Store)
	assert.Equal(t, frame.SpareStandard, cfg.Rule())
	assert.Equal(t, zerolog.InfoLevel, cfg.Level())
	assert.Equal(t, 14*24*time.Hour, cfg.TokenTTL())
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("STORE", "memory")
	t.Setenv("SPARE_RULE", "nonzero-second")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("MAX_BOWLERS", "4")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "memory", cfg.Store)
	assert.Equal(t, frame.SpareNonZeroSecond, cfg.Rule())
	assert.Equal(t, zerolog.DebugLevel, cfg.Level())
	assert.Equal(t, 4, cfg.MaxBowlers)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{name: "bad int", env: map[string]string{"MAX_BOWLERS": "many"}, want: "parse env:"},
		{name: "bad rule", env: map[string]string{"SPARE_RULE": "candlepin"}, want: "SPARE_RULE"},
		{name: "bad store", env: map[string]string{"STORE": "redis"}, want: "STORE"},
		{name: "dev secret in production", env: map[string]string{"PRODUCTION": "true"}, want: "JWT_SECRET"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
