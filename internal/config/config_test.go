package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ADDR", "")
	t.Setenv("ROUND_DURATION", "")
	t.Setenv("AI_CHAT_COOLDOWN", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 5*time.Minute, cfg.RoundDuration)
	assert.Equal(t, 20*time.Second, cfg.AIChatCooldown)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ADDR", ":9000")
	t.Setenv("ROUND_DURATION", "90s")
	t.Setenv("BRIDGE_SECRET", "sssh")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, 90*time.Second, cfg.RoundDuration)
	assert.Equal(t, "sssh", cfg.BridgeSecret)
}

func TestLoad_BadDuration(t *testing.T) {
	t.Setenv("ROUND_DURATION", "soon")

	_, err := Load()
	assert.Error(t, err)
}
