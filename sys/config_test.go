package sys

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envFrom(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestConfigFromEnv_Defaults(t *testing.T) {
	cfg, err := configFromEnv(envFrom(map[string]string{
		EnvDiscordToken: " token ",
	}))
	require.NoError(t, err)

	assert.Equal(t, "token", cfg.Token)
	assert.Equal(t, DefaultStreamingURL, cfg.StreamingURL)
	assert.Equal(t, DefaultStatusText, cfg.StatusText)
	assert.Equal(t, DefaultEntryEmoji, cfg.DefaultEmoji)
	assert.Equal(t, DefaultStatusPeriod, cfg.StatusInterval)
	assert.False(t, cfg.ManagersOnly)
	assert.NotEmpty(t, cfg.DatabasePath)
}

func TestConfigFromEnv_Overrides(t *testing.T) {
	cfg, err := configFromEnv(envFrom(map[string]string{
		EnvDiscordToken:   "token",
		EnvGuildID:        "123456789012345678",
		EnvDatabasePath:   "/tmp/giv.db",
		EnvStatusText:     "Win stuff",
		EnvStatusInterval: "5m",
		EnvDefaultEmoji:   "🎁",
		EnvManagersOnly:   "true",
	}))
	require.NoError(t, err)

	assert.Equal(t, "123456789012345678", cfg.GuildID)
	assert.Equal(t, "/tmp/giv.db", cfg.DatabasePath)
	assert.Equal(t, "Win stuff", cfg.StatusText)
	assert.Equal(t, 5*time.Minute, cfg.StatusInterval)
	assert.Equal(t, "🎁", cfg.DefaultEmoji)
	assert.True(t, cfg.ManagersOnly)
}

func TestConfigFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing token", env: map[string]string{}},
		{name: "short guild id", env: map[string]string{EnvDiscordToken: "t", EnvGuildID: "1234"}},
		{name: "bad interval", env: map[string]string{EnvDiscordToken: "t", EnvStatusInterval: "often"}},
		{name: "interval too short", env: map[string]string{EnvDiscordToken: "t", EnvStatusInterval: "1s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := configFromEnv(envFrom(tt.env))
			assert.Error(t, err)
		})
	}
}
