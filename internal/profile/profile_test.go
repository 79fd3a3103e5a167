package profile

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func clearEnvVars(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CHORDSYNC_AI_BASE_URL",
		"CHORDSYNC_AI_API_KEY",
		"CHORDSYNC_AI_CHAT_MODEL",
		"CHORDSYNC_SPOTIFY_CLIENT_ID",
		"CHORDSYNC_SPOTIFY_CLIENT_SECRET",
		"CHORDSYNC_YOUTUBE_API_KEY",
		"CHORDSYNC_ADMIN_EMAILS",
		"CHORDSYNC_ADMIN_TOKEN_HASH",
	} {
		os.Unsetenv(key)
	}
}

func TestProfileDefaults(t *testing.T) {
	clearEnvVars(t)

	profile := &Profile{}
	profile.FromEnv()

	assert.Equal(t, "https://api.openai.com/v1", profile.AIBaseURL)
	assert.Equal(t, "gpt-4o-mini", profile.AIChatModel)
	assert.False(t, profile.IsAIEnabled())
	assert.Empty(t, profile.AdminEmailList())
}

func TestProfileFromEnv(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("CHORDSYNC_AI_API_KEY", "sk-test")
	t.Setenv("CHORDSYNC_AI_CHAT_MODEL", "gpt-4o")
	t.Setenv("CHORDSYNC_ADMIN_EMAILS", "admin@example.com, second@example.com ,")

	profile := &Profile{}
	profile.FromEnv()

	assert.True(t, profile.IsAIEnabled())
	assert.Equal(t, "gpt-4o", profile.AIChatModel)
	assert.Equal(t, []string{"admin@example.com", "second@example.com"}, profile.AdminEmailList())
}

func TestProfileValidateMode(t *testing.T) {
	profile := &Profile{Mode: "bogus", Data: t.TempDir(), Driver: "sqlite"}
	err := profile.Validate()
	assert.NoError(t, err)
	assert.Equal(t, "demo", profile.Mode)
	assert.NotEmpty(t, profile.DSN)
}
