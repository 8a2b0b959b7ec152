package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_EnvironmentBindings(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GOOGLE_API_KEY", " key-123 ")
	t.Setenv("SLACK_WEBHOOK_URL", "https://hooks.example/T/B/X")
	t.Setenv("SENDER_EMAIL", "bot@example.com")
	t.Setenv("FIREBASE_PROJECT_ID", "demo-project")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "key-123", cfg.Gemini.APIKey)
	assert.Equal(t, "gemini-2.5-pro", cfg.Gemini.Model)
	assert.Equal(t, "https://hooks.example/T/B/X", cfg.Slack.WebhookURL)
	assert.Equal(t, "bot@example.com", cfg.Email.Sender)
	assert.Equal(t, "smtp.gmail.com", cfg.Email.SMTPHost)
	assert.Equal(t, 465, cfg.Email.SMTPPort)
	assert.Equal(t, "demo-project", cfg.Identity.ProjectID)
	assert.Equal(t, "demo-project", cfg.Web.ProjectID)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "workflows.db", cfg.DB.Path)
	assert.NoError(t, cfg.ValidateServer())
}

func TestLoadConfig_DotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("GOOGLE_API_KEY=from-file\nSENDER_EMAIL_PASSWORD=secret\n"), 0o600))
	t.Setenv("GOOGLE_API_KEY", "from-env")
	t.Setenv("SENDER_EMAIL_PASSWORD", "")
	os.Unsetenv("SENDER_EMAIL_PASSWORD")

	cfg, err := LoadConfig(envFile)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Gemini.APIKey)
	assert.Equal(t, "secret", cfg.Email.Password)
}

func TestValidateServer_MissingAPIKeyIsFatal(t *testing.T) {
	cfg := &Config{}
	cfg.DB.Driver = "sqlite"
	assert.ErrorIs(t, cfg.ValidateServer(), ErrMissingAPIKey)

	cfg.Gemini.APIKey = "k"
	cfg.DB.Driver = "mysql"
	assert.Error(t, cfg.ValidateServer())
}

func TestValidatePanel_ListsMissingFields(t *testing.T) {
	cfg := &Config{}
	cfg.Web.APIKey = "k"
	err := cfg.ValidatePanel()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FIREBASE_AUTH_DOMAIN")
	assert.Contains(t, err.Error(), "FIREBASE_APP_ID")
	assert.NotContains(t, err.Error(), "FIREBASE_API_KEY")
}

func TestServiceAccount_PrefersInlineJSON(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "sa.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"from":"file"}`), 0o600))

	cfg := &Config{}
	cfg.Identity.ServiceAccountFile = file
	data, source, ok := cfg.ServiceAccount()
	assert.True(t, ok)
	assert.Equal(t, file, source)
	assert.JSONEq(t, `{"from":"file"}`, string(data))

	cfg.Identity.ServiceAccountJSON = `{"from":"env"}`
	data, source, ok = cfg.ServiceAccount()
	assert.True(t, ok)
	assert.Equal(t, "environment", source)
	assert.JSONEq(t, `{"from":"env"}`, string(data))

	cfg = &Config{}
	cfg.Identity.ServiceAccountFile = filepath.Join(dir, "missing.json")
	_, _, ok = cfg.ServiceAccount()
	assert.False(t, ok)
}
