package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalConfig = `
security:
  jwt:
    secret: test-secret
llm:
  planner_provider: main
  providers:
    main:
      api_key: ${TEST_LLM_KEY:fallback-key}
      base_url: https://api.example.com/v1
      model: test-model
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))
	return dir
}

func TestLoadMinimalConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "vizzy-conversational", cfg.App.Name)
	assert.Equal(t, 8080, cfg.Server.HTTP.Port)
	assert.Equal(t, "test-secret", cfg.Security.JWT.Secret)
	assert.Equal(t, 20, cfg.Features.History.WindowSize)
	assert.True(t, cfg.Features.Preferences.Enabled)
}

func TestLoadExpandsEnvPlaceholders(t *testing.T) {
	t.Run("未设置时用默认值", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, minimalConfig))
		require.NoError(t, err)
		assert.Equal(t, "fallback-key", cfg.LLM.Providers["main"].APIKey)
	})

	t.Run("已设置时用环境变量", func(t *testing.T) {
		t.Setenv("TEST_LLM_KEY", "from-env")
		cfg, err := Load(writeConfig(t, minimalConfig))
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.LLM.Providers["main"].APIKey)
	})
}

func TestLoadRejectsMissingJWTSecret(t *testing.T) {
	content := `
llm:
  planner_provider: main
  providers:
    main:
      model: test-model
`
	_, err := Load(writeConfig(t, content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "security.jwt.secret")
}

func TestLoadRejectsUndefinedProvider(t *testing.T) {
	content := `
security:
  jwt:
    secret: test-secret
llm:
  planner_provider: missing
  providers:
    main:
      model: test-model
`
	_, err := Load(writeConfig(t, content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestExpandString(t *testing.T) {
	t.Setenv("VIZZY_TEST_VAR", "value")

	assert.Equal(t, "value", expandString("${VIZZY_TEST_VAR}"))
	assert.Equal(t, "value", expandString("${VIZZY_TEST_VAR:other}"))
	assert.Equal(t, "def", expandString("${VIZZY_TEST_UNSET:def}"))
	assert.Equal(t, "", expandString("${VIZZY_TEST_UNSET}"))
	assert.Equal(t, "plain", expandString("plain"))
	assert.Equal(t, "host=value port=def", expandString("host=${VIZZY_TEST_VAR} port=${VIZZY_TEST_UNSET:def}"))
}
