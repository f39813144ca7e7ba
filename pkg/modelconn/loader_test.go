package modelconn_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/edubridge/edubridge/pkg/modelconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
connectors:
  - name: default
    preset: openai
    api_key: sk-test
    model: test-model
    max_tokens: 2048
    temperature: 0.3
    timeout: 45s

  - name: local
    base_url: http://localhost:8080/v1
    api_key: none
    model: local-model
`

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	fc, err := modelconn.LoadConfig(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	require.NoError(t, fc.Validate())

	require.Len(t, fc.Connectors, 2)
	assert.Equal(t, "default", fc.Connectors[0].Name)
	assert.Equal(t, "openai", fc.Connectors[0].Preset)
	assert.Equal(t, "sk-test", fc.Connectors[0].APIKey)
	assert.Equal(t, 2048, fc.Connectors[0].MaxTokens)

	cc, ok := fc.Connector("local")
	require.True(t, ok)
	assert.Equal(t, "http://localhost:8080/v1", cc.BaseURL)
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := modelconn.LoadConfig("/no/such/file.yaml")
	assert.Error(t, err)
}

func TestLoadConfig_ExpandsEnvVars(t *testing.T) {
	t.Setenv("EDUBRIDGE_TEST_API_KEY", "sk-from-env")

	yaml := `
connectors:
  - name: default
    preset: openai
    api_key: ${EDUBRIDGE_TEST_API_KEY}
    model: test-model
`
	fc, err := modelconn.LoadConfig(writeConfig(t, yaml))
	require.NoError(t, err)
	assert.Equal(t, "sk-from-env", fc.Connectors[0].APIKey)
}

func TestFileConfig_Validate_Empty(t *testing.T) {
	var fc modelconn.FileConfig

	var cfgErr *modelconn.ConfigError
	require.ErrorAs(t, fc.Validate(), &cfgErr)
}

func TestFileConfig_Validate_DuplicateNames(t *testing.T) {
	fc := modelconn.FileConfig{Connectors: []modelconn.ConnectorConfig{
		{Name: "default"},
		{Name: "default"},
	}}

	assert.ErrorContains(t, fc.Validate(), "duplicate connector name")
}

func TestConnectorConfig_Config_PresetWithOverrides(t *testing.T) {
	cc := modelconn.ConnectorConfig{
		Name:    "default",
		Preset:  "anthropic",
		BaseURL: "https://proxy.internal/v1",
		APIKey:  "sk-test",
		Model:   "test-model",
		Timeout: "45s",
	}

	cfg, err := cc.Config()
	require.NoError(t, err)

	assert.Equal(t, "https://proxy.internal/v1", cfg.BaseURL) // explicit wins over preset
	assert.Equal(t, "x-api-key", cfg.Auth.Header)
	assert.Equal(t, 45*time.Second, cfg.Timeout)
}

func TestConnectorConfig_Config_UnknownPreset(t *testing.T) {
	cc := modelconn.ConnectorConfig{Name: "default", Preset: "acme"}

	_, err := cc.Config()

	var cfgErr *modelconn.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestConnectorConfig_Config_BadTimeout(t *testing.T) {
	cc := modelconn.ConnectorConfig{Name: "default", APIKey: "sk-test", Timeout: "soon"}

	_, err := cc.Config()

	var cfgErr *modelconn.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "timeout", cfgErr.Field)
}
