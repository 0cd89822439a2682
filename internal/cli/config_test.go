package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/lepidex/internal/model"
)

func newTestViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	require.NoError(t, setDefaults(v, model.DefaultConfig()))
	return v
}

func TestDecodeConfig_Defaults(t *testing.T) {
	cfg, err := decodeConfig(newTestViper(t))
	require.NoError(t, err)
	assert.Equal(t, model.DefaultConfig(), cfg)
}

func TestDecodeConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  timeout: 45s
concurrency:
  workers: 6
extraction:
  lenient: true
sources:
  nrm:
    min_interval: 2s
  adw:
    disabled: true
`), 0o600))

	v := newTestViper(t)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	t.Setenv("LEPIDEX_RETRY_MAX_ATTEMPTS", "5")
	v.SetEnvPrefix("LEPIDEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg, err := decodeConfig(v)
	require.NoError(t, err)

	assert.Equal(t, 45*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 6, cfg.Concurrency.Workers)
	assert.True(t, cfg.Extraction.Lenient)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Source(model.SourceNRM).MinInterval)
	assert.True(t, cfg.Source(model.SourceAnimalDiversityWeb).Disabled)
	assert.Equal(t, "en", cfg.Extraction.WikipediaLanguage)
}

func TestInitConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, initConfigFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var cfg model.Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, model.DefaultConfig().HTTP.UserAgent, cfg.HTTP.UserAgent)
	assert.Equal(t, 20*time.Second, cfg.HTTP.Timeout)

	err = initConfigFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestQueryFlags_Apply(t *testing.T) {
	var f queryFlags
	cmd := &cobra.Command{Use: "test"}
	f.register(cmd, formatTable)
	require.NoError(t, cmd.Flags().Parse([]string{"--workers", "5", "--lenient", "--wikipedia-lang", "sv", "--llm-provider", "ollama"}))

	cfg := model.DefaultConfig()
	f.apply(cmd, cfg)

	assert.Equal(t, 5, cfg.Concurrency.Workers)
	assert.True(t, cfg.Extraction.Lenient)
	assert.Equal(t, "sv", cfg.Extraction.WikipediaLanguage)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, time.Duration(0), cfg.Concurrency.Deadline)
}
