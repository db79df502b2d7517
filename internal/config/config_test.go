package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/io7m/ironpage-sub000/internal/db"
	"github.com/io7m/ironpage-sub000/pkg/ironpage"
)

func env(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestLoad_AllFields(t *testing.T) {
	dir := t.TempDir()
	content := `schema_paths:
  - schemas
  - /opt/shared/schemas
builtins: false
concurrent_lookup: true
max_source_size: 2048
store:
  connection_string: postgres://ironpage@db:5432/ironpage
  auth_method: aws
  aws_region: eu-west-1
  timeout: 10s
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(dir, "schemas"), "/opt/shared/schemas"}, cfg.SchemaPaths)
	assert.False(t, cfg.UseBuiltins())
	assert.True(t, cfg.ConcurrentLookup)
	assert.Equal(t, int64(2048), cfg.MaxSourceSize)
	assert.True(t, cfg.HasStore())
	require.NoError(t, cfg.Validate())

	conn := cfg.ConnectionConfig()
	assert.Equal(t, db.AuthMethodAWSIAM, conn.AuthMethod)
	assert.Equal(t, "eu-west-1", conn.AWSRegion)

	timeout, err := cfg.StoreTimeout()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, timeout)
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.True(t, errors.Is(err, ErrConfigNotFound))
}

func TestLoad_UnknownField(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("schema_path: [x]\n"), 0644))

	_, err := Load(dir)

	require.Error(t, err)
	assert.ErrorIs(t, err, ironpage.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "schema_path")
}

func TestLoad_Empty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), nil, 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.True(t, cfg.UseBuiltins())
	assert.False(t, cfg.HasStore())
}

func TestLoadOrDefault(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadOrDefault(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "schemas")}, cfg.SchemaPaths)
	assert.True(t, cfg.UseBuiltins())
	assert.NoError(t, cfg.Validate())
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	cfg.Store.AuthMethod = "azure"
	cfg.Store.AzureTenantID = "tenant"
	cfg.Store.AzureClientID = "client"

	cfg.ApplyEnv(env(map[string]string{
		EnvDatabaseURL:       "postgres://override/db",
		EnvAWSRegion:         "us-east-2",
		EnvAzureClientSecret: "secret",
	}))

	assert.Equal(t, "postgres://override/db", cfg.Store.ConnectionString)
	assert.Equal(t, "us-east-2", cfg.Store.AWSRegion)
	conn := cfg.ConnectionConfig()
	assert.Equal(t, "secret", conn.AzureClientSecret)
	assert.Equal(t, db.AuthMethodAzureEntraID, conn.AuthMethod)
}

func TestApplyEnv_FileRegionWins(t *testing.T) {
	cfg := Default()
	cfg.Store.AWSRegion = "eu-central-1"
	cfg.ApplyEnv(env(map[string]string{EnvAWSRegion: "us-east-2"}))
	assert.Equal(t, "eu-central-1", cfg.Store.AWSRegion)
}

func TestValidate_JoinsErrors(t *testing.T) {
	cfg := &Config{
		SchemaPaths:   []string{""},
		MaxSourceSize: -1,
		Store: StoreConfig{
			ConnectionString: "postgres://x/y",
			AuthMethod:       "google",
			Timeout:          "soon",
		},
	}

	err := cfg.Validate()

	require.Error(t, err)
	assert.ErrorIs(t, err, ironpage.ErrInvalidConfig)
	msg := err.Error()
	for _, want := range []string{"schema_paths[0]", "max_source_size", "store.timeout", "store.google_instance"} {
		assert.True(t, strings.Contains(msg, want), "missing %q in %q", want, msg)
	}
}

func TestValidate_AuthMethodWithoutStore(t *testing.T) {
	cfg := Default()
	cfg.Store.AuthMethod = "aws"
	assert.ErrorContains(t, cfg.Validate(), "no connection string")

	cfg.Store.AuthMethod = "ldap"
	assert.ErrorIs(t, cfg.Validate(), ironpage.ErrUnsupportedAuthMethod)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, LoadEnvFile(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, EnvFileName), []byte("IRONPAGE_CONFIG_TEST_VALUE=from-file\n"), 0644))
	t.Setenv("IRONPAGE_CONFIG_TEST_VALUE", "")
	os.Unsetenv("IRONPAGE_CONFIG_TEST_VALUE")

	require.NoError(t, LoadEnvFile(dir))
	assert.Equal(t, "from-file", os.Getenv("IRONPAGE_CONFIG_TEST_VALUE"))
}
