package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReadsYAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("snowflake:\n  instance: 3\n  epoch: 1704067200000\n"), 0o644))

	v, err := Load(dir, "config")
	require.NoError(t, err)
	assert.Equal(t, int64(3), v.GetInt64("snowflake.instance"))

	t.Setenv("SNOWFLAKE_EPOCH", "1600000000000")
	assert.Equal(t, int64(1600000000000), v.GetInt64("snowflake.epoch"))
}

func TestLoadWithoutFile(t *testing.T) {
	v, err := Load(t.TempDir(), "missing")
	require.NoError(t, err)

	v.SetDefault("idgen.kind", "ulid")
	require.NoError(t, BindEnvs(v, map[string]string{"idgen.kind": "TEST_IDGEN_KIND"}))
	assert.Equal(t, "ulid", v.GetString("idgen.kind"))

	t.Setenv("TEST_IDGEN_KIND", "uuid")
	assert.Equal(t, "uuid", v.GetString("idgen.kind"))
}

func TestGetEnv(t *testing.T) {
	t.Setenv("TEST_CONFIG_PATH", "/etc/idgen")
	assert.Equal(t, "/etc/idgen", GetEnv("TEST_CONFIG_PATH", "./config"))
	assert.Equal(t, "./config", GetEnv("TEST_CONFIG_PATH_UNSET", "./config"))
}
