package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err, "配置文件缺失时全部走默认值")

	assert.Equal(t, 20, cfg.Collector.Concurrency, "默认并发20台主机")
	assert.Equal(t, 22, cfg.SSH.Port)
	assert.Equal(t, "terminal", cfg.SSH.Mode)
	assert.Equal(t, 500*time.Millisecond, cfg.SSH.SettleDelay)
	assert.True(t, cfg.Report.Excel)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "0.0.0.0:8080", cfg.GetServerAddr())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
collector:
  concurrency: 50
  checks:
    lldp: true
    stack: false
ssh:
  settle_delay: 2s
report:
  excel: false
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Collector.Concurrency)
	assert.Equal(t, 2*time.Second, cfg.SSH.SettleDelay)
	assert.False(t, cfg.Report.Excel)
	assert.True(t, cfg.Collector.CheckEnabled("lldp", false))
	assert.False(t, cfg.Collector.CheckEnabled("stack", true))
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "no-such.yaml"))
	assert.Error(t, err, "显式指定的配置文件必须存在")
}

func TestCheckEnabledDefaults(t *testing.T) {
	c := &CollectorConfig{}
	assert.True(t, c.CheckEnabled("common", true), "未配置时取检查项默认值")
	assert.False(t, c.CheckEnabled("lldp", false))

	c.Checks = map[string]bool{"lldp": true}
	assert.True(t, c.CheckEnabled("lldp", false), "配置覆盖默认值")
	assert.True(t, c.CheckEnabled("common", true))
}

func TestExpandEnvCredentials(t *testing.T) {
	t.Setenv("FLEET_TEST_PASS", "s3cret")
	assert.Equal(t, "s3cret", expandEnv("${FLEET_TEST_PASS}"))
	assert.Equal(t, "plaintext", expandEnv("plaintext"))
	assert.Equal(t, "${UNSET_VAR_XYZ}", expandEnv("${UNSET_VAR_XYZ}"), "未设置的环境变量保留原样")
}
