package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "development", c.Environment)
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, 300*time.Millisecond, c.Tushare.MinInterval)
	assert.Equal(t, []string{"SSE", "SZSE"}, c.Calendar.Exchanges)
	assert.Equal(t, 100, c.Aggregation.DefaultLimit)
	assert.Equal(t, "xshg", c.Aggregation.CalendarMIC)
	assert.NoError(t, c.Validate())
}

func TestLoadOverlaysYAMLOnDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
environment: production
server:
  port: 9090
tushare:
  token: from-file
  min_interval: 1s
calendar:
  exchanges: [SSE]
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "production", c.Environment)
	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, "from-file", c.Tushare.Token)
	assert.Equal(t, time.Second, c.Tushare.MinInterval)
	assert.Equal(t, []string{"SSE"}, c.Calendar.Exchanges)
	// untouched keys keep their defaults
	assert.Equal(t, 6000, c.Aggregation.MaxLimit)
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("TUSHARE_TOKEN", "plain-token")
	t.Setenv("STOCKPULL_PORT", "7070")
	t.Setenv("STOCKPULL_CALENDAR_EXCHANGES", "sse, szse ,bse")

	c, err := LoadWithEnv("")
	require.NoError(t, err)
	assert.Equal(t, "plain-token", c.Tushare.Token)
	assert.Equal(t, 7070, c.Server.Port)
	assert.Equal(t, []string{"SSE", "SZSE", "BSE"}, c.Calendar.Exchanges)
}

func TestPrefixedEnvWins(t *testing.T) {
	t.Setenv("TUSHARE_TOKEN", "plain")
	t.Setenv("STOCKPULL_TUSHARE_TOKEN", "prefixed")

	c, err := LoadWithEnv("")
	require.NoError(t, err)
	assert.Equal(t, "prefixed", c.Tushare.Token)
}

func TestValidate(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	c.Aggregation.DefaultLimit = c.Aggregation.MaxLimit + 1
	assert.Error(t, c.Validate())

	c, _ = Default()
	c.Calendar.Exchanges = nil
	assert.Error(t, c.Validate())

	c, _ = Default()
	c.Logging.Collector.Enabled = true
	assert.Error(t, c.Validate())

	c, _ = Default()
	c.Tushare.Token = ""
	assert.NoError(t, c.Validate())
}
