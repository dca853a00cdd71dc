package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteConfigFileRoundTrip(t *testing.T) {
	home := t.TempDir()
	cfg := DefaultConfig(home)
	cfg.App.OracleURL = "http://oracle.local:9000"
	cfg.App.PollInterval = 5 * time.Second
	cfg.App.RequestTTL = 120

	file := filepath.Join(home, "config", "config.toml")
	WriteConfigFile(file, cfg)

	v := viper.New()
	v.SetConfigFile(file)
	require.NoError(t, v.ReadInConfig())
	loaded := DefaultConfig(home)
	require.NoError(t, v.Unmarshal(loaded))

	assert.Equal(t, "http://oracle.local:9000", loaded.App.OracleURL)
	assert.Equal(t, 5*time.Second, loaded.App.PollInterval)
	assert.Equal(t, DefaultOracleTimeout, loaded.App.OracleTimeout)
	assert.Equal(t, uint64(120), loaded.App.RequestTTL)
	assert.Equal(t, cfg.Moniker, loaded.Moniker)
	assert.Equal(t, home, loaded.App.Home)
}

func TestAppConfigPaths(t *testing.T) {
	c := NewAppConfig("/srv/contest")
	assert.Equal(t, "/srv/contest/data", c.DataDir())
	assert.Equal(t, "/srv/contest/config/oracle_key.json", c.RelayerKeyFile())
	c.RelayerDB = "/var/lib/relayer.db"
	assert.Equal(t, "/var/lib/relayer.db", c.RelayerDBFile())
}
