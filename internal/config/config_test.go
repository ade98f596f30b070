package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9000\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "https://api.bitget.com", cfg.Bitget.BaseURL)
	assert.Equal(t, "bitget", cfg.Trading.Source)
	assert.Equal(t, []string{"ETHUSDT"}, cfg.Trading.Symbols)
	assert.Equal(t, []int{5, 10, 20, 50, 100, 200}, cfg.Analysis.MAPeriods)
	assert.Equal(t, 0.005, cfg.Analysis.ClusterTolerance)
	assert.Equal(t, 5, cfg.Analysis.MaxClusters)
}

func TestLoadOverrides(t *testing.T) {
	raw := `
trading:
  source: "binance"
  symbols: ["BTCUSDT"]
  granularity: "5m"
analysis:
  ma_periods: [7, 21]
  cluster_tolerance: 0.01
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "binance", cfg.Trading.Source)
	assert.Equal(t, []string{"BTCUSDT"}, cfg.Trading.Symbols)
	assert.Equal(t, "5m", cfg.Trading.Granularity)
	assert.Equal(t, []int{7, 21}, cfg.Analysis.MAPeriods)
	assert.Equal(t, 0.01, cfg.Analysis.ClusterTolerance)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [broken"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
