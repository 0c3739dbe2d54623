package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	dir := t.TempDir()
	fpath := filepath.Join(dir, "aggr.toml")
	require.NoError(t, os.WriteFile(fpath, []byte(content), 0644))
	return fpath
}

func TestLoadConfig(t *testing.T) {
	fpath := writeConfig(t, `
[source]
path = "data.csv"
columns = "k:int,v:bigint"
prefetch = 4

[aggr]
groupBy = ["k"]
aggregates = ["sum(v)", "count(*)"]

[output]
sorted = true

[log]
level = "debug"
`)
	cfg, err := LoadConfig(fpath)
	require.NoError(t, err)
	assert.Equal(t, "data.csv", cfg.Source.Path)
	//default kept
	assert.Equal(t, "csv", cfg.Source.Format)
	assert.Equal(t, ",", cfg.Source.Delimiter)
	assert.Equal(t, 4, cfg.Source.Prefetch)
	assert.Equal(t, []string{"k"}, cfg.Aggr.GroupBy)
	assert.Equal(t, []string{"sum(v)", "count(*)"}, cfg.Aggr.Aggregates)
	assert.True(t, cfg.Output.Sorted)
	assert.Equal(t, -1, cfg.Output.MaxPrintRows)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	fpath := writeConfig(t, `
[source]
pth = "data.csv"
`)
	_, err = LoadConfig(fpath)
	assert.ErrorContains(t, err, "unknown config keys")

	fpath = writeConfig(t, `[source`)
	_, err = LoadConfig(fpath)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "source.path is empty")
	assert.ErrorContains(t, err, "source.columns is empty")
	assert.ErrorContains(t, err, "neither aggr.groupBy nor aggr.aggregates is set")

	cfg.Source.Path = "x.parquet"
	cfg.Source.Format = "orc"
	cfg.Source.Columns = "a:int"
	cfg.Aggr.Aggregates = []string{"count(a)"}
	assert.ErrorContains(t, cfg.Validate(), "orc")

	cfg.Source.Format = "parquet"
	assert.NoError(t, cfg.Validate())

	cfg.Source.Format = "csv"
	cfg.Source.Delimiter = ";;"
	assert.ErrorContains(t, cfg.Validate(), "delimiter")
}

func TestInitLogger(t *testing.T) {
	assert.NoError(t, InitLogger("debug", "json"))
	assert.True(t, DebugEnabled())
	assert.NoError(t, InitLogger("info", "console"))
	assert.False(t, DebugEnabled())
	assert.Error(t, InitLogger("loud", "console"))
	assert.Error(t, InitLogger("info", "xml"))
	Info("logger ready")
}
