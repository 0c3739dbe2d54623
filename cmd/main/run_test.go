package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/daviszhen/hashagg/pkg/util"
)

func writeTemp(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func runConfig(t *testing.T, cfg *util.Config) string {
	require.NoError(t, cfg.Validate())
	run, err := newAggrRunner(cfg)
	require.NoError(t, err)
	buf := &bytes.Buffer{}
	require.NoError(t, run.Run(context.Background(), buf))
	require.NoError(t, run.Close())
	return buf.String()
}

func TestRunSorted(t *testing.T) {
	cfg := util.DefaultConfig()
	cfg.Source.Path = writeTemp(t, "kv.csv", "k,v\n2,20\n1,10\n,5\n1,30\n")
	cfg.Source.Columns = "k:int,v:int"
	cfg.Source.HeadLine = true
	cfg.Aggr.GroupBy = []string{"k"}
	cfg.Aggr.Aggregates = []string{"sum(v)", "count(*)"}
	cfg.Output.Sorted = true

	expected := "k|sum(v)|count(*)\nNULL|5|1\n1|40|2\n2|20|1\n"
	assert.Equal(t, expected, runConfig(t, cfg))

	cfg.Source.Prefetch = 2
	assert.Equal(t, expected, runConfig(t, cfg))

	cfg.Output.MaxPrintRows = 1
	assert.Equal(t, "k|sum(v)|count(*)\nNULL|5|1\n", runConfig(t, cfg))
}

func TestRunExpressions(t *testing.T) {
	cfg := util.DefaultConfig()
	cfg.Source.Path = writeTemp(t, "kv.csv", "1,10\n2,20\n1,30\n")
	cfg.Source.Columns = "k:int,v:int"
	cfg.Aggr.GroupBy = []string{"k * 10"}
	cfg.Aggr.Aggregates = []string{"sum(v + k), max(-v)", "avg(cast(v as double precision))"}
	cfg.Output.Sorted = true

	expected := "(k * 10)|sum((v + k))|max((0 - v))|avg(cast(v as DOUBLE))\n" +
		"10|42|-10|20\n" +
		"20|22|-20|20\n"
	assert.Equal(t, expected, runConfig(t, cfg))
}

func TestRunDebugDump(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	old := util.ReplaceLogger(zap.New(core))
	defer util.ReplaceLogger(old)

	cfg := util.DefaultConfig()
	cfg.Source.Path = writeTemp(t, "kv.csv", "1,10\n2,20\n1,30\n")
	cfg.Source.Columns = "k:int,v:int"
	cfg.Aggr.GroupBy = []string{"k"}
	cfg.Aggr.Aggregates = []string{"sum(v)"}
	runConfig(t, cfg)

	assert.Equal(t, 1, logs.FilterMessage("hashagg plan").Len())
	assert.Equal(t, 2, logs.FilterMessage("hashagg result chunk 0").Len())
}

func TestRunEmptyFile(t *testing.T) {
	cfg := util.DefaultConfig()
	cfg.Source.Path = writeTemp(t, "empty.csv", "")
	cfg.Source.Columns = "k:int"
	cfg.Aggr.Aggregates = []string{"count(*)"}
	assert.Equal(t, "count(*)\n", runConfig(t, cfg))
}

func TestRunBindErrors(t *testing.T) {
	cfg := util.DefaultConfig()
	cfg.Source.Path = writeTemp(t, "kv.csv", "1,2\n")
	cfg.Source.Columns = "k:int,v:int"
	cfg.Aggr.Aggregates = []string{"median(v)"}
	_, err := newAggrRunner(cfg)
	assert.Error(t, err)

	cfg.Aggr.Aggregates = []string{"sum(v)"}
	cfg.Aggr.GroupBy = []string{"x"}
	_, err = newAggrRunner(cfg)
	assert.Error(t, err)

	cfg.Aggr.GroupBy = nil
	cfg.Source.Path = filepath.Join(t.TempDir(), "missing.csv")
	_, err = newAggrRunner(cfg)
	assert.Error(t, err)
}

func TestBuildConfig(t *testing.T) {
	defer viper.Reset()
	path := writeTemp(t, "aggr.toml", `
[source]
path = "data.csv"
columns = "k:int,v:int"

[aggr]
groupBy = ["k"]
aggregates = ["sum(v)"]
`)
	cfg, err := buildConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "data.csv", cfg.Source.Path)
	assert.Equal(t, []string{"sum(v)"}, cfg.Aggr.Aggregates)

	viper.Set("source.path", "other.parquet")
	viper.Set("source.format", "parquet")
	viper.Set("aggr.aggregates", "sum(v), count(*)")
	viper.Set("output.sorted", true)
	cfg, err = buildConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "other.parquet", cfg.Source.Path)
	assert.Equal(t, "parquet", cfg.Source.Format)
	assert.Equal(t, []string{"sum(v), count(*)"}, cfg.Aggr.Aggregates)
	assert.Equal(t, []string{"k"}, cfg.Aggr.GroupBy)
	assert.True(t, cfg.Output.Sorted)

	viper.Reset()
	_, err = buildConfig("")
	assert.Error(t, err)

	_, err = buildConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
