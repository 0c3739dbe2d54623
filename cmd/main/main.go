// Copyright 2023-2024 daviszhen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/daviszhen/hashagg/pkg/util"
)

func init() {
	viper.SetEnvPrefix("hashagg")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	initRunCmd()
}

///root cmd

var info = "hash grouped aggregation over csv and parquet files"
var RootCmd = &cobra.Command{
	Use:          "hashagg",
	Short:        info,
	Long:         info,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("use hashagg --help or -h")
	},
}

//run cmd

var cfgFile string
var runInfo = "group the rows of a data file and print one row per group"
var runCmd = &cobra.Command{
	Use:   "run",
	Short: runInfo,
	Long:  runInfo,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := buildConfig(cfgFile)
		if err != nil {
			return err
		}
		if err = util.InitLogger(cfg.Log.Level, cfg.Log.Format); err != nil {
			return err
		}
		defer util.Sync()
		run, err := newAggrRunner(cfg)
		if err != nil {
			return err
		}
		err = run.Run(cmd.Context(), os.Stdout)
		if cerr := run.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			util.Error("hashagg run failed", zap.Error(err))
		}
		return err
	},
}

func initRunCmd() {
	RootCmd.AddCommand(runCmd)
	flags := runCmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "toml config file")
	flags.String("data", "", "data file path")
	flags.String("format", "", "data format. csv, parquet")
	flags.String("columns", "", "data columns. k:int,v:decimal(10,2)")
	flags.String("delimiter", "", "csv delimiter")
	flags.Bool("headline", false, "csv file starts with a head line")
	flags.Int("prefetch", 0, "chunks read ahead on a producer goroutine. 0 reads inline")
	flags.String("group", "", "group by expressions. k1, k2 * 2")
	flags.String("aggr", "", "aggregates. sum(v), count(*), avg(v::double precision)")
	flags.Bool("sorted", false, "print rows ordered by group key")
	flags.Int("max-print-rows", -1, "max rows printed. -1 prints all")
	flags.String("log-level", "", "debug, info, warn, error")
	flags.String("log-format", "", "console, json")

	viper.BindPFlag("source.path", flags.Lookup("data"))
	viper.BindPFlag("source.format", flags.Lookup("format"))
	viper.BindPFlag("source.columns", flags.Lookup("columns"))
	viper.BindPFlag("source.delimiter", flags.Lookup("delimiter"))
	viper.BindPFlag("source.headline", flags.Lookup("headline"))
	viper.BindPFlag("source.prefetch", flags.Lookup("prefetch"))
	viper.BindPFlag("aggr.groupBy", flags.Lookup("group"))
	viper.BindPFlag("aggr.aggregates", flags.Lookup("aggr"))
	viper.BindPFlag("output.sorted", flags.Lookup("sorted"))
	viper.BindPFlag("output.maxPrintRows", flags.Lookup("max-print-rows"))
	viper.BindPFlag("log.level", flags.Lookup("log-level"))
	viper.BindPFlag("log.format", flags.Lookup("log-format"))
}

// buildConfig loads cfgPath, or the defaults when it is empty, and
// applies the flags and HASHAGG_* environment variables that are set.
func buildConfig(cfgPath string) (*util.Config, error) {
	cfg := util.DefaultConfig()
	if cfgPath != "" {
		var err error
		cfg, err = util.LoadConfig(cfgPath)
		if err != nil {
			return nil, err
		}
	}
	if viper.IsSet("source.path") {
		cfg.Source.Path = viper.GetString("source.path")
	}
	if viper.IsSet("source.format") {
		cfg.Source.Format = viper.GetString("source.format")
	}
	if viper.IsSet("source.columns") {
		cfg.Source.Columns = viper.GetString("source.columns")
	}
	if viper.IsSet("source.delimiter") {
		cfg.Source.Delimiter = viper.GetString("source.delimiter")
	}
	if viper.IsSet("source.headline") {
		cfg.Source.HeadLine = viper.GetBool("source.headline")
	}
	if viper.IsSet("source.prefetch") {
		cfg.Source.Prefetch = viper.GetInt("source.prefetch")
	}
	if viper.IsSet("aggr.groupBy") {
		cfg.Aggr.GroupBy = []string{viper.GetString("aggr.groupBy")}
	}
	if viper.IsSet("aggr.aggregates") {
		cfg.Aggr.Aggregates = []string{viper.GetString("aggr.aggregates")}
	}
	if viper.IsSet("output.sorted") {
		cfg.Output.Sorted = viper.GetBool("output.sorted")
	}
	if viper.IsSet("output.maxPrintRows") {
		cfg.Output.MaxPrintRows = viper.GetInt("output.maxPrintRows")
	}
	if viper.IsSet("log.level") {
		cfg.Log.Level = viper.GetString("log.level")
	}
	if viper.IsSet("log.format") {
		cfg.Log.Format = viper.GetString("log.format")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := RootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
