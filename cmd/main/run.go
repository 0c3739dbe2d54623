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
	"io"
	"strings"

	"github.com/tidwall/btree"
	"go.uber.org/zap"

	"github.com/daviszhen/hashagg/pkg/chunk"
	"github.com/daviszhen/hashagg/pkg/compute"
	"github.com/daviszhen/hashagg/pkg/util"
)

type aggrRunner struct {
	cfg   *util.Config
	exec  *compute.HashAggrExecutor
	names []string
}

func newAggrRunner(cfg *util.Config) (*aggrRunner, error) {
	cols, err := compute.ParseColumns(cfg.Source.Columns)
	if err != nil {
		return nil, err
	}
	groups, err := compute.BindGroupBy(cols, cfg.Aggr.GroupBy)
	if err != nil {
		return nil, err
	}
	aggrs, err := compute.BindAggregates(cols, cfg.Aggr.Aggregates)
	if err != nil {
		return nil, err
	}
	src, err := openSource(&cfg.Source, cols)
	if err != nil {
		return nil, err
	}
	exec, err := compute.NewHashAggrExecutor(src, groups, aggrs)
	if err != nil {
		_ = src.Close()
		return nil, err
	}
	names := make([]string, 0, len(groups)+len(aggrs))
	for _, group := range groups {
		names = append(names, group.String())
	}
	for _, aggr := range aggrs {
		names = append(names, aggr.String())
	}
	return &aggrRunner{
		cfg:   cfg,
		exec:  exec,
		names: names,
	}, nil
}

func openSource(cfg *util.SourceConfig, cols []compute.Column) (compute.Source, error) {
	var src compute.Source
	var err error
	switch cfg.Format {
	case "csv":
		src, err = compute.NewCsvSource(cfg.Path, cols, []rune(cfg.Delimiter)[0], cfg.HeadLine)
	case "parquet":
		src, err = compute.NewParquetSource(cfg.Path, cols)
	default:
		return nil, fmt.Errorf("usp format %s", cfg.Format)
	}
	if err != nil {
		return nil, err
	}
	if cfg.Prefetch > 0 {
		src = compute.NewChanSource(src, cfg.Prefetch)
	}
	return src, nil
}

func (run *aggrRunner) Run(ctx context.Context, w io.Writer) error {
	util.Debug("hashagg plan", zap.String("explain", run.exec.Explain()))
	chunks, err := compute.Collect(ctx, run.exec)
	if err != nil {
		return err
	}
	if util.DebugEnabled() {
		for i, data := range chunks {
			data.Print2(fmt.Sprintf("hashagg result chunk %d", i))
		}
	}
	return writeResult(w, run.names, chunks, run.cfg.Output)
}

func (run *aggrRunner) Close() error {
	return run.exec.Close()
}

func writeResult(w io.Writer, names []string, chunks []*chunk.Chunk, cfg util.OutputConfig) error {
	rows := make([][]*chunk.Value, 0)
	for _, data := range chunks {
		for i := 0; i < data.Card(); i++ {
			rows = append(rows, data.Row(i))
		}
	}
	if cfg.Sorted {
		rows = sortRows(rows)
	}
	if _, err := fmt.Fprintln(w, strings.Join(names, "|")); err != nil {
		return err
	}
	fields := make([]string, len(names))
	for i, row := range rows {
		if cfg.MaxPrintRows >= 0 && i >= cfg.MaxPrintRows {
			break
		}
		for j, val := range row {
			fields[j] = val.String()
		}
		if _, err := fmt.Fprintln(w, strings.Join(fields, "|")); err != nil {
			return err
		}
	}
	return nil
}

func rowLess(a, b []*chunk.Value) bool {
	for i := range a {
		if c := chunk.CompareValue(a[i], b[i]); c != 0 {
			return c < 0
		}
	}
	return false
}

// sortRows orders rows by their columns from left to right. The group
// key columns come first, so rows end up ordered by group key.
func sortRows(rows [][]*chunk.Value) [][]*chunk.Value {
	tr := btree.NewBTreeG[[]*chunk.Value](rowLess)
	for _, row := range rows {
		tr.Set(row)
	}
	ret := make([][]*chunk.Value, 0, tr.Len())
	tr.Scan(func(row []*chunk.Value) bool {
		ret = append(ret, row)
		return true
	})
	return ret
}
