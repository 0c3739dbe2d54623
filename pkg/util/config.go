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
package util

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
)

type SourceConfig struct {
	Path      string `toml:"path"`
	Format    string `toml:"format"`
	Columns   string `toml:"columns"`
	Delimiter string `toml:"delimiter"`
	HeadLine  bool   `toml:"headline"`
	Prefetch  int    `toml:"prefetch"`
}

type AggrConfig struct {
	GroupBy    []string `toml:"groupBy"`
	Aggregates []string `toml:"aggregates"`
}

type OutputConfig struct {
	Sorted       bool `toml:"sorted"`
	MaxPrintRows int  `toml:"maxPrintRows"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type Config struct {
	Source SourceConfig `toml:"source"`
	Aggr   AggrConfig   `toml:"aggr"`
	Output OutputConfig `toml:"output"`
	Log    LogConfig    `toml:"log"`
}

func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			Format:    "csv",
			Delimiter: ",",
		},
		Output: OutputConfig{
			MaxPrintRows: -1,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig decodes the toml file on top of the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if !FileIsValid(path) {
		return nil, fmt.Errorf("config file %s does not exist", path)
	}
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) != 0 {
		return nil, fmt.Errorf("unknown config keys in %s: %v", path, undecoded)
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	var err error
	if len(cfg.Source.Path) == 0 {
		err = errors.Join(err, errors.New("source.path is empty"))
	}
	switch cfg.Source.Format {
	case "csv", "parquet":
	default:
		err = errors.Join(err, fmt.Errorf("source.format %q is not csv or parquet", cfg.Source.Format))
	}
	if len(cfg.Source.Columns) == 0 {
		err = errors.Join(err, errors.New("source.columns is empty"))
	}
	if cfg.Source.Format == "csv" && len([]rune(cfg.Source.Delimiter)) != 1 {
		err = errors.Join(err, fmt.Errorf("source.delimiter %q must be one character", cfg.Source.Delimiter))
	}
	if cfg.Source.Prefetch < 0 {
		err = errors.Join(err, fmt.Errorf("source.prefetch %d is negative", cfg.Source.Prefetch))
	}
	if len(cfg.Aggr.GroupBy) == 0 && len(cfg.Aggr.Aggregates) == 0 {
		err = errors.Join(err, errors.New("neither aggr.groupBy nor aggr.aggregates is set"))
	}
	return err
}
