// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package config loads the keytree CLI settings.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/absolutelightning/go-keytree"
	"github.com/absolutelightning/go-keytree/view"
)

type Config struct {
	Headers          []string `yaml:"headers"`
	Editable         bool     `yaml:"editable"`
	SortColumn       *int     `yaml:"sort_column"`
	HiddenColumns    []int    `yaml:"hidden_columns"`
	HistoryFile      string   `yaml:"history_file"`
	LogLevel         string   `yaml:"log_level"`
	PatternCacheSize int      `yaml:"pattern_cache_size"`
}

// Default sorts rows by the index column and hides it.
func Default() Config {
	sortColumn := keytree.ColumnKey
	return Config{
		Headers:          append([]string(nil), keytree.DefaultHeaders...),
		SortColumn:       &sortColumn,
		HiddenColumns:    []int{keytree.ColumnKey},
		HistoryFile:      ".keytree_history",
		LogLevel:         "info",
		PatternCacheSize: 128,
	}
}

// Load reads a YAML file over the defaults. An empty name or a missing file
// yields the defaults.
func Load(name string) (Config, error) {
	cfg := Default()
	if name == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(name)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrapf(err, "read config %s", name)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", name)
	}
	if len(cfg.Headers) == 0 {
		cfg.Headers = append([]string(nil), keytree.DefaultHeaders...)
	}
	return cfg, nil
}

// ViewOptions returns the display settings.
func (c Config) ViewOptions() view.Options {
	opts := view.Options{SortColumn: view.NoSort, Hidden: c.HiddenColumns}
	if c.SortColumn != nil {
		opts.SortColumn = *c.SortColumn
	}
	return opts
}
