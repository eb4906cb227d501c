// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/absolutelightning/go-keytree"
	"github.com/absolutelightning/go-keytree/internal/config"
	"github.com/absolutelightning/go-keytree/logger"
	"github.com/absolutelightning/go-keytree/parser"
	"github.com/absolutelightning/go-keytree/view"
)

func main() {
	configPath := flag.String("config", "keytree.yaml", "path to the YAML configuration")
	printOnly := flag.Bool("print", false, "load the files given as arguments, print the tree and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	app, err := newApp(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init: %v\n", err)
		os.Exit(1)
	}
	defer app.view.Close()

	ctx := context.Background()
	for _, name := range flag.Args() {
		if err := app.load(ctx, name); err != nil {
			fmt.Fprintf(os.Stderr, "Parse error: %v\n", err)
		}
	}

	if *printOnly {
		if err := app.view.Render(os.Stdout); err != nil {
			os.Exit(1)
		}
		return
	}

	repl := &REPL{app: app}
	if err := repl.Open(cfg.HistoryFile); err != nil {
		fmt.Fprintf(os.Stderr, "readline: %v\n", err)
		os.Exit(1)
	}
	defer repl.Close()
	repl.Run(ctx)
}

// app wires the tree, its loader and the display projection.
type app struct {
	tree     *keytree.Tree
	loader   *parser.Loader
	view     *view.View
	registry *prometheus.Registry
	log      logger.Logger
}

func newApp(cfg config.Config) (*app, error) {
	log := logger.NewDefaultLogger(logger.ParseLevel(cfg.LogLevel))
	tree := keytree.NewTree(cfg.Headers,
		keytree.WithEditable(cfg.Editable),
		keytree.WithLogger(log),
		keytree.WithPatternCacheSize(cfg.PatternCacheSize),
	)

	registry := prometheus.NewRegistry()
	metrics, err := parser.NewMetrics(registry)
	if err != nil {
		return nil, err
	}
	return &app{
		tree:     tree,
		loader:   parser.NewLoader(tree, metrics, log),
		view:     view.New(tree, cfg.ViewOptions()),
		registry: registry,
		log:      log,
	}, nil
}

func (a *app) load(ctx context.Context, name string) error {
	sum, err := a.loader.LoadFile(ctx, name)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d inserted, %d dropped\n", name, sum.Inserted, sum.Dropped)
	return nil
}
