// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package parser

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/absolutelightning/go-keytree"
	"github.com/absolutelightning/go-keytree/logger"
)

const (
	outcomeInserted = "inserted"
	outcomeDropped  = "dropped"
)

// Metrics counts what a Loader did with the records it read.
type Metrics struct {
	Records     *prometheus.CounterVec
	ParseErrors prometheus.Counter
}

// NewMetrics creates the loader counters and registers them with reg when
// reg is not nil.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "keytree",
			Name:      "records_total",
			Help:      "Records handed to the tree, by outcome.",
		}, []string{"outcome"}),
		ParseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "keytree",
			Name:      "parse_errors_total",
			Help:      "Inputs rejected because of a malformed line.",
		}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.Records, m.ParseErrors} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "register loader metrics")
		}
	}
	return m, nil
}

// Loader feeds parsed records into a tree.
type Loader struct {
	tree    *keytree.Tree
	metrics *Metrics
	log     logger.Logger
}

// NewLoader returns a loader for tree. metrics and log may be nil.
func NewLoader(tree *keytree.Tree, metrics *Metrics, log logger.Logger) *Loader {
	if metrics == nil {
		metrics, _ = NewMetrics(nil)
	}
	if log == nil {
		log = logger.Discard
	}
	return &Loader{tree: tree, metrics: metrics, log: log}
}

// Summary counts the records of one load.
type Summary struct {
	Inserted int
	Dropped  int
}

// Add files one record.
func (l *Loader) Add(rec Record) bool {
	if l.tree.AddOperation(rec.ID, rec.Path, rec.Value) {
		l.metrics.Records.WithLabelValues(outcomeInserted).Inc()
		return true
	}
	l.metrics.Records.WithLabelValues(outcomeDropped).Inc()
	return false
}

// Load reads r to the end or to the first malformed line.
func (l *Loader) Load(ctx context.Context, r io.Reader) (Summary, error) {
	return l.load(ctx, func(fn func(Record) error) error {
		return Parse(r, fn)
	})
}

// LoadFile loads the named file.
func (l *Loader) LoadFile(ctx context.Context, name string) (Summary, error) {
	ctx = logger.WithDefaultArgs(ctx, "file", name)
	return l.load(ctx, func(fn func(Record) error) error {
		return ParseFile(name, fn)
	})
}

func (l *Loader) load(ctx context.Context, parse func(func(Record) error) error) (Summary, error) {
	var sum Summary
	err := parse(func(rec Record) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if l.Add(rec) {
			sum.Inserted++
		} else {
			sum.Dropped++
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrFileNotCorrect) {
			l.metrics.ParseErrors.Inc()
		}
		l.log.WarnCtx(ctx, "load stopped", "inserted", sum.Inserted, "dropped", sum.Dropped, "err", err)
		return sum, err
	}
	l.log.InfoCtx(ctx, "load finished", "inserted", sum.Inserted, "dropped", sum.Dropped)
	return sum, nil
}
