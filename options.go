// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package keytree

import "github.com/absolutelightning/go-keytree/logger"

type config struct {
	editable         bool
	log              logger.Logger
	patternCacheSize int
}

// Option configures a Tree.
type Option func(*config)

// WithEditable marks every content cell editable through SetData.
func WithEditable(editable bool) Option {
	return func(c *config) {
		c.editable = editable
	}
}

// WithLogger sets the logger. Trees log nothing by default.
func WithLogger(l logger.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.log = l
		}
	}
}

// WithPatternCacheSize bounds the number of compiled regexp and wildcard
// patterns kept between Match calls.
func WithPatternCacheSize(size int) Option {
	return func(c *config) {
		c.patternCacheSize = size
	}
}

func newConfig(opts []Option) config {
	c := config{
		log:              logger.Discard,
		patternCacheSize: defaultPatternCacheSize,
	}
	for _, o := range opts {
		o(&c)
	}
	return c
}
