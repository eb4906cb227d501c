// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package keytree

import "github.com/pkg/errors"

// Range errors
var (
	// ErrOutOfRange indicates a column, row or position outside the valid range.
	ErrOutOfRange = errors.New("index out of range")
)

// Structure errors
var (
	// ErrColumnMismatch indicates that a node's column count differs from the
	// node it is being attached to.
	ErrColumnMismatch = errors.New("column count mismatch")

	// ErrAlreadyOwned indicates that a node already has a parent.
	ErrAlreadyOwned = errors.New("node already has a parent")

	// ErrCycle indicates that a node would become its own descendant.
	ErrCycle = errors.New("node is an ancestor of the new parent")
)

func outOfRange(what string, got, limit int) error {
	return errors.Wrapf(ErrOutOfRange, "%s %d, limit %d", what, got, limit)
}
