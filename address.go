// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package keytree

import (
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
)

// Address locates a cell by the rows leading to it from the root plus a
// column. The zero Address refers to the root, which has no content row.
//
// Addresses hold no reference to tree internals. They are re-resolved against
// the current child order on every use and must be recomputed after rows or
// columns are inserted, removed or moved.
type Address struct {
	path   []int
	column int
}

// IsValid reports whether the address names a content row.
func (a Address) IsValid() bool {
	return len(a.path) > 0
}

// Row returns the row among siblings, -1 for the zero address.
func (a Address) Row() int {
	if len(a.path) == 0 {
		return -1
	}
	return a.path[len(a.path)-1]
}

// Column returns the column, -1 for the zero address.
func (a Address) Column() int {
	if len(a.path) == 0 {
		return -1
	}
	return a.column
}

// Depth returns the number of rows on the path; 1 for top level rows.
func (a Address) Depth() int {
	return len(a.path)
}

// Path returns a copy of the row path from the root.
func (a Address) Path() []int {
	return slices.Clone(a.path)
}

// Equal reports whether both addresses name the same cell.
func (a Address) Equal(b Address) bool {
	if !a.IsValid() || !b.IsValid() {
		return a.IsValid() == b.IsValid()
	}
	return a.column == b.column && slices.Equal(a.path, b.path)
}

// String renders the address as "r0/r1/r2:col", or "-" for the zero address.
func (a Address) String() string {
	if !a.IsValid() {
		return "-"
	}
	var sb strings.Builder
	for i, r := range a.path {
		if i > 0 {
			sb.WriteByte('/')
		}
		sb.WriteString(strconv.Itoa(r))
	}
	sb.WriteByte(':')
	sb.WriteString(strconv.Itoa(a.column))
	return sb.String()
}

// child derives the address of row under a. The path is copied so derived
// addresses never share backing arrays.
func (a Address) child(row, column int) Address {
	path := make([]int, len(a.path)+1)
	copy(path, a.path)
	path[len(a.path)] = row
	return Address{path: path, column: column}
}

// parent returns the column 0 address of the enclosing row.
func (a Address) parent() Address {
	if len(a.path) <= 1 {
		return Address{}
	}
	return Address{path: slices.Clone(a.path[:len(a.path)-1])}
}

// addressOf builds the address of n by walking up to the root.
func addressOf(n *Node, column int) Address {
	d := n.depth()
	if d == 0 {
		return Address{}
	}
	path := make([]int, d)
	for cur := n; cur.parent != nil; cur = cur.parent {
		d--
		path[d] = cur.Row()
	}
	return Address{path: path, column: column}
}
