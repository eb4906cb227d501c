// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package view projects a keytree.Tree for display: sibling rows sorted by a
// column and some columns hidden, without touching the tree itself.
package view

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/absolutelightning/go-keytree"
)

// NoSort keeps rows in tree order.
const NoSort = -1

// Options configures a View.
type Options struct {
	SortColumn int   // column sorted ascending at every level, or NoSort
	Hidden     []int // columns left out of Columns and Render
}

// View is a sorted, column filtered projection of a tree. Row orders are
// computed on demand and dropped whenever the tree reports a change.
type View struct {
	src    *keytree.Tree
	opts   Options
	order  map[string][]int
	cancel func()
}

// New returns a view of src. Close releases its subscription.
func New(src *keytree.Tree, opts Options) *View {
	v := &View{
		src:   src,
		opts:  opts,
		order: make(map[string][]int),
	}
	v.cancel = src.Subscribe(v.onEvent)
	return v
}

// Close stops tracking the tree.
func (v *View) Close() {
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
}

func (v *View) onEvent(e keytree.Event) {
	switch {
	case e.Kind == keytree.EventHeaderChanged:
		return
	case e.Kind == keytree.EventDataChanged && e.Column != v.opts.SortColumn:
		return
	}
	clear(v.order)
}

// Columns returns the visible source columns in display order.
func (v *View) Columns() []int {
	n := v.src.ColumnCount(keytree.Address{})
	cols := make([]int, 0, n)
	for c := 0; c < n; c++ {
		if !slices.Contains(v.opts.Hidden, c) {
			cols = append(cols, c)
		}
	}
	return cols
}

// RowCount returns the number of rows below the source address parent.
func (v *View) RowCount(parent keytree.Address) int {
	return v.src.RowCount(parent)
}

// MapToSource returns the column 0 source address of the row displayed at
// row below parent, or the zero address when out of range.
func (v *View) MapToSource(row int, parent keytree.Address) keytree.Address {
	rows := v.rows(parent)
	if row < 0 || row >= len(rows) {
		return keytree.Address{}
	}
	return v.src.Index(rows[row], 0, parent)
}

// Children returns the column 0 source addresses below parent in display
// order.
func (v *View) Children(parent keytree.Address) []keytree.Address {
	rows := v.rows(parent)
	out := make([]keytree.Address, 0, len(rows))
	for _, r := range rows {
		out = append(out, v.src.Index(r, 0, parent))
	}
	return out
}

// Data returns the cell shown at display row and visible column below parent.
func (v *View) Data(row, column int, parent keytree.Address) any {
	cols := v.Columns()
	if column < 0 || column >= len(cols) {
		return nil
	}
	a := v.MapToSource(row, parent)
	if !a.IsValid() {
		return nil
	}
	return v.src.Data(v.src.Index(a.Row(), cols[column], parent), keytree.RoleDisplay)
}

func (v *View) rows(parent keytree.Address) []int {
	key := parent.String()
	if rows, ok := v.order[key]; ok {
		return rows
	}
	n := v.src.RowCount(parent)
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	if v.opts.SortColumn != NoSort {
		col := v.opts.SortColumn
		slices.SortStableFunc(rows, func(a, b int) int {
			va := v.src.Data(v.src.Index(a, col, parent), keytree.RoleDisplay)
			vb := v.src.Data(v.src.Index(b, col, parent), keytree.RoleDisplay)
			return keytree.CompareValues(va, vb)
		})
	}
	v.order[key] = rows
	return rows
}

// Render writes the header row and every row of the projection, children
// indented below their parent.
func (v *View) Render(w io.Writer) error {
	cols := v.Columns()
	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = keytree.ValueText(v.src.HeaderData(c, keytree.RoleDisplay))
	}
	if _, err := fmt.Fprintln(w, strings.Join(headers, " | ")); err != nil {
		return err
	}
	return v.render(w, cols, keytree.Address{}, 0)
}

func (v *View) render(w io.Writer, cols []int, parent keytree.Address, depth int) error {
	for row, a := range v.Children(parent) {
		cells := make([]string, len(cols))
		for i := range cols {
			cells[i] = keytree.ValueText(v.Data(row, i, parent))
		}
		if _, err := fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), strings.Join(cells, " | ")); err != nil {
			return err
		}
		if err := v.render(w, cols, a, depth+1); err != nil {
			return err
		}
	}
	return nil
}
