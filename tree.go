// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package keytree

import (
	"fmt"
	"io"
	"strings"

	"github.com/absolutelightning/go-keytree/logger"
)

// Role selects which view of a cell is read or written. Both roles resolve
// to the same stored value; only RoleEdit may write.
type Role int

const (
	RoleDisplay Role = iota
	RoleEdit
)

// ItemFlags describes what a consumer may do with a cell.
type ItemFlags uint8

const (
	FlagNone       ItemFlags = 0
	FlagSelectable ItemFlags = 1 << 0
	FlagEditable   ItemFlags = 1 << 1
	FlagEnabled    ItemFlags = 1 << 5
)

// DefaultHeaders are the column titles used by the loader and CLI.
var DefaultHeaders = []string{"Tree", "Value", "Index"}

// Tree owns a root node whose record holds the column headers and whose
// descendants are the content rows. It is not safe for concurrent use.
type Tree struct {
	root     *Node
	editable bool
	log      logger.Logger
	patterns *patternCache
	events   *notifier
}

// NewTree returns an empty tree with one column per header.
func NewTree(headers []string, opts ...Option) *Tree {
	data := make([]any, len(headers))
	for i, h := range headers {
		data[i] = h
	}
	return NewTreeWithRoot(NewNode(data), opts...)
}

// NewTreeWithRoot adopts a prebuilt root. The root's record is used as the
// header row.
func NewTreeWithRoot(root *Node, opts ...Option) *Tree {
	c := newConfig(opts)
	return &Tree{
		root:     root,
		editable: c.editable,
		log:      c.log,
		patterns: newPatternCache(c.patternCacheSize),
		events:   newNotifier(),
	}
}

// item resolves an address. The zero address resolves to the root; a stale
// address resolves to nil.
func (t *Tree) item(a Address) *Node {
	n := t.root
	for _, row := range a.path {
		n = n.Child(row)
		if n == nil {
			return nil
		}
	}
	return n
}

// Index returns the address of the cell at row and column below parent, or
// the zero address if there is no such row. Children hang off column 0, so a
// parent address in any other column has no children.
func (t *Tree) Index(row, column int, parent Address) Address {
	if parent.IsValid() && parent.Column() != 0 {
		return Address{}
	}
	if column < 0 || column >= t.root.ColumnCount() {
		return Address{}
	}
	p := t.item(parent)
	if p == nil || p.Child(row) == nil {
		return Address{}
	}
	return parent.child(row, column)
}

// Parent returns the column 0 address of the row holding a. Top level rows
// have no parent and yield the zero address.
func (t *Tree) Parent(a Address) Address {
	if !a.IsValid() {
		return Address{}
	}
	return a.parent()
}

// RowCount returns the number of children below parent.
func (t *Tree) RowCount(parent Address) int {
	if parent.IsValid() && parent.Column() != 0 {
		return 0
	}
	p := t.item(parent)
	if p == nil {
		return 0
	}
	return p.ChildCount()
}

// ColumnCount returns the tree wide column count.
func (t *Tree) ColumnCount(Address) int {
	return t.root.ColumnCount()
}

// HasChildren reports whether parent has at least one child row.
func (t *Tree) HasChildren(parent Address) bool {
	return t.RowCount(parent) > 0
}

// Flags reports what may be done with the cell at a.
func (t *Tree) Flags(a Address) ItemFlags {
	if !a.IsValid() || t.item(a) == nil {
		return FlagNone
	}
	f := FlagSelectable | FlagEnabled
	if t.editable {
		f |= FlagEditable
	}
	return f
}

// Data returns the cell at a, or nil for invalid addresses and unknown roles.
func (t *Tree) Data(a Address, role Role) any {
	if !a.IsValid() || (role != RoleDisplay && role != RoleEdit) {
		return nil
	}
	n := t.item(a)
	if n == nil {
		return nil
	}
	v, _ := n.Data(a.Column())
	return v
}

// SetData writes value into the cell at a. Only RoleEdit writes on an
// editable tree take effect; anything else is ignored and reports false.
func (t *Tree) SetData(a Address, value any, role Role) bool {
	if role != RoleEdit || t.Flags(a)&FlagEditable == 0 {
		return false
	}
	if err := t.item(a).SetData(a.Column(), value); err != nil {
		t.log.Debug("set data rejected", "address", a.String(), "err", err)
		return false
	}
	t.events.emit(Event{
		Kind:   EventDataChanged,
		Parent: t.Parent(a),
		First:  a.Row(),
		Last:   a.Row(),
		Column: a.Column(),
	})
	t.events.done()
	return true
}

// HeaderData returns the title of a column.
func (t *Tree) HeaderData(section int, role Role) any {
	if role != RoleDisplay && role != RoleEdit {
		return nil
	}
	v, _ := t.root.Data(section)
	return v
}

// SetHeaderData renames a column. Only RoleEdit writes take effect.
func (t *Tree) SetHeaderData(section int, value any, role Role) bool {
	if role != RoleEdit {
		return false
	}
	if err := t.root.SetData(section, value); err != nil {
		t.log.Debug("set header rejected", "section", section, "err", err)
		return false
	}
	t.events.emit(Event{Kind: EventHeaderChanged, First: section, Last: section})
	t.events.done()
	return true
}

// InsertRows inserts rows empty rows before position below parent.
func (t *Tree) InsertRows(position, rows int, parent Address) bool {
	p := t.structuralParent(parent)
	if p == nil || position < 0 || position > p.ChildCount() || rows < 1 {
		return false
	}
	x := t.events.begin(
		Event{Kind: EventRowsAboutToBeInserted, Parent: parent, First: position, Last: position + rows - 1},
		Event{Kind: EventRowsInserted, Parent: parent, First: position, Last: position + rows - 1},
	)
	defer x.commit()
	if err := p.InsertChildren(position, rows, t.root.ColumnCount()); err != nil {
		t.log.Debug("insert rows rejected", "parent", parent.String(), "err", err)
		return false
	}
	return true
}

// RemoveRows removes rows rows starting at position below parent, together
// with their subtrees.
func (t *Tree) RemoveRows(position, rows int, parent Address) bool {
	p := t.structuralParent(parent)
	if p == nil || position < 0 || position > p.ChildCount() || rows < 1 || rows > p.ChildCount()-position {
		return false
	}
	x := t.events.begin(
		Event{Kind: EventRowsAboutToBeRemoved, Parent: parent, First: position, Last: position + rows - 1},
		Event{Kind: EventRowsRemoved, Parent: parent, First: position, Last: position + rows - 1},
	)
	defer x.commit()
	if err := p.RemoveChildren(position, rows); err != nil {
		t.log.Debug("remove rows rejected", "parent", parent.String(), "err", err)
		return false
	}
	return true
}

// MoveRow moves the row at from below parent so that it ends up at to.
func (t *Tree) MoveRow(parent Address, from, to int) bool {
	p := t.structuralParent(parent)
	if p == nil || p.Child(from) == nil || p.Child(to) == nil {
		return false
	}
	if from == to {
		return true
	}
	x := t.events.begin(
		Event{Kind: EventRowsAboutToBeMoved, Parent: parent, First: from, Last: from, Destination: to},
		Event{Kind: EventRowsMoved, Parent: parent, First: from, Last: from, Destination: to},
	)
	defer x.commit()
	if err := p.MoveChild(from, to); err != nil {
		t.log.Debug("move row rejected", "parent", parent.String(), "err", err)
		return false
	}
	return true
}

// InsertColumns inserts columns empty columns before position throughout
// the tree, header row included.
func (t *Tree) InsertColumns(position, columns int, parent Address) bool {
	if position < 0 || position > t.root.ColumnCount() || columns < 1 {
		return false
	}
	x := t.events.begin(
		Event{Kind: EventColumnsAboutToBeInserted, Parent: parent, First: position, Last: position + columns - 1},
		Event{Kind: EventColumnsInserted, Parent: parent, First: position, Last: position + columns - 1},
	)
	defer x.commit()
	if err := t.root.InsertColumns(position, columns); err != nil {
		t.log.Debug("insert columns rejected", "err", err)
		return false
	}
	return true
}

// RemoveColumns removes columns columns starting at position throughout the
// tree.
func (t *Tree) RemoveColumns(position, columns int, parent Address) bool {
	if position < 0 || position > t.root.ColumnCount() || columns < 1 || columns > t.root.ColumnCount()-position {
		return false
	}
	x := t.events.begin(
		Event{Kind: EventColumnsAboutToBeRemoved, Parent: parent, First: position, Last: position + columns - 1},
		Event{Kind: EventColumnsRemoved, Parent: parent, First: position, Last: position + columns - 1},
	)
	defer x.commit()
	if err := t.root.RemoveColumns(position, columns); err != nil {
		t.log.Debug("remove columns rejected", "err", err)
		return false
	}
	return true
}

func (t *Tree) structuralParent(parent Address) *Node {
	if parent.IsValid() && parent.Column() != 0 {
		return nil
	}
	return t.item(parent)
}

// Len returns the number of content rows at every level.
func (t *Tree) Len() int {
	size := 0
	t.Walk(func(Address, *Node) bool {
		size++
		return false
	})
	return size
}

// WalkFn is called for each row during a walk with the row's column 0
// address. Returning true stops the walk. The tree must not be mutated from
// inside the callback.
type WalkFn func(a Address, n *Node) bool

// Walk visits every content row in pre-order.
func (t *Tree) Walk(fn WalkFn) {
	it := t.Iterator()
	for {
		a, n, ok := it.Next()
		if !ok || fn(a, n) {
			return
		}
	}
}

// Dump writes an indented listing of every row and its cells.
func (t *Tree) Dump(w io.Writer) error {
	var err error
	t.Walk(func(a Address, n *Node) bool {
		cells := make([]string, len(n.data))
		for i, v := range n.data {
			cells[i] = ValueText(v)
		}
		_, err = fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", a.Depth()-1), strings.Join(cells, " | "))
		return err != nil
	})
	return err
}
