// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package keytree

import (
	"golang.org/x/exp/slices"
)

// Column numbers of the cells stored by ingestion.
const (
	ColumnLabel = 0
	ColumnValue = 1
	ColumnKey   = 2

	defaultColumns = 3
)

// Node is a vertex of the tree. It holds a fixed-width record of cells and
// owns its children. The parent pointer is only valid while the node is
// attached.
type Node struct {
	parent   *Node
	children []*Node
	data     []any
}

// NewNode returns a detached node holding a copy of data.
func NewNode(data []any) *Node {
	return &Node{data: slices.Clone(data)}
}

func newEmptyNode(columns int, parent *Node) *Node {
	return &Node{
		parent: parent,
		data:   make([]any, columns),
	}
}

// Parent returns the owning node, nil for the root or a detached node.
func (n *Node) Parent() *Node {
	return n.parent
}

// ChildCount returns the number of direct children.
func (n *Node) ChildCount() int {
	return len(n.children)
}

// ColumnCount returns the width of the node's record.
func (n *Node) ColumnCount() int {
	return len(n.data)
}

// Child returns the child at row, or nil if row is out of range.
func (n *Node) Child(row int) *Node {
	if row < 0 || row >= len(n.children) {
		return nil
	}
	return n.children[row]
}

// Row returns the node's position among its siblings. The root and detached
// nodes report 0.
func (n *Node) Row() int {
	if n.parent == nil {
		return 0
	}
	if idx := slices.Index(n.parent.children, n); idx >= 0 {
		return idx
	}
	return 0
}

// Data returns the cell at column.
func (n *Node) Data(column int) (any, error) {
	if column < 0 || column >= len(n.data) {
		return nil, outOfRange("column", column, len(n.data))
	}
	return n.data[column], nil
}

// SetData replaces the cell at column.
func (n *Node) SetData(column int, value any) error {
	if column < 0 || column >= len(n.data) {
		return outOfRange("column", column, len(n.data))
	}
	n.data[column] = value
	return nil
}

// InsertChildren inserts count empty children with the given number of
// columns before position. position may equal ChildCount to append.
func (n *Node) InsertChildren(position, count, columns int) error {
	if position < 0 || position > len(n.children) {
		return outOfRange("position", position, len(n.children))
	}
	if count < 0 || columns < 0 {
		return outOfRange("count", count, 0)
	}
	fresh := make([]*Node, count)
	for i := range fresh {
		fresh[i] = newEmptyNode(columns, n)
	}
	n.children = slices.Insert(n.children, position, fresh...)
	return nil
}

// RemoveChildren detaches count children starting at position together
// with their subtrees.
func (n *Node) RemoveChildren(position, count int) error {
	if position < 0 || position > len(n.children) {
		return outOfRange("position", position, len(n.children))
	}
	if count < 0 || count > len(n.children)-position {
		return outOfRange("count", count, len(n.children)-position)
	}
	for _, ch := range n.children[position : position+count] {
		ch.detach()
	}
	n.children = slices.Delete(n.children, position, position+count)
	return nil
}

// detach drops the subtree's links so nothing reachable from it points back
// into the tree it was removed from.
func (n *Node) detach() {
	for _, ch := range n.children {
		ch.detach()
	}
	n.children = nil
	n.parent = nil
}

// AppendChild attaches a detached node as the last child. The child must
// have the same column count as n and must not be n or one of its ancestors.
func (n *Node) AppendChild(child *Node) error {
	if child.parent != nil {
		return ErrAlreadyOwned
	}
	for p := n; p != nil; p = p.parent {
		if p == child {
			return ErrCycle
		}
	}
	if child.ColumnCount() != n.ColumnCount() {
		return ErrColumnMismatch
	}
	child.parent = n
	n.children = append(n.children, child)
	return nil
}

// MoveChild moves the child at from so that it ends up at row to.
func (n *Node) MoveChild(from, to int) error {
	if from < 0 || from >= len(n.children) {
		return outOfRange("row", from, len(n.children))
	}
	if to < 0 || to >= len(n.children) {
		return outOfRange("row", to, len(n.children))
	}
	if from == to {
		return nil
	}
	ch := n.children[from]
	n.children = slices.Delete(n.children, from, from+1)
	n.children = slices.Insert(n.children, to, ch)
	return nil
}

// InsertColumns inserts empty cells before position in this node and every
// descendant so the subtree stays uniform.
func (n *Node) InsertColumns(position, columns int) error {
	if position < 0 || position > len(n.data) {
		return outOfRange("column", position, len(n.data))
	}
	if columns < 0 {
		return outOfRange("count", columns, 0)
	}
	n.data = slices.Insert(n.data, position, make([]any, columns)...)
	for _, ch := range n.children {
		if err := ch.InsertColumns(position, columns); err != nil {
			return err
		}
	}
	return nil
}

// RemoveColumns removes columns cells starting at position from this node
// and every descendant.
func (n *Node) RemoveColumns(position, columns int) error {
	if position < 0 || position > len(n.data) {
		return outOfRange("column", position, len(n.data))
	}
	if columns < 0 || columns > len(n.data)-position {
		return outOfRange("count", columns, len(n.data)-position)
	}
	n.data = slices.Delete(n.data, position, position+columns)
	for _, ch := range n.children {
		if err := ch.RemoveColumns(position, columns); err != nil {
			return err
		}
	}
	return nil
}

// depth returns the number of edges between n and the root.
func (n *Node) depth() int {
	d := 0
	for p := n.parent; p != nil; p = p.parent {
		d++
	}
	return d
}
