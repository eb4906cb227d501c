// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package keytree

// Iterator visits the content rows of a tree in pre-order, yielding each
// row's column 0 address. The tree must not be mutated while iterating.
type Iterator struct {
	stack []iterFrame
	pos   *Node
	addr  Address
}

// iterFrame is a node waiting on the frontier together with its address.
type iterFrame struct {
	node *Node
	addr Address
}

// Iterator returns an iterator positioned before the first top level row.
func (t *Tree) Iterator() *Iterator {
	it := &Iterator{}
	it.pushChildren(t.root, Address{})
	return it
}

// SubtreeIterator iterates the rows below parent, excluding parent itself.
func (t *Tree) SubtreeIterator(parent Address) *Iterator {
	it := &Iterator{}
	if p := t.structuralParent(parent); p != nil {
		it.pushChildren(p, Address{path: parent.Path()})
	}
	return it
}

// pushChildren pushes in reverse so the first child is popped first.
func (i *Iterator) pushChildren(n *Node, addr Address) {
	for row := len(n.children) - 1; row >= 0; row-- {
		i.stack = append(i.stack, iterFrame{node: n.children[row], addr: addr.child(row, 0)})
	}
}

// Next advances to the next row.
func (i *Iterator) Next() (Address, *Node, bool) {
	if len(i.stack) == 0 {
		i.pos = nil
		i.addr = Address{}
		return Address{}, nil, false
	}
	last := i.stack[len(i.stack)-1]
	i.stack = i.stack[:len(i.stack)-1]
	i.pushChildren(last.node, last.addr)

	i.pos = last.node
	i.addr = last.addr
	return last.addr, last.node, true
}

// Front returns the row the iterator is positioned on, nil before the first
// call to Next or after the end.
func (i *Iterator) Front() *Node {
	return i.pos
}

// Address returns the address of Front.
func (i *Iterator) Address() Address {
	return i.addr
}
