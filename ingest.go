// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package keytree

// AddOperation files a record under the three level hierarchy encoded by id.
// The top and mid rows are found by key or created with the matching path
// label; the leaf is created with label path[2] and value. path must hold at
// least three labels.
//
// A leaf key that already exists anywhere in the tree drops the record: the
// first record for a leaf key wins and later ones are neither merged nor
// reported as an error. The return value tells whether a leaf was created.
func (t *Tree) AddOperation(id uint32, path []string, value float64) bool {
	keys := DecodeKey(id)

	// one conservative bracket covers every level that may be created
	x := t.events.begin(
		Event{Kind: EventRowsAboutToBeInserted, First: 0, Last: t.root.ChildCount()},
		Event{Kind: EventRowsInserted, First: 0, Last: t.root.ChildCount()},
	)
	defer x.commit()

	parent := t.root
	for level := LevelTop; level < LevelLeaf; level++ {
		key := keys.At(level)
		if found := t.findKey(key, level, parent); found != nil {
			parent = found
			continue
		}
		created := t.appendRow(parent, path[level], key)
		if created == nil {
			return false
		}
		parent = created
	}

	if t.findKey(keys.Leaf, LevelLeaf, nil) != nil {
		t.log.Debug("duplicate leaf dropped", "id", id, "leaf", keys.Leaf, "label", path[LevelLeaf])
		return false
	}
	leaf := t.appendRow(parent, path[LevelLeaf], keys.Leaf)
	if leaf == nil {
		return false
	}
	if err := leaf.SetData(ColumnValue, value); err != nil {
		t.log.Warn("leaf value not stored", "id", id, "err", err)
	}
	return true
}

// findKey searches the whole tree for a row at level whose key cell equals
// key. When under is set the row must also be a child of under.
func (t *Tree) findKey(key uint32, level Level, under *Node) *Node {
	start := t.Index(0, ColumnKey, Address{})
	hits := t.Match(start, RoleDisplay, key, AllHits, MatchOptions{
		Mode:      MatchExactly,
		Recursive: true,
	})
	for _, a := range hits {
		if a.Depth() != int(level)+1 {
			continue
		}
		n := t.item(a)
		if n != nil && (under == nil || n.parent == under) {
			return n
		}
	}
	return nil
}

func (t *Tree) appendRow(parent *Node, label string, key uint32) *Node {
	if err := parent.InsertChildren(parent.ChildCount(), 1, t.root.ColumnCount()); err != nil {
		t.log.Warn("row not inserted", "label", label, "err", err)
		return nil
	}
	n := parent.Child(parent.ChildCount() - 1)
	if err := n.SetData(ColumnLabel, label); err != nil {
		t.log.Warn("row label not stored", "label", label, "err", err)
	}
	if err := n.SetData(ColumnKey, key); err != nil {
		t.log.Warn("row key not stored", "label", label, "err", err)
	}
	return n
}
