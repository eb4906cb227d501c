// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package keytree

import (
	"bytes"
	"fmt"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/hashicorp/go-uuid"
	"github.com/stretchr/testify/require"
)

type sampleRecord struct {
	id    uint32
	path  []string
	value float64
}

// sampleRecords builds
//
//	Alpha ─┬─ North ─┬─ Apple
//	       │         └─ Banana
//	       └─ South ─── Cherry
//	Beta ───── East ─── apple pie
var sampleRecords = []sampleRecord{
	{0x010101, []string{"Alpha", "North", "Apple"}, 1.5},
	{0x010102, []string{"Alpha", "North", "Banana"}, 2},
	{0x010203, []string{"Alpha", "South", "Cherry"}, 3},
	{0x020304, []string{"Beta", "East", "apple pie"}, 4},
}

func newSampleTree(t testing.TB, opts ...Option) *Tree {
	t.Helper()
	tree := NewTree(DefaultHeaders, opts...)
	for _, r := range sampleRecords {
		require.True(t, tree.AddOperation(r.id, r.path, r.value))
	}
	return tree
}

func label(t *Tree, a Address) any {
	return t.Data(t.Index(a.Row(), ColumnLabel, t.Parent(a)), RoleDisplay)
}

func TestTree_Headers(t *testing.T) {
	t.Parallel()

	tree := NewTree(DefaultHeaders)
	require.Equal(t, 3, tree.ColumnCount(Address{}))
	require.Equal(t, "Tree", tree.HeaderData(0, RoleDisplay))
	require.Equal(t, "Index", tree.HeaderData(2, RoleEdit))
	require.Nil(t, tree.HeaderData(3, RoleDisplay))

	var events []Event
	tree.Subscribe(func(e Event) { events = append(events, e) })

	require.False(t, tree.SetHeaderData(1, "Amount", RoleDisplay))
	require.False(t, tree.SetHeaderData(5, "Nope", RoleEdit))
	require.Empty(t, events)

	require.True(t, tree.SetHeaderData(1, "Amount", RoleEdit))
	require.Equal(t, "Amount", tree.HeaderData(1, RoleDisplay))
	require.Equal(t, []Event{{Kind: EventHeaderChanged, First: 1, Last: 1}}, events)
	require.False(t, events[0].Structural())
}

func TestTree_IndexAndParent(t *testing.T) {
	t.Parallel()

	tree := newSampleTree(t)
	require.Equal(t, 2, tree.RowCount(Address{}))

	alpha := tree.Index(0, ColumnLabel, Address{})
	require.True(t, alpha.IsValid())
	require.Equal(t, "Alpha", tree.Data(alpha, RoleDisplay))
	require.False(t, tree.Parent(alpha).IsValid())

	south := tree.Index(1, ColumnLabel, alpha)
	require.Equal(t, "South", tree.Data(south, RoleDisplay))
	require.True(t, tree.Parent(south).Equal(alpha))

	cherry := tree.Index(0, ColumnValue, south)
	require.Equal(t, 3.0, tree.Data(cherry, RoleDisplay))
	require.Equal(t, 3, cherry.Depth())
	require.Equal(t, "0/1/0:1", cherry.String())

	// out of range rows and columns
	require.False(t, tree.Index(2, 0, Address{}).IsValid())
	require.False(t, tree.Index(-1, 0, Address{}).IsValid())
	require.False(t, tree.Index(0, 3, Address{}).IsValid())

	// children hang off column 0 only
	alphaKey := tree.Index(0, ColumnKey, Address{})
	require.False(t, tree.Index(0, 0, alphaKey).IsValid())
	require.Equal(t, 0, tree.RowCount(alphaKey))
	require.True(t, tree.HasChildren(alpha))
	require.False(t, tree.HasChildren(tree.Index(0, 0, south)))

	// the zero address is the header row, never content
	require.Nil(t, tree.Data(Address{}, RoleDisplay))
	require.Equal(t, -1, Address{}.Row())
	require.Equal(t, "-", Address{}.String())
}

func TestTree_AddressRoundTrip(t *testing.T) {
	t.Parallel()

	tree := newSampleTree(t)
	visited := 0
	tree.Walk(func(a Address, n *Node) bool {
		for c := 0; c < tree.ColumnCount(a); c++ {
			idx := tree.Index(a.Row(), c, tree.Parent(a))
			require.True(t, idx.IsValid())
			require.Same(t, n, tree.item(idx))

			back := tree.Index(idx.Row(), idx.Column(), tree.Parent(idx))
			require.True(t, back.Equal(idx), "%s != %s", back, idx)
			require.True(t, addressOf(n, c).Equal(idx))
			visited++
		}
		return false
	})
	require.Equal(t, 9*3, visited)
}

func TestTree_Flags(t *testing.T) {
	t.Parallel()

	readOnly := newSampleTree(t)
	a := readOnly.Index(0, ColumnLabel, Address{})
	require.Equal(t, FlagSelectable|FlagEnabled, readOnly.Flags(a))
	require.Equal(t, FlagNone, readOnly.Flags(Address{}))

	editable := newSampleTree(t, WithEditable(true))
	a = editable.Index(0, ColumnLabel, Address{})
	require.Equal(t, FlagSelectable|FlagEnabled|FlagEditable, editable.Flags(a))
}

func TestTree_SetData(t *testing.T) {
	t.Parallel()

	readOnly := newSampleTree(t)
	var events []Event
	readOnly.Subscribe(func(e Event) { events = append(events, e) })
	alpha := readOnly.Index(0, ColumnLabel, Address{})
	require.False(t, readOnly.SetData(alpha, "Omega", RoleEdit))
	require.Equal(t, "Alpha", readOnly.Data(alpha, RoleDisplay))
	require.Empty(t, events)

	tree := newSampleTree(t, WithEditable(true))
	events = nil
	tree.Subscribe(func(e Event) { events = append(events, e) })

	north := tree.Index(0, 0, alpha)
	banana := tree.Index(1, ColumnValue, north)
	require.False(t, tree.SetData(banana, 9.0, RoleDisplay))
	require.True(t, tree.SetData(banana, 9.0, RoleEdit))
	require.Equal(t, 9.0, tree.Data(banana, RoleDisplay))
	require.Equal(t, 9.0, tree.Data(banana, RoleEdit))
	require.Equal(t, []Event{{
		Kind:   EventDataChanged,
		Parent: north,
		First:  1,
		Last:   1,
		Column: ColumnValue,
	}}, events)

	require.False(t, tree.SetData(Address{}, "root", RoleEdit))
}

func TestTree_InsertRemoveRows(t *testing.T) {
	t.Parallel()

	tree := newSampleTree(t)
	var events []Event
	tree.Subscribe(func(e Event) { events = append(events, e) })

	alpha := tree.Index(0, 0, Address{})
	require.False(t, tree.InsertRows(3, 1, alpha))
	require.False(t, tree.InsertRows(0, 0, alpha))
	require.False(t, tree.InsertRows(0, 1, tree.Index(0, ColumnKey, Address{})))
	require.Empty(t, events)

	require.True(t, tree.InsertRows(1, 2, alpha))
	require.Equal(t, 4, tree.RowCount(alpha))
	require.Equal(t, "South", tree.Data(tree.Index(3, 0, alpha), RoleDisplay))
	require.Nil(t, tree.Data(tree.Index(1, 0, alpha), RoleDisplay))
	require.Equal(t, []Event{
		{Kind: EventRowsAboutToBeInserted, Parent: alpha, First: 1, Last: 2},
		{Kind: EventRowsInserted, Parent: alpha, First: 1, Last: 2},
	}, events)

	events = nil
	south := tree.Index(3, 0, alpha)
	cherry := tree.Index(0, 0, south)
	require.False(t, tree.RemoveRows(0, 5, alpha))
	require.True(t, tree.RemoveRows(1, 3, alpha))
	require.Equal(t, 1, tree.RowCount(alpha))
	require.Equal(t, []Event{
		{Kind: EventRowsAboutToBeRemoved, Parent: alpha, First: 1, Last: 3},
		{Kind: EventRowsRemoved, Parent: alpha, First: 1, Last: 3},
	}, events)

	// addresses into the removed subtree no longer resolve
	require.Nil(t, tree.Data(cherry, RoleDisplay))
	require.Equal(t, FlagNone, tree.Flags(cherry))
	require.Equal(t, 7, tree.Len())
}

func TestTree_RemoveHugeCounts(t *testing.T) {
	t.Parallel()

	tree := newSampleTree(t)
	var events []Event
	tree.Subscribe(func(e Event) { events = append(events, e) })
	digest := tree.Digest()

	require.NotPanics(t, func() {
		require.False(t, tree.RemoveRows(1, math.MaxInt, Address{}))
		require.False(t, tree.RemoveRows(math.MaxInt, 1, Address{}))
		require.False(t, tree.RemoveColumns(1, math.MaxInt, Address{}))
		require.False(t, tree.RemoveColumns(math.MaxInt, 1, Address{}))
	})
	require.Empty(t, events)
	require.Equal(t, digest, tree.Digest())
}

func TestTree_MoveRowFollowsCurrentOrder(t *testing.T) {
	t.Parallel()

	tree := newSampleTree(t)
	var events []Event
	tree.Subscribe(func(e Event) { events = append(events, e) })

	require.False(t, tree.MoveRow(Address{}, 0, 2))
	require.True(t, tree.MoveRow(Address{}, 1, 0))
	require.Equal(t, []Event{
		{Kind: EventRowsAboutToBeMoved, First: 1, Last: 1, Destination: 0},
		{Kind: EventRowsMoved, First: 1, Last: 1, Destination: 0},
	}, events)

	beta := tree.Index(0, 0, Address{})
	require.Equal(t, "Beta", tree.Data(beta, RoleDisplay))
	pie := tree.Index(0, 0, tree.Index(0, 0, beta))
	require.Equal(t, "apple pie", tree.Data(pie, RoleDisplay))
	require.Equal(t, "1/0/0:0", tree.Index(0, 0, tree.Index(0, 0, tree.Index(1, 0, Address{}))).String())
	require.Equal(t, "Apple", tree.Data(tree.Index(0, 0, tree.Index(0, 0, tree.Index(1, 0, Address{}))), RoleDisplay))

	// ingestion keeps finding rows by key after the permutation
	require.True(t, tree.AddOperation(0x010105, []string{"Alpha", "North", "Date"}, 5))
	require.Equal(t, 2, tree.RowCount(Address{}))
	north := tree.Index(0, 0, tree.Index(1, 0, Address{}))
	require.Equal(t, 3, tree.RowCount(north))
}

func TestTree_InsertRemoveColumns(t *testing.T) {
	t.Parallel()

	tree := newSampleTree(t)
	var events []Event
	tree.Subscribe(func(e Event) { events = append(events, e) })

	require.False(t, tree.InsertColumns(4, 1, Address{}))
	require.True(t, tree.InsertColumns(1, 1, Address{}))
	require.Equal(t, 4, tree.ColumnCount(Address{}))
	require.Nil(t, tree.HeaderData(1, RoleDisplay))
	require.Equal(t, "Value", tree.HeaderData(2, RoleDisplay))
	tree.Walk(func(a Address, n *Node) bool {
		require.Equal(t, 4, n.ColumnCount())
		return false
	})
	apple := tree.Index(0, 2, tree.Index(0, 0, tree.Index(0, 0, Address{})))
	require.Equal(t, 1.5, tree.Data(apple, RoleDisplay))

	require.False(t, tree.RemoveColumns(3, 2, Address{}))
	require.True(t, tree.RemoveColumns(1, 1, Address{}))
	require.Equal(t, 3, tree.ColumnCount(Address{}))
	tree.Walk(func(a Address, n *Node) bool {
		require.Equal(t, 3, n.ColumnCount())
		return false
	})
	require.Equal(t, []Event{
		{Kind: EventColumnsAboutToBeInserted, First: 1, Last: 1},
		{Kind: EventColumnsInserted, First: 1, Last: 1},
		{Kind: EventColumnsAboutToBeRemoved, First: 1, Last: 1},
		{Kind: EventColumnsRemoved, First: 1, Last: 1},
	}, events)
}

func TestTree_Dump(t *testing.T) {
	t.Parallel()

	tree := NewTree(DefaultHeaders)
	tree.AddOperation(0x0A0B0C, []string{"Region", "District", "Site"}, 42.5)

	var buf bytes.Buffer
	require.NoError(t, tree.Dump(&buf))
	require.Equal(t, "Region |  | 655360\n  District |  | 2816\n    Site | 42.5 | 12\n", buf.String())
}

func TestTree_Digest(t *testing.T) {
	t.Parallel()

	a := newSampleTree(t, WithEditable(true))
	b := newSampleTree(t)
	require.Equal(t, a.Digest(), b.Digest())

	banana := a.Index(1, ColumnValue, a.Index(0, 0, a.Index(0, 0, Address{})))
	require.True(t, a.SetData(banana, 2.5, RoleEdit))
	require.NotEqual(t, a.Digest(), b.Digest())

	require.True(t, a.SetData(banana, 2.0, RoleEdit))
	require.Equal(t, a.Digest(), b.Digest())

	require.True(t, b.SetHeaderData(0, "Name", RoleEdit))
	require.NotEqual(t, a.Digest(), b.Digest())
}

func TestTree_WithRoot(t *testing.T) {
	t.Parallel()

	root := NewNode([]any{"Tree", "Value", "Index"})
	top := NewNode([]any{"Top", nil, uint32(0x010000)})
	require.NoError(t, root.AppendChild(top))
	require.NoError(t, top.AppendChild(NewNode([]any{"Mid", nil, uint32(0x0100)})))

	tree := NewTreeWithRoot(root)
	require.Equal(t, 2, tree.Len())

	// ingestion reuses bulk built rows
	require.True(t, tree.AddOperation(0x010101, []string{"x", "y", "Leaf"}, 1))
	require.Equal(t, 3, tree.Len())
	mid := tree.Index(0, 0, tree.Index(0, 0, Address{}))
	require.Equal(t, "Mid", tree.Data(mid, RoleDisplay))
	require.Equal(t, "Leaf", tree.Data(tree.Index(0, 0, mid), RoleDisplay))
}

func TestTree_Watch(t *testing.T) {
	t.Parallel()

	tree := NewTree(DefaultHeaders)
	watch := tree.Watch()
	require.False(t, isClosed(watch))

	tree.AddOperation(0x010101, []string{"a", "b", "c"}, 1)
	require.True(t, isClosed(watch))

	next := tree.Watch()
	require.False(t, isClosed(next))
	require.False(t, tree.SetData(tree.Index(0, 0, Address{}), "z", RoleEdit))
	require.False(t, isClosed(next))
}

// isClosed returns true if the given channel is closed.
func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

const datasetSize = 10000

type datasetRecord struct {
	id   uint32
	path []string
}

func generateDataset(size int) []datasetRecord {
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	dataset := make([]datasetRecord, size)
	for i := 0; i < size; i++ {
		uuid1, _ := uuid.GenerateUUID()
		dataset[i] = datasetRecord{
			id:   uint32(rnd.Intn(0x1000000)),
			path: []string{uuid1[:8], uuid1[9:13], uuid1},
		}
	}
	return dataset
}

func TestTree_RandomDatasetInvariants(t *testing.T) {
	t.Parallel()

	tree := NewTree(DefaultHeaders)
	for _, r := range generateDataset(2000) {
		tree.AddOperation(r.id, r.path, 1)
	}

	leafKeys := map[uint32]int{}
	tree.Walk(func(a Address, n *Node) bool {
		require.Equal(t, 3, n.ColumnCount())
		key, err := n.Data(ColumnKey)
		require.NoError(t, err)

		siblings := map[uint32]bool{}
		for _, s := range n.Parent().children {
			k, _ := s.Data(ColumnKey)
			require.False(t, siblings[k.(uint32)], "duplicate sibling key %x at %s", k, a)
			siblings[k.(uint32)] = true
		}

		switch a.Depth() {
		case 1:
			require.Zero(t, key.(uint32)&^TopMask)
		case 2:
			require.Zero(t, key.(uint32)&^MidMask)
		case 3:
			require.Zero(t, key.(uint32)&^LeafMask)
			leafKeys[key.(uint32)]++
		default:
			t.Fatalf("row at depth %d", a.Depth())
		}
		return false
	})
	for k, c := range leafKeys {
		require.Equal(t, 1, c, "leaf key %x", k)
	}
}

func BenchmarkAddOperation(b *testing.B) {
	dataset := generateDataset(datasetSize)
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		tree := NewTree(DefaultHeaders)
		for _, r := range dataset {
			tree.AddOperation(r.id, r.path, float64(n))
		}
	}
}

func BenchmarkMatchRecursive(b *testing.B) {
	tree := NewTree(DefaultHeaders)
	for _, r := range generateDataset(datasetSize) {
		tree.AddOperation(r.id, r.path, 1)
	}
	start := tree.Index(0, ColumnLabel, Address{})
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		tree.Match(start, RoleDisplay, fmt.Sprintf("%x*", n%16), AllHits, MatchOptions{
			Mode:      MatchWildcard,
			Recursive: true,
		})
	}
}
