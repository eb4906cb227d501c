// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package keytree

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/cespare/xxhash"
)

// Digest fingerprints the header row, the shape of the tree and every cell.
// Two trees with equal digests hold the same rows in the same order with the
// same values.
func (t *Tree) Digest() uint64 {
	h := xxhash.New()
	var buf [8]byte
	writeInt := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = h.Write(buf[:])
	}
	writeCells := func(n *Node) {
		writeInt(uint64(len(n.data)))
		for _, v := range n.data {
			writeCell(h, writeInt, v)
		}
	}

	writeCells(t.root)
	t.Walk(func(a Address, n *Node) bool {
		writeInt(uint64(a.Depth()))
		writeInt(uint64(n.ChildCount()))
		writeCells(n)
		return false
	})
	return h.Sum64()
}

// writeCell tags each value with its type so 1, 1.0 and "1" hash apart.
func writeCell(w io.Writer, writeInt func(uint64), v any) {
	switch x := v.(type) {
	case nil:
		_, _ = w.Write([]byte{0})
	case string:
		_, _ = w.Write([]byte{1})
		writeInt(uint64(len(x)))
		_, _ = w.Write([]byte(x))
	case float64:
		_, _ = w.Write([]byte{2})
		writeInt(math.Float64bits(x))
	case uint32:
		_, _ = w.Write([]byte{3})
		writeInt(uint64(x))
	default:
		s := fmt.Sprintf("%T:%v", v, v)
		_, _ = w.Write([]byte{4})
		writeInt(uint64(len(s)))
		_, _ = w.Write([]byte(s))
	}
}
