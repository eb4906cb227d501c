// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package keytree

// Masks selecting each level's byte of a packed identifier. The sub-keys keep
// their bit position so keys of every level live in the same 24-bit space.
const (
	TopMask  uint32 = 0xFF0000
	MidMask  uint32 = 0x00FF00
	LeafMask uint32 = 0x0000FF
)

// Level is the depth of a content row: top level rows are children of the
// root, leaves are two levels below them.
type Level int

const (
	LevelTop Level = iota
	LevelMid
	LevelLeaf

	numLevels = 3
)

func (l Level) String() string {
	switch l {
	case LevelTop:
		return "top"
	case LevelMid:
		return "mid"
	case LevelLeaf:
		return "leaf"
	default:
		return "unknown"
	}
}

// SubKeys holds the three masked fragments of a packed identifier.
type SubKeys struct {
	Top  uint32
	Mid  uint32
	Leaf uint32
}

// DecodeKey splits a packed identifier into its top, mid and leaf sub-keys.
func DecodeKey(id uint32) SubKeys {
	return SubKeys{
		Top:  id & TopMask,
		Mid:  id & MidMask,
		Leaf: id & LeafMask,
	}
}

// At returns the sub-key for the given level.
func (k SubKeys) At(l Level) uint32 {
	switch l {
	case LevelTop:
		return k.Top
	case LevelMid:
		return k.Mid
	default:
		return k.Leaf
	}
}

// Pack recombines the sub-keys into an identifier.
func (k SubKeys) Pack() uint32 {
	return k.Top | k.Mid | k.Leaf
}
