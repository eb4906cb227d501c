// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package keytree

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/exp/constraints"
)

// number is a numeric cell value widened for comparison. Unsigned values keep
// their integer form so 24-bit keys never round through a float.
type number struct {
	f       float64
	u       uint64
	i       int64
	kind    numKind
	integer bool
}

type numKind int

const (
	numNone numKind = iota
	numUnsigned
	numSigned
	numFloat
)

func fromUnsigned[T constraints.Unsigned](v T) number {
	return number{u: uint64(v), f: float64(v), kind: numUnsigned, integer: true}
}

func fromSigned[T constraints.Signed](v T) number {
	return number{i: int64(v), f: float64(v), kind: numSigned, integer: true}
}

func fromFloat[T constraints.Float](v T) number {
	return number{f: float64(v), kind: numFloat}
}

func asNumber(v any) (number, bool) {
	switch x := v.(type) {
	case uint8:
		return fromUnsigned(x), true
	case uint16:
		return fromUnsigned(x), true
	case uint32:
		return fromUnsigned(x), true
	case uint64:
		return fromUnsigned(x), true
	case uint:
		return fromUnsigned(x), true
	case int8:
		return fromSigned(x), true
	case int16:
		return fromSigned(x), true
	case int32:
		return fromSigned(x), true
	case int64:
		return fromSigned(x), true
	case int:
		return fromSigned(x), true
	case float32:
		return fromFloat(x), true
	case float64:
		return fromFloat(x), true
	}
	return number{}, false
}

func compareOrdered[T constraints.Ordered](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (a number) compare(b number) int {
	switch {
	case a.kind == numUnsigned && b.kind == numUnsigned:
		return compareOrdered(a.u, b.u)
	case a.kind == numSigned && b.kind == numSigned:
		return compareOrdered(a.i, b.i)
	case a.integer && b.integer:
		// mixed sign: a negative signed value is below any unsigned one
		if a.kind == numSigned && a.i < 0 {
			return -1
		}
		if b.kind == numSigned && b.i < 0 {
			return 1
		}
		return compareOrdered(a.asUint(), b.asUint())
	}
	return compareOrdered(a.f, b.f)
}

func (a number) asUint() uint64 {
	if a.kind == numSigned {
		return uint64(a.i)
	}
	return a.u
}

// ValuesEqual compares two cell values natively. Numbers of different Go
// types compare by value; other comparable types use ==.
func ValuesEqual(a, b any) bool {
	na, okA := asNumber(a)
	nb, okB := asNumber(b)
	if okA && okB {
		return na.compare(nb) == 0
	}
	if okA != okB {
		return false
	}
	defer func() {
		// uncomparable dynamic types (slices, maps) are never equal
		_ = recover()
	}()
	return a == b
}

// CompareValues orders two cell values: nil first, then numbers by value,
// then everything else by its text form.
func CompareValues(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	na, okA := asNumber(a)
	nb, okB := asNumber(b)
	switch {
	case okA && okB:
		return na.compare(nb)
	case okA:
		return -1
	case okB:
		return 1
	}
	return strings.Compare(ValueText(a), ValueText(b))
}

// ValueText converts a cell value to the text used by the string based match
// modes.
func ValueText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case bool:
		return strconv.FormatBool(x)
	case fmt.Stringer:
		return x.String()
	}
	if n, ok := asNumber(v); ok {
		if n.kind == numSigned {
			return strconv.FormatInt(n.i, 10)
		}
		return strconv.FormatUint(n.u, 10)
	}
	return fmt.Sprint(v)
}
