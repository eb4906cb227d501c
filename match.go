// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package keytree

import (
	"strings"
)

// AllHits asks Match for every matching row.
const AllHits = -1

// MatchMode selects the predicate applied to each visited cell.
type MatchMode int

const (
	// MatchExactly compares the cell value natively with the needle.
	MatchExactly MatchMode = 0
	// MatchContains reports cells whose text contains the needle.
	MatchContains MatchMode = 1
	// MatchStartsWith reports cells whose text starts with the needle.
	MatchStartsWith MatchMode = 2
	// MatchEndsWith reports cells whose text ends with the needle.
	MatchEndsWith MatchMode = 3
	// MatchRegExp reports cells whose whole text matches the expression.
	MatchRegExp MatchMode = 4
	// MatchWildcard reports cells whose whole text matches the glob.
	MatchWildcard MatchMode = 5
	// MatchFixedString reports cells whose text equals the needle.
	MatchFixedString MatchMode = 8
)

func (m MatchMode) String() string {
	switch m {
	case MatchExactly:
		return "exact"
	case MatchContains:
		return "contains"
	case MatchStartsWith:
		return "prefix"
	case MatchEndsWith:
		return "suffix"
	case MatchRegExp:
		return "regexp"
	case MatchWildcard:
		return "wildcard"
	case MatchFixedString:
		return "fixed"
	default:
		return "contains"
	}
}

// ParseMatchMode maps a mode name as printed by String back to its mode.
func ParseMatchMode(name string) (MatchMode, bool) {
	for _, m := range []MatchMode{MatchExactly, MatchContains, MatchStartsWith, MatchEndsWith, MatchRegExp, MatchWildcard, MatchFixedString} {
		if strings.EqualFold(m.String(), name) {
			return m, true
		}
	}
	return MatchContains, false
}

// MatchFlags is the packed form of MatchOptions: the low nibble carries the
// mode and the remaining bits the boolean options.
type MatchFlags uint32

const (
	MatchModeMask      MatchFlags = 0x0F
	MatchCaseSensitive MatchFlags = 0x10
	MatchWrap          MatchFlags = 0x20
	MatchRecursive     MatchFlags = 0x40
)

// Options decodes the packed flags.
func (f MatchFlags) Options() MatchOptions {
	return MatchOptions{
		Mode:          MatchMode(f & MatchModeMask),
		CaseSensitive: f&MatchCaseSensitive != 0,
		Wrap:          f&MatchWrap != 0,
		Recursive:     f&MatchRecursive != 0,
	}
}

// MatchOptions configures Match.
type MatchOptions struct {
	Mode          MatchMode
	CaseSensitive bool // text modes only; false folds case
	Recursive     bool // descend into the children of every visited row
	Wrap          bool // continue from the first sibling up to the start row
}

// Flags packs the options.
func (o MatchOptions) Flags() MatchFlags {
	f := MatchFlags(o.Mode) & MatchModeMask
	if o.CaseSensitive {
		f |= MatchCaseSensitive
	}
	if o.Wrap {
		f |= MatchWrap
	}
	if o.Recursive {
		f |= MatchRecursive
	}
	return f
}

// query is the needle of one Match call. Its text form is computed on first
// use by a text mode and shared by the whole recursion.
type query struct {
	value    any
	opts     MatchOptions
	text     string
	haveText bool
	folded   string
	patterns *patternCache
	t        *Tree
}

func (q *query) needle() string {
	if !q.haveText {
		q.text = ValueText(q.value)
		q.folded = strings.ToLower(q.text)
		q.haveText = true
	}
	if q.opts.CaseSensitive {
		return q.text
	}
	return q.folded
}

func (q *query) matches(v any) bool {
	if q.opts.Mode == MatchExactly {
		return ValuesEqual(q.value, v)
	}
	text := q.needle()
	cell := ValueText(v)
	switch q.opts.Mode {
	case MatchRegExp, MatchWildcard:
		re, err := q.patterns.get(q.text, q.opts.Mode == MatchWildcard, q.opts.CaseSensitive)
		if err != nil {
			q.t.log.Debug("match pattern rejected", "mode", q.opts.Mode.String(), "err", err)
			return false
		}
		return re.MatchString(cell)
	}
	if !q.opts.CaseSensitive {
		cell = strings.ToLower(cell)
	}
	switch q.opts.Mode {
	case MatchStartsWith:
		return strings.HasPrefix(cell, text)
	case MatchEndsWith:
		return strings.HasSuffix(cell, text)
	case MatchFixedString:
		return cell == text
	default:
		return strings.Contains(cell, text)
	}
}

// Match searches the column of start for cells satisfying opts, beginning at
// start's row and scanning its siblings. At most hits addresses are returned
// unless hits is AllHits. With Recursive set the subtree of every visited row
// is searched as well, anchored at the row's column 0 address. Match never
// fails; no hits yields an empty result.
func (t *Tree) Match(start Address, role Role, value any, hits int, opts MatchOptions) []Address {
	q := &query{
		value:    value,
		opts:     opts,
		patterns: t.patterns,
		t:        t,
	}
	return t.match(start, role, q, hits)
}

func (t *Tree) match(start Address, role Role, q *query, hits int) []Address {
	result := make([]Address, 0)
	allHits := hits == AllHits
	p := t.Parent(start)
	from := start.Row()
	to := t.RowCount(p)

	passes := 1
	if q.opts.Wrap {
		passes = 2
	}
	for i := 0; i < passes; i++ {
		for r := from; r < to && (allHits || len(result) < hits); r++ {
			idx := t.Index(r, start.Column(), p)
			if !idx.IsValid() {
				continue
			}
			// descend through column 0 whatever column is searched
			anchor := t.Index(r, 0, p)

			if q.matches(t.Data(idx, role)) {
				result = append(result, idx)
			}
			if q.opts.Recursive && t.HasChildren(anchor) {
				remaining := AllHits
				if !allHits {
					remaining = hits - len(result)
				}
				result = append(result, t.match(t.Index(0, idx.Column(), anchor), role, q, remaining)...)
			}
		}
		// wrap around to the rows before start
		from = 0
		to = start.Row()
	}
	return result
}
