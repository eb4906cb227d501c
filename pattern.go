// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package keytree

import (
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
)

const defaultPatternCacheSize = 128

type patternKey struct {
	text          string
	wildcard      bool
	caseSensitive bool
}

// patternCache memoizes compiled full-match expressions. A nil entry records
// a pattern that failed to compile.
type patternCache struct {
	cache *lru.Cache[patternKey, *regexp.Regexp]
}

func newPatternCache(size int) *patternCache {
	if size <= 0 {
		size = defaultPatternCacheSize
	}
	c, err := lru.New[patternKey, *regexp.Regexp](size)
	if err != nil {
		// only returned for a non-positive size
		panic(err)
	}
	return &patternCache{cache: c}
}

func (p *patternCache) get(text string, wildcard, caseSensitive bool) (*regexp.Regexp, error) {
	key := patternKey{text: text, wildcard: wildcard, caseSensitive: caseSensitive}
	if re, ok := p.cache.Get(key); ok {
		if re == nil {
			return nil, errBadPattern
		}
		return re, nil
	}
	re, err := compileFullMatch(text, wildcard, caseSensitive)
	p.cache.Add(key, re)
	return re, err
}

// Len returns the number of cached patterns.
func (p *patternCache) Len() int {
	return p.cache.Len()
}

var errBadPattern = errors.New("pattern does not compile")

func compileFullMatch(text string, wildcard, caseSensitive bool) (*regexp.Regexp, error) {
	expr := text
	if wildcard {
		expr = wildcardToRegexp(text)
	}
	prefix := "^(?:"
	if !caseSensitive {
		prefix = "(?i)" + prefix
	}
	re, err := regexp.Compile(prefix + expr + ")$")
	if err != nil {
		return nil, errors.Wrapf(errBadPattern, "%q: %v", text, err)
	}
	return re, nil
}

// wildcardToRegexp translates a shell style glob. '*' matches any run of
// characters, '?' a single character and [...] a set, negated by a leading
// '!' or '^'. Everything else is literal.
func wildcardToRegexp(glob string) string {
	var sb strings.Builder
	runes := []rune(glob)
	for i := 0; i < len(runes); i++ {
		switch c := runes[i]; c {
		case '*':
			sb.WriteString(".*")
		case '?':
			sb.WriteByte('.')
		case '[':
			end := closingBracket(runes, i)
			if end < 0 {
				sb.WriteString(`\[`)
				continue
			}
			sb.WriteByte('[')
			j := i + 1
			if runes[j] == '!' || runes[j] == '^' {
				sb.WriteByte('^')
				j++
			}
			for ; j < end; j++ {
				if runes[j] == '\\' || runes[j] == '[' || runes[j] == ']' {
					sb.WriteByte('\\')
				}
				sb.WriteRune(runes[j])
			}
			sb.WriteByte(']')
			i = end
		default:
			sb.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	return sb.String()
}

// closingBracket returns the index of the ']' closing the set opened at
// start, or -1. A ']' right after the opening (or its negation) is literal.
func closingBracket(runes []rune, start int) int {
	j := start + 1
	if j < len(runes) && (runes[j] == '!' || runes[j] == '^') {
		j++
	}
	if j < len(runes) && runes[j] == ']' {
		j++
	}
	for ; j < len(runes); j++ {
		if runes[j] == ']' {
			return j
		}
	}
	return -1
}
