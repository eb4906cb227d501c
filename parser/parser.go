// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package parser reads operation records of the form
//
//	<hex id>;<top>/<mid>/<leaf>;<value>
//
// and feeds them into a keytree.Tree.
package parser

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	fieldSeparator = ";"
	pathSeparator  = "/"

	minFields   = 3
	minSegments = 3

	maxID = 0xFFFFFF
)

// Record is one parsed line.
type Record struct {
	ID    uint32
	Path  []string
	Value float64
}

// ParseLine parses a single record. Fields past the third and path segments
// past the third are ignored. A value that is not a number reads as 0.
func ParseLine(line string) (Record, error) {
	fields := strings.Split(line, fieldSeparator)
	if len(fields) < minFields {
		return Record{}, errors.Wrapf(ErrFileNotCorrect, "%d fields", len(fields))
	}

	id, err := parseID(fields[0])
	if err != nil {
		return Record{}, err
	}

	path := strings.Split(fields[1], pathSeparator)
	if len(path) < minSegments {
		return Record{}, errors.Wrapf(ErrFileNotCorrect, "path %q has %d segments", fields[1], len(path))
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
	if err != nil {
		value = 0
	}
	return Record{ID: id, Path: path, Value: value}, nil
}

func parseID(field string) (uint32, error) {
	s := strings.TrimSpace(field)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	id, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, errors.Wrapf(ErrFileNotCorrect, "id %q", field)
	}
	if id > maxID {
		return 0, errors.Wrapf(ErrFileNotCorrect, "id %q wider than 24 bits", field)
	}
	return uint32(id), nil
}

// Parse reads records line by line and hands each to fn. It stops at the
// first malformed line or the first error returned by fn; records already
// handed over stay with the caller.
func Parse(r io.Reader, fn func(Record) error) error {
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		rec, err := ParseLine(strings.TrimSuffix(scanner.Text(), "\r"))
		if err != nil {
			return &LineError{Line: line, Err: err}
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return errors.WithStack(scanner.Err())
}

// ParseFile opens name and parses it with Parse.
func ParseFile(name string, fn func(Record) error) error {
	if name == "" {
		return ErrFileNameEmpty
	}
	f, err := os.Open(name)
	if err != nil {
		return errors.Wrapf(ErrFileOpen, "%s: %v", name, err)
	}
	defer f.Close()
	return Parse(f, fn)
}
