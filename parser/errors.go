// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package parser

import "github.com/pkg/errors"

var (
	// ErrFileNameEmpty indicates that no file name was given.
	ErrFileNameEmpty = errors.New("file name is empty")

	// ErrFileOpen indicates that the file could not be opened.
	ErrFileOpen = errors.New("file open error")

	// ErrFileNotCorrect indicates a malformed line.
	ErrFileNotCorrect = errors.New("file isn't correct")
)

// LineError reports the line a parse failure happened on.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return errors.Wrapf(e.Err, "line %d", e.Line).Error()
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Cause lets errors.Cause reach the sentinel.
func (e *LineError) Cause() error {
	return e.Err
}
