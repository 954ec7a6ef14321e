// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package stream

import (
	"errors"
	"fmt"
)

// Errno is a negative errno-style code describing a stream failure.
// The sentinel errors below are Errno values, so errors.Is works on
// wrapped errors and Code recovers the numeric value.
type Errno int

// Stream errors.
const (
	// ErrIO means the device rejected a submission.
	ErrIO Errno = -5

	// ErrNoMemory means host or device memory could not be allocated.
	ErrNoMemory Errno = -12

	// ErrDestroyed means the stream or its factory has been destroyed.
	ErrDestroyed Errno = -19

	// ErrInvalid means an argument was rejected, e.g. a capacity that is
	// not a positive multiple of WordSize.
	ErrInvalid Errno = -22

	// ErrFull means the pushed words exceed the remaining capacity.
	ErrFull Errno = -28
)

func (e Errno) Error() string {
	switch e {
	case ErrIO:
		return "stream: i/o error"
	case ErrNoMemory:
		return "stream: out of memory"
	case ErrDestroyed:
		return "stream: destroyed"
	case ErrInvalid:
		return "stream: invalid argument"
	case ErrFull:
		return "stream: no space left"
	default:
		return fmt.Sprintf("stream: errno %d", int(e))
	}
}

// Code returns the numeric code carried by err.
// It returns 0 for nil and ErrIO's code for errors carrying no Errno.
func Code(err error) int {
	if err == nil {
		return 0
	}
	var e Errno
	if errors.As(err, &e) {
		return int(e)
	}
	return int(ErrIO)
}
