// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package tegra

import (
	"errors"
	"fmt"

	"github.com/gogpu/tegra/stream"
)

var (
	// ErrNoHostMemory means a host-side record could not be allocated.
	ErrNoHostMemory = errors.New("tegra: out of host memory")

	// ErrNilDevice is returned when creating a screen without a device or queue.
	ErrNilDevice = errors.New("tegra: device is nil")

	// ErrNilProvider is returned by NewScreenFromProvider for a nil provider.
	ErrNilProvider = errors.New("tegra: device provider is nil")

	// ErrNoHAL is returned when a device provider does not expose hal types.
	ErrNoHAL = errors.New("tegra: provider does not expose HAL device and queue")

	// ErrUploader means the buffer-upload service could not be created.
	ErrUploader = errors.New("tegra: upload service creation failed")

	// ErrContextDestroyed is returned by operations on a destroyed context.
	ErrContextDestroyed = errors.New("tegra: context destroyed")

	// ErrScreenDestroyed is returned when creating a context on a destroyed screen.
	ErrScreenDestroyed = errors.New("tegra: screen destroyed")

	// ErrContextsAlive is returned by Screen.Destroy while contexts exist.
	ErrContextsAlive = errors.New("tegra: screen has live contexts")
)

// EngineError reports a stream failure on one engine.
type EngineError struct {
	Engine Engine
	Op     string // "create" or "flush"
	Code   int    // negative errno-style code, see stream.Code
	Err    error
}

func newEngineError(e Engine, op string, err error) *EngineError {
	return &EngineError{Engine: e, Op: op, Code: stream.Code(err), Err: err}
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("tegra: %s %s channel: %v (code %d)", e.Op, e.Engine, e.Err, e.Code)
}

func (e *EngineError) Unwrap() error { return e.Err }
