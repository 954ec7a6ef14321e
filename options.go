// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package tegra

import (
	"log/slog"

	"github.com/gogpu/tegra/stream"
)

// DefaultStreamCapacity is the byte capacity of each channel's command stream.
const DefaultStreamCapacity = 32768

// ScreenOption configures a Screen during creation.
//
// Example:
//
//	// Default hal-backed streams and uploads
//	s, err := tegra.NewScreen(device, queue)
//
//	// Debug logging and the default state tables
//	s, err := tegra.NewScreen(device, queue,
//	    tegra.WithLogger(logger),
//	    tegra.WithStateInitializers(state.Defaults()...))
type ScreenOption func(*screenOptions)

// screenOptions holds optional configuration for Screen creation.
type screenOptions struct {
	logger         *slog.Logger
	streamCapacity int
	streams        stream.Factory
	uploaders      UploaderFactory
	allocator      Allocator
	initializers   []StateInitializer
	transferLimit  int
}

// defaultOptions returns the default screen options.
func defaultOptions() screenOptions {
	return screenOptions{
		logger:         nil, // Package logger at creation time
		streamCapacity: DefaultStreamCapacity,
		streams:        nil, // stream.HALFactory on the screen's device
		uploaders:      defaultUploaderFactory,
		allocator:      unboundedAllocator{},
	}
}

// WithLogger sets the logger of the screen and every context it creates.
// Nil selects the package logger (see SetLogger).
func WithLogger(l *slog.Logger) ScreenOption {
	return func(o *screenOptions) {
		o.logger = l
	}
}

// WithStreamCapacity sets the byte capacity of each channel's stream.
// Non-positive values are ignored.
func WithStreamCapacity(capacity int) ScreenOption {
	return func(o *screenOptions) {
		if capacity > 0 {
			o.streamCapacity = capacity
		}
	}
}

// WithStreamFactory replaces the hal-backed stream factory. The screen does
// not destroy a factory supplied this way.
func WithStreamFactory(f stream.Factory) ScreenOption {
	return func(o *screenOptions) {
		o.streams = f
	}
}

// WithUploaderFactory replaces the default upload service factory.
func WithUploaderFactory(f UploaderFactory) ScreenOption {
	return func(o *screenOptions) {
		if f != nil {
			o.uploaders = f
		}
	}
}

// WithAllocator sets the allocator accounting context, channel and fence
// records.
func WithAllocator(a Allocator) ScreenOption {
	return func(o *screenOptions) {
		if a != nil {
			o.allocator = a
		}
	}
}

// WithStateInitializers appends state initializers. They run in order at
// the end of every context creation.
func WithStateInitializers(inits ...StateInitializer) ScreenOption {
	return func(o *screenOptions) {
		o.initializers = append(o.initializers, inits...)
	}
}

// WithTransferItemLimit caps the number of live transfer objects across all
// contexts of the screen. Zero means unlimited.
func WithTransferItemLimit(n int) ScreenOption {
	return func(o *screenOptions) {
		o.transferLimit = n
	}
}
