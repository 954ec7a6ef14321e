// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package tegra

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/tegra/stream"
	"github.com/gogpu/tegra/transfer"
	"github.com/gogpu/wgpu/hal"
)

// Screen is the session factory. It owns the device and queue, the parent
// transfer pool, the stream factory and the configuration shared by every
// context it creates.
//
// Screen is safe for concurrent use. Contexts it creates are not.
type Screen struct {
	device hal.Device
	queue  hal.Queue
	logger *slog.Logger

	capacity     int
	streams      stream.Factory
	halStreams   *stream.HALFactory // Non-nil when the screen owns the factory
	uploaders    UploaderFactory
	allocator    Allocator
	initializers []StateInitializer
	transfers    *transfer.Pool

	mu        sync.Mutex
	contexts  int
	destroyed bool
}

// NewScreen creates a screen on device and queue.
func NewScreen(device hal.Device, queue hal.Queue, opts ...ScreenOption) (*Screen, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = Logger()
	}

	s := &Screen{
		device:       device,
		queue:        queue,
		logger:       o.logger,
		capacity:     o.streamCapacity,
		streams:      o.streams,
		uploaders:    o.uploaders,
		allocator:    o.allocator,
		initializers: o.initializers,
		transfers:    transfer.NewPool(o.transferLimit),
	}
	if s.streams == nil {
		s.halStreams = stream.NewHALFactory(device, queue)
		s.streams = s.halStreams
	}

	s.logger.Info("tegra: screen created",
		"screen", fmt.Sprintf("%p", s),
		"stream_capacity", s.capacity,
		"state_initializers", len(s.initializers))
	return s, nil
}

// NewScreenFromProvider creates a screen sharing the device of a host
// application. The provider must implement HalDevice() any and HalQueue() any
// returning hal.Device and hal.Queue.
func NewScreenFromProvider(provider gpucontext.DeviceProvider, opts ...ScreenOption) (*Screen, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is %T", ErrNoHAL, hp.HalDevice())
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is %T", ErrNoHAL, hp.HalQueue())
	}
	s, err := NewScreen(device, queue, opts...)
	if err != nil {
		return nil, err
	}
	info := provider.AdapterInfo()
	s.logger.Debug("tegra: screen shares host device", "adapter", info.Name, "type", info.Type)
	return s, nil
}

// Device returns the screen's device.
func (s *Screen) Device() hal.Device { return s.device }

// Queue returns the screen's queue.
func (s *Screen) Queue() hal.Queue { return s.queue }

// Logger returns the screen's logger.
func (s *Screen) Logger() *slog.Logger { return s.logger }

// StreamCapacity returns the byte capacity of each channel's stream.
func (s *Screen) StreamCapacity() int { return s.capacity }

// TransferPool returns the parent transfer pool.
func (s *Screen) TransferPool() *transfer.Pool { return s.transfers }

// Contexts returns the number of live contexts.
func (s *Screen) Contexts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contexts
}

// acquireContext reserves a context slot.
func (s *Screen) acquireContext() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return ErrScreenDestroyed
	}
	s.contexts++
	return nil
}

func (s *Screen) releaseContext() {
	s.mu.Lock()
	s.contexts--
	s.mu.Unlock()
}

// Destroy releases the parent transfer pool and, if the screen created it,
// the stream factory with its syncpoints. Fences still held by callers
// stop being waitable. It fails with ErrContextsAlive while contexts exist.
// Destroying a destroyed screen has no effect.
func (s *Screen) Destroy() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return nil
	}
	if s.contexts > 0 {
		return fmt.Errorf("%w: %d", ErrContextsAlive, s.contexts)
	}
	if err := s.transfers.Destroy(); err != nil {
		return fmt.Errorf("tegra: destroy screen: %w", err)
	}
	if s.halStreams != nil {
		s.halStreams.Destroy()
	}
	s.destroyed = true
	s.logger.Info("tegra: screen destroyed", "screen", fmt.Sprintf("%p", s))
	return nil
}
