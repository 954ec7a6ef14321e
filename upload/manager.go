// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package upload implements the buffer-upload service: a linear
// suballocator that streams vertex, index and constant data into large
// device buffers.
//
// A Manager hands out (buffer, offset) ranges from its current buffer and
// switches to a fresh buffer when the current one is full. Exhausted
// buffers stay alive until Destroy, since submitted work may still read
// from them.
package upload

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// DefaultSize is the size of each upload buffer created by NewDefault.
const DefaultSize = 1024 * 1024

// DefaultUsage covers streaming vertex/index data and constant data.
var DefaultUsage = gputypes.BufferUsageVertex |
	gputypes.BufferUsageIndex |
	gputypes.BufferUsageUniform |
	gputypes.BufferUsageCopyDst

// copyAlignment is the granularity of queue writes.
const copyAlignment = 4

// Upload errors.
var (
	// ErrDestroyed is returned when uploading through a destroyed manager.
	ErrDestroyed = errors.New("upload: manager destroyed")

	// ErrBadAlignment is returned for an alignment that is not a power of two.
	ErrBadAlignment = errors.New("upload: alignment must be a power of two")

	// ErrNilDevice is returned when creating a manager without a device or queue.
	ErrNilDevice = errors.New("upload: device is nil")
)

// Manager is a streaming upload suballocator.
//
// Manager is not safe for concurrent use.
type Manager struct {
	device hal.Device
	queue  hal.Queue
	size   uint64
	usage  gputypes.BufferUsage

	cur     hal.Buffer
	curSize uint64
	offset  uint64
	retired []hal.Buffer

	buffers   int
	uploaded  uint64
	destroyed bool
}

// New creates a manager whose buffers are at least size bytes with the
// given usage. The first buffer is allocated immediately so that a device
// out of memory is reported here rather than on first use.
func New(device hal.Device, queue hal.Queue, size uint64, usage gputypes.BufferUsage) (*Manager, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	m := &Manager{
		device: device,
		queue:  queue,
		size:   alignUp(size, copyAlignment),
		usage:  usage | gputypes.BufferUsageCopyDst,
	}
	if err := m.grow(m.size); err != nil {
		return nil, err
	}
	return m, nil
}

// NewDefault creates a manager with DefaultSize and DefaultUsage.
func NewDefault(device hal.Device, queue hal.Queue) (*Manager, error) {
	return New(device, queue, DefaultSize, DefaultUsage)
}

// Upload copies data into an upload buffer and returns the buffer and the
// byte offset the data starts at. Alignment 0 means copyAlignment.
// A failed write consumes no space.
func (m *Manager) Upload(data []byte, alignment uint64) (hal.Buffer, uint64, error) {
	if m.destroyed {
		return nil, 0, ErrDestroyed
	}
	if alignment == 0 {
		alignment = copyAlignment
	}
	if alignment&(alignment-1) != 0 {
		return nil, 0, fmt.Errorf("%w: %d", ErrBadAlignment, alignment)
	}
	if alignment < copyAlignment {
		alignment = copyAlignment
	}

	n := alignUp(uint64(len(data)), copyAlignment)
	off := alignUp(m.offset, alignment)
	if off+n > m.curSize {
		if err := m.grow(max(m.size, n)); err != nil {
			return nil, 0, err
		}
		off = 0
	}

	if uint64(len(data)) != n {
		padded := make([]byte, n)
		copy(padded, data)
		data = padded
	}
	if err := m.queue.WriteBuffer(m.cur, off, data); err != nil {
		return nil, 0, fmt.Errorf("upload: write %d bytes at %d: %w", n, off, err)
	}
	m.offset = off + n
	m.uploaded += n
	return m.cur, off, nil
}

// grow retires the current buffer and allocates a new one of size bytes.
func (m *Manager) grow(size uint64) error {
	buf, err := m.device.CreateBuffer(&hal.BufferDescriptor{
		Label: fmt.Sprintf("upload_%d", m.buffers),
		Size:  size,
		Usage: m.usage,
	})
	if err != nil {
		return fmt.Errorf("upload: create buffer (%d bytes): %w", size, err)
	}
	if m.cur != nil {
		m.retired = append(m.retired, m.cur)
	}
	m.cur = buf
	m.curSize = size
	m.offset = 0
	m.buffers++
	return nil
}

// Uploaded returns the number of bytes written so far, including padding.
func (m *Manager) Uploaded() uint64 { return m.uploaded }

// Buffers returns the number of buffers created so far.
func (m *Manager) Buffers() int { return m.buffers }

// Destroy releases every buffer. Destroying a destroyed manager has no effect.
func (m *Manager) Destroy() {
	if m.destroyed {
		return
	}
	m.destroyed = true
	for _, b := range m.retired {
		m.device.DestroyBuffer(b)
	}
	m.retired = nil
	if m.cur != nil {
		m.device.DestroyBuffer(m.cur)
		m.cur = nil
	}
}

func alignUp(v, a uint64) uint64 {
	return (v + a - 1) &^ (a - 1)
}
