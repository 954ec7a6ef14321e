// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package halnoop opens a device on the wgpu noop HAL backend.
// It is used by tests and by the tegractl demo, where no real GPU is needed
// but the full hal.Device / hal.Queue surface must be exercised.
package halnoop

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// ErrNoAdapter is returned when the noop instance exposes no adapter.
var ErrNoAdapter = errors.New("halnoop: no adapter")

// Device is an open noop device together with its queue.
type Device struct {
	Device hal.Device
	Queue  hal.Queue

	instance hal.Instance
}

// Open creates a noop instance and opens its first adapter with default limits.
func Open() (*Device, error) {
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("halnoop: create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("halnoop: open adapter: %w", err)
	}
	return &Device{
		Device:   openDev.Device,
		Queue:    openDev.Queue,
		instance: instance,
	}, nil
}

// Close destroys the device and the instance.
func (d *Device) Close() {
	if d == nil {
		return
	}
	if d.Device != nil {
		d.Device.Destroy()
		d.Device = nil
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
}
