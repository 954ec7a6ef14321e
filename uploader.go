// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package tegra

import (
	"github.com/gogpu/tegra/upload"
	"github.com/gogpu/wgpu/hal"
)

// Uploader is the buffer-upload service of a context. A context uses one
// Uploader for both streaming vertex/index data and constant data.
type Uploader interface {
	// Upload copies data into a device buffer and returns the buffer and
	// the offset of the data within it.
	Upload(data []byte, alignment uint64) (hal.Buffer, uint64, error)

	// Destroy releases the service. It is called exactly once, by
	// Context.Destroy or by a failed context creation.
	Destroy()
}

// UploaderFactory creates the upload service of a context.
type UploaderFactory func(ctx *Context) (Uploader, error)

// defaultUploaderFactory builds an upload.Manager on the screen's device.
func defaultUploaderFactory(ctx *Context) (Uploader, error) {
	m, err := upload.NewDefault(ctx.screen.device, ctx.screen.queue)
	if err != nil {
		return nil, err
	}
	return m, nil
}
