// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package state

import (
	"errors"
	"fmt"

	"github.com/gogpu/tegra"
	"github.com/gogpu/tegra/transfer"
	"github.com/gogpu/wgpu/hal"
)

// ErrBadBox is returned by Map for an empty or negative region.
var ErrBadBox = errors.New("state: invalid transfer box")

// uploadAlignment is the offset alignment of unmapped write data.
const uploadAlignment = 4

// Resources maps resource regions to CPU staging memory. Transfers come
// from the context's transfer pool; written data is handed to the
// context's stream uploader on Unmap.
type Resources struct {
	ctx    *tegra.Context
	mapped int
}

func initResource(ctx *tegra.Context) {
	ctx.Bind(KeyResource, &Resources{ctx: ctx})
}

// Map starts a transfer of box at mip level of resource. stride is the
// byte size of one row; the staging buffer covers the whole box.
func (r *Resources) Map(resource any, level uint32, usage transfer.MapFlags, box transfer.Box, stride uint32) (*transfer.Transfer, error) {
	if box.Width <= 0 || box.Height <= 0 || box.Depth < 0 {
		return nil, fmt.Errorf("%w: %+v", ErrBadBox, box)
	}
	depth := max(box.Depth, 1)

	t, err := r.ctx.TransferPool().Alloc()
	if err != nil {
		return nil, fmt.Errorf("state: map: %w", err)
	}
	t.Resource = resource
	t.Level = level
	t.Usage = usage
	t.Box = box
	t.Stride = stride
	t.LayerStride = uint64(stride) * uint64(box.Height)
	t.Data = make([]byte, t.LayerStride*uint64(depth))
	r.mapped++

	r.ctx.Logger().Debug("state: map", "level", level, "usage", usage, "bytes", len(t.Data))
	return t, nil
}

// Unmap ends a transfer. Data of a MapWrite transfer is uploaded and the
// destination buffer and offset are returned; otherwise the buffer is nil.
// The transfer is freed in both cases.
func (r *Resources) Unmap(t *transfer.Transfer) (hal.Buffer, uint64, error) {
	defer func() {
		r.ctx.TransferPool().Free(t)
		r.mapped--
	}()

	if t.Usage&transfer.MapWrite == 0 || len(t.Data) == 0 {
		return nil, 0, nil
	}
	buf, off, err := r.ctx.StreamUploader().Upload(t.Data, uploadAlignment)
	if err != nil {
		return nil, 0, fmt.Errorf("state: unmap: %w", err)
	}
	return buf, off, nil
}

// Mapped returns the number of transfers mapped and not yet unmapped.
func (r *Resources) Mapped() int { return r.mapped }
