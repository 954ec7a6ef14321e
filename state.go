// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package tegra

// StateInitializer registers initial state into a new context: resource and
// surface handling, rasterizer, blend, sampler, depth/stencil, vertex and
// fragment stages, vertex-buffer bindings. Package state provides the
// default set.
//
// InitState runs once, at the end of context creation, and cannot fail
// the creation. Initializers that acquire resources register their release
// with Context.OnDestroy.
type StateInitializer interface {
	InitState(ctx *Context)
}

// StateInitFunc adapts a function to StateInitializer.
type StateInitFunc func(ctx *Context)

// InitState calls f(ctx).
func (f StateInitFunc) InitState(ctx *Context) { f(ctx) }

// Bind stores state under key, replacing any previous value.
func (c *Context) Bind(key string, v any) {
	if c.state == nil {
		c.state = make(map[string]any)
	}
	c.state[key] = v
}

// Lookup returns the state stored under key.
func (c *Context) Lookup(key string) (any, bool) {
	v, ok := c.state[key]
	return v, ok
}

// OnDestroy registers fn to run when the context is destroyed, before the
// transfer pool, upload service and channels are released. Functions run
// in reverse registration order.
func (c *Context) OnDestroy(fn func()) {
	c.cleanups = append(c.cleanups, fn)
}
