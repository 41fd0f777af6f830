// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import "github.com/gogpu/wgpu/hal"

// Meta pairs a resource's declarative description with its realized form.
// Descriptor is nil for resources imported without one; Data is the
// GPU-side object or a token referring to it.
type Meta[D, R any] struct {
	Descriptor *D
	Data       R
}

// InitFunc constructs a resource once device access is available.
// Realization is synchronous: "deferred" describes when in the frame
// construction happens, not asynchronous execution.
type InitFunc[D, R any] func(Device) (Meta[D, R], error)

// Init describes how a declared resource comes into being: immediately
// (eager), or at realize time once device access exists (deferred).
// The zero Init is invalid; use Eager or Deferred.
type Init[D, R any] struct {
	eager bool
	meta  Meta[D, R]
	desc  *D
	fn    InitFunc[D, R]
}

// Eager wraps an already-available meta. Eagerly inserted data is treated
// as imported: the graph never destroys it at reset, since the caller
// realized it and keeps ownership.
func Eager[D, R any](meta Meta[D, R]) Init[D, R] {
	return Init[D, R]{eager: true, meta: meta}
}

// Deferred wraps an initializer invoked during realization. desc may
// carry the descriptor when it is known up front, making it available to
// DescriptorOf before the resource exists; pass nil when the initializer
// computes its own. Deferred results are graph-owned and are released at
// reset unless retained.
func Deferred[D, R any](desc *D, fn InitFunc[D, R]) Init[D, R] {
	if fn == nil {
		panic("framegraph: Deferred with nil initializer")
	}
	return Init[D, R]{desc: desc, fn: fn}
}

// TextureData is the realized form of a texture resource: the device
// texture plus its default view, created and destroyed together.
type TextureData struct {
	Texture hal.Texture
	View    hal.TextureView
}

// PipelineDesc carries the identifying information of a pipeline held by
// the graph. Compilation and ownership stay with the pipeline cache; the
// graph only labels what it holds.
type PipelineDesc struct {
	Label string
}
