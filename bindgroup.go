// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// BindGroupDesc describes a bind group over declared graph resources.
// Entries name handles rather than realized objects, so a group can be
// declared before its inputs exist; realization resolves each handle
// against the frame's stores and binds the realized object.
type BindGroupDesc struct {
	Label   string
	Layout  hal.BindGroupLayout
	Entries []BindGroupEntry
}

// bindingKind discriminates BindGroupEntry variants.
type bindingKind uint8

const (
	bindingTexture bindingKind = iota + 1
	bindingSampler
	bindingBuffer
)

// BindGroupEntry binds one declared resource to a shader binding slot.
// Construct entries with BindTexture, BindSampler, or BindBuffer; the
// zero entry is invalid.
type BindGroupEntry struct {
	binding uint32
	kind    bindingKind
	texture TextureHandle
	sampler SamplerHandle
	buffer  BufferHandle
	offset  uint64
	size    uint64
}

// BindTexture binds the default view of a declared texture.
func BindTexture(binding uint32, h TextureHandle) BindGroupEntry {
	return BindGroupEntry{binding: binding, kind: bindingTexture, texture: h}
}

// BindSampler binds a declared sampler.
func BindSampler(binding uint32, h SamplerHandle) BindGroupEntry {
	return BindGroupEntry{binding: binding, kind: bindingSampler, sampler: h}
}

// BindBuffer binds a range of a declared buffer. A size of 0 binds the
// entire buffer from offset.
func BindBuffer(binding uint32, h BufferHandle, offset, size uint64) BindGroupEntry {
	return BindGroupEntry{binding: binding, kind: bindingBuffer, buffer: h, offset: offset, size: size}
}

// realizeBindGroup resolves desc's entries against the frame's realized
// stores and creates the device bind group. Runs during Realize, after
// every other kind has realized, so a handle that does not resolve is
// an authorship bug and panics. Device failure is an environment error,
// wrapped in ErrBindGroupRealize.
func (g *Graph) realizeBindGroup(device Device, desc *BindGroupDesc) (hal.BindGroup, error) {
	entries := make([]gputypes.BindGroupEntry, 0, len(desc.Entries))
	for _, e := range desc.Entries {
		switch e.kind {
		case bindingTexture:
			meta, ok := g.textures.Get(e.texture.id.Index)
			if !ok {
				panic(fmt.Sprintf("framegraph: bind group %q references unrealized texture %s",
					desc.Label, e.texture))
			}
			if meta.Data.View == nil {
				panic(fmt.Sprintf("framegraph: bind group %q references texture %s which has no view",
					desc.Label, e.texture))
			}
			entries = append(entries, gputypes.BindGroupEntry{
				Binding: e.binding,
				Resource: gputypes.TextureViewBinding{
					TextureView: meta.Data.View.NativeHandle(),
				},
			})
		case bindingSampler:
			meta, ok := g.samplers.Get(e.sampler.id.Index)
			if !ok {
				panic(fmt.Sprintf("framegraph: bind group %q references unrealized sampler %s",
					desc.Label, e.sampler))
			}
			entries = append(entries, gputypes.BindGroupEntry{
				Binding: e.binding,
				Resource: gputypes.SamplerBinding{
					Sampler: meta.Data.NativeHandle(),
				},
			})
		case bindingBuffer:
			meta, ok := g.buffers.Get(e.buffer.id.Index)
			if !ok {
				panic(fmt.Sprintf("framegraph: bind group %q references unrealized buffer %s",
					desc.Label, e.buffer))
			}
			entries = append(entries, gputypes.BindGroupEntry{
				Binding: e.binding,
				Resource: gputypes.BufferBinding{
					Buffer: meta.Data.NativeHandle(),
					Offset: e.offset,
					Size:   e.size, // 0 = entire buffer
				},
			})
		default:
			panic(fmt.Sprintf("framegraph: bind group %q has a zero entry", desc.Label))
		}
	}

	bg, err := device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   desc.Label,
		Layout:  desc.Layout,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrBindGroupRealize, desc.Label, err)
	}
	return bg, nil
}
