// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import (
	"fmt"
	"slices"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Builder is the construction-time handle through which a frame's
// resources, bind groups, pipelines, and nodes are declared. A Builder
// is only valid during its frame's Building phase; every method panics
// once Realize has run.
//
// Declarations return handles immediately. GPU objects for New*
// declarations are created later, during Realize, so declaration order
// within a frame is free and device access is not needed while building.
type Builder struct {
	graph *Graph
}

// NewTexture declares a texture (with its default view) to be created
// during Realize. The descriptor is retained for DescriptorOf-style
// lookups by later declarations.
func (b *Builder) NewTexture(desc *hal.TextureDescriptor) TextureHandle {
	g := b.graph
	g.mustPhase(PhaseBuilding, "NewTexture")
	if desc == nil {
		panic("framegraph: NewTexture with nil descriptor")
	}
	index := g.alloc()
	g.textures.Insert(index, deferredTexture(desc))
	return handleOf[textureKind](ResourceID{Index: index})
}

// deferredTexture builds the Init that creates desc's texture and its
// default view on first device access.
func deferredTexture(desc *hal.TextureDescriptor) Init[hal.TextureDescriptor, TextureData] {
	return Deferred(desc, func(d Device) (Meta[hal.TextureDescriptor, TextureData], error) {
		var zero Meta[hal.TextureDescriptor, TextureData]
		tex, err := d.CreateTexture(desc)
		if err != nil {
			return zero, fmt.Errorf("create texture %q: %w", desc.Label, err)
		}
		view, err := d.CreateTextureView(tex, defaultViewDescriptor(desc))
		if err != nil {
			d.DestroyTexture(tex)
			return zero, fmt.Errorf("create default view for %q: %w", desc.Label, err)
		}
		return Meta[hal.TextureDescriptor, TextureData]{
			Descriptor: desc,
			Data:       TextureData{Texture: tex, View: view},
		}, nil
	})
}

// defaultViewDescriptor derives the whole-texture view: format and
// dimension inherited, all mip levels and array layers.
func defaultViewDescriptor(desc *hal.TextureDescriptor) *hal.TextureViewDescriptor {
	return &hal.TextureViewDescriptor{
		Label:     desc.Label + " (default view)",
		Format:    gputypes.TextureFormatUndefined,
		Dimension: gputypes.TextureViewDimensionUndefined,
		Aspect:    gputypes.TextureAspectAll,
	}
}

// NewBuffer declares a buffer to be created during Realize.
func (b *Builder) NewBuffer(desc *hal.BufferDescriptor) BufferHandle {
	g := b.graph
	g.mustPhase(PhaseBuilding, "NewBuffer")
	if desc == nil {
		panic("framegraph: NewBuffer with nil descriptor")
	}
	index := g.alloc()
	g.buffers.Insert(index, Deferred(desc, func(d Device) (Meta[hal.BufferDescriptor, hal.Buffer], error) {
		buf, err := d.CreateBuffer(desc)
		if err != nil {
			return Meta[hal.BufferDescriptor, hal.Buffer]{}, fmt.Errorf("create buffer %q: %w", desc.Label, err)
		}
		return Meta[hal.BufferDescriptor, hal.Buffer]{Descriptor: desc, Data: buf}, nil
	}))
	return handleOf[bufferKind](ResourceID{Index: index})
}

// NewSampler declares a sampler to be created during Realize.
func (b *Builder) NewSampler(desc *hal.SamplerDescriptor) SamplerHandle {
	g := b.graph
	g.mustPhase(PhaseBuilding, "NewSampler")
	if desc == nil {
		panic("framegraph: NewSampler with nil descriptor")
	}
	index := g.alloc()
	g.samplers.Insert(index, Deferred(desc, func(d Device) (Meta[hal.SamplerDescriptor, hal.Sampler], error) {
		s, err := d.CreateSampler(desc)
		if err != nil {
			return Meta[hal.SamplerDescriptor, hal.Sampler]{}, fmt.Errorf("create sampler %q: %w", desc.Label, err)
		}
		return Meta[hal.SamplerDescriptor, hal.Sampler]{Descriptor: desc, Data: s}, nil
	}))
	return handleOf[samplerKind](ResourceID{Index: index})
}

// ImportTexture wraps an externally owned texture into the frame. The
// graph never destroys imported objects; the host keeps ownership. The
// entry carries no descriptor.
func (b *Builder) ImportTexture(data TextureData) TextureHandle {
	g := b.graph
	g.mustPhase(PhaseBuilding, "ImportTexture")
	if data.Texture == nil {
		panic("framegraph: ImportTexture with nil texture")
	}
	index := g.alloc()
	g.textures.Insert(index, Eager(Meta[hal.TextureDescriptor, TextureData]{Data: data}))
	return handleOf[textureKind](ResourceID{Index: index})
}

// ImportBuffer wraps an externally owned buffer into the frame.
func (b *Builder) ImportBuffer(buf hal.Buffer) BufferHandle {
	g := b.graph
	g.mustPhase(PhaseBuilding, "ImportBuffer")
	if buf == nil {
		panic("framegraph: ImportBuffer with nil buffer")
	}
	index := g.alloc()
	g.buffers.Insert(index, Eager(Meta[hal.BufferDescriptor, hal.Buffer]{Data: buf}))
	return handleOf[bufferKind](ResourceID{Index: index})
}

// ImportPipeline wraps a compiled pipeline, usually obtained from a
// specializer cache, into the frame. The cache keeps ownership and
// release duties; the graph only tracks the handle.
func (b *Builder) ImportPipeline(label string, p hal.RenderPipeline) PipelineHandle {
	g := b.graph
	g.mustPhase(PhaseBuilding, "ImportPipeline")
	if p == nil {
		panic("framegraph: ImportPipeline with nil pipeline")
	}
	index := g.alloc()
	g.pipelines.Insert(index, Eager(Meta[PipelineDesc, hal.RenderPipeline]{
		Descriptor: &PipelineDesc{Label: label},
		Data:       p,
	}))
	return handleOf[pipelineKind](ResourceID{Index: index})
}

// NewBindGroup declares a bind group over previously declared resources,
// to be created during Realize after its inputs exist. The entries name
// graph handles; resolution to device bindings happens at realization.
func (b *Builder) NewBindGroup(label string, layout hal.BindGroupLayout, entries ...BindGroupEntry) BindGroupHandle {
	g := b.graph
	g.mustPhase(PhaseBuilding, "NewBindGroup")
	if layout == nil {
		panic("framegraph: NewBindGroup with nil layout")
	}
	index := g.alloc()
	desc := &BindGroupDesc{Label: label, Layout: layout, Entries: entries}
	g.bindGroups.Insert(index, Deferred(desc, func(d Device) (Meta[BindGroupDesc, hal.BindGroup], error) {
		bg, err := g.realizeBindGroup(d, desc)
		if err != nil {
			return Meta[BindGroupDesc, hal.BindGroup]{}, err
		}
		return Meta[BindGroupDesc, hal.BindGroup]{Descriptor: desc, Data: bg}, nil
	}))
	return handleOf[bindGroupKind](ResourceID{Index: index})
}

// TextureDescriptor looks up the descriptor a texture was declared
// with, realized or not. Absent for imports, which carry none.
func (b *Builder) TextureDescriptor(h TextureHandle) (*hal.TextureDescriptor, bool) {
	b.graph.mustPhase(PhaseBuilding, "TextureDescriptor")
	return b.graph.textures.DescriptorOf(h.id.Index)
}

// BufferDescriptor looks up the descriptor a buffer was declared with.
func (b *Builder) BufferDescriptor(h BufferHandle) (*hal.BufferDescriptor, bool) {
	b.graph.mustPhase(PhaseBuilding, "BufferDescriptor")
	return b.graph.buffers.DescriptorOf(h.id.Index)
}

// SamplerDescriptor looks up the descriptor a sampler was declared with.
func (b *Builder) SamplerDescriptor(h SamplerHandle) (*hal.SamplerDescriptor, bool) {
	b.graph.mustPhase(PhaseBuilding, "SamplerDescriptor")
	return b.graph.samplers.DescriptorOf(h.id.Index)
}

// RetainTexture marks a declared texture to survive the frame boundary
// under label, claimable next frame through RetainedTexture.
func (b *Builder) RetainTexture(h TextureHandle, label string) {
	b.graph.mustPhase(PhaseBuilding, "RetainTexture")
	b.graph.textures.MarkRetain(h.id.Index, label)
}

// RetainBuffer marks a declared buffer to survive the frame boundary
// under label.
func (b *Builder) RetainBuffer(h BufferHandle, label string) {
	b.graph.mustPhase(PhaseBuilding, "RetainBuffer")
	b.graph.buffers.MarkRetain(h.id.Index, label)
}

// RetainedTexture declares a texture that persists across frames under
// label: it claims last frame's retained texture when one exists and
// its descriptor still matches, and declares a fresh one otherwise
// (cold start, or a resize that changed the descriptor). Either way the
// result is re-marked, so the label stays live as long as it is
// declared every frame.
func (b *Builder) RetainedTexture(label string, desc *hal.TextureDescriptor) TextureHandle {
	g := b.graph
	g.mustPhase(PhaseBuilding, "RetainedTexture")
	if desc == nil {
		panic("framegraph: RetainedTexture with nil descriptor")
	}
	index := g.alloc()

	if ent, ok := g.textures.lastFrame[label]; ok && retainCompatible(ent.meta.Descriptor, desc) {
		ent, _ = g.textures.takeRetained(label)
		g.textures.adopt(index, ent)
		Logger().Debug("framegraph: reclaimed retained texture",
			"label", label, "index", index)
	} else {
		// An incompatible leftover stays put and ages out at reset,
		// when a device is on hand to release it.
		g.textures.Insert(index, deferredTexture(desc))
	}

	g.textures.MarkRetain(index, label)
	return handleOf[textureKind](ResourceID{Index: index})
}

// RetainedBuffer is RetainedTexture for buffers: claim-or-create under
// a stable label, re-marked every frame it is declared.
func (b *Builder) RetainedBuffer(label string, desc *hal.BufferDescriptor) BufferHandle {
	g := b.graph
	g.mustPhase(PhaseBuilding, "RetainedBuffer")
	if desc == nil {
		panic("framegraph: RetainedBuffer with nil descriptor")
	}
	index := g.alloc()

	if ent, ok := g.buffers.lastFrame[label]; ok && retainCompatibleBuffer(ent.meta.Descriptor, desc) {
		ent, _ = g.buffers.takeRetained(label)
		g.buffers.adopt(index, ent)
		Logger().Debug("framegraph: reclaimed retained buffer",
			"label", label, "index", index)
	} else {
		g.buffers.Insert(index, Deferred(desc, func(d Device) (Meta[hal.BufferDescriptor, hal.Buffer], error) {
			buf, err := d.CreateBuffer(desc)
			if err != nil {
				return Meta[hal.BufferDescriptor, hal.Buffer]{}, fmt.Errorf("create buffer %q: %w", desc.Label, err)
			}
			return Meta[hal.BufferDescriptor, hal.Buffer]{Descriptor: desc, Data: buf}, nil
		}))
	}

	g.buffers.MarkRetain(index, label)
	return handleOf[bufferKind](ResourceID{Index: index})
}

// retainCompatible reports whether a retained texture can stand in for
// a fresh declaration of desc. Labels may differ; everything else must
// match, so a resize or format change falls back to fresh creation.
func retainCompatible(prev, next *hal.TextureDescriptor) bool {
	if prev == nil || next == nil {
		return false
	}
	return prev.Size == next.Size &&
		prev.MipLevelCount == next.MipLevelCount &&
		prev.SampleCount == next.SampleCount &&
		prev.Dimension == next.Dimension &&
		prev.Format == next.Format &&
		prev.Usage == next.Usage &&
		slices.Equal(prev.ViewFormats, next.ViewFormats)
}

// retainCompatibleBuffer is retainCompatible for buffer descriptors.
func retainCompatibleBuffer(prev, next *hal.BufferDescriptor) bool {
	if prev == nil || next == nil {
		return false
	}
	a, b := *prev, *next
	a.Label, b.Label = "", ""
	return a == b
}

// AddNode registers a node with its declared footprint. Nodes run in
// registration order during Execute. deps is sealed here; nil declares
// an empty footprint (legal for nodes that only use the device and
// queue). Write declarations in deps advance their slots' version
// watermarks. Every declared ID must belong to this frame.
func (b *Builder) AddNode(deps *Dependencies, run func(*NodeContext)) {
	g := b.graph
	g.mustPhase(PhaseBuilding, "AddNode")
	if run == nil {
		panic("framegraph: AddNode with nil closure")
	}
	if deps != nil {
		for id, class := range deps.reads {
			if !g.hasDeclared(class, id.Index) {
				panic(fmt.Sprintf("framegraph: AddNode: read of undeclared %s %s", class, id))
			}
		}
		for id, class := range deps.writes {
			if !g.hasDeclared(class, id.Index) {
				panic(fmt.Sprintf("framegraph: AddNode: write of undeclared %s %s", class, id))
			}
			g.bumpGenFor(class, id)
		}
		for id := range deps.bindGroups {
			if !g.bindGroups.has(id.Index) {
				panic(fmt.Sprintf("framegraph: AddNode: use of undeclared bind group %s", id))
			}
		}
		deps.seal()
	}
	g.nodes = append(g.nodes, node{deps: deps, run: run})
}

// View returns the per-view settings the frame was begun with. Absent
// when Begin received nil.
func (b *Builder) View() (ViewSettings, bool) {
	return b.graph.View()
}

// Shared looks up a process-wide singleton published on the graph.
func (b *Builder) Shared(key string) (any, bool) {
	return b.graph.Shared(key)
}
