// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"
)

// NodeContext is the run-time handle passed to a node's closure during
// Execute. It resolves declared handles to their realized resources and
// enforces the node's dependency set as an access-control list.
//
// Resolving a handle the node never declared panics even when the
// resource exists: an under-declared footprint is an authorship bug
// that would defeat any scheduling or barrier insertion built on the
// declarations later. Resolved references are scoped to the frame; a
// node must not keep them past its own execution.
type NodeContext struct {
	graph *Graph
	deps  *Dependencies
}

// resolve enforces access control and returns the realized data behind
// id: the ID must be declared, must not be ahead of the slot's write
// watermark, and must be realized.
func resolve[D, R any](c *NodeContext, s *Store[D, R], id ResourceID) R {
	c.graph.mustPhase(PhaseExecuting, "resolve")
	if !c.deps.ContainsResource(id) {
		panic(fmt.Sprintf("framegraph: node resolved %s %s outside its declared dependencies",
			s.kind, id))
	}
	if gen := s.generation(id.Index); id.Generation > gen {
		panic(fmt.Sprintf("framegraph: %s handle %s is ahead of its slot (watermark v%d)",
			s.kind, id, gen))
	}
	meta, ok := s.Get(id.Index)
	if !ok {
		panic(fmt.Sprintf("framegraph: %s %s is not realized", s.kind, id))
	}
	return meta.Data
}

// Texture resolves a declared texture handle to its realized texture
// and default view.
func (c *NodeContext) Texture(h TextureHandle) TextureData {
	return resolve(c, c.graph.textures, h.id)
}

// Buffer resolves a declared buffer handle.
func (c *NodeContext) Buffer(h BufferHandle) hal.Buffer {
	return resolve(c, c.graph.buffers, h.id)
}

// Sampler resolves a declared sampler handle.
func (c *NodeContext) Sampler(h SamplerHandle) hal.Sampler {
	return resolve(c, c.graph.samplers, h.id)
}

// Pipeline resolves a declared pipeline handle.
func (c *NodeContext) Pipeline(h PipelineHandle) hal.RenderPipeline {
	return resolve(c, c.graph.pipelines, h.id)
}

// BindGroup resolves a declared bind group handle. Bind groups have
// their own dependency set, so a handle passed to UseBindGroup at
// declaration time is required here.
func (c *NodeContext) BindGroup(h BindGroupHandle) hal.BindGroup {
	c.graph.mustPhase(PhaseExecuting, "BindGroup")
	if !c.deps.ContainsBindGroup(h.id) {
		panic(fmt.Sprintf("framegraph: node resolved bind group %s outside its declared dependencies", h))
	}
	meta, ok := c.graph.bindGroups.Get(h.id.Index)
	if !ok {
		panic(fmt.Sprintf("framegraph: bind group %s is not realized", h))
	}
	return meta.Data
}

// Device returns the device the frame realized against.
func (c *NodeContext) Device() Device {
	return c.graph.device
}

// Queue returns the queue Execute was invoked with. Nil when the host
// passed none.
func (c *NodeContext) Queue() hal.Queue {
	return c.graph.queue
}

// View returns the per-view settings the frame was begun with. Absent
// when Begin received nil.
func (c *NodeContext) View() (ViewSettings, bool) {
	return c.graph.View()
}

// Shared looks up a process-wide singleton published on the graph.
func (c *NodeContext) Shared(key string) (any, bool) {
	return c.graph.Shared(key)
}
