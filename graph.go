// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import (
	"fmt"
	"math"

	"github.com/gogpu/wgpu/hal"
)

// Phase is the graph's position in the per-frame cycle.
type Phase uint8

const (
	// PhaseIdle is the between-frames state. Only Begin is legal.
	PhaseIdle Phase = iota

	// PhaseBuilding accepts declarations through the frame's Builder.
	PhaseBuilding

	// PhaseRealizing constructs queued resources against the device.
	PhaseRealizing

	// PhaseExecuting runs nodes; resolution through a NodeContext is
	// legal only here.
	PhaseExecuting

	// PhaseResetting promotes retained resources and drops the rest.
	PhaseResetting
)

// String returns the phase name used in panic and log messages.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseBuilding:
		return "Building"
	case PhaseRealizing:
		return "Realizing"
	case PhaseExecuting:
		return "Executing"
	case PhaseResetting:
		return "Resetting"
	default:
		return "unknown"
	}
}

// node pairs a registered closure with its declared footprint.
type node struct {
	deps *Dependencies
	run  func(*NodeContext)
}

// DefaultResourceCapacity pre-sizes each per-kind table when GraphConfig
// does not say otherwise.
const DefaultResourceCapacity = 16

// GraphConfig holds construction options for a Graph.
type GraphConfig struct {
	// ResourceCapacity pre-sizes each per-kind table for the expected
	// number of declarations per frame. Defaults to
	// DefaultResourceCapacity if <= 0.
	ResourceCapacity int
}

// Graph owns one store per resource kind, allocates frame-scoped
// resource indices, and drives the per-frame cycle
// Idle -> Building -> Realizing -> Executing -> Resetting -> Idle.
//
// A Graph is not safe for concurrent use. The frame cycle is
// single-threaded and frame-synchronous: all declarations complete
// before Realize, all resolution happens between Realize and Reset.
type Graph struct {
	phase    Phase
	executed bool

	// nextIndex restarts at zero each frame, so indices are unique
	// across kinds within a frame but meaningless across frames.
	nextIndex uint16

	textures   *TextureStore
	buffers    *BufferStore
	samplers   *SamplerStore
	bindGroups *BindGroupStore
	pipelines  *PipelineStore

	nodes []node

	view    ViewSettings
	hasView bool
	shared  map[string]any

	// device and queue are captured for the duration of one frame:
	// device at Realize, queue at Execute. Reset clears both.
	device Device
	queue  hal.Queue
}

// NewGraph creates an idle graph with one store per resource kind.
func NewGraph(cfg GraphConfig) *Graph {
	capacity := cfg.ResourceCapacity
	if capacity <= 0 {
		capacity = DefaultResourceCapacity
	}
	return &Graph{
		textures:   NewStore[hal.TextureDescriptor, TextureData]("texture", capacity, destroyTexture),
		buffers:    NewStore[hal.BufferDescriptor, hal.Buffer]("buffer", capacity, destroyBuffer),
		samplers:   NewStore[hal.SamplerDescriptor, hal.Sampler]("sampler", capacity, destroySampler),
		bindGroups: NewStore[BindGroupDesc, hal.BindGroup]("bind group", capacity, destroyBindGroup),
		pipelines:  NewStore[PipelineDesc, hal.RenderPipeline]("pipeline", capacity, nil),
		shared:     make(map[string]any),
	}
}

func destroyTexture(d Device, t TextureData) {
	if t.View != nil {
		d.DestroyTextureView(t.View)
	}
	if t.Texture != nil {
		d.DestroyTexture(t.Texture)
	}
}

func destroyBuffer(d Device, b hal.Buffer)        { d.DestroyBuffer(b) }
func destroySampler(d Device, s hal.Sampler)      { d.DestroySampler(s) }
func destroyBindGroup(d Device, bg hal.BindGroup) { d.DestroyBindGroup(bg) }

// Phase reports the graph's position in the frame cycle.
func (g *Graph) Phase() Phase { return g.phase }

// mustPhase panics unless the graph is in want.
func (g *Graph) mustPhase(want Phase, op string) {
	if g.phase != want {
		panic(fmt.Sprintf("framegraph: %s in phase %s (want %s)", op, g.phase, want))
	}
}

// alloc hands out the next frame-scoped slot index.
func (g *Graph) alloc() uint16 {
	if g.nextIndex == math.MaxUint16 {
		panic("framegraph: resource index space exhausted this frame")
	}
	index := g.nextIndex
	g.nextIndex++
	return index
}

// hasDeclared reports whether index is declared this frame in the store
// the class names.
func (g *Graph) hasDeclared(class resourceClass, index uint16) bool {
	switch class {
	case classTexture:
		return g.textures.has(index)
	case classBuffer:
		return g.buffers.has(index)
	case classSampler:
		return g.samplers.has(index)
	case classBindGroup:
		return g.bindGroups.has(index)
	case classPipeline:
		return g.pipelines.has(index)
	default:
		return false
	}
}

// bumpGenFor records a declared write against the owning store's
// version watermark.
func (g *Graph) bumpGenFor(class resourceClass, id ResourceID) {
	switch class {
	case classTexture:
		g.textures.bumpGen(id.Index, id.Generation)
	case classBuffer:
		g.buffers.bumpGen(id.Index, id.Generation)
	case classSampler:
		g.samplers.bumpGen(id.Index, id.Generation)
	case classBindGroup:
		g.bindGroups.bumpGen(id.Index, id.Generation)
	case classPipeline:
		g.pipelines.bumpGen(id.Index, id.Generation)
	}
}

// Begin opens a frame: Idle -> Building. The returned Builder accepts
// declarations until Realize. view carries the frame's per-view
// settings; nil builds a frame without any.
func (g *Graph) Begin(view *ViewSettings) *Builder {
	g.mustPhase(PhaseIdle, "Begin")
	g.phase = PhaseBuilding
	if view != nil {
		g.view = *view
		g.hasView = true
	}
	return &Builder{graph: g}
}

// Realize constructs every queued resource against device:
// Building -> Executing. Bind groups realize last, since their entries
// resolve other kinds' realized data. On failure the frame is presumed
// corrupt and stays in Realizing; Reset is the only way out.
func (g *Graph) Realize(device Device) error {
	g.mustPhase(PhaseBuilding, "Realize")
	if device == nil {
		return fmt.Errorf("%w: Realize", ErrNilDevice)
	}
	g.phase = PhaseRealizing
	g.device = device

	if err := g.textures.RealizeQueued(device); err != nil {
		return err
	}
	if err := g.buffers.RealizeQueued(device); err != nil {
		return err
	}
	if err := g.samplers.RealizeQueued(device); err != nil {
		return err
	}
	if err := g.pipelines.RealizeQueued(device); err != nil {
		return err
	}
	if err := g.bindGroups.RealizeQueued(device); err != nil {
		return err
	}

	g.phase = PhaseExecuting
	return nil
}

// Execute runs the frame's nodes in registration order. Each node sees
// only its declared dependencies through the passed NodeContext. queue
// is handed through to nodes untouched; nil is legal for frames whose
// nodes never submit work.
func (g *Graph) Execute(queue hal.Queue) {
	g.mustPhase(PhaseExecuting, "Execute")
	if g.executed {
		panic("framegraph: Execute called twice in one frame")
	}
	g.executed = true
	g.queue = queue

	for i := range g.nodes {
		n := &g.nodes[i]
		n.run(&NodeContext{graph: g, deps: n.deps})
	}
}

// Reset ends the frame from any in-frame phase: marked resources are
// promoted into the retention window, remaining graph-owned resources
// are released through the device captured at Realize, and all
// per-frame state is cleared: -> Idle.
//
// Reset is legal from Building and Realizing too, so a host can abandon
// a frame whose build callback or realization failed.
func (g *Graph) Reset() {
	switch g.phase {
	case PhaseBuilding, PhaseRealizing, PhaseExecuting:
	default:
		panic(fmt.Sprintf("framegraph: Reset in phase %s", g.phase))
	}
	g.phase = PhaseResetting

	// Reverse of realization order: bind groups reference the views and
	// buffers of the other stores, so they are released first.
	g.bindGroups.Reset(g.device)
	g.pipelines.Reset(g.device)
	g.samplers.Reset(g.device)
	g.buffers.Reset(g.device)
	g.textures.Reset(g.device)

	g.nodes = g.nodes[:0]
	g.nextIndex = 0
	g.view = ViewSettings{}
	g.hasView = false
	g.device = nil
	g.queue = nil
	g.executed = false
	g.phase = PhaseIdle
}

// Frame runs one full cycle: build declares the frame through the
// Builder, queued resources realize against device, nodes execute with
// queue, and the graph resets. Errors from the build callback or from
// realization abort the frame; the graph is reset and idle either way.
func (g *Graph) Frame(device Device, queue hal.Queue, view *ViewSettings, build func(*Builder) error) error {
	b := g.Begin(view)
	if err := build(b); err != nil {
		g.Reset()
		return fmt.Errorf("framegraph: build: %w", err)
	}
	if err := g.Realize(device); err != nil {
		g.Reset()
		return err
	}
	g.Execute(queue)
	g.Reset()
	return nil
}

// SetShared publishes a process-wide singleton under key. Builder and
// node code read it back through their Shared accessors; the graph
// itself never inspects the values. Entries persist across frames until
// overwritten.
func (g *Graph) SetShared(key string, value any) {
	g.shared[key] = value
}

// Shared looks up a singleton published through SetShared.
func (g *Graph) Shared(key string) (any, bool) {
	v, ok := g.shared[key]
	return v, ok
}

// View returns the per-view settings the current frame was begun with.
// Absent when Begin received nil or no frame is open.
func (g *Graph) View() (ViewSettings, bool) {
	return g.view, g.hasView
}
