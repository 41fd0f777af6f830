// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import (
	"fmt"
	"time"

	"github.com/gogpu/wgpu/hal"
)

// entry is a realized resource slot. owned marks graph-created data,
// which the store releases when the entry is dropped; imported (eager)
// data is never released here.
type entry[D, R any] struct {
	meta  Meta[D, R]
	owned bool
}

// queuedEntry is a deferred initializer awaiting realization. desc is the
// descriptor when it was known at declaration time, so DescriptorOf works
// before the resource exists.
type queuedEntry[D, R any] struct {
	desc *D
	fn   InitFunc[D, R]
}

// Store holds one resource kind's per-frame state: realized resources
// (current), deferred initializers (queued), the previous frame's
// retained resources keyed by stable label (lastFrame), and the marks
// naming which current resources to carry over at reset (toSave).
//
// A given index appears in at most one of current/queued at any time.
// Stores are not safe for concurrent use: the graph confines each frame
// phase to a single goroutine.
type Store[D, R any] struct {
	kind      string
	current   map[uint16]entry[D, R]
	queued    map[uint16]queuedEntry[D, R]
	lastFrame map[string]entry[D, R]
	toSave    map[uint16]string
	gens      map[uint16]uint16
	destroy   func(Device, R)
}

// NewStore creates an empty store. kind names the resource kind in panic
// and log messages; capacity pre-sizes the per-frame tables. destroy
// releases one graph-owned realized resource when it is dropped; nil
// means dropped data is not released here (kinds owned elsewhere, such
// as cached pipelines).
func NewStore[D, R any](kind string, capacity int, destroy func(Device, R)) *Store[D, R] {
	if capacity < 0 {
		capacity = 0
	}
	return &Store[D, R]{
		kind:      kind,
		current:   make(map[uint16]entry[D, R], capacity),
		queued:    make(map[uint16]queuedEntry[D, R], capacity),
		lastFrame: make(map[string]entry[D, R]),
		toSave:    make(map[uint16]string),
		gens:      make(map[uint16]uint16, capacity),
		destroy:   destroy,
	}
}

// Insert places an eager meta into current, or a deferred initializer
// into queued. Inserting the same index twice in one frame is a
// programmer error and panics: resource authorship is exclusive, and a
// silent overwrite would hide the duplicate author.
func (s *Store[D, R]) Insert(index uint16, init Init[D, R]) {
	s.checkFresh(index, "Insert")
	switch {
	case init.eager:
		s.current[index] = entry[D, R]{meta: init.meta}
	case init.fn != nil:
		s.queued[index] = queuedEntry[D, R]{desc: init.desc, fn: init.fn}
	default:
		panic(fmt.Sprintf("framegraph: Insert: zero Init for %s[%d]", s.kind, index))
	}
}

// checkFresh panics if index is already declared this frame.
func (s *Store[D, R]) checkFresh(index uint16, op string) {
	if _, ok := s.current[index]; ok {
		panic(fmt.Sprintf("framegraph: %s: %s[%d] already declared this frame", op, s.kind, index))
	}
	if _, ok := s.queued[index]; ok {
		panic(fmt.Sprintf("framegraph: %s: %s[%d] already queued this frame", op, s.kind, index))
	}
}

// has reports whether index is declared this frame, realized or not.
func (s *Store[D, R]) has(index uint16) bool {
	if _, ok := s.current[index]; ok {
		return true
	}
	_, ok := s.queued[index]
	return ok
}

// RealizeQueued invokes every queued initializer with device access and
// moves the results into current. It must run after all declarations for
// the frame and before any resolution, because resolution assumes no
// queued entries remain for requested indices.
//
// A failed initializer stops realization and returns the error wrapped
// in ErrRealize; resources realized before the failure stay current and
// are released at reset.
func (s *Store[D, R]) RealizeQueued(device Device) error {
	if len(s.queued) == 0 {
		return nil
	}
	if device == nil {
		return fmt.Errorf("%w: realize %s", ErrNilDevice, s.kind)
	}
	start := time.Now()
	n := 0
	for index, q := range s.queued {
		meta, err := q.fn(device)
		if err != nil {
			Logger().Error("framegraph: deferred initializer failed",
				"kind", s.kind, "index", index, "error", err)
			return fmt.Errorf("%w: %s[%d]: %w", ErrRealize, s.kind, index, err)
		}
		if meta.Descriptor == nil {
			meta.Descriptor = q.desc
		}
		s.current[index] = entry[D, R]{meta: meta, owned: true}
		delete(s.queued, index)
		n++
	}
	Logger().Debug("framegraph: realized queued resources",
		"kind", s.kind, "count", n, "dur", time.Since(start))
	return nil
}

// Get returns the realized meta for index. A still-queued or undeclared
// index is absent; callers in the resolution path treat that as a
// failure, never a silent default.
func (s *Store[D, R]) Get(index uint16) (Meta[D, R], bool) {
	ent, ok := s.current[index]
	if !ok {
		var zero Meta[D, R]
		return zero, false
	}
	return ent.meta, true
}

// DescriptorOf returns the descriptor attached to index, realized or
// still queued. Absent when the index is unknown or was declared without
// a descriptor.
func (s *Store[D, R]) DescriptorOf(index uint16) (*D, bool) {
	if ent, ok := s.current[index]; ok {
		return ent.meta.Descriptor, ent.meta.Descriptor != nil
	}
	if q, ok := s.queued[index]; ok {
		return q.desc, q.desc != nil
	}
	return nil, false
}

// MarkRetain records that index's resource survives the frame boundary
// under label. Re-marking a label silently replaces the prior retained
// resource: labels are caller-controlled stable identities. Marking an
// undeclared index is a programmer error and panics.
func (s *Store[D, R]) MarkRetain(index uint16, label string) {
	if label == "" {
		panic(fmt.Sprintf("framegraph: MarkRetain: empty label for %s[%d]", s.kind, index))
	}
	if !s.has(index) {
		panic(fmt.Sprintf("framegraph: MarkRetain: %s[%d] not declared this frame", s.kind, index))
	}
	s.toSave[index] = label
}

// GetRetained claims the resource carried from the previous frame under
// label. The claim removes the entry: indices are not stable across
// frames, so the caller re-homes the meta under a fresh index. A caller
// that re-inserts the meta as Eager takes over release of the data.
//
// A missing label is the expected cold-start outcome, not an error; fall
// back to fresh creation.
func (s *Store[D, R]) GetRetained(label string) (Meta[D, R], bool) {
	ent, ok := s.takeRetained(label)
	if !ok {
		var zero Meta[D, R]
		return zero, false
	}
	return ent.meta, true
}

// takeRetained removes and returns the retained entry for label,
// preserving the ownership mark for in-package re-homing.
func (s *Store[D, R]) takeRetained(label string) (entry[D, R], bool) {
	ent, ok := s.lastFrame[label]
	if ok {
		delete(s.lastFrame, label)
	}
	return ent, ok
}

// adopt re-homes a previously retained entry under a fresh index,
// preserving ownership so graph-created data is still released when it
// is eventually dropped.
func (s *Store[D, R]) adopt(index uint16, ent entry[D, R]) {
	s.checkFresh(index, "adopt")
	s.current[index] = ent
}

// bumpGen records that a write declaration advanced the slot's version.
func (s *Store[D, R]) bumpGen(index uint16, gen uint16) {
	if gen > s.gens[index] {
		s.gens[index] = gen
	}
}

// generation reports the slot's current version watermark. Zero for
// slots never written.
func (s *Store[D, R]) generation(index uint16) uint16 {
	return s.gens[index]
}

// Reset ends the frame: retained leftovers from the previous frame age
// out, marked resources are promoted into lastFrame under their labels,
// everything else graph-owned is released, and all per-frame state is
// cleared. lastFrame entries not freshly re-saved are dropped — a strict
// one-frame retention window, preventing unbounded growth from abandoned
// labels.
//
// device releases dropped graph-owned data; nil skips release (tests,
// or hosts that manage device objects themselves).
func (s *Store[D, R]) Reset(device Device) {
	// Strict one-frame window: whatever the frame did not reclaim ages out.
	for label, ent := range s.lastFrame {
		s.release(device, ent)
		delete(s.lastFrame, label)
	}

	// Promote marked resources under their labels.
	for index, label := range s.toSave {
		ent, ok := s.current[index]
		if !ok {
			Logger().Warn("framegraph: retain mark for unrealized resource dropped",
				"kind", s.kind, "index", index, "label", label)
			continue
		}
		if prev, exists := s.lastFrame[label]; exists {
			s.release(device, prev)
		}
		s.lastFrame[label] = ent
		delete(s.current, index)
		Logger().Debug("framegraph: retained resource",
			"kind", s.kind, "index", index, "label", label)
	}

	// Release what remains, then clear frame state. Queued initializers
	// never ran, so there is nothing to release for them.
	for _, ent := range s.current {
		s.release(device, ent)
	}
	clear(s.current)
	clear(s.queued)
	clear(s.toSave)
	clear(s.gens)
}

// release destroys graph-owned realized data. Imported entries and
// kinds without a destroy hook are left alone.
func (s *Store[D, R]) release(device Device, ent entry[D, R]) {
	if !ent.owned || s.destroy == nil || device == nil {
		return
	}
	s.destroy(device, ent.meta.Data)
}

// Len reports the number of realized resources this frame.
func (s *Store[D, R]) Len() int { return len(s.current) }

// QueuedLen reports the number of initializers awaiting realization.
func (s *Store[D, R]) QueuedLen() int { return len(s.queued) }

// RetainedLen reports the number of resources carried from the previous
// frame and not yet reclaimed.
func (s *Store[D, R]) RetainedLen() int { return len(s.lastFrame) }

// Store aliases for the five kinds the graph owns.
type (
	// TextureStore holds textures with their default views.
	TextureStore = Store[hal.TextureDescriptor, TextureData]

	// BufferStore holds GPU buffers.
	BufferStore = Store[hal.BufferDescriptor, hal.Buffer]

	// SamplerStore holds samplers.
	SamplerStore = Store[hal.SamplerDescriptor, hal.Sampler]

	// BindGroupStore holds bind groups declared over graph resources.
	BindGroupStore = Store[BindGroupDesc, hal.BindGroup]

	// PipelineStore holds compiled render pipelines. The pipeline cache
	// owns compilation and release; the graph only tracks the handles.
	PipelineStore = Store[PipelineDesc, hal.RenderPipeline]
)
