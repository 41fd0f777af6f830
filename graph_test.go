// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// =============================================================================
// Test Helpers
// =============================================================================

// testTextureDesc returns a small render-target descriptor.
func testTextureDesc(label string, w, h uint32) *hal.TextureDescriptor {
	return &hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding,
	}
}

// failingDevice wraps NullDevice and fails buffer creation, for
// realization-failure paths.
type failingDevice struct {
	NullDevice
	err error
}

func (d *failingDevice) CreateBuffer(_ *hal.BufferDescriptor) (hal.Buffer, error) {
	return nil, d.err
}

// =============================================================================
// Phase Machine
// =============================================================================

func TestGraphPhaseCycle(t *testing.T) {
	g := NewGraph(GraphConfig{})
	device := &NullDevice{}

	if g.Phase() != PhaseIdle {
		t.Fatalf("expected Idle, got %s", g.Phase())
	}

	g.Begin(nil)
	if g.Phase() != PhaseBuilding {
		t.Fatalf("expected Building, got %s", g.Phase())
	}

	if err := g.Realize(device); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Phase() != PhaseExecuting {
		t.Fatalf("expected Executing, got %s", g.Phase())
	}

	g.Execute(nil)
	if g.Phase() != PhaseExecuting {
		t.Fatalf("expected Executing after node run, got %s", g.Phase())
	}

	g.Reset()
	if g.Phase() != PhaseIdle {
		t.Fatalf("expected Idle after reset, got %s", g.Phase())
	}
}

func TestGraphPhaseViolations(t *testing.T) {
	device := &NullDevice{}

	// Begin while a frame is open.
	g := NewGraph(GraphConfig{})
	g.Begin(nil)
	mustPanic(t, "Begin during Building", func() { g.Begin(nil) })

	// Realize without an open frame.
	g = NewGraph(GraphConfig{})
	mustPanic(t, "Realize during Idle", func() { _ = g.Realize(device) })

	// Execute before Realize.
	g = NewGraph(GraphConfig{})
	g.Begin(nil)
	mustPanic(t, "Execute during Building", func() { g.Execute(nil) })

	// Execute twice in one frame.
	g = NewGraph(GraphConfig{})
	g.Begin(nil)
	if err := g.Realize(device); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g.Execute(nil)
	mustPanic(t, "Execute twice", func() { g.Execute(nil) })

	// Reset without an open frame.
	g = NewGraph(GraphConfig{})
	mustPanic(t, "Reset during Idle", func() { g.Reset() })

	// Declarations after Realize.
	g = NewGraph(GraphConfig{})
	b := g.Begin(nil)
	if err := g.Realize(device); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mustPanic(t, "NewTexture during Executing", func() {
		b.NewTexture(testTextureDesc("late", 4, 4))
	})
}

func TestGraphRealizeNilDevice(t *testing.T) {
	g := NewGraph(GraphConfig{})
	g.Begin(nil)

	err := g.Realize(nil)
	if !errors.Is(err, ErrNilDevice) {
		t.Errorf("expected ErrNilDevice, got %v", err)
	}
	// The frame is still building; a retry with a device succeeds.
	if g.Phase() != PhaseBuilding {
		t.Errorf("expected Building after nil-device Realize, got %s", g.Phase())
	}
	if err := g.Realize(&NullDevice{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g.Reset()
}

func TestGraphResetAbandonsBuildingFrame(t *testing.T) {
	g := NewGraph(GraphConfig{})
	b := g.Begin(nil)
	b.NewTexture(testTextureDesc("doomed", 8, 8))

	// Nothing was realized, so there is nothing to release.
	g.Reset()
	if g.Phase() != PhaseIdle {
		t.Fatalf("expected Idle, got %s", g.Phase())
	}

	// The next frame starts clean.
	g.Begin(nil)
	if err := g.Realize(&NullDevice{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g.Reset()
}

// =============================================================================
// Frame Cycle
// =============================================================================

func TestGraphFrame(t *testing.T) {
	g := NewGraph(GraphConfig{})
	device := &NullDevice{}

	var sawTexture, sawBuffer bool
	err := g.Frame(device, nil, nil, func(b *Builder) error {
		tex := b.NewTexture(testTextureDesc("color", 64, 64))
		buf := b.NewBuffer(&hal.BufferDescriptor{Label: "uniforms", Size: 256, Usage: gputypes.BufferUsageUniform})

		b.AddNode(DependenciesOf(Read(tex), Read(buf)), func(ctx *NodeContext) {
			sawTexture = ctx.Texture(tex).Texture != nil && ctx.Texture(tex).View != nil
			sawBuffer = ctx.Buffer(buf) != nil
		})
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !sawTexture || !sawBuffer {
		t.Error("expected the node to resolve its declared resources")
	}
	if g.Phase() != PhaseIdle {
		t.Errorf("expected Idle after Frame, got %s", g.Phase())
	}

	// Everything the graph created was released at reset.
	if c, d := device.TexturesCreated.Load(), device.TexturesDestroyed.Load(); c != 1 || d != 1 {
		t.Errorf("expected 1 texture created and destroyed, got %d, %d", c, d)
	}
	if c, d := device.ViewsCreated.Load(), device.ViewsDestroyed.Load(); c != 1 || d != 1 {
		t.Errorf("expected 1 view created and destroyed, got %d, %d", c, d)
	}
	if c, d := device.BuffersCreated.Load(), device.BuffersDestroyed.Load(); c != 1 || d != 1 {
		t.Errorf("expected 1 buffer created and destroyed, got %d, %d", c, d)
	}
}

func TestGraphFrameBuildError(t *testing.T) {
	g := NewGraph(GraphConfig{})
	cause := errors.New("missing shader asset")

	err := g.Frame(&NullDevice{}, nil, nil, func(b *Builder) error {
		b.NewTexture(testTextureDesc("partial", 8, 8))
		return cause
	})
	if !errors.Is(err, cause) {
		t.Errorf("expected build error to propagate, got %v", err)
	}
	if g.Phase() != PhaseIdle {
		t.Errorf("expected Idle after aborted frame, got %s", g.Phase())
	}
}

func TestGraphFrameRealizeError(t *testing.T) {
	g := NewGraph(GraphConfig{})
	device := &failingDevice{err: errors.New("out of memory")}

	ran := false
	err := g.Frame(device, nil, nil, func(b *Builder) error {
		tex := b.NewTexture(testTextureDesc("ok", 8, 8))
		buf := b.NewBuffer(&hal.BufferDescriptor{Label: "doomed", Size: 64, Usage: gputypes.BufferUsageStorage})
		b.AddNode(DependenciesOf(Read(tex), Read(buf)), func(*NodeContext) { ran = true })
		return nil
	})
	if !errors.Is(err, ErrRealize) {
		t.Errorf("expected ErrRealize, got %v", err)
	}
	if ran {
		t.Error("expected nodes to be skipped after realization failure")
	}
	if g.Phase() != PhaseIdle {
		t.Errorf("expected Idle after aborted frame, got %s", g.Phase())
	}

	// The texture realized before the failing buffer was still released.
	if c, d := device.TexturesCreated.Load(), device.TexturesDestroyed.Load(); c != d {
		t.Errorf("expected created textures to be destroyed, got %d created, %d destroyed", c, d)
	}
}

func TestGraphNodesRunInRegistrationOrder(t *testing.T) {
	g := NewGraph(GraphConfig{})

	var order []int
	err := g.Frame(&NullDevice{}, nil, nil, func(b *Builder) error {
		for i := range 5 {
			b.AddNode(nil, func(*NodeContext) { order = append(order, i) })
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, got := range order {
		if got != i {
			t.Fatalf("expected node %d at position %d, got %d", i, i, got)
		}
	}
	if len(order) != 5 {
		t.Fatalf("expected 5 nodes to run, got %d", len(order))
	}
}

// =============================================================================
// Allocator and Generations
// =============================================================================

func TestGraphIndicesUniqueAcrossKinds(t *testing.T) {
	g := NewGraph(GraphConfig{})
	b := g.Begin(nil)

	tex := b.NewTexture(testTextureDesc("a", 4, 4))
	buf := b.NewBuffer(&hal.BufferDescriptor{Label: "b", Size: 16, Usage: gputypes.BufferUsageStorage})
	smp := b.NewSampler(&hal.SamplerDescriptor{Label: "c"})

	indices := map[uint16]bool{
		tex.ID().Index: true,
		buf.ID().Index: true,
		smp.ID().Index: true,
	}
	if len(indices) != 3 {
		t.Error("expected distinct indices across kinds")
	}

	g.Reset()
}

func TestGraphIndicesRestartEachFrame(t *testing.T) {
	g := NewGraph(GraphConfig{})
	device := &NullDevice{}

	b := g.Begin(nil)
	first := b.NewTexture(testTextureDesc("f1", 4, 4))
	if err := g.Realize(device); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g.Execute(nil)
	g.Reset()

	b = g.Begin(nil)
	second := b.NewTexture(testTextureDesc("f2", 4, 4))
	g.Reset()

	if first.ID().Index != second.ID().Index {
		t.Errorf("expected the allocator to restart, got %d then %d",
			first.ID().Index, second.ID().Index)
	}
}

func TestGraphWriteAdvancesWatermark(t *testing.T) {
	g := NewGraph(GraphConfig{})

	err := g.Frame(&NullDevice{}, nil, nil, func(b *Builder) error {
		tex := b.NewTexture(testTextureDesc("target", 16, 16))
		readCopy := tex

		b.AddNode(DependenciesOf(Write(&tex)), func(ctx *NodeContext) {
			// The post-write handle resolves.
			if ctx.Texture(tex).Texture == nil {
				t.Error("expected post-write handle to resolve")
			}
		})
		b.AddNode(DependenciesOf(Read(readCopy)), func(ctx *NodeContext) {
			// The pre-write snapshot is one version behind the
			// watermark; reading it is legal.
			if ctx.Texture(readCopy).Texture == nil {
				t.Error("expected pre-write snapshot to resolve")
			}
		})
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// =============================================================================
// View Settings and Shared State
// =============================================================================

func TestGraphViewSettings(t *testing.T) {
	g := NewGraph(GraphConfig{})
	view := DefaultViewSettings(1920, 1080)
	view.Threshold = 0.8

	err := g.Frame(&NullDevice{}, nil, &view, func(b *Builder) error {
		got, ok := b.View()
		if !ok {
			t.Fatal("expected view settings during building")
		}
		if got.Width != 1920 || got.Threshold != 0.8 {
			t.Errorf("unexpected view settings: %+v", got)
		}

		b.AddNode(nil, func(ctx *NodeContext) {
			got, ok := ctx.View()
			if !ok || got.Height != 1080 {
				t.Error("expected view settings during execution")
			}
		})
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The view does not leak into the next frame.
	if _, ok := g.View(); ok {
		t.Error("expected view settings cleared after reset")
	}
}

func TestGraphSharedState(t *testing.T) {
	g := NewGraph(GraphConfig{})
	g.SetShared("frame-count", 42)

	err := g.Frame(&NullDevice{}, nil, nil, func(b *Builder) error {
		if v, ok := b.Shared("frame-count"); !ok || v.(int) != 42 {
			t.Error("expected shared value during building")
		}
		if _, ok := b.Shared("absent"); ok {
			t.Error("expected missing key to be absent")
		}
		b.AddNode(nil, func(ctx *NodeContext) {
			if v, ok := ctx.Shared("frame-count"); !ok || v.(int) != 42 {
				t.Error("expected shared value during execution")
			}
		})
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Shared entries persist across frames.
	if v, ok := g.Shared("frame-count"); !ok || v.(int) != 42 {
		t.Error("expected shared value to survive reset")
	}
}

// =============================================================================
// Benchmarks
// =============================================================================

func BenchmarkGraphFrame(b *testing.B) {
	g := NewGraph(GraphConfig{})
	device := &NullDevice{}
	desc := testTextureDesc("bench", 64, 64)

	for b.Loop() {
		err := g.Frame(device, nil, nil, func(fb *Builder) error {
			tex := fb.NewTexture(desc)
			fb.AddNode(DependenciesOf(Read(tex)), func(ctx *NodeContext) {
				_ = ctx.Texture(tex)
			})
			return nil
		})
		if err != nil {
			b.Fatal(err)
		}
	}
}
