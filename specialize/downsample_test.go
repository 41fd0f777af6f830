// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package specialize

import (
	"testing"

	"github.com/gogpu/gputypes"
)

func TestDownsampleDescriptor(t *testing.T) {
	key := DownsampleKey{Prefilter: true, FirstDownsample: true}
	desc := downsampleDescriptor(key, nil, nil, gputypes.TextureFormatRGBA16Float)

	if desc.Label != "bloom_downsampling_pipeline_first" {
		t.Errorf("unexpected label %q", desc.Label)
	}
	if desc.Vertex.EntryPoint != "vs_main" {
		t.Errorf("unexpected vertex entry point %q", desc.Vertex.EntryPoint)
	}
	if desc.Fragment == nil || desc.Fragment.EntryPoint != "downsample_first" {
		t.Fatalf("expected the downsample_first fragment entry, got %+v", desc.Fragment)
	}

	if len(desc.Fragment.Targets) != 1 {
		t.Fatalf("expected 1 color target, got %d", len(desc.Fragment.Targets))
	}
	target := desc.Fragment.Targets[0]
	if target.Format != gputypes.TextureFormatRGBA16Float {
		t.Errorf("unexpected target format %v", target.Format)
	}
	// Downsampling writes each mip whole; no blending.
	if target.Blend != nil {
		t.Error("expected no blend state")
	}
	if target.WriteMask != gputypes.ColorWriteMaskAll {
		t.Errorf("unexpected write mask %v", target.WriteMask)
	}

	if desc.Primitive.Topology != gputypes.PrimitiveTopologyTriangleList {
		t.Errorf("unexpected topology %v", desc.Primitive.Topology)
	}
	if desc.Multisample.Count != 1 {
		t.Errorf("unexpected sample count %d", desc.Multisample.Count)
	}
}

func TestDownsampleDescriptorEntrySelection(t *testing.T) {
	desc := downsampleDescriptor(DownsampleKey{}, nil, nil, gputypes.TextureFormatRGBA16Float)
	if desc.Fragment.EntryPoint != "downsample" {
		t.Errorf("expected the downsample entry, got %q", desc.Fragment.EntryPoint)
	}
	if desc.Label != "bloom_downsampling_pipeline" {
		t.Errorf("unexpected label %q", desc.Label)
	}
}
