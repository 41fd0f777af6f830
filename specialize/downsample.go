// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package specialize

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// buildDownsample compiles the shader variant for key and builds its
// pipeline. Caller holds the cache write lock.
func (c *Cache) buildDownsample(key DownsampleKey) (variant, error) {
	module, err := compileModule(c.device, key.Label(), c.source, key.flags())
	if err != nil {
		return variant{}, err
	}

	pipeline, err := c.device.CreateRenderPipeline(downsampleDescriptor(key, module, c.pipeLayout, c.bloomFormat))
	if err != nil {
		c.device.DestroyShaderModule(module)
		return variant{}, fmt.Errorf("specialize: create %s: %w", key.Label(), err)
	}
	return variant{pipeline: pipeline, shader: module}, nil
}

// downsampleDescriptor assembles the pipeline descriptor for a
// downsampling variant. Each mip is written whole, so no blend state is
// attached; the vertex stage is the shared fullscreen triangle.
func downsampleDescriptor(key DownsampleKey, module hal.ShaderModule, layout hal.PipelineLayout, format gputypes.TextureFormat) *hal.RenderPipelineDescriptor {
	return &hal.RenderPipelineDescriptor{
		Label:  key.Label(),
		Layout: layout,
		Vertex: hal.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
		},
		Fragment: &hal.FragmentState{
			Module:     module,
			EntryPoint: key.EntryPoint(),
			Targets: []gputypes.ColorTargetState{
				{
					Format:    format,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	}
}
