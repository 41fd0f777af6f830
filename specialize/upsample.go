// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package specialize

import (
	"fmt"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// buildUpsample compiles the shader for key and builds its pipeline.
// Caller holds the cache write lock.
func (c *Cache) buildUpsample(key UpsampleKey) (variant, error) {
	module, err := compileModule(c.device, key.Label(), c.source, nil)
	if err != nil {
		return variant{}, err
	}

	pipeline, err := c.device.CreateRenderPipeline(upsampleDescriptor(key, module, c.pipeLayout, c.bloomFormat, c.outputFormat))
	if err != nil {
		c.device.DestroyShaderModule(module)
		return variant{}, fmt.Errorf("specialize: create %s: %w", key.Label(), err)
	}
	return variant{pipeline: pipeline, shader: module}, nil
}

// upsampleBlend selects the color blend for a composite mode. Both
// modes scale the incoming mip by the render pass blend constant, which
// the executing node sets per mip. Energy-conserving fades the
// destination by the same constant so the total stays bounded; additive
// accumulates onto it unscaled.
func upsampleBlend(mode framegraph.CompositeMode) gputypes.BlendState {
	dstFactor := gputypes.BlendFactorOne
	if mode == framegraph.CompositeEnergyConserving {
		dstFactor = gputypes.BlendFactorOneMinusConstant
	}
	return gputypes.BlendState{
		Color: gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorConstant,
			DstFactor: dstFactor,
			Operation: gputypes.BlendOperationAdd,
		},
		Alpha: gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorZero,
			DstFactor: gputypes.BlendFactorOne,
			Operation: gputypes.BlendOperationAdd,
		},
	}
}

// upsampleDescriptor assembles the pipeline descriptor for an
// upsampling variant. The final pass renders in the output format;
// intermediate passes stay in the bloom chain format.
func upsampleDescriptor(key UpsampleKey, module hal.ShaderModule, layout hal.PipelineLayout, bloomFormat, outputFormat gputypes.TextureFormat) *hal.RenderPipelineDescriptor {
	format := bloomFormat
	if key.FinalPipeline {
		format = outputFormat
	}
	blend := upsampleBlend(key.Mode)

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
					Blend:     &blend,
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
