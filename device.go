// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import (
	"fmt"
	"sync/atomic"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Device is the device surface the graph needs to realize and release
// resources. It is a narrow view of hal.Device: any HAL device satisfies
// it directly, and tests substitute lightweight fakes.
//
// Key principle: the graph RECEIVES the device from the host, it does
// NOT create one. Realization and release are the only device access the
// graph performs; command recording stays with the host's nodes.
type Device interface {
	CreateTexture(*hal.TextureDescriptor) (hal.Texture, error)
	DestroyTexture(hal.Texture)
	CreateTextureView(hal.Texture, *hal.TextureViewDescriptor) (hal.TextureView, error)
	DestroyTextureView(hal.TextureView)
	CreateBuffer(*hal.BufferDescriptor) (hal.Buffer, error)
	DestroyBuffer(hal.Buffer)
	CreateSampler(*hal.SamplerDescriptor) (hal.Sampler, error)
	DestroySampler(hal.Sampler)
	CreateBindGroup(*hal.BindGroupDescriptor) (hal.BindGroup, error)
	DestroyBindGroup(hal.BindGroup)
}

// PipelineDevice extends Device with the construction surface a pipeline
// specializer needs: shader modules, layouts, and render pipelines. Any
// HAL device satisfies it; the graph itself never requires more than
// Device.
type PipelineDevice interface {
	Device
	CreateShaderModule(*hal.ShaderModuleDescriptor) (hal.ShaderModule, error)
	DestroyShaderModule(hal.ShaderModule)
	CreateBindGroupLayout(*hal.BindGroupLayoutDescriptor) (hal.BindGroupLayout, error)
	DestroyBindGroupLayout(hal.BindGroupLayout)
	CreatePipelineLayout(*hal.PipelineLayoutDescriptor) (hal.PipelineLayout, error)
	DestroyPipelineLayout(hal.PipelineLayout)
	CreateRenderPipeline(*hal.RenderPipelineDescriptor) (hal.RenderPipeline, error)
	DestroyRenderPipeline(hal.RenderPipeline)
}

// Ensure hal.Device satisfies both surfaces.
var (
	_ Device         = hal.Device(nil)
	_ PipelineDevice = hal.Device(nil)
)

// DeviceHandle provides GPU device access from the host application.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider, providing a
// framegraph-specific name for the interface while maintaining full
// compatibility with the gpucontext ecosystem.
type DeviceHandle = gpucontext.DeviceProvider

// FromProvider extracts the HAL device and queue from a host device
// provider. Providers that expose their HAL types (gogpu's context does)
// implement HalDevice/HalQueue accessors; anything else cannot drive
// realization.
func FromProvider(provider DeviceHandle) (Device, hal.Queue, error) {
	if provider == nil {
		return nil, nil, ErrNilDevice
	}
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, nil, fmt.Errorf("framegraph: provider %T does not expose HAL types", provider)
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, nil, fmt.Errorf("framegraph: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, nil, fmt.Errorf("framegraph: provider HalQueue is not hal.Queue")
	}
	return device, queue, nil
}

// nullResource satisfies the HAL resource interfaces with no backing
// GPU object. Each carries a unique fake native handle so bind group
// entries built from null resources remain distinguishable.
type nullResource struct{ handle uintptr }

func (r nullResource) Destroy()              {}
func (r nullResource) NativeHandle() uintptr { return r.handle }

// hal.Texture state tracking and deferred destruction: no backing GPU
// object, so no tracked usage and nothing to defer.
func (r nullResource) CurrentUsage() gputypes.TextureUsage { return 0 }
func (r nullResource) AddPendingRef()                      {}
func (r nullResource) DecPendingRef()                      {}

// NullDevice is a Device that fabricates inert resources without a GPU.
// It backs headless runs and tests: creation always succeeds, creation
// and destruction counts are tracked, and the fabricated objects carry
// no native state.
//
// NullDevice also implements the pipeline-side creation methods
// (shader modules, pipeline layouts, render pipelines), so a pipeline
// specializer can run against it headlessly.
type NullDevice struct {
	nextHandle atomic.Uintptr

	TexturesCreated     atomic.Int32
	TexturesDestroyed   atomic.Int32
	ViewsCreated        atomic.Int32
	ViewsDestroyed      atomic.Int32
	BuffersCreated      atomic.Int32
	BuffersDestroyed    atomic.Int32
	SamplersCreated     atomic.Int32
	SamplersDestroyed   atomic.Int32
	BindGroupsCreated   atomic.Int32
	BindGroupsDestroyed atomic.Int32
	LayoutsCreated      atomic.Int32
	LayoutsDestroyed    atomic.Int32
	ShadersCreated      atomic.Int32
	ShadersDestroyed    atomic.Int32
	PipelinesCreated    atomic.Int32
	PipelinesDestroyed  atomic.Int32
}

var (
	_ Device         = (*NullDevice)(nil)
	_ PipelineDevice = (*NullDevice)(nil)
)

func (d *NullDevice) alloc() nullResource {
	return nullResource{handle: d.nextHandle.Add(1)}
}

func (d *NullDevice) CreateTexture(_ *hal.TextureDescriptor) (hal.Texture, error) {
	d.TexturesCreated.Add(1)
	return d.alloc(), nil
}

func (d *NullDevice) DestroyTexture(_ hal.Texture) { d.TexturesDestroyed.Add(1) }

func (d *NullDevice) CreateTextureView(_ hal.Texture, _ *hal.TextureViewDescriptor) (hal.TextureView, error) {
	d.ViewsCreated.Add(1)
	return d.alloc(), nil
}

func (d *NullDevice) DestroyTextureView(_ hal.TextureView) { d.ViewsDestroyed.Add(1) }

func (d *NullDevice) CreateBuffer(_ *hal.BufferDescriptor) (hal.Buffer, error) {
	d.BuffersCreated.Add(1)
	return d.alloc(), nil
}

func (d *NullDevice) DestroyBuffer(_ hal.Buffer) { d.BuffersDestroyed.Add(1) }

func (d *NullDevice) CreateSampler(_ *hal.SamplerDescriptor) (hal.Sampler, error) {
	d.SamplersCreated.Add(1)
	return d.alloc(), nil
}

func (d *NullDevice) DestroySampler(_ hal.Sampler) { d.SamplersDestroyed.Add(1) }

func (d *NullDevice) CreateBindGroup(_ *hal.BindGroupDescriptor) (hal.BindGroup, error) {
	d.BindGroupsCreated.Add(1)
	return d.alloc(), nil
}

func (d *NullDevice) DestroyBindGroup(_ hal.BindGroup) { d.BindGroupsDestroyed.Add(1) }

func (d *NullDevice) CreateBindGroupLayout(_ *hal.BindGroupLayoutDescriptor) (hal.BindGroupLayout, error) {
	d.LayoutsCreated.Add(1)
	return d.alloc(), nil
}

func (d *NullDevice) DestroyBindGroupLayout(_ hal.BindGroupLayout) { d.LayoutsDestroyed.Add(1) }

func (d *NullDevice) CreatePipelineLayout(_ *hal.PipelineLayoutDescriptor) (hal.PipelineLayout, error) {
	d.LayoutsCreated.Add(1)
	return d.alloc(), nil
}

func (d *NullDevice) DestroyPipelineLayout(_ hal.PipelineLayout) { d.LayoutsDestroyed.Add(1) }

func (d *NullDevice) CreateShaderModule(_ *hal.ShaderModuleDescriptor) (hal.ShaderModule, error) {
	d.ShadersCreated.Add(1)
	return d.alloc(), nil
}

func (d *NullDevice) DestroyShaderModule(_ hal.ShaderModule) { d.ShadersDestroyed.Add(1) }

func (d *NullDevice) CreateRenderPipeline(_ *hal.RenderPipelineDescriptor) (hal.RenderPipeline, error) {
	d.PipelinesCreated.Add(1)
	return d.alloc(), nil
}

func (d *NullDevice) DestroyRenderPipeline(_ hal.RenderPipeline) { d.PipelinesDestroyed.Add(1) }
