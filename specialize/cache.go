// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package specialize

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Config configures a Cache.
type Config struct {
	// Device compiles shader modules and builds pipelines. Required.
	Device framegraph.PipelineDevice

	// BloomFormat is the color format of the intermediate mip chain.
	// If Undefined, defaults to RGBA16Float.
	BloomFormat gputypes.TextureFormat

	// OutputFormat is the format final-pass pipelines render to,
	// normally the surface format. Required.
	OutputFormat gputypes.TextureFormat

	// Source replaces the built-in bloom shader. It must define the
	// same entry points. If empty, the embedded source is used.
	Source string
}

// variant pairs a compiled pipeline with the shader module it was
// built from, so Destroy can release both.
type variant struct {
	pipeline hal.RenderPipeline
	shader   hal.ShaderModule
}

// Cache memoizes specialized bloom pipelines by key. Keys are small
// comparable structs, so canonicalization is the key value itself:
// equal keys share one compiled pipeline.
//
// A Cache is shared across frames and may be reached from loader
// goroutines, so lookups take a read lock and builds a write lock with
// a double-check. The graph side stays single-threaded; only this
// collaborator synchronizes.
type Cache struct {
	mu     sync.RWMutex
	device framegraph.PipelineDevice

	bloomFormat  gputypes.TextureFormat
	outputFormat gputypes.TextureFormat
	source       string

	// Shared bind group layout (texture, sampler, uniforms) and the
	// pipeline layout over it. Created once at construction.
	layout     hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	sampler    hal.Sampler

	downsample map[DownsampleKey]variant
	upsample   map[UpsampleKey]variant

	// hits and misses are atomic for lock-free reads.
	hits   uint64
	misses uint64
}

// NewCache creates a pipeline cache for the given device and formats.
// The shared bind group layout and sampler are created immediately;
// pipelines compile lazily, on first request per key.
func NewCache(cfg Config) (*Cache, error) {
	if cfg.Device == nil {
		return nil, ErrNilDevice
	}
	if cfg.OutputFormat == gputypes.TextureFormatUndefined {
		return nil, fmt.Errorf("%w: output format is undefined", ErrUnsupportedFormat)
	}
	if cfg.BloomFormat == gputypes.TextureFormatUndefined {
		cfg.BloomFormat = gputypes.TextureFormatRGBA16Float
	}
	if cfg.Source == "" {
		cfg.Source = bloomShaderSource
	}
	if err := checkEntryPoints(cfg.Source); err != nil {
		return nil, err
	}

	layout, err := cfg.Device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "bloom_bind_group_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("specialize: create bind group layout: %w", err)
	}

	pipeLayout, err := cfg.Device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "bloom_pipeline_layout",
		BindGroupLayouts: []hal.BindGroupLayout{layout},
	})
	if err != nil {
		cfg.Device.DestroyBindGroupLayout(layout)
		return nil, fmt.Errorf("specialize: create pipeline layout: %w", err)
	}

	// Linear filtering, clamped: the mip chain is sampled between
	// texel centers in both directions.
	sampler, err := cfg.Device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "bloom_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
	})
	if err != nil {
		cfg.Device.DestroyPipelineLayout(pipeLayout)
		cfg.Device.DestroyBindGroupLayout(layout)
		return nil, fmt.Errorf("specialize: create sampler: %w", err)
	}

	return &Cache{
		device:       cfg.Device,
		bloomFormat:  cfg.BloomFormat,
		outputFormat: cfg.OutputFormat,
		source:       cfg.Source,
		layout:       layout,
		pipeLayout:   pipeLayout,
		sampler:      sampler,
		downsample:   make(map[DownsampleKey]variant),
		upsample:     make(map[UpsampleKey]variant),
	}, nil
}

// Layout returns the shared bind group layout the cached pipelines
// expect: sampled texture, filtering sampler, uniform buffer.
func (c *Cache) Layout() hal.BindGroupLayout { return c.layout }

// Sampler returns the shared linear clamp-to-edge sampler.
func (c *Cache) Sampler() hal.Sampler { return c.sampler }

// Downsample returns the pipeline variant for key, compiling it on
// first request.
func (c *Cache) Downsample(key DownsampleKey) (hal.RenderPipeline, error) {
	// Fast path: read lock.
	c.mu.RLock()
	if v, ok := c.downsample[key]; ok {
		c.mu.RUnlock()
		atomic.AddUint64(&c.hits, 1)
		return v.pipeline, nil
	}
	c.mu.RUnlock()

	// Slow path: write lock with double-check.
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.downsample[key]; ok {
		atomic.AddUint64(&c.hits, 1)
		return v.pipeline, nil
	}

	start := time.Now()
	v, err := c.buildDownsample(key)
	if err != nil {
		return nil, err
	}
	c.downsample[key] = v
	atomic.AddUint64(&c.misses, 1)
	framegraph.Logger().Debug("specialize: pipeline compiled",
		"label", key.Label(), "dur", time.Since(start))
	return v.pipeline, nil
}

// Upsample returns the pipeline variant for key, compiling it on first
// request.
func (c *Cache) Upsample(key UpsampleKey) (hal.RenderPipeline, error) {
	c.mu.RLock()
	if v, ok := c.upsample[key]; ok {
		c.mu.RUnlock()
		atomic.AddUint64(&c.hits, 1)
		return v.pipeline, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.upsample[key]; ok {
		atomic.AddUint64(&c.hits, 1)
		return v.pipeline, nil
	}

	start := time.Now()
	v, err := c.buildUpsample(key)
	if err != nil {
		return nil, err
	}
	c.upsample[key] = v
	atomic.AddUint64(&c.misses, 1)
	framegraph.Logger().Debug("specialize: pipeline compiled",
		"label", key.Label(), "dur", time.Since(start))
	return v.pipeline, nil
}

// Stats returns the number of cache hits and misses. The values are
// read atomically and may not be perfectly synchronized.
func (c *Cache) Stats() (hits, misses uint64) {
	return atomic.LoadUint64(&c.hits), atomic.LoadUint64(&c.misses)
}

// HitRate returns the fraction of lookups served from the cache, or 0
// before any lookup.
func (c *Cache) HitRate() float64 {
	hits := atomic.LoadUint64(&c.hits)
	misses := atomic.LoadUint64(&c.misses)
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// Len returns the number of compiled variants.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.downsample) + len(c.upsample)
}

// Destroy releases every compiled variant and the shared layouts and
// sampler. Safe to call more than once.
func (c *Cache) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, v := range c.downsample {
		c.device.DestroyRenderPipeline(v.pipeline)
		c.device.DestroyShaderModule(v.shader)
		delete(c.downsample, key)
	}
	for key, v := range c.upsample {
		c.device.DestroyRenderPipeline(v.pipeline)
		c.device.DestroyShaderModule(v.shader)
		delete(c.upsample, key)
	}
	if c.sampler != nil {
		c.device.DestroySampler(c.sampler)
		c.sampler = nil
	}
	if c.pipeLayout != nil {
		c.device.DestroyPipelineLayout(c.pipeLayout)
		c.pipeLayout = nil
	}
	if c.layout != nil {
		c.device.DestroyBindGroupLayout(c.layout)
		c.layout = nil
	}
}
