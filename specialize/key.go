// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package specialize

import "github.com/gogpu/framegraph"

// DownsampleKey selects one variant of the bloom downsampling pipeline.
// Keys are small comparable values: the cache memoizes directly on them,
// and equal keys always yield the same pipeline.
type DownsampleKey struct {
	// Prefilter folds the luminance threshold into the first
	// downsample, so only pixels above the threshold curve bloom.
	Prefilter bool

	// FirstDownsample marks the variant that samples the
	// full-resolution source. It applies Karis averaging to keep
	// single bright pixels from flickering across the mip chain.
	FirstDownsample bool

	// UniformScale marks views whose bloom scale is exactly one on
	// both axes, letting the shader skip the sample-offset transform.
	UniformScale bool
}

// DownsampleKeyFor derives the downsampling key for a view. first
// selects the full-resolution variant; the threshold and scale flags
// come from the view's settings.
func DownsampleKeyFor(view framegraph.ViewSettings, first bool) DownsampleKey {
	return DownsampleKey{
		Prefilter:       view.Prefilter(),
		FirstDownsample: first,
		UniformScale:    view.UniformScale(),
	}
}

// EntryPoint returns the fragment entry point the variant renders with.
func (k DownsampleKey) EntryPoint() string {
	if k.FirstDownsample {
		return "downsample_first"
	}
	return "downsample"
}

// flags maps the key onto the shader's specialization constants.
func (k DownsampleKey) flags() map[string]bool {
	return map[string]bool{
		flagFirstDownsample: k.FirstDownsample,
		flagUseThreshold:    k.Prefilter,
		flagUniformScale:    k.UniformScale,
	}
}

// Defs returns the names of the enabled shader flags in canonical
// order, for logs.
func (k DownsampleKey) Defs() []string {
	var defs []string
	flags := k.flags()
	for _, name := range shaderFlags {
		if flags[name] {
			defs = append(defs, name)
		}
	}
	return defs
}

// Label returns the debug label for the variant's GPU objects.
func (k DownsampleKey) Label() string {
	if k.FirstDownsample {
		return "bloom_downsampling_pipeline_first"
	}
	return "bloom_downsampling_pipeline"
}

// UpsampleKey selects one variant of the bloom upsampling pipeline.
type UpsampleKey struct {
	// Mode picks the blend arithmetic the variant composites with.
	Mode framegraph.CompositeMode

	// FinalPipeline marks the variant that composites onto the view's
	// output target instead of the intermediate mip chain, so it
	// renders in the output format.
	FinalPipeline bool
}

// UpsampleKeyFor derives the upsampling key for a view. final selects
// the variant that writes the view's output target.
func UpsampleKeyFor(view framegraph.ViewSettings, final bool) UpsampleKey {
	return UpsampleKey{Mode: view.Mode, FinalPipeline: final}
}

// EntryPoint returns the fragment entry point the variant renders with.
func (k UpsampleKey) EntryPoint() string { return "upsample" }

// Label returns the debug label for the variant's GPU objects.
func (k UpsampleKey) Label() string {
	if k.FinalPipeline {
		return "bloom_upsampling_final_pipeline"
	}
	return "bloom_upsampling_pipeline"
}
