// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import "github.com/gogpu/gputypes"

// CompositeMode selects how an effect's contribution is blended back
// onto the view target.
type CompositeMode uint8

const (
	// CompositeEnergyConserving dims the base image as the effect
	// contribution rises, keeping overall brightness constant.
	CompositeEnergyConserving CompositeMode = iota

	// CompositeAdditive layers the effect contribution on top of the
	// base image unscaled.
	CompositeAdditive
)

// String returns the mode name used in labels and log messages.
func (m CompositeMode) String() string {
	switch m {
	case CompositeEnergyConserving:
		return "energy-conserving"
	case CompositeAdditive:
		return "additive"
	default:
		return "unknown"
	}
}

// ViewSettings is the per-view configuration a frame is built against:
// the target extent and format plus the effect parameters that select
// pipeline permutations. The graph carries it read-only; builder and
// context expose it to declaration and node code, and never mutate it.
type ViewSettings struct {
	// Width and Height are the view target extent in pixels.
	Width  uint32
	Height uint32

	// Format is the view target's texture format. The final composite
	// pipeline renders into this format.
	Format gputypes.TextureFormat

	// ScaleX and ScaleY stretch the effect's sampling footprint.
	// 1,1 samples the pyramid isotropically.
	ScaleX float32
	ScaleY float32

	// Threshold is the luminance floor below which the prefilter
	// discards pixels. Zero disables prefiltering entirely.
	Threshold float32

	// ThresholdSoftness feathers the threshold knee, 0 (hard cut)
	// through 1 (widest curve).
	ThresholdSoftness float32

	// Intensity scales the composited contribution.
	Intensity float32

	// Mode selects the composite blend.
	Mode CompositeMode
}

// DefaultViewSettings returns settings for a 1:1 HDR view with
// prefiltering disabled and a subtle energy-conserving composite.
func DefaultViewSettings(width, height uint32) ViewSettings {
	return ViewSettings{
		Width:     width,
		Height:    height,
		Format:    gputypes.TextureFormatRGBA16Float,
		ScaleX:    1,
		ScaleY:    1,
		Intensity: 0.15,
		Mode:      CompositeEnergyConserving,
	}
}

// UniformScale reports whether the sampling footprint is unscaled on
// both axes. Pipeline permutations skip the per-axis scale math when
// this holds.
func (v *ViewSettings) UniformScale() bool {
	return v.ScaleX == 1 && v.ScaleY == 1
}

// Prefilter reports whether the threshold prefilter pass is active.
func (v *ViewSettings) Prefilter() bool {
	return v.Threshold > 0
}
