// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package specialize

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// Embedded bloom shader: fullscreen vertex stage plus the downsample
// and upsample fragment entry points.
//
//go:embed shaders/bloom.wgsl
var bloomShaderSource string

// Shader specialization flags. The base source declares none of them;
// specializedSource prepends one const per flag, so every variant is a
// complete module and flag toggles select code at compile time.
const (
	flagFirstDownsample = "FIRST_DOWNSAMPLE"
	flagUseThreshold    = "USE_THRESHOLD"
	flagUniformScale    = "UNIFORM_SCALE"
)

// shaderFlags lists the flags in the order their declarations are
// emitted, which keeps specialized sources canonical per key.
var shaderFlags = []string{flagFirstDownsample, flagUseThreshold, flagUniformScale}

// entryPoints lists every entry point the specializers select from a
// bloom shader source.
var entryPoints = []string{"vs_main", "downsample_first", "downsample", "upsample"}

// specializedSource prepends a const declaration per specialization
// flag. Flags absent from enabled are declared false, so the emitted
// header always covers the full set.
func specializedSource(base string, enabled map[string]bool) string {
	var b strings.Builder
	for _, name := range shaderFlags {
		fmt.Fprintf(&b, "const %s: bool = %t;\n", name, enabled[name])
	}
	b.WriteString(base)
	return b.String()
}

// checkEntryPoints verifies that source textually defines every entry
// point a key can select. A replacement source missing one would
// otherwise fail deep inside pipeline creation with a backend error.
func checkEntryPoints(source string) error {
	for _, entry := range entryPoints {
		if !strings.Contains(source, "fn "+entry) {
			return fmt.Errorf("%w: %s", ErrInvalidEntryPoint, entry)
		}
	}
	return nil
}

// compileModule specializes the source with the enabled flags, compiles
// the WGSL to SPIR-V, and creates the shader module.
func compileModule(device framegraph.PipelineDevice, label, source string, enabled map[string]bool) (hal.ShaderModule, error) {
	spirvBytes, err := naga.Compile(specializedSource(source, enabled))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrShaderCompile, label, err)
	}

	// SPIR-V is little-endian 32-bit words.
	spirvCode := make([]uint32, len(spirvBytes)/4)
	for i := range spirvCode {
		spirvCode[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}

	module, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{SPIRV: spirvCode},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrShaderCompile, label, err)
	}
	return module, nil
}
