package specialize

import "errors"

// Sentinel errors for the specialize package. All are environment
// conditions a host can recover from (fall back to a simpler pipeline,
// disable the effect), unlike the construction bugs that panic in the
// framegraph package.
var (
	// ErrNilDevice is returned when a cache is configured without a device.
	ErrNilDevice = errors.New("specialize: nil device")

	// ErrShaderCompile classifies WGSL compilation failures. The naga
	// error is wrapped and reachable via errors.Unwrap.
	ErrShaderCompile = errors.New("specialize: shader compilation failed")

	// ErrInvalidEntryPoint is returned when a shader source does not
	// define an entry point a specialization key selects.
	ErrInvalidEntryPoint = errors.New("specialize: missing shader entry point")

	// ErrUnsupportedFormat is returned when a pipeline would target an
	// undefined or unusable color format.
	ErrUnsupportedFormat = errors.New("specialize: unsupported target format")
)
