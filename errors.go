package framegraph

import "errors"

// Sentinel errors for the framegraph package.
//
// Programmer errors (double insertion, phase violations, undeclared
// dependency access) are not represented here: they panic at the call
// site, since they indicate a bug in graph construction rather than a
// runtime condition the caller could recover from.
var (
	// ErrNilDevice is returned when realization is attempted without a device.
	ErrNilDevice = errors.New("framegraph: nil device")

	// ErrRealize classifies failures of deferred resource initializers.
	// The underlying cause is wrapped and reachable via errors.Unwrap.
	ErrRealize = errors.New("framegraph: resource realization failed")

	// ErrBindGroupRealize classifies bind group creation failures during
	// realization. Bind groups realize after the resources they reference,
	// so a failed texture or buffer surfaces as ErrRealize first.
	ErrBindGroupRealize = errors.New("framegraph: bind group realization failed")
)
