// Package framegraph manages per-frame GPU resource lifecycles for a
// render graph: declaration, deferred realization, dependency-scoped
// access, and destruction or retention at the frame boundary.
//
// # Overview
//
// A frame's resources are declared up front against a Builder, which
// hands back generational handles. GPU objects are not created at
// declaration: realization happens once per frame, after building, when
// the host provides device access. Nodes registered on the builder name
// their resource footprint as a dependency set; during execution each
// node resolves handles through a NodeContext that refuses access to
// anything outside that set.
//
// # Quick Start
//
//	import "github.com/gogpu/framegraph"
//
//	g := framegraph.NewGraph(framegraph.GraphConfig{})
//
//	err := g.Frame(device, queue, nil, func(b *framegraph.Builder) error {
//		color := b.NewTexture(&hal.TextureDescriptor{ /* ... */ })
//		uniforms := b.NewBuffer(&hal.BufferDescriptor{ /* ... */ })
//
//		deps := framegraph.DependenciesOf(
//			framegraph.Read(uniforms),
//			framegraph.Write(&color),
//		)
//		b.AddNode(deps, func(ctx *framegraph.NodeContext) {
//			target := ctx.Texture(color)
//			// record GPU work against target.View ...
//		})
//		return nil
//	})
//
// # Frame Lifecycle
//
// The graph steps through Idle, Building, Realizing, Executing, and
// Resetting each frame. Frame drives the whole cycle; hosts that
// interleave declaration with other engine stages call Begin, Realize,
// Execute, and Reset themselves. Out-of-phase calls panic: they are
// construction bugs, not runtime conditions.
//
// # Ownership
//
// The graph destroys what it created. Resources declared through New*
// are released at reset; imported objects (ImportTexture, ImportBuffer,
// ImportPipeline) are never destroyed by the graph. RetainedTexture and
// RetainedBuffer carry a resource across exactly one frame boundary
// under a stable label; a label not re-declared next frame ages out.
//
// # Write Versioning
//
// Declaring a write advances the handle's generation in place, so the
// handle names the post-write version while copies taken earlier keep
// naming the pre-write one. Resolution checks the version watermark: a
// handle ahead of its slot panics.
//
// Pipeline specialization (variant compilation keyed by view settings)
// lives in the specialize subpackage.
package framegraph

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
