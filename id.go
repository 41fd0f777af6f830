package framegraph

import "fmt"

// ResourceID identifies one slot in a per-kind resource table.
//
// Index addresses the slot. Generation is the logical version of the
// resource held there: a write-dependency declaration advances it, so two
// IDs with equal indices but different generations name different versions
// of the same resource. Two IDs are equal only if both fields match.
//
// IDs are frame-scoped. The allocator restarts at zero on reset, so an ID
// held across a frame boundary is meaningless and must not be resolved.
type ResourceID struct {
	Index      uint16
	Generation uint16
}

// String formats the ID for log and panic messages.
func (id ResourceID) String() string {
	return fmt.Sprintf("%d@v%d", id.Index, id.Generation)
}

// Marker types for Handle instantiations. The set is closed on purpose:
// the Graph wires exactly one store per kind.
type (
	textureKind   struct{}
	bufferKind    struct{}
	samplerKind   struct{}
	bindGroupKind struct{}
	pipelineKind  struct{}
)

// ResourceKind is the set of kinds that participate in read/write
// dependency declarations. Bind groups are tracked separately (they are
// consumed whole, never written).
type ResourceKind interface {
	textureKind | bufferKind | samplerKind | pipelineKind
}

// Kind is the full set of resource kinds a graph stores.
type Kind interface {
	ResourceKind | bindGroupKind
}

// Handle is a copyable, kind-tagged reference to a declared resource.
// The kind type parameter pins the handle to the table it resolves
// against, so a buffer handle cannot be passed where a texture handle is
// expected. Handles are capability tokens: the graph owns the resource,
// a handle only names it.
type Handle[K Kind] struct {
	id ResourceID
}

// ID returns the underlying generational ID.
func (h Handle[K]) ID() ResourceID { return h.id }

// String formats the handle for log and panic messages.
func (h Handle[K]) String() string { return h.id.String() }

// handleOf wraps a raw ID. Handles reach user code only through Builder
// declarations, so this stays internal.
func handleOf[K Kind](id ResourceID) Handle[K] { return Handle[K]{id: id} }

// resourceClass names a kind at run time, for dispatching an ID back to
// the store that owns it.
type resourceClass uint8

const (
	classTexture resourceClass = iota + 1
	classBuffer
	classSampler
	classBindGroup
	classPipeline
)

// String returns the class name used in log and panic messages.
func (c resourceClass) String() string {
	switch c {
	case classTexture:
		return "texture"
	case classBuffer:
		return "buffer"
	case classSampler:
		return "sampler"
	case classBindGroup:
		return "bind group"
	case classPipeline:
		return "pipeline"
	default:
		return "unknown"
	}
}

// classOf maps a kind type parameter to its run-time class.
func classOf[K Kind]() resourceClass {
	var k K
	switch any(k).(type) {
	case textureKind:
		return classTexture
	case bufferKind:
		return classBuffer
	case samplerKind:
		return classSampler
	case bindGroupKind:
		return classBindGroup
	case pipelineKind:
		return classPipeline
	default:
		panic("framegraph: unknown resource kind")
	}
}

// Handle aliases for the five kinds the graph stores.
type (
	// TextureHandle references a texture and its default view.
	TextureHandle = Handle[textureKind]

	// BufferHandle references a GPU buffer.
	BufferHandle = Handle[bufferKind]

	// SamplerHandle references a sampler.
	SamplerHandle = Handle[samplerKind]

	// BindGroupHandle references a bind group declared over graph resources.
	BindGroupHandle = Handle[bindGroupKind]

	// PipelineHandle references a compiled render pipeline, usually
	// obtained through a specializer.
	PipelineHandle = Handle[pipelineKind]
)
