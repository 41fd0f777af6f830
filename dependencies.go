// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import "fmt"

// depKind tags how a node uses a declared resource.
type depKind uint8

const (
	depRead depKind = iota + 1
	depWrite
	depBindGroup
)

// Dependency is one declared use of a graph resource, produced by Read,
// Write, or UseBindGroup and collected into a Dependencies set.
type Dependency struct {
	id    ResourceID
	kind  depKind
	class resourceClass
}

// Read declares that a node reads the resource behind h. The handle's
// generation is left untouched.
func Read[K ResourceKind](h Handle[K]) Dependency {
	return Dependency{id: h.id, kind: depRead, class: classOf[K]()}
}

// Write declares that a node reads and writes the resource behind h.
// The declaration advances the handle's generation in place: afterwards
// h denotes the post-write version of the resource, and the set records
// that advanced ID. A handle copied before the declaration still names
// the pre-write version and stays readable.
func Write[K ResourceKind](h *Handle[K]) Dependency {
	h.id.Generation++
	return Dependency{id: h.id, kind: depWrite, class: classOf[K]()}
}

// UseBindGroup declares that a node binds the group behind h. Bind
// groups are tracked by identity, not content: the set does not know
// which resources the group references.
func UseBindGroup(h BindGroupHandle) Dependency {
	return Dependency{id: h.id, kind: depBindGroup, class: classBindGroup}
}

// Dependencies is a node's declared resource footprint: the IDs it
// reads, the IDs it writes, and the bind groups it uses. The set is
// built additively before the node is registered and serves as the
// access-control list the node's context enforces at resolution time.
//
// Registering a node seals its set; Add panics afterwards. A sealed set
// may back further nodes with the same footprint.
type Dependencies struct {
	reads      map[ResourceID]resourceClass
	writes     map[ResourceID]resourceClass
	bindGroups map[ResourceID]struct{}
	sealed     bool
}

// DependenciesOf builds a set from zero or more declarations.
func DependenciesOf(items ...Dependency) *Dependencies {
	d := &Dependencies{}
	d.Add(items...)
	return d
}

// Add extends the set with more declarations. Panics once the set is
// attached to a node: a node's footprint is fixed at registration, and
// growing it afterwards would bypass access control.
func (d *Dependencies) Add(items ...Dependency) {
	if d.sealed {
		panic("framegraph: Add on a dependency set already attached to a node")
	}
	for _, item := range items {
		switch item.kind {
		case depRead:
			if d.reads == nil {
				d.reads = make(map[ResourceID]resourceClass)
			}
			d.reads[item.id] = item.class
		case depWrite:
			if d.writes == nil {
				d.writes = make(map[ResourceID]resourceClass)
			}
			d.writes[item.id] = item.class
		case depBindGroup:
			if d.bindGroups == nil {
				d.bindGroups = make(map[ResourceID]struct{})
			}
			d.bindGroups[item.id] = struct{}{}
		default:
			panic(fmt.Sprintf("framegraph: Add: zero Dependency for %s", item.id))
		}
	}
}

// ContainsResource reports whether id is declared as a read or a write.
func (d *Dependencies) ContainsResource(id ResourceID) bool {
	if d == nil {
		return false
	}
	if _, ok := d.reads[id]; ok {
		return true
	}
	_, ok := d.writes[id]
	return ok
}

// ContainsBindGroup reports whether the bind group id is declared.
func (d *Dependencies) ContainsBindGroup(id ResourceID) bool {
	if d == nil {
		return false
	}
	_, ok := d.bindGroups[id]
	return ok
}

// Len reports the total number of declared uses.
func (d *Dependencies) Len() int {
	if d == nil {
		return 0
	}
	return len(d.reads) + len(d.writes) + len(d.bindGroups)
}

// seal fixes the set. Called when a node is registered.
func (d *Dependencies) seal() {
	if d != nil {
		d.sealed = true
	}
}
