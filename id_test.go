package framegraph

import "testing"

func TestResourceIDString(t *testing.T) {
	id := ResourceID{Index: 3, Generation: 1}
	if got := id.String(); got != "3@v1" {
		t.Errorf("expected 3@v1, got %q", got)
	}
}

func TestResourceIDEquality(t *testing.T) {
	a := ResourceID{Index: 2, Generation: 0}
	b := ResourceID{Index: 2, Generation: 1}
	if a == b {
		t.Error("expected IDs with different generations to differ")
	}
	if a != (ResourceID{Index: 2}) {
		t.Error("expected IDs with equal fields to match")
	}
}

func TestHandleRoundTrip(t *testing.T) {
	id := ResourceID{Index: 7, Generation: 2}
	h := handleOf[textureKind](id)
	if h.ID() != id {
		t.Errorf("expected %s back, got %s", id, h.ID())
	}
	if h.String() != "7@v2" {
		t.Errorf("expected 7@v2, got %q", h.String())
	}
}

func TestClassOf(t *testing.T) {
	cases := []struct {
		got  resourceClass
		want resourceClass
		name string
	}{
		{classOf[textureKind](), classTexture, "texture"},
		{classOf[bufferKind](), classBuffer, "buffer"},
		{classOf[samplerKind](), classSampler, "sampler"},
		{classOf[bindGroupKind](), classBindGroup, "bind group"},
		{classOf[pipelineKind](), classPipeline, "pipeline"},
	}
	for _, c := range cases {
		if c.got != c.want {
			t.Errorf("expected class %s, got %s", c.want, c.got)
		}
		if c.got.String() != c.name {
			t.Errorf("expected name %q, got %q", c.name, c.got.String())
		}
	}
}
