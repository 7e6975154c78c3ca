package ink

import "testing"

func TestNewPathParsesComponents(t *testing.T) {
	p := NewPath("knot.0.stitch")
	if p.IsRelative {
		t.Fatalf("path without leading dot should be absolute")
	}
	if p.Length() != 3 {
		t.Fatalf("got %d components, want 3", p.Length())
	}
	want := []Component{newNameComponent("knot"), newIndexComponent(0), newNameComponent("stitch")}
	for i, c := range want {
		if !p.Components[i].Equals(c) {
			t.Fatalf("component %d = %v, want %v", i, p.Components[i], c)
		}
	}
}

func TestNewPathRelativeWithParent(t *testing.T) {
	p := NewPath(".^.3")
	if !p.IsRelative {
		t.Fatalf("path with leading dot should be relative")
	}
	if p.Length() != 2 {
		t.Fatalf("got %d components, want 2", p.Length())
	}
	if !p.Components[0].isParent() {
		t.Fatalf("first component should be the parent marker")
	}
}

func TestPathEqualsComparesRelativeFlagAndComponents(t *testing.T) {
	a := NewPath("knot.stitch")
	b := NewPath("knot.stitch")
	c := NewPath(".knot.stitch")
	d := NewPath("knot.other")

	if !a.Equals(b) {
		t.Fatalf("identical path strings should compare equal")
	}
	if a.Equals(c) {
		t.Fatalf("absolute and relative paths should never compare equal")
	}
	if a.Equals(d) {
		t.Fatalf("paths with different components should not compare equal")
	}
}

func TestPathStringRoundTrips(t *testing.T) {
	for _, s := range []string{"knot.0.stitch", ".^.3", "root"} {
		p := NewPath(s)
		if got := p.String(); got != s {
			t.Fatalf("NewPath(%q).String() = %q, want %q", s, got, s)
		}
	}
}

func TestPathToObjectRoundTripsThroughResolvePath(t *testing.T) {
	root := NewContainer()
	root.AddContent(StringValue("intro"))
	nested := NewContainer()
	root.AddContent(nested)
	leaf := StringValue("leaf")
	nested.AddContent(IntValue(1))
	nested.AddContent(leaf)

	p := pathToObject(leaf)
	result := resolvePath(root, p)
	if result.Approximate {
		t.Fatalf("resolving a path built from the object itself should be exact")
	}
	if result.Obj != Object(leaf) {
		t.Fatalf("resolved object is not the original leaf")
	}
}

func TestPathToObjectAddressesNamedContentByName(t *testing.T) {
	root := NewContainer()
	knot := NewContainer()
	knot.SetName("knot")
	root.AddNamedOnly("knot", knot)
	leaf := StringValue("leaf")
	knot.AddContent(leaf)

	p := pathToObject(leaf)
	result := resolvePath(root, p)
	if result.Approximate {
		t.Fatalf("resolving a path to named-only content should be exact")
	}
	if result.Obj != Object(leaf) {
		t.Fatalf("resolved object is not the original leaf")
	}
}
