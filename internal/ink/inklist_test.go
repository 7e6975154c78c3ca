package ink

import "testing"

func twoColorDefs() *ListDefinitionsOrigin {
	origins := NewListDefinitionsOrigin()
	origins.Add(&ListDefinition{Name: "colors", Items: map[string]int32{"red": 1, "green": 2, "blue": 3}})
	origins.Add(&ListDefinition{Name: "sizes", Items: map[string]int32{"small": 1, "large": 2}})
	return origins
}

func colorItem(name string, v int32) ListItem { return ListItem{OriginName: "colors", ItemName: name} }

func TestInkListUnionIntersectWithout(t *testing.T) {
	red := SingleItem(colorItem("red", 1), 1)
	green := SingleItem(colorItem("green", 2), 2)

	union := red.Union(green)
	if !union.Contains(red) || !union.Contains(green) {
		t.Fatalf("union %v should contain both operands", union)
	}

	inter := union.Intersect(red)
	if !inter.Equals(red) {
		t.Fatalf("intersect of union with red = %v, want %v", inter, red)
	}

	without := union.Without(red)
	if without.Contains(red) {
		t.Fatalf("without(red) should not contain red: %v", without)
	}
	if !without.Equals(green) {
		t.Fatalf("union without red = %v, want %v", without, green)
	}
}

func TestInkListAllAndInverse(t *testing.T) {
	origins := twoColorDefs()
	l, err := FromSingleOrigin("colors", origins)
	if err != nil {
		t.Fatalf("FromSingleOrigin: %v", err)
	}
	l = l.Union(SingleItem(colorItem("red", 1), 1))

	all := l.All()
	if len(all.Items()) != 3 {
		t.Fatalf("All() = %d items, want 3", len(all.Items()))
	}

	inv := l.Inverse()
	if inv.Contains(SingleItem(colorItem("red", 1), 1)) {
		t.Fatalf("inverse of a list containing red should not contain red: %v", inv)
	}
	if len(inv.Items()) != 2 {
		t.Fatalf("inverse = %d items, want 2 (green, blue)", len(inv.Items()))
	}
}

func TestInkListIncrement(t *testing.T) {
	origins := twoColorDefs()
	red := SingleItem(colorItem("red", 1), 1)
	red.origins = []*ListDefinition{mustGet(t, origins, "colors")}

	green := red.Increment(1, origins)
	want := SingleItem(colorItem("green", 2), 2)
	if !green.Equals(want) {
		t.Fatalf("red incremented by 1 = %v, want %v", green, want)
	}

	// Incrementing past the end of the origin's item range drops the
	// item entirely rather than wrapping.
	past := red.Increment(10, origins)
	if !past.IsEmpty() {
		t.Fatalf("incrementing past range should drop the item, got %v", past)
	}
}

func mustGet(t *testing.T, origins *ListDefinitionsOrigin, name string) *ListDefinition {
	t.Helper()
	d, ok := origins.Get(name)
	if !ok {
		t.Fatalf("list definition %q not found", name)
	}
	return d
}

func TestInkListOrderingComparisons(t *testing.T) {
	low := SingleItem(colorItem("red", 1), 1)
	high := SingleItem(colorItem("blue", 3), 3)

	if !high.GreaterThan(low) {
		t.Fatalf("blue(3) should be greater than red(1)")
	}
	if high.GreaterThan(high) {
		t.Fatalf("a list is never strictly greater than itself")
	}
	if !low.LessThan(high) {
		t.Fatalf("red(1) should be less than blue(3)")
	}
	if !low.LessThanOrEquals(low) {
		t.Fatalf("a list should be <= itself")
	}
}

func TestInkListEqualsIgnoresValues(t *testing.T) {
	a := SingleItem(ListItem{OriginName: "colors", ItemName: "red"}, 1)
	b := SingleItem(ListItem{OriginName: "colors", ItemName: "red"}, 99)
	if !a.Equals(b) {
		t.Fatalf("InkList.Equals compares key sets, not values: %v != %v", a, b)
	}
}
