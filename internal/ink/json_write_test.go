package ink

import "testing"

// TestWriteStoryJSONRoundTripsThroughReadStoryFromJSON builds a small
// content tree covering every object kind objectToGeneric knows about,
// writes it, reads it back, and checks the two trees agree structurally.
func TestWriteStoryJSONRoundTripsThroughReadStoryFromJSON(t *testing.T) {
	origins := NewListDefinitionsOrigin()
	origins.Add(&ListDefinition{Name: "colors", Items: map[string]int32{"red": 1, "green": 2}})

	root := NewContainer()
	root.AddContent(StringValue("Hello"))
	root.AddContent(StringValue("\n"))
	root.AddContent(NewGlue())
	root.AddContent(NewVoid())
	root.AddContent(NewTag("a tag"))
	root.AddContent(IntValue(7))
	root.AddContent(FloatValue(1.5))
	root.AddContent(BoolValue(true))
	root.AddContent(DivertTargetValue(NewPath("knot.stitch")))

	list := SingleItem(ListItem{OriginName: "colors", ItemName: "red"}, 1)
	root.AddContent(ListValue(list))

	d := NewDivert()
	d.SetTargetPath(NewPath("knot"))
	root.AddContent(d)

	cp := NewChoicePoint(CPOnceOnly)
	cp.SetPathOnChoice(NewPath("knot.c-0"))
	root.AddContent(cp)

	root.AddContent(NewVariableReference("x"))
	root.AddContent(NewVariableAssignment("x", true, true))
	root.AddContent(NewControlCommand(CmdDone))

	nested := NewContainer()
	nested.SetName("knot")
	nested.AddContent(StringValue("nested"))
	root.AddNamedOnly("knot", nested)

	data, err := WriteStoryJSON(root, origins)
	if err != nil {
		t.Fatalf("WriteStoryJSON: %v", err)
	}

	readRoot, readOrigins, version, err := ReadStoryFromJSON(data)
	if err != nil {
		t.Fatalf("ReadStoryFromJSON: %v", err)
	}
	if version != InkVersionCurrent {
		t.Fatalf("round-tripped version = %d, want %d", version, InkVersionCurrent)
	}
	if diff := diffContainers(root, readRoot); diff != "" {
		t.Fatalf("round trip mismatch: %s", diff)
	}
	if _, ok := readOrigins.Get("colors"); !ok {
		t.Fatalf("list definition \"colors\" did not survive the round trip")
	}
}
