package ink

import "testing"

func TestValueCoerceToInt(t *testing.T) {
	cases := []struct {
		v    *Value
		want int32
	}{
		{BoolValue(true), 1},
		{BoolValue(false), 0},
		{IntValue(42), 42},
		{FloatValue(3.9), 3},
		{FloatValue(-3.9), -3},
	}
	for _, c := range cases {
		got, err := c.v.CoerceToInt()
		if err != nil {
			t.Fatalf("CoerceToInt(%v): %v", c.v, err)
		}
		if got != c.want {
			t.Fatalf("CoerceToInt(%v) = %d, want %d", c.v, got, c.want)
		}
	}
}

func TestValueCoerceToIntRejectsStringAndList(t *testing.T) {
	for _, v := range []*Value{StringValue("3"), ListValue(NewInkList())} {
		if _, err := v.CoerceToInt(); err == nil {
			t.Fatalf("CoerceToInt(%v) should fail, kind %s has no numeric coercion", v, v.Kind)
		}
	}
}

func TestValueCastOrdinalOrdersPromotionTargets(t *testing.T) {
	order := []*Value{BoolValue(true), IntValue(1), FloatValue(1), ListValue(NewInkList()), StringValue("s")}
	for i := 1; i < len(order); i++ {
		if order[i-1].CastOrdinal() >= order[i].CastOrdinal() {
			t.Fatalf("%s ordinal should be less than %s ordinal", order[i-1].Kind, order[i].Kind)
		}
	}
}

func TestValueEqualsIsWithinKind(t *testing.T) {
	if IntValue(1).Equals(FloatValue(1)) {
		t.Fatalf("values of different kinds should never be Equals, even with equal numeric value")
	}
	if !IntValue(5).Equals(IntValue(5)) {
		t.Fatalf("equal ints should be Equals")
	}
	a := DivertTargetValue(NewPath("knot.stitch"))
	b := DivertTargetValue(NewPath("knot.stitch"))
	if !a.Equals(b) {
		t.Fatalf("divert targets with equal paths should be Equals")
	}
}

func TestStringValuePrecomputesWhitespaceAndNewline(t *testing.T) {
	if !StringValue("\n").IsNewline() {
		t.Fatalf(`StringValue("\n").IsNewline() should be true`)
	}
	if StringValue("x\n").IsNewline() {
		t.Fatalf("only the exact single newline string counts as IsNewline")
	}
	if !StringValue("  \t").IsInlineWhitespace() {
		t.Fatalf("a string of only spaces/tabs should be inline whitespace")
	}
	if StringValue("  x").IsInlineWhitespace() {
		t.Fatalf("a string with non-whitespace content should not be inline whitespace")
	}
	if !StringValue("").IsInlineWhitespace() {
		t.Fatalf("the empty string should count as inline whitespace")
	}
}

func TestValueIsTruthy(t *testing.T) {
	cases := []struct {
		v    *Value
		want bool
	}{
		{BoolValue(true), true},
		{BoolValue(false), false},
		{IntValue(0), false},
		{IntValue(1), true},
		{StringValue(""), false},
		{StringValue("x"), true},
		{ListValue(NewInkList()), false},
	}
	for _, c := range cases {
		got, err := c.v.IsTruthy()
		if err != nil {
			t.Fatalf("IsTruthy(%v): %v", c.v, err)
		}
		if got != c.want {
			t.Fatalf("IsTruthy(%v) = %v, want %v", c.v, got, c.want)
		}
	}
}
