package ink

import "math"

// NativeOp identifies one of ink's built-in operators, carried by a
// NativeFunctionCall object. Names and arities are taken from the
// reference implementation's operator table.
type NativeOp int

const (
	OpAdd NativeOp = iota
	OpSubtract
	OpDivide
	OpMultiply
	OpMod
	OpNegate

	OpEqual
	OpGreater
	OpLess
	OpGreaterThanOrEquals
	OpLessThanOrEquals
	OpNotEquals
	OpNot

	OpAnd
	OpOr

	OpMin
	OpMax

	OpPow
	OpFloor
	OpCeiling
	OpIntCast
	OpFloatCast

	OpHas
	OpHasnt
	OpIntersect

	OpListMin
	OpListMax
	OpListAll
	OpListCount
	OpListValue
	OpListInvert
)

var nativeOpNames = map[NativeOp]string{
	OpAdd: "+", OpSubtract: "-", OpDivide: "/", OpMultiply: "*", OpMod: "%", OpNegate: "_",
	OpEqual: "==", OpGreater: ">", OpLess: "<", OpGreaterThanOrEquals: ">=", OpLessThanOrEquals: "<=",
	OpNotEquals: "!=", OpNot: "!", OpAnd: "&&", OpOr: "||",
	OpMin: "MIN", OpMax: "MAX", OpPow: "POW", OpFloor: "FLOOR", OpCeiling: "CEILING",
	OpIntCast: "INT", OpFloatCast: "FLOAT",
	OpHas: "?", OpHasnt: "!?", OpIntersect: "^",
	OpListMin: "LIST_MIN", OpListMax: "LIST_MAX", OpListAll: "LIST_ALL", OpListCount: "LIST_COUNT",
	OpListValue: "LIST_VALUE", OpListInvert: "LIST_INVERT",
}

var nativeOpArity = map[NativeOp]int{
	OpAdd: 2, OpSubtract: 2, OpDivide: 2, OpMultiply: 2, OpMod: 2, OpNegate: 1,
	OpEqual: 2, OpGreater: 2, OpLess: 2, OpGreaterThanOrEquals: 2, OpLessThanOrEquals: 2,
	OpNotEquals: 2, OpNot: 1, OpAnd: 2, OpOr: 2,
	OpMin: 2, OpMax: 2, OpPow: 2, OpFloor: 1, OpCeiling: 1, OpIntCast: 1, OpFloatCast: 1,
	OpHas: 2, OpHasnt: 2, OpIntersect: 2,
	OpListMin: 1, OpListMax: 1, OpListAll: 1, OpListCount: 1, OpListValue: 1, OpListInvert: 1,
}

var nativeOpsByName map[string]NativeOp

func init() {
	nativeOpsByName = make(map[string]NativeOp, len(nativeOpNames))
	for k, v := range nativeOpNames {
		nativeOpsByName[v] = k
	}
}

// NativeFunctionCall wraps an operator identifier and dispatches it
// against popped evaluation-stack parameters.
type NativeFunctionCall struct {
	baseObject
	Op NativeOp
}

func NewNativeFunctionCall(op NativeOp) *NativeFunctionCall {
	n := &NativeFunctionCall{Op: op}
	n.bindSelf(n)
	return n
}

// NativeFunctionFromName looks up an operator by its compiled-JSON token,
// with the special-case "L^" spelling for intersect that the JSON string
// encoding uses to disambiguate from the "^" prefix of plain string values.
func NativeFunctionFromName(name string) (*NativeFunctionCall, bool) {
	if name == "L^" {
		return NewNativeFunctionCall(OpIntersect), true
	}
	op, ok := nativeOpsByName[name]
	if !ok {
		return nil, false
	}
	return NewNativeFunctionCall(op), true
}

func (n *NativeFunctionCall) Type() ObjectType { return ObjNativeFunctionCall }

func (n *NativeFunctionCall) Arity() int { return nativeOpArity[n.Op] }

func (n *NativeFunctionCall) String() string { return "Native '" + nativeOpNames[n.Op] + "'" }

// Call implements a three-step dispatch:
// 1. any Void parameter -> error
// 2. arity=2 with any List parameter -> list-specific binary logic
// 3. otherwise coerce all params to the highest cast ordinal and dispatch
func (n *NativeFunctionCall) Call(params []*Value, origins *ListDefinitionsOrigin) (*Value, error) {
	if len(params) != n.Arity() {
		return nil, invalidStateF("unexpected number of parameters to native function '%s'", nativeOpNames[n.Op])
	}
	hasList := false
	for _, p := range params {
		if p == nil {
			return nil, invalidStateF("operation on void. Did you forget to 'return' a value from a function you called here?")
		}
		if p.Kind == KindList {
			hasList = true
		}
	}
	if len(params) == 2 && hasList {
		return n.callBinaryListOp(params[0], params[1], origins)
	}
	coerced, kind, err := coerceToHighestOrdinal(params)
	if err != nil {
		return nil, err
	}
	return n.callTyped(kind, coerced)
}

func coerceToHighestOrdinal(params []*Value) ([]*Value, ValueKind, error) {
	highest := params[0]
	for _, p := range params[1:] {
		if p.CastOrdinal() > highest.CastOrdinal() {
			highest = p
		}
	}
	out := make([]*Value, len(params))
	for i, p := range params {
		if p.Kind == highest.Kind {
			out[i] = p
			continue
		}
		cv, err := coerceValue(p, highest.Kind)
		if err != nil {
			return nil, 0, err
		}
		out[i] = cv
	}
	return out, highest.Kind, nil
}

func coerceValue(v *Value, to ValueKind) (*Value, error) {
	switch to {
	case KindInt:
		i, err := v.CoerceToInt()
		if err != nil {
			return nil, err
		}
		return IntValue(i), nil
	case KindFloat:
		f, err := v.CoerceToFloat()
		if err != nil {
			return nil, err
		}
		return FloatValue(f), nil
	case KindString:
		s, err := v.CoerceToString()
		if err != nil {
			return nil, err
		}
		return StringValue(s), nil
	case KindBool:
		b, err := v.CoerceToBool()
		if err != nil {
			return nil, err
		}
		return BoolValue(b), nil
	}
	return nil, invalidStateF("cannot call use operation on %s and %s", v.Kind, to)
}

func (n *NativeFunctionCall) callBinaryListOp(a, b *Value, origins *ListDefinitionsOrigin) (*Value, error) {
	// List +/- Int shifts the list within its origin definitions
	// (e.g. "alpha" + 1 = "beta").
	if (n.Op == OpAdd || n.Op == OpSubtract) && a.Kind == KindList && b.Kind == KindInt {
		delta := b.IntVal()
		if n.Op == OpSubtract {
			delta = -delta
		}
		return ListValue(a.List().Increment(delta, origins)), nil
	}

	if (n.Op == OpAnd || n.Op == OpOr) && (a.Kind != KindList || b.Kind != KindList) {
		at, err := a.IsTruthy()
		if err != nil {
			return nil, err
		}
		bt, err := b.IsTruthy()
		if err != nil {
			return nil, err
		}
		if n.Op == OpAnd {
			return BoolValue(at && bt), nil
		}
		return BoolValue(at || bt), nil
	}

	if a.Kind != KindList || b.Kind != KindList {
		return nil, invalidStateF("can not perform operation on a List and a non-List value")
	}
	al, bl := a.List(), b.List()
	switch n.Op {
	case OpAdd:
		return ListValue(al.Union(bl)), nil
	case OpSubtract:
		return ListValue(al.Without(bl)), nil
	case OpIntersect:
		return ListValue(al.Intersect(bl)), nil
	case OpEqual:
		return BoolValue(al.Equals(bl)), nil
	case OpNotEquals:
		return BoolValue(!al.Equals(bl)), nil
	case OpGreater:
		return BoolValue(al.GreaterThan(bl)), nil
	case OpGreaterThanOrEquals:
		return BoolValue(al.GreaterThanOrEquals(bl)), nil
	case OpLess:
		return BoolValue(al.LessThan(bl)), nil
	case OpLessThanOrEquals:
		return BoolValue(al.LessThanOrEquals(bl)), nil
	case OpHas:
		return BoolValue(al.Contains(bl)), nil
	case OpHasnt:
		return BoolValue(!al.Contains(bl)), nil
	case OpAnd:
		return BoolValue(!al.IsEmpty() && !bl.IsEmpty()), nil
	case OpOr:
		return BoolValue(!al.IsEmpty() || !bl.IsEmpty()), nil
	}
	return nil, invalidStateF("cannot call use '%s' operation on List and List", nativeOpNames[n.Op])
}

func (n *NativeFunctionCall) callTyped(kind ValueKind, p []*Value) (*Value, error) {
	switch n.Op {
	case OpAdd:
		return binaryArith(kind, p, func(a, b int32) int32 { return a + b }, func(a, b float32) float32 { return a + b }, func(a, b string) (string, error) { return a + b, nil })
	case OpSubtract:
		return binaryArith(kind, p, func(a, b int32) int32 { return a - b }, func(a, b float32) float32 { return a - b }, nil)
	case OpMultiply:
		return binaryArith(kind, p, func(a, b int32) int32 { return a * b }, func(a, b float32) float32 { return a * b }, nil)
	case OpDivide:
		return divideOp(kind, p)
	case OpMod:
		return modOp(kind, p)
	case OpNegate:
		return negateOp(kind, p[0])
	case OpEqual:
		return BoolValue(valuesEqual(kind, p[0], p[1])), nil
	case OpNotEquals:
		return BoolValue(!valuesEqual(kind, p[0], p[1])), nil
	case OpGreater:
		return compareOp(kind, p, func(a, b int32) bool { return a > b }, func(a, b float32) bool { return a > b }, func(a, b string) bool { return a > b })
	case OpLess:
		return compareOp(kind, p, func(a, b int32) bool { return a < b }, func(a, b float32) bool { return a < b }, func(a, b string) bool { return a < b })
	case OpGreaterThanOrEquals:
		return compareOp(kind, p, func(a, b int32) bool { return a >= b }, func(a, b float32) bool { return a >= b }, func(a, b string) bool { return a >= b })
	case OpLessThanOrEquals:
		return compareOp(kind, p, func(a, b int32) bool { return a <= b }, func(a, b float32) bool { return a <= b }, func(a, b string) bool { return a <= b })
	case OpNot:
		b, err := p[0].IsTruthy()
		if err != nil {
			return nil, err
		}
		return BoolValue(!b), nil
	case OpAnd:
		at, err := p[0].IsTruthy()
		if err != nil {
			return nil, err
		}
		bt, err := p[1].IsTruthy()
		if err != nil {
			return nil, err
		}
		return BoolValue(at && bt), nil
	case OpOr:
		at, err := p[0].IsTruthy()
		if err != nil {
			return nil, err
		}
		bt, err := p[1].IsTruthy()
		if err != nil {
			return nil, err
		}
		return BoolValue(at || bt), nil
	case OpMin:
		return minMaxOp(kind, p, true)
	case OpMax:
		return minMaxOp(kind, p, false)
	case OpPow:
		a, err := p[0].CoerceToFloat()
		if err != nil {
			return nil, err
		}
		b, err := p[1].CoerceToFloat()
		if err != nil {
			return nil, err
		}
		return FloatValue(float32(math.Pow(float64(a), float64(b)))), nil
	case OpFloor:
		f, err := p[0].CoerceToFloat()
		if err != nil {
			return nil, err
		}
		return FloatValue(float32(math.Floor(float64(f)))), nil
	case OpCeiling:
		f, err := p[0].CoerceToFloat()
		if err != nil {
			return nil, err
		}
		return FloatValue(float32(math.Ceil(float64(f)))), nil
	case OpIntCast:
		i, err := p[0].CoerceToInt()
		if err != nil {
			return nil, err
		}
		return IntValue(i), nil
	case OpFloatCast:
		f, err := p[0].CoerceToFloat()
		if err != nil {
			return nil, err
		}
		return FloatValue(f), nil
	case OpListMin:
		_, v, ok := p[0].List().MinItem()
		if !ok {
			return IntValue(0), nil
		}
		return IntValue(v), nil
	case OpListMax:
		_, v, ok := p[0].List().MaxItem()
		if !ok {
			return IntValue(0), nil
		}
		return IntValue(v), nil
	case OpListAll:
		return ListValue(p[0].List().All()), nil
	case OpListInvert:
		return ListValue(p[0].List().Inverse()), nil
	case OpListCount:
		return IntValue(int32(len(p[0].List().Items()))), nil
	case OpListValue:
		_, v, ok := p[0].List().MaxItem()
		if !ok {
			return IntValue(0), nil
		}
		return IntValue(v), nil
	case OpHas, OpHasnt, OpIntersect:
		return nil, invalidStateF("operation '%s' not available for type %s", nativeOpNames[n.Op], kind)
	}
	return nil, invalidStateF("operation not available for type %s", kind)
}

func binaryArith(kind ValueKind, p []*Value, intOp func(a, b int32) int32, floatOp func(a, b float32) float32, strOp func(a, b string) (string, error)) (*Value, error) {
	switch kind {
	case KindInt:
		return IntValue(intOp(p[0].IntVal(), p[1].IntVal())), nil
	case KindFloat:
		return FloatValue(floatOp(p[0].FloatVal(), p[1].FloatVal())), nil
	case KindString:
		if strOp == nil {
			return nil, invalidStateF("operation not available for type String")
		}
		s, err := strOp(p[0].StrVal(), p[1].StrVal())
		if err != nil {
			return nil, err
		}
		return StringValue(s), nil
	}
	return nil, invalidStateF("operation not available for type %s", kind)
}

func divideOp(kind ValueKind, p []*Value) (*Value, error) {
	switch kind {
	case KindInt:
		if p[1].IntVal() == 0 {
			return nil, invalidStateF("division by zero")
		}
		return IntValue(p[0].IntVal() / p[1].IntVal()), nil
	case KindFloat:
		if p[1].FloatVal() == 0 {
			return nil, invalidStateF("division by zero")
		}
		return FloatValue(p[0].FloatVal() / p[1].FloatVal()), nil
	}
	return nil, invalidStateF("operation not available for type %s", kind)
}

func modOp(kind ValueKind, p []*Value) (*Value, error) {
	switch kind {
	case KindInt:
		if p[1].IntVal() == 0 {
			return nil, invalidStateF("division by zero")
		}
		return IntValue(p[0].IntVal() % p[1].IntVal()), nil
	case KindFloat:
		if p[1].FloatVal() == 0 {
			return nil, invalidStateF("division by zero")
		}
		return FloatValue(float32(math.Mod(float64(p[0].FloatVal()), float64(p[1].FloatVal())))), nil
	}
	return nil, invalidStateF("operation not available for type %s", kind)
}

func negateOp(kind ValueKind, v *Value) (*Value, error) {
	switch kind {
	case KindInt:
		return IntValue(-v.IntVal()), nil
	case KindFloat:
		return FloatValue(-v.FloatVal()), nil
	}
	return nil, invalidStateF("operation not available for type %s", kind)
}

func compareOp(kind ValueKind, p []*Value, intOp func(a, b int32) bool, floatOp func(a, b float32) bool, strOp func(a, b string) bool) (*Value, error) {
	switch kind {
	case KindInt:
		return BoolValue(intOp(p[0].IntVal(), p[1].IntVal())), nil
	case KindFloat:
		return BoolValue(floatOp(p[0].FloatVal(), p[1].FloatVal())), nil
	case KindString:
		return BoolValue(strOp(p[0].StrVal(), p[1].StrVal())), nil
	}
	return nil, invalidStateF("operation not available for type %s", kind)
}

func minMaxOp(kind ValueKind, p []*Value, wantMin bool) (*Value, error) {
	switch kind {
	case KindInt:
		a, b := p[0].IntVal(), p[1].IntVal()
		if (wantMin && a < b) || (!wantMin && a > b) {
			return IntValue(a), nil
		}
		return IntValue(b), nil
	case KindFloat:
		a, b := p[0].FloatVal(), p[1].FloatVal()
		if (wantMin && a < b) || (!wantMin && a > b) {
			return FloatValue(a), nil
		}
		return FloatValue(b), nil
	}
	return nil, invalidStateF("operation not available for type %s", kind)
}

// valuesEqual handles equality per type; DivertTarget equality is path
// equality.
func valuesEqual(kind ValueKind, a, b *Value) bool {
	switch kind {
	case KindInt:
		return a.IntVal() == b.IntVal()
	case KindFloat:
		return a.FloatVal() == b.FloatVal()
	case KindBool:
		return a.BoolVal() == b.BoolVal()
	case KindString:
		return a.StrVal() == b.StrVal()
	case KindDivertTarget:
		return a.DivertTarget().Equals(b.DivertTarget())
	case KindList:
		return a.List().Equals(b.List())
	}
	return false
}
