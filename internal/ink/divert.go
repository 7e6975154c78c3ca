package ink

// PushPopType identifies what kind of frame a Divert pushes onto the call
// stack (or what kind of frame a pop command expects to find). The
// numeric values match the reference implementation's save-JSON
// encoding ("type": 0|1|2) exactly, so saves round-trip byte for byte.
type PushPopType int

const (
	PushPopTunnel PushPopType = iota
	PushPopFunction
	PushPopFunctionEvaluationFromGame
)

const pushPopNone PushPopType = -1

func (k PushPopType) String() string {
	switch k {
	case PushPopFunction:
		return "Function"
	case PushPopTunnel:
		return "Tunnel"
	case PushPopFunctionEvaluationFromGame:
		return "FunctionEvaluationFromGame"
	default:
		return "None"
	}
}

// Divert is a jump to another addressable location in the content tree.
// It may push a return frame (function call or tunnel), target an
// external function, or be conditional on the top of the evaluation
// stack.
type Divert struct {
	baseObject

	PushesToStack       bool
	StackPushType       PushPopType
	IsExternal          bool
	ExternalArgs        int
	IsConditional       bool
	VariableDivertName  string // non-empty when the target is a variable of divert-target type

	targetPath    *Path
	targetPointer Pointer
	resolved      bool
}

func NewDivert() *Divert { d := &Divert{}; d.bindSelf(d); return d }

func (d *Divert) Type() ObjectType { return ObjDivert }

func (d *Divert) HasVariableTarget() bool { return d.VariableDivertName != "" }

func (d *Divert) SetTargetPath(p *Path) {
	d.targetPath = p
	d.resolved = false
}

func (d *Divert) TargetPathString() string {
	if d.targetPath == nil {
		return ""
	}
	return d.targetPath.String()
}

// TargetPointer lazily resolves targetPath to a Pointer: if the path's
// last component is an index, the pointer is (parent, index); otherwise
// it's the start of the resolved container.
func (d *Divert) TargetPointer() Pointer {
	if d.resolved {
		return d.targetPointer
	}
	d.resolved = true
	if d.targetPath == nil {
		d.targetPointer = NullPointer
		return d.targetPointer
	}
	result := resolvePath(Object(d), d.targetPath)
	obj := result.Obj
	if obj == nil {
		d.targetPointer = NullPointer
		return d.targetPointer
	}
	if last, ok := d.targetPath.LastComponent(); ok && !last.IsName {
		parent := obj.Parent()
		if c, ok := obj.(*Container); ok {
			parent = c.Parent()
		}
		if parent != nil {
			idx, found := parent.indexOf(obj)
			if found {
				d.targetPointer = Pointer{Container: parent, Index: idx}
				return d.targetPointer
			}
		}
	}
	if c, ok := obj.(*Container); ok {
		d.targetPointer = startOf(c)
		return d.targetPointer
	}
	d.targetPointer = NullPointer
	return d.targetPointer
}

func (d *Divert) describeTarget() string {
	if d.HasVariableTarget() {
		return "var(" + d.VariableDivertName + ")"
	}
	if d.targetPath != nil {
		return d.targetPath.String()
	}
	return "?"
}

func (d *Divert) String() string {
	if d.IsExternal {
		return "Divert(EXTERNAL " + d.describeTarget() + ")"
	}
	return "Divert(" + d.describeTarget() + ")"
}
