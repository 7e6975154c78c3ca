package ink

// VariableReference reads either a named variable or, when PathForCount
// is set, the visit count of the container that path addresses.
type VariableReference struct {
	baseObject

	Name         string
	PathForCount *Path
}

func NewVariableReference(name string) *VariableReference {
	v := &VariableReference{Name: name}
	v.bindSelf(v)
	return v
}

func NewReadCountVariableReference(p *Path) *VariableReference {
	v := &VariableReference{PathForCount: p}
	v.bindSelf(v)
	return v
}

func (v *VariableReference) Type() ObjectType { return ObjVariableReference }

func (v *VariableReference) containerForCount() *Container {
	result := resolvePath(Object(v), v.PathForCount)
	return result.container()
}

func (v *VariableReference) String() string {
	if v.PathForCount != nil {
		return "CNT(" + v.PathForCount.String() + ")"
	}
	return "VAR?(" + v.Name + ")"
}

// VariableAssignment writes the top of the evaluation stack to a global
// or temporary variable. IsNewDeclaration distinguishes `VAR x = ...`
// (temp/global declaration) from plain reassignment; IsGlobal selects
// which table to write.
type VariableAssignment struct {
	baseObject

	Name             string
	IsNewDeclaration bool
	IsGlobal         bool
}

func NewVariableAssignment(name string, isNewDecl, isGlobal bool) *VariableAssignment {
	v := &VariableAssignment{Name: name, IsNewDeclaration: isNewDecl, IsGlobal: isGlobal}
	v.bindSelf(v)
	return v
}

func (v *VariableAssignment) Type() ObjectType { return ObjVariableAssignment }

func (v *VariableAssignment) String() string {
	if v.IsNewDeclaration {
		return "VAR=(" + v.Name + ")"
	}
	return "temp=(" + v.Name + ")"
}
