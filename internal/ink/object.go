// Package ink implements the core of a compiled interactive-fiction
// runtime: the object model of a compiled story (containers, diverts,
// choice points, control commands, native operators, values) and the
// execution engine that steps through it.
package ink

// ObjectType tags the concrete kind of a runtime Object, the way
// evaluator.ObjectType tags evaluator.Object in a tree-walking VM.
type ObjectType string

const (
	ObjContainer          ObjectType = "Container"
	ObjDivert             ObjectType = "Divert"
	ObjChoicePoint        ObjectType = "ChoicePoint"
	ObjControlCommand     ObjectType = "ControlCommand"
	ObjNativeFunctionCall ObjectType = "NativeFunctionCall"
	ObjGlue               ObjectType = "Glue"
	ObjTag                ObjectType = "Tag"
	ObjVoid               ObjectType = "Void"
	ObjVariableReference  ObjectType = "VariableReference"
	ObjVariableAssignment ObjectType = "VariableAssignment"
	ObjValue              ObjectType = "Value"
)

// Object is implemented by every node that can live in the content tree,
// on the evaluation stack or on the output stream. Deep class hierarchies
// are deliberately avoided in favour of a small tagged-variant enumeration
// with a lightweight visitor (see the type switches in engine_step.go).
type Object interface {
	Type() ObjectType

	// Parent returns the nearest enclosing Container, or nil at the root.
	// Parent links are non-owning: the root Container transitively owns
	// all content via its ordered child list; this is purely a back
	// reference used to derive and cache paths.
	Parent() *Container
	setParent(*Container)

	// Path returns (and caches) this object's absolute Path, derived by
	// walking the parent chain.
	Path() *Path
}

// baseObject is embedded by every concrete Object implementation to
// supply the parent-link and path-caching machinery once.
type baseObject struct {
	parent     *Container
	path       *Path
	self       Object // set by the embedding type via bindSelf
}

func (b *baseObject) Parent() *Container    { return b.parent }
func (b *baseObject) setParent(c *Container) { b.parent = c; b.path = nil }

func (b *baseObject) Path() *Path {
	if b.path == nil {
		b.path = pathToObject(b.self)
	}
	return b.path
}

func (b *baseObject) bindSelf(self Object) { b.self = self }

// Void represents "no value" — the result of evaluating something that
// was never meant to produce a value (e.g. a function called purely for
// its side effects). Native function calls and EvalOutput both treat Void
// specially: operating on Void is always an error, but popping Void
// silently is fine.
type Void struct{ baseObject }

func NewVoid() *Void {
	v := &Void{}
	v.bindSelf(v)
	return v
}

func (v *Void) Type() ObjectType { return ObjVoid }

// Glue is a marker placed on the output stream that suppresses the
// newline/whitespace boundary between the text before and after it.
type Glue struct{ baseObject }

func NewGlue() *Glue {
	g := &Glue{}
	g.bindSelf(g)
	return g
}

func (g *Glue) Type() ObjectType { return ObjGlue }

func (g *Glue) String() string { return "Glue" }

// Tag is a string of author-supplied metadata attached to a point in the
// content stream (e.g. `# mood: happy`). EndTag also builds a Tag from a
// value popped off the evaluation stack and pushes it to the output
// stream; no command places a Tag on the evaluation stack.
type Tag struct {
	baseObject
	Text string
}

func NewTag(text string) *Tag {
	t := &Tag{Text: text}
	t.bindSelf(t)
	return t
}

func (t *Tag) Type() ObjectType { return ObjTag }

func (t *Tag) String() string { return "# " + t.Text }
