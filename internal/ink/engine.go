package ink

import "math/rand"

// ExternalFunction is a host-provided function bound under a name the
// compiled story calls via an external Divert.
type ExternalFunction func(args []*Value) (*Value, error)

type externalBinding struct {
	fn            ExternalFunction
	lookaheadSafe bool
}

// Engine is the execution core that steps through a compiled story's
// content tree against a StoryState. It holds no story-authoring
// concerns: parsing and compilation are out of scope.
type Engine struct {
	root        *Container
	listOrigins *ListDefinitionsOrigin
	state       *StoryState

	externals             map[string]*externalBinding
	allowExternalFallback bool

	rng *rand.Rand

	recursiveContinueCount int
	maxStepsPerContinue    int

	// lookaheadDepth > 0 while a speculative newline-lookahead step is in
	// progress. External functions not marked lookahead-safe must not run
	// speculatively, since their side effects can't be undone.
	lookaheadDepth int
}

func (e *Engine) inLookahead() bool { return e.lookaheadDepth > 0 }

func NewEngine(root *Container, listOrigins *ListDefinitionsOrigin, seed int64) *Engine {
	e := &Engine{
		root:        root,
		listOrigins: listOrigins,
		state:       NewStoryState(root, listOrigins, seed),
		externals:   make(map[string]*externalBinding),
		rng:         rand.New(rand.NewSource(seed)),
	}
	e.state.VariablesState().SnapshotDefaultGlobals()
	return e
}

func newSeededRand(seed int64) *rand.Rand { return rand.New(rand.NewSource(seed)) }

// SeedRandom reseeds the engine's PRNG, used to restore RANDOM()
// determinism after LoadState restores a story_seed.
func (e *Engine) SeedRandom(seed int64) { e.rng = newSeededRand(seed) }

func (e *Engine) State() *StoryState { return e.state }

func (e *Engine) BindExternalFunction(name string, fn ExternalFunction, lookaheadSafe bool) {
	e.externals[name] = &externalBinding{fn: fn, lookaheadSafe: lookaheadSafe}
}

func (e *Engine) UnbindExternalFunction(name string) { delete(e.externals, name) }

func (e *Engine) SetAllowExternalFunctionFallback(allow bool) { e.allowExternalFallback = allow }

// incrementContentPointer advances the current element's pointer to the
// next sibling within its container, popping back through enclosing
// containers when it runs off the end. When no enclosing container has a
// next sibling, the pointer is set to null and false is returned;
// call-stack frames are not popped here.
func (e *Engine) incrementContentPointer() bool {
	el := e.state.CallStack().CurrentElement()
	ptr := el.CurrentPointer
	if ptr.IsNull() {
		return false
	}
	newPtr := ptr
	newPtr.Index++
	container := ptr.Container
	for container != nil && newPtr.Index >= len(container.Content()) {
		nextAncestor := container.Parent()
		if nextAncestor == nil {
			break
		}
		idx, ok := nextAncestor.indexOf(container)
		if !ok {
			break
		}
		newPtr = Pointer{Container: nextAncestor, Index: idx + 1}
		container = nextAncestor
	}
	if container == nil || newPtr.Index >= len(container.Content()) {
		el.CurrentPointer = NullPointer
		return false
	}
	el.CurrentPointer = newPtr
	return true
}

// pushToOutputStream appends obj, merging adjacent string Values and
// applying glue/whitespace suppression.
func (e *Engine) pushToOutputStream(obj Object) {
	flow := e.state.CurrentFlow()
	if v, ok := obj.(*Value); ok && v.Kind == KindString {
		e.pushTextToOutputStream(v)
		return
	}
	flow.OutputStream = append(flow.OutputStream, obj)
	if _, ok := obj.(*Glue); ok {
		e.trimNewlinesAfterGlue()
	}
}

func (e *Engine) pushTextToOutputStream(v *Value) {
	flow := e.state.CurrentFlow()
	if v.IsNewline() && e.outputStreamEndsInNewline() {
		return
	}
	if v.IsNewline() && e.outputStreamEndsInGlue() {
		return
	}
	flow.OutputStream = append(flow.OutputStream, v)
}

func (e *Engine) outputStreamEndsInNewline() bool {
	os := e.state.CurrentFlow().OutputStream
	for i := len(os) - 1; i >= 0; i-- {
		if v, ok := os[i].(*Value); ok && v.Kind == KindString {
			if v.IsInlineWhitespace() {
				continue
			}
			return v.IsNewline()
		}
		return false
	}
	return false
}

func (e *Engine) outputStreamEndsInGlue() bool {
	os := e.state.CurrentFlow().OutputStream
	if len(os) == 0 {
		return false
	}
	_, ok := os[len(os)-1].(*Glue)
	return ok
}

// trimNewlinesAfterGlue removes a trailing newline immediately preceding
// glue, since glue suppresses the paragraph boundary it would otherwise
// introduce.
func (e *Engine) trimNewlinesAfterGlue() {
	flow := e.state.CurrentFlow()
	os := flow.OutputStream
	if len(os) < 2 {
		return
	}
	if v, ok := os[len(os)-2].(*Value); ok && v.Kind == KindString && v.IsNewline() {
		flow.OutputStream = append(os[:len(os)-2], os[len(os)-1])
	}
}

// CurrentText renders the output stream's string content.
func (e *Engine) CurrentText() string {
	var out string
	for _, o := range e.state.CurrentFlow().OutputStream {
		if v, ok := o.(*Value); ok && v.Kind == KindString {
			out += v.StrVal()
		}
	}
	return out
}

// CurrentTags collects Tag objects on the current output stream.
func (e *Engine) CurrentTags() []string {
	var tags []string
	for _, o := range e.state.CurrentFlow().OutputStream {
		if t, ok := o.(*Tag); ok {
			tags = append(tags, t.Text)
		}
	}
	return tags
}

// CurrentChoices is the player-facing choice list: empty while the
// story can still generate more text, since choices always belong at
// the end of a line.
func (e *Engine) CurrentChoices() []*Choice {
	if e.canContinue() {
		return nil
	}
	return e.state.CurrentChoices()
}
