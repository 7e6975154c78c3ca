package ink

// ChoosePathString jumps execution directly to a named path, bypassing
// the normal choice-selection flow. When resetCallstack is set the
// current flow's call stack is reset first, same as following a fresh
// divert from the story's very start; otherwise the jump behaves like a
// tunnel onwards, leaving existing call frames in place. args, when
// non-empty, are pushed onto the eval stack before jumping so a knot
// written to expect parameters can read them as though it had been
// called as a function.
func (e *Engine) ChoosePathString(path string, resetCallstack bool, args []*Value) error {
	e.state.ResetErrors()
	if resetCallstack {
		e.state.CallStack().Reset()
	}
	target := NewPath(path)
	result := resolvePath(Object(e.root), target)
	if result.Approximate {
		e.state.AddWarning("could not find content at path '" + path + "' - it may have been removed or renamed")
	}
	ptr := result.pointer()
	if ptr.IsNull() {
		return invalidStateF("could not find story content at path '%s'", path)
	}
	for _, a := range args {
		e.state.PushEval(a)
	}
	prev := e.state.CallStack().CurrentElement().CurrentPointer
	e.state.CallStack().CurrentElement().CurrentPointer = ptr
	e.visitChangedContainersDueToDivert(prev, ptr)
	e.state.SetCurrentChoices(nil)
	e.state.SetDidSafeExit(false)
	return nil
}

// EvaluateFunction calls an ink-defined knot/function by name as a pure
// expression: it pushes a FunctionEvaluationFromGame frame, runs the
// engine until that frame pops, and returns whatever value the function
// left on the eval stack (nil for a function with no return). Any text
// the function produced along the way is written to outText and removed
// from the story's normal output stream, so calling a function for its
// side effects doesn't leak into the next line the player sees.
func (e *Engine) EvaluateFunction(name string, args []*Value, outText *string) (*Value, error) {
	target := resolvePath(Object(e.root), NewPath(name))
	container := target.container()
	if container == nil {
		return nil, badArgF("function '%s' does not exist or is not a container", name)
	}

	cs := e.state.CallStack()
	startOutputLen := len(e.state.CurrentFlow().OutputStream)
	startCallDepth := cs.Depth()
	evalHeightBefore := e.state.EvalStackLen()

	cs.Push(PushPopFunctionEvaluationFromGame, evalHeightBefore, startOutputLen)
	cs.CurrentElement().CurrentPointer = startOf(container)

	for _, a := range args {
		e.state.PushEval(a)
	}

	e.state.SetDidSafeExit(false)
	for e.canContinue() && cs.Depth() > startCallDepth {
		if _, err := e.Step(); err != nil {
			return nil, err
		}
	}

	if cs.Depth() > startCallDepth {
		if err := cs.Pop(PushPopFunctionEvaluationFromGame); err != nil {
			return nil, err
		}
	}

	flow := e.state.CurrentFlow()
	text := ""
	if len(flow.OutputStream) > startOutputLen {
		for _, o := range flow.OutputStream[startOutputLen:] {
			if v, ok := o.(*Value); ok && v.Kind == KindString {
				text += v.StrVal()
			}
		}
		flow.OutputStream = flow.OutputStream[:startOutputLen]
	}
	if outText != nil {
		*outText = text
	}

	// A function may leave more than one value behind (e.g. a caller
	// passing too many arguments); the first one popped is the return
	// value, the rest are discarded along with it.
	var returned *Value
	for e.state.EvalStackLen() > evalHeightBefore {
		o, err := e.state.PopEval()
		if err != nil {
			return nil, err
		}
		if returned == nil {
			if v, ok := o.(*Value); ok {
				returned = v
			}
		}
	}
	return returned, nil
}

// GlobalTags collects the Tag objects appearing before any other content
// at the root of the story, which by convention document the whole
// story rather than any one knot.
func (e *Engine) GlobalTags() []string {
	return e.tagsAtStartOf(e.root)
}

// TagsForContentAtPath collects the tags appearing at the start of the
// container addressed by path.
func (e *Engine) TagsForContentAtPath(path string) []string {
	result := resolvePath(Object(e.root), NewPath(path))
	c := result.container()
	if c == nil {
		return nil
	}
	return e.tagsAtStartOf(c)
}

func (e *Engine) tagsAtStartOf(c *Container) []string {
	var tags []string
	for _, o := range c.Content() {
		if t, ok := o.(*Tag); ok {
			tags = append(tags, t.Text)
			continue
		}
		if v, ok := o.(*Value); ok && v.Kind == KindString && v.IsInlineWhitespace() {
			continue
		}
		break
	}
	return tags
}

// VisitCountAtPathString reports the visit count of the container
// addressed by path, or an error if the path cannot be resolved to a
// container or that container doesn't opt into visit counting.
func (e *Engine) VisitCountAtPathString(path string) (int32, error) {
	result := resolvePath(Object(e.root), NewPath(path))
	c := result.container()
	if c == nil {
		return 0, badArgF("content at path '%s' not found, or is not a container", path)
	}
	if !c.VisitsShouldBeCounted() {
		return 0, badArgF("content at path '%s' does not have visit counting enabled", path)
	}
	return e.state.VisitCount(c), nil
}

// ResetState discards all runtime state and starts the story over from
// its initial pointer, the same state NewEngine would have produced.
func (e *Engine) ResetState() {
	seed := e.state.StorySeed()
	e.state = NewStoryState(e.root, e.listOrigins, seed)
	e.state.VariablesState().SnapshotDefaultGlobals()
	e.rng = newSeededRand(seed)
}
