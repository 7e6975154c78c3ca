package ink

import "fmt"

// Version constants, grounded on original_source/lib/src/story.rs and
// story_state.rs: INK_VERSION_CURRENT is the compiled-story format this
// engine writes/expects, INK_VERSION_MINIMUM_COMPATIBLE the oldest
// compiled format it can still load; the save-state pair is separate
// since story JSON and save JSON evolve on their own schedules.
const (
	InkVersionCurrent = 21
	InkVersionMinimumCompatible = 18
	InkSaveStateVersion = 10
	MinCompatibleLoadVersion = 8
)

// StoryState is the complete mutable state of a running story: every
// Flow (with its own call stack and output stream), the shared
// evaluation stack, visit/turn counters keyed by container path, the
// story's PRNG seed, and the currently pending errors/warnings.
type StoryState struct {
	root *Container

	flows map[string]*Flow
	currentFlowName string

	evalStack []Object

	visitCounts map[string]int32
	turnIndices map[string]int32
	currentTurnIndex int

	storySeed int64
	previousRandom int64

	divertedPointer Pointer
	didSafeExit bool

	outputStreamContainsContent bool
	outputStreamTextInRange bool

	currentErrors []StoryMessage
	currentWarnings []StoryMessage

	variablesState *VariablesState
	listOrigins *ListDefinitionsOrigin

	patch *StatePatch

	aliveFlowNames []string
}

func NewStoryState(root *Container, listOrigins *ListDefinitionsOrigin, seed int64) *StoryState {
	s := &StoryState{
		root: root,
		flows: make(map[string]*Flow),
		currentFlowName: DefaultFlowName,
		visitCounts: make(map[string]int32),
		turnIndices: make(map[string]int32),
		currentTurnIndex: -1,
		storySeed: seed,
		divertedPointer: NullPointer,
		listOrigins: listOrigins,
	}
	flow := NewFlow(DefaultFlowName, root)
	s.flows[DefaultFlowName] = flow
	s.variablesState = NewVariablesState(flow.CallStack, listOrigins)
	return s
}

func (s *StoryState) CurrentFlow() *Flow { return s.flows[s.currentFlowName] }

func (s *StoryState) CallStack() *CallStack { return s.CurrentFlow().CallStack }

func (s *StoryState) OutputStream() []Object { return s.CurrentFlow().OutputStream }

func (s *StoryState) SetOutputStream(objs []Object) { s.CurrentFlow().OutputStream = objs }

// CurrentChoices is the flow's raw generated-choices list, used
// internally for bookkeeping (appending, counting, indexing) regardless
// of whether the story could still produce more text. Callers wanting
// the player-facing view (choices only once nothing more can be
// generated) should use Engine.CurrentChoices instead.
func (s *StoryState) CurrentChoices() []*Choice {
	return s.CurrentFlow().CurrentChoices
}

func (s *StoryState) SetCurrentChoices(c []*Choice) { s.CurrentFlow().CurrentChoices = c }

func (s *StoryState) VariablesState() *VariablesState { return s.variablesState }

// Patch is the overlay applied during Continue's newline lookahead; nil
// once the outermost Continue call has applied and cleared it.
func (s *StoryState) Patch() *StatePatch { return s.patch }

func (s *StoryState) SetPatch(p *StatePatch) { s.patch = p }

func (s *StoryState) ListOrigins() *ListDefinitionsOrigin { return s.listOrigins }

// EvalStack is the shared expression-evaluation stack: unlike
// call-stack temporaries, it is not per-thread, since expression
// evaluation never spans a thread fork. It holds Values and, occasionally,
// Void (the result of a function called purely for side effects).
func (s *StoryState) EvalStack() []Object { return s.evalStack }

func (s *StoryState) PushEval(o Object) { s.evalStack = append(s.evalStack, o) }

func (s *StoryState) PopEval() (Object, error) {
	if len(s.evalStack) == 0 {
		return nil, invalidStateF("evaluation stack is empty")
	}
	v := s.evalStack[len(s.evalStack)-1]
	s.evalStack = s.evalStack[:len(s.evalStack)-1]
	return v, nil
}

// PopEvalValue pops and requires a *Value, reporting an "operation on
// void" error when the top of stack is Void instead.
func (s *StoryState) PopEvalValue() (*Value, error) {
	o, err := s.PopEval()
	if err != nil {
		return nil, err
	}
	v, ok := o.(*Value)
	if !ok {
		return nil, invalidStateF("operation on void. Did you forget to 'return' a value from a function you called here?")
	}
	return v, nil
}

func (s *StoryState) PeekEval() (Object, error) {
	if len(s.evalStack) == 0 {
		return nil, invalidStateF("evaluation stack is empty")
	}
	return s.evalStack[len(s.evalStack)-1], nil
}

func (s *StoryState) EvalStackLen() int { return len(s.evalStack) }

func (s *StoryState) TrimEvalStack(toHeight int) {
	if toHeight < len(s.evalStack) {
		s.evalStack = s.evalStack[:toHeight]
	}
}

// VisitCount/TurnIndex are keyed by the container's resolved path string,
// matching the compiled story's own addressing so saves remain portable
// across pointer-identity changes.
func (s *StoryState) VisitCount(c *Container) int32 {
	key := pathToObject(c).String()
	if s.patch != nil {
		if v, ok := s.patch.VisitCount(key); ok {
			return v
		}
	}
	return s.visitCounts[key]
}

func (s *StoryState) IncrementVisitCount(c *Container) {
	key := pathToObject(c).String()
	cur := s.VisitCount(c)
	if s.patch != nil {
		s.patch.SetVisitCount(key, cur+1)
		return
	}
	s.visitCounts[key] = cur + 1
}

func (s *StoryState) SetVisitCount(c *Container, count int32) {
	key := pathToObject(c).String()
	if s.patch != nil {
		s.patch.SetVisitCount(key, count)
		return
	}
	s.visitCounts[key] = count
}

func (s *StoryState) TurnIndex(c *Container) int32 {
	key := pathToObject(c).String()
	if s.patch != nil {
		if v, ok := s.patch.TurnIndex(key); ok {
			return v
		}
	}
	return s.turnIndices[key]
}

func (s *StoryState) SetTurnIndex(c *Container, idx int32) {
	key := pathToObject(c).String()
	if s.patch != nil {
		s.patch.SetTurnIndex(key, idx)
		return
	}
	s.turnIndices[key] = idx
}

func (s *StoryState) CurrentTurnIndex() int { return s.currentTurnIndex }

func (s *StoryState) IncrementTurnIndex() { s.currentTurnIndex++ }

func (s *StoryState) StorySeed() int64 { return s.storySeed }

func (s *StoryState) SetStorySeed(seed int64) { s.storySeed = seed }

func (s *StoryState) PreviousRandom() int64 { return s.previousRandom }
func (s *StoryState) SetPreviousRandom(n int64) { s.previousRandom = n }

func (s *StoryState) DivertedPointer() Pointer { return s.divertedPointer }
func (s *StoryState) SetDivertedPointer(p Pointer) { s.divertedPointer = p }
func (s *StoryState) ClearDivertedPointer() { s.divertedPointer = NullPointer }

func (s *StoryState) DidSafeExit() bool { return s.didSafeExit }
func (s *StoryState) SetDidSafeExit(b bool) { s.didSafeExit = b }

func (s *StoryState) AddError(msg string) {
	s.currentErrors = append(s.currentErrors, StoryMessage{Severity: SeverityError, Message: msg})
}

func (s *StoryState) AddWarning(msg string) {
	s.currentWarnings = append(s.currentWarnings, StoryMessage{Severity: SeverityWarning, Message: msg})
}

func (s *StoryState) Errors() []StoryMessage { return s.currentErrors }
func (s *StoryState) Warnings() []StoryMessage { return s.currentWarnings }
func (s *StoryState) HasError() bool { return len(s.currentErrors) > 0 }
func (s *StoryState) ResetErrors() {
	s.currentErrors = nil
	s.currentWarnings = nil
}

// SwitchFlow moves to the named flow, creating it fresh if it doesn't
// exist yet (SPEC_FULL.md multi-flow supplement).
func (s *StoryState) SwitchFlow(name string) {
	if _, ok := s.flows[name]; !ok {
		s.flows[name] = NewFlow(name, s.root)
	}
	s.currentFlowName = name
	s.variablesState.SetCallStack(s.flows[name].CallStack)
}

// RemoveFlow discards a named flow's state entirely; switching away from
// the current flow first is the caller's responsibility.
func (s *StoryState) RemoveFlow(name string) error {
	if name == s.currentFlowName {
		return invalidStateF("cannot remove the currently active flow: %s", name)
	}
	delete(s.flows, name)
	return nil
}

func (s *StoryState) CurrentFlowName() string { return s.currentFlowName }

func (s *StoryState) FlowNames() []string {
	names := make([]string, 0, len(s.flows))
	for n := range s.flows {
		names = append(names, n)
	}
	return names
}

// ForceEnd empties the call stack down to a single root frame with a null
// pointer (so canContinue reports false) and marks the current choice
// list empty, matching the "~ end" control command's effect.
func (s *StoryState) ForceEnd() {
	cs := s.CallStack()
	cs.Reset()
	cs.CurrentElement().CurrentPointer = NullPointer
	s.SetCurrentChoices(nil)
	s.ClearDivertedPointer()
	s.didSafeExit = true
}

func (s *StoryState) String() string {
	return fmt.Sprintf("StoryState(flow=%s, evalDepth=%d)", s.currentFlowName, len(s.evalStack))
}
