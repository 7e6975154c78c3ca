package ink

// VariableObserver is invoked when a global variable's value changes.
// Per the batching supplement (SPEC_FULL.md), observers fire once per
// Continue with the variable's final value, not once per intermediate
// write during that Continue's execution.
type VariableObserver func(name string, value *Value)

// VariablesState owns global-variable storage, the batching of observer
// notifications, and delegates temporary-variable access to the owning
// Flow's CallStack.
type VariablesState struct {
	callStack *CallStack
	listDefsOrigin *ListDefinitionsOrigin

	globals map[string]*Value
	defaultGlobals map[string]*Value

	changedVariablesForBatchObs map[string]bool
	batchObserving bool
	observers map[string][]VariableObserver

	patch *StatePatch
}

func NewVariablesState(callStack *CallStack, origin *ListDefinitionsOrigin) *VariablesState {
	return &VariablesState{
		callStack: callStack,
		listDefsOrigin: origin,
		globals: make(map[string]*Value),
		changedVariablesForBatchObs: make(map[string]bool),
		observers: make(map[string][]VariableObserver),
	}
}

// SetCallStack rebinds the CallStack this VariablesState delegates
// temporary-variable access to, used when switching the owning Flow.
func (vs *VariablesState) SetCallStack(cs *CallStack) { vs.callStack = cs }

// SnapshotDefaultGlobals captures the globals exactly as initialized from
// the compiled story's root, before any player-driven mutation, for
// later lookup through DefaultGlobal.
func (vs *VariablesState) SnapshotDefaultGlobals() {
	vs.defaultGlobals = make(map[string]*Value, len(vs.globals))
	for k, v := range vs.globals {
		vs.defaultGlobals[k] = v
	}
}

func (vs *VariablesState) DefaultGlobal(name string) (*Value, bool) {
	v, ok := vs.defaultGlobals[name]
	return v, ok
}

func (vs *VariablesState) SetPatch(p *StatePatch) { vs.patch = p }
func (vs *VariablesState) Patch() *StatePatch { return vs.patch }

// ApplyPatch commits every pending global write and discards the overlay,
// called once newline-lookahead settles on "keep".
func (vs *VariablesState) ApplyPatch() {
	if vs.patch == nil {
		return
	}
	for name, v := range vs.patch.Globals {
		vs.globals[name] = v
	}
	vs.patch = nil
}

// StartBatchObserving begins accumulating changed global-variable names
// instead of firing observers immediately; NotifyBatchObservers later
// flushes them with each variable's final value.
func (vs *VariablesState) StartBatchObserving() {
	vs.batchObserving = true
	vs.changedVariablesForBatchObs = make(map[string]bool)
}

func (vs *VariablesState) NotifyBatchObservers() {
	vs.batchObserving = false
	for name := range vs.changedVariablesForBatchObs {
		obs, ok := vs.observers[name]
		if !ok {
			continue
		}
		val, _ := vs.Global(name)
		for _, fn := range obs {
			fn(name, val)
		}
	}
	vs.changedVariablesForBatchObs = make(map[string]bool)
}

func (vs *VariablesState) ObserveVariable(name string, fn VariableObserver) {
	vs.observers[name] = append(vs.observers[name], fn)
}

func (vs *VariablesState) RemoveObserver(name string) {
	delete(vs.observers, name)
}

// Global reads a global, checking the active patch overlay first.
func (vs *VariablesState) Global(name string) (*Value, bool) {
	if vs.patch != nil {
		if v, ok := vs.patch.Global(name); ok {
			return v, true
		}
	}
	v, ok := vs.globals[name]
	return v, ok
}

func (vs *VariablesState) HasGlobal(name string) bool {
	_, ok := vs.Global(name)
	return ok
}

// SetGlobal writes through the active patch if one exists, else directly;
// either way it records the name for batched observer notification and
// fires immediately when no batch is in progress.
func (vs *VariablesState) SetGlobal(name string, v *Value) {
	if vs.patch != nil {
		vs.patch.SetGlobal(name, v)
		vs.patch.AddChangedVariable(name)
	} else {
		vs.globals[name] = v
	}
	if vs.batchObserving {
		vs.changedVariablesForBatchObs[name] = true
		return
	}
	if obs, ok := vs.observers[name]; ok {
		for _, fn := range obs {
			fn(name, v)
		}
	}
}

// Get resolves a variable by lookup order: the current call-stack
// frame's temporaries, then globals.
func (vs *VariablesState) Get(name string) (*Value, bool) {
	if v, ok := vs.callStack.GetTemporaryVariable(name); ok {
		return v, true
	}
	return vs.Global(name)
}

// Assign writes either a temporary (always in the current frame) or a
// global.
func (vs *VariablesState) Assign(name string, value *Value, isGlobal, isNewDeclaration bool) error {
	if isGlobal {
		vs.SetGlobal(name, value)
		return nil
	}
	return vs.callStack.SetTemporaryVariable(name, value, isNewDeclaration, -1)
}

// ResolveVariablePointer dereferences one level of VariablePointer
// indirection: a pointer names another variable (optionally scoped to a
// specific call-stack frame via contextIndex) whose current value is
// returned. If the pointee is itself a VariablePointer, no further
// indirection is followed — ink variable pointers are single-hop by
// design.
func (vs *VariablesState) ResolveVariablePointer(v *Value) (*Value, error) {
	if v.Kind != KindVariablePointer {
		return v, nil
	}
	ctx := v.VarPointerContextIndex()
	if ctx == -1 {
		resolved, ok := vs.Get(v.VarPointerName())
		if !ok {
			return nil, invalidStateF("could not resolve variable pointer: %s", v.VarPointerName())
		}
		return resolved, nil
	}
	el := vs.callStack.ElementAt(ctx - 1)
	if el == nil {
		return nil, invalidStateF("variable pointer context index out of range: %d", ctx)
	}
	resolved, ok := el.Temporaries[v.VarPointerName()]
	if !ok {
		return nil, invalidStateF("could not resolve variable pointer: %s", v.VarPointerName())
	}
	return resolved, nil
}

// ListOrigins exposes the story-wide list definitions for native-function
// dispatch and JSON list-item coercion.
func (vs *VariablesState) ListOrigins() *ListDefinitionsOrigin { return vs.listDefsOrigin }
