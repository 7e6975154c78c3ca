package ink

// Element is one frame of a call stack. contextIndex in
// temporary-variable assignment is interpreted against the Element's
// position: -1 means "current frame + 1", otherwise that specific frame,
// 1-based.
type Element struct {
	CurrentPointer Pointer
	InExpressionEvaluation bool
	Temporaries map[string]*Value
	PushPopType PushPopType
	EvaluationStackHeightWhenPushed int
	FunctionStartInOutputStream int
}

func newElement(kind PushPopType, ptr Pointer, inExpr bool) *Element {
	return &Element{
		CurrentPointer: ptr,
		InExpressionEvaluation: inExpr,
		Temporaries: make(map[string]*Value),
		PushPopType: kind,
	}
}

func (e *Element) copy() *Element {
	cp := newElement(e.PushPopType, e.CurrentPointer, e.InExpressionEvaluation)
	for k, v := range e.Temporaries {
		cp.Temporaries[k] = v
	}
	cp.EvaluationStackHeightWhenPushed = e.EvaluationStackHeightWhenPushed
	cp.FunctionStartInOutputStream = e.FunctionStartInOutputStream
	return cp
}

// Thread is an ordered list of Elements representing one forkable
// execution context within a CallStack.
type Thread struct {
	Elements []*Element
	PreviousPointer Pointer
	ThreadIndex int
}

func newThread() *Thread {
	return &Thread{PreviousPointer: NullPointer}
}

func (t *Thread) copy() *Thread {
	cp := newThread()
	cp.ThreadIndex = t.ThreadIndex
	for _, e := range t.Elements {
		cp.Elements = append(cp.Elements, e.copy())
	}
	cp.PreviousPointer = t.PreviousPointer
	return cp
}

// CallStack is a non-empty list of Threads (the last is current); reset
// restores a single-thread, single-Tunnel-element state pointing at the
// root container's start.
type CallStack struct {
	threadCounter int
	startOfRoot Pointer
	threads []*Thread
}

func NewCallStack(root *Container) *CallStack {
	cs := &CallStack{startOfRoot: startOf(root)}
	cs.Reset()
	return cs
}

func (cs *CallStack) copyFrom(other *CallStack) {
	cs.threadCounter = other.threadCounter
	cs.startOfRoot = other.startOfRoot
	cs.threads = nil
	for _, t := range other.threads {
		cs.threads = append(cs.threads, t.copy())
	}
}

func CopyCallStack(other *CallStack) *CallStack {
	cs := &CallStack{}
	cs.copyFrom(other)
	return cs
}

// Reset restores the base invariant: exactly one thread with one
// Tunnel-kind Element pointing at the root's start.
func (cs *CallStack) Reset() {
	cs.threads = []*Thread{newThread()}
	cs.threads[0].Elements = append(cs.threads[0].Elements, newElement(PushPopTunnel, cs.startOfRoot, false))
}

func (cs *CallStack) currentThread() *Thread { return cs.threads[len(cs.threads)-1] }

func (cs *CallStack) CurrentElement() *Element {
	t := cs.currentThread()
	return t.Elements[len(t.Elements)-1]
}

func (cs *CallStack) CurrentElementIndex() int {
	return len(cs.currentThread().Elements) - 1
}

func (cs *CallStack) Depth() int { return len(cs.currentThread().Elements) }

func (cs *CallStack) ElementAt(i int) *Element {
	els := cs.currentThread().Elements
	if i < 0 || i >= len(els) {
		return nil
	}
	return els[i]
}

func (cs *CallStack) Elements() []*Element { return cs.currentThread().Elements }

func (cs *CallStack) ThreadCount() int { return len(cs.threads) }

func (cs *CallStack) CurrentThreadIndex() int { return cs.currentThread().ThreadIndex }

// CanPop reports whether a function/tunnel frame may be popped without
// violating the "at least one element" invariant.
func (cs *CallStack) CanPop() bool { return len(cs.currentThread().Elements) > 1 }

// CanPopType reports whether the top frame's kind matches, and popping
// wouldn't violate the depth invariant.
func (cs *CallStack) CanPopType(kind PushPopType) bool {
	if !cs.CanPop() {
		return false
	}
	if kind == pushPopNone {
		return true
	}
	return cs.CurrentElement().PushPopType == kind
}

// Push appends a new Element inheriting the caller's current pointer.
func (cs *CallStack) Push(kind PushPopType, externalEvalStackHeight, outputStreamLengthWithPushed int) {
	cur := cs.CurrentElement()
	el := newElement(kind, cur.CurrentPointer, false)
	el.EvaluationStackHeightWhenPushed = externalEvalStackHeight
	el.FunctionStartInOutputStream = outputStreamLengthWithPushed
	t := cs.currentThread()
	t.Elements = append(t.Elements, el)
}

// Pop removes the top frame, failing if the stack would become empty or
// the top doesn't match expected (pushPopNone matches anything).
func (cs *CallStack) Pop(expected PushPopType) error {
	if !cs.CanPop() {
		return invalidStateF("cannot pop call stack, would mean empty callstack")
	}
	if expected != pushPopNone && cs.CurrentElement().PushPopType != expected {
		return invalidStateF("mismatched push/pop in callstack")
	}
	t := cs.currentThread()
	t.Elements = t.Elements[:len(t.Elements)-1]
	return nil
}

// PushThread forks the current thread (deep copy) with a new thread
// index.
func (cs *CallStack) PushThread() {
	cs.threadCounter++
	forked := cs.currentThread().copy()
	forked.ThreadIndex = cs.threadCounter
	cs.threads = append(cs.threads, forked)
}

// ForkThread returns a deep copy of the current thread with a new thread
// index, like PushThread, but does not add it to the thread stack.
func (cs *CallStack) ForkThread() *Thread {
	cs.threadCounter++
	forked := cs.currentThread().copy()
	forked.ThreadIndex = cs.threadCounter
	return forked
}

// CanPopThread reports whether more than one thread exists and the
// current frame isn't a FunctionEvaluationFromGame frame (which must
// never be thread-popped out from under).
func (cs *CallStack) CanPopThread() bool {
	return len(cs.threads) > 1 && cs.CurrentElement().PushPopType != PushPopFunctionEvaluationFromGame
}

func (cs *CallStack) PopThread() error {
	if !cs.CanPopThread() {
		return invalidStateF("cannot pop thread")
	}
	cs.threads = cs.threads[:len(cs.threads)-1]
	return nil
}

// SetCurrentThread switches the active thread to the given (already
// forked or reloaded) Thread.
func (cs *CallStack) SetCurrentThread(t *Thread) {
	// The last thread in the list is current.
	for i, th := range cs.threads {
		if th == t {
			cs.threads = append(cs.threads[:i], cs.threads[i+1:]...)
			break
		}
	}
	cs.threads = append(cs.threads, t)
}

func (cs *CallStack) Threads() []*Thread { return cs.threads }

func (cs *CallStack) SetThreads(threads []*Thread, counter int) {
	cs.threads = threads
	cs.threadCounter = counter
}

func (cs *CallStack) ThreadCounter() int { return cs.threadCounter }

// SetTemporaryVariable honours the context-index convention: -1 means
// "current frame + 1" (i.e. the current topmost frame), any other
// value addresses that frame directly, 1-based.
//
// When an empty list overwrites an existing list-valued temporary, the
// stored empty list keeps the old value's origins and origin names.
func (cs *CallStack) SetTemporaryVariable(name string, value *Value, declareNew bool, contextIndex int) error {
	els := cs.currentThread().Elements
	var idx int
	if contextIndex == -1 {
		idx = len(els) - 1
	} else {
		idx = contextIndex - 1
	}
	if idx < 0 || idx >= len(els) {
		return invalidStateF("temporary variable context index out of range")
	}
	el := els[idx]
	if !declareNew {
		if _, ok := el.Temporaries[name]; !ok {
			return invalidStateF("could not find temporary variable to set: %s", name)
		}
	}
	if old, ok := el.Temporaries[name]; ok && value.Kind == KindList && value.List().IsEmpty() && old.Kind == KindList {
		value = ListValue(InkList{items: value.List().items, origins: old.List().origins, initialOriginNames: old.List().OriginNames()})
	}
	el.Temporaries[name] = value
	return nil
}

func (cs *CallStack) GetTemporaryVariable(name string) (*Value, bool) {
	els := cs.currentThread().Elements
	if len(els) == 0 {
		return nil, false
	}
	v, ok := els[len(els)-1].Temporaries[name]
	return v, ok
}

// contextForCurrentFrame returns the 1-based frame index of the current frame,
// used as the natural context_index to stamp onto a newly created
// variable-pointer value.
func (cs *CallStack) contextForCurrentFrame() int {
	return len(cs.currentThread().Elements)
}
