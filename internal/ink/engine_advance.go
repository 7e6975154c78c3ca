package ink

// visitContainer applies visit/turn-count bookkeeping to a container
// being entered. atStart distinguishes "this is the very
// first object reached inside the container" (relevant to the
// CountStartOnly flag) from merely passing through on the way to a
// deeper target.
func (e *Engine) visitContainer(c *Container, atStart bool) {
	if c.CountingAtStartOnly() && !atStart {
		return
	}
	if c.VisitsShouldBeCounted() {
		e.state.IncrementVisitCount(c)
	}
	if c.TurnIndexShouldBeCounted() {
		e.state.SetTurnIndex(c, int32(e.state.CurrentTurnIndex()))
	}
}

// containerAncestry returns the chain of containers from the content root
// down to (and including) c.
func containerAncestry(c *Container) []*Container {
	var chain []*Container
	for cur := c; cur != nil; cur = cur.Parent() {
		chain = append([]*Container{cur}, chain...)
	}
	return chain
}

// visitChangedContainersDueToDivert increments visit/turn counts for
// every container newly entered by a divert from prev to target: the
// containers on target's ancestry path that are not already on prev's
// ancestry path.
func (e *Engine) visitChangedContainersDueToDivert(prev, target Pointer) {
	if target.Container == nil {
		return
	}
	targetAncestry := containerAncestry(target.Container)
	prevSet := make(map[*Container]bool)
	if prev.Container != nil {
		for _, c := range containerAncestry(prev.Container) {
			prevSet[c] = true
		}
	}
	for i, c := range targetAncestry {
		if prevSet[c] {
			continue
		}
		atStart := true
		if i == len(targetAncestry)-1 {
			atStart = target.Index <= 0
		}
		e.visitContainer(c, atStart)
	}
}

// canContinue reports whether Step has anything left to execute: either
// the current pointer is live, or the call stack has a frame left to pop
// back into.
func (e *Engine) canContinue() bool {
	if e.state.DidSafeExit() {
		return false
	}
	cs := e.state.CallStack()
	return !cs.CurrentElement().CurrentPointer.IsNull() || cs.CanPop()
}

// CanContinue is the exported form of canContinue.
func (e *Engine) CanContinue() bool { return e.canContinue() }
