package ink

// Step executes exactly one content object at the current pointer,
// advancing the pointer (or the call stack) as a side effect. It returns
// false when there is nothing left to execute in the current flow.
func (e *Engine) Step() (bool, error) {
	cs := e.state.CallStack()
	el := cs.CurrentElement()
	ptr := el.CurrentPointer

	if ptr.IsNull() {
		return e.popCallstackAtEnd()
	}

	obj := ptr.Resolve()
	if obj == nil {
		return e.popCallstackAtEnd()
	}

	if c, ok := obj.(*Container); ok {
		e.visitContainer(c, true)
		el.CurrentPointer = startOf(c)
		return true, nil
	}

	originContainer := ptr.Container

	// Advance the pointer before side-effecting, so a Divert performed by
	// obj can freely overwrite it.
	e.incrementContentPointer()

	switch o := obj.(type) {
	case *ControlCommand:
		if err := e.performControlCommand(o, originContainer); err != nil {
			return false, err
		}
	case *Divert:
		if err := e.performDivert(o); err != nil {
			return false, err
		}
	case *ChoicePoint:
		if err := e.performChoicePoint(o); err != nil {
			return false, err
		}
	case *VariableReference:
		if err := e.performVariableReference(o); err != nil {
			return false, err
		}
	case *VariableAssignment:
		if err := e.performVariableAssignment(o); err != nil {
			return false, err
		}
	case *NativeFunctionCall:
		if err := e.performNativeFunctionCall(o); err != nil {
			return false, err
		}
	case *Tag:
		e.pushToOutputStream(o)
	case *Glue:
		e.pushToOutputStream(o)
	case *Void:
		e.state.PushEval(o)
	case *Value:
		if el.InExpressionEvaluation {
			e.state.PushEval(o.copyValue())
		} else {
			e.pushToOutputStream(o.copyValue())
		}
	}
	return true, nil
}

// popCallstackAtEnd handles running off the end of the current element's
// container with nothing left to step: a Function/Tunnel frame pops back
// to its caller, the last (root) frame ends the flow.
func (e *Engine) popCallstackAtEnd() (bool, error) {
	cs := e.state.CallStack()
	if !cs.CanPop() {
		e.state.ForceEnd()
		return false, nil
	}
	kind := cs.CurrentElement().PushPopType
	if err := cs.Pop(kind); err != nil {
		return false, err
	}
	e.incrementContentPointer()
	return true, nil
}

// popFunctionOrTunnel handles the "~ return" / "->->" control commands.
// When the current frame was pushed by EvaluateFunction rather than by
// an ink-side call, the frame is left in place for the caller to tear
// down (so it can still read the eval stack for a return value) and
// execution is simply halted here, matching the reference engine's
// try_exit_function_evaluation_from_game special case.
//
// A tunnel pop ("->->") first pops a value off the evaluation stack: a
// DivertTarget overriding where control resumes after the tunnel, or
// Void if there's no override. That override, if present, replaces the
// caller's resumed pointer once the frame is popped.
func (e *Engine) popFunctionOrTunnel(kind PushPopType) error {
	cs := e.state.CallStack()
	if cs.CurrentElement().PushPopType == PushPopFunctionEvaluationFromGame {
		cs.CurrentElement().CurrentPointer = NullPointer
		e.state.SetDidSafeExit(true)
		return nil
	}

	var overrideTarget *Path
	if kind == PushPopTunnel {
		o, err := e.state.PopEval()
		if err != nil {
			return err
		}
		if v, ok := o.(*Value); ok && v.Kind == KindDivertTarget {
			overrideTarget = v.DivertTarget()
		} else if _, ok := o.(*Void); !ok {
			return invalidStateF("expected void if ->-> doesn't override target")
		}
	}

	if err := cs.Pop(kind); err != nil {
		return err
	}

	if overrideTarget != nil {
		result := resolvePath(Object(e.root), overrideTarget)
		target := result.pointer()
		if target.IsNull() {
			return invalidStateF("tunnel onwards override target could not be resolved: %s", overrideTarget.String())
		}
		prev := cs.CurrentElement().CurrentPointer
		cs.CurrentElement().CurrentPointer = target
		e.visitChangedContainersDueToDivert(prev, target)
	}
	return nil
}

func (e *Engine) performControlCommand(c *ControlCommand, originContainer *Container) error {
	switch c.Command {
	case CmdEvalStart:
		e.state.CallStack().CurrentElement().InExpressionEvaluation = true
		return nil
	case CmdEvalEnd:
		e.state.CallStack().CurrentElement().InExpressionEvaluation = false
		return nil
	case CmdNoOp, CmdBeginTag:
		return nil
	case CmdBeginString:
		e.state.PushEval(StringValue(stringStartMarker))
		return nil
	case CmdEvalOutput:
		o, err := e.state.PopEval()
		if err != nil {
			return err
		}
		if v, ok := o.(*Value); ok {
			s, err := v.CoerceToString()
			if err == nil {
				e.pushToOutputStream(StringValue(s))
			}
		}
		return nil
	case CmdEndString:
		return e.performEndString()
	case CmdEndTag:
		return e.performEndTag()
	case CmdDuplicate:
		o, err := e.state.PeekEval()
		if err != nil {
			return err
		}
		if v, ok := o.(*Value); ok {
			e.state.PushEval(v.copyValue())
		} else {
			e.state.PushEval(NewVoid())
		}
		return nil
	case CmdPopEvaluatedValue:
		_, err := e.state.PopEval()
		return err
	case CmdPopFunction:
		return e.popFunctionOrTunnel(PushPopFunction)
	case CmdPopTunnel:
		return e.popFunctionOrTunnel(PushPopTunnel)
	case CmdChoiceCount:
		e.state.PushEval(IntValue(int32(len(e.state.CurrentChoices()))))
		return nil
	case CmdTurns:
		e.state.PushEval(IntValue(int32(e.state.CurrentTurnIndex())))
		return nil
	case CmdTurnsSince:
		return e.performTurnsSince()
	case CmdReadCount:
		return e.performReadCount()
	case CmdRandom:
		return e.performRandom()
	case CmdSeedRandom:
		return e.performSeedRandom()
	case CmdVisitIndex:
		e.state.PushEval(IntValue(e.state.VisitCount(originContainer)))
		return nil
	case CmdSequenceShuffleIndex:
		return e.performSequenceShuffleIndex()
	case CmdStartThread:
		e.state.CallStack().PushThread()
		return nil
	case CmdDone:
		return e.performDone()
	case CmdEnd:
		e.state.ForceEnd()
		return nil
	case CmdListFromInt:
		return e.performListFromInt()
	case CmdListRange:
		return e.performListRange()
	case CmdListRandom:
		return e.performListRandom()
	}
	return nil
}

func (e *Engine) performEndString() error {
	var parts []string
	for {
		v, err := e.state.PopEvalValue()
		if err != nil {
			return err
		}
		if v.Kind == KindString && v.StrVal() == stringStartMarker {
			break
		}
		s, cerr := v.CoerceToString()
		if cerr != nil {
			return cerr
		}
		parts = append([]string{s}, parts...)
	}
	joined := ""
	for _, p := range parts {
		joined += p
	}
	e.state.PushEval(StringValue(joined))
	return nil
}

// stringStartMarker is pushed by CmdBeginString to delimit a dynamic
// string's contents on the eval stack; it is never itself emitted.
const stringStartMarker = "\x00begin-string\x00"

func (e *Engine) performEndTag() error {
	v, err := e.state.PopEvalValue()
	if err != nil {
		return nil
	}
	s, _ := v.CoerceToString()
	e.pushToOutputStream(NewTag(s))
	return nil
}

func (e *Engine) performTurnsSince() error {
	v, err := e.state.PopEvalValue()
	if err != nil {
		return err
	}
	if v.Kind != KindDivertTarget {
		return invalidStateF("TURNS_SINCE expects a divert target argument")
	}
	result := resolvePath(Object(e.root), v.DivertTarget())
	c := result.container()
	if c == nil {
		e.state.PushEval(IntValue(-1))
		return nil
	}
	turn := e.state.TurnIndex(c)
	if turn == 0 {
		e.state.PushEval(IntValue(-1))
		return nil
	}
	e.state.PushEval(IntValue(int32(e.state.CurrentTurnIndex()) - turn))
	return nil
}

func (e *Engine) performReadCount() error {
	v, err := e.state.PopEvalValue()
	if err != nil {
		return err
	}
	if v.Kind != KindDivertTarget {
		return invalidStateF("READ_COUNT expects a divert target argument")
	}
	result := resolvePath(Object(e.root), v.DivertTarget())
	c := result.container()
	if c == nil {
		e.state.PushEval(IntValue(0))
		return nil
	}
	e.state.PushEval(IntValue(e.state.VisitCount(c)))
	return nil
}

func (e *Engine) performRandom() error {
	max, err := e.state.PopEvalValue()
	if err != nil {
		return err
	}
	min, err := e.state.PopEvalValue()
	if err != nil {
		return err
	}
	minI, err := min.CoerceToInt()
	if err != nil {
		return err
	}
	maxI, err := max.CoerceToInt()
	if err != nil {
		return err
	}
	if maxI < minI {
		return invalidStateF("RANDOM: max less than min")
	}
	span := int64(maxI) - int64(minI) + 1
	e.state.PushEval(IntValue(minI + int32(e.rng.Int63n(span))))
	return nil
}

func (e *Engine) performSeedRandom() error {
	v, err := e.state.PopEvalValue()
	if err != nil {
		return err
	}
	seed, err := v.CoerceToInt()
	if err != nil {
		return err
	}
	e.rng = newSeededRand(int64(seed))
	e.state.SetStorySeed(int64(seed))
	return nil
}

func (e *Engine) performSequenceShuffleIndex() error {
	numCardsV, err := e.state.PopEvalValue()
	if err != nil {
		return err
	}
	seqCountV, err := e.state.PopEvalValue()
	if err != nil {
		return err
	}
	numCards, _ := numCardsV.CoerceToInt()
	seqCount, _ := seqCountV.CoerceToInt()
	if numCards <= 0 {
		e.state.PushEval(IntValue(0))
		return nil
	}
	seed := int64(seqCount) + e.state.StorySeed()
	r := newSeededRand(seed)
	e.state.PushEval(IntValue(int32(r.Int63n(int64(numCards)))))
	return nil
}

func (e *Engine) performDone() error {
	cs := e.state.CallStack()
	if cs.CanPopThread() {
		return cs.PopThread()
	}
	e.state.SetDidSafeExit(true)
	return nil
}

func (e *Engine) performListFromInt() error {
	nameV, err := e.state.PopEvalValue()
	if err != nil {
		return err
	}
	intV, err := e.state.PopEvalValue()
	if err != nil {
		return err
	}
	listName := nameV.StrVal()
	def, ok := e.listOrigins.Get(listName)
	if !ok {
		e.state.PushEval(ListValue(NewInkList()))
		return nil
	}
	i, _ := intV.CoerceToInt()
	item, val, ok := def.itemWithValue(i)
	if !ok {
		e.state.PushEval(ListValue(NewInkList()))
		return nil
	}
	e.state.PushEval(ListValue(SingleItem(item, val)))
	return nil
}

func (e *Engine) performListRange() error {
	maxV, err := e.state.PopEvalValue()
	if err != nil {
		return err
	}
	minV, err := e.state.PopEvalValue()
	if err != nil {
		return err
	}
	listV, err := e.state.PopEvalValue()
	if err != nil {
		return err
	}
	if listV.Kind != KindList {
		return invalidStateF("LIST_RANGE expects a list argument")
	}
	e.state.PushEval(ListValue(listV.List().ListWithSubRange(minV, maxV)))
	return nil
}

func (e *Engine) performListRandom() error {
	v, err := e.state.PopEvalValue()
	if err != nil {
		return err
	}
	if v.Kind != KindList {
		return invalidStateF("LIST_RANDOM expects a list argument")
	}
	ordered := v.List().orderedItems()
	if len(ordered) == 0 {
		e.state.PushEval(ListValue(NewInkList()))
		return nil
	}
	idx := e.rng.Intn(len(ordered))
	chosen := ordered[idx]
	e.state.PushEval(ListValue(SingleItem(chosen.Item, chosen.Value)))
	return nil
}
