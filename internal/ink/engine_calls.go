package ink

// performVariableReference pushes either a read-count (PathForCount set)
// or a variable's current value onto the evaluation stack, resolving one
// level of VariablePointer indirection.
func (e *Engine) performVariableReference(v *VariableReference) error {
	if v.PathForCount != nil {
		c := v.containerForCount()
		if c == nil {
			return invalidStateF("read count target could not be resolved: %s", v.PathForCount.String())
		}
		e.state.PushEval(IntValue(e.state.VisitCount(c)))
		return nil
	}
	val, ok := e.state.VariablesState().Get(v.Name)
	if !ok {
		return badArgF("variable not found: '%s'", v.Name)
	}
	if val.Kind == KindVariablePointer {
		resolved, err := e.state.VariablesState().ResolveVariablePointer(val)
		if err != nil {
			return err
		}
		val = resolved
	}
	e.state.PushEval(val.copyValue())
	return nil
}

func (e *Engine) performVariableAssignment(v *VariableAssignment) error {
	val, err := e.state.PopEvalValue()
	if err != nil {
		return err
	}
	return e.state.VariablesState().Assign(v.Name, val, v.IsGlobal, v.IsNewDeclaration)
}

func (e *Engine) performNativeFunctionCall(n *NativeFunctionCall) error {
	arity := n.Arity()
	params := make([]*Value, arity)
	for i := arity - 1; i >= 0; i-- {
		v, err := e.state.PopEvalValue()
		if err != nil {
			return err
		}
		params[i] = v
	}
	result, err := n.Call(params, e.listOrigins)
	if err != nil {
		return err
	}
	e.state.PushEval(result)
	return nil
}

// performDivert implements divert dispatch: conditional guard,
// variable-target resolution, external-function handoff, optional
// call-stack push, and the container-entry visit-count bookkeeping of
// visitChangedContainersDueToDivert.
func (e *Engine) performDivert(d *Divert) error {
	if d.IsConditional {
		cond, err := e.state.PopEvalValue()
		if err != nil {
			return err
		}
		truthy, err := cond.IsTruthy()
		if err != nil {
			return err
		}
		if !truthy {
			return nil
		}
	}

	target := d.TargetPointer()

	if d.HasVariableTarget() {
		val, ok := e.state.VariablesState().Get(d.VariableDivertName)
		if !ok {
			return badArgF("variable divert target not found: '%s'", d.VariableDivertName)
		}
		if val.Kind == KindVariablePointer {
			resolved, err := e.state.VariablesState().ResolveVariablePointer(val)
			if err != nil {
				return err
			}
			val = resolved
		}
		if val.Kind != KindDivertTarget {
			return invalidStateF("variable divert target '%s' does not hold a divert target value", d.VariableDivertName)
		}
		target = resolvePath(Object(e.root), val.DivertTarget()).pointer()
	}

	if d.IsExternal {
		return e.callExternalFunctionDivert(d, target)
	}

	if target.IsNull() {
		return invalidStateF("divert target could not be resolved: %s", d.TargetPathString())
	}

	if d.PushesToStack {
		e.state.CallStack().Push(d.StackPushType, e.state.EvalStackLen(), len(e.state.OutputStream()))
	}

	prev := e.state.CallStack().CurrentElement().CurrentPointer
	e.state.CallStack().CurrentElement().CurrentPointer = target
	e.visitChangedContainersDueToDivert(prev, target)
	return nil
}
