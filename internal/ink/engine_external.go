package ink

// callExternalFunctionDivert dispatches a Divert marked IsExternal: a
// bound host function takes priority; with no binding, execution falls
// back to the ink-defined function of the same name when fallback is
// enabled, exactly as though the divert had never been external.
// Arguments are popped off the evaluation stack only when a bound host
// function runs; on the fallback path they stay on the stack for the
// ink function to read as its parameters. The fallback does not compare
// the call's argument count with the ink function's parameters.
func (e *Engine) callExternalFunctionDivert(d *Divert, target Pointer) error {
	name := d.TargetPathString()
	binding, bound := e.externals[name]

	if !bound {
		if !e.allowExternalFallback {
			return badArgF("missing function binding for external function '%s'", name)
		}
		if target.IsNull() {
			return invalidStateF("fallback requested for external function '%s' but no ink-side definition exists", name)
		}
		if d.PushesToStack {
			e.state.CallStack().Push(d.StackPushType, e.state.EvalStackLen(), len(e.state.OutputStream()))
		}
		e.state.CallStack().CurrentElement().CurrentPointer = target
		return nil
	}

	if e.inLookahead() && !binding.lookaheadSafe {
		return invalidStateF("external function '%s' is not lookahead-safe and cannot run during speculative evaluation", name)
	}

	args := make([]*Value, d.ExternalArgs)
	for i := d.ExternalArgs - 1; i >= 0; i-- {
		v, err := e.state.PopEvalValue()
		if err != nil {
			return err
		}
		args[i] = v
	}

	result, err := binding.fn(args)
	if err != nil {
		return badArgF("external function '%s' failed: %v", name, err)
	}
	if result == nil {
		e.state.PushEval(NewVoid())
		return nil
	}
	e.state.PushEval(result)
	return nil
}
