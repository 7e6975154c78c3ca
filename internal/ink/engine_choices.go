package ink

import "strings"

// performChoicePoint evaluates a ChoicePoint's condition, pops its
// choice-only and/or start-content text back off the evaluation stack
// (rescuing any leading Tag values along the way), then applies the
// once-only gate and, if the choice survives, builds it from that text.
//
// The choice-only/start-content strings are consumed from the
// evaluation stack unconditionally, whether the condition (if any)
// passed or failed and even when the once-only gate later rejects the
// choice — otherwise that content would be left dangling on the stack
// to spill into the next real output.
func (e *Engine) performChoicePoint(cp *ChoicePoint) error {
	show := true
	if cp.HasCondition() {
		cond, err := e.state.PopEvalValue()
		if err != nil {
			return err
		}
		truthy, err := cond.IsTruthy()
		if err != nil {
			return err
		}
		show = truthy
	}

	var tags []string
	var choiceOnlyText, startText string
	var err error

	if cp.HasChoiceOnlyContent() {
		choiceOnlyText, err = e.popChoiceStringAndTags(&tags)
		if err != nil {
			return err
		}
	}
	if cp.HasStartContent() {
		startText, err = e.popChoiceStringAndTags(&tags)
		if err != nil {
			return err
		}
	}

	target := cp.ChoiceTarget()
	if cp.OnceOnly() && target.Container != nil && e.state.VisitCount(target.Container) > 0 {
		show = false
	}
	if !show {
		return nil
	}

	text := strings.TrimSpace(startText + choiceOnlyText)

	choice := &Choice{
		Text: text,
		Tags: tags,
		Index: len(e.state.CurrentChoices()),
		SourcePath: cp.Path().String(),
		TargetPath: cp.ChoiceTargetPath(),
		IsInvisibleDefault: cp.IsInvisibleDefault(),
		OriginalThreadIndex: e.state.CallStack().CurrentThreadIndex(),
		ThreadAtGeneration: e.state.CallStack().currentThread().copy(),
	}
	e.state.SetCurrentChoices(append(e.state.CurrentChoices(), choice))
	return nil
}

// popChoiceStringAndTags pops the string value a choice-only or
// start-content "ev str ... /str /ev" block left on top of the
// evaluation stack, then rescues any Tag values sitting beneath it,
// prepending them to tags in source order since they come off in
// reverse.
func (e *Engine) popChoiceStringAndTags(tags *[]string) (string, error) {
	v, err := e.state.PopEvalValue()
	if err != nil {
		return "", err
	}
	text, err := v.CoerceToString()
	if err != nil {
		return "", err
	}
	for e.state.EvalStackLen() > 0 {
		top, err := e.state.PeekEval()
		if err != nil {
			return "", err
		}
		t, ok := top.(*Tag)
		if !ok {
			break
		}
		if _, err := e.state.PopEval(); err != nil {
			return "", err
		}
		*tags = append([]string{t.Text}, *tags...)
	}
	return text, nil
}

// ChooseChoiceIndex resumes execution at the chosen Choice's target,
// restoring the thread that was current when the choice was generated.
func (e *Engine) ChooseChoiceIndex(idx int) error {
	choices := e.state.CurrentChoices()
	if idx < 0 || idx >= len(choices) {
		return badArgF("choice index out of range: %d", idx)
	}
	choice := choices[idx]

	e.state.CallStack().SetCurrentThread(choice.ThreadAtGeneration)

	result := resolvePath(Object(e.root), choice.TargetPath)
	target := result.pointer()
	if target.IsNull() {
		return invalidStateF("choice target could not be resolved: %s", choice.PathStringOnChoice())
	}

	prev := e.state.CallStack().CurrentElement().CurrentPointer
	e.state.CallStack().CurrentElement().CurrentPointer = target
	e.visitChangedContainersDueToDivert(prev, target)

	e.state.SetCurrentChoices(nil)
	e.state.SetDidSafeExit(false)
	e.state.IncrementTurnIndex()
	return nil
}
