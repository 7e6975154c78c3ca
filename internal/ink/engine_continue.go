package ink

// defaultMaxStepsWithoutProgress guards against a malformed story
// looping forever: it caps the total number of steps a single Continue
// call may take, whether or not those steps produce output; it is just a
// runaway backstop, not a content limit.
// Overridable via SetMaxStepsPerContinue.
const defaultMaxStepsWithoutProgress = 1_000_000

// SetMaxStepsPerContinue overrides the runaway-loop backstop Continue
// enforces; a value <= 0 restores the default.
func (e *Engine) SetMaxStepsPerContinue(n int) {
	if n <= 0 {
		n = defaultMaxStepsWithoutProgress
	}
	e.maxStepsPerContinue = n
}

// Continue runs the story until either a full line of output text is
// ready, a list of choices has been presented, or the story safely ends
// — the public entry point's usual per-turn operation.
func (e *Engine) Continue() error {
	if !e.canContinue() {
		return invalidStateF("cannot continue - no more content or choices to present")
	}

	e.state.ResetErrors()
	patch := NewStatePatch(nil)
	e.state.SetPatch(patch)
	e.state.VariablesState().SetPatch(patch)
	e.state.VariablesState().StartBatchObserving()

	var snapshot *lineSnapshot
	steps := 0
	for e.canContinue() {
		more, err := e.Step()
		if err != nil {
			e.state.AddError(err.Error())
			break
		}

		steps++
		if steps > e.effectiveMaxSteps() {
			e.state.AddError("ink engine exceeded the maximum step count without reaching a line boundary")
			break
		}

		if snapshot != nil {
			change := calculateNewlineOutputStateChange(snapshot.text, e.CurrentText(), snapshot.tagCount, len(e.CurrentTags()))
			if change == newlineExtendedBeyond {
				e.restoreLineSnapshot(snapshot)
				snapshot = nil
				e.lookaheadDepth--
				break
			}
			if change == newlineRemoved {
				snapshot = nil
				e.lookaheadDepth--
			}
		}

		if e.outputStreamEndsInNewline() {
			if e.canContinue() {
				if snapshot == nil {
					snapshot = e.takeLineSnapshot()
					e.lookaheadDepth++
				}
			} else if snapshot != nil {
				snapshot = nil
				e.lookaheadDepth--
			}
		}

		if !more {
			break
		}
	}

	if snapshot != nil {
		e.restoreLineSnapshot(snapshot)
		e.lookaheadDepth--
	}

	e.state.VariablesState().ApplyPatch()
	e.state.SetPatch(nil)
	e.state.VariablesState().SetPatch(nil)
	e.state.VariablesState().NotifyBatchObservers()

	if !e.canContinue() && len(e.state.CurrentChoices()) == 0 {
		e.state.SetDidSafeExit(true)
	}
	return nil
}

func (e *Engine) effectiveMaxSteps() int {
	if e.maxStepsPerContinue > 0 {
		return e.maxStepsPerContinue
	}
	return defaultMaxStepsWithoutProgress
}

// lineSnapshot captures the output stream, call stack, evaluation
// stack, and variable/visit-count patch at the moment the output
// stream first ends in a newline, so later steps can be compared
// against it to decide whether that newline was the true end of the
// line, and rewound to it if so.
type lineSnapshot struct {
	outputStream []Object
	callStack *CallStack
	evalStack []Object
	patch *StatePatch
	text string
	tagCount int
}

func (e *Engine) takeLineSnapshot() *lineSnapshot {
	flow := e.state.CurrentFlow()
	return &lineSnapshot{
		outputStream: append([]Object(nil), flow.OutputStream...),
		callStack: CopyCallStack(flow.CallStack),
		evalStack: append([]Object(nil), e.state.evalStack...),
		patch: NewStatePatch(e.state.Patch()),
		text: e.CurrentText(),
		tagCount: len(e.CurrentTags()),
	}
}

// restoreLineSnapshot rewinds the engine back to snap, discarding
// anything stepped since it was taken — used once a trailing newline
// is confirmed as the genuine end of the line, so content belonging to
// the next line isn't folded into this one.
func (e *Engine) restoreLineSnapshot(snap *lineSnapshot) {
	flow := e.state.CurrentFlow()
	flow.OutputStream = snap.outputStream
	flow.CallStack = snap.callStack
	e.state.evalStack = snap.evalStack
	e.state.SetPatch(snap.patch)
	e.state.VariablesState().SetPatch(snap.patch)
}

// newlineOutputStateChange classifies how the output stream has moved
// on since a trailing-newline snapshot was taken.
type newlineOutputStateChange int

const (
	newlineNoChange newlineOutputStateChange = iota
	newlineExtendedBeyond
	newlineRemoved
)

// calculateNewlineOutputStateChange compares the text/tag counts at a
// trailing-newline snapshot against the current text/tags to decide
// whether the newline still stands as the line's end (NoChange), was
// the start of further real content (ExtendedBeyondNewline - the
// newline is confirmed and the extra content belongs to the next
// line), or was swallowed by glue (NewlineRemoved - keep going, the
// line continues past where the newline used to be).
func calculateNewlineOutputStateChange(prevText, currText string, prevTagCount, currTagCount int) newlineOutputStateChange {
	newlineStillExists := len(currText) >= len(prevText) && prevText != "" && currText[len(prevText)-1] == '\n'

	if prevTagCount == currTagCount && len(prevText) == len(currText) && newlineStillExists {
		return newlineNoChange
	}

	if !newlineStillExists {
		return newlineRemoved
	}

	if currTagCount > prevTagCount {
		return newlineExtendedBeyond
	}

	for _, c := range currText[len(prevText):] {
		if c != ' ' && c != '\t' {
			return newlineExtendedBeyond
		}
	}

	return newlineNoChange
}

// ContinueMaximally runs Continue repeatedly until the story has no more
// content and is not waiting on a choice, collecting every line produced
// along the way — convenience wrapper over the per-line Continue.
func (e *Engine) ContinueMaximally() ([]string, error) {
	var lines []string
	prevLen := len(e.CurrentText())
	for e.canContinue() {
		if err := e.Continue(); err != nil {
			return lines, err
		}
		text := e.CurrentText()
		if len(text) > prevLen {
			lines = append(lines, text[prevLen:])
			prevLen = len(text)
		}
		if len(e.state.CurrentChoices()) > 0 {
			break
		}
	}
	return lines, nil
}
