package ink

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/funvibe/inkgo/internal/ink"
)

// ExternalFunction is a host-provided function bound under a name the
// compiled story calls via an external divert. Arguments and
// the return value use plain Go types: int32, float32, string, bool, or
// nil for a function called purely for its side effects.
type ExternalFunction func(args []any) (any, error)

// Choice is a presented option the player may pick via ChooseChoiceIndex.
type Choice struct {
	Index int
	Text  string
	Tags  []string
}

// Story is the public embedding surface wrapping the execution engine: a
// thin facade that owns exactly one engine instance and translates
// between public, Go-native types and the engine's internal object
// model.
type Story struct {
	engine    *ink.Engine
	config    EngineConfig
	sessionID string
	logger    Logger

	handler ErrorHandler
}

// New compiles a story from its JSON representation and returns a fresh
// Story ready to Continue, using an arbitrary-but-fixed PRNG seed. Use
// NewWithConfig to pin a specific seed for a reproducible run.
func New(storyJSON []byte) (*Story, error) {
	return NewWithConfig(storyJSON, DefaultEngineConfig())
}

// NewWithConfig is New with explicit ambient engine configuration.
func NewWithConfig(storyJSON []byte, cfg EngineConfig) (*Story, error) {
	root, origins, _, err := ink.ReadStoryFromJSON(storyJSON)
	if err != nil {
		return nil, wrapBare(err)
	}
	engine := ink.NewEngine(root, origins, cfg.Seed)
	engine.SetAllowExternalFunctionFallback(cfg.AllowExternalFallback)
	engine.SetMaxStepsPerContinue(cfg.MaxStepsPerContinue)

	s := &Story{
		engine: engine,
		config: cfg,
		sessionID: newSessionID(),
		logger: defaultLogger,
	}
	s.logf("story loaded")
	return s, nil
}

func wrapBare(err error) error {
	return &StoryError{SessionID: "unbound", Kind: classify(err), Err: err}
}

// WithLogger overrides the Story's logger (defaulting to the package
// logger set via SetDefaultLogger).
func (s *Story) WithLogger(l Logger) *Story {
	if l != nil {
		s.logger = l
	}
	return s
}

// SessionID is the identifier stamped into this Story's log lines and
// errors.
func (s *Story) SessionID() string { return s.sessionID }

// CanContinue reports whether Continue has more content to produce.
func (s *Story) CanContinue() bool { return s.engine.CanContinue() }

// Continue runs the engine until a full line of text or a set of
// choices is ready, returning the text produced since the previous call.
// Errors surfaced during this Continue are delivered to the installed
// ErrorHandler if any; otherwise Continue returns an aggregate error
// built from the story state's error list.
func (s *Story) Continue() (string, error) {
	if !s.engine.CanContinue() {
		return "", s.wrapError(&ink.InvalidStoryStateError{Message: "cannot continue - no more content"})
	}
	before := s.engine.CurrentText()
	_ = s.engine.Continue()
	after := s.engine.CurrentText()

	text := after
	if len(after) >= len(before) {
		text = after[len(before):]
	}
	return text, s.drainMessages()
}

// ContinueMaximally repeatedly continues until the story has no more
// content to produce without player input, returning every line
// produced joined together.
func (s *Story) ContinueMaximally() (string, error) {
	var joined string
	for s.engine.CanContinue() {
		text, err := s.Continue()
		joined += text
		if err != nil {
			return joined, err
		}
		if len(s.engine.State().CurrentChoices()) > 0 {
			break
		}
	}
	return joined, nil
}

// ContinueAsync runs Continue with a wall-clock budget: if the
// engine hasn't produced a full line within timeout, it returns empty
// text along with false. The engine itself is cooperative and
// single-threaded, so the timeout is enforced by running the blocking
// Continue on a goroutine and racing it against a timer rather than by
// any mid-step cancellation point; after a timeout (or ctx being done)
// that Continue keeps running and its result is discarded.
func (s *Story) ContinueAsync(ctx context.Context, timeout time.Duration) (text string, done bool, err error) {
	resultCh := make(chan struct {
		text string
		err error
	}, 1)
	go func() {
		t, e := s.Continue()
		resultCh <- struct {
			text string
			err error
		}{t, e}
	}()

	select {
	case r := <-resultCh:
		return r.text, true, r.err
	case <-time.After(timeout):
		return "", false, nil
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
}

// drainMessages consumes the story state's pending errors and warnings
// after a step. With a handler installed, every message is delivered to
// it and the pending list is considered cleared — drainMessages itself
// returns nil. With no handler installed, warnings are only logged but
// every error is joined into the aggregate error drainMessages returns.
func (s *Story) drainMessages() error {
	state := s.engine.State()
	errs := state.Errors()
	warnings := state.Warnings()

	if s.handler != nil {
		for _, m := range errs {
			s.report(m.Message, SeverityError)
		}
		for _, m := range warnings {
			s.report(m.Message, SeverityWarning)
		}
		return nil
	}

	for _, m := range warnings {
		s.logf("%s: %s", SeverityWarning, m.Message)
	}
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, len(errs))
	for i, m := range errs {
		msgs[i] = m.Message
		s.logf("%s: %s", SeverityError, m.Message)
	}
	return s.wrapError(&ink.InvalidStoryStateError{Message: strings.Join(msgs, "; ")})
}

func (s *Story) report(message string, sev Severity) {
	s.logf("%s: %s", sev, message)
	if s.handler != nil {
		s.handler(message, sev)
	}
}

// reportErr reports err through the installed handler (if any) and
// returns it wrapped as a StoryError either way: a handler clears the
// pending list, otherwise Continue's caller gets the aggregate error
// back directly.
func (s *Story) reportErr(err error) error {
	if err == nil {
		return nil
	}
	if s.handler != nil {
		s.handler(err.Error(), SeverityError)
	}
	return s.wrapError(err)
}

// SetErrorHandler installs a handler receiving every error/warning as it
// occurs; with no handler installed, Continue returns an aggregate error
// instead.
func (s *Story) SetErrorHandler(h ErrorHandler) { s.handler = h }

// CurrentText returns the text accumulated on the current line.
func (s *Story) CurrentText() string { return s.engine.CurrentText() }

// CurrentTags returns the tags attached to the current line.
func (s *Story) CurrentTags() []string { return s.engine.CurrentTags() }

// CurrentChoices returns the choices available after the most recent
// Continue, with Index assigned in presentation order. Invisible default
// choices are not filtered out: they appear in this list like any other
// choice, and Index counts them.
func (s *Story) CurrentChoices() []Choice {
	internal := s.engine.CurrentChoices()
	out := make([]Choice, 0, len(internal))
	for i, c := range internal {
		out = append(out, Choice{Index: i, Text: c.Text, Tags: c.Tags})
	}
	return out
}

// ChooseChoiceIndex resumes the story at the chosen choice's target.
func (s *Story) ChooseChoiceIndex(i int) error {
	if err := s.engine.ChooseChoiceIndex(i); err != nil {
		return s.reportErr(err)
	}
	return s.drainMessages()
}

// ChoosePathString jumps directly to a named path; args are pushed for
// the target knot to read as parameters.
func (s *Story) ChoosePathString(path string, resetCallstack bool, args ...any) error {
	vals, err := toValues(args)
	if err != nil {
		return s.reportErr(err)
	}
	if err := s.engine.ChoosePathString(path, resetCallstack, vals); err != nil {
		return s.reportErr(err)
	}
	return s.drainMessages()
}

// EvaluateFunction calls an ink-defined function as a pure expression,
// returning its return value (nil for a function with no `~ return`)
// and, via outText, the text it produced as a side effect.
func (s *Story) EvaluateFunction(name string, outText *string, args ...any) (any, error) {
	vals, err := toValues(args)
	if err != nil {
		return nil, s.reportErr(err)
	}
	v, err := s.engine.EvaluateFunction(name, vals, outText)
	if err != nil {
		return nil, s.reportErr(err)
	}
	if v == nil {
		return nil, nil
	}
	return fromValue(v), nil
}

// SetVariable writes a global story variable.
func (s *Story) SetVariable(name string, value any) error {
	v, err := toValue(value)
	if err != nil {
		return s.reportErr(err)
	}
	s.engine.State().VariablesState().SetGlobal(name, v)
	return nil
}

// GetVariable reads a global story variable, returning (nil, false) if
// it isn't declared.
func (s *Story) GetVariable(name string) (any, bool) {
	v, ok := s.engine.State().VariablesState().Global(name)
	if !ok {
		return nil, false
	}
	return fromValue(v), true
}

// ObserveVariable registers fn to be called whenever name's global value
// changes, once per Continue with the final value.
func (s *Story) ObserveVariable(name string, fn func(name string, value any)) {
	s.engine.State().VariablesState().ObserveVariable(name, func(n string, v *ink.Value) {
		fn(n, fromValue(v))
	})
}

// RemoveVariableObserver removes every observer registered for name.
func (s *Story) RemoveVariableObserver(name string) {
	s.engine.State().VariablesState().RemoveObserver(name)
}

// BindExternalFunction registers fn under name so external diverts to
// that name call it instead of (or instead of failing to find) an
// ink-side definition.
func (s *Story) BindExternalFunction(name string, fn ExternalFunction, lookaheadSafe bool) {
	s.engine.BindExternalFunction(name, func(args []*ink.Value) (*ink.Value, error) {
		goArgs := make([]any, len(args))
		for i, a := range args {
			goArgs[i] = fromValue(a)
		}
		result, err := fn(goArgs)
		if err != nil {
			return nil, err
		}
		if result == nil {
			return nil, nil
		}
		return toValue(result)
	}, lookaheadSafe)
}

// UnbindExternalFunction removes a previously bound external function.
func (s *Story) UnbindExternalFunction(name string) { s.engine.UnbindExternalFunction(name) }

// SetAllowExternalFunctionFallbacks toggles whether an external divert
// with no bound function falls back to an ink-side definition of the
// same name.
func (s *Story) SetAllowExternalFunctionFallbacks(allow bool) {
	s.engine.SetAllowExternalFunctionFallback(allow)
}

// SaveState serializes the complete runtime state to JSON.
func (s *Story) SaveState() ([]byte, error) {
	data, err := ink.WriteSaveState(s.engine.State())
	if err != nil {
		return nil, s.reportErr(err)
	}
	return data, nil
}

// LoadState restores runtime state previously produced by SaveState. If
// ReseedRandomOnLoad is set (the default), the engine's PRNG is reseeded
// from the restored story_seed so subsequent RANDOM calls remain
// deterministic across the round trip.
func (s *Story) LoadState(data []byte) error {
	if err := ink.LoadSaveState(data, s.engine.State()); err != nil {
		return s.reportErr(err)
	}
	if s.config.ReseedRandomOnLoad {
		s.engine.SeedRandom(s.engine.State().StorySeed())
	}
	s.logf("state loaded")
	return nil
}

// ResetState discards all runtime state and starts the story over from
// its initial pointer.
func (s *Story) ResetState() {
	s.engine.ResetState()
	s.logf("state reset")
}

// GetGlobalTags returns the tags attached before any other content at
// the root of the story.
func (s *Story) GetGlobalTags() []string { return s.engine.GlobalTags() }

// TagsForContentAtPath returns the tags at the start of the container
// addressed by path.
func (s *Story) TagsForContentAtPath(path string) []string {
	return s.engine.TagsForContentAtPath(path)
}

// GetVisitCountAtPathString returns how many times the container at
// path has been visited.
func (s *Story) GetVisitCountAtPathString(path string) (int, error) {
	n, err := s.engine.VisitCountAtPathString(path)
	if err != nil {
		return 0, s.reportErr(err)
	}
	return int(n), nil
}

// SwitchFlow moves execution to the named flow, creating it if it
// doesn't already exist.
func (s *Story) SwitchFlow(name string) { s.engine.State().SwitchFlow(name) }

// RemoveFlow discards a named flow's state; it must not be the current
// flow.
func (s *Story) RemoveFlow(name string) error {
	err := s.engine.State().RemoveFlow(name)
	return s.reportErr(err)
}

// CurrentFlowName returns the name of the active flow.
func (s *Story) CurrentFlowName() string { return s.engine.State().CurrentFlowName() }

func toValue(v any) (*ink.Value, error) {
	switch t := v.(type) {
	case int:
		return ink.IntValue(int32(t)), nil
	case int32:
		return ink.IntValue(t), nil
	case float32:
		return ink.FloatValue(t), nil
	case float64:
		return ink.FloatValue(float32(t)), nil
	case bool:
		return ink.BoolValue(t), nil
	case string:
		return ink.StringValue(t), nil
	case *ink.Value:
		return t, nil
	default:
		return nil, &ink.BadArgumentError{Message: fmt.Sprintf("unsupported ink value type %T", v)}
	}
}

func toValues(vs []any) ([]*ink.Value, error) {
	out := make([]*ink.Value, len(vs))
	for i, v := range vs {
		iv, err := toValue(v)
		if err != nil {
			return nil, err
		}
		out[i] = iv
	}
	return out, nil
}

func fromValue(v *ink.Value) any {
	switch v.Kind {
	case ink.KindBool:
		return v.BoolVal()
	case ink.KindInt:
		return v.IntVal()
	case ink.KindFloat:
		return v.FloatVal()
	case ink.KindString:
		return v.StrVal()
	case ink.KindDivertTarget:
		return v.DivertTarget().String()
	default:
		return v.String()
	}
}
