package ink

import (
	"bytes"
	"encoding/json"
)

// WriteSaveState serializes a StoryState into the engine's save-game
// format: every flow's call stack, output stream and pending choices,
// plus globals, visit/turn counters and the PRNG seed.
func WriteSaveState(s *StoryState) ([]byte, error) {
	flows := make(map[string]interface{}, len(s.flows))
	for name, f := range s.flows {
		flows[name] = flowToGeneric(f)
	}
	doc := map[string]interface{}{
		"inkSaveVersion": InkSaveStateVersion,
		"inkFormatVersion": InkVersionCurrent,
		"flows": flows,
		"currentFlow": s.currentFlowName,
		"variablesState": variablesStateToGeneric(s.variablesState),
		"visitCounts": int32MapToGeneric(s.visitCounts),
		"turnIndices": int32MapToGeneric(s.turnIndices),
		"turnIdx": s.currentTurnIndex,
		"storySeed": s.storySeed,
		"previousRandom": s.previousRandom,
		"didSafeExit": s.didSafeExit,
	}
	return json.Marshal(doc)
}

// LoadSaveState replaces s's flows, globals and counters with those
// described by data, resolving every saved pointer against s's existing
// content tree.
func LoadSaveState(data []byte, s *StoryState) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc map[string]interface{}
	if err := dec.Decode(&doc); err != nil {
		return badJsonf("invalid save json: %v", err)
	}

	version := jsonInt(doc, "inkSaveVersion", 0)
	if version < MinCompatibleLoadVersion || version > InkSaveStateVersion {
		return badJsonf("save version %d is not compatible with this engine (supports %d-%d)", version, MinCompatibleLoadVersion, InkSaveStateVersion)
	}

	root := s.root
	origins := s.listOrigins

	var flows map[string]*Flow
	var currentFlow string

	if flowsRaw, ok := doc["flows"].(map[string]interface{}); ok {
		flows = make(map[string]*Flow, len(flowsRaw))
		for name, fr := range flowsRaw {
			fm, ok := fr.(map[string]interface{})
			if !ok {
				return badJsonf("flow %q must be an object", name)
			}
			f, err := flowFromGeneric(name, fm, root, origins)
			if err != nil {
				return err
			}
			flows[name] = f
		}

		currentFlow = s.currentFlowName
		if cf, ok := doc["currentFlow"].(string); ok {
			currentFlow = cf
		}
		if _, ok := flows[currentFlow]; !ok {
			return badJsonf("save json's current flow %q was not among its flows", currentFlow)
		}
	} else {
		// Legacy single-flow save: callstack, output stream and choices
		// are stored directly at the document root instead of nested
		// under a named flows map.
		f, err := legacyFlowFromGeneric(doc, root, origins)
		if err != nil {
			return err
		}
		currentFlow = DefaultFlowName
		flows = map[string]*Flow{currentFlow: f}
	}

	s.flows = flows
	s.currentFlowName = currentFlow
	s.variablesState.SetCallStack(s.CurrentFlow().CallStack)

	if vsRaw, ok := doc["variablesState"].(map[string]interface{}); ok {
		globals := make(map[string]*Value, len(vsRaw))
		for name, v := range vsRaw {
			obj, err := objectFromGeneric(v, origins)
			if err != nil {
				return err
			}
			val, ok := obj.(*Value)
			if !ok {
				return badJsonf("global %q must be a value", name)
			}
			globals[name] = val
		}
		s.variablesState.globals = globals
	}

	s.visitCounts = int32MapFromGeneric(doc["visitCounts"])
	s.turnIndices = int32MapFromGeneric(doc["turnIndices"])
	s.currentTurnIndex = jsonInt(doc, "turnIdx", -1)
	s.storySeed = jsonInt64(doc, "storySeed", s.storySeed)
	s.previousRandom = jsonInt64(doc, "previousRandom", 0)
	// didSafeExit is part of whether the restored story can continue
	// without player input (see Engine.CanContinue): a save taken while
	// choices were on offer must restore as "can't continue without a
	// choice", not silently start stepping again.
	s.didSafeExit = jsonBool(doc, "didSafeExit")
	s.ClearDivertedPointer()
	s.ResetErrors()
	return nil
}

func flowToGeneric(f *Flow) interface{} {
	os := make([]interface{}, len(f.OutputStream))
	for i, o := range f.OutputStream {
		os[i] = objectToGeneric(o)
	}
	choices := make([]interface{}, len(f.CurrentChoices))
	for i, c := range f.CurrentChoices {
		choices[i] = choiceToGeneric(c)
	}
	return map[string]interface{}{
		"callstack": callStackToGeneric(f.CallStack),
		"outputStream": os,
		"currentChoices": choices,
	}
}

func flowFromGeneric(name string, m map[string]interface{}, root *Container, origins *ListDefinitionsOrigin) (*Flow, error) {
	f := &Flow{Name: name}
	csRaw, ok := m["callstack"].(map[string]interface{})
	if !ok {
		return nil, badJsonf("flow %q missing 'callstack'", name)
	}
	cs, err := callStackFromGeneric(csRaw, root, origins)
	if err != nil {
		return nil, err
	}
	f.CallStack = cs

	if osRaw, ok := m["outputStream"].([]interface{}); ok {
		for _, o := range osRaw {
			obj, err := objectFromGeneric(o, origins)
			if err != nil {
				return nil, err
			}
			f.OutputStream = append(f.OutputStream, obj)
		}
	}
	if chRaw, ok := m["currentChoices"].([]interface{}); ok {
		for _, c := range chRaw {
			cm, ok := c.(map[string]interface{})
			if !ok {
				return nil, badJsonf("choice entry must be an object")
			}
			choice, err := choiceFromGeneric(cm, cs)
			if err != nil {
				return nil, err
			}
			f.CurrentChoices = append(f.CurrentChoices, choice)
		}
	}
	return f, nil
}

// legacyFlowFromGeneric reconstructs the implicit default flow from a
// save document predating multi-flow support, where the callstack,
// output stream and choices lived directly at the document root under
// "callstackThreads" rather than nested inside a "flows" map.
func legacyFlowFromGeneric(doc map[string]interface{}, root *Container, origins *ListDefinitionsOrigin) (*Flow, error) {
	csRaw, ok := doc["callstackThreads"].(map[string]interface{})
	if !ok {
		return nil, badJsonf("save json missing 'flows' and 'callstackThreads'")
	}
	m := map[string]interface{}{
		"callstack": csRaw,
	}
	if v, ok := doc["outputStream"]; ok {
		m["outputStream"] = v
	}
	if v, ok := doc["currentChoices"]; ok {
		m["currentChoices"] = v
	}
	return flowFromGeneric(DefaultFlowName, m, root, origins)
}

func callStackToGeneric(cs *CallStack) interface{} {
	threads := make([]interface{}, len(cs.Threads()))
	for i, t := range cs.Threads() {
		threads[i] = threadToGeneric(t)
	}
	return map[string]interface{}{
		"threads": threads,
		"threadCounter": cs.ThreadCounter(),
	}
}

func callStackFromGeneric(m map[string]interface{}, root *Container, origins *ListDefinitionsOrigin) (*CallStack, error) {
	cs := NewCallStack(root)
	threadsRaw, ok := m["threads"].([]interface{})
	if !ok {
		return nil, badJsonf("callstack missing 'threads'")
	}
	var threads []*Thread
	for _, tr := range threadsRaw {
		tm, ok := tr.(map[string]interface{})
		if !ok {
			return nil, badJsonf("callstack thread must be an object")
		}
		t, err := threadFromGeneric(tm, root, origins)
		if err != nil {
			return nil, err
		}
		threads = append(threads, t)
	}
	cs.SetThreads(threads, jsonInt(m, "threadCounter", 0))
	return cs, nil
}

func threadToGeneric(t *Thread) interface{} {
	elems := make([]interface{}, len(t.Elements))
	for i, e := range t.Elements {
		elems[i] = elementToGeneric(e)
	}
	return map[string]interface{}{
		"callstack": elems,
		"threadIndex": t.ThreadIndex,
		"previousContentObject": pointerPathStringOrNil(t.PreviousPointer),
	}
}

func threadFromGeneric(m map[string]interface{}, root *Container, origins *ListDefinitionsOrigin) (*Thread, error) {
	t := newThread()
	t.ThreadIndex = jsonInt(m, "threadIndex", 0)
	if pc, ok := m["previousContentObject"].(string); ok {
		t.PreviousPointer = pointerFromPathString(root, pc)
	}
	elemsRaw, ok := m["callstack"].([]interface{})
	if !ok {
		return nil, badJsonf("thread missing 'callstack'")
	}
	for _, er := range elemsRaw {
		em, ok := er.(map[string]interface{})
		if !ok {
			return nil, badJsonf("callstack element must be an object")
		}
		el, err := elementFromGeneric(em, root, origins)
		if err != nil {
			return nil, err
		}
		t.Elements = append(t.Elements, el)
	}
	return t, nil
}

func elementToGeneric(e *Element) interface{} {
	temp := make(map[string]interface{}, len(e.Temporaries))
	for name, v := range e.Temporaries {
		temp[name] = valueToGeneric(v)
	}
	return map[string]interface{}{
		"cPath": pointerPathStringOrNil(e.CurrentPointer),
		"exp": e.InExpressionEvaluation,
		"type": int(e.PushPopType),
		"temp": temp,
		"evalHeight": e.EvaluationStackHeightWhenPushed,
		"funcStart": e.FunctionStartInOutputStream,
	}
}

func elementFromGeneric(m map[string]interface{}, root *Container, origins *ListDefinitionsOrigin) (*Element, error) {
	el := &Element{Temporaries: make(map[string]*Value)}
	el.CurrentPointer = pointerFromPathString(root, stringOrEmpty(m["cPath"]))
	el.InExpressionEvaluation = jsonBool(m, "exp")
	el.PushPopType = PushPopType(jsonInt(m, "type", 0))
	if tempRaw, ok := m["temp"].(map[string]interface{}); ok {
		for name, v := range tempRaw {
			obj, err := objectFromGeneric(v, origins)
			if err != nil {
				return nil, err
			}
			val, ok := obj.(*Value)
			if !ok {
				return nil, badJsonf("temporary variable %q must be a value", name)
			}
			el.Temporaries[name] = val
		}
	}
	el.EvaluationStackHeightWhenPushed = jsonInt(m, "evalHeight", 0)
	el.FunctionStartInOutputStream = jsonInt(m, "funcStart", 0)
	return el, nil
}

func choiceToGeneric(c *Choice) interface{} {
	tags := make([]interface{}, len(c.Tags))
	for i, t := range c.Tags {
		tags[i] = t
	}
	return map[string]interface{}{
		"text": c.Text,
		"tags": tags,
		"index": c.Index,
		"sourcePath": c.SourcePath,
		"targetPath": c.PathStringOnChoice(),
		"invisibleDefault": c.IsInvisibleDefault,
		"originalThreadIndex": c.OriginalThreadIndex,
	}
}

func choiceFromGeneric(m map[string]interface{}, cs *CallStack) (*Choice, error) {
	c := &Choice{}
	c.Text, _ = m["text"].(string)
	if tagsRaw, ok := m["tags"].([]interface{}); ok {
		for _, t := range tagsRaw {
			if s, ok := t.(string); ok {
				c.Tags = append(c.Tags, s)
			}
		}
	}
	c.Index = jsonInt(m, "index", 0)
	c.SourcePath, _ = m["sourcePath"].(string)
	if tp, ok := m["targetPath"].(string); ok {
		c.TargetPath = NewPath(tp)
	}
	c.IsInvisibleDefault = jsonBool(m, "invisibleDefault")
	c.OriginalThreadIndex = jsonInt(m, "originalThreadIndex", 0)
	for _, t := range cs.Threads() {
		if t.ThreadIndex == c.OriginalThreadIndex {
			c.ThreadAtGeneration = t
			break
		}
	}
	return c, nil
}

func variablesStateToGeneric(vs *VariablesState) interface{} {
	out := make(map[string]interface{}, len(vs.globals))
	for name, v := range vs.globals {
		out[name] = valueToGeneric(v)
	}
	return out
}

func int32MapToGeneric(m map[string]int32) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func int32MapFromGeneric(v interface{}) map[string]int32 {
	out := map[string]int32{}
	m, ok := v.(map[string]interface{})
	if !ok {
		return out
	}
	for k, val := range m {
		if n, ok := val.(json.Number); ok {
			i, _ := n.Int64()
			out[k] = int32(i)
		}
	}
	return out
}

func jsonInt64(m map[string]interface{}, key string, def int64) int64 {
	v, ok := m[key]
	if !ok {
		return def
	}
	n, ok := v.(json.Number)
	if !ok {
		return def
	}
	i, _ := n.Int64()
	return i
}

func stringOrEmpty(v interface{}) string {
	s, _ := v.(string)
	return s
}

// pointerPathStringOrNil renders a Pointer the same way Pointer.Path does
// (container path plus trailing index component), so it round-trips
// through pointerFromPathString.
func pointerPathStringOrNil(p Pointer) interface{} {
	if p.IsNull() {
		return nil
	}
	return p.Path().String()
}

// pointerFromPathString is the inverse of Pointer.Path: it resolves every
// component but the last against root to find the parent container, then
// applies the last component directly (numeric index, or a named
// container addressed by name) rather than descending further, so the
// result names the same (container, index) pair rather than the object
// found there.
func pointerFromPathString(root *Container, s string) Pointer {
	if s == "" {
		return NullPointer
	}
	p := NewPath(s)
	if len(p.Components) == 0 {
		return startOf(root)
	}
	last, _ := p.LastComponent()
	if last.IsName {
		result := resolvePathFrom(root, p)
		if c, ok := result.Obj.(*Container); ok {
			return startOf(c)
		}
		return NullPointer
	}
	parentPath := newPathFromComponents(p.Components[:len(p.Components)-1], false)
	parentResult := resolvePathFrom(root, parentPath)
	parentContainer, ok := parentResult.Obj.(*Container)
	if !ok {
		return NullPointer
	}
	return Pointer{Container: parentContainer, Index: last.Index}
}
