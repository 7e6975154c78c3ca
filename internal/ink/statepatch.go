package ink

// StatePatch is the overlay applied during speculative newline-lookahead
//: a provisional set of global-variable writes, visit-count
// deltas, and turn-index deltas that are either committed onto the real
// StoryState or discarded wholesale, without ever touching the underlying
// maps directly.
type StatePatch struct {
	Globals map[string]*Value
	ChangedVars map[string]bool
	VisitCounts map[string]int32
	TurnIndices map[string]int32
}

func NewStatePatch(toCopy *StatePatch) *StatePatch {
	p := &StatePatch{
		Globals: make(map[string]*Value),
		ChangedVars: make(map[string]bool),
		VisitCounts: make(map[string]int32),
		TurnIndices: make(map[string]int32),
	}
	if toCopy == nil {
		return p
	}
	for k, v := range toCopy.Globals {
		p.Globals[k] = v
	}
	for k := range toCopy.ChangedVars {
		p.ChangedVars[k] = true
	}
	for k, v := range toCopy.VisitCounts {
		p.VisitCounts[k] = v
	}
	for k, v := range toCopy.TurnIndices {
		p.TurnIndices[k] = v
	}
	return p
}

func (p *StatePatch) Global(name string) (*Value, bool) {
	v, ok := p.Globals[name]
	return v, ok
}

func (p *StatePatch) SetGlobal(name string, v *Value) {
	p.Globals[name] = v
}

func (p *StatePatch) AddChangedVariable(name string) {
	p.ChangedVars[name] = true
}

func (p *StatePatch) VisitCount(containerPath string) (int32, bool) {
	v, ok := p.VisitCounts[containerPath]
	return v, ok
}

func (p *StatePatch) SetVisitCount(containerPath string, count int32) {
	p.VisitCounts[containerPath] = count
}

func (p *StatePatch) TurnIndex(containerPath string) (int32, bool) {
	v, ok := p.TurnIndices[containerPath]
	return v, ok
}

func (p *StatePatch) SetTurnIndex(containerPath string, idx int32) {
	p.TurnIndices[containerPath] = idx
}
