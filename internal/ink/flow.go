package ink

// DefaultFlowName is the name of the implicit flow a freshly started
// story runs in, before any SwitchFlow call.
const DefaultFlowName = "DEFAULT_FLOW"

// Flow is one independent thread of story output and call-stack state. A
// Story may hold several Flows and switch between them; only the current
// flow advances on Continue.
type Flow struct {
	Name             string
	CallStack        *CallStack
	OutputStream     []Object
	CurrentChoices   []*Choice
}

func NewFlow(name string, root *Container) *Flow {
	return &Flow{
		Name:      name,
		CallStack: NewCallStack(root),
	}
}

func (f *Flow) copy() *Flow {
	cp := &Flow{
		Name:      f.Name,
		CallStack: CopyCallStack(f.CallStack),
	}
	cp.OutputStream = append(cp.OutputStream, f.OutputStream...)
	cp.CurrentChoices = append(cp.CurrentChoices, f.CurrentChoices...)
	return cp
}
