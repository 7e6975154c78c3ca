package ink

// Pointer is a (container, index) pair addressing either a container
// itself (index < 0) or its i-th child (index >= 0). The null pointer has
// a nil container.
type Pointer struct {
	Container *Container
	Index int
}

// NullPointer is the zero value: an absent pointer.
var NullPointer = Pointer{Index: -1}

func (p Pointer) IsNull() bool { return p.Container == nil }

// Resolve returns the content object the pointer addresses: the
// container itself when Index is negative or the container has no
// content, otherwise the Index-th child.
func (p Pointer) Resolve() Object {
	if p.Container == nil {
		return nil
	}
	if p.Index < 0 {
		return p.Container
	}
	if len(p.Container.content) == 0 {
		return p.Container
	}
	if p.Index >= len(p.Container.content) {
		return nil
	}
	return p.Container.content[p.Index]
}

// Path derives this pointer's path: the container's path with the index
// appended, unless the index selects the container itself.
func (p Pointer) Path() *Path {
	if p.Container == nil {
		return nil
	}
	if p.Index < 0 {
		return p.Container.Path()
	}
	base := p.Container.Path()
	comps := append(append([]Component{}, base.Components...), newIndexComponent(p.Index))
	return newPathFromComponents(comps, base.IsRelative)
}

// startOf returns a pointer to the first content element of c, or to c
// itself if c has no content.
func startOf(c *Container) Pointer {
	return Pointer{Container: c, Index: 0}
}

func pointerToContainerItself(c *Container) Pointer {
	return Pointer{Container: c, Index: -1}
}

// searchResult is the outcome of resolving a Path from some base Object.
// Approximate is set when the exact target couldn't be found and an
// ancestor container was returned instead — used by tolerant save-load
// path resolution when content has shifted between versions.
type searchResult struct {
	Obj Object
	Approximate bool
}

func (r searchResult) correctObj() Object {
	if r.Approximate {
		return nil
	}
	return r.Obj
}

func (r searchResult) container() *Container {
	if c, ok := r.Obj.(*Container); ok {
		return c
	}
	return nil
}

func (r searchResult) pointer() Pointer {
	if c, ok := r.Obj.(*Container); ok {
		return startOf(c)
	}
	if r.Obj == nil {
		return NullPointer
	}
	parent := r.Obj.Parent()
	if parent == nil {
		return NullPointer
	}
	idx, ok := parent.indexOf(r.Obj)
	if !ok {
		return NullPointer
	}
	return Pointer{Container: parent, Index: idx}
}
