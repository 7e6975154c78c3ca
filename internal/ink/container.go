package ink

import "strings"

// CountFlags is a bitmask of what a Container tracks about its own
// visits.
type CountFlags uint8

const (
	CountVisits        CountFlags = 1 << 0
	CountTurns         CountFlags = 1 << 1
	CountStartOnly     CountFlags = 1 << 2
)

// Container is the only composite node in the content tree: an ordered
// list of children plus a map of named-only nested containers that are
// reachable by name but do not appear in the ordered list. Every content
// object (including nested Containers) carries a parent back-reference
// to the Container that owns it; the root container transitively owns
// everything, parent links themselves are non-owning.
type Container struct {
	baseObject

	name    string
	content []Object
	named   map[string]Object // name -> named-only content (usually *Container)
	flags   CountFlags
}

func NewContainer() *Container {
	c := &Container{}
	c.bindSelf(c)
	return c
}

func (c *Container) Type() ObjectType { return ObjContainer }

func (c *Container) Name() string { return c.name }
func (c *Container) SetName(n string) { c.name = n }

func (c *Container) Flags() CountFlags { return c.flags }
func (c *Container) SetFlags(f CountFlags) { c.flags = f }

func (c *Container) VisitsShouldBeCounted() bool { return c.flags&CountVisits != 0 }
func (c *Container) TurnIndexShouldBeCounted() bool { return c.flags&CountTurns != 0 }
func (c *Container) CountingAtStartOnly() bool { return c.flags&CountStartOnly != 0 }

func (c *Container) Content() []Object { return c.content }

// AddContent appends an ordered child, adopting it (setting its parent).
func (c *Container) AddContent(o Object) {
	o.setParent(c)
	c.content = append(c.content, o)
}

// AddNamedOnly registers a nested container reachable only by name; it is
// not part of the ordered content list.
func (c *Container) AddNamedOnly(name string, o Object) {
	if c.named == nil {
		c.named = make(map[string]Object)
	}
	o.setParent(c)
	c.named[name] = o
}

func (c *Container) NamedContent() map[string]Object { return c.named }

func (c *Container) namedOnlyContainer(name string) (*Container, bool) {
	o, ok := c.named[name]
	if !ok {
		return nil, false
	}
	cc, ok := o.(*Container)
	return cc, ok
}

// indexOf returns the position of child in the ordered content list.
func (c *Container) indexOf(child Object) (int, bool) {
	for i, o := range c.content {
		if o == child {
			return i, true
		}
	}
	return 0, false
}

// ContentAtPath walks p's components from this container, same
// semantics as resolvePath but operating purely on containers (used by
// callers that already know they want a container, e.g. TurnsSince
// target resolution).
func (c *Container) ContentAtPath(p *Path) searchResult {
	return resolvePathFrom(c, p)
}

// resolvePath resolves a Path against base: absolute paths start at the
// content root, relative paths start at the nearest enclosing container
// of base.
// A numeric component selects content[i]; a named component looks up
// named_content; "^" ascends to the parent container.
func resolvePath(base Object, p *Path) searchResult {
	var start Object
	if p.IsRelative {
		if c, ok := base.(*Container); ok {
			start = c
		} else if base.Parent() != nil {
			start = base.Parent()
		} else {
			start = base
		}
	} else {
		start = contentRoot(base)
	}
	sc, ok := start.(*Container)
	if !ok {
		return searchResult{Obj: start, Approximate: true}
	}
	return resolvePathFrom(sc, p)
}

func contentRoot(o Object) Object {
	cur := o
	for cur.Parent() != nil {
		cur = cur.Parent()
	}
	return cur
}

func resolvePathFrom(start *Container, p *Path) searchResult {
	cur := Object(start)
	approximate := false
	for _, comp := range p.Components {
		curContainer, isContainer := cur.(*Container)
		if !isContainer {
			// Ran out of containers to descend into before the full path
			// was consumed: return what we have as an approximate match.
			approximate = true
			break
		}
		if comp.isParent() {
			if curContainer.Parent() == nil {
				approximate = true
				break
			}
			cur = curContainer.Parent()
			continue
		}
		if comp.IsName {
			if named, ok := curContainer.namedOnlyContainer(comp.Name); ok {
				cur = named
				continue
			}
			if obj, ok := curContainer.named[comp.Name]; ok {
				cur = obj
				continue
			}
			approximate = true
			break
		}
		if comp.Index < 0 || comp.Index >= len(curContainer.content) {
			approximate = true
			break
		}
		cur = curContainer.content[comp.Index]
	}
	return searchResult{Obj: cur, Approximate: approximate}
}

// BuildStringOfHierarchy renders a diagnostic, indented dump of the
// content tree rooted at c — used for debugging tooling, never on the
// hot execution path.
func (c *Container) BuildStringOfHierarchy() string {
	var sb strings.Builder
	dumpContainer(&sb, c, 0, -1)
	return sb.String()
}
