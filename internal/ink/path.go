package ink

import (
	"strconv"
	"strings"
)

// parentID is the literal path component name that means "go up one
// level to the enclosing container", spelled "^" in both the compiled
// JSON and ink's own path-string rendering.
const parentID = "^"

// Component is a single step of a Path: either a numeric index into a
// container's ordered content, or a named lookup into a container's
// named-only sub-containers (including the special "^" meaning parent).
type Component struct {
	Index int // valid when !IsName
	Name  string
	IsName bool
}

func newIndexComponent(i int) Component { return Component{Index: i} }
func newNameComponent(n string) Component { return Component{Name: n, IsName: true} }

func (c Component) isParent() bool { return c.IsName && c.Name == parentID }

func (c Component) Equals(o Component) bool {
	if c.IsName != o.IsName {
		return false
	}
	if c.IsName {
		return c.Name == o.Name
	}
	return c.Index == o.Index
}

func (c Component) String() string {
	if c.IsName {
		return c.Name
	}
	return strconv.Itoa(c.Index)
}

// Path addresses a node in the content tree: an ordered list of
// Components, either absolute (from the content root) or relative (from
// the nearest enclosing container, prefixed with "." in its string form).
type Path struct {
	Components []Component
	IsRelative bool

	str      string
	strValid bool
}

// NewPath parses a dot-separated path string. A leading "." marks the
// path relative; the rest of the string is split on "." into components,
// each either a non-negative integer (an index component) or a name
// (a name component, including the literal "^" meaning parent).
func NewPath(s string) *Path {
	p := &Path{}
	if s == "" {
		return p
	}
	if strings.HasPrefix(s, ".") {
		p.IsRelative = true
		s = s[1:]
	}
	for _, part := range strings.Split(s, ".") {
		if part == "" {
			continue
		}
		if n, err := strconv.Atoi(part); err == nil {
			p.Components = append(p.Components, newIndexComponent(n))
		} else {
			p.Components = append(p.Components, newNameComponent(part))
		}
	}
	return p
}

func newPathFromComponents(comps []Component, relative bool) *Path {
	return &Path{Components: comps, IsRelative: relative}
}

// Tail returns a new relative path containing every component after the
// first. Used when resolving "the rest of the path" one container deep.
func (p *Path) Tail() *Path {
	if len(p.Components) <= 1 {
		return newPathFromComponents(nil, true)
	}
	return newPathFromComponents(p.Components[1:], true)
}

func (p *Path) Head() (Component, bool) {
	if len(p.Components) == 0 {
		return Component{}, false
	}
	return p.Components[0], true
}

func (p *Path) Length() int { return len(p.Components) }

func (p *Path) LastComponent() (Component, bool) {
	if len(p.Components) == 0 {
		return Component{}, false
	}
	return p.Components[len(p.Components)-1], true
}

// Equals compares paths by component equality and relative flag.
func (p *Path) Equals(o *Path) bool {
	if o == nil {
		return false
	}
	if p.IsRelative != o.IsRelative {
		return false
	}
	if len(p.Components) != len(o.Components) {
		return false
	}
	for i := range p.Components {
		if !p.Components[i].Equals(o.Components[i]) {
			return false
		}
	}
	return true
}

func (p *Path) String() string {
	if p.strValid {
		return p.str
	}
	var sb strings.Builder
	if p.IsRelative {
		sb.WriteByte('.')
	}
	for i, c := range p.Components {
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(c.String())
	}
	p.str = sb.String()
	p.strValid = true
	return p.str
}

// pathToObject derives an absolute path by walking o's parent chain to
// the root, recording the child index (or container name, when the
// parent only reaches it via named content) at each level.
func pathToObject(o Object) *Path {
	var comps []Component
	cur := o
	for {
		parent := cur.Parent()
		if parent == nil {
			break
		}
		if idx, ok := parent.indexOf(cur); ok {
			comps = append([]Component{newIndexComponent(idx)}, comps...)
		} else {
			// Not in the parent's ordered content, so it is only
			// reachable through the parent's named content, under the
			// key the parent holds it by.
			for name, o := range parent.named {
				if o == cur {
					comps = append([]Component{newNameComponent(name)}, comps...)
					break
				}
			}
		}
		cur = parent
	}
	return newPathFromComponents(comps, false)
}
