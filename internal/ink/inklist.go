package ink

import (
	"sort"
	"strings"
)

// ListItem is a single named entry in a list definition: an origin list
// name paired with the item's own name within that origin.
type ListItem struct {
	OriginName string
	ItemName   string
}

func (i ListItem) String() string {
	if i.OriginName == "" {
		return i.ItemName
	}
	return i.OriginName + "." + i.ItemName
}

// ListDefinition is one named list's full item->value table, as declared
// by the author and compiled into the story file's listDefs section.
type ListDefinition struct {
	Name  string
	Items map[string]int32 // item name -> value
}

func (d *ListDefinition) itemNamed(name string) (ListItem, int32, bool) {
	v, ok := d.Items[name]
	if !ok {
		return ListItem{}, 0, false
	}
	return ListItem{OriginName: d.Name, ItemName: name}, v, true
}

func (d *ListDefinition) itemWithValue(value int32) (ListItem, int32, bool) {
	for name, v := range d.Items {
		if v == value {
			return ListItem{OriginName: d.Name, ItemName: name}, v, true
		}
	}
	return ListItem{}, 0, false
}

// ListDefinitionsOrigin is the story-wide table of all named list
// definitions, built once from the story file's listDefs object.
type ListDefinitionsOrigin struct {
	defs map[string]*ListDefinition
}

func NewListDefinitionsOrigin() *ListDefinitionsOrigin {
	return &ListDefinitionsOrigin{defs: make(map[string]*ListDefinition)}
}

func (o *ListDefinitionsOrigin) Add(d *ListDefinition) { o.defs[d.Name] = d }

func (o *ListDefinitionsOrigin) Get(name string) (*ListDefinition, bool) {
	d, ok := o.defs[name]
	return d, ok
}

// FindItem locates an item by its bare name across every list definition,
// used when the compiled JSON references a list item without an explicit
// origin qualifier.
func (o *ListDefinitionsOrigin) FindItem(itemName string) (ListItem, int32, bool) {
	for _, d := range o.defs {
		if item, v, ok := d.itemNamed(itemName); ok {
			return item, v, true
		}
	}
	return ListItem{}, 0, false
}

// InkList is a typed multiset over named origins: a mapping from
// ListItem to its integer value, plus the origin definitions involved and
// the list of origin names to fall back on when the list is empty.
type InkList struct {
	items              map[ListItem]int32
	origins            []*ListDefinition
	initialOriginNames []string
}

func NewInkList() InkList {
	return InkList{items: make(map[ListItem]int32)}
}

// SingleItem builds a one-element list.
func SingleItem(item ListItem, value int32) InkList {
	l := NewInkList()
	l.items[item] = value
	return l
}

// FromSingleOrigin builds an empty list whose initial origin is the named
// list definition, used so an empty list still knows what origin(s) All/
// Inverse should draw from.
func FromSingleOrigin(originName string, origins *ListDefinitionsOrigin) (InkList, error) {
	l := NewInkList()
	l.initialOriginNames = []string{originName}
	def, ok := origins.Get(originName)
	if !ok {
		return InkList{}, invalidStateF("ink list origin could not be found when constructing new list: %s", originName)
	}
	l.origins = []*ListDefinition{def}
	return l, nil
}

func (l InkList) cloneShallow() InkList {
	cp := NewInkList()
	for k, v := range l.items {
		cp.items[k] = v
	}
	cp.origins = l.origins
	cp.initialOriginNames = l.initialOriginNames
	return cp
}

func (l InkList) IsEmpty() bool { return len(l.items) == 0 }

func (l InkList) Items() map[ListItem]int32 { return l.items }

func (l InkList) OriginNames() []string {
	if len(l.items) > 0 {
		seen := map[string]bool{}
		var names []string
		for k := range l.items {
			if !seen[k.OriginName] {
				seen[k.OriginName] = true
				names = append(names, k.OriginName)
			}
		}
		return names
	}
	return l.initialOriginNames
}

func (l InkList) orderedItems() []struct {
	Item  ListItem
	Value int32
} {
	out := make([]struct {
		Item  ListItem
		Value int32
	}, 0, len(l.items))
	for k, v := range l.items {
		out = append(out, struct {
			Item  ListItem
			Value int32
		}{k, v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value < out[j].Value
		}
		return out[i].Item.OriginName < out[j].Item.OriginName
	})
	return out
}

func (l InkList) MaxItem() (ListItem, int32, bool) {
	ordered := l.orderedItems()
	if len(ordered) == 0 {
		return ListItem{}, 0, false
	}
	last := ordered[len(ordered)-1]
	return last.Item, last.Value, true
}

func (l InkList) MinItem() (ListItem, int32, bool) {
	ordered := l.orderedItems()
	if len(ordered) == 0 {
		return ListItem{}, 0, false
	}
	first := ordered[0]
	return first.Item, first.Value, true
}

// Union, Intersect and Without preserve origin references onto the
// result.
func (l InkList) Union(o InkList) InkList {
	r := l.cloneShallow()
	for k, v := range o.items {
		r.items[k] = v
	}
	return r
}

func (l InkList) Without(o InkList) InkList {
	r := l.cloneShallow()
	for k := range o.items {
		delete(r.items, k)
	}
	return r
}

func (l InkList) Intersect(o InkList) InkList {
	r := NewInkList()
	for k, v := range l.items {
		if _, ok := o.items[k]; ok {
			r.items[k] = v
		}
	}
	r.origins = l.origins
	r.initialOriginNames = l.initialOriginNames
	return r
}

// Contains is superset: true iff every item of o is present in l. An
// empty list on either side never counts as contained, so both empty
// cases return false.
func (l InkList) Contains(o InkList) bool {
	if len(o.items) == 0 || len(l.items) == 0 {
		return false
	}
	for k := range o.items {
		if _, ok := l.items[k]; !ok {
			return false
		}
	}
	return true
}

// All returns every item from every origin definition involved with l.
func (l InkList) All() InkList {
	r := NewInkList()
	for _, def := range l.origins {
		for name, v := range def.Items {
			r.items[ListItem{OriginName: def.Name, ItemName: name}] = v
		}
	}
	return r
}

// Inverse returns all items from l's origins that are absent from l.
func (l InkList) Inverse() InkList {
	r := NewInkList()
	for _, def := range l.origins {
		for name, v := range def.Items {
			item := ListItem{OriginName: def.Name, ItemName: name}
			if _, ok := l.items[item]; !ok {
				r.items[item] = v
			}
		}
	}
	return r
}

// ListWithSubRange filters l by value within [min, max], where each
// bound may itself be given as an Int or a List (whose min/max value is
// used).
func (l InkList) ListWithSubRange(minBound, maxBound *Value) InkList {
	r := NewInkList()
	r.initialOriginNames = l.initialOriginNames
	if len(l.items) == 0 {
		return r
	}
	minValue := int32(0)
	maxValue := int32(1<<31 - 1)
	if minBound != nil {
		if minBound.Kind == KindInt {
			minValue = minBound.IntVal()
		} else if minBound.Kind == KindList && !minBound.List().IsEmpty() {
			_, v, _ := minBound.List().MinItem()
			minValue = v
		}
	}
	if maxBound != nil {
		if maxBound.Kind == KindInt {
			maxValue = maxBound.IntVal()
		} else if maxBound.Kind == KindList && !maxBound.List().IsEmpty() {
			_, v, _ := maxBound.List().MaxItem()
			maxValue = v
		}
	}
	for k, v := range l.items {
		if v >= minValue && v <= maxValue {
			r.items[k] = v
		}
	}
	return r
}

func (l InkList) MaxAsList() InkList {
	item, v, ok := l.MaxItem()
	if !ok {
		return NewInkList()
	}
	return SingleItem(item, v)
}

func (l InkList) MinAsList() InkList {
	item, v, ok := l.MinItem()
	if !ok {
		return NewInkList()
	}
	return SingleItem(item, v)
}

// GreaterThan: min(self) > max(other).
func (l InkList) GreaterThan(o InkList) bool {
	if l.IsEmpty() {
		return false
	}
	if o.IsEmpty() {
		return true
	}
	_, selfMin, _ := l.MinItem()
	_, otherMax, _ := o.MaxItem()
	return selfMin > otherMax
}

// GreaterThanOrEquals: min(self) >= min(other) && max(self) >= max(other).
func (l InkList) GreaterThanOrEquals(o InkList) bool {
	if l.IsEmpty() {
		return false
	}
	if o.IsEmpty() {
		return true
	}
	_, selfMin, _ := l.MinItem()
	_, otherMin, _ := o.MinItem()
	_, selfMax, _ := l.MaxItem()
	_, otherMax, _ := o.MaxItem()
	return selfMin >= otherMin && selfMax >= otherMax
}

func (l InkList) LessThan(o InkList) bool {
	if o.IsEmpty() {
		return false
	}
	if l.IsEmpty() {
		return true
	}
	_, selfMax, _ := l.MaxItem()
	_, otherMin, _ := o.MinItem()
	return selfMax < otherMin
}

func (l InkList) LessThanOrEquals(o InkList) bool {
	if o.IsEmpty() {
		return false
	}
	if l.IsEmpty() {
		return true
	}
	_, selfMax, _ := l.MaxItem()
	_, otherMax, _ := o.MaxItem()
	_, selfMin, _ := l.MinItem()
	_, otherMin, _ := o.MinItem()
	return selfMax <= otherMax && selfMin <= otherMin
}

// Equals is key-set equality, ignoring values, matching the reference
// implementation's PartialEq impl.
func (l InkList) Equals(o InkList) bool {
	if len(l.items) != len(o.items) {
		return false
	}
	for k := range l.items {
		if _, ok := o.items[k]; !ok {
			return false
		}
	}
	return true
}

// Increment/decrement shifts every item to the list item `by` positions
// away by value within its own origin definition (the list+int
// native-function shortcut).
func (l InkList) Increment(by int32, origins *ListDefinitionsOrigin) InkList {
	r := NewInkList()
	r.origins = l.origins
	r.initialOriginNames = l.initialOriginNames
	for k, v := range l.items {
		def, ok := origins.Get(k.OriginName)
		if !ok {
			r.items[k] = v
			continue
		}
		newItem, newVal, ok := def.itemWithValue(v + by)
		if ok {
			r.items[newItem] = newVal
		}
	}
	return r
}

func (l InkList) String() string {
	ordered := l.orderedItems()
	names := make([]string, len(ordered))
	for i, e := range ordered {
		names[i] = e.Item.ItemName
	}
	return strings.Join(names, ", ")
}
