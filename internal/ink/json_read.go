package ink

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ReadStoryFromJSON parses a compiled story document: the
// top-level inkVersion/root/listDefs object. Numbers are decoded with
// json.Number so integer and floating-point literals can be told apart
// by their textual form, exactly as the compiled format requires.
func ReadStoryFromJSON(data []byte) (*Container, *ListDefinitionsOrigin, int, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc map[string]interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, nil, 0, badJsonf("invalid story json: %v", err)
	}

	version := 0
	if v, ok := doc["inkVersion"]; ok {
		if n, ok := v.(json.Number); ok {
			i, _ := n.Int64()
			version = int(i)
		}
	}
	if version < InkVersionMinimumCompatible || version > InkVersionCurrent {
		return nil, nil, 0, badJsonf("story ink version %d is not compatible with this engine (supports %d-%d)", version, InkVersionMinimumCompatible, InkVersionCurrent)
	}

	origins := NewListDefinitionsOrigin()
	if ldRaw, ok := doc["listDefs"]; ok {
		ldMap, ok := ldRaw.(map[string]interface{})
		if !ok {
			return nil, nil, 0, badJsonf("listDefs must be an object")
		}
		for name, itemsRaw := range ldMap {
			items := map[string]int32{}
			itemsMap, ok := itemsRaw.(map[string]interface{})
			if !ok {
				return nil, nil, 0, badJsonf("list definition %q must be an object", name)
			}
			for itemName, val := range itemsMap {
				n, ok := val.(json.Number)
				if !ok {
					return nil, nil, 0, badJsonf("list item %q.%q must be a number", name, itemName)
				}
				i, _ := n.Int64()
				items[itemName] = int32(i)
			}
			origins.Add(&ListDefinition{Name: name, Items: items})
		}
	}

	rootRaw, ok := doc["root"]
	if !ok {
		return nil, nil, 0, badJsonf("story json missing 'root'")
	}
	root, err := containerFromGeneric(rootRaw, origins)
	if err != nil {
		return nil, nil, 0, err
	}
	return root, origins, version, nil
}

func containerFromGeneric(v interface{}, origins *ListDefinitionsOrigin) (*Container, error) {
	arr, ok := v.([]interface{})
	if !ok {
		return nil, badJsonf("expected a container array, got %T", v)
	}
	c := NewContainer()

	// The final array element is always a terminator slot holding the
	// container's flags/name/named-only content, or null if it has
	// none of those — it is never itself a content item, even when it
	// happens to be an object shape that content items also use.
	contentArr := arr
	if n := len(arr); n > 0 {
		contentArr = arr[:n-1]
		if m, ok := arr[n-1].(map[string]interface{}); ok {
			if err := applyContainerTrailer(c, m, origins); err != nil {
				return nil, err
			}
		}
	}

	for _, item := range contentArr {
		child, err := objectFromGeneric(item, origins)
		if err != nil {
			return nil, err
		}
		c.AddContent(child)
	}
	return c, nil
}

func applyContainerTrailer(c *Container, m map[string]interface{}, origins *ListDefinitionsOrigin) error {
	for k, v := range m {
		switch k {
		case "#f":
			n, ok := v.(json.Number)
			if !ok {
				return badJsonf("container flags (#f) must be a number")
			}
			i, _ := n.Int64()
			c.SetFlags(CountFlags(i))
		case "#n":
			s, ok := v.(string)
			if !ok {
				return badJsonf("container name (#n) must be a string")
			}
			c.SetName(s)
		default:
			child, err := objectFromGeneric(v, origins)
			if err != nil {
				return err
			}
			c.AddNamedOnly(k, child)
		}
	}
	return nil
}

func objectFromGeneric(v interface{}, origins *ListDefinitionsOrigin) (Object, error) {
	switch t := v.(type) {
	case []interface{}:
		return containerFromGeneric(t, origins)
	case string:
		return stringToObject(t), nil
	case json.Number:
		return numberToValue(t)
	case map[string]interface{}:
		return mapToObject(t, origins)
	case bool:
		return BoolValue(t), nil
	case nil:
		return NewVoid(), nil
	}
	return nil, badJsonf("unsupported content node type %T", v)
}

func stringToObject(s string) Object {
	switch s {
	case "<>":
		return NewGlue()
	case "void":
		return NewVoid()
	case "\n":
		return StringValue("\n")
	}
	if strings.HasPrefix(s, "^") {
		return StringValue(s[1:])
	}
	if cc, ok := ControlCommandFromName(s); ok {
		return cc
	}
	if nf, ok := NativeFunctionFromName(s); ok {
		return nf
	}
	return StringValue(s)
}

func numberToValue(n json.Number) (*Value, error) {
	s := n.String()
	if strings.ContainsAny(s, ".eE") {
		f, err := n.Float64()
		if err != nil {
			return nil, badJsonf("invalid float literal %q: %v", s, err)
		}
		return FloatValue(float32(f)), nil
	}
	i, err := n.Int64()
	if err != nil {
		return nil, badJsonf("invalid int literal %q: %v", s, err)
	}
	return IntValue(int32(i)), nil
}

func jsonInt(m map[string]interface{}, key string, def int) int {
	v, ok := m[key]
	if !ok {
		return def
	}
	n, ok := v.(json.Number)
	if !ok {
		return def
	}
	i, _ := n.Int64()
	return int(i)
}

func jsonBool(m map[string]interface{}, key string) bool {
	v, ok := m[key]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

func mapToObject(m map[string]interface{}, origins *ListDefinitionsOrigin) (Object, error) {
	if v, ok := m["^->"]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, badJsonf("divert target value (^->) must be a string")
		}
		return DivertTargetValue(NewPath(s)), nil
	}
	if v, ok := m["^var"]; ok {
		name, ok := v.(string)
		if !ok {
			return nil, badJsonf("variable pointer value (^var) must be a string")
		}
		return VariablePointerValue(name, jsonInt(m, "ci", -1)), nil
	}
	if v, ok := m["list"]; ok {
		return listValueFromJSON(v, m, origins)
	}
	if v, ok := m["->"]; ok {
		return divertFromJSON(m, v, pushPopNone)
	}
	if v, ok := m["->t->"]; ok {
		return divertFromJSON(m, v, PushPopTunnel)
	}
	if v, ok := m["f()"]; ok {
		return divertFromJSON(m, v, PushPopFunction)
	}
	if v, ok := m["x()"]; ok {
		return externalDivertFromJSON(m, v)
	}
	if v, ok := m["*"]; ok {
		return choicePointFromJSON(m, v)
	}
	if v, ok := m["+"]; ok {
		return choicePointFromJSON(m, v)
	}
	if v, ok := m["VAR?"]; ok {
		name, _ := v.(string)
		return NewVariableReference(name), nil
	}
	if v, ok := m["CNT?"]; ok {
		path, _ := v.(string)
		return NewReadCountVariableReference(NewPath(path)), nil
	}
	if v, ok := m["VAR="]; ok {
		name, _ := v.(string)
		return NewVariableAssignment(name, !jsonBool(m, "re"), true), nil
	}
	if v, ok := m["temp="]; ok {
		name, _ := v.(string)
		return NewVariableAssignment(name, !jsonBool(m, "re"), false), nil
	}
	if v, ok := m["#"]; ok {
		text, _ := v.(string)
		return NewTag(text), nil
	}
	return nil, badJsonf("unrecognized json object shape in content")
}

func divertFromJSON(m map[string]interface{}, target interface{}, pushType PushPopType) (*Divert, error) {
	d := NewDivert()
	if jsonBool(m, "var") {
		name, ok := target.(string)
		if !ok {
			return nil, badJsonf("variable divert target must be a string")
		}
		d.VariableDivertName = name
	} else {
		s, ok := target.(string)
		if !ok {
			return nil, badJsonf("divert target must be a string")
		}
		d.SetTargetPath(NewPath(s))
	}
	if pushType != pushPopNone {
		d.PushesToStack = true
		d.StackPushType = pushType
	}
	d.IsConditional = jsonBool(m, "c")
	return d, nil
}

func externalDivertFromJSON(m map[string]interface{}, target interface{}) (*Divert, error) {
	name, ok := target.(string)
	if !ok {
		return nil, badJsonf("external divert target must be a string")
	}
	d := NewDivert()
	d.SetTargetPath(NewPath(name))
	d.IsExternal = true
	d.ExternalArgs = jsonInt(m, "exArgs", 0)
	d.IsConditional = jsonBool(m, "c")
	return d, nil
}

func choicePointFromJSON(m map[string]interface{}, target interface{}) (*ChoicePoint, error) {
	path, ok := target.(string)
	if !ok {
		return nil, badJsonf("choice point target must be a string")
	}
	flags := ChoicePointFlag(jsonInt(m, "flg", 0))
	cp := NewChoicePoint(flags)
	cp.SetPathOnChoice(NewPath(path))
	return cp, nil
}

func listValueFromJSON(v interface{}, m map[string]interface{}, origins *ListDefinitionsOrigin) (*Value, error) {
	listMap, ok := v.(map[string]interface{})
	if !ok {
		return nil, badJsonf("list value must be an object")
	}
	items := make(map[ListItem]int32, len(listMap))
	for k, val := range listMap {
		n, ok := val.(json.Number)
		if !ok {
			return nil, badJsonf("list item %q must have a numeric value", k)
		}
		iv, _ := n.Int64()
		var item ListItem
		if parts := strings.SplitN(k, ".", 2); len(parts) == 2 {
			item = ListItem{OriginName: parts[0], ItemName: parts[1]}
		} else if found, _, ok := origins.FindItem(k); ok {
			item = found
		} else {
			item = ListItem{ItemName: k}
		}
		items[item] = int32(iv)
	}
	l := InkList{items: items}
	if originsRaw, ok := m["origins"]; ok {
		if arr, ok := originsRaw.([]interface{}); ok {
			for _, o := range arr {
				name, _ := o.(string)
				l.initialOriginNames = append(l.initialOriginNames, name)
				if def, ok := origins.Get(name); ok {
					l.origins = append(l.origins, def)
				}
			}
		}
	} else {
		seen := map[string]bool{}
		for item := range items {
			if seen[item.OriginName] {
				continue
			}
			seen[item.OriginName] = true
			if def, ok := origins.Get(item.OriginName); ok {
				l.origins = append(l.origins, def)
			}
		}
	}
	return ListValue(l), nil
}
