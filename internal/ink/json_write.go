package ink

import "encoding/json"

// WriteStoryJSON serializes a content tree and its list definitions back
// into the compiled-story JSON shape ReadStoryFromJSON understands.
func WriteStoryJSON(root *Container, origins *ListDefinitionsOrigin) ([]byte, error) {
	doc := map[string]interface{}{
		"inkVersion": InkVersionCurrent,
		"root":       containerToGeneric(root),
	}
	if origins != nil {
		ld := map[string]interface{}{}
		for name, def := range origins.defs {
			items := map[string]interface{}{}
			for item, val := range def.Items {
				items[item] = val
			}
			ld[name] = items
		}
		if len(ld) > 0 {
			doc["listDefs"] = ld
		}
	}
	return json.Marshal(doc)
}

func containerToGeneric(c *Container) interface{} {
	arr := make([]interface{}, 0, len(c.Content())+1)
	for _, item := range c.Content() {
		arr = append(arr, objectToGeneric(item))
	}

	trailer := map[string]interface{}{}
	hasTrailer := false
	if c.Flags() != 0 {
		trailer["#f"] = int(c.Flags())
		hasTrailer = true
	}
	if c.Name() != "" {
		trailer["#n"] = c.Name()
		hasTrailer = true
	}
	for name, nc := range c.NamedContent() {
		trailer[name] = objectToGeneric(nc)
		hasTrailer = true
	}
	if hasTrailer {
		arr = append(arr, trailer)
	} else {
		arr = append(arr, nil)
	}
	return arr
}

func objectToGeneric(o Object) interface{} {
	switch v := o.(type) {
	case *Container:
		return containerToGeneric(v)
	case *Glue:
		return "<>"
	case *Void:
		return "void"
	case *Tag:
		return map[string]interface{}{"#": v.Text}
	case *ControlCommand:
		return commandNames[v.Command]
	case *NativeFunctionCall:
		if v.Op == OpIntersect {
			return "L^"
		}
		return nativeOpNames[v.Op]
	case *Divert:
		return divertToGeneric(v)
	case *ChoicePoint:
		return choicePointToGeneric(v)
	case *VariableReference:
		return variableReferenceToGeneric(v)
	case *VariableAssignment:
		return variableAssignmentToGeneric(v)
	case *Value:
		return valueToGeneric(v)
	}
	return nil
}

func valueToGeneric(v *Value) interface{} {
	switch v.Kind {
	case KindInt:
		return v.IntVal()
	case KindFloat:
		return v.FloatVal()
	case KindString:
		s := v.StrVal()
		if s == "\n" {
			return s
		}
		return "^" + s
	case KindDivertTarget:
		return map[string]interface{}{"^->": v.DivertTarget().String()}
	case KindVariablePointer:
		m := map[string]interface{}{"^var": v.VarPointerName()}
		if v.VarPointerContextIndex() >= 0 {
			m["ci"] = v.VarPointerContextIndex()
		}
		return m
	case KindList:
		return listValueToGeneric(v.List())
	case KindBool:
		return v.BoolVal()
	}
	return nil
}

func listValueToGeneric(l InkList) interface{} {
	itemsMap := map[string]interface{}{}
	for item, val := range l.items {
		key := item.ItemName
		if item.OriginName != "" {
			key = item.OriginName + "." + item.ItemName
		}
		itemsMap[key] = val
	}
	m := map[string]interface{}{"list": itemsMap}
	if names := l.OriginNames(); len(names) > 0 {
		originsArr := make([]interface{}, len(names))
		for i, n := range names {
			originsArr[i] = n
		}
		m["origins"] = originsArr
	}
	return m
}

func divertToGeneric(d *Divert) interface{} {
	m := map[string]interface{}{}
	key := "->"
	if d.IsExternal {
		key = "x()"
		m["exArgs"] = d.ExternalArgs
	} else if d.PushesToStack {
		if d.StackPushType == PushPopFunction {
			key = "f()"
		} else {
			key = "->t->"
		}
	}
	if d.HasVariableTarget() {
		m[key] = d.VariableDivertName
		m["var"] = true
	} else {
		m[key] = d.TargetPathString()
	}
	if d.IsConditional {
		m["c"] = true
	}
	return m
}

func choicePointToGeneric(cp *ChoicePoint) interface{} {
	return map[string]interface{}{
		"*":   cp.ChoiceTargetPath().String(),
		"flg": int(cp.flags),
	}
}

func variableReferenceToGeneric(v *VariableReference) interface{} {
	if v.PathForCount != nil {
		return map[string]interface{}{"CNT?": v.PathForCount.String()}
	}
	return map[string]interface{}{"VAR?": v.Name}
}

func variableAssignmentToGeneric(v *VariableAssignment) interface{} {
	key := "VAR="
	if !v.IsGlobal {
		key = "temp="
	}
	m := map[string]interface{}{key: v.Name}
	if !v.IsNewDeclaration {
		m["re"] = true
	}
	return m
}
