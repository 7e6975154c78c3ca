package ink

import (
	"encoding/json"
	"io"
)

// ReadStoryFromJSONStream parses a compiled story document the same way
// ReadStoryFromJSON does, but walks the input with a token-by-token
// json.Decoder instead of unmarshalling the whole document into a
// generic tree first. Only the nested content arrays — the part of a
// large compiled story that actually dominates memory use — are built
// incrementally, one array element at a time; the small fixed-shape
// leaf objects (diverts, variable references, list values and the
// like) are decoded the same way the eager reader decodes them and
// handed to the same mapToObject. Useful for a host with a small heap
// loading a large compiled story.
//
// A list value decoded this way carries its origin names but not
// resolved ListDefinition pointers, since "root" always precedes
// "listDefs" in the compiled format and the definitions aren't known
// yet when a list literal inside root is reached.
func ReadStoryFromJSONStream(r io.Reader) (*Container, *ListDefinitionsOrigin, int, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	if err := expectStreamDelim(dec, '{'); err != nil {
		return nil, nil, 0, err
	}

	key, err := readStreamObjKey(dec)
	if err != nil {
		return nil, nil, 0, err
	}
	if key != "inkVersion" {
		return nil, nil, 0, badJsonf("ink version number not found. Are you sure it's a valid .ink.json file?")
	}
	version, err := readStreamInt(dec)
	if err != nil {
		return nil, nil, 0, err
	}
	if version < InkVersionMinimumCompatible || version > InkVersionCurrent {
		return nil, nil, 0, badJsonf("story ink version %d is not compatible with this engine (supports %d-%d)", version, InkVersionMinimumCompatible, InkVersionCurrent)
	}

	key, err = readStreamObjKey(dec)
	if err != nil {
		return nil, nil, 0, err
	}
	if key != "root" {
		return nil, nil, 0, badJsonf("root node for ink not found. Are you sure it's a valid .ink.json file?")
	}
	origins := NewListDefinitionsOrigin()
	if err := expectStreamDelim(dec, '['); err != nil {
		return nil, nil, 0, err
	}
	root, err := readStreamContainerBody(dec, origins)
	if err != nil {
		return nil, nil, 0, err
	}

	key, err = readStreamObjKey(dec)
	if err != nil {
		return nil, nil, 0, err
	}
	if key != "listDefs" {
		return nil, nil, 0, badJsonf("list definitions node for ink not found. Are you sure it's a valid .ink.json file?")
	}
	var listDefsRaw map[string]interface{}
	if err := dec.Decode(&listDefsRaw); err != nil {
		return nil, nil, 0, badJsonf("invalid story json: %v", err)
	}
	if err := addListDefsGeneric(listDefsRaw, origins); err != nil {
		return nil, nil, 0, err
	}

	if err := expectStreamDelim(dec, '}'); err != nil {
		return nil, nil, 0, err
	}
	return root, origins, version, nil
}

func addListDefsGeneric(ldMap map[string]interface{}, origins *ListDefinitionsOrigin) error {
	for name, itemsRaw := range ldMap {
		items := map[string]int32{}
		itemsMap, ok := itemsRaw.(map[string]interface{})
		if !ok {
			return badJsonf("list definition %q must be an object", name)
		}
		for itemName, val := range itemsMap {
			n, ok := val.(json.Number)
			if !ok {
				return badJsonf("list item %q.%q must be a number", name, itemName)
			}
			i, _ := n.Int64()
			items[itemName] = int32(i)
		}
		origins.Add(&ListDefinition{Name: name, Items: items})
	}
	return nil
}

func expectStreamDelim(dec *json.Decoder, d json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return badJsonf("invalid story json: %v", err)
	}
	got, ok := tok.(json.Delim)
	if !ok || got != d {
		return badJsonf("invalid story json: expected %q, got %v", d, tok)
	}
	return nil
}

func readStreamObjKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", badJsonf("invalid story json: %v", err)
	}
	s, ok := tok.(string)
	if !ok {
		return "", badJsonf("expected an object key, got %v", tok)
	}
	return s, nil
}

func readStreamInt(dec *json.Decoder) (int, error) {
	tok, err := dec.Token()
	if err != nil {
		return 0, badJsonf("invalid story json: %v", err)
	}
	n, ok := tok.(json.Number)
	if !ok {
		return 0, badJsonf("expected a number, got %v", tok)
	}
	i, err := n.Int64()
	if err != nil {
		return 0, badJsonf("invalid integer literal %q: %v", n.String(), err)
	}
	return int(i), nil
}

// readStreamObjectBody reads object key/value pairs up to and including
// the closing '}', assuming the opening '{' has already been consumed.
// Values are decoded generically since leaf objects in the compiled
// format are small and fixed-shape.
func readStreamObjectBody(dec *json.Decoder) (map[string]interface{}, error) {
	m := map[string]interface{}{}
	for dec.More() {
		key, err := readStreamObjKey(dec)
		if err != nil {
			return nil, err
		}
		var val interface{}
		if err := dec.Decode(&val); err != nil {
			return nil, badJsonf("invalid story json: %v", err)
		}
		m[key] = val
	}
	if err := expectStreamDelim(dec, '}'); err != nil {
		return nil, err
	}
	return m, nil
}

// readStreamContainerBody builds a Container from the elements of a
// content array, assuming the opening '[' has already been consumed.
// The array's final element is always a terminator slot holding the
// container's flags/name/named-only content (or null if it has none
// of those) rather than an actual content item, mirroring
// containerFromGeneric's handling of the same shape.
func readStreamContainerBody(dec *json.Decoder, origins *ListDefinitionsOrigin) (*Container, error) {
	c := NewContainer()

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, badJsonf("invalid story json: %v", err)
		}

		atEnd := !dec.More()
		// A peek at "more elements remain" is only valid once the
		// current token's value has been fully consumed, so object
		// and array values re-check it themselves after finishing.
		switch t := tok.(type) {
		case json.Delim:
			switch t {
			case '[':
				child, err := readStreamContainerBody(dec, origins)
				if err != nil {
					return nil, err
				}
				c.AddContent(child)
			case '{':
				m, err := readStreamObjectBody(dec)
				if err != nil {
					return nil, err
				}
				if !dec.More() {
					if err := applyContainerTrailer(c, m, origins); err != nil {
						return nil, err
					}
					continue
				}
				obj, err := mapToObject(m, origins)
				if err != nil {
					return nil, err
				}
				c.AddContent(obj)
			default:
				return nil, badJsonf("unexpected delimiter %q in content array", t)
			}
		case string:
			c.AddContent(stringToObject(t))
		case json.Number:
			v, err := numberToValue(t)
			if err != nil {
				return nil, err
			}
			c.AddContent(v)
		case bool:
			c.AddContent(BoolValue(t))
		case nil:
			if atEnd {
				// Terminator slot with neither flags nor name.
				continue
			}
			c.AddContent(NewVoid())
		default:
			return nil, badJsonf("unsupported content node type %T", tok)
		}
	}

	if err := expectStreamDelim(dec, ']'); err != nil {
		return nil, err
	}
	return c, nil
}
