package ink

import (
	"sort"
	"strings"
	"testing"
)

// These fixtures are adapted from the reference implementation's own
// json_read_stream parser tests, so the streaming reader is exercised
// against inputs known to cover containers, choices, named content and
// conditional diverts.
const fixtureSimple = `{"inkVersion":21,"root":[["^Line.","\n",["done",{"#n":"g-0"}],null],"done",null],"listDefs":{}}`

const fixtureChoice = `{"inkVersion":21,"root":[["^Hello world!","\n","ev","str","^Hello back!","/str","/ev",{"*":"0.c-0","flg":20},{"c-0":["\n","done",{"->":"0.g-0"},{"#f":5}],"g-0":["done",null]}],"done",null],"listDefs":{}}`

const fixtureIfFalse = `{"inkVersion":21,"root":[["ev",{"VAR?":"x"},0,">","/ev",[{"->":".^.b","c":true},{"b":["\n","ev",{"VAR?":"x"},1,"-","/ev",{"VAR=":"y","re":true},{"->":"0.6"},null]}],"nop","\n","^The value is ","ev",{"VAR?":"y"},"out","/ev","^. ","end","\n",["done",{"#n":"g-0"}],null],"done",{"global decl":["ev",0,{"VAR=":"x"},3,{"VAR=":"y"},"/ev","end",null]}],"listDefs":{}}`

func parseBoth(t *testing.T, doc string) (*Container, *Container) {
	t.Helper()
	eager, _, _, err := ReadStoryFromJSON([]byte(doc))
	if err != nil {
		t.Fatalf("ReadStoryFromJSON: %v", err)
	}
	streamed, _, _, err := ReadStoryFromJSONStream(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ReadStoryFromJSONStream: %v", err)
	}
	return eager, streamed
}

func TestJSONStreamReaderMatchesEagerReader(t *testing.T) {
	for name, doc := range map[string]string{
		"simple":  fixtureSimple,
		"choice":  fixtureChoice,
		"ifFalse": fixtureIfFalse,
	} {
		t.Run(name, func(t *testing.T) {
			eager, streamed := parseBoth(t, doc)
			if diff := diffContainers(eager, streamed); diff != "" {
				t.Fatalf("stream reader disagrees with eager reader: %s", diff)
			}
		})
	}
}

func TestJSONStreamReaderRejectsIncompatibleVersion(t *testing.T) {
	doc := `{"inkVersion":999999,"root":[["^hi",null],"done",null],"listDefs":{}}`
	if _, _, _, err := ReadStoryFromJSONStream(strings.NewReader(doc)); err == nil {
		t.Fatalf("an incompatible ink version should be rejected")
	}
}

// diffContainers performs a structural comparison of two container trees
// built by independent readers, returning a description of the first
// difference found or "" if they match. Named-content maps are compared
// by sorted key since Go's map iteration order carries no meaning here.
func diffContainers(a, b *Container) string {
	if a.name != b.name {
		return "container name " + a.name + " != " + b.name
	}
	if a.flags != b.flags {
		return "container flags differ"
	}
	if len(a.content) != len(b.content) {
		return "content length differs"
	}
	for i := range a.content {
		if diff := diffObjects(a.content[i], b.content[i]); diff != "" {
			return diff
		}
	}
	aKeys := sortedKeys(a.named)
	bKeys := sortedKeys(b.named)
	if strings.Join(aKeys, ",") != strings.Join(bKeys, ",") {
		return "named content keys differ"
	}
	for _, k := range aKeys {
		ac, aok := a.named[k].(*Container)
		bc, bok := b.named[k].(*Container)
		if aok != bok {
			return "named content " + k + " type mismatch"
		}
		if aok {
			if diff := diffContainers(ac, bc); diff != "" {
				return "named " + k + ": " + diff
			}
		}
	}
	return ""
}

func sortedKeys(m map[string]Object) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func diffObjects(a, b Object) string {
	if a.Type() != b.Type() {
		return "type mismatch: " + string(a.Type()) + " vs " + string(b.Type())
	}
	switch av := a.(type) {
	case *Container:
		return diffContainers(av, b.(*Container))
	case *Divert:
		bv := b.(*Divert)
		if av.PushesToStack != bv.PushesToStack || av.StackPushType != bv.StackPushType ||
			av.IsExternal != bv.IsExternal || av.IsConditional != bv.IsConditional ||
			av.describeTarget() != bv.describeTarget() {
			return "divert mismatch: " + av.String() + " vs " + bv.String()
		}
	case *ChoicePoint:
		bv := b.(*ChoicePoint)
		if av.flags != bv.flags || av.pathOnChoice.String() != bv.pathOnChoice.String() {
			return "choice point mismatch"
		}
	case *ControlCommand:
		bv := b.(*ControlCommand)
		if av.Command != bv.Command {
			return "control command mismatch"
		}
	case *NativeFunctionCall:
		bv := b.(*NativeFunctionCall)
		if av.Op != bv.Op {
			return "native function mismatch"
		}
	case *Value:
		bv := b.(*Value)
		if !av.Equals(bv) {
			return "value mismatch: " + av.String() + " vs " + bv.String()
		}
	case *VariableReference:
		bv := b.(*VariableReference)
		if av.String() != bv.String() {
			return "variable reference mismatch"
		}
	case *VariableAssignment:
		bv := b.(*VariableAssignment)
		if av.String() != bv.String() {
			return "variable assignment mismatch"
		}
	case *Tag:
		bv := b.(*Tag)
		if av.Text != bv.Text {
			return "tag mismatch"
		}
	}
	return ""
}
