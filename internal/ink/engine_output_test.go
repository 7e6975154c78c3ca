package ink

import "testing"

func newTestEngine() *Engine {
	root := NewContainer()
	root.AddContent(StringValue("unused"))
	return NewEngine(root, NewListDefinitionsOrigin(), 1)
}

func TestPushToOutputStreamCollapsesRepeatedNewlines(t *testing.T) {
	e := newTestEngine()
	e.pushToOutputStream(StringValue("Hello"))
	e.pushToOutputStream(StringValue("\n"))
	e.pushToOutputStream(StringValue("\n"))
	e.pushToOutputStream(StringValue("\n"))
	if got := e.CurrentText(); got != "Hello\n" {
		t.Fatalf("CurrentText() = %q, want %q", got, "Hello\n")
	}
}

func TestPushToOutputStreamAllowsWhitespaceBetweenNewlines(t *testing.T) {
	e := newTestEngine()
	e.pushToOutputStream(StringValue("Hello"))
	e.pushToOutputStream(StringValue("\n"))
	e.pushToOutputStream(StringValue("  "))
	// Inline whitespace after a newline doesn't itself count as ending
	// in a newline, so a second newline several whitespace tokens later
	// is still suppressed by looking back through it.
	e.pushToOutputStream(StringValue("\n"))
	if got := e.CurrentText(); got != "Hello\n  " {
		t.Fatalf("CurrentText() = %q, want %q", got, "Hello\n  ")
	}
}

func TestGlueSuppressesPrecedingNewline(t *testing.T) {
	e := newTestEngine()
	e.pushToOutputStream(StringValue("Hello"))
	e.pushToOutputStream(StringValue("\n"))
	e.pushToOutputStream(NewGlue())
	e.pushToOutputStream(StringValue("world"))
	if got := e.CurrentText(); got != "Helloworld" {
		t.Fatalf("CurrentText() = %q, want %q", got, "Helloworld")
	}
}

func TestNewlineAfterGlueIsStillSuppressed(t *testing.T) {
	e := newTestEngine()
	e.pushToOutputStream(NewGlue())
	if !e.outputStreamEndsInGlue() {
		t.Fatalf("output stream should end in glue right after pushing it")
	}
	e.pushToOutputStream(StringValue("\n"))
	if e.outputStreamEndsInNewline() {
		t.Fatalf("a newline immediately after glue should be suppressed, not tracked as ending in one")
	}
}
