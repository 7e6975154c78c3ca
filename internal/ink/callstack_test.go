package ink

import "testing"

func newTestCallStack() *CallStack {
	root := NewContainer()
	root.AddContent(StringValue("hello"))
	return NewCallStack(root)
}

func TestCallStackResetInvariant(t *testing.T) {
	cs := newTestCallStack()
	if cs.ThreadCount() != 1 {
		t.Fatalf("fresh call stack should have exactly one thread, got %d", cs.ThreadCount())
	}
	if cs.Depth() != 1 {
		t.Fatalf("fresh call stack's current thread should have exactly one element, got %d", cs.Depth())
	}
	if cs.CanPop() {
		t.Fatalf("the base frame should never be poppable")
	}
}

func TestCallStackPushPop(t *testing.T) {
	cs := newTestCallStack()
	cs.Push(PushPopFunction, 0, 0)
	if cs.Depth() != 2 {
		t.Fatalf("after one push, depth should be 2, got %d", cs.Depth())
	}
	if !cs.CanPopType(PushPopFunction) {
		t.Fatalf("top frame is a Function frame, CanPopType(Function) should be true")
	}
	if cs.CanPopType(PushPopTunnel) {
		t.Fatalf("top frame is a Function frame, CanPopType(Tunnel) should be false")
	}
	if err := cs.Pop(PushPopFunction); err != nil {
		t.Fatalf("Pop(Function): %v", err)
	}
	if cs.Depth() != 1 {
		t.Fatalf("after popping back, depth should be 1, got %d", cs.Depth())
	}
	if err := cs.Pop(pushPopNone); err == nil {
		t.Fatalf("popping the base frame should fail, the invariant requires at least one element")
	}
}

func TestCallStackPopMismatchedKindFails(t *testing.T) {
	cs := newTestCallStack()
	cs.Push(PushPopTunnel, 0, 0)
	if err := cs.Pop(PushPopFunction); err == nil {
		t.Fatalf("popping a Tunnel frame as if it were a Function frame should fail")
	}
}

func TestCallStackThreadForkAndPop(t *testing.T) {
	cs := newTestCallStack()
	if cs.CanPopThread() {
		t.Fatalf("a single-thread call stack should not be thread-poppable")
	}
	cs.PushThread()
	if cs.ThreadCount() != 2 {
		t.Fatalf("after PushThread, thread count should be 2, got %d", cs.ThreadCount())
	}
	if !cs.CanPopThread() {
		t.Fatalf("with two threads and a non-FunctionEvaluationFromGame top frame, CanPopThread should be true")
	}
	if err := cs.PopThread(); err != nil {
		t.Fatalf("PopThread: %v", err)
	}
	if cs.ThreadCount() != 1 {
		t.Fatalf("after PopThread, thread count should be back to 1, got %d", cs.ThreadCount())
	}
}

func TestCallStackCanPopThreadGuardsFunctionEvaluationFromGame(t *testing.T) {
	cs := newTestCallStack()
	cs.PushThread()
	cs.Push(PushPopFunctionEvaluationFromGame, 0, 0)
	if cs.CanPopThread() {
		t.Fatalf("a FunctionEvaluationFromGame frame must never be thread-popped out from under")
	}
}

func TestCallStackTemporaryVariables(t *testing.T) {
	cs := newTestCallStack()
	if err := cs.SetTemporaryVariable("x", IntValue(1), true, -1); err != nil {
		t.Fatalf("declaring a new temporary: %v", err)
	}
	v, ok := cs.GetTemporaryVariable("x")
	if !ok || v.IntVal() != 1 {
		t.Fatalf("GetTemporaryVariable(x) = %v, %v; want 1, true", v, ok)
	}
	if err := cs.SetTemporaryVariable("x", IntValue(2), false, -1); err != nil {
		t.Fatalf("reassigning an existing temporary: %v", err)
	}
	if err := cs.SetTemporaryVariable("y", IntValue(0), false, -1); err == nil {
		t.Fatalf("reassigning an undeclared temporary should fail")
	}
}

func TestCopyCallStackIsIndependent(t *testing.T) {
	cs := newTestCallStack()
	cs.Push(PushPopFunction, 0, 0)
	cp := CopyCallStack(cs)

	if err := cp.Pop(PushPopFunction); err != nil {
		t.Fatalf("Pop on the copy: %v", err)
	}
	if cs.Depth() != 2 {
		t.Fatalf("popping the copy should not affect the original, original depth = %d", cs.Depth())
	}
	if cp.Depth() != 1 {
		t.Fatalf("copy depth after pop = %d, want 1", cp.Depth())
	}
}
