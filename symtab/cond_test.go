package symtab

import "testing"

func TestCondStackBasicIfElseEndif(t *testing.T) {
	var c CondStack

	if err := c.Push(true); err != nil {
		t.Fatalf("Push(true) failed: %v", err)
	}
	if c.Skipping() {
		t.Error("expected an active if block to not be skipping")
	}

	if err := c.Else(); err != nil {
		t.Fatalf("Else() failed: %v", err)
	}
	if !c.Skipping() {
		t.Error("expected else of a true if to start skipping")
	}

	if err := c.Endif(); err != nil {
		t.Fatalf("Endif() failed: %v", err)
	}
	if c.Depth() != 0 {
		t.Errorf("Depth() = %d, want 0", c.Depth())
	}
}

func TestCondStackNestedSkipIsSticky(t *testing.T) {
	var c CondStack

	if err := c.Push(false); err != nil {
		t.Fatalf("Push(false) failed: %v", err)
	}
	// A nested if inside a skipping block is forced inactive regardless
	// of its own (unevaluated) condition.
	if err := c.Push(false); err != nil {
		t.Fatalf("nested Push failed: %v", err)
	}
	if err := c.Else(); err != nil {
		t.Fatalf("nested Else failed: %v", err)
	}
	if !c.Skipping() {
		t.Error("expected skipping to remain true while the outer if is false")
	}
}

func TestCondStackElseWithoutIf(t *testing.T) {
	var c CondStack
	if err := c.Else(); err != ErrElseWithoutIf {
		t.Errorf("Else() on empty stack = %v, want ErrElseWithoutIf", err)
	}
}

func TestCondStackDoubleElse(t *testing.T) {
	var c CondStack
	if err := c.Push(true); err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	if err := c.Else(); err != nil {
		t.Fatalf("first Else() failed: %v", err)
	}
	if err := c.Else(); err != ErrElseWithoutIf {
		t.Errorf("second Else() = %v, want ErrElseWithoutIf", err)
	}
}

func TestCondStackEndifWithoutIf(t *testing.T) {
	var c CondStack
	if err := c.Endif(); err != ErrEndifWithoutIf {
		t.Errorf("Endif() on empty stack = %v, want ErrEndifWithoutIf", err)
	}
}

func TestCondStackOverflow(t *testing.T) {
	var c CondStack
	for i := 0; i < MaxIfDepth; i++ {
		if err := c.Push(true); err != nil {
			t.Fatalf("Push #%d failed: %v", i, err)
		}
	}
	if err := c.Push(true); err != ErrIfStackOverflow {
		t.Errorf("Push beyond MaxIfDepth = %v, want ErrIfStackOverflow", err)
	}
}
