package resource

import (
	"testing"
)

type testObserver struct {
	events []Event
}

func (o *testObserver) OnResourceEvent(e Event) {
	o.events = append(o.events, e)
}

type dropCounter struct {
	drops int
}

func (d *dropCounter) Drop() { d.drops++ }

func TestTable_Basic(t *testing.T) {
	table := NewTable[string]()

	h := table.Insert("test")
	if h == 0 {
		t.Fatal("Expected non-zero handle")
	}

	val, ok := table.Get(h)
	if !ok {
		t.Fatal("Get failed")
	}
	if val != "test" {
		t.Fatalf("Expected 'test', got %v", val)
	}

	val, ok = table.Remove(h)
	if !ok {
		t.Fatal("Remove failed")
	}
	if val != "test" {
		t.Fatalf("Expected 'test', got %v", val)
	}

	if table.Len() != 0 {
		t.Fatal("Expected Len() == 0 after Remove")
	}
}

func TestTable_ZeroHandleInvalid(t *testing.T) {
	table := NewTable[int]()
	table.Insert(1)

	if _, ok := table.Get(0); ok {
		t.Error("Get(0) should fail")
	}
	if _, ok := table.Remove(0); ok {
		t.Error("Remove(0) should fail")
	}
	if table.Len() != 1 {
		t.Errorf("Len() = %d, want 1", table.Len())
	}
}

func TestTable_DoubleRemove(t *testing.T) {
	table := NewTable[int]()
	h := table.Insert(42)

	if _, ok := table.Remove(h); !ok {
		t.Fatal("first Remove failed")
	}
	if _, ok := table.Remove(h); ok {
		t.Fatal("second Remove should fail")
	}
	if _, ok := table.Get(h); ok {
		t.Fatal("Get after Remove should fail")
	}
	if _, ok := table.Get(Handle(99)); ok {
		t.Fatal("Get of never issued handle should fail")
	}
}

func TestTable_HandleReuse(t *testing.T) {
	table := NewTable[string]()
	a := table.Insert("a")
	b := table.Insert("b")
	if a == b {
		t.Fatal("live handles must be distinct")
	}

	table.Remove(a)
	c := table.Insert("c")
	if c != a {
		t.Fatalf("expected freed handle %d to be reused, got %d", a, c)
	}

	v, _ := table.Get(c)
	if v != "c" {
		t.Fatalf("reused handle returned %q", v)
	}
}

func TestTable_Observer(t *testing.T) {
	table := NewTable[string]()
	obs := &testObserver{}
	table.Subscribe(obs)

	h := table.Insert("test")
	if len(obs.events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(obs.events))
	}
	if obs.events[0].Type != EventCreated {
		t.Fatal("Expected EventCreated")
	}
	if obs.events[0].Handle != h {
		t.Fatal("Wrong handle in event")
	}

	table.Remove(h)
	if len(obs.events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(obs.events))
	}
	if obs.events[1].Type != EventDropped {
		t.Fatal("Expected EventDropped")
	}

	// A failed remove does not notify.
	table.Remove(h)
	if len(obs.events) != 2 {
		t.Fatalf("Expected no event for failed Remove, got %d", len(obs.events))
	}
}

func TestTable_ObserverFunc(t *testing.T) {
	table := NewTable[int]()
	var seen []string
	table.Subscribe(ObserverFunc(func(e Event) {
		seen = append(seen, e.Type.String())
	}))

	table.Remove(table.Insert(1))

	if len(seen) != 2 || seen[0] != "created" || seen[1] != "dropped" {
		t.Fatalf("unexpected events %v", seen)
	}
}

func TestTable_DropperCalled(t *testing.T) {
	table := NewTable[*dropCounter]()
	d := &dropCounter{}
	h := table.Insert(d)

	table.Remove(h)
	if d.drops != 1 {
		t.Fatalf("Drop called %d times, want 1", d.drops)
	}

	table.Remove(h)
	if d.drops != 1 {
		t.Fatal("Drop must not run for an already removed handle")
	}
}

func TestTable_Each(t *testing.T) {
	table := NewTable[int]()
	table.Insert(1)
	mid := table.Insert(2)
	table.Insert(3)
	table.Remove(mid)

	sum := 0
	table.Each(func(_ Handle, v int) bool {
		sum += v
		return true
	})
	if sum != 4 {
		t.Fatalf("Each visited sum %d, want 4", sum)
	}

	visits := 0
	table.Each(func(Handle, int) bool {
		visits++
		return false
	})
	if visits != 1 {
		t.Fatalf("Each should stop early, visited %d", visits)
	}
}

func TestTable_Close(t *testing.T) {
	table := NewTable[*dropCounter]()
	a, b := &dropCounter{}, &dropCounter{}
	table.Insert(a)
	table.Insert(b)

	if err := table.Close(); err != nil {
		t.Fatal(err)
	}
	if a.drops != 1 || b.drops != 1 {
		t.Fatal("Close must drop live values")
	}
	if table.Len() != 0 {
		t.Fatalf("Len() = %d after Close", table.Len())
	}
	if h := table.Insert(&dropCounter{}); h != 0 {
		t.Fatalf("Insert after Close returned %d", h)
	}
}

func TestSequentialTable_NeverReuses(t *testing.T) {
	table := NewSequentialTable[string]()
	a := table.Insert("a")
	table.Remove(a)

	b := table.Insert("b")
	if b == a {
		t.Fatalf("sequential table reissued handle %d", a)
	}
	if _, ok := table.Get(a); ok {
		t.Fatal("stale handle must stay invalid")
	}
	if _, ok := table.Remove(a); ok {
		t.Fatal("stale Remove must not drop the newer value")
	}
	if v, ok := table.Get(b); !ok || v != "b" {
		t.Fatalf("Get(%d) = %q, %v", b, v, ok)
	}
}

func TestSequentialTable_Bounded(t *testing.T) {
	table := NewSequentialTable[int]()
	for i := 0; i < 10000; i++ {
		table.Remove(table.Insert(i))
	}
	if table.Len() != 0 {
		t.Fatalf("Len() = %d", table.Len())
	}
	if len(table.entries) != 0 || len(table.freeList) != 0 {
		t.Fatalf("removed entries retained: %d entries, %d free", len(table.entries), len(table.freeList))
	}
}

func TestTable_EachAscending(t *testing.T) {
	table := NewSequentialTable[int]()
	for i := 0; i < 5; i++ {
		table.Insert(i)
	}

	var prev Handle
	table.Each(func(h Handle, _ int) bool {
		if h <= prev {
			t.Fatalf("handle %d visited after %d", h, prev)
		}
		prev = h
		return true
	})
}
