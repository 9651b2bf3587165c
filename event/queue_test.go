package event

import (
	"sync"
	"testing"
)

func TestQueueSwap(t *testing.T) {
	var q Queue
	q.Push(Close(1))
	q.Push(Resized(1, 800, 600))

	got := q.Swap()
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].Kind != WindowClose || got[1].Kind != WindowResize {
		t.Fatalf("unexpected order: %v", got)
	}

	q.Push(Scrolled(1, 0, 1))
	if q.Len() != 1 {
		t.Fatalf("expected 1 pending event, got %d", q.Len())
	}
	if got := q.Swap(); len(got) != 1 || got[0].Kind != MouseScroll {
		t.Fatalf("expected the scroll event only, got %v", got)
	}
	if got := q.Swap(); len(got) != 0 {
		t.Fatalf("expected empty swap, got %v", got)
	}
}

func TestQueueConcurrentPush(t *testing.T) {
	var q Queue
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				q.Push(Moved(1, Motion{X: float32(j)}))
			}
		}()
	}
	wg.Wait()
	if got := len(q.Swap()); got != 800 {
		t.Fatalf("expected 800 events, got %d", got)
	}
}

func TestEventAccessors(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want Kind
		ok   func(Event) bool
	}{
		{"resize", Resized(2, 640, 480), WindowResize, func(e Event) bool { r, ok := e.Resize(); return ok && r.Width == 640 && r.Height == 480 }},
		{"key_down", KeyPressed(1, KeyPress{Key: 65, Name: "A"}), KeyDown, func(e Event) bool { k, ok := e.Key(); return ok && k.Name == "A" }},
		{"key_up", KeyReleased(1, KeyPress{Key: 65}), KeyUp, func(e Event) bool { _, ok := e.Key(); return ok }},
		{"scroll", Scrolled(1, 0, 5), MouseScroll, func(e Event) bool { s, ok := e.Scroll(); return ok && s.Y == 5 }},
		{"button", ButtonPressed(1, Button{Button: 2}), MouseButtonDown, func(e Event) bool { b, ok := e.Button(); return ok && b.Button == 2 }},
		{"wrong_payload", Close(1), WindowClose, func(e Event) bool { _, ok := e.Resize(); return !ok }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.ev.Kind != tc.want {
				t.Fatalf("expected kind %s, got %s", tc.want, tc.ev.Kind)
			}
			if !tc.ok(tc.ev) {
				t.Fatalf("accessor mismatch for %s", tc.ev)
			}
		})
	}
}

func TestKindsCoverEnumeration(t *testing.T) {
	kinds := Kinds()
	if len(kinds) != int(KindCount) {
		t.Fatalf("expected %d kinds, got %d", KindCount, len(kinds))
	}
	if kinds[0] != WindowClose {
		t.Fatalf("window close must be dispatched first, got %s", kinds[0])
	}
}
