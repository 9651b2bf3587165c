package input

import (
	"testing"

	"github.com/bootzin/BootEngine-sub000/event"
)

type fakeSource struct {
	snaps []Snapshot
}

func (f *fakeSource) Poll() Snapshot {
	if len(f.snaps) == 0 {
		return Snapshot{}
	}
	s := f.snaps[0]
	f.snaps = f.snaps[1:]
	return s
}

func kinds(evs []event.Event) []event.Kind {
	out := make([]event.Kind, len(evs))
	for i, ev := range evs {
		out[i] = ev.Kind
	}
	return out
}

func TestWindowsArena(t *testing.T) {
	var ws Windows
	a := ws.Add("main", 800, 600)
	b := ws.Add("tools", 300, 200)
	if a == b || ws.Len() != 2 {
		t.Fatalf("ids %d %d len %d", a, b, ws.Len())
	}
	win, ok := ws.Get(b)
	if !ok || win.Title != "tools" || win.ID != b {
		t.Fatalf("Get(%d) = %+v, %v", b, win, ok)
	}
	if _, ok := ws.Get(7); ok {
		t.Fatalf("Get of unknown id succeeded")
	}
	var nilWs *Windows
	if _, ok := nilWs.Get(0); ok || nilWs.Len() != 0 {
		t.Fatalf("nil arena not empty")
	}
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		prev Snapshot
		cur  Snapshot
		want []event.Kind
	}{
		{name: "idle", cur: Snapshot{Width: 800, Height: 600}},
		{name: "resize", cur: Snapshot{Width: 1024, Height: 768}, want: []event.Kind{event.WindowResize}},
		{name: "minimized_ignored", cur: Snapshot{Width: 0, Height: 0}},
		{
			name: "close_first",
			cur: Snapshot{
				Width: 800, Height: 600,
				KeysDown:       []KeyChange{{Key: 1, Name: "B"}},
				CloseRequested: true,
			},
			want: []event.Kind{event.WindowClose, event.KeyDown},
		},
		{
			name: "pointer",
			prev: Snapshot{CursorX: 1, CursorY: 1},
			cur: Snapshot{
				Width: 800, Height: 600,
				CursorX: 4, CursorY: 5, WheelY: -1,
				ButtonsDown: []event.MouseButton{0},
				ButtonsUp:   []event.MouseButton{1},
			},
			want: []event.Kind{event.MouseMove, event.MouseScroll, event.MouseButtonDown, event.MouseButtonUp},
		},
		{
			name: "keys",
			cur: Snapshot{
				Width: 800, Height: 600,
				KeysDown: []KeyChange{{Key: 1}},
				KeysUp:   []KeyChange{{Key: 2}, {Key: 3}},
			},
			want: []event.Kind{event.KeyDown, event.KeyUp, event.KeyUp},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			win := &Window{Width: 800, Height: 600}
			got := kinds(Translate(0, win, tt.prev, tt.cur))
			if len(got) != len(tt.want) {
				t.Fatalf("kinds = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("kinds = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestTranslatePayloads(t *testing.T) {
	win := &Window{Width: 10, Height: 10}
	evs := Translate(3, win, Snapshot{CursorX: 1, CursorY: 2}, Snapshot{
		Width: 20, Height: 10, CursorX: 4, CursorY: 6,
		KeysDown: []KeyChange{{Key: 9, Name: "J", Modifiers: event.ModShift}},
	})
	if win.Width != 20 {
		t.Fatalf("window record not resized")
	}
	for _, ev := range evs {
		if ev.Window != 3 {
			t.Fatalf("event %v carries window %d", ev, ev.Window)
		}
		switch ev.Kind {
		case event.WindowResize:
			if r, _ := ev.Resize(); r.Width != 20 || r.Height != 10 {
				t.Fatalf("resize payload = %+v", r)
			}
		case event.KeyDown:
			if k, _ := ev.Key(); k.Key != 9 || k.Name != "J" || k.Modifiers != event.ModShift {
				t.Fatalf("key payload = %+v", k)
			}
		case event.MouseMove:
			if m, _ := ev.Motion(); m.DeltaX != 3 || m.DeltaY != 4 {
				t.Fatalf("motion payload = %+v", m)
			}
		}
	}
}

func TestPumpRaisesCloseOnce(t *testing.T) {
	var ws Windows
	id := ws.Add("main", 640, 480)
	q := &event.Queue{}
	src := &fakeSource{snaps: []Snapshot{
		{Width: 640, Height: 480, CursorX: 10, CursorY: 10},
		{Width: 640, Height: 480, CursorX: 10, CursorY: 10, CloseRequested: true},
		{Width: 640, Height: 480, CursorX: 10, CursorY: 10, CloseRequested: true},
	}}
	p := NewPump(src, &ws, id, q)

	if n := p.Poll(); n != 0 {
		t.Fatalf("first poll raised %d events, want 0", n)
	}
	p.Poll()
	p.Poll()
	got := q.Swap()
	if len(got) != 1 || got[0].Kind != event.WindowClose {
		t.Fatalf("queued = %v, want one WindowClose", got)
	}
	if win, _ := ws.Get(id); !win.Closing {
		t.Fatalf("window not marked closing")
	}
}
