// Package input polls platform input once per tick and raises the matching
// events.
package input

import (
	"github.com/bootzin/BootEngine-sub000/event"
)

// Window is one platform window record.
type Window struct {
	ID      event.WindowID
	Title   string
	Width   int
	Height  int
	Closing bool
}

// Windows is an arena of window records indexed by event.WindowID.
type Windows struct {
	records []Window
}

// Add creates a window record and returns its id.
func (ws *Windows) Add(title string, width, height int) event.WindowID {
	id := event.WindowID(len(ws.records))
	ws.records = append(ws.records, Window{ID: id, Title: title, Width: width, Height: height})
	return id
}

// Get returns the record for id.
func (ws *Windows) Get(id event.WindowID) (*Window, bool) {
	if ws == nil || int(id) >= len(ws.records) {
		return nil, false
	}
	return &ws.records[id], true
}

func (ws *Windows) Len() int {
	if ws == nil {
		return 0
	}
	return len(ws.records)
}

// KeyChange is a key that went down or up this tick.
type KeyChange struct {
	Key       event.Key
	Name      string
	Modifiers event.Modifier
}

// Snapshot is the input state sampled for one tick.
type Snapshot struct {
	Width, Height    int
	CursorX, CursorY float32
	WheelX, WheelY   float32
	KeysDown         []KeyChange
	KeysUp           []KeyChange
	ButtonsDown      []event.MouseButton
	ButtonsUp        []event.MouseButton
	CloseRequested   bool
}

// Source samples platform input.
type Source interface {
	Poll() Snapshot
}

// Pump turns snapshots from a Source into events for one window.
type Pump struct {
	source  Source
	windows *Windows
	id      event.WindowID
	queue   *event.Queue

	prev    Snapshot
	started bool
}

func NewPump(source Source, windows *Windows, id event.WindowID, queue *event.Queue) *Pump {
	return &Pump{source: source, windows: windows, id: id, queue: queue}
}

// Poll samples the source and pushes the resulting events. It returns the
// number of events raised.
func (p *Pump) Poll() int {
	cur := p.source.Poll()
	win, ok := p.windows.Get(p.id)
	if !ok {
		return 0
	}
	prev := p.prev
	if !p.started {
		prev.CursorX, prev.CursorY = cur.CursorX, cur.CursorY
		p.started = true
	}
	evs := Translate(p.id, win, prev, cur)
	for _, ev := range evs {
		p.queue.Push(ev)
	}
	p.prev = cur
	return len(evs)
}

// Translate compares two snapshots and returns the events they imply, in
// a fixed order. The window record is updated with the new size and close
// state.
func Translate(id event.WindowID, win *Window, prev, cur Snapshot) []event.Event {
	var out []event.Event
	if cur.CloseRequested && !win.Closing {
		win.Closing = true
		out = append(out, event.Close(id))
	}
	if cur.Width > 0 && cur.Height > 0 && (cur.Width != win.Width || cur.Height != win.Height) {
		win.Width, win.Height = cur.Width, cur.Height
		out = append(out, event.Resized(id, cur.Width, cur.Height))
	}
	for _, k := range cur.KeysDown {
		out = append(out, event.KeyPressed(id, event.KeyPress{Key: k.Key, Name: k.Name, Modifiers: k.Modifiers}))
	}
	for _, k := range cur.KeysUp {
		out = append(out, event.KeyReleased(id, event.KeyPress{Key: k.Key, Name: k.Name, Modifiers: k.Modifiers}))
	}
	if cur.CursorX != prev.CursorX || cur.CursorY != prev.CursorY {
		out = append(out, event.Moved(id, event.Motion{
			X: cur.CursorX, Y: cur.CursorY,
			DeltaX: cur.CursorX - prev.CursorX, DeltaY: cur.CursorY - prev.CursorY,
		}))
	}
	if cur.WheelX != 0 || cur.WheelY != 0 {
		out = append(out, event.Scrolled(id, cur.WheelX, cur.WheelY))
	}
	for _, b := range cur.ButtonsDown {
		out = append(out, event.ButtonPressed(id, event.Button{Button: b, X: cur.CursorX, Y: cur.CursorY}))
	}
	for _, b := range cur.ButtonsUp {
		out = append(out, event.ButtonReleased(id, event.Button{Button: b, X: cur.CursorX, Y: cur.CursorY}))
	}
	return out
}
