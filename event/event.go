// Package event defines the input and window events raised by the platform
// layer. An Event is a tagged union: Kind selects which payload is meaningful.
package event

import "fmt"

// Kind enumerates every supported event.
type Kind uint8

const (
	WindowClose Kind = iota
	WindowResize
	KeyDown
	KeyUp
	MouseMove
	MouseScroll
	MouseButtonDown
	MouseButtonUp

	KindCount
)

func (k Kind) String() string {
	switch k {
	case WindowClose:
		return "WindowClose"
	case WindowResize:
		return "WindowResize"
	case KeyDown:
		return "KeyDown"
	case KeyUp:
		return "KeyUp"
	case MouseMove:
		return "MouseMove"
	case MouseScroll:
		return "MouseScroll"
	case MouseButtonDown:
		return "MouseButtonDown"
	case MouseButtonUp:
		return "MouseButtonUp"
	default:
		return fmt.Sprintf("event.Kind(%d)", uint8(k))
	}
}

// Kinds returns every event kind in dispatch order.
func Kinds() []Kind {
	out := make([]Kind, 0, KindCount)
	for k := Kind(0); k < KindCount; k++ {
		out = append(out, k)
	}
	return out
}

// WindowID identifies a window record in the platform arena.
type WindowID uint32

// Key is a platform key code.
type Key int

// MouseButton is a platform mouse button code.
type MouseButton int

// Modifier is a bit set of held modifier keys.
type Modifier uint8

const (
	ModShift Modifier = 1 << iota
	ModControl
	ModAlt
	ModSuper
)

type Resize struct {
	Width  int
	Height int
}

type KeyPress struct {
	Key       Key
	Name      string
	Modifiers Modifier
}

type Motion struct {
	X, Y           float32
	DeltaX, DeltaY float32
}

type Scroll struct {
	X, Y float32
}

type Button struct {
	Button MouseButton
	X, Y   float32
}

// Event is one window or input notification.
type Event struct {
	Kind   Kind
	Window WindowID

	resize Resize
	key    KeyPress
	motion Motion
	scroll Scroll
	button Button
}

func Close(win WindowID) Event {
	return Event{Kind: WindowClose, Window: win}
}

func Resized(win WindowID, width, height int) Event {
	return Event{Kind: WindowResize, Window: win, resize: Resize{Width: width, Height: height}}
}

func KeyPressed(win WindowID, k KeyPress) Event {
	return Event{Kind: KeyDown, Window: win, key: k}
}

func KeyReleased(win WindowID, k KeyPress) Event {
	return Event{Kind: KeyUp, Window: win, key: k}
}

func Moved(win WindowID, m Motion) Event {
	return Event{Kind: MouseMove, Window: win, motion: m}
}

func Scrolled(win WindowID, dx, dy float32) Event {
	return Event{Kind: MouseScroll, Window: win, scroll: Scroll{X: dx, Y: dy}}
}

func ButtonPressed(win WindowID, b Button) Event {
	return Event{Kind: MouseButtonDown, Window: win, button: b}
}

func ButtonReleased(win WindowID, b Button) Event {
	return Event{Kind: MouseButtonUp, Window: win, button: b}
}

func (e Event) Resize() (Resize, bool) {
	return e.resize, e.Kind == WindowResize
}

func (e Event) Key() (KeyPress, bool) {
	return e.key, e.Kind == KeyDown || e.Kind == KeyUp
}

func (e Event) Motion() (Motion, bool) {
	return e.motion, e.Kind == MouseMove
}

func (e Event) Scroll() (Scroll, bool) {
	return e.scroll, e.Kind == MouseScroll
}

func (e Event) Button() (Button, bool) {
	return e.button, e.Kind == MouseButtonDown || e.Kind == MouseButtonUp
}

func (e Event) String() string {
	switch e.Kind {
	case WindowClose:
		return fmt.Sprintf("%s{window=%d}", e.Kind, e.Window)
	case WindowResize:
		return fmt.Sprintf("%s{window=%d %dx%d}", e.Kind, e.Window, e.resize.Width, e.resize.Height)
	case KeyDown, KeyUp:
		return fmt.Sprintf("%s{window=%d key=%s}", e.Kind, e.Window, e.key.Name)
	case MouseMove:
		return fmt.Sprintf("%s{window=%d %.1f,%.1f}", e.Kind, e.Window, e.motion.X, e.motion.Y)
	case MouseScroll:
		return fmt.Sprintf("%s{window=%d %.2f,%.2f}", e.Kind, e.Window, e.scroll.X, e.scroll.Y)
	case MouseButtonDown, MouseButtonUp:
		return fmt.Sprintf("%s{window=%d button=%d}", e.Kind, e.Window, e.button.Button)
	default:
		return e.Kind.String()
	}
}
