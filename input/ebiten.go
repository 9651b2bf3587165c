package input

import (
	"sync"

	"github.com/bootzin/BootEngine-sub000/event"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

var mouseButtons = []ebiten.MouseButton{
	ebiten.MouseButtonLeft,
	ebiten.MouseButtonRight,
	ebiten.MouseButtonMiddle,
}

// EbitenSource samples ebiten's input state. Window size comes from the
// game's Layout callback through SetSize.
type EbitenSource struct {
	mu            sync.Mutex
	width, height int

	keys []ebiten.Key
}

// NewEbitenSource takes over window close handling so a close request
// becomes an event instead of terminating the game loop directly.
func NewEbitenSource() *EbitenSource {
	ebiten.SetWindowClosingHandled(true)
	return &EbitenSource{}
}

// SetSize records the outside size reported to Layout.
func (s *EbitenSource) SetSize(width, height int) {
	s.mu.Lock()
	s.width, s.height = width, height
	s.mu.Unlock()
}

func (s *EbitenSource) Poll() Snapshot {
	s.mu.Lock()
	snap := Snapshot{Width: s.width, Height: s.height}
	s.mu.Unlock()

	x, y := ebiten.CursorPosition()
	snap.CursorX, snap.CursorY = float32(x), float32(y)
	wx, wy := ebiten.Wheel()
	snap.WheelX, snap.WheelY = float32(wx), float32(wy)
	snap.CloseRequested = ebiten.IsWindowBeingClosed()

	mods := modifiers()
	s.keys = inpututil.AppendJustPressedKeys(s.keys[:0])
	for _, k := range s.keys {
		snap.KeysDown = append(snap.KeysDown, KeyChange{Key: event.Key(k), Name: k.String(), Modifiers: mods})
	}
	s.keys = inpututil.AppendJustReleasedKeys(s.keys[:0])
	for _, k := range s.keys {
		snap.KeysUp = append(snap.KeysUp, KeyChange{Key: event.Key(k), Name: k.String(), Modifiers: mods})
	}

	for _, b := range mouseButtons {
		if inpututil.IsMouseButtonJustPressed(b) {
			snap.ButtonsDown = append(snap.ButtonsDown, event.MouseButton(b))
		}
		if inpututil.IsMouseButtonJustReleased(b) {
			snap.ButtonsUp = append(snap.ButtonsUp, event.MouseButton(b))
		}
	}
	return snap
}

func modifiers() event.Modifier {
	var m event.Modifier
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		m |= event.ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		m |= event.ModControl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		m |= event.ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		m |= event.ModSuper
	}
	return m
}
