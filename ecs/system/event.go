package system

import (
	"github.com/bootzin/BootEngine-sub000/ecs"
	"github.com/bootzin/BootEngine-sub000/ecs/component"
	"github.com/bootzin/BootEngine-sub000/event"
	"go.uber.org/zap"
)

// Listener handles one event. Every listener registered for a kind sees each
// event of that kind.
type Listener func(w *ecs.World, ev event.Event)

// EventSystem turns queued raw events into short-lived event entities and
// hands them to listeners. It runs first each tick.
type EventSystem struct {
	queue     *event.Queue
	listeners [event.KindCount][]Listener
	closing   bool
	log       *zap.Logger
}

func NewEventSystem(queue *event.Queue, log *zap.Logger) *EventSystem {
	if queue == nil {
		queue = &event.Queue{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &EventSystem{queue: queue, log: log.Named("events")}
}

// On registers fn for events of kind k.
func (s *EventSystem) On(k event.Kind, fn Listener) {
	if s == nil || fn == nil || k >= event.KindCount {
		return
	}
	s.listeners[k] = append(s.listeners[k], fn)
}

// Post queues ev for the next Update. Safe from any goroutine.
func (s *EventSystem) Post(ev event.Event) {
	if s == nil {
		return
	}
	s.queue.Push(ev)
}

// Queue returns the queue event sources push into.
func (s *EventSystem) Queue() *event.Queue {
	return s.queue
}

// ShutdownRequested reports whether a window close event has been handled.
func (s *EventSystem) ShutdownRequested() bool {
	return s != nil && s.closing
}

func (s *EventSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}

	for _, ev := range s.queue.Swap() {
		ev := ev
		e := ecs.CreateEntity(w)
		if err := ecs.Add(w, e, component.EventComponent(ev.Kind).Kind(), &ev); err != nil {
			panic("event system: add event: " + err.Error())
		}
	}

	if s.drain(w, event.WindowClose, true) > 0 {
		if !s.closing {
			s.log.Info("window close requested")
		}
		s.closing = true
	}

	for _, k := range event.Kinds() {
		if k == event.WindowClose {
			continue
		}
		if n := s.drain(w, k, !s.closing); n > 0 && s.closing {
			s.log.Debug("discarded events during shutdown", zap.Stringer("kind", k), zap.Int("count", n))
		}
	}
}

// drain destroys every event entity of kind k, dispatching each one first
// when dispatch is set. It returns the number of entities drained.
func (s *EventSystem) drain(w *ecs.World, k event.Kind, dispatch bool) int {
	n := 0
	ecs.ForEach(w, component.EventComponent(k).Kind(), func(e ecs.Entity, ev *event.Event) {
		n++
		if dispatch {
			for _, fn := range s.listeners[k] {
				fn(w, *ev)
			}
		}
		ecs.DestroyEntity(w, e)
	})
	return n
}
