package ecs

import "sort"

// Phase orders systems within a tick.
type Phase int

const (
	PhaseEvents     Phase = iota // drain window/input events before anything reads the world
	PhaseUpdate                  // gameplay
	PhasePostUpdate              // camera and transform fix-ups
	PhaseRender                  // draw submission
)

// System updates a world each tick.
type System interface {
	Update(w *World)
}

type scheduled struct {
	phase  Phase
	order  int
	system System
}

// Scheduler runs systems in phase order, keeping registration order within a
// phase.
type Scheduler struct {
	systems []scheduled
	sorted  bool
	halt    func() bool
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Add registers a system in the given phase.
func (s *Scheduler) Add(phase Phase, system System) {
	if system == nil {
		return
	}
	s.systems = append(s.systems, scheduled{phase: phase, order: len(s.systems), system: system})
	s.sorted = false
}

// SetHalt installs a predicate checked after every system; once it reports
// true the rest of the tick is skipped.
func (s *Scheduler) SetHalt(fn func() bool) {
	s.halt = fn
}

// Update runs every system once.
func (s *Scheduler) Update(w *World) {
	s.run(w, func(Phase) bool { return true })
}

// UpdatePhase runs only the systems registered in phase.
func (s *Scheduler) UpdatePhase(w *World, phase Phase) {
	s.run(w, func(p Phase) bool { return p == phase })
}

func (s *Scheduler) run(w *World, include func(Phase) bool) {
	s.ensureSorted()
	for _, sc := range s.systems {
		if !include(sc.phase) {
			continue
		}
		sc.system.Update(w)
		if s.halt != nil && s.halt() {
			return
		}
	}
}

func (s *Scheduler) ensureSorted() {
	if s.sorted {
		return
	}
	sort.SliceStable(s.systems, func(i, j int) bool {
		if s.systems[i].phase != s.systems[j].phase {
			return s.systems[i].phase < s.systems[j].phase
		}
		return s.systems[i].order < s.systems[j].order
	})
	s.sorted = true
}

// Systems returns the registered systems in execution order.
func (s *Scheduler) Systems() []System {
	s.ensureSorted()
	out := make([]System, 0, len(s.systems))
	for _, sc := range s.systems {
		out = append(out, sc.system)
	}
	return out
}
