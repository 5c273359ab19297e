// Package engine provides the discrete-event loop that drives a run and
// the simulation that wires ships, worlds, and reports together.
package engine

import (
	"container/heap"
	"context"
	"fmt"
	"log/slog"

	"github.com/talgya/merchant-lanes/internal/agents"
)

// EventKind distinguishes the wake-ups a ship can have queued.
type EventKind uint8

const (
	EventStep    EventKind = iota // resume the ship's lifecycle
	EventPayroll                  // monthly crew payroll
)

func (k EventKind) String() string {
	switch k {
	case EventStep:
		return "step"
	case EventPayroll:
		return "payroll"
	default:
		return fmt.Sprintf("EventKind(%d)", uint8(k))
	}
}

// Event is one scheduled wake-up.
type Event struct {
	Time float64
	Kind EventKind
	Ship *agents.Starship
	seq  uint64 // insertion order, breaks ties
}

type eventQueue []*Event

func (q eventQueue) Len() int { return len(q) }

func (q eventQueue) Less(i, j int) bool {
	if q[i].Time != q[j].Time {
		return q[i].Time < q[j].Time
	}
	return q[i].seq < q[j].seq
}

func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *eventQueue) Push(x any) { *q = append(*q, x.(*Event)) }

func (q *eventQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return e
}

// Scheduler dispatches events in time order. Events at the same time run in
// the order they were scheduled.
type Scheduler struct {
	Now        float64 // simulation days
	Horizon    float64 // events at or after this time are never dispatched
	Dispatched uint64

	// OnEvent handles each dispatched event. It may schedule more.
	OnEvent func(e *Event)

	queue eventQueue
	seq   uint64
}

// NewScheduler creates a scheduler that stops at horizon.
func NewScheduler(horizon float64) *Scheduler {
	return &Scheduler{Horizon: horizon}
}

// Schedule queues an event. Times before the current clock are refused.
func (s *Scheduler) Schedule(t float64, kind EventKind, ship *agents.Starship) error {
	if t < s.Now {
		return fmt.Errorf("schedule %s for %s at %.4f: clock is already at %.4f", kind, shipName(ship), t, s.Now)
	}
	s.seq++
	heap.Push(&s.queue, &Event{Time: t, Kind: kind, Ship: ship, seq: s.seq})
	return nil
}

// Pending returns the number of queued events.
func (s *Scheduler) Pending() int {
	return s.queue.Len()
}

// Peek returns the time of the next event.
func (s *Scheduler) Peek() (float64, bool) {
	if s.queue.Len() == 0 {
		return 0, false
	}
	return s.queue[0].Time, true
}

// Run dispatches events until the next one falls at or past the horizon,
// the queue empties, or ctx is cancelled. Events left in the queue are
// not drained.
func (s *Scheduler) Run(ctx context.Context) error {
	slog.Debug("scheduler started", "horizon", s.Horizon, "pending", s.queue.Len())
	for s.queue.Len() > 0 {
		if s.Dispatched%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("scheduler stopped at day %.2f: %w", s.Now, err)
			}
		}
		next := s.queue[0]
		if next.Time >= s.Horizon {
			break
		}
		heap.Pop(&s.queue)
		s.Now = next.Time
		s.Dispatched++
		if s.OnEvent != nil {
			s.OnEvent(next)
		}
	}
	if s.Now < s.Horizon {
		s.Now = s.Horizon
	}
	slog.Debug("scheduler stopped", "dispatched", s.Dispatched, "pending", s.queue.Len())
	return nil
}

func shipName(s *agents.Starship) string {
	if s == nil {
		return "<none>"
	}
	return s.Name
}
