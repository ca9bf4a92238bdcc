// Package session folds streamed events into per-flow state machines. Each
// session owns its state and hands out copies, so the skill match, the
// answer analysis and the health poller never share mutable data.
package session

import (
	"context"
	"maps"
	"sync"

	"github.com/spigell/interview-prep/internal/stream"
	"go.uber.org/zap"
)

const (
	StepIdle = 0
	// StepComplete marks a finished stream. It is outside the range of real steps.
	StepComplete = 100
)

// Snapshot is a copy of a session state. Result is a shallow copy.
type Snapshot struct {
	Running bool
	Step    int
	Trace   map[int][]string
	Result  map[string]any
	// Completed is set once a result event arrived.
	Completed bool
}

// TraceFor returns the progress messages recorded for step.
func (s Snapshot) TraceFor(step int) []string {
	return s.Trace[step]
}

type state struct {
	mu        sync.Mutex
	gen       uint64
	running   bool
	step      int
	trace     map[int][]string
	result    map[string]any
	completed bool
	cancel    context.CancelFunc
	logger    *zap.Logger
}

// begin resets the state for a new run and returns its generation. Events
// carrying an older generation are ignored.
func (s *state) begin(cancel context.CancelFunc, seed string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.beginLocked(cancel, seed)
}

func (s *state) beginLocked(cancel context.CancelFunc, seed string) uint64 {
	if s.cancel != nil {
		s.cancel()
	}

	s.gen++
	s.cancel = cancel
	s.running = true
	s.step = 1
	s.result = nil
	s.completed = false
	s.trace = make(map[int][]string)
	if seed != "" {
		s.trace[1] = []string{seed}
	}

	return s.gen
}

// tryBegin is begin that refuses to interrupt a running session.
func (s *state) tryBegin(cancel context.CancelFunc) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return 0, false
	}
	return s.beginLocked(cancel, ""), true
}

func (s *state) apply(gen uint64, ev stream.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen || !s.running {
		return
	}

	if ev.HasStep {
		if ev.Step >= s.step {
			s.step = ev.Step
		} else {
			s.logger.Debug("ignoring step regression", zap.Int("current", s.step), zap.Int("received", ev.Step))
		}
	}

	switch ev.Kind {
	case stream.KindStep:
		if ev.Message != "" {
			// A line keeps the step it names even when that step is behind.
			at := s.step
			if ev.HasStep {
				at = ev.Step
			}
			s.trace[at] = append(s.trace[at], ev.Message)
		}
	case stream.KindPartial:
		if s.result == nil {
			s.result = make(map[string]any, len(ev.Data))
		}
		maps.Copy(s.result, ev.Data)
	case stream.KindResult:
		s.result = maps.Clone(ev.Data)
		if s.result == nil {
			s.result = make(map[string]any)
		}
		s.step = StepComplete
		s.completed = true
		s.running = false
	case stream.KindError:
		s.logger.Warn("stream reported an error", zap.String("message", ev.Message))
		s.running = false
	}
}

// finish marks the run as stopped if it is still the current one.
func (s *state) finish(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		return
	}
	s.running = false
	s.cancel = nil
}

func (s *state) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	s.cancel = nil
	s.running = false
	s.step = StepIdle
	s.trace = nil
	s.result = nil
	s.completed = false
}

func (s *state) snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	trace := make(map[int][]string, len(s.trace))
	for step, lines := range s.trace {
		trace[step] = append([]string(nil), lines...)
	}

	return Snapshot{
		Running:   s.running,
		Step:      s.step,
		Trace:     trace,
		Result:    maps.Clone(s.result),
		Completed: s.completed,
	}
}
