package resolver

import (
	"context"
	"fmt"
	"sync"
)

// State is the lifecycle position of a user action.
type State string

const (
	StateIdle       State = "idle"
	StateSimulating State = "simulating"
	StateResolved   State = "resolved"
	StateSubmitting State = "submitting"
	StateSubmitted  State = "submitted"
	StateFailed     State = "failed"
)

var transitions = map[State][]State{
	StateIdle:       {StateSimulating},
	StateSimulating: {StateResolved, StateFailed},
	StateResolved:   {StateSubmitting, StateIdle},
	StateSubmitting: {StateSubmitted, StateFailed},
	StateSubmitted:  {StateIdle, StateSimulating},
	StateFailed:     {StateIdle, StateSimulating},
}

// Terminal reports whether s ends an action.
func (s State) Terminal() bool { return s == StateSubmitted || s == StateFailed }

// Tracker guards a single in-flight action:
// Idle -> Simulating -> Resolved -> Submitting -> Submitted | Failed.
// It is safe for concurrent use.
type Tracker struct {
	mu       sync.Mutex
	state    State
	onChange func(from, to State)
}

// NewTracker returns a Tracker in StateIdle. onChange, if non-nil, is
// called after every transition with the lock released.
func NewTracker(onChange func(from, to State)) *Tracker {
	return &Tracker{state: StateIdle, onChange: onChange}
}

// State returns the current state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Begin starts a new action. It fails with ErrBusy while one is in flight.
func (t *Tracker) Begin() error {
	t.mu.Lock()
	if t.state != StateIdle && !t.state.Terminal() {
		t.mu.Unlock()
		return ErrBusy
	}
	from := t.state
	t.state = StateSimulating
	t.mu.Unlock()
	t.notify(from, StateSimulating)
	return nil
}

// To moves to next if the transition is legal.
func (t *Tracker) To(next State) error {
	t.mu.Lock()
	from := t.state
	ok := false
	for _, s := range transitions[from] {
		if s == next {
			ok = true
			break
		}
	}
	if !ok {
		t.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, next)
	}
	t.state = next
	t.mu.Unlock()
	t.notify(from, next)
	return nil
}

// Reset returns to StateIdle from a terminal or resolved state.
func (t *Tracker) Reset() error { return t.To(StateIdle) }

func (t *Tracker) notify(from, to State) {
	if t.onChange != nil {
		t.onChange(from, to)
	}
}

// Session runs resolve-then-submit actions one at a time.
type Session struct {
	engine    *Engine
	submitter *Submitter
	tracker   *Tracker
}

// NewSession wires an engine and a broadcaster behind a shared Tracker.
func NewSession(e *Engine, b Broadcaster, approve ApproveFunc, t *Tracker) *Session {
	if t == nil {
		t = NewTracker(nil)
	}
	return &Session{engine: e, submitter: NewSubmitter(b, approve, t, e.logger), tracker: t}
}

// Tracker returns the session's tracker.
func (s *Session) Tracker() *Tracker { return s.tracker }

// Run resolves req and submits the result. A second Run while one is in
// flight fails with ErrBusy. The error is non-nil only when resolution
// itself failed; submission problems are reported in the Submission.
func (s *Session) Run(ctx context.Context, req Request) (*Resolution, Submission, error) {
	if err := s.tracker.Begin(); err != nil {
		return nil, Submission{}, err
	}
	res, err := s.engine.Resolve(ctx, req)
	if err != nil {
		_ = s.tracker.To(StateFailed)
		return nil, Submission{Status: StatusFailed, Reason: err.Error()}, err
	}
	if err := s.tracker.To(StateResolved); err != nil {
		return res, Submission{Status: StatusFailed, Reason: err.Error()}, err
	}
	return res, s.submitter.Execute(ctx, res), nil
}
