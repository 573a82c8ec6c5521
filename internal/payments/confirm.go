package payments

import (
	"errors"
	"sync"
	"time"
)

// State models the confirmation sheet lifecycle:
// NotStarted -> SheetPresented -> {Completed, Failed, Canceled}.
type State int

const (
	NotStarted State = iota
	SheetPresented
	Completed
	Failed
	Canceled
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case SheetPresented:
		return "sheet_presented"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	case Canceled:
		return "canceled"
	}
	return "unknown"
}

var (
	// ErrFlowFinished rejects any transition out of a terminal state; a new
	// intent is required to retry after a failure or cancellation.
	ErrFlowFinished = errors.New("confirmation flow already reached a terminal state")
	// ErrSheetNotPresented rejects terminal outcomes before the sheet is up.
	ErrSheetNotPresented = errors.New("confirmation sheet was never presented")
)

// Confirmation drives one intent's flow to a terminal outcome, one-shot.
type Confirmation struct {
	mu      sync.Mutex
	state   State
	reason  string
	created time.Time
}

func NewConfirmation() *Confirmation {
	return &Confirmation{state: NotStarted, created: time.Now()}
}

func (c *Confirmation) Present() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != NotStarted {
		return ErrFlowFinished
	}
	c.state = SheetPresented
	return nil
}

func (c *Confirmation) terminal(to State, reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case SheetPresented:
		c.state = to
		c.reason = reason
		return nil
	case NotStarted:
		return ErrSheetNotPresented
	default:
		return ErrFlowFinished
	}
}

func (c *Confirmation) Complete() error { return c.terminal(Completed, "") }

func (c *Confirmation) Fail(reason string) error { return c.terminal(Failed, reason) }

func (c *Confirmation) Cancel() error { return c.terminal(Canceled, "") }

func (c *Confirmation) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// FailureReason is only meaningful in the Failed state.
func (c *Confirmation) FailureReason() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reason
}

// Flows tracks the confirmation state per intent so a completed or canceled
// intent can never be settled twice.
type Flows struct {
	mu sync.Mutex
	m  map[string]*Confirmation
}

// liveFlows is the registry main wires; the scheduled sweep reaches it
// through SweepFlows.
var liveFlows *Flows

func NewFlows() *Flows {
	f := &Flows{m: make(map[string]*Confirmation)}
	liveFlows = f
	return f
}

// Begin registers a fresh confirmation for the intent.
func (f *Flows) Begin(intentID string) *Confirmation {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := NewConfirmation()
	f.m[intentID] = c
	return c
}

func (f *Flows) Get(intentID string) (*Confirmation, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.m[intentID]
	return c, ok
}

// Drop forgets a flow once its outcome has been handled. Double settlement
// stays impossible: a dropped intent simply reads as unknown.
func (f *Flows) Drop(intentID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.m, intentID)
}

// Sweep removes flows that reached a terminal state and abandoned ones older
// than maxAge. Returns how many were dropped.
func (f *Flows) Sweep(maxAge time.Duration) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for id, c := range f.m {
		c.mu.Lock()
		done := c.state == Completed || c.state == Failed || c.state == Canceled
		stale := time.Since(c.created) > maxAge
		c.mu.Unlock()
		if done || stale {
			delete(f.m, id)
			n++
		}
	}
	return n
}

// SweepFlows sweeps the live registry; the periodic intent sweep calls it so
// abandoned confirmations do not accumulate for the life of the process.
func SweepFlows(maxAge time.Duration) int {
	if liveFlows == nil {
		return 0
	}
	return liveFlows.Sweep(maxAge)
}
