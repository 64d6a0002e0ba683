package clock

import "sync/atomic"

// Clock is the discrete simulation clock. Turns only move forward.
type Clock interface {
	Turn() uint64
}

// TurnClock starts at turn 1 and advances by one on every Tick.
type TurnClock struct {
	turn atomic.Uint64
}

func New() *TurnClock {
	c := &TurnClock{}
	c.turn.Store(1)
	return c
}

func (c *TurnClock) Turn() uint64 { return c.turn.Load() }

func (c *TurnClock) Tick() { c.turn.Add(1) }

// Resume moves the clock forward to turn, typically one past the last
// persisted turn. It never moves the clock back.
func (c *TurnClock) Resume(turn uint64) {
	for {
		current := c.turn.Load()
		if turn <= current || c.turn.CompareAndSwap(current, turn) {
			return
		}
	}
}

// Manual is a Clock whose turn is set directly. Used by tests and replays.
type Manual struct {
	T uint64
}

func (m *Manual) Turn() uint64 { return m.T }

// Advance moves the clock forward by n turns.
func (m *Manual) Advance(n uint64) { m.T += n }
