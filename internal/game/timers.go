package game

import (
	"time"

	"github.com/jonboulle/clockwork"

	"timingchallenge/internal/rooms"
)

// phaseTimer is one room's pending deferred transition. A room has at most
// one: countdown, submission deadline, inter-round delay or reset delay.
type phaseTimer struct {
	timer  clockwork.Timer
	cancel chan struct{}
}

// schedule arms the room's deferred transition. The caller must hold the
// room lock. fn later runs with the room locked, and only if the room's
// TimerEpoch has not moved since scheduling; abort and teardown bump the
// epoch, so a stale timer can never revive a torn-down room.
func (c *Coordinator) schedule(room *rooms.Room, d time.Duration, fn func(*rooms.Room)) {
	epoch := room.TimerEpoch
	pt := &phaseTimer{
		timer:  c.clock.NewTimer(d),
		cancel: make(chan struct{}),
	}
	c.replaceTimer(room.ID, pt)

	go func() {
		select {
		case <-pt.timer.Chan():
			c.clearTimer(room.ID, pt)
			room.Lock()
			defer room.Unlock()
			if room.TimerEpoch != epoch {
				return
			}
			fn(room)
		case <-pt.cancel:
		}
	}()
}

// replaceTimer atomically swaps in a new pending timer, cancelling any
// existing one so two transitions can never race for the same room.
func (c *Coordinator) replaceTimer(roomID string, pt *phaseTimer) {
	c.timersMu.Lock()
	defer c.timersMu.Unlock()
	if existing, ok := c.timers[roomID]; ok {
		stopAndDrain(existing.timer)
		close(existing.cancel)
	}
	c.timers[roomID] = pt
}

// clearTimer removes a fired timer's entry unless it was already replaced.
func (c *Coordinator) clearTimer(roomID string, pt *phaseTimer) {
	c.timersMu.Lock()
	defer c.timersMu.Unlock()
	if c.timers[roomID] == pt {
		delete(c.timers, roomID)
	}
}

// cancelTimer stops the room's pending transition, if any.
func (c *Coordinator) cancelTimer(roomID string) {
	c.timersMu.Lock()
	defer c.timersMu.Unlock()
	if pt, ok := c.timers[roomID]; ok {
		stopAndDrain(pt.timer)
		close(pt.cancel)
		delete(c.timers, roomID)
	}
}

// stopAndDrain stops a timer and drains its channel so the waiting
// goroutine does not leak, per the time.Timer.Stop contract.
func stopAndDrain(t clockwork.Timer) {
	if !t.Stop() {
		select {
		case <-t.Chan():
		default:
		}
	}
}
