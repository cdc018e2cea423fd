// Package game drives the per-room round lifecycle: lobby, countdown,
// alternating color/font rounds, scoring, game end and reset. All state for
// a room is mutated with that room's lock held, so event handling is
// serialized per room.
package game

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"timingchallenge/internal/events"
	"timingchallenge/internal/leaderboard"
	"timingchallenge/internal/players"
	"timingchallenge/internal/rooms"
	"timingchallenge/internal/scoring"
)

type Coordinator struct {
	cfg      Config
	reg      *rooms.Registry
	store    leaderboard.Store
	notifier Notifier
	clock    clockwork.Clock

	timersMu sync.Mutex
	timers   map[string]*phaseTimer

	// draw picks a uniform duration in [min, max). Overridden in tests.
	draw func(min, max time.Duration) time.Duration
}

// NewCoordinator wires the state machine. Pass clockwork.NewRealClock() in
// production and a fake clock in tests.
func NewCoordinator(cfg Config, store leaderboard.Store, notifier Notifier, clock clockwork.Clock) *Coordinator {
	return &Coordinator{
		cfg:      cfg,
		reg:      rooms.NewRegistry(cfg.MaxRoomSize),
		store:    store,
		notifier: notifier,
		clock:    clock,
		timers:   make(map[string]*phaseTimer),
		draw:     uniformDuration,
	}
}

func uniformDuration(min, max time.Duration) time.Duration {
	return min + time.Duration(rand.Int63n(int64(max-min)))
}

// Registry exposes the room set for read-side surfaces.
func (c *Coordinator) Registry() *rooms.Registry {
	return c.reg
}

// QuickMatch drops the player into the first open lobby room, creating one
// when every room is full or mid-game. A non-empty username replaces the
// player's display name first.
func (c *Coordinator) QuickMatch(p *players.Player, username string) error {
	if username != "" {
		p.Username = username
	}
	c.Leave(p)

	room, err := c.reg.QuickMatch(p)
	if err != nil {
		return err
	}

	room.Lock()
	defer room.Unlock()
	log.Info().Str("player", p.ID).Str("room", room.ID).Msg("player joined via quick match")
	c.broadcastMembership(room)
	return nil
}

// CreateRoom moves the player out of any current room and into a fresh one.
func (c *Coordinator) CreateRoom(p *players.Player) error {
	c.Leave(p)

	room, err := c.reg.Create(p)
	if err != nil {
		return err
	}

	room.Lock()
	defer room.Unlock()
	log.Info().Str("player", p.ID).Str("room", room.ID).Msg("player created room")
	c.broadcastMembership(room)
	return nil
}

// JoinRoom moves the player into a specific room. The target is validated
// before the player leaves their current room, so a failed join never
// strands them.
func (c *Coordinator) JoinRoom(p *players.Player, roomID string) error {
	target := c.reg.Get(roomID)
	if target == nil {
		return rooms.ErrRoomNotFound
	}
	target.Lock()
	full := target.Roster.Count() >= c.reg.Capacity()
	busy := target.Status != rooms.StatusLobby
	target.Unlock()
	if full {
		return rooms.ErrRoomFull
	}
	if busy {
		return rooms.ErrGameInProgress
	}

	c.Leave(p)

	// Re-validated atomically; the room may have filled or started in
	// between.
	room, err := c.reg.Join(p, roomID)
	if err != nil {
		return err
	}

	room.Lock()
	defer room.Unlock()
	log.Info().Str("player", p.ID).Str("room", room.ID).Msg("player joined room")
	c.broadcastMembership(room)
	return nil
}

// Leave removes the player from their room, tearing the room down when it
// empties and aborting the game when an active room drops below two
// members. Safe to call for a player who is not in a room.
func (c *Coordinator) Leave(p *players.Player) {
	roomID := p.RoomID
	if roomID == "" {
		return
	}
	room := c.reg.Get(roomID)
	if room == nil {
		p.RoomID = ""
		return
	}

	room.Lock()
	removed := room.Roster.Remove(p.ID)
	p.RoomID = ""
	p.Ready = false
	if !removed {
		room.Unlock()
		return
	}

	remaining := room.Roster.Count()
	if remaining == 0 {
		c.cancelTimer(room.ID)
		room.TimerEpoch++
		room.Unlock()
		c.reg.DeleteIfEmpty(room.ID)
		log.Info().Str("room", room.ID).Msg("room destroyed, last member left")
		return
	}

	c.notifier.Broadcast(room.Roster.IDs(), events.Outbound{
		Type: events.TypeMemberLeft,
		Data: events.MemberLeftPayload{
			PlayerID: p.ID,
			Members:  events.PlayerInfos(room.Roster.List()),
		},
	})

	switch {
	case room.Status != rooms.StatusLobby && remaining < 2:
		c.abortLocked(room, "not enough players")
	case room.ActiveRound():
		// The leaver's in-flight submission no longer counts, and the
		// round may now be complete for everyone still here.
		room.RemoveResult(p.ID)
		if room.ResultCount() >= remaining {
			c.endRoundLocked(room)
		}
	}
	room.Unlock()
}

// Disconnect handles a closed connection: leave semantics plus a final
// fire-and-forget leaderboard write if the player ever scored.
func (c *Coordinator) Disconnect(p *players.Player) {
	c.Leave(p)
	if p.HasBest() {
		go c.persistBest(p.ID, p.Username, p.BestAccuracyMs)
	}
}

// Ready marks the player ready. When every member of a 2+ room is ready,
// the game starts.
func (c *Coordinator) Ready(p *players.Player) {
	room := c.roomFor(p)
	if room == nil {
		return
	}
	room.Lock()
	defer room.Unlock()

	if room.Status != rooms.StatusLobby {
		return
	}
	if room.Roster.SetReady(p.ID, true) == nil {
		return
	}

	if room.Roster.AllReady() && room.Roster.Count() >= 2 {
		c.startGameLocked(room)
		return
	}

	c.notifier.Broadcast(room.Roster.IDs(), events.Outbound{
		Type: events.TypeReadinessChanged,
		Data: events.ReadinessChangedPayload{
			PlayerID: p.ID,
			Members:  events.PlayerInfos(room.Roster.List()),
		},
	})
}

// Submit records the player's reaction for the current round. A second
// submission in the same round is ignored entirely.
func (c *Coordinator) Submit(p *players.Player, clientTimestampMs int64) {
	room := c.roomFor(p)
	if room == nil {
		return
	}
	room.Lock()
	defer room.Unlock()

	if !room.ActiveRound() || !room.Roster.Has(p.ID) || room.HasResult(p.ID) {
		return
	}

	reaction := clientTimestampMs - room.StartTime.UnixMilli()
	accuracy := reaction - room.TargetOffsetMs
	if accuracy < 0 {
		accuracy = -accuracy
	}
	score := scoring.Score(accuracy)

	room.RecordResult(&rooms.RoundResult{
		PlayerID:         p.ID,
		Username:         p.Username,
		ReactionOffsetMs: reaction,
		AccuracyMs:       accuracy,
		Score:            score,
		RoundType:        room.RoundType,
	})
	room.Roster.AddScore(p.ID, score)

	// Completion is judged against current membership, not submission
	// count, so arrival order never matters.
	if room.ResultCount() >= room.Roster.Count() {
		c.endRoundLocked(room)
		return
	}

	c.notifier.Send(p.ID, events.Outbound{
		Type: events.TypeSubmissionAck,
		Data: events.SubmissionAckPayload{
			AccuracyMs:     accuracy,
			Score:          score,
			TargetOffsetMs: room.TargetOffsetMs,
		},
	})
}

func (c *Coordinator) roomFor(p *players.Player) *rooms.Room {
	if p.RoomID == "" {
		return nil
	}
	return c.reg.Get(p.RoomID)
}

// broadcastMembership tells every member the room's current composition.
// Caller holds the room lock.
func (c *Coordinator) broadcastMembership(room *rooms.Room) {
	c.notifier.Broadcast(room.Roster.IDs(), events.Outbound{
		Type: events.TypeMembershipChanged,
		Data: events.MembershipChangedPayload{
			RoomID:  room.ID,
			Members: events.PlayerInfos(room.Roster.List()),
			Status:  string(room.Status),
		},
	})
}

func contextWithStoreTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

func (c *Coordinator) persistBest(identityKey, username string, accuracyMs int64) {
	ctx, cancel := contextWithStoreTimeout()
	defer cancel()
	if err := c.store.UpsertBest(ctx, identityKey, username, accuracyMs); err != nil {
		log.Error().Err(err).Str("player", identityKey).Msg("leaderboard upsert failed")
	}
}
