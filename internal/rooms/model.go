package rooms

import (
	"sync"
	"time"

	"timingchallenge/internal/players"
)

// Status is a room's position in the game state machine.
type Status string

const (
	StatusLobby      = Status("lobby")
	StatusCountdown  = Status("countdown")
	StatusColorRound = Status("color_round")
	StatusFontRound  = Status("font_round")
	StatusScores     = Status("scores")
	StatusEnded      = Status("ended")
)

// RoundType distinguishes the two alternating reaction trials.
type RoundType string

const (
	RoundColor = RoundType("color")
	RoundFont  = RoundType("font")
)

// RoundResult is one player's scored submission in the current round.
// Created at most once per player per round, cleared when the next round
// starts.
type RoundResult struct {
	PlayerID         string
	Username         string
	ReactionOffsetMs int64
	AccuracyMs       int64
	Score            int
	RoundType        RoundType
}

// Room is a bounded group of players progressing through one game.
// All round fields and TimerEpoch are guarded by the embedded mutex; every
// state transition happens with the room locked, which serializes event
// handling per room.
type Room struct {
	sync.Mutex

	ID        string
	Roster    *players.Roster
	CreatedAt time.Time

	Status         Status
	RoundNumber    int       // current color/font pair, 1-based during play
	RoundType      RoundType // valid while a round is active
	StartTime      time.Time // go-signal instant of the current round
	TargetOffsetMs int64

	// TimerEpoch invalidates deferred transitions: it is bumped when the
	// room is aborted or destroyed, and a timer callback scheduled under
	// an older epoch must not run.
	TimerEpoch uint64

	results     map[string]*RoundResult
	resultOrder []string
}

func newRoom(id string) *Room {
	return &Room{
		ID:        id,
		Roster:    players.NewRoster(),
		CreatedAt: time.Now(),
		Status:    StatusLobby,
		results:   make(map[string]*RoundResult),
	}
}

// ActiveRound reports whether submissions are currently accepted.
func (r *Room) ActiveRound() bool {
	return r.Status == StatusColorRound || r.Status == StatusFontRound
}

// RecordResult stores a player's result for the current round. Returns
// false if the player already submitted this round; the duplicate is
// ignored entirely.
func (r *Room) RecordResult(res *RoundResult) bool {
	if _, exists := r.results[res.PlayerID]; exists {
		return false
	}
	r.results[res.PlayerID] = res
	r.resultOrder = append(r.resultOrder, res.PlayerID)
	return true
}

// Results returns the current round's results in submission order.
func (r *Room) Results() []*RoundResult {
	list := make([]*RoundResult, 0, len(r.resultOrder))
	for _, id := range r.resultOrder {
		list = append(list, r.results[id])
	}
	return list
}

func (r *Room) HasResult(playerID string) bool {
	_, exists := r.results[playerID]
	return exists
}

func (r *Room) ResultCount() int {
	return len(r.results)
}

// RemoveResult discards a departed player's submission.
func (r *Room) RemoveResult(playerID string) {
	if _, exists := r.results[playerID]; !exists {
		return
	}
	delete(r.results, playerID)
	for i, id := range r.resultOrder {
		if id == playerID {
			r.resultOrder = append(r.resultOrder[:i], r.resultOrder[i+1:]...)
			break
		}
	}
}

// ClearRound wipes all per-round state ahead of a new round or a reset.
func (r *Room) ClearRound() {
	r.StartTime = time.Time{}
	r.TargetOffsetMs = 0
	r.results = make(map[string]*RoundResult)
	r.resultOrder = nil
}
