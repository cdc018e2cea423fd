// Package events defines the wire protocol between clients and the
// coordinator: named events with structured payloads, fire-and-forget in
// both directions.
package events

import (
	"encoding/json"

	"timingchallenge/internal/players"
)

// Inbound event types (client to server).
const (
	TypeJoinQuickMatch = "join_quick_match"
	TypeCreateRoom     = "create_room"
	TypeJoinRoom       = "join_room"
	TypeSetReady       = "set_ready"
	TypeSubmit         = "submit"
)

// Outbound event types (server to clients, room-scoped unless noted).
const (
	TypeConnected         = "connected" // private, on accept
	TypeMembershipChanged = "membership_changed"
	TypeReadinessChanged  = "readiness_changed"
	TypeMemberLeft        = "member_left"
	TypeGameStarting      = "game_starting"
	TypeRoundStarted      = "round_started"
	TypeSubmissionAck     = "submission_ack" // private, to submitter only
	TypeRoundEnded        = "round_ended"
	TypeGameEnded         = "game_ended"
	TypeGameAborted       = "game_aborted"
	TypeRoomReset         = "room_reset"
	TypeError             = "error" // private
)

// Inbound is the envelope received from clients. Data stays raw until the
// type is known.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Outbound is the envelope sent to clients.
type Outbound struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Inbound payloads.

type JoinQuickMatchPayload struct {
	Username string `json:"username"`
}

type JoinRoomPayload struct {
	RoomID string `json:"roomId"`
}

type SubmitPayload struct {
	ClientTimestampMs int64 `json:"clientTimestampMs"`
}

// PlayerInfo is the view of a player shared with every member of a room.
type PlayerInfo struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Color          string `json:"color"`
	Ready          bool   `json:"ready"`
	Score          int    `json:"score"`
	BestAccuracyMs *int64 `json:"bestAccuracyMs"`
}

// PlayerInfoFrom converts a player for broadcast.
func PlayerInfoFrom(p *players.Player) PlayerInfo {
	info := PlayerInfo{
		ID:       p.ID,
		Username: p.Username,
		Color:    p.Color,
		Ready:    p.Ready,
		Score:    p.Score,
	}
	if p.HasBest() {
		best := p.BestAccuracyMs
		info.BestAccuracyMs = &best
	}
	return info
}

// PlayerInfos converts a member list in order.
func PlayerInfos(list []*players.Player) []PlayerInfo {
	infos := make([]PlayerInfo, len(list))
	for i, p := range list {
		infos[i] = PlayerInfoFrom(p)
	}
	return infos
}

// Outbound payloads.

// ConnectedPayload tells a fresh connection who it is.
type ConnectedPayload struct {
	PlayerID string `json:"playerId"`
	Username string `json:"username"`
	Color    string `json:"color"`
}

type MembershipChangedPayload struct {
	RoomID  string       `json:"roomId"`
	Members []PlayerInfo `json:"members"`
	Status  string       `json:"status"`
}

type ReadinessChangedPayload struct {
	PlayerID string       `json:"playerId"`
	Members  []PlayerInfo `json:"members"`
}

type MemberLeftPayload struct {
	PlayerID string       `json:"playerId"`
	Members  []PlayerInfo `json:"members"`
}

type GameStartingPayload struct {
	CountdownSeconds int          `json:"countdownSeconds"`
	Members          []PlayerInfo `json:"members"`
}

type RoundStartedPayload struct {
	RoundNumber    int    `json:"roundNumber"`
	RoundType      string `json:"roundType"`
	WaitTimeMs     int64  `json:"waitTimeMs"`
	TargetOffsetMs int64  `json:"targetOffsetMs"`
}

type SubmissionAckPayload struct {
	AccuracyMs     int64 `json:"accuracyMs"`
	Score          int   `json:"score"`
	TargetOffsetMs int64 `json:"targetOffsetMs"`
}

// RankedResult is one row of a round's ranking. Reaction and accuracy are
// null for members who never submitted before the deadline.
type RankedResult struct {
	PlayerID         string `json:"playerId"`
	Username         string `json:"username"`
	ReactionOffsetMs *int64 `json:"reactionOffsetMs"`
	AccuracyMs       *int64 `json:"accuracyMs"`
	Score            int    `json:"score"`
	RoundType        string `json:"roundType"`
}

type ScoreboardEntry struct {
	PlayerID string `json:"playerId"`
	Username string `json:"username"`
	Score    int    `json:"score"`
}

type RoundEndedPayload struct {
	RankedResults []RankedResult    `json:"rankedResults"`
	Scoreboard    []ScoreboardEntry `json:"scoreboard"`
	NextRoundType *string           `json:"nextRoundType"`
}

type StandingEntry struct {
	PlayerID       string `json:"playerId"`
	Username       string `json:"username"`
	Score          int    `json:"score"`
	BestAccuracyMs *int64 `json:"bestAccuracyMs"`
}

type LeaderboardRow struct {
	Username       string `json:"username"`
	BestAccuracyMs int64  `json:"bestAccuracyMs"`
	GamesPlayed    int    `json:"gamesPlayed"`
}

type GameEndedPayload struct {
	FinalStandings []StandingEntry  `json:"finalStandings"`
	TopLeaderboard []LeaderboardRow `json:"topLeaderboard"`
}

type GameAbortedPayload struct {
	Reason  string       `json:"reason"`
	Members []PlayerInfo `json:"members"`
}

type RoomResetPayload struct {
	Members []PlayerInfo `json:"members"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
