package game

import (
	"sort"

	"github.com/rs/zerolog/log"

	"timingchallenge/internal/events"
	"timingchallenge/internal/players"
	"timingchallenge/internal/rooms"
)

// All transition functions below run with the room lock held.

// startGameLocked begins a game: scores and readiness reset, start notice,
// then the first color round after the countdown.
func (c *Coordinator) startGameLocked(room *rooms.Room) {
	room.Status = rooms.StatusCountdown
	room.RoundNumber = 1
	room.RoundType = rooms.RoundColor
	room.ClearRound()
	room.Roster.ResetAll()

	log.Info().Str("room", room.ID).Int("members", room.Roster.Count()).Msg("game starting")

	c.notifier.Broadcast(room.Roster.IDs(), events.Outbound{
		Type: events.TypeGameStarting,
		Data: events.GameStartingPayload{
			CountdownSeconds: int(c.cfg.Countdown.Seconds()),
			Members:          events.PlayerInfos(room.Roster.List()),
		},
	})

	c.schedule(room, c.cfg.Countdown, c.beginRoundLocked)
}

// beginRoundLocked opens a round: fresh random wait and hidden target,
// round parameters broadcast so clients render their own countdown, and a
// submission deadline armed past the go signal.
func (c *Coordinator) beginRoundLocked(room *rooms.Room) {
	room.ClearRound()

	wait := c.draw(c.cfg.MinWait, c.cfg.MaxWait)
	target := c.draw(c.cfg.MinTarget, c.cfg.MaxTarget)
	room.StartTime = c.clock.Now().Add(wait)
	room.TargetOffsetMs = target.Milliseconds()

	if room.RoundType == rooms.RoundColor {
		room.Status = rooms.StatusColorRound
	} else {
		room.Status = rooms.StatusFontRound
	}

	log.Debug().
		Str("room", room.ID).
		Int("round", room.RoundNumber).
		Str("type", string(room.RoundType)).
		Int64("wait_ms", wait.Milliseconds()).
		Int64("target_ms", room.TargetOffsetMs).
		Msg("round started")

	c.notifier.Broadcast(room.Roster.IDs(), events.Outbound{
		Type: events.TypeRoundStarted,
		Data: events.RoundStartedPayload{
			RoundNumber:    room.RoundNumber,
			RoundType:      string(room.RoundType),
			WaitTimeMs:     wait.Milliseconds(),
			TargetOffsetMs: room.TargetOffsetMs,
		},
	})

	c.schedule(room, wait+c.cfg.SubmitTimeout, c.deadlineLocked)
}

// deadlineLocked force-completes a round whose members never all
// submitted. The ActiveRound guard makes a late-firing deadline a no-op
// after the round already ended.
func (c *Coordinator) deadlineLocked(room *rooms.Room) {
	if !room.ActiveRound() {
		return
	}
	log.Debug().Str("room", room.ID).Int("round", room.RoundNumber).Msg("submission deadline reached")
	c.endRoundLocked(room)
}

// endRoundLocked ranks results, updates bests, and either schedules the
// next round or ends the game immediately after the final font round.
func (c *Coordinator) endRoundLocked(room *rooms.Room) {
	c.cancelTimer(room.ID)

	finishedType := room.RoundType
	room.Status = rooms.StatusScores

	results := room.Results()
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].AccuracyMs < results[j].AccuracyMs
	})

	for _, res := range results {
		if p := room.Roster.Get(res.PlayerID); p != nil {
			p.UpdateBest(res.AccuracyMs)
		}
	}

	ranked := make([]events.RankedResult, 0, room.Roster.Count())
	for _, res := range results {
		reaction, accuracy := res.ReactionOffsetMs, res.AccuracyMs
		ranked = append(ranked, events.RankedResult{
			PlayerID:         res.PlayerID,
			Username:         res.Username,
			ReactionOffsetMs: &reaction,
			AccuracyMs:       &accuracy,
			Score:            res.Score,
			RoundType:        string(finishedType),
		})
	}
	// Members the deadline caught rank below every submitter, in join
	// order, scoring nothing this round.
	for _, p := range room.Roster.List() {
		if !room.HasResult(p.ID) {
			ranked = append(ranked, events.RankedResult{
				PlayerID:  p.ID,
				Username:  p.Username,
				RoundType: string(finishedType),
			})
		}
	}

	next, hasNext := c.advance(room, finishedType)

	var nextType *string
	if hasNext {
		s := string(next)
		nextType = &s
	}
	c.notifier.Broadcast(room.Roster.IDs(), events.Outbound{
		Type: events.TypeRoundEnded,
		Data: events.RoundEndedPayload{
			RankedResults: ranked,
			Scoreboard:    scoreboard(room.Roster.List()),
			NextRoundType: nextType,
		},
	})

	if !hasNext {
		c.endGameLocked(room)
		return
	}

	room.RoundType = next
	c.schedule(room, c.cfg.InterRoundDelay, c.beginRoundLocked)
}

// advance computes the phase after a finished round: color hands over to
// font within the same pair; font hands over to the next pair's color, or
// to game end after the final pair. RoundNumber is updated in place.
func (c *Coordinator) advance(room *rooms.Room, finished rooms.RoundType) (rooms.RoundType, bool) {
	if finished == rooms.RoundColor {
		return rooms.RoundFont, true
	}
	if room.RoundNumber < c.cfg.RoundPairs {
		room.RoundNumber++
		return rooms.RoundColor, true
	}
	return "", false
}

// endGameLocked broadcasts final standings plus the global top ten, hands
// every member's best to the leaderboard, and schedules the room reset.
// Persistence and the leaderboard read run off the event path; their
// completion never gates game state.
func (c *Coordinator) endGameLocked(room *rooms.Room) {
	room.Status = rooms.StatusEnded

	members := room.Roster.List()
	standings := make([]*players.Player, len(members))
	copy(standings, members)
	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Score > standings[j].Score
	})

	entries := make([]events.StandingEntry, len(standings))
	type bestRecord struct {
		id, username string
		accuracy     int64
	}
	var bests []bestRecord
	for i, p := range standings {
		entries[i] = events.StandingEntry{
			PlayerID: p.ID,
			Username: p.Username,
			Score:    p.Score,
		}
		if p.HasBest() {
			best := p.BestAccuracyMs
			entries[i].BestAccuracyMs = &best
			bests = append(bests, bestRecord{p.ID, p.Username, p.BestAccuracyMs})
		}
	}

	memberIDs := room.Roster.IDs()
	log.Info().Str("room", room.ID).Msg("game ended")

	// Each write is its own goroutine and nothing waits on them: a stalled
	// store cannot hold game_ended back past the reset timer. The broadcast
	// only waits on the bounded TopN read, so the top rows may not include
	// this game's bests yet.
	for _, b := range bests {
		go c.persistBest(b.id, b.username, b.accuracy)
	}

	go func() {
		c.notifier.Broadcast(memberIDs, events.Outbound{
			Type: events.TypeGameEnded,
			Data: events.GameEndedPayload{
				FinalStandings: entries,
				TopLeaderboard: c.topLeaderboard(),
			},
		})
	}()

	c.schedule(room, c.cfg.ResetDelay, c.resetRoomLocked)
}

// resetRoomLocked returns the room to the lobby with scores, readiness and
// round state cleared; membership is kept.
func (c *Coordinator) resetRoomLocked(room *rooms.Room) {
	room.Status = rooms.StatusLobby
	room.RoundNumber = 0
	room.RoundType = ""
	room.ClearRound()
	room.Roster.ResetAll()

	log.Debug().Str("room", room.ID).Msg("room reset to lobby")

	c.notifier.Broadcast(room.Roster.IDs(), events.Outbound{
		Type: events.TypeRoomReset,
		Data: events.RoomResetPayload{
			Members: events.PlayerInfos(room.Roster.List()),
		},
	})
}

// abortLocked discards the in-flight game and returns the room to the
// lobby. No partial scores are awarded or persisted for the aborted round.
func (c *Coordinator) abortLocked(room *rooms.Room, reason string) {
	c.cancelTimer(room.ID)
	room.TimerEpoch++
	room.Status = rooms.StatusLobby
	room.RoundNumber = 0
	room.RoundType = ""
	room.ClearRound()
	room.Roster.ResetAll()

	log.Info().Str("room", room.ID).Str("reason", reason).Msg("game aborted")

	c.notifier.Broadcast(room.Roster.IDs(), events.Outbound{
		Type: events.TypeGameAborted,
		Data: events.GameAbortedPayload{
			Reason:  reason,
			Members: events.PlayerInfos(room.Roster.List()),
		},
	})
}

func (c *Coordinator) topLeaderboard() []events.LeaderboardRow {
	ctx, cancel := contextWithStoreTimeout()
	defer cancel()
	top, err := c.store.TopN(ctx, 10)
	if err != nil {
		log.Error().Err(err).Msg("leaderboard read failed")
		return nil
	}
	rows := make([]events.LeaderboardRow, len(top))
	for i, e := range top {
		rows[i] = events.LeaderboardRow{
			Username:       e.Username,
			BestAccuracyMs: e.BestAccuracyMs,
			GamesPlayed:    e.GamesPlayed,
		}
	}
	return rows
}

// scoreboard is the room's running score table, best first, join order on
// ties.
func scoreboard(members []*players.Player) []events.ScoreboardEntry {
	sorted := make([]*players.Player, len(members))
	copy(sorted, members)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	board := make([]events.ScoreboardEntry, len(sorted))
	for i, p := range sorted {
		board[i] = events.ScoreboardEntry{
			PlayerID: p.ID,
			Username: p.Username,
			Score:    p.Score,
		}
	}
	return board
}
