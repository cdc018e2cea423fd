package players

// Player is one live connection's identity. Score and Ready reset at each
// new game; BestAccuracyMs survives across games for the connection's
// lifetime and flows into the leaderboard on game end or disconnect.
type Player struct {
	ID             string
	Username       string
	Color          string
	RoomID         string
	Ready          bool
	Score          int
	BestAccuracyMs int64 // -1 until the player has a scored round
}

// New creates a player with no best accuracy recorded yet.
func New(id, username, color string) *Player {
	return &Player{
		ID:             id,
		Username:       username,
		Color:          color,
		BestAccuracyMs: -1,
	}
}

// HasBest reports whether the player has recorded any accuracy.
func (p *Player) HasBest() bool {
	return p.BestAccuracyMs >= 0
}

// UpdateBest lowers the recorded best accuracy if the new value beats it.
// Returns true if the best changed.
func (p *Player) UpdateBest(accuracyMs int64) bool {
	if !p.HasBest() || accuracyMs < p.BestAccuracyMs {
		p.BestAccuracyMs = accuracyMs
		return true
	}
	return false
}
