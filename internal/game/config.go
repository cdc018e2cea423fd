package game

import "time"

// Config tunes the room/round state machine. Defaults match the reference
// behavior: rooms of up to 4, five color/font pairs (ten scored rounds),
// 3s countdown, 5s between rounds, 10s before the room resets.
type Config struct {
	MaxRoomSize int
	RoundPairs  int // one pair = one color round then one font round

	Countdown       time.Duration
	InterRoundDelay time.Duration
	ResetDelay      time.Duration

	// SubmitTimeout bounds a round after the go signal so a member who
	// never submits cannot stall the game forever.
	SubmitTimeout time.Duration

	// Random draw windows for the pre-signal wait and the hidden target.
	MinWait   time.Duration
	MaxWait   time.Duration
	MinTarget time.Duration
	MaxTarget time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxRoomSize:     4,
		RoundPairs:      5,
		Countdown:       3 * time.Second,
		InterRoundDelay: 5 * time.Second,
		ResetDelay:      10 * time.Second,
		SubmitTimeout:   15 * time.Second,
		MinWait:         1 * time.Second,
		MaxWait:         5 * time.Second,
		MinTarget:       200 * time.Millisecond,
		MaxTarget:       1000 * time.Millisecond,
	}
}
