// Package leaderboard is the durable, cross-game record of each identity's
// best-ever accuracy.
package leaderboard

import (
	"context"
	"time"
)

// Entry is one row of the leaderboard, keyed by connection identity.
type Entry struct {
	IdentityKey    string    `json:"identityKey"`
	Username       string    `json:"username"`
	BestAccuracyMs int64     `json:"bestAccuracyMs"`
	GamesPlayed    int       `json:"gamesPlayed"`
	LastPlayedAt   time.Time `json:"lastPlayedAt"`
}

// Store persists best accuracies. From the coordinator's point of view
// writes are fire-and-forget: failures are logged and never roll back
// in-memory game state.
type Store interface {
	// UpsertBest inserts the identity with gamesPlayed 1, or increments
	// gamesPlayed and lowers bestAccuracyMs if the new value beats the
	// stored one. bestAccuracyMs never increases.
	UpsertBest(ctx context.Context, identityKey, username string, accuracyMs int64) error

	// TopN returns up to n entries ordered ascending by best accuracy.
	TopN(ctx context.Context, n int) ([]Entry, error)
}
