package game

import "timingchallenge/internal/events"

// Notifier delivers outbound events. The WebSocket gateway implements it
// in production; tests use a recorder. Implementations must not block.
type Notifier interface {
	// Broadcast sends the event to every listed player.
	Broadcast(playerIDs []string, out events.Outbound)
	// Send delivers a private event to one player.
	Send(playerID string, out events.Outbound)
}
