package rooms

import "errors"

// User-facing join failures. Returned privately to the requester and never
// fatal.
var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomFull       = errors.New("room is full")
	ErrGameInProgress = errors.New("game already in progress")
)
