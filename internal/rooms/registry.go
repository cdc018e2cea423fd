package rooms

import (
	"fmt"
	"sync"

	"timingchallenge/internal/players"
)

// Registry owns the set of active rooms. Matchmaking scans rooms in
// creation order; there is no upper bound on total rooms.
//
// Lock order is always registry before room.
type Registry struct {
	mu       sync.Mutex
	rooms    map[string]*Room
	order    []string
	capacity int
}

func NewRegistry(capacity int) *Registry {
	return &Registry{
		rooms:    make(map[string]*Room),
		capacity: capacity,
	}
}

func (reg *Registry) Capacity() int {
	return reg.capacity
}

// QuickMatch assigns the player to the first lobby-status room with space,
// creating a fresh room when every existing one is full or mid-game. The
// player must not currently be in a room.
func (reg *Registry) QuickMatch(p *players.Player) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	for _, id := range reg.order {
		room := reg.rooms[id]
		room.Lock()
		open := room.Status == StatusLobby && room.Roster.Count() < reg.capacity
		if open {
			room.Roster.Add(p)
			p.RoomID = room.ID
		}
		room.Unlock()
		if open {
			return room, nil
		}
	}

	room, err := reg.createLocked()
	if err != nil {
		return nil, err
	}
	room.Roster.Add(p)
	p.RoomID = room.ID
	return room, nil
}

// Create makes a fresh lobby room holding only the given player. The
// player must not currently be in a room.
func (reg *Registry) Create(p *players.Player) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, err := reg.createLocked()
	if err != nil {
		return nil, err
	}
	room.Roster.Add(p)
	p.RoomID = room.ID
	return room, nil
}

// Join adds the player to a specific room. The player must not currently
// be in a room. Fails with ErrRoomNotFound, ErrRoomFull or
// ErrGameInProgress.
func (reg *Registry) Join(p *players.Player, roomID string) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}

	room.Lock()
	defer room.Unlock()
	if room.Roster.Count() >= reg.capacity {
		return nil, ErrRoomFull
	}
	if room.Status != StatusLobby {
		return nil, ErrGameInProgress
	}
	room.Roster.Add(p)
	p.RoomID = room.ID
	return room, nil
}

func (reg *Registry) Get(roomID string) *Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return reg.rooms[roomID]
}

func (reg *Registry) Count() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.rooms)
}

// List returns all rooms in creation order.
func (reg *Registry) List() []*Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	list := make([]*Room, 0, len(reg.order))
	for _, id := range reg.order {
		list = append(list, reg.rooms[id])
	}
	return list
}

// DeleteIfEmpty tears the room down if its last member has left. Returns
// true when the room was removed.
func (reg *Registry) DeleteIfEmpty(roomID string) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[roomID]
	if !ok {
		return false
	}
	room.Lock()
	empty := room.Roster.Count() == 0
	room.Unlock()
	if !empty {
		return false
	}

	delete(reg.rooms, roomID)
	for i, id := range reg.order {
		if id == roomID {
			reg.order = append(reg.order[:i], reg.order[i+1:]...)
			break
		}
	}
	return true
}

func (reg *Registry) createLocked() (*Room, error) {
	// Try up to 10 times to generate a unique code
	for i := 0; i < 10; i++ {
		code, err := GenerateCode()
		if err != nil {
			return nil, fmt.Errorf("generating room code: %w", err)
		}
		if _, exists := reg.rooms[code]; exists {
			continue
		}
		room := newRoom(code)
		reg.rooms[code] = room
		reg.order = append(reg.order, code)
		return room, nil
	}
	return nil, fmt.Errorf("failed to generate unique room code after 10 attempts")
}
