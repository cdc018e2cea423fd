package players

import "sync"

// Roster is the ordered membership of one room. Order is join order, which
// is the tie-break order for standings.
type Roster struct {
	mu      sync.Mutex
	order   []string
	players map[string]*Player
}

func NewRoster() *Roster {
	return &Roster{
		players: make(map[string]*Player),
	}
}

func (r *Roster) Add(p *Player) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.players[p.ID]; exists {
		return
	}
	r.players[p.ID] = p
	r.order = append(r.order, p.ID)
}

func (r *Roster) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.players[id]; !exists {
		return false
	}
	delete(r.players, id)
	for i, pid := range r.order {
		if pid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

func (r *Roster) Get(id string) *Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.players[id]
}

func (r *Roster) Has(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.players[id]
	return exists
}

// List returns the members in join order.
func (r *Roster) List() []*Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]*Player, 0, len(r.order))
	for _, id := range r.order {
		list = append(list, r.players[id])
	}
	return list
}

// IDs returns member IDs in join order.
func (r *Roster) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

func (r *Roster) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

func (r *Roster) SetReady(id string, isReady bool) *Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.players[id]; ok {
		p.Ready = isReady
		return p
	}
	return nil
}

func (r *Roster) AllReady() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.players) == 0 {
		return false
	}
	for _, p := range r.players {
		if !p.Ready {
			return false
		}
	}
	return true
}

func (r *Roster) AddScore(id string, points int) *Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.players[id]; ok {
		p.Score += points
		return p
	}
	return nil
}

// ResetAll clears every member's score and readiness, keeping membership.
func (r *Roster) ResetAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.players {
		p.Score = 0
		p.Ready = false
	}
}
