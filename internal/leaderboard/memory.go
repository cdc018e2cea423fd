package leaderboard

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Memory is the in-process Store used when no database is configured, and
// in tests. Same upsert semantics as Postgres.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*Entry
}

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]*Entry),
	}
}

func (m *Memory) UpsertBest(_ context.Context, identityKey, username string, accuracyMs int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	e, ok := m.entries[identityKey]
	if !ok {
		m.entries[identityKey] = &Entry{
			IdentityKey:    identityKey,
			Username:       username,
			BestAccuracyMs: accuracyMs,
			GamesPlayed:    1,
			LastPlayedAt:   now,
		}
		return nil
	}

	e.Username = username
	e.GamesPlayed++
	e.LastPlayedAt = now
	if accuracyMs < e.BestAccuracyMs {
		e.BestAccuracyMs = accuracyMs
	}
	return nil
}

func (m *Memory) TopN(_ context.Context, n int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := make([]Entry, 0, len(m.entries))
	for _, e := range m.entries {
		entries = append(entries, *e)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].BestAccuracyMs < entries[j].BestAccuracyMs
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}
