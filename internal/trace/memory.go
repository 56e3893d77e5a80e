package trace

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Get for unknown IDs.
var ErrNotFound = errors.New("decision not found")

// MemoryStore implements an in-memory decision trace
type MemoryStore struct {
	mu         sync.RWMutex
	decisions  map[string]*Decision // ID -> Decision
	agentIndex map[agentKey][]string
	order      []string // IDs in recording order
	maxSize    int      // 0 keeps everything
}

type agentKey struct {
	match string
	agent int
}

// NewMemoryStore creates a trace holding at most maxSize decisions
func NewMemoryStore(maxSize int) *MemoryStore {
	return &MemoryStore{
		decisions:  make(map[string]*Decision),
		agentIndex: make(map[agentKey][]string),
		maxSize:    maxSize,
	}
}

// Record implements Store.Record
func (m *MemoryStore) Record(ctx context.Context, d *Decision) error {
	if d == nil {
		return errors.New("nil decision")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if _, exists := m.decisions[d.ID]; exists {
		return fmt.Errorf("decision %s already recorded", d.ID)
	}
	if d.Timestamp.IsZero() {
		d.Timestamp = time.Now()
	}

	m.decisions[d.ID] = d
	key := agentKey{match: d.MatchID, agent: d.Agent}
	m.agentIndex[key] = append(m.agentIndex[key], d.ID)
	m.order = append(m.order, d.ID)

	m.evictIfNeeded()
	return nil
}

// Get implements Store.Get
func (m *MemoryStore) Get(ctx context.Context, id string) (*Decision, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.decisions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return d, nil
}

// ForAgent implements Store.ForAgent
func (m *MemoryStore) ForAgent(ctx context.Context, matchID string, agent int) ([]*Decision, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := m.agentIndex[agentKey{match: matchID, agent: agent}]
	out := make([]*Decision, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.decisions[id])
	}
	return out, nil
}

// Stats implements Store.Stats
func (m *MemoryStore) Stats(ctx context.Context, matchID string) (*Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &Stats{
		ByAgent:  make(map[int]uint64),
		ByAction: make(map[string]uint64),
	}

	var elapsed time.Duration
	for _, id := range m.order {
		d := m.decisions[id]
		if matchID != "" && d.MatchID != matchID {
			continue
		}
		stats.Total++
		stats.ByAgent[d.Agent]++
		stats.ByAction[d.Action]++
		elapsed += d.Elapsed
		if d.Timeout {
			stats.Timeouts++
		}
		if stats.Oldest == nil {
			ts := d.Timestamp
			stats.Oldest = &ts
		}
		ts := d.Timestamp
		stats.Newest = &ts
	}
	if stats.Total > 0 {
		stats.MeanElapsed = elapsed / time.Duration(stats.Total)
	}
	return stats, nil
}

// Clear implements Store.Clear
func (m *MemoryStore) Clear(ctx context.Context, matchID string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var toDelete []string
	for _, id := range m.order {
		if matchID == "" || m.decisions[id].MatchID == matchID {
			toDelete = append(toDelete, id)
		}
	}
	for _, id := range toDelete {
		m.deleteDecision(id)
	}
	return uint64(len(toDelete)), nil
}

// Len returns the number of decisions held
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.decisions)
}

// Helper methods

func (m *MemoryStore) evictIfNeeded() {
	if m.maxSize <= 0 {
		return
	}
	for len(m.order) > m.maxSize {
		m.deleteDecision(m.order[0])
	}
}

func (m *MemoryStore) deleteDecision(id string) {
	d, exists := m.decisions[id]
	if !exists {
		return
	}

	delete(m.decisions, id)

	key := agentKey{match: d.MatchID, agent: d.Agent}
	if ids := removeString(m.agentIndex[key], id); len(ids) > 0 {
		m.agentIndex[key] = ids
	} else {
		delete(m.agentIndex, key)
	}

	m.order = removeString(m.order, id)
}

func removeString(slice []string, item string) []string {
	for i, s := range slice {
		if s == item {
			return append(slice[:i], slice[i+1:]...)
		}
	}
	return slice
}
