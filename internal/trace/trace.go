package trace

import (
	"context"
	"time"
)

// Candidate is one scored action an agent considered
type Candidate struct {
	Action string  `json:"action"`
	Score  float64 `json:"score"`
}

// Decision represents a single agent move recorded during a match
type Decision struct {
	ID         string        `json:"id"`
	MatchID    string        `json:"match_id"`
	Turn       int           `json:"turn"`
	Agent      int           `json:"agent"`
	Name       string        `json:"name"`
	Action     string        `json:"action"`
	Score      float64       `json:"score"`
	Candidates []Candidate   `json:"candidates"`
	Elapsed    time.Duration `json:"elapsed"`
	Timeout    bool          `json:"timeout"`
	Timestamp  time.Time     `json:"timestamp"`
}

// Stats represents decision trace statistics
type Stats struct {
	Total       uint64
	ByAgent     map[int]uint64
	ByAction    map[string]uint64
	MeanElapsed time.Duration
	Timeouts    uint64
	Oldest      *time.Time
	Newest      *time.Time
}

// Store defines the interface for decision trace implementations
type Store interface {
	// Record a single decision
	Record(ctx context.Context, d *Decision) error

	// Get a decision by ID
	Get(ctx context.Context, id string) (*Decision, error)

	// ForAgent returns an agent's decisions in the order they were recorded
	ForAgent(ctx context.Context, matchID string, agent int) ([]*Decision, error)

	// Stats over the decisions of one match, or all matches when matchID is empty
	Stats(ctx context.Context, matchID string) (*Stats, error)

	// Clear removes the decisions of one match, or everything when matchID is empty
	Clear(ctx context.Context, matchID string) (uint64, error)
}
