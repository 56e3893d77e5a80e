package trace

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Record(t *testing.T) {
	store := NewMemoryStore(100)
	ctx := context.Background()

	d := &Decision{
		MatchID: "match-1",
		Turn:    0,
		Agent:   0,
		Name:    "nomnom",
		Action:  "East",
		Score:   997,
		Candidates: []Candidate{
			{Action: "East", Score: 997},
			{Action: "Stop", Score: 996},
		},
		Elapsed: 2 * time.Millisecond,
	}

	require.NoError(t, store.Record(ctx, d))
	assert.NotEmpty(t, d.ID)
	assert.False(t, d.Timestamp.IsZero())

	got, err := store.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d, got)

	assert.Error(t, store.Record(ctx, d), "the same id cannot be recorded twice")
	assert.Error(t, store.Record(ctx, nil))
}

func TestMemoryStore_GetMissing(t *testing.T) {
	store := NewMemoryStore(0)

	_, err := store.Get(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryStore_ForAgent(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	for turn := 0; turn < 6; turn++ {
		require.NoError(t, store.Record(ctx, &Decision{MatchID: "m", Turn: turn, Agent: turn % 2, Action: "North"}))
	}
	require.NoError(t, store.Record(ctx, &Decision{MatchID: "other", Agent: 0, Action: "South"}))

	red, err := store.ForAgent(ctx, "m", 0)
	require.NoError(t, err)
	require.Len(t, red, 3)
	for i, d := range red {
		assert.Equal(t, i*2, d.Turn, "decisions come back in recording order")
	}

	none, err := store.ForAgent(ctx, "m", 3)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryStore_Stats(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	records := []*Decision{
		{MatchID: "m", Agent: 0, Action: "East", Elapsed: 10 * time.Millisecond},
		{MatchID: "m", Agent: 1, Action: "West", Elapsed: 30 * time.Millisecond},
		{MatchID: "m", Agent: 0, Action: "Stop", Elapsed: 2 * time.Second, Timeout: true},
		{MatchID: "x", Agent: 2, Action: "East", Elapsed: time.Millisecond},
	}
	for _, d := range records {
		require.NoError(t, store.Record(ctx, d))
	}

	stats, err := store.Stats(ctx, "m")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), stats.Total)
	assert.Equal(t, uint64(2), stats.ByAgent[0])
	assert.Equal(t, uint64(1), stats.ByAction["West"])
	assert.Equal(t, uint64(1), stats.Timeouts)
	assert.Equal(t, (2*time.Second+40*time.Millisecond)/3, stats.MeanElapsed)
	require.NotNil(t, stats.Oldest)
	require.NotNil(t, stats.Newest)
	assert.False(t, stats.Newest.Before(*stats.Oldest))

	all, err := store.Stats(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, uint64(4), all.Total)
	assert.Equal(t, uint64(2), all.ByAction["East"])

	empty, err := store.Stats(ctx, "missing")
	require.NoError(t, err)
	assert.Zero(t, empty.Total)
	assert.Zero(t, empty.MeanElapsed)
	assert.Nil(t, empty.Oldest)
}

func TestMemoryStore_Eviction(t *testing.T) {
	store := NewMemoryStore(3)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		d := &Decision{ID: fmt.Sprintf("d-%d", i), MatchID: "m", Agent: 0, Turn: i}
		require.NoError(t, store.Record(ctx, d))
		ids = append(ids, d.ID)
	}

	assert.Equal(t, 3, store.Len())
	_, err := store.Get(ctx, ids[0])
	assert.Error(t, err, "oldest decisions are evicted first")
	_, err = store.Get(ctx, ids[4])
	assert.NoError(t, err)

	kept, err := store.ForAgent(ctx, "m", 0)
	require.NoError(t, err)
	require.Len(t, kept, 3)
	assert.Equal(t, 2, kept[0].Turn)
}

func TestMemoryStore_Clear(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, store.Record(ctx, &Decision{MatchID: "a", Agent: i}))
	}
	require.NoError(t, store.Record(ctx, &Decision{MatchID: "b", Agent: 0}))

	n, err := store.Clear(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, uint64(4), n)
	assert.Equal(t, 1, store.Len())

	left, err := store.ForAgent(ctx, "a", 0)
	require.NoError(t, err)
	assert.Empty(t, left)

	n, err = store.Clear(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)
	assert.Zero(t, store.Len())
}
