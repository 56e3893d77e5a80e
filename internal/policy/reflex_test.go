package policy

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cartridge/capture/internal/game"
)

func redSeat() game.Seat {
	return game.NewSeat(0, true, manhattan{})
}

func openBoard(actions ...game.Action) *boardState {
	b := newBoard(ghost(5, 5, true), hidden(false))
	b.legal[0] = actions
	return b
}

func TestReflex_SingleLegalAction(t *testing.T) {
	b := openBoard(game.North)
	agent := NewReflex("test", redSeat(), tableEval{game.North: -50, game.South: 100}, Options{Rand: rand.New(rand.NewSource(1))})

	action, err := agent.ChooseAction(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, game.North, action)
}

func TestReflex_NeverPicksLowerScore(t *testing.T) {
	b := openBoard(game.South, game.East, game.West)
	eval := tableEval{game.East: 5, game.West: 5, game.South: 3}
	agent := NewReflex("test", redSeat(), eval, Options{Rand: rand.New(rand.NewSource(7))})

	seen := map[game.Action]int{}
	for i := 0; i < 200; i++ {
		action, err := agent.ChooseAction(context.Background(), b)
		require.NoError(t, err)
		seen[action]++
	}

	assert.Zero(t, seen[game.South])
	assert.Positive(t, seen[game.East])
	assert.Positive(t, seen[game.West])
}

func TestReflex_TiesCoveredAcrossSeeds(t *testing.T) {
	b := openBoard(game.Stop, game.North, game.South, game.East, game.West)
	eval := tableEval{game.North: 2, game.South: 2, game.West: 2, game.East: 1, game.Stop: 0}

	seen := map[game.Action]int{}
	for seed := int64(0); seed < 100; seed++ {
		agent := NewReflex("test", redSeat(), eval, Options{Rand: rand.New(rand.NewSource(seed))})
		action, err := agent.ChooseAction(context.Background(), b)
		require.NoError(t, err)
		seen[action]++
	}

	assert.Len(t, seen, 3, "only the tied maximisers may be chosen")
	for _, a := range []game.Action{game.North, game.South, game.West} {
		assert.Positive(t, seen[a], "tied action %s never chosen", a)
	}
}

func TestReflex_ChoiceIsAlwaysLegal(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 100; trial++ {
		// Random non-empty subset of actions in random order.
		perm := rng.Perm(len(game.Actions))
		n := 1 + rng.Intn(len(perm))
		legal := make([]game.Action, 0, n)
		for _, i := range perm[:n] {
			legal = append(legal, game.Actions[i])
		}

		eval := tableEval{}
		for _, a := range game.Actions {
			eval[a] = float64(rng.Intn(3))
		}
		// An illegal action with the best score must still never be returned.
		for _, a := range game.Actions {
			if !contains(legal, a) {
				eval[a] = 100
			}
		}

		agent := NewReflex("test", redSeat(), eval, Options{Rand: rng})
		action, err := agent.ChooseAction(context.Background(), openBoard(legal...))
		require.NoError(t, err)
		assert.Contains(t, legal, action)
	}
}

func TestReflex_NoLegalActions(t *testing.T) {
	agent := NewReflex("test", redSeat(), tableEval{}, Options{})

	_, err := agent.ChooseAction(context.Background(), openBoard())
	require.Error(t, err)
	assert.True(t, errors.Is(err, game.ErrNoLegalActions))
}

func TestReflex_CancelledContext(t *testing.T) {
	agent := NewReflex("test", redSeat(), tableEval{}, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := agent.ChooseAction(ctx, openBoard(game.North))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestReflex_SuccessorErrorPropagates(t *testing.T) {
	boom := errors.New("malformed state")
	st := &mockState{}
	st.On("LegalActions", 0).Return([]game.Action{game.North, game.South})
	st.On("Successor", 0, mock.Anything).Return(nil, boom).Once()

	agent := NewReflex("test", redSeat(), tableEval{}, Options{})
	_, err := agent.ChooseAction(context.Background(), st)

	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	st.AssertNumberOfCalls(t, "Successor", 1)
}

func TestReflex_EvaluatesEveryAction(t *testing.T) {
	calls := 0
	b := openBoard(game.North, game.South, game.East)
	b.calls = &calls

	agent := NewReflex("test", redSeat(), tableEval{}, Options{})
	_, err := agent.ChooseAction(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestReflex_ObserverSeesDecision(t *testing.T) {
	var got []Decision
	obs := ObserverFunc(func(d Decision) { got = append(got, d) })

	b := openBoard(game.East, game.West)
	agent := NewReflex("test", redSeat(), tableEval{game.East: 4, game.West: 1}, Options{Observer: obs})

	action, err := agent.ChooseAction(context.Background(), b)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, game.East, action)
	assert.Equal(t, game.East, got[0].Chosen)
	assert.Equal(t, 4.0, got[0].Score)
	assert.Len(t, got[0].Candidates, 2)
	assert.Equal(t, "test", got[0].Name)
}

func TestSuccessor_SnapsHalfSteps(t *testing.T) {
	calls := 0
	b := openBoard(game.East)
	b.half = true
	b.calls = &calls

	next, err := Successor(b, 0, game.East)
	require.NoError(t, err)
	assert.Equal(t, game.Pos(6, 5), next.Agent(0).Pos)
	assert.Equal(t, 2, calls)
}

func TestSuccessor_WholeStepsAppliedOnce(t *testing.T) {
	calls := 0
	b := openBoard(game.North)
	b.calls = &calls

	next, err := Successor(b, 0, game.North)
	require.NoError(t, err)
	assert.Equal(t, game.Pos(5, 6), next.Agent(0).Pos)
	assert.Equal(t, 1, calls)
}

func TestRandomPolicy_UsesLegalActions(t *testing.T) {
	b := openBoard(game.North, game.West)
	p := NewRandom(redSeat(), Options{Rand: rand.New(rand.NewSource(3))})

	seen := map[game.Action]bool{}
	for i := 0; i < 100; i++ {
		action, err := p.ChooseAction(context.Background(), b)
		require.NoError(t, err)
		seen[action] = true
	}
	assert.Equal(t, map[game.Action]bool{game.North: true, game.West: true}, seen)
}

func TestRandomPolicy_NoLegalActions(t *testing.T) {
	p := NewRandom(redSeat(), Options{})
	_, err := p.ChooseAction(context.Background(), openBoard())
	assert.True(t, errors.Is(err, game.ErrNoLegalActions))
}

func contains(actions []game.Action, a game.Action) bool {
	for _, x := range actions {
		if x == a {
			return true
		}
	}
	return false
}
