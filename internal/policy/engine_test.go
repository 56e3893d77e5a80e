package policy

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartridge/capture/internal/game"
	"github.com/cartridge/capture/internal/sim"
)

// lane is a single corridor with red raiding east into blue's half (x >= 5).
const lane = `%%%%%%%%%%
%1   ...2%
%3.%%%%.4%
%%%%%%%%%%`

// raidingLane plays the reference engine until red's raider stands at (6,2)
// with blue's live defender right next to it at (7,2).
func raidingLane(t *testing.T) (*sim.Game, game.Seat) {
	t.Helper()
	l := sim.MustParseLayout(lane)
	g := sim.New(l)

	play := func(agent int, actions ...game.Action) {
		for _, a := range actions {
			var err error
			g, err = g.Apply(agent, a)
			require.NoError(t, err)
		}
	}
	play(0, game.East, game.East, game.East, game.East, game.East)
	play(1, game.West)

	require.Equal(t, game.Pos(6, 2), g.Agent(0).Pos)
	require.True(t, g.Agent(0).Pacman)
	require.Equal(t, game.Pos(7, 2), g.Agent(1).Pos)
	require.Zero(t, g.Agent(1).Scared)

	return g, game.NewSeat(0, true, sim.NewDistancer(l))
}

func TestPriorityStepOntoLiveGhostIsLethal(t *testing.T) {
	g, seat := raidingLane(t)
	p := NewPriority(0)

	scores := map[game.Action]float64{}
	for _, a := range g.LegalActions(0) {
		next, err := Successor(g, 0, a)
		require.NoError(t, err)
		score, rule := p.Explain(seat, g, next, a)
		scores[a] = score
		if a == game.East {
			assert.Equal(t, "lethal", rule)
			// The engine has already sent the raider home in this successor.
			assert.Equal(t, g.Layout().Starts[0], next.Agent(0).Pos)
		}
	}

	require.Contains(t, scores, game.East)
	assert.Equal(t, float64(PriorityLethal), scores[game.East])
	for a, s := range scores {
		if a != game.East {
			assert.Greater(t, s, scores[game.East], "%s", a)
		}
	}
	assert.Equal(t, float64(PriorityThreatened), scores[game.Stop])
}

func TestOffenseFeaturesSeeLiveGhostAtDestination(t *testing.T) {
	g, seat := raidingLane(t)

	score := func(a game.Action) float64 {
		next, err := Successor(g, 0, a)
		require.NoError(t, err)
		f, err := OffenseFeatures(seat, g, next, a)
		require.NoError(t, err)
		return f.Dot(Weights(OffenseWeights))
	}

	east, west := score(game.East), score(game.West)
	assert.Less(t, east, west)
	assert.Less(t, east, 0.0)
}

func TestAgentsRetreatFromLiveGhost(t *testing.T) {
	g, seat := raidingLane(t)

	for _, agent := range []Agent{
		NewNomNom(seat, Options{Rand: rand.New(rand.NewSource(1))}),
		NewOffense(seat, Options{Rand: rand.New(rand.NewSource(1))}),
	} {
		t.Run(agent.Name(), func(t *testing.T) {
			a, err := agent.ChooseAction(context.Background(), g)
			require.NoError(t, err)
			assert.Equal(t, game.West, a)
		})
	}
}
