package game

// Seat is the persistent identity of one agent for the length of a match: its
// index, its team and the engine's distance cache.
type Seat struct {
	Index     int
	Red       bool
	Distancer Distancer
}

// NewSeat creates a seat for agent index on the given team.
func NewSeat(index int, red bool, d Distancer) Seat {
	return Seat{Index: index, Red: red, Distancer: d}
}

// Self returns this seat's agent state in s.
func (st Seat) Self(s State) AgentState {
	return s.Agent(st.Index)
}

// Food returns the pellets this team is trying to eat, which lie on the
// opposing half.
func (st Seat) Food(s State) []Position {
	return s.Food(!st.Red)
}

// Defending returns the pellets on this team's own half.
func (st Seat) Defending(s State) []Position {
	return s.Food(st.Red)
}

// Capsules returns the capsules this team can eat.
func (st Seat) Capsules(s State) []Position {
	return s.Capsules(!st.Red)
}

// Score returns the score differential from this team's point of view.
func (st Seat) Score(s State) float64 {
	if st.Red {
		return s.Score()
	}
	return -s.Score()
}

// Team returns the indices of this seat's team, in index order.
func (st Seat) Team(s State) []int {
	return members(s, st.Red)
}

// Opponents returns the indices of the opposing team, in index order.
func (st Seat) Opponents(s State) []int {
	return members(s, !st.Red)
}

// Destination returns the cell this seat's agent steps into when it plays a
// from s. An engine may already have sent the agent home in the successor, so
// the cell comes from the move rather than from the successor.
func (st Seat) Destination(s State, a Action) Position {
	return st.Self(s).Pos.NearestPoint().Add(a)
}

// Distance returns the maze distance between two positions. Positions are
// snapped to cells first.
func (st Seat) Distance(a, b Position) int {
	return st.Distancer.Distance(a.NearestPoint(), b.NearestPoint())
}

func members(s State, red bool) []int {
	var out []int
	for i := 0; i < s.NumAgents(); i++ {
		if s.IsRed(i) == red {
			out = append(out, i)
		}
	}
	return out
}
