package metrics

import (
	"time"

	"github.com/rs/zerolog"
)

// Collector emits match metrics as structured log events
type Collector struct {
	logger zerolog.Logger
}

func NewCollector(logger zerolog.Logger) *Collector {
	return &Collector{
		logger: logger,
	}
}

// Track one agent decision
func (c *Collector) Decision(matchID string, agent int, name string, action string, score float64, latency time.Duration) {
	c.logger.Debug().
		Str("metric", "decision").
		Str("match_id", matchID).
		Int("agent", agent).
		Str("variant", name).
		Str("action", action).
		Float64("score", score).
		Dur("latency", latency).
		Msg("Decision metric")
}

// Track an agent overrunning its move budget
func (c *Collector) MoveTimeout(matchID string, agent int, latency time.Duration, warnings int) {
	c.logger.Warn().
		Str("metric", "move_timeout").
		Str("match_id", matchID).
		Int("agent", agent).
		Dur("latency", latency).
		Int("warnings", warnings).
		Msg("Move budget exceeded")
}

// Track the end of a match
func (c *Collector) MatchFinished(matchID string, winner string, score float64, moves int, duration time.Duration) {
	c.logger.Info().
		Str("metric", "match_finished").
		Str("match_id", matchID).
		Str("winner", winner).
		Float64("score", score).
		Int("moves", moves).
		Dur("duration", duration).
		Msg("Match finished metric")
}
