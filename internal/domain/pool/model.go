package pool

import (
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/last-man-standing/internal/domain/player"
)

const DefaultEntryFee int64 = 10

var ErrVersionConflict = errors.New("settings version conflict")

// Settings is the single aggregate record of the pool.
type Settings struct {
	RolloverMultiplier int
	Cycle              int
	// LastRolloverRound is the round whose rollover was last applied. Zero when
	// no rollover happened since the last hard reset.
	LastRolloverRound int
	Version           int64
	UpdatedAt         time.Time
}

func DefaultSettings(now time.Time) Settings {
	return Settings{
		RolloverMultiplier: 1,
		Cycle:              1,
		UpdatedAt:          now,
	}
}

func (s Settings) Validate() error {
	if s.RolloverMultiplier < 1 {
		return fmt.Errorf("rollover multiplier must be >= 1, got %d", s.RolloverMultiplier)
	}
	if s.Cycle < 1 {
		return fmt.Errorf("cycle must be >= 1, got %d", s.Cycle)
	}
	return nil
}

// Rollover returns the settings after a cycle with no survivor ended in round.
func (s Settings) Rollover(round int, now time.Time) Settings {
	out := s
	out.RolloverMultiplier++
	out.Cycle++
	out.LastRolloverRound = round
	out.UpdatedAt = now
	return out
}

// Reset returns the settings after an administrator hard reset.
func (s Settings) Reset(now time.Time) Settings {
	out := s
	out.RolloverMultiplier = 1
	out.Cycle++
	out.LastRolloverRound = 0
	out.UpdatedAt = now
	return out
}

// NextCycle starts a new cycle keeping the multiplier.
func (s Settings) NextCycle(now time.Time) Settings {
	out := s
	out.Cycle++
	out.UpdatedAt = now
	return out
}

// Pot is the prize pot of the running cycle.
type Pot struct {
	PaidPlayers int
	EntryFee    int64
	Multiplier  int
	Amount      int64
}

// ComputePot counts players that entered the cycle (active or eliminated) and
// multiplies by the fee and the rollover multiplier.
func ComputePot(players []player.Player, entryFee int64, multiplier int) Pot {
	if multiplier < 1 {
		multiplier = 1
	}
	paid := 0
	for _, p := range players {
		if p.Paid() {
			paid++
		}
	}
	return Pot{
		PaidPlayers: paid,
		EntryFee:    entryFee,
		Multiplier:  multiplier,
		Amount:      int64(paid) * entryFee * int64(multiplier),
	}
}
