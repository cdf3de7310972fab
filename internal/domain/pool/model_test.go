package pool

import (
	"testing"
	"time"

	"github.com/riskibarqy/last-man-standing/internal/domain/player"
)

func TestComputePot(t *testing.T) {
	players := []player.Player{
		{ID: "a", Status: player.StatusActive},
		{ID: "b", Status: player.StatusActive},
		{ID: "c", Status: player.StatusEliminated},
		{ID: "d", Status: player.StatusEliminated},
		{ID: "e", Status: player.StatusActive},
		{ID: "f", Status: player.StatusPending},
	}

	pot := ComputePot(players, 10, 2)
	if pot.PaidPlayers != 5 {
		t.Fatalf("expected 5 paid players, got %d", pot.PaidPlayers)
	}
	if pot.Amount != 100 {
		t.Fatalf("expected pot 100, got %d", pot.Amount)
	}
}

func TestComputePot_ClampsMultiplier(t *testing.T) {
	pot := ComputePot([]player.Player{{ID: "a", Status: player.StatusActive}}, 10, 0)
	if pot.Multiplier != 1 || pot.Amount != 10 {
		t.Fatalf("expected multiplier clamp to 1, got %+v", pot)
	}
}

func TestSettings_Transitions(t *testing.T) {
	now := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	s := DefaultSettings(now)

	s = s.Rollover(12, now)
	if s.RolloverMultiplier != 2 || s.Cycle != 2 || s.LastRolloverRound != 12 {
		t.Fatalf("unexpected rollover settings: %+v", s)
	}

	s = s.NextCycle(now)
	if s.RolloverMultiplier != 2 || s.Cycle != 3 {
		t.Fatalf("unexpected next-cycle settings: %+v", s)
	}

	s = s.Reset(now)
	if s.RolloverMultiplier != 1 || s.Cycle != 4 || s.LastRolloverRound != 0 {
		t.Fatalf("unexpected reset settings: %+v", s)
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("expected valid settings: %v", err)
	}
}
