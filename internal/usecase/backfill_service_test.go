package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/last-man-standing/internal/domain/player"
)

func TestBackfillService_NormalizeTeam(t *testing.T) {
	t.Parallel()

	f := newPoolFixture(t, round9Kickoff)
	tests := map[string]string{
		"Arsenal":         "Arsenal FC",
		"Brighton":        "Brighton & Hove Albion FC",
		"Sunderland":      "Sunderland AFC",
		" Everton ":       "Everton FC",
		"Leeds United FC": "Leeds United FC",
		"":                "",
	}
	for raw, want := range tests {
		if got := f.backfill.NormalizeTeam(raw); got != want {
			t.Fatalf("NormalizeTeam(%q): expected %q, got %q", raw, want, got)
		}
	}
}

func TestBackfillService_ImportHistory(t *testing.T) {
	t.Parallel()

	f := newPoolFixture(t, round9Kickoff)
	ctx := context.Background()
	if _, err := f.picking.RegisterPlayer(ctx, "Cara"); err != nil {
		t.Fatalf("register: %v", err)
	}

	input := ImportHistoryInput{
		FirstRound:  1,
		CycleLength: 3,
		Entries: []BackfillEntry{
			{Name: "Alice", Teams: []string{"Arsenal", "Chelsea", "Liverpool"}},
			{Name: "Bob", Teams: []string{"Fulham", "Brentford"}},
			{Name: "Cara", Teams: []string{"Everton", "West Ham", "Newcastle"}},
		},
	}

	first, err := f.backfill.ImportHistory(ctx, input)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if first.PlayersCreated != 2 || first.PlayersUpdated != 1 || first.PicksCreated != 8 || first.PicksExisting != 0 {
		t.Fatalf("unexpected first import: %+v", first)
	}

	alice, _, _ := f.players.Get(ctx, "Alice")
	if alice.Status != player.StatusActive || len(alice.UsedTeams) != 3 || alice.UsedTeams[2] != "Liverpool FC" {
		t.Fatalf("unexpected Alice: %+v", alice)
	}
	bob, _, _ := f.players.Get(ctx, "Bob")
	if bob.Status != player.StatusEliminated || bob.EliminatedRound == nil || *bob.EliminatedRound != 2 {
		t.Fatalf("unexpected Bob: %+v", bob)
	}
	cara, _, _ := f.players.Get(ctx, "Cara")
	if cara.Status != player.StatusActive || cara.UsedTeams[1] != "West Ham United FC" {
		t.Fatalf("unexpected Cara: %+v", cara)
	}
	bobPick, found, _ := f.picks.GetByPlayerAndRound(ctx, "Bob", 2)
	if !found || bobPick.Team != "Brentford FC" {
		t.Fatalf("unexpected Bob round 2 pick: %+v found=%v", bobPick, found)
	}

	second, err := f.backfill.ImportHistory(ctx, input)
	if err != nil {
		t.Fatalf("re-import: %v", err)
	}
	if second.PlayersCreated != 0 || second.PlayersUpdated != 0 || second.PicksCreated != 0 || second.PicksExisting != 8 {
		t.Fatalf("re-import must be a no-op, got %+v", second)
	}
}

func TestBackfillService_ImportHistory_InvalidInput(t *testing.T) {
	t.Parallel()

	f := newPoolFixture(t, round9Kickoff)
	tests := []ImportHistoryInput{
		{FirstRound: 0, CycleLength: 3},
		{FirstRound: 1, CycleLength: 0},
		{FirstRound: 1, CycleLength: 2, Entries: []BackfillEntry{{Name: " ", Teams: []string{"Arsenal"}}}},
		{FirstRound: 1, CycleLength: 2, Entries: []BackfillEntry{{Name: "Alice", Teams: []string{"Arsenal", "Chelsea", "Fulham"}}}},
		{FirstRound: 1, CycleLength: 2, Entries: []BackfillEntry{{Name: "Alice"}}},
	}
	for i, input := range tests {
		if _, err := f.backfill.ImportHistory(context.Background(), input); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
}
