package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/last-man-standing/internal/domain/match"
	"github.com/riskibarqy/last-man-standing/internal/domain/player"
	"github.com/riskibarqy/last-man-standing/internal/platform/logging"
)

func seedEliminated(t *testing.T, f *poolFixture, name string, round int, teams ...string) {
	t.Helper()
	item := player.Player{ID: name, Name: name, Status: player.StatusEliminated, UsedTeams: teams}
	if round > 0 {
		item.EliminatedRound = &round
	}
	if _, _, err := f.players.Create(context.Background(), item); err != nil {
		t.Fatalf("seed %s: %v", name, err)
	}
}

func TestBoardService_Board_HidesPicksBeforeReveal(t *testing.T) {
	t.Parallel()

	f := newPoolFixture(t, round9Kickoff.Add(-2*time.Hour), round9Matches()...)
	ctx := context.Background()
	submitAll(t, f, 9, map[string]string{"Alice": "Arsenal FC", "bob": "Chelsea FC"})
	if _, err := f.picking.RegisterPlayer(ctx, "Cara"); err != nil {
		t.Fatalf("register: %v", err)
	}
	seedEliminated(t, f, "Dan", 7, "Everton FC")
	seedEliminated(t, f, "Eve", 8, "Fulham FC")

	board, err := f.board.Board(ctx, Session{ViewerID: "Alice"}, 9)
	if err != nil {
		t.Fatalf("board: %v", err)
	}

	wantOrder := []string{"Alice", "bob", "Cara", "Eve", "Dan"}
	if len(board.Rows) != len(wantOrder) {
		t.Fatalf("expected %d rows, got %d", len(wantOrder), len(board.Rows))
	}
	for i, id := range wantOrder {
		if board.Rows[i].PlayerID != id {
			t.Fatalf("row %d: expected %s, got %s", i, id, board.Rows[i].PlayerID)
		}
	}

	alice, bob, cara := board.Rows[0], board.Rows[1], board.Rows[2]
	if alice.Team != "Arsenal FC" || alice.PickHidden {
		t.Fatalf("viewer must see own pick: %+v", alice)
	}
	if !bob.HasPicked || !bob.PickHidden || bob.Team != "" {
		t.Fatalf("other pick must be hidden before reveal: %+v", bob)
	}
	if cara.HasPicked {
		t.Fatalf("Cara has not picked: %+v", cara)
	}
	if board.Rows[3].EliminatedRound != 8 || board.Rows[4].EliminatedRound != 7 {
		t.Fatalf("unexpected eliminated rows: %+v", board.Rows[3:])
	}

	if !board.Deadline.Equal(round9Kickoff.Add(-time.Hour)) || !board.SubmissionOpen || board.RevealActive {
		t.Fatalf("unexpected window: deadline=%s open=%v reveal=%v", board.Deadline, board.SubmissionOpen, board.RevealActive)
	}
	if board.Pot.PaidPlayers != 4 || board.Pot.Amount != 40 || board.Pot.Currency != "£" {
		t.Fatalf("unexpected pot: %+v", board.Pot)
	}
	if len(board.Fixtures) != 3 || board.Fixtures[0].HomeTeam != "Arsenal FC" {
		t.Fatalf("unexpected fixtures: %+v", board.Fixtures)
	}
}

func TestBoardService_Board_RevealRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		now     time.Time
		session Session
		visible bool
	}{
		{name: "anonymous before reveal", now: round9Kickoff.Add(-45 * time.Minute), visible: false},
		{name: "anonymous after reveal", now: round9Kickoff.Add(-20 * time.Minute), visible: true},
		{name: "admin simulation", now: round9Kickoff.Add(-3 * time.Hour), session: Session{IsAdmin: true, SimulateReveal: true}, visible: true},
		{name: "simulation ignored for players", now: round9Kickoff.Add(-3 * time.Hour), session: Session{ViewerID: "Cara", SimulateReveal: true}, visible: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newPoolFixture(t, round9Kickoff.Add(-4*time.Hour), round9Matches()...)
			submitAll(t, f, 9, map[string]string{"Bob": "Chelsea FC"})
			f.setNow(tt.now)

			board, err := f.board.Board(context.Background(), tt.session, 9)
			if err != nil {
				t.Fatalf("board: %v", err)
			}
			row := board.Rows[0]
			if got := row.Team == "Chelsea FC"; got != tt.visible {
				t.Fatalf("expected visible=%v, got row %+v", tt.visible, row)
			}
			if row.PickHidden == tt.visible {
				t.Fatalf("PickHidden must mirror visibility: %+v", row)
			}
		})
	}
}

func TestBoardService_Board_AutoProcessFinishedRound(t *testing.T) {
	t.Parallel()

	f := newPoolFixture(t, round9Kickoff.Add(-2*time.Hour), append(round9Matches(), round10Matches()...)...)
	ctx := context.Background()
	submitAll(t, f, 9, map[string]string{"Alice": "Arsenal FC", "Bob": "Chelsea FC"})

	f.matches.Finish(9, "Arsenal FC", 2, 0)
	f.matches.Finish(9, "Brentford FC", 1, 0)
	f.matches.Finish(9, "Everton FC", 0, 0)
	f.setNow(round9Kickoff.Add(8 * time.Hour))

	board := f.autoBoard()

	got, err := board.Board(ctx, Session{}, 9)
	if err != nil {
		t.Fatalf("board: %v", err)
	}
	if got.State.Kind != CycleWinner || got.State.Winner != "Alice" {
		t.Fatalf("expected Alice to win, got %+v", got.State)
	}
	if got.Rows[0].PlayerID != "Alice" || got.Rows[0].Outcome != match.OutcomeWin {
		t.Fatalf("unexpected first row: %+v", got.Rows[0])
	}
	if got.Rows[1].Status != player.StatusEliminated || got.Rows[1].EliminatedRound != 9 || got.Rows[1].Outcome != match.OutcomeLose {
		t.Fatalf("unexpected second row: %+v", got.Rows[1])
	}
}

func TestBoardService_Board_IntegrityWarningAndErrors(t *testing.T) {
	t.Parallel()

	f := newPoolFixture(t, round9Kickoff.Add(-2*time.Hour), round9Matches()...)
	ctx := context.Background()
	seedEliminated(t, f, "Ghost", 0, "Everton FC")

	board, err := f.board.Board(ctx, Session{}, 9)
	if err != nil {
		t.Fatalf("board: %v", err)
	}
	if len(board.Warnings) != 1 {
		t.Fatalf("expected one integrity warning, got %v", board.Warnings)
	}

	if _, err := f.board.Board(ctx, Session{}, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	upstream := errors.New("provider offline")
	f.matches.SetError(upstream)
	if _, err := f.board.Board(ctx, Session{}, 9); !errors.Is(err, upstream) {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func (f *poolFixture) autoBoard() *BoardService {
	board := NewBoardService(f.players, f.picks, f.settings, f.matches, f.elimination, f.cycle, f.gameweek, BoardOptions{AutoProcess: true}, logging.NewNop())
	board.now = f.clock
	return board
}

func round11Matches() []match.Match {
	kickoff := round9Kickoff.Add(14 * 24 * time.Hour)
	return []match.Match{
		{ID: "r11-1", Round: 11, HomeTeam: "Liverpool FC", AwayTeam: "Fulham FC", Status: match.StatusScheduled, KickoffAt: kickoff},
		{ID: "r11-2", Round: 11, HomeTeam: "Arsenal FC", AwayTeam: "Chelsea FC", Status: match.StatusScheduled, KickoffAt: kickoff.Add(2 * time.Hour)},
	}
}

func TestBoardService_OldRoundDoesNotReopenPreviousCycle(t *testing.T) {
	t.Parallel()

	all := append(round9Matches(), round10Matches()...)
	f := newPoolFixture(t, round9Kickoff.Add(-2*time.Hour), append(all, round11Matches()...)...)
	ctx := context.Background()
	board := f.autoBoard()

	// Round 9: Alice loses, Bob survives alone.
	submitAll(t, f, 9, map[string]string{"Alice": "Arsenal FC", "Bob": "Chelsea FC"})
	f.matches.Finish(9, "Arsenal FC", 0, 2)
	f.matches.Finish(9, "Brentford FC", 0, 1)
	f.matches.Finish(9, "Everton FC", 0, 0)
	f.setNow(round9Kickoff.Add(8 * time.Hour))
	if _, err := board.Board(ctx, Session{}, 9); err != nil {
		t.Fatalf("board round 9: %v", err)
	}
	alice, _, _ := f.players.Get(ctx, "Alice")
	if !alice.IsEliminated() {
		t.Fatalf("expected Alice out after round 9, got %+v", alice)
	}

	// Round 10: Bob loses too and the pool rolls over into cycle 2.
	submitAll(t, f, 10, map[string]string{"Bob": "Arsenal FC"})
	f.matches.Finish(10, "Fulham FC", 1, 0)
	f.matches.Finish(10, "Chelsea FC", 1, 1)
	f.setNow(round9Kickoff.Add(7*24*time.Hour + 8*time.Hour))
	got, err := board.Board(ctx, Session{}, 10)
	if err != nil {
		t.Fatalf("board round 10: %v", err)
	}
	settings, _ := f.settings.Get(ctx)
	if settings.RolloverMultiplier != 2 || settings.Cycle != 2 {
		t.Fatalf("expected rollover into cycle 2, got %+v (board state %+v)", settings, got.State)
	}

	// Round 11: Alice re-enters the new cycle.
	submitAll(t, f, 11, map[string]string{"Alice": "Liverpool FC"})

	// Looking back at round 9 must leave cycle 2 untouched, whether through
	// the board or by processing the round directly.
	old, err := board.Board(ctx, Session{}, 9)
	if err != nil {
		t.Fatalf("board round 9 again: %v", err)
	}
	if old.State.Kind != CycleOngoing {
		t.Fatalf("expected ongoing state on old board, got %+v", old.State)
	}
	for _, row := range old.Rows {
		if row.HasPicked {
			t.Fatalf("old-cycle picks must not show on the new cycle's board: %+v", row)
		}
	}
	processed, err := f.elimination.ProcessRound(ctx, 9)
	if err != nil {
		t.Fatalf("process round 9: %v", err)
	}
	if len(processed.Eliminated) != 0 || processed.AlreadyEliminated != 0 {
		t.Fatalf("old-cycle picks must not be processed, got %+v", processed)
	}
	completed, err := f.cycle.CompleteRound(ctx, 9)
	if err != nil {
		t.Fatalf("complete round 9: %v", err)
	}
	if completed.Reset != nil || completed.State.Kind != CycleOngoing {
		t.Fatalf("expected no second rollover, got %+v", completed)
	}

	alice, _, _ = f.players.Get(ctx, "Alice")
	if alice.Status != player.StatusActive || len(alice.UsedTeams) != 1 || alice.UsedTeams[0] != "Liverpool FC" {
		t.Fatalf("expected Alice active on Liverpool FC only, got %+v", alice)
	}
	settings, _ = f.settings.Get(ctx)
	if settings.RolloverMultiplier != 2 || settings.Cycle != 2 {
		t.Fatalf("expected settings unchanged, got %+v", settings)
	}
}
