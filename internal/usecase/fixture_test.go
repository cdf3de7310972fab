package usecase

import (
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/last-man-standing/internal/domain/match"
	"github.com/riskibarqy/last-man-standing/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/last-man-standing/internal/platform/id"
	"github.com/riskibarqy/last-man-standing/internal/platform/logging"
)

var round9Kickoff = time.Date(2025, 10, 18, 14, 0, 0, 0, time.UTC)

func round9Matches() []match.Match {
	return []match.Match{
		{ID: "m1", Round: 9, HomeTeam: "Arsenal FC", AwayTeam: "Fulham FC", Status: match.StatusScheduled, KickoffAt: round9Kickoff},
		{ID: "m2", Round: 9, HomeTeam: "Brentford FC", AwayTeam: "Chelsea FC", Status: match.StatusTimed, KickoffAt: round9Kickoff.Add(2 * time.Hour)},
		{ID: "m3", Round: 9, HomeTeam: "Everton FC", AwayTeam: "Liverpool FC", Status: match.StatusScheduled, KickoffAt: round9Kickoff.Add(4 * time.Hour)},
	}
}

// poolFixture wires every service over the in-memory adapters with a shared
// controllable clock.
type poolFixture struct {
	players  *memory.PlayerRepository
	picks    *memory.PickRepository
	settings *memory.SettingsRepository
	matches  *memory.MatchProvider

	picking     *PickService
	elimination *EliminationService
	cycle       *CycleService
	board       *BoardService
	pot         *PoolService
	gameweek    *GameweekService
	backfill    *BackfillService

	mu  sync.Mutex
	now time.Time
}

func newPoolFixture(t *testing.T, now time.Time, matches ...match.Match) *poolFixture {
	t.Helper()

	f := &poolFixture{
		players:  memory.NewPlayerRepository(),
		picks:    memory.NewPickRepository(),
		settings: memory.NewSettingsRepository(),
		matches:  memory.NewMatchProvider(matches...),
		now:      now,
	}
	logger := logging.NewNop()
	ids := id.NewSequenceGenerator("pick-")

	f.picking = NewPickService(f.players, f.picks, f.settings, f.matches, ids, PickServiceOptions{}, logger)
	f.elimination = NewEliminationService(f.players, f.picks, f.settings, f.matches, 4, logger)
	f.cycle = NewCycleService(f.players, f.picks, f.settings, f.matches, 10, logger)
	f.gameweek = NewGameweekService(f.matches, GameweekOptions{}, logger)
	f.board = NewBoardService(f.players, f.picks, f.settings, f.matches, f.elimination, f.cycle, f.gameweek, BoardOptions{}, logger)
	f.pot = NewPoolService(f.players, f.settings, 10, "£")
	f.backfill = NewBackfillService(f.players, f.picks, f.settings, ids, nil, logger)

	f.picking.now = f.clock
	f.elimination.now = f.clock
	f.cycle.now = f.clock
	f.board.now = f.clock
	f.gameweek.now = f.clock
	f.backfill.now = f.clock
	return f
}

func (f *poolFixture) clock() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *poolFixture) setNow(now time.Time) {
	f.mu.Lock()
	f.now = now
	f.mu.Unlock()
}
