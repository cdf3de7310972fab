package usecase

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/last-man-standing/internal/domain/match"
	"github.com/riskibarqy/last-man-standing/internal/domain/pick"
	"github.com/riskibarqy/last-man-standing/internal/domain/player"
	"github.com/riskibarqy/last-man-standing/internal/domain/pool"
	"github.com/riskibarqy/last-man-standing/internal/platform/logging"
	concpool "github.com/sourcegraph/conc/pool"
)

type BoardRow struct {
	PlayerID        string
	Name            string
	Status          player.Status
	EliminatedRound int
	UsedTeams       int
	HasPicked       bool
	// PickHidden is true when the player picked but the viewer may not see it yet.
	PickHidden bool
	Team       string
	Outcome    match.Outcome
}

// Board is the read model of one round as shown to a viewer.
type Board struct {
	Round          int
	Deadline       time.Time
	RevealTime     time.Time
	SubmissionOpen bool
	RevealActive   bool
	Rows           []BoardRow
	Fixtures       []match.Match
	Pot            PotSummary
	State          CycleState
	Stale          bool
	Warnings       []string
}

type BoardOptions struct {
	DeadlineLead time.Duration
	RevealLead   time.Duration
	Currency     string
	// AutoProcess runs elimination and cycle completion when the board of a
	// fully finished round is requested. Only the current round and the one
	// before it are settled this way.
	AutoProcess bool
}

type BoardService struct {
	playerRepo   player.Repository
	pickRepo     pick.Repository
	settingsRepo pool.SettingsRepository
	matches      match.Provider
	elimination  *EliminationService
	cycle        *CycleService
	gameweek     *GameweekService
	options      BoardOptions
	logger       *logging.Logger
	now          func() time.Time
}

func NewBoardService(
	playerRepo player.Repository,
	pickRepo pick.Repository,
	settingsRepo pool.SettingsRepository,
	matches match.Provider,
	elimination *EliminationService,
	cycle *CycleService,
	gameweek *GameweekService,
	options BoardOptions,
	logger *logging.Logger,
) *BoardService {
	if options.Currency == "" {
		options.Currency = DefaultCurrency
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &BoardService{
		playerRepo:   playerRepo,
		pickRepo:     pickRepo,
		settingsRepo: settingsRepo,
		matches:      matches,
		elimination:  elimination,
		cycle:        cycle,
		gameweek:     gameweek,
		options:      options,
		logger:       logger,
		now:          time.Now,
	}
}

// Board assembles the round view. Other players' picks follow the reveal rule.
func (s *BoardService) Board(ctx context.Context, session Session, round int) (Board, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BoardService.Board", roundAttr(round))
	defer span.End()

	if round <= 0 {
		return Board{}, fmt.Errorf("%w: round must be greater than zero", ErrInvalidInput)
	}
	if s.options.AutoProcess {
		if err := s.autoProcess(ctx, round); err != nil {
			return Board{}, err
		}
	}

	var (
		snapshot match.Snapshot
		players  []player.Player
		picks    []pick.Pick
		settings pool.Settings
	)
	loaders := concpool.New().WithErrors().WithContext(ctx).WithCancelOnError()
	loaders.Go(func(ctx context.Context) error {
		var err error
		snapshot, err = loadRound(ctx, s.matches, round)
		return err
	})
	loaders.Go(func(ctx context.Context) error {
		var err error
		if players, err = s.playerRepo.List(ctx); err != nil {
			return fmt.Errorf("list players: %w", err)
		}
		return nil
	})
	loaders.Go(func(ctx context.Context) error {
		var err error
		if picks, err = s.pickRepo.ListByRound(ctx, round); err != nil {
			return fmt.Errorf("list picks by round: %w", err)
		}
		return nil
	})
	loaders.Go(func(ctx context.Context) error {
		var err error
		if settings, err = s.settingsRepo.Get(ctx); err != nil {
			return fmt.Errorf("get settings: %w", err)
		}
		return nil
	})
	if err := loaders.Wait(); err != nil {
		return Board{}, err
	}

	window := match.ComputeWindow(snapshot.Matches, s.now().UTC(), match.WindowOptions{
		DeadlineLead: s.options.DeadlineLead,
		RevealLead:   s.options.RevealLead,
		ForceReveal:  session.ForceReveal(),
	})
	results := match.EvaluateResults(snapshot.Matches)
	roundPicks := picksByPlayer(picksInCycle(picks, settings.Cycle))
	state := assessCycle(players, roundPicks, results, settings, round, s.entryFee())

	board := Board{
		Round:          round,
		Deadline:       window.Deadline,
		RevealTime:     window.RevealTime,
		SubmissionOpen: window.SubmissionOpen,
		RevealActive:   window.RevealActive,
		Rows:           make([]BoardRow, 0, len(players)),
		Fixtures:       sortedFixtures(snapshot.Matches),
		Pot:            PotSummary{Pot: state.Pot, Currency: s.options.Currency, Cycle: settings.Cycle},
		State:          state,
		Stale:          snapshot.Stale,
	}

	viewer := session.Viewer()
	for _, p := range players {
		row := BoardRow{
			PlayerID:  p.ID,
			Name:      p.Name,
			Status:    p.Status,
			UsedTeams: len(p.UsedTeams),
		}
		if p.IsEliminated() {
			if p.EliminatedRound == nil {
				warning := fmt.Sprintf("player %s is eliminated without an elimination round", p.ID)
				s.logger.WarnContext(ctx, "eliminated player missing round", "integrity_warning", warning)
				board.Warnings = append(board.Warnings, warning)
			} else {
				row.EliminatedRound = *p.EliminatedRound
			}
		}
		if item, ok := roundPicks[p.ID]; ok {
			row.HasPicked = true
			if window.CanView(viewer, p.ID) {
				row.Team = item.Team
				row.Outcome, _ = results.Outcome(item.Team)
			} else {
				row.PickHidden = true
			}
		}
		board.Rows = append(board.Rows, row)
	}
	sortBoardRows(board.Rows)

	return board, nil
}

func (s *BoardService) entryFee() int64 {
	if s.cycle == nil {
		return pool.DefaultEntryFee
	}
	return s.cycle.entryFee
}

// autoProcess settles round when it is one of the rounds the scheduler would
// settle. Boards of older rounds are read only.
func (s *BoardService) autoProcess(ctx context.Context, round int) error {
	if s.elimination == nil || s.cycle == nil || s.gameweek == nil {
		return nil
	}
	current, due, err := dueRounds(ctx, s.gameweek)
	if err != nil {
		s.logger.WarnContext(ctx, "skip auto settle, current round unknown", "round", round, "error", err)
		return nil
	}
	if !slices.Contains(due, round) {
		s.logger.DebugContext(ctx, "skip auto settle of past round", "round", round, "current_round", current)
		return nil
	}
	if _, err := settleFinishedRound(ctx, s.matches, s.elimination, s.cycle, round); err != nil {
		return fmt.Errorf("auto settle: %w", err)
	}
	return nil
}

// sortBoardRows lists players still in the game alphabetically, then eliminated
// players with the most recent elimination first.
func sortBoardRows(rows []BoardRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		left, right := rows[i], rows[j]
		leftOut := left.Status == player.StatusEliminated
		rightOut := right.Status == player.StatusEliminated
		if leftOut != rightOut {
			return !leftOut
		}
		if leftOut && left.EliminatedRound != right.EliminatedRound {
			return left.EliminatedRound > right.EliminatedRound
		}
		return strings.ToLower(left.Name) < strings.ToLower(right.Name)
	})
}

func sortedFixtures(matches []match.Match) []match.Match {
	out := append([]match.Match{}, matches...)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].KickoffAt.Equal(out[j].KickoffAt) {
			return out[i].KickoffAt.Before(out[j].KickoffAt)
		}
		return out[i].HomeTeam < out[j].HomeTeam
	})
	return out
}
