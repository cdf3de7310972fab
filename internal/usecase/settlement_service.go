package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/last-man-standing/internal/domain/match"
	"github.com/riskibarqy/last-man-standing/internal/platform/logging"
)

// SettledRound reports one round that was run through elimination and cycle
// completion.
type SettledRound struct {
	Round    int
	Process  ProcessResult
	Complete CompleteRoundResult
}

// SettlementService settles rounds whose matches are all over. It is driven by
// the background scheduler; every step it runs is idempotent, so overlapping
// runs and manual admin processing are safe.
type SettlementService struct {
	gameweek    *GameweekService
	matches     match.Provider
	elimination *EliminationService
	cycle       *CycleService
	logger      *logging.Logger
	now         func() time.Time
}

func NewSettlementService(
	gameweek *GameweekService,
	matches match.Provider,
	elimination *EliminationService,
	cycle *CycleService,
	logger *logging.Logger,
) *SettlementService {
	if logger == nil {
		logger = logging.Default()
	}
	return &SettlementService{
		gameweek:    gameweek,
		matches:     matches,
		elimination: elimination,
		cycle:       cycle,
		logger:      logger,
		now:         time.Now,
	}
}

// SettleDue settles the current round and the one before it when their matches
// are finished.
func (s *SettlementService) SettleDue(ctx context.Context) ([]SettledRound, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementService.SettleDue")
	defer span.End()

	started := s.now()
	current, due, err := dueRounds(ctx, s.gameweek)
	if err != nil {
		return nil, err
	}

	out := make([]SettledRound, 0, len(due))
	for _, round := range due {
		settled, err := settleFinishedRound(ctx, s.matches, s.elimination, s.cycle, round)
		if err != nil {
			return out, err
		}
		if settled == nil {
			continue
		}
		out = append(out, *settled)
		s.logger.InfoContext(ctx, "round settled",
			"round", round,
			"eliminated", len(settled.Process.Eliminated),
			"survived", settled.Process.Survived,
			"cycle_state", string(settled.Complete.State.Kind),
			"rolled_over", settled.Complete.Reset != nil,
		)
	}

	s.logger.DebugContext(ctx, "settlement run finished",
		"current_round", current,
		"settled", len(out),
		"duration_ms", s.now().Sub(started).Milliseconds(),
	)
	return out, nil
}

// dueRounds resolves the current round without any session override and
// returns it with the round before it, skipping rounds below one.
func dueRounds(ctx context.Context, gameweek *GameweekService) (int, []int, error) {
	current, err := gameweek.CurrentRound(ctx, Session{})
	if err != nil {
		return 0, nil, fmt.Errorf("resolve current round: %w", err)
	}
	rounds := make([]int, 0, 2)
	for _, round := range []int{current.Round - 1, current.Round} {
		if round > 0 {
			rounds = append(rounds, round)
		}
	}
	return current.Round, rounds, nil
}

// settleFinishedRound runs elimination and cycle completion for round once all
// of its matches reached a terminal status. It returns nil when the round is
// still being played or has no matches.
func settleFinishedRound(
	ctx context.Context,
	provider match.Provider,
	elimination *EliminationService,
	cycle *CycleService,
	round int,
) (*SettledRound, error) {
	snapshot, err := loadRound(ctx, provider, round)
	if err != nil {
		return nil, err
	}
	if len(snapshot.Matches) == 0 || !match.AllTerminal(snapshot.Matches) {
		return nil, nil
	}

	processed, err := elimination.ProcessRound(ctx, round)
	if err != nil {
		return nil, fmt.Errorf("process round %d: %w", round, err)
	}
	completed, err := cycle.CompleteRound(ctx, round)
	if err != nil {
		return nil, fmt.Errorf("complete round %d: %w", round, err)
	}
	return &SettledRound{Round: round, Process: processed, Complete: completed}, nil
}
