package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/last-man-standing/internal/domain/match"
	"github.com/riskibarqy/last-man-standing/internal/domain/pick"
	"github.com/riskibarqy/last-man-standing/internal/domain/player"
	"github.com/riskibarqy/last-man-standing/internal/domain/pool"
	"github.com/riskibarqy/last-man-standing/internal/platform/logging"
)

const defaultProcessWorkers = 4

// ProcessResult summarises one elimination pass over a round.
type ProcessResult struct {
	Round             int
	Eliminated        []string
	Survived          int
	Pending           int
	AlreadyEliminated int
	Warnings          []string
	Stale             bool
}

type EliminationService struct {
	playerRepo   player.Repository
	pickRepo     pick.Repository
	settingsRepo pool.SettingsRepository
	matches      match.Provider
	workers      int
	logger       *logging.Logger
	now          func() time.Time
}

func NewEliminationService(
	playerRepo player.Repository,
	pickRepo pick.Repository,
	settingsRepo pool.SettingsRepository,
	matches match.Provider,
	workers int,
	logger *logging.Logger,
) *EliminationService {
	if workers < 1 {
		workers = defaultProcessWorkers
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &EliminationService{
		playerRepo:   playerRepo,
		pickRepo:     pickRepo,
		settingsRepo: settingsRepo,
		matches:      matches,
		workers:      workers,
		logger:       logger,
		now:          time.Now,
	}
}

type eliminationOutcome int

const (
	eliminationApplied eliminationOutcome = iota
	eliminationAlready
	eliminationSkipped
)

// ProcessRound eliminates every active player whose pick for round lost. Only
// picks made in the running cycle count. It is safe to run repeatedly and
// concurrently: each transition is a version-checked write that becomes a no-op
// once applied.
func (s *EliminationService) ProcessRound(ctx context.Context, round int) (ProcessResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EliminationService.ProcessRound", roundAttr(round))
	defer span.End()

	snapshot, err := loadRound(ctx, s.matches, round)
	if err != nil {
		return ProcessResult{}, err
	}
	results := match.EvaluateResults(snapshot.Matches)

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return ProcessResult{}, fmt.Errorf("get settings: %w", err)
	}
	picks, err := s.pickRepo.ListByRound(ctx, round)
	if err != nil {
		return ProcessResult{}, fmt.Errorf("list picks by round: %w", err)
	}
	picks = picksInCycle(picks, settings.Cycle)

	result := ProcessResult{Round: round, Stale: snapshot.Stale}
	if err := match.ValidateRound(snapshot.Matches); err != nil {
		warning := fmt.Sprintf("round %d: %v", round, err)
		s.logger.WarnContext(ctx, "round data failed validation",
			"integrity_warning", warning,
			"round", round,
		)
		result.Warnings = append(result.Warnings, warning)
	}
	losers := make([]pick.Pick, 0, len(picks))
	for _, item := range picks {
		outcome, known := results.Outcome(item.Team)
		if !known {
			warning := fmt.Sprintf("pick %s: team %s does not play in round %d", item.ID, item.Team, round)
			s.logger.WarnContext(ctx, "skip pick with unknown team",
				"integrity_warning", warning,
				"player_id", item.PlayerID,
				"round", round,
			)
			result.Warnings = append(result.Warnings, warning)
			continue
		}

		switch outcome {
		case match.OutcomeWin:
			result.Survived++
		case match.OutcomePending:
			result.Pending++
		case match.OutcomeLose:
			losers = append(losers, item)
		}
	}
	if len(losers) == 0 {
		sort.Strings(result.Warnings)
		return result, nil
	}

	workerPool, err := ants.NewPool(s.workers)
	if err != nil {
		return ProcessResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer workerPool.Release()

	var (
		mu       sync.Mutex
		workers  sync.WaitGroup
		firstErr error
	)
	now := s.now().UTC()
	for _, item := range losers {
		item := item
		workers.Add(1)
		if err := workerPool.Submit(func() {
			defer workers.Done()

			outcome, warning, err := s.eliminate(ctx, item, now)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			switch outcome {
			case eliminationApplied:
				result.Eliminated = append(result.Eliminated, item.PlayerID)
			case eliminationAlready:
				result.AlreadyEliminated++
			}
			if warning != "" {
				result.Warnings = append(result.Warnings, warning)
			}
		}); err != nil {
			workers.Done()
			return ProcessResult{}, fmt.Errorf("submit elimination to worker pool: %w", err)
		}
	}
	workers.Wait()

	if firstErr != nil {
		return ProcessResult{}, firstErr
	}

	sort.Strings(result.Eliminated)
	sort.Strings(result.Warnings)
	s.logger.InfoContext(ctx, "round processed",
		"round", round,
		"eliminated", len(result.Eliminated),
		"survived", result.Survived,
		"pending", result.Pending,
		"already_eliminated", result.AlreadyEliminated,
		"cycle", settings.Cycle,
		"stale", result.Stale,
	)
	return result, nil
}

func (s *EliminationService) eliminate(ctx context.Context, item pick.Pick, now time.Time) (eliminationOutcome, string, error) {
	for attempt := 1; attempt <= playerCASAttempts; attempt++ {
		current, exists, err := s.playerRepo.Get(ctx, item.PlayerID)
		if err != nil {
			return eliminationSkipped, "", fmt.Errorf("get player %s: %w", item.PlayerID, err)
		}
		if !exists {
			warning := fmt.Sprintf("pick %s: player %s does not exist", item.ID, item.PlayerID)
			s.logger.WarnContext(ctx, "skip pick without player", "integrity_warning", warning, "round", item.Round)
			return eliminationSkipped, warning, nil
		}

		switch current.Status {
		case player.StatusEliminated:
			return eliminationAlready, "", nil
		case player.StatusActive:
		default:
			warning := fmt.Sprintf("pick %s: player %s is %s", item.ID, current.ID, current.Status)
			s.logger.WarnContext(ctx, "skip losing pick of non-active player", "integrity_warning", warning, "round", item.Round)
			return eliminationSkipped, warning, nil
		}

		_, err = s.playerRepo.CompareAndSwap(ctx, current.Version, current.Eliminate(item.Round, now))
		if err == nil {
			s.logger.InfoContext(ctx, "player eliminated", "player_id", current.ID, "round", item.Round, "team", item.Team)
			return eliminationApplied, "", nil
		}
		if !errors.Is(err, player.ErrVersionConflict) {
			return eliminationSkipped, "", fmt.Errorf("eliminate player %s: %w", current.ID, err)
		}
	}

	s.logger.WarnContext(ctx, "elimination lost version race twice, leaving player for next run",
		"player_id", item.PlayerID,
		"round", item.Round,
	)
	return eliminationSkipped, "", nil
}
