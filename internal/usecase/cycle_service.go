package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/last-man-standing/internal/domain/match"
	"github.com/riskibarqy/last-man-standing/internal/domain/pick"
	"github.com/riskibarqy/last-man-standing/internal/domain/player"
	"github.com/riskibarqy/last-man-standing/internal/domain/pool"
	"github.com/riskibarqy/last-man-standing/internal/platform/logging"
)

type CycleKind string

const (
	CycleOngoing  CycleKind = "ongoing"
	CycleRollover CycleKind = "rollover"
	CycleWinner   CycleKind = "winner"
)

// CycleState is the aggregate situation of the pool after a round.
type CycleState struct {
	Kind        CycleKind
	Winner      string
	Pot         pool.Pot
	Cycle       int
	ActiveCount int
}

// ResetResult reports what a rollover or reset changed.
type ResetResult struct {
	Round           int
	Settings        pool.Settings
	SettingsUpdated bool
	PlayersReset    int
	PicksDeleted    int
}

type CompleteRoundResult struct {
	State CycleState
	// Reset is set only when a rollover was applied by this call.
	Reset *ResetResult
}

type CycleService struct {
	playerRepo   player.Repository
	pickRepo     pick.Repository
	settingsRepo pool.SettingsRepository
	matches      match.Provider
	entryFee     int64
	logger       *logging.Logger
	now          func() time.Time
}

func NewCycleService(
	playerRepo player.Repository,
	pickRepo pick.Repository,
	settingsRepo pool.SettingsRepository,
	matches match.Provider,
	entryFee int64,
	logger *logging.Logger,
) *CycleService {
	if entryFee <= 0 {
		entryFee = pool.DefaultEntryFee
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CycleService{
		playerRepo:   playerRepo,
		pickRepo:     pickRepo,
		settingsRepo: settingsRepo,
		matches:      matches,
		entryFee:     entryFee,
		logger:       logger,
		now:          time.Now,
	}
}

// Assess classifies the pool after round given its results. It never writes.
func (s *CycleService) Assess(ctx context.Context, round int, results match.Results) (CycleState, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CycleService.Assess", roundAttr(round))
	defer span.End()

	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return CycleState{}, fmt.Errorf("list players: %w", err)
	}
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return CycleState{}, fmt.Errorf("get settings: %w", err)
	}
	picks, err := s.pickRepo.ListByRound(ctx, round)
	if err != nil {
		return CycleState{}, fmt.Errorf("list picks by round: %w", err)
	}

	return assessCycle(players, picksByPlayer(picksInCycle(picks, settings.Cycle)), results, settings, round, s.entryFee), nil
}

// assessCycle is the pure classification shared by CycleService and BoardService.
//
// Rollover needs an empty active set and at least one player eliminated in this
// round: a field of only pending players is a fresh cycle, and a round that
// knocked nobody out cannot end the cycle. Winner needs exactly one active
// player whose pick for the round won.
func assessCycle(
	players []player.Player,
	roundPicks map[string]pick.Pick,
	results match.Results,
	settings pool.Settings,
	round int,
	entryFee int64,
) CycleState {
	state := CycleState{
		Kind:  CycleOngoing,
		Pot:   pool.ComputePot(players, entryFee, settings.RolloverMultiplier),
		Cycle: settings.Cycle,
	}

	var (
		lastActive string
		eliminated int
	)
	for _, p := range players {
		switch p.Status {
		case player.StatusActive:
			state.ActiveCount++
			lastActive = p.ID
		case player.StatusEliminated:
			if p.EliminatedRound != nil && *p.EliminatedRound == round {
				eliminated++
			}
		}
	}

	switch {
	case state.ActiveCount == 0 && eliminated > 0:
		state.Kind = CycleRollover
	case state.ActiveCount == 1:
		if item, ok := roundPicks[lastActive]; ok {
			if outcome, _ := results.Outcome(item.Team); outcome == match.OutcomeWin {
				state.Kind = CycleWinner
				state.Winner = lastActive
			}
		}
	}
	return state
}

// picksInCycle drops picks made in earlier cycles of the pool.
func picksInCycle(items []pick.Pick, cycle int) []pick.Pick {
	out := make([]pick.Pick, 0, len(items))
	for _, item := range items {
		if item.Cycle == cycle {
			out = append(out, item)
		}
	}
	return out
}

func picksByPlayer(items []pick.Pick) map[string]pick.Pick {
	out := make(map[string]pick.Pick, len(items))
	for _, item := range items {
		out[item.PlayerID] = item
	}
	return out
}

// CompleteRound assesses round and applies a rollover when nobody survived. A
// winner is reported only. Re-running for the same round never increments the
// multiplier twice.
func (s *CycleService) CompleteRound(ctx context.Context, round int) (CompleteRoundResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CycleService.CompleteRound", roundAttr(round))
	defer span.End()

	snapshot, err := loadRound(ctx, s.matches, round)
	if err != nil {
		return CompleteRoundResult{}, err
	}

	state, err := s.Assess(ctx, round, match.EvaluateResults(snapshot.Matches))
	if err != nil {
		return CompleteRoundResult{}, err
	}

	switch state.Kind {
	case CycleWinner:
		s.logger.InfoContext(ctx, "pool winner declared",
			"winner", state.Winner,
			"round", round,
			"cycle", state.Cycle,
			"pot", state.Pot.Amount,
		)
		return CompleteRoundResult{State: state}, nil
	case CycleRollover:
		reset, err := s.resetCycle(ctx, round, func(current pool.Settings, now time.Time) (pool.Settings, bool) {
			if current.LastRolloverRound == round {
				return current, false
			}
			return current.Rollover(round, now), true
		})
		if err != nil {
			return CompleteRoundResult{}, err
		}
		s.logger.InfoContext(ctx, "pool rolled over",
			"round", round,
			"multiplier", reset.Settings.RolloverMultiplier,
			"cycle", reset.Settings.Cycle,
			"players_reset", reset.PlayersReset,
		)
		return CompleteRoundResult{State: state, Reset: &reset}, nil
	default:
		return CompleteRoundResult{State: state}, nil
	}
}

// HardReset restarts the pool from scratch: every player pending, multiplier 1.
func (s *CycleService) HardReset(ctx context.Context, round int) (ResetResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CycleService.HardReset")
	defer span.End()

	if round <= 0 {
		return ResetResult{}, fmt.Errorf("%w: round must be greater than zero", ErrInvalidInput)
	}
	reset, err := s.resetCycle(ctx, round, func(current pool.Settings, now time.Time) (pool.Settings, bool) {
		return current.Reset(now), true
	})
	if err != nil {
		return ResetResult{}, err
	}
	s.logger.WarnContext(ctx, "pool hard reset", "round", round, "cycle", reset.Settings.Cycle)
	return reset, nil
}

// StartNextCycle resets players after a winner while keeping the multiplier.
func (s *CycleService) StartNextCycle(ctx context.Context, round int) (ResetResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CycleService.StartNextCycle")
	defer span.End()

	if round <= 0 {
		return ResetResult{}, fmt.Errorf("%w: round must be greater than zero", ErrInvalidInput)
	}
	reset, err := s.resetCycle(ctx, round, func(current pool.Settings, now time.Time) (pool.Settings, bool) {
		return current.NextCycle(now), true
	})
	if err != nil {
		return ResetResult{}, err
	}
	s.logger.InfoContext(ctx, "next cycle started", "round", round, "cycle", reset.Settings.Cycle)
	return reset, nil
}

// resetCycle applies the settings transition first, then resets every player and
// clears the round's picks. Each write is idempotent so a partial failure can be
// completed by re-running.
func (s *CycleService) resetCycle(
	ctx context.Context,
	round int,
	transition func(current pool.Settings, now time.Time) (pool.Settings, bool),
) (ResetResult, error) {
	now := s.now().UTC()
	result := ResetResult{Round: round}

	settings, updated, err := s.updateSettings(ctx, now, transition)
	if err != nil {
		return ResetResult{}, err
	}
	result.Settings = settings
	result.SettingsUpdated = updated

	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return ResetResult{}, fmt.Errorf("list players: %w", err)
	}
	for _, item := range players {
		changed, err := s.resetPlayer(ctx, item, now)
		if err != nil {
			return ResetResult{}, err
		}
		if changed {
			result.PlayersReset++
		}
	}

	deleted, err := s.pickRepo.DeleteByRound(ctx, round)
	if err != nil {
		return ResetResult{}, fmt.Errorf("delete picks by round: %w", err)
	}
	result.PicksDeleted = deleted
	return result, nil
}

func (s *CycleService) updateSettings(
	ctx context.Context,
	now time.Time,
	transition func(current pool.Settings, now time.Time) (pool.Settings, bool),
) (pool.Settings, bool, error) {
	for attempt := 1; attempt <= playerCASAttempts; attempt++ {
		current, err := s.settingsRepo.Get(ctx)
		if err != nil {
			return pool.Settings{}, false, fmt.Errorf("get settings: %w", err)
		}
		next, apply := transition(current, now)
		if !apply {
			return current, false, nil
		}
		stored, err := s.settingsRepo.CompareAndSwap(ctx, current.Version, next)
		if err == nil {
			return stored, true, nil
		}
		if !errors.Is(err, pool.ErrVersionConflict) {
			return pool.Settings{}, false, fmt.Errorf("update settings: %w", err)
		}
	}
	return pool.Settings{}, false, fmt.Errorf("%w: settings changed during cycle transition", ErrStateConflict)
}

func (s *CycleService) resetPlayer(ctx context.Context, item player.Player, now time.Time) (bool, error) {
	for attempt := 1; attempt <= playerCASAttempts; attempt++ {
		if item.IsReset() {
			return false, nil
		}
		_, err := s.playerRepo.CompareAndSwap(ctx, item.Version, item.Reset(now))
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, player.ErrVersionConflict) {
			return false, fmt.Errorf("reset player %s: %w", item.ID, err)
		}

		reloaded, exists, err := s.playerRepo.Get(ctx, item.ID)
		if err != nil {
			return false, fmt.Errorf("reload player %s: %w", item.ID, err)
		}
		if !exists {
			return false, nil
		}
		item = reloaded
	}
	return false, fmt.Errorf("%w: player %s changed during reset", ErrStateConflict, item.ID)
}
