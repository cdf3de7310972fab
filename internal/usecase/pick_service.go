package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/last-man-standing/internal/domain/match"
	"github.com/riskibarqy/last-man-standing/internal/domain/pick"
	"github.com/riskibarqy/last-man-standing/internal/domain/player"
	"github.com/riskibarqy/last-man-standing/internal/domain/pool"
	"github.com/riskibarqy/last-man-standing/internal/platform/id"
	"github.com/riskibarqy/last-man-standing/internal/platform/logging"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// playerCASAttempts is the initial write plus one retry after a lost race.
const playerCASAttempts = 2

type SubmitPickInput struct {
	PlayerID string
	Round    int
	Team     string
}

type SubmitPickResult struct {
	Pick   pick.Pick
	Player player.Player
	// Created is false when a pick for (player, round) already existed.
	Created bool
}

// PickView is a pick projected through the reveal rule. Team is empty when hidden.
type PickView struct {
	PlayerID  string
	Round     int
	Cycle     int
	Team      string
	Hidden    bool
	CreatedAt time.Time
}

type RoundPicks struct {
	Round        int
	RevealActive bool
	RevealTime   time.Time
	Picks        []PickView
}

type PickServiceOptions struct {
	DeadlineLead time.Duration
	RevealLead   time.Duration
}

type PickService struct {
	playerRepo   player.Repository
	pickRepo     pick.Repository
	settingsRepo pool.SettingsRepository
	matches      match.Provider
	idGen        id.Generator
	options      PickServiceOptions
	logger       *logging.Logger
	titler       cases.Caser
	now          func() time.Time
}

func NewPickService(
	playerRepo player.Repository,
	pickRepo pick.Repository,
	settingsRepo pool.SettingsRepository,
	matches match.Provider,
	idGen id.Generator,
	options PickServiceOptions,
	logger *logging.Logger,
) *PickService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PickService{
		playerRepo:   playerRepo,
		pickRepo:     pickRepo,
		settingsRepo: settingsRepo,
		matches:      matches,
		idGen:        idGen,
		options:      options,
		logger:       logger,
		titler:       cases.Title(language.English),
		now:          time.Now,
	}
}

func (s *PickService) windowOptions(session Session) match.WindowOptions {
	return match.WindowOptions{
		DeadlineLead: s.options.DeadlineLead,
		RevealLead:   s.options.RevealLead,
		ForceReveal:  session.ForceReveal(),
	}
}

// SubmitPick records a player's team for a round. Preconditions are checked in
// a fixed order and each failure is a *pick.ValidationError.
func (s *PickService) SubmitPick(ctx context.Context, session Session, input SubmitPickInput) (SubmitPickResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.SubmitPick")
	defer span.End()

	input.PlayerID = strings.TrimSpace(input.PlayerID)
	input.Team = strings.TrimSpace(input.Team)
	if input.PlayerID == "" {
		return SubmitPickResult{}, fmt.Errorf("%w: player_id is required", ErrInvalidInput)
	}
	if input.Team == "" {
		return SubmitPickResult{}, fmt.Errorf("%w: team is required", ErrInvalidInput)
	}

	snapshot, err := loadRound(ctx, s.matches, input.Round)
	if err != nil {
		return SubmitPickResult{}, err
	}

	now := s.now().UTC()
	window := match.ComputeWindow(snapshot.Matches, now, s.windowOptions(session))
	if !window.SubmissionOpen {
		return SubmitPickResult{}, pick.NewValidationError(pick.CodeDeadlinePassed, "round %d closed at %s", input.Round, window.Deadline.Format(time.RFC3339))
	}

	current, err := s.ensurePlayer(ctx, input.PlayerID, now)
	if err != nil {
		return SubmitPickResult{}, err
	}
	if current.IsEliminated() {
		return SubmitPickResult{}, pick.NewValidationError(pick.CodePlayerEliminated, "player %s is eliminated", current.ID)
	}

	existing, exists, err := s.pickRepo.GetByPlayerAndRound(ctx, current.ID, input.Round)
	if err != nil {
		return SubmitPickResult{}, fmt.Errorf("get pick by player and round: %w", err)
	}
	if exists {
		return SubmitPickResult{Pick: existing, Player: current}, nil
	}

	available := availableTeams(snapshot.Matches, current)
	if len(available) == 0 {
		return SubmitPickResult{}, pick.NewValidationError(pick.CodeNoTeamsAvailable, "player %s has no teams left in round %d", current.ID, input.Round)
	}
	if _, ok := match.TeamSet(snapshot.Matches)[input.Team]; !ok {
		return SubmitPickResult{}, pick.NewValidationError(pick.CodeTeamNotInRound, "team %s does not play in round %d", input.Team, input.Round)
	}
	if current.HasUsed(input.Team) {
		return SubmitPickResult{}, pick.NewValidationError(pick.CodeTeamAlreadyUsed, "team %s already used by %s", input.Team, current.ID)
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return SubmitPickResult{}, fmt.Errorf("get settings: %w", err)
	}
	pickID, err := s.idGen.NewID()
	if err != nil {
		return SubmitPickResult{}, fmt.Errorf("generate pick id: %w", err)
	}
	stored, created, err := s.pickRepo.CreateIfAbsent(ctx, pick.Pick{
		ID:        pickID,
		PlayerID:  current.ID,
		Round:     input.Round,
		Cycle:     settings.Cycle,
		Team:      input.Team,
		CreatedAt: now,
	})
	if err != nil {
		return SubmitPickResult{}, fmt.Errorf("create pick: %w", err)
	}
	if !created {
		// A concurrent submission for the same key won.
		return SubmitPickResult{Pick: stored, Player: current}, nil
	}

	updated, err := s.commitPick(ctx, current, stored, now)
	if err != nil {
		if deleteErr := s.pickRepo.Delete(ctx, stored.ID); deleteErr != nil {
			s.logger.ErrorContext(ctx, "compensate pick failed",
				"pick_id", stored.ID,
				"player_id", stored.PlayerID,
				"round", stored.Round,
				"error", deleteErr,
			)
		}
		return SubmitPickResult{}, err
	}

	s.logger.InfoContext(ctx, "pick submitted",
		"player_id", updated.ID,
		"round", stored.Round,
		"cycle", stored.Cycle,
		"team", stored.Team,
	)
	return SubmitPickResult{Pick: stored, Player: updated, Created: true}, nil
}

// commitPick applies the pick to the player record with a version check. A lost
// race reloads the player and retries once, re-checking what the other writer
// may have changed.
func (s *PickService) commitPick(ctx context.Context, current player.Player, item pick.Pick, now time.Time) (player.Player, error) {
	for attempt := 1; ; attempt++ {
		updated, err := s.playerRepo.CompareAndSwap(ctx, current.Version, current.WithPick(item.Team, now))
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, player.ErrVersionConflict) {
			return player.Player{}, fmt.Errorf("update player after pick: %w", err)
		}
		if attempt >= playerCASAttempts {
			return player.Player{}, fmt.Errorf("%w: player %s changed during pick submission", ErrStateConflict, current.ID)
		}

		reloaded, exists, err := s.playerRepo.Get(ctx, current.ID)
		if err != nil {
			return player.Player{}, fmt.Errorf("reload player after version conflict: %w", err)
		}
		if !exists {
			return player.Player{}, fmt.Errorf("%w: player %s disappeared during pick submission", ErrStateConflict, current.ID)
		}
		if reloaded.IsEliminated() {
			return player.Player{}, pick.NewValidationError(pick.CodePlayerEliminated, "player %s is eliminated", reloaded.ID)
		}
		if reloaded.HasUsed(item.Team) {
			return player.Player{}, pick.NewValidationError(pick.CodeTeamAlreadyUsed, "team %s already used by %s", item.Team, reloaded.ID)
		}
		current = reloaded
	}
}

func (s *PickService) ensurePlayer(ctx context.Context, playerID string, now time.Time) (player.Player, error) {
	item, exists, err := s.playerRepo.Get(ctx, playerID)
	if err != nil {
		return player.Player{}, fmt.Errorf("get player: %w", err)
	}
	if exists {
		return item, nil
	}

	// Concurrent first picks race here; Create returns whichever record won.
	item, _, err = s.playerRepo.Create(ctx, player.New(playerID, playerID, now))
	if err != nil {
		return player.Player{}, fmt.Errorf("create player: %w", err)
	}
	return item, nil
}

// AvailableTeams returns the round's teams the player has not used yet, sorted.
// Unknown players have every team available.
func (s *PickService) AvailableTeams(ctx context.Context, playerID string, round int) ([]string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.AvailableTeams")
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return nil, fmt.Errorf("%w: player_id is required", ErrInvalidInput)
	}

	snapshot, err := loadRound(ctx, s.matches, round)
	if err != nil {
		return nil, err
	}

	item, exists, err := s.playerRepo.Get(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("get player: %w", err)
	}
	if !exists {
		item = player.New(playerID, playerID, s.now().UTC())
	}

	return availableTeams(snapshot.Matches, item), nil
}

func availableTeams(matches []match.Match, item player.Player) []string {
	teams := match.Teams(matches)
	out := make([]string, 0, len(teams))
	for _, team := range teams {
		if item.HasUsed(team) {
			continue
		}
		out = append(out, team)
	}
	sort.Strings(out)
	return out
}

// RegisterPlayer creates a pending participant. Names are trimmed and title-cased
// and double as the participant id.
func (s *PickService) RegisterPlayer(ctx context.Context, name string) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.RegisterPlayer")
	defer span.End()

	name = s.titler.String(strings.Join(strings.Fields(name), " "))
	if name == "" {
		return player.Player{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	created, ok, err := s.playerRepo.Create(ctx, player.New(name, name, s.now().UTC()))
	if err != nil {
		return player.Player{}, fmt.Errorf("create player: %w", err)
	}
	if !ok {
		return player.Player{}, fmt.Errorf("%w: player %s", ErrConflict, name)
	}

	s.logger.InfoContext(ctx, "player registered", "player_id", created.ID)
	return created, nil
}

func (s *PickService) ListPlayers(ctx context.Context) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.ListPlayers")
	defer span.End()

	items, err := s.playerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Name < items[j].Name
	})
	return items, nil
}

// ListRoundPicks returns every pick of a round, hiding other players' teams until
// the reveal time.
func (s *PickService) ListRoundPicks(ctx context.Context, session Session, round int) (RoundPicks, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.ListRoundPicks", roundAttr(round))
	defer span.End()

	snapshot, err := loadRound(ctx, s.matches, round)
	if err != nil {
		return RoundPicks{}, err
	}
	window := match.ComputeWindow(snapshot.Matches, s.now().UTC(), s.windowOptions(session))

	items, err := s.pickRepo.ListByRound(ctx, round)
	if err != nil {
		return RoundPicks{}, fmt.Errorf("list picks by round: %w", err)
	}

	out := RoundPicks{
		Round:        round,
		RevealActive: window.RevealActive,
		RevealTime:   window.RevealTime,
		Picks:        make([]PickView, 0, len(items)),
	}
	viewer := session.Viewer()
	for _, item := range items {
		out.Picks = append(out.Picks, projectPick(window, viewer, item))
	}
	sort.SliceStable(out.Picks, func(i, j int) bool {
		return out.Picks[i].PlayerID < out.Picks[j].PlayerID
	})
	return out, nil
}

func projectPick(window match.Window, viewerID string, item pick.Pick) PickView {
	view := PickView{PlayerID: item.PlayerID, Round: item.Round, Cycle: item.Cycle, CreatedAt: item.CreatedAt}
	if window.CanView(viewerID, item.PlayerID) {
		view.Team = item.Team
		return view
	}
	view.Hidden = true
	return view
}

// PlayerPicks returns one player's picks across rounds, oldest first. Each
// round applies its own reveal rule, so another player's pick for a round that
// has not reached its reveal time comes back hidden.
func (s *PickService) PlayerPicks(ctx context.Context, session Session, playerID string) ([]PickView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.PlayerPicks")
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return nil, fmt.Errorf("%w: player_id is required", ErrInvalidInput)
	}

	items, err := s.pickRepo.ListByPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("list picks by player: %w", err)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Round < items[j].Round
	})

	now := s.now().UTC()
	viewer := session.Viewer()
	windows := make(map[int]match.Window, len(items))
	out := make([]PickView, 0, len(items))
	for _, item := range items {
		window, ok := windows[item.Round]
		if !ok {
			snapshot, err := loadRound(ctx, s.matches, item.Round)
			if err != nil {
				return nil, err
			}
			window = match.ComputeWindow(snapshot.Matches, now, s.windowOptions(session))
			windows[item.Round] = window
		}
		out = append(out, projectPick(window, viewer, item))
	}
	return out, nil
}
