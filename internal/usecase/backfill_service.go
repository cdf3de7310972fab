package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/last-man-standing/internal/domain/pick"
	"github.com/riskibarqy/last-man-standing/internal/domain/player"
	"github.com/riskibarqy/last-man-standing/internal/domain/pool"
	"github.com/riskibarqy/last-man-standing/internal/platform/id"
	"github.com/riskibarqy/last-man-standing/internal/platform/logging"
)

// DefaultTeamAliases maps the short names people type to provider team names.
var DefaultTeamAliases = map[string]string{
	"Bournemouth":             "AFC Bournemouth",
	"Arsenal":                 "Arsenal FC",
	"Chelsea":                 "Chelsea FC",
	"Brighton":                "Brighton & Hove Albion FC",
	"Aston Villa":             "Aston Villa FC",
	"Manchester City":         "Manchester City FC",
	"Manchester United":       "Manchester United FC",
	"Newcastle":               "Newcastle United FC",
	"Crystal Palace":          "Crystal Palace FC",
	"Fulham":                  "Fulham FC",
	"Nottingham Forest":       "Nottingham Forest FC",
	"Liverpool":               "Liverpool FC",
	"West Ham":                "West Ham United FC",
	"Sunderland":              "Sunderland AFC",
	"Brentford":               "Brentford FC",
	"Wolverhampton Wanderers": "Wolverhampton Wanderers FC",
}

type BackfillEntry struct {
	Name  string
	Teams []string
}

// ImportHistoryInput describes picks made before the pool moved to this service.
// Entry teams are in round order starting at FirstRound. Entries with
// CycleLength teams survived every round; shorter entries lost their last pick.
type ImportHistoryInput struct {
	FirstRound  int
	CycleLength int
	Entries     []BackfillEntry
}

type ImportHistoryResult struct {
	PlayersCreated int
	PlayersUpdated int
	PicksCreated   int
	PicksExisting  int
}

type BackfillService struct {
	playerRepo   player.Repository
	pickRepo     pick.Repository
	settingsRepo pool.SettingsRepository
	idGen        id.Generator
	aliases      map[string]string
	logger       *logging.Logger
	now          func() time.Time
}

func NewBackfillService(
	playerRepo player.Repository,
	pickRepo pick.Repository,
	settingsRepo pool.SettingsRepository,
	idGen id.Generator,
	aliases map[string]string,
	logger *logging.Logger,
) *BackfillService {
	if aliases == nil {
		aliases = DefaultTeamAliases
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &BackfillService{
		playerRepo:   playerRepo,
		pickRepo:     pickRepo,
		settingsRepo: settingsRepo,
		idGen:        idGen,
		aliases:      aliases,
		logger:       logger,
		now:          time.Now,
	}
}

// NormalizeTeam resolves a typed team name to the provider spelling: aliases
// first, then an " FC" suffix when the name carries none.
func (s *BackfillService) NormalizeTeam(raw string) string {
	name := strings.TrimSpace(raw)
	if alias, ok := s.aliases[name]; ok {
		return alias
	}
	if name == "" || strings.Contains(name, "FC") {
		return name
	}
	return name + " FC"
}

// ImportHistory writes historical picks and player states into the running
// cycle. Re-importing the same input changes nothing.
func (s *BackfillService) ImportHistory(ctx context.Context, input ImportHistoryInput) (ImportHistoryResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BackfillService.ImportHistory")
	defer span.End()

	if input.FirstRound <= 0 {
		return ImportHistoryResult{}, fmt.Errorf("%w: first_round must be greater than zero", ErrInvalidInput)
	}
	if input.CycleLength <= 0 {
		return ImportHistoryResult{}, fmt.Errorf("%w: cycle_length must be greater than zero", ErrInvalidInput)
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return ImportHistoryResult{}, fmt.Errorf("get settings: %w", err)
	}

	now := s.now().UTC()
	var result ImportHistoryResult
	for _, entry := range input.Entries {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			return result, fmt.Errorf("%w: entry name is required", ErrInvalidInput)
		}
		if len(entry.Teams) == 0 || len(entry.Teams) > input.CycleLength {
			return result, fmt.Errorf("%w: entry %s must have 1..%d teams", ErrInvalidInput, name, input.CycleLength)
		}

		teams := make([]string, 0, len(entry.Teams))
		for i, raw := range entry.Teams {
			team := s.NormalizeTeam(raw)
			if team == "" {
				return result, fmt.Errorf("%w: entry %s has an empty team", ErrInvalidInput, name)
			}
			teams = append(teams, team)

			created, err := s.importPick(ctx, pick.Pick{
				PlayerID: name,
				Round:    input.FirstRound + i,
				Cycle:    settings.Cycle,
				Team:     team,
			}, now)
			if err != nil {
				return result, err
			}
			if created {
				result.PicksCreated++
			} else {
				result.PicksExisting++
			}
		}

		desired := player.New(name, name, now)
		desired.Status = player.StatusActive
		for _, team := range teams {
			desired = desired.WithPick(team, now)
		}
		if len(teams) < input.CycleLength {
			desired = desired.Eliminate(input.FirstRound+len(teams)-1, now)
		}

		created, updated, err := s.upsertPlayer(ctx, desired)
		if err != nil {
			return result, err
		}
		if created {
			result.PlayersCreated++
		}
		if updated {
			result.PlayersUpdated++
		}
	}

	s.logger.InfoContext(ctx, "history imported",
		"players_created", result.PlayersCreated,
		"players_updated", result.PlayersUpdated,
		"picks_created", result.PicksCreated,
	)
	return result, nil
}

func (s *BackfillService) importPick(ctx context.Context, item pick.Pick, now time.Time) (bool, error) {
	pickID, err := s.idGen.NewID()
	if err != nil {
		return false, fmt.Errorf("generate pick id: %w", err)
	}
	item.ID = pickID
	item.CreatedAt = now
	_, created, err := s.pickRepo.CreateIfAbsent(ctx, item)
	if err != nil {
		return false, fmt.Errorf("import pick %s round %d: %w", item.PlayerID, item.Round, err)
	}
	return created, nil
}

func (s *BackfillService) upsertPlayer(ctx context.Context, desired player.Player) (created, updated bool, err error) {
	for attempt := 1; attempt <= playerCASAttempts; attempt++ {
		current, isNew, err := s.playerRepo.Create(ctx, desired)
		if err != nil {
			return false, false, fmt.Errorf("import player %s: %w", desired.ID, err)
		}
		if isNew {
			return true, false, nil
		}
		if sameHistory(current, desired) {
			return false, false, nil
		}

		next := current.Clone()
		next.Status = desired.Status
		next.UsedTeams = desired.UsedTeams
		next.EliminatedRound = desired.EliminatedRound
		next.UpdatedAt = desired.UpdatedAt
		_, err = s.playerRepo.CompareAndSwap(ctx, current.Version, next)
		if err == nil {
			return false, true, nil
		}
		if !errors.Is(err, player.ErrVersionConflict) {
			return false, false, fmt.Errorf("update imported player %s: %w", desired.ID, err)
		}
	}
	return false, false, fmt.Errorf("%w: player %s changed during import", ErrStateConflict, desired.ID)
}

func sameHistory(current, desired player.Player) bool {
	if current.Status != desired.Status || len(current.UsedTeams) != len(desired.UsedTeams) {
		return false
	}
	for i := range current.UsedTeams {
		if current.UsedTeams[i] != desired.UsedTeams[i] {
			return false
		}
	}
	switch {
	case current.EliminatedRound == nil && desired.EliminatedRound == nil:
		return true
	case current.EliminatedRound == nil || desired.EliminatedRound == nil:
		return false
	default:
		return *current.EliminatedRound == *desired.EliminatedRound
	}
}
