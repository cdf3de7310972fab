package httpapi

import (
	"time"

	"github.com/riskibarqy/last-man-standing/internal/domain/match"
	"github.com/riskibarqy/last-man-standing/internal/domain/pick"
	"github.com/riskibarqy/last-man-standing/internal/domain/player"
	"github.com/riskibarqy/last-man-standing/internal/usecase"
)

type submitPickRequest struct {
	PlayerID string `json:"player_id" validate:"required,max=100"`
	Team     string `json:"team" validate:"required,max=100"`
}

type registerPlayerRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type roundRequest struct {
	Round int `json:"round" validate:"required,gt=0"`
}

type backfillRequest struct {
	FirstRound  int                    `json:"first_round" validate:"required,gt=0"`
	CycleLength int                    `json:"cycle_length" validate:"required,gt=0"`
	Entries     []backfillEntryRequest `json:"entries" validate:"required,min=1,dive"`
}

type backfillEntryRequest struct {
	Name  string   `json:"name" validate:"required,max=100"`
	Teams []string `json:"teams" validate:"required,min=1,dive,required"`
}

type currentRoundDTO struct {
	Round      int  `json:"round"`
	Overridden bool `json:"overridden,omitempty"`
}

type playerDTO struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Status          string   `json:"status"`
	UsedTeams       []string `json:"used_teams"`
	EliminatedRound *int     `json:"eliminated_round,omitempty"`
	CreatedAtUTC    string   `json:"created_at_utc"`
	UpdatedAtUTC    string   `json:"updated_at_utc"`
}

type pickDTO struct {
	ID           string `json:"id"`
	PlayerID     string `json:"player_id"`
	Round        int    `json:"round"`
	Cycle        int    `json:"cycle"`
	Team         string `json:"team"`
	CreatedAtUTC string `json:"created_at_utc"`
}

type submitPickResponseDTO struct {
	Pick    pickDTO   `json:"pick"`
	Player  playerDTO `json:"player"`
	Created bool      `json:"created"`
}

type pickViewDTO struct {
	PlayerID     string `json:"player_id"`
	Round        int    `json:"round"`
	Cycle        int    `json:"cycle"`
	Team         string `json:"team,omitempty"`
	Hidden       bool   `json:"hidden"`
	CreatedAtUTC string `json:"created_at_utc"`
}

type roundPicksDTO struct {
	Round         int           `json:"round"`
	RevealActive  bool          `json:"reveal_active"`
	RevealTimeUTC string        `json:"reveal_time_utc,omitempty"`
	Picks         []pickViewDTO `json:"picks"`
}

type availableTeamsDTO struct {
	PlayerID string   `json:"player_id"`
	Round    int      `json:"round"`
	Teams    []string `json:"teams"`
}

type potDTO struct {
	PaidPlayers int    `json:"paid_players"`
	EntryFee    int64  `json:"entry_fee"`
	Multiplier  int    `json:"multiplier"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Cycle       int    `json:"cycle"`
}

type fixtureDTO struct {
	ID         string `json:"id"`
	HomeTeam   string `json:"home_team"`
	AwayTeam   string `json:"away_team"`
	HomeCrest  string `json:"home_crest,omitempty"`
	AwayCrest  string `json:"away_crest,omitempty"`
	Status     string `json:"status"`
	HomeScore  *int   `json:"home_score,omitempty"`
	AwayScore  *int   `json:"away_score,omitempty"`
	KickoffUTC string `json:"kickoff_utc"`
	Live       bool   `json:"live"`
}

type boardRowDTO struct {
	PlayerID        string `json:"player_id"`
	Name            string `json:"name"`
	Status          string `json:"status"`
	EliminatedRound int    `json:"eliminated_round,omitempty"`
	UsedTeams       int    `json:"used_teams"`
	HasPicked       bool   `json:"has_picked"`
	PickHidden      bool   `json:"pick_hidden"`
	Team            string `json:"team,omitempty"`
	Outcome         string `json:"outcome,omitempty"`
}

type cycleStateDTO struct {
	Kind        string `json:"kind"`
	Winner      string `json:"winner,omitempty"`
	Cycle       int    `json:"cycle"`
	ActiveCount int    `json:"active_count"`
	PotAmount   int64  `json:"pot_amount"`
}

type boardDTO struct {
	Round          int           `json:"round"`
	DeadlineUTC    string        `json:"deadline_utc,omitempty"`
	RevealTimeUTC  string        `json:"reveal_time_utc,omitempty"`
	SubmissionOpen bool          `json:"submission_open"`
	RevealActive   bool          `json:"reveal_active"`
	Rows           []boardRowDTO `json:"rows"`
	Fixtures       []fixtureDTO  `json:"fixtures"`
	Pot            potDTO        `json:"pot"`
	State          cycleStateDTO `json:"state"`
	Stale          bool          `json:"stale,omitempty"`
	Warnings       []string      `json:"warnings,omitempty"`
}

type processResultDTO struct {
	Round             int      `json:"round"`
	Eliminated        []string `json:"eliminated"`
	Survived          int      `json:"survived"`
	Pending           int      `json:"pending"`
	AlreadyEliminated int      `json:"already_eliminated"`
	Warnings          []string `json:"warnings,omitempty"`
	Stale             bool     `json:"stale,omitempty"`
}

type resetResultDTO struct {
	Round              int  `json:"round"`
	Cycle              int  `json:"cycle"`
	RolloverMultiplier int  `json:"rollover_multiplier"`
	SettingsUpdated    bool `json:"settings_updated"`
	PlayersReset       int  `json:"players_reset"`
	PicksDeleted       int  `json:"picks_deleted"`
}

type processRoundResponseDTO struct {
	Process processResultDTO `json:"process"`
	State   cycleStateDTO    `json:"state"`
	Reset   *resetResultDTO  `json:"reset,omitempty"`
}

type backfillResultDTO struct {
	PlayersCreated int `json:"players_created"`
	PlayersUpdated int `json:"players_updated"`
	PicksCreated   int `json:"picks_created"`
	PicksExisting  int `json:"picks_existing"`
}

func formatUTC(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func playerToDTO(v player.Player) playerDTO {
	used := append([]string{}, v.UsedTeams...)
	var eliminatedRound *int
	if v.EliminatedRound != nil {
		round := *v.EliminatedRound
		eliminatedRound = &round
	}

	return playerDTO{
		ID:              v.ID,
		Name:            v.Name,
		Status:          string(v.Status),
		UsedTeams:       used,
		EliminatedRound: eliminatedRound,
		CreatedAtUTC:    formatUTC(v.CreatedAt),
		UpdatedAtUTC:    formatUTC(v.UpdatedAt),
	}
}

func pickToDTO(v pick.Pick) pickDTO {
	return pickDTO{
		ID:           v.ID,
		PlayerID:     v.PlayerID,
		Round:        v.Round,
		Cycle:        v.Cycle,
		Team:         v.Team,
		CreatedAtUTC: formatUTC(v.CreatedAt),
	}
}

func pickViewToDTO(v usecase.PickView) pickViewDTO {
	return pickViewDTO{
		PlayerID:     v.PlayerID,
		Round:        v.Round,
		Cycle:        v.Cycle,
		Team:         v.Team,
		Hidden:       v.Hidden,
		CreatedAtUTC: formatUTC(v.CreatedAt),
	}
}

func roundPicksToDTO(v usecase.RoundPicks) roundPicksDTO {
	items := make([]pickViewDTO, 0, len(v.Picks))
	for _, item := range v.Picks {
		items = append(items, pickViewToDTO(item))
	}

	return roundPicksDTO{
		Round:         v.Round,
		RevealActive:  v.RevealActive,
		RevealTimeUTC: formatUTC(v.RevealTime),
		Picks:         items,
	}
}

func potToDTO(v usecase.PotSummary) potDTO {
	return potDTO{
		PaidPlayers: v.PaidPlayers,
		EntryFee:    v.EntryFee,
		Multiplier:  v.Multiplier,
		Amount:      v.Amount,
		Currency:    v.Currency,
		Cycle:       v.Cycle,
	}
}

func fixtureToDTO(v match.Match) fixtureDTO {
	out := fixtureDTO{
		ID:         v.ID,
		HomeTeam:   v.HomeTeam,
		AwayTeam:   v.AwayTeam,
		HomeCrest:  v.HomeCrest,
		AwayCrest:  v.AwayCrest,
		Status:     string(v.Status),
		KickoffUTC: formatUTC(v.KickoffAt),
		Live:       v.IsLive(),
	}
	if v.Score != nil {
		home, away := v.Score.Home, v.Score.Away
		out.HomeScore = &home
		out.AwayScore = &away
	}
	return out
}

func cycleStateToDTO(v usecase.CycleState) cycleStateDTO {
	return cycleStateDTO{
		Kind:        string(v.Kind),
		Winner:      v.Winner,
		Cycle:       v.Cycle,
		ActiveCount: v.ActiveCount,
		PotAmount:   v.Pot.Amount,
	}
}

func boardToDTO(v usecase.Board) boardDTO {
	rows := make([]boardRowDTO, 0, len(v.Rows))
	for _, row := range v.Rows {
		rows = append(rows, boardRowDTO{
			PlayerID:        row.PlayerID,
			Name:            row.Name,
			Status:          string(row.Status),
			EliminatedRound: row.EliminatedRound,
			UsedTeams:       row.UsedTeams,
			HasPicked:       row.HasPicked,
			PickHidden:      row.PickHidden,
			Team:            row.Team,
			Outcome:         string(row.Outcome),
		})
	}

	fixtures := make([]fixtureDTO, 0, len(v.Fixtures))
	for _, item := range v.Fixtures {
		fixtures = append(fixtures, fixtureToDTO(item))
	}

	return boardDTO{
		Round:          v.Round,
		DeadlineUTC:    formatUTC(v.Deadline),
		RevealTimeUTC:  formatUTC(v.RevealTime),
		SubmissionOpen: v.SubmissionOpen,
		RevealActive:   v.RevealActive,
		Rows:           rows,
		Fixtures:       fixtures,
		Pot:            potToDTO(v.Pot),
		State:          cycleStateToDTO(v.State),
		Stale:          v.Stale,
		Warnings:       v.Warnings,
	}
}

func processResultToDTO(v usecase.ProcessResult) processResultDTO {
	eliminated := append([]string{}, v.Eliminated...)
	return processResultDTO{
		Round:             v.Round,
		Eliminated:        eliminated,
		Survived:          v.Survived,
		Pending:           v.Pending,
		AlreadyEliminated: v.AlreadyEliminated,
		Warnings:          v.Warnings,
		Stale:             v.Stale,
	}
}

func resetResultToDTO(v usecase.ResetResult) resetResultDTO {
	return resetResultDTO{
		Round:              v.Round,
		Cycle:              v.Settings.Cycle,
		RolloverMultiplier: v.Settings.RolloverMultiplier,
		SettingsUpdated:    v.SettingsUpdated,
		PlayersReset:       v.PlayersReset,
		PicksDeleted:       v.PicksDeleted,
	}
}

func resetResultPtrToDTO(v *usecase.ResetResult) *resetResultDTO {
	if v == nil {
		return nil
	}
	out := resetResultToDTO(*v)
	return &out
}
