package postgres

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/riskibarqy/last-man-standing/internal/domain/player"
)

type playerTableModel struct {
	ID              int64          `db:"id"`
	PublicID        string         `db:"public_id"`
	Name            string         `db:"name"`
	Status          string         `db:"status"`
	UsedTeams       pq.StringArray `db:"used_teams"`
	EliminatedRound sql.NullInt64  `db:"eliminated_round"`
	Version         int64          `db:"version"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

type playerInsertModel struct {
	PublicID        string         `db:"public_id"`
	Name            string         `db:"name"`
	Status          string         `db:"status"`
	UsedTeams       pq.StringArray `db:"used_teams"`
	EliminatedRound sql.NullInt64  `db:"eliminated_round"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

var playerColumns = []string{
	"id",
	"public_id",
	"name",
	"status",
	"used_teams",
	"eliminated_round",
	"version",
	"created_at",
	"updated_at",
}

func playerFromRow(row playerTableModel) player.Player {
	usedTeams := make([]string, 0, len(row.UsedTeams))
	usedTeams = append(usedTeams, row.UsedTeams...)
	return player.Player{
		ID:              row.PublicID,
		Name:            row.Name,
		Status:          player.Status(row.Status),
		UsedTeams:       usedTeams,
		EliminatedRound: intPointer(row.EliminatedRound),
		Version:         row.Version,
		CreatedAt:       row.CreatedAt.UTC(),
		UpdatedAt:       row.UpdatedAt.UTC(),
	}
}

func playerInsertFromDomain(item player.Player) playerInsertModel {
	createdAt := utcOrNow(item.CreatedAt)
	updatedAt := item.UpdatedAt.UTC()
	if item.UpdatedAt.IsZero() {
		updatedAt = createdAt
	}
	return playerInsertModel{
		PublicID:        item.ID,
		Name:            item.Name,
		Status:          string(item.Status),
		UsedTeams:       pq.StringArray(append([]string{}, item.UsedTeams...)),
		EliminatedRound: nullableInt(item.EliminatedRound),
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}
}
