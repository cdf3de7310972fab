package postgres

import (
	"time"

	"github.com/riskibarqy/last-man-standing/internal/domain/pick"
)

type pickTableModel struct {
	ID        int64     `db:"id"`
	PublicID  string    `db:"public_id"`
	PlayerID  string    `db:"player_public_id"`
	Round     int       `db:"round"`
	Cycle     int       `db:"cycle"`
	Team      string    `db:"team"`
	CreatedAt time.Time `db:"created_at"`
}

type pickInsertModel struct {
	PublicID  string    `db:"public_id"`
	PlayerID  string    `db:"player_public_id"`
	Round     int       `db:"round"`
	Cycle     int       `db:"cycle"`
	Team      string    `db:"team"`
	CreatedAt time.Time `db:"created_at"`
}

var pickColumns = []string{
	"id",
	"public_id",
	"player_public_id",
	"round",
	"cycle",
	"team",
	"created_at",
}

func pickFromRow(row pickTableModel) pick.Pick {
	return pick.Pick{
		ID:        row.PublicID,
		PlayerID:  row.PlayerID,
		Round:     row.Round,
		Cycle:     row.Cycle,
		Team:      row.Team,
		CreatedAt: row.CreatedAt.UTC(),
	}
}

func picksFromRows(rows []pickTableModel) []pick.Pick {
	out := make([]pick.Pick, 0, len(rows))
	for _, row := range rows {
		out = append(out, pickFromRow(row))
	}
	return out
}
