package postgres

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/last-man-standing/internal/domain/player"
	qb "github.com/riskibarqy/last-man-standing/internal/platform/querybuilder"
)

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) Get(ctx context.Context, playerID string) (player.Player, bool, error) {
	query, args, err := qb.Select(playerColumns...).From("players").
		Where(
			qb.Eq("public_id", playerID),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return player.Player{}, false, fmt.Errorf("build select player query: %w", err)
	}

	var row playerTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, fmt.Errorf("select player: %w", err)
	}
	return playerFromRow(row), true, nil
}

func (r *PlayerRepository) List(ctx context.Context) ([]player.Player, error) {
	query, args, err := qb.Select(playerColumns...).From("players").
		Where(qb.IsNull("deleted_at")).
		OrderBy("public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select players query: %w", err)
	}

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select players: %w", err)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, playerFromRow(row))
	}
	return out, nil
}

// Create inserts item unless a live player with the same id exists, in which
// case the stored record is returned with created=false.
func (r *PlayerRepository) Create(ctx context.Context, item player.Player) (player.Player, bool, error) {
	if err := item.Validate(); err != nil {
		return player.Player{}, false, err
	}

	query, args, err := qb.InsertModel("players", playerInsertFromDomain(item),
		`ON CONFLICT (public_id) WHERE deleted_at IS NULL DO NOTHING `+returning(playerColumns))
	if err != nil {
		return player.Player{}, false, fmt.Errorf("build insert player query: %w", err)
	}

	var row playerTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if !isNotFound(err) {
			return player.Player{}, false, fmt.Errorf("insert player %s: %w", item.ID, err)
		}
		existing, exists, getErr := r.Get(ctx, item.ID)
		if getErr != nil {
			return player.Player{}, false, getErr
		}
		if !exists {
			return player.Player{}, false, errors.Newf("player %s conflicted on insert but was not found", item.ID)
		}
		return existing, false, nil
	}
	return playerFromRow(row), true, nil
}

func (r *PlayerRepository) CompareAndSwap(ctx context.Context, expectedVersion int64, next player.Player) (player.Player, error) {
	if err := next.Validate(); err != nil {
		return player.Player{}, err
	}

	query, args, err := qb.Update("players").
		Set("name", next.Name).
		Set("status", string(next.Status)).
		Set("used_teams", pq.StringArray(append([]string{}, next.UsedTeams...))).
		Set("eliminated_round", nullableInt(next.EliminatedRound)).
		Set("updated_at", utcOrNow(next.UpdatedAt)).
		SetExpr("version", "version + 1").
		Where(
			qb.Eq("public_id", next.ID),
			qb.Eq("version", expectedVersion),
			qb.IsNull("deleted_at"),
		).
		Suffix(returning(playerColumns)).
		ToSQL()
	if err != nil {
		return player.Player{}, fmt.Errorf("build update player query: %w", err)
	}

	var row playerTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return player.Player{}, errors.Wrapf(player.ErrVersionConflict, "player %s at version %d", next.ID, expectedVersion)
		}
		return player.Player{}, fmt.Errorf("update player %s: %w", next.ID, err)
	}
	return playerFromRow(row), nil
}
