package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/last-man-standing/internal/domain/pick"
	qb "github.com/riskibarqy/last-man-standing/internal/platform/querybuilder"
)

type PickRepository struct {
	db *sqlx.DB
}

func NewPickRepository(db *sqlx.DB) *PickRepository {
	return &PickRepository{db: db}
}

// CreateIfAbsent relies on the partial unique index on (player, round); the
// losing writer gets the stored pick back with created=false.
func (r *PickRepository) CreateIfAbsent(ctx context.Context, item pick.Pick) (pick.Pick, bool, error) {
	if strings.TrimSpace(item.PlayerID) == "" || item.Round <= 0 || strings.TrimSpace(item.Team) == "" {
		return pick.Pick{}, false, errors.Newf("invalid pick %+v", item)
	}

	query, args, err := qb.InsertModel("picks", pickInsertModel{
		PublicID:  item.ID,
		PlayerID:  item.PlayerID,
		Round:     item.Round,
		Cycle:     cycleOrFirst(item.Cycle),
		Team:      item.Team,
		CreatedAt: utcOrNow(item.CreatedAt),
	}, `ON CONFLICT (player_public_id, round) WHERE deleted_at IS NULL DO NOTHING `+returning(pickColumns))
	if err != nil {
		return pick.Pick{}, false, fmt.Errorf("build insert pick query: %w", err)
	}

	var row pickTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if !isNotFound(err) {
			return pick.Pick{}, false, fmt.Errorf("insert pick %s round %d: %w", item.PlayerID, item.Round, err)
		}
		existing, exists, getErr := r.GetByPlayerAndRound(ctx, item.PlayerID, item.Round)
		if getErr != nil {
			return pick.Pick{}, false, getErr
		}
		if !exists {
			return pick.Pick{}, false, errors.Newf("pick %s round %d conflicted on insert but was not found", item.PlayerID, item.Round)
		}
		return existing, false, nil
	}
	return pickFromRow(row), true, nil
}

func (r *PickRepository) GetByPlayerAndRound(ctx context.Context, playerID string, round int) (pick.Pick, bool, error) {
	query, args, err := qb.Select(pickColumns...).From("picks").
		Where(
			qb.Eq("player_public_id", playerID),
			qb.Eq("round", round),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return pick.Pick{}, false, fmt.Errorf("build select pick query: %w", err)
	}

	var row pickTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return pick.Pick{}, false, nil
		}
		return pick.Pick{}, false, fmt.Errorf("select pick: %w", err)
	}
	return pickFromRow(row), true, nil
}

func (r *PickRepository) ListByRound(ctx context.Context, round int) ([]pick.Pick, error) {
	return r.list(ctx, "round", round, "player_public_id")
}

func (r *PickRepository) ListByPlayer(ctx context.Context, playerID string) ([]pick.Pick, error) {
	return r.list(ctx, "player_public_id", playerID, "round")
}

func (r *PickRepository) list(ctx context.Context, column string, value any, orderBy string) ([]pick.Pick, error) {
	query, args, err := qb.Select(pickColumns...).From("picks").
		Where(
			qb.Eq(column, value),
			qb.IsNull("deleted_at"),
		).
		OrderBy(orderBy).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select picks by %s query: %w", column, err)
	}

	var rows []pickTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select picks by %s: %w", column, err)
	}
	return picksFromRows(rows), nil
}

// Delete soft-deletes one pick. Deleting a missing pick is not an error.
func (r *PickRepository) Delete(ctx context.Context, pickID string) error {
	_, err := r.softDelete(ctx, qb.Eq("public_id", pickID))
	if err != nil {
		return fmt.Errorf("delete pick %s: %w", pickID, err)
	}
	return nil
}

func (r *PickRepository) DeleteByRound(ctx context.Context, round int) (int, error) {
	deleted, err := r.softDelete(ctx, qb.Eq("round", round))
	if err != nil {
		return 0, fmt.Errorf("delete picks of round %d: %w", round, err)
	}
	return deleted, nil
}

func (r *PickRepository) softDelete(ctx context.Context, condition qb.Condition) (int, error) {
	query, args, err := qb.Update("picks").
		Set("deleted_at", time.Now().UTC()).
		Where(condition, qb.IsNull("deleted_at")).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build soft delete picks query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read affected rows: %w", err)
	}
	return int(affected), nil
}

func cycleOrFirst(cycle int) int {
	if cycle < 1 {
		return 1
	}
	return cycle
}
