package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/last-man-standing/internal/domain/pool"
	qb "github.com/riskibarqy/last-man-standing/internal/platform/querybuilder"
)

const settingsRowID = 1

type settingsTableModel struct {
	ID                 int       `db:"id"`
	RolloverMultiplier int       `db:"rollover_multiplier"`
	Cycle              int       `db:"cycle"`
	LastRolloverRound  int       `db:"last_rollover_round"`
	Version            int64     `db:"version"`
	UpdatedAt          time.Time `db:"updated_at"`
}

var settingsColumns = []string{
	"id",
	"rollover_multiplier",
	"cycle",
	"last_rollover_round",
	"version",
	"updated_at",
}

func settingsFromRow(row settingsTableModel) pool.Settings {
	return pool.Settings{
		RolloverMultiplier: row.RolloverMultiplier,
		Cycle:              row.Cycle,
		LastRolloverRound:  row.LastRolloverRound,
		Version:            row.Version,
		UpdatedAt:          row.UpdatedAt.UTC(),
	}
}

// SettingsRepository stores the single pool settings row. Until it is first
// written, Get reports the defaults at version 0.
type SettingsRepository struct {
	db *sqlx.DB
}

func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) Get(ctx context.Context) (pool.Settings, error) {
	query, args, err := qb.Select(settingsColumns...).From("pool_settings").
		Where(qb.Eq("id", settingsRowID)).
		ToSQL()
	if err != nil {
		return pool.Settings{}, fmt.Errorf("build select settings query: %w", err)
	}

	var row settingsTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return pool.DefaultSettings(time.Time{}), nil
		}
		return pool.Settings{}, fmt.Errorf("select settings: %w", err)
	}
	return settingsFromRow(row), nil
}

func (r *SettingsRepository) CompareAndSwap(ctx context.Context, expectedVersion int64, next pool.Settings) (pool.Settings, error) {
	if err := next.Validate(); err != nil {
		return pool.Settings{}, err
	}

	var (
		query string
		args  []any
		err   error
	)
	if expectedVersion == 0 {
		query, args, err = qb.InsertModel("pool_settings", settingsTableModel{
			ID:                 settingsRowID,
			RolloverMultiplier: next.RolloverMultiplier,
			Cycle:              next.Cycle,
			LastRolloverRound:  next.LastRolloverRound,
			Version:            1,
			UpdatedAt:          utcOrNow(next.UpdatedAt),
		}, `ON CONFLICT (id) DO NOTHING `+returning(settingsColumns))
	} else {
		query, args, err = qb.Update("pool_settings").
			Set("rollover_multiplier", next.RolloverMultiplier).
			Set("cycle", next.Cycle).
			Set("last_rollover_round", next.LastRolloverRound).
			Set("updated_at", utcOrNow(next.UpdatedAt)).
			SetExpr("version", "version + 1").
			Where(
				qb.Eq("id", settingsRowID),
				qb.Eq("version", expectedVersion),
			).
			Suffix(returning(settingsColumns)).
			ToSQL()
	}
	if err != nil {
		return pool.Settings{}, fmt.Errorf("build write settings query: %w", err)
	}

	var row settingsTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return pool.Settings{}, errors.Wrapf(pool.ErrVersionConflict, "settings at version %d", expectedVersion)
		}
		return pool.Settings{}, fmt.Errorf("write settings: %w", err)
	}
	return settingsFromRow(row), nil
}
