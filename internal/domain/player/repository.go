package player

import "context"

// Repository describes participant persistence needs from use cases.
//
// Writes are per-key atomic. Create inserts only when the id is free and reports
// whether it did. CompareAndSwap stores next only when the stored version equals
// expectedVersion, bumps the version and returns the stored record; otherwise it
// returns ErrVersionConflict.
type Repository interface {
	Get(ctx context.Context, playerID string) (Player, bool, error)
	List(ctx context.Context) ([]Player, error)
	Create(ctx context.Context, item Player) (Player, bool, error)
	CompareAndSwap(ctx context.Context, expectedVersion int64, next Player) (Player, error)
}
