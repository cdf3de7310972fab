package pick

import "context"

// Repository describes pick persistence needs from use cases.
//
// CreateIfAbsent is atomic on (PlayerID, Round): when a pick already exists for the
// key it is returned unchanged with created=false.
type Repository interface {
	CreateIfAbsent(ctx context.Context, item Pick) (stored Pick, created bool, err error)
	GetByPlayerAndRound(ctx context.Context, playerID string, round int) (Pick, bool, error)
	ListByRound(ctx context.Context, round int) ([]Pick, error)
	ListByPlayer(ctx context.Context, playerID string) ([]Pick, error)
	Delete(ctx context.Context, pickID string) error
	DeleteByRound(ctx context.Context, round int) (int, error)
}
