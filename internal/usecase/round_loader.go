package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/last-man-standing/internal/domain/match"
)

// roundSnapshotter is implemented by providers that can report whether a round
// was served from a fallback snapshot.
type roundSnapshotter interface {
	RoundSnapshot(ctx context.Context, round int) (match.Snapshot, error)
}

func loadRound(ctx context.Context, provider match.Provider, round int) (match.Snapshot, error) {
	if round <= 0 {
		return match.Snapshot{}, fmt.Errorf("%w: round must be greater than zero", ErrInvalidInput)
	}

	if snapshotter, ok := provider.(roundSnapshotter); ok {
		snapshot, err := snapshotter.RoundSnapshot(ctx, round)
		if err != nil {
			return match.Snapshot{}, fmt.Errorf("%w: load round %d: %w", ErrDependencyUnavailable, round, err)
		}
		return snapshot, nil
	}

	matches, err := provider.MatchesByRound(ctx, round)
	if err != nil {
		return match.Snapshot{}, fmt.Errorf("%w: load round %d: %w", ErrDependencyUnavailable, round, err)
	}
	return match.Snapshot{Round: round, Matches: matches}, nil
}
