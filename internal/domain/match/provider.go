package match

import (
	"context"
	"time"
)

// Provider exposes the external schedule. Implementations are read-only.
type Provider interface {
	MatchesByRound(ctx context.Context, round int) ([]Match, error)
	ScheduledMatches(ctx context.Context) ([]Match, error)
}

// Snapshot is the state of one round as last seen from the provider.
type Snapshot struct {
	Round     int
	Matches   []Match
	FetchedAt time.Time
	// Stale is set when the provider failed and an older snapshot was served.
	Stale bool
}
