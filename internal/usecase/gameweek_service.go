package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/last-man-standing/internal/domain/match"
	"github.com/riskibarqy/last-man-standing/internal/platform/logging"
)

const (
	DefaultLastRound   = 38
	DefaultRoundBuffer = 3 * time.Hour
)

type GameweekOptions struct {
	// LastRound is used when the provider has nothing scheduled, i.e. the
	// season is over.
	LastRound int
	// RoundBuffer keeps the previous round current for this long after its
	// last kickoff.
	RoundBuffer time.Duration
}

type CurrentRound struct {
	Round      int
	Overridden bool
}

type GameweekService struct {
	matches match.Provider
	options GameweekOptions
	logger  *logging.Logger
	now     func() time.Time
}

func NewGameweekService(matches match.Provider, options GameweekOptions, logger *logging.Logger) *GameweekService {
	if options.LastRound <= 0 {
		options.LastRound = DefaultLastRound
	}
	if options.RoundBuffer <= 0 {
		options.RoundBuffer = DefaultRoundBuffer
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &GameweekService{
		matches: matches,
		options: options,
		logger:  logger,
		now:     time.Now,
	}
}

// CurrentRound picks the round the pool is playing. An admin override wins.
// Otherwise it is the lowest round with scheduled matches, unless the round
// before it is still in progress.
func (s *GameweekService) CurrentRound(ctx context.Context, session Session) (CurrentRound, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameweekService.CurrentRound")
	defer span.End()

	if override := session.EffectiveRoundOverride(); override > 0 {
		return CurrentRound{Round: override, Overridden: true}, nil
	}

	scheduled, err := s.matches.ScheduledMatches(ctx)
	if err != nil {
		return CurrentRound{}, fmt.Errorf("%w: list scheduled matches: %w", ErrDependencyUnavailable, err)
	}

	candidate := 0
	for _, m := range scheduled {
		if m.Round <= 0 {
			continue
		}
		if candidate == 0 || m.Round < candidate {
			candidate = m.Round
		}
	}
	if candidate == 0 {
		return CurrentRound{Round: s.options.LastRound}, nil
	}
	if candidate == 1 {
		return CurrentRound{Round: candidate}, nil
	}

	previous, err := loadRound(ctx, s.matches, candidate-1)
	if err != nil {
		s.logger.WarnContext(ctx, "previous round unavailable, using next scheduled round",
			"round", candidate,
			"error", err,
		)
		return CurrentRound{Round: candidate}, nil
	}
	if s.inProgress(previous.Matches) {
		return CurrentRound{Round: candidate - 1}, nil
	}
	return CurrentRound{Round: candidate}, nil
}

func (s *GameweekService) inProgress(matches []match.Match) bool {
	now := s.now()
	for _, m := range matches {
		if !m.IsTerminal() {
			return true
		}
		if !m.KickoffAt.IsZero() && m.KickoffAt.Add(s.options.RoundBuffer).After(now) {
			return true
		}
	}
	return false
}
