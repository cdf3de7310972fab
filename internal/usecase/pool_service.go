package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/last-man-standing/internal/domain/player"
	"github.com/riskibarqy/last-man-standing/internal/domain/pool"
)

const DefaultCurrency = "£"

type PotSummary struct {
	pool.Pot
	Currency string
	Cycle    int
}

type PoolService struct {
	playerRepo   player.Repository
	settingsRepo pool.SettingsRepository
	entryFee     int64
	currency     string
}

func NewPoolService(playerRepo player.Repository, settingsRepo pool.SettingsRepository, entryFee int64, currency string) *PoolService {
	if entryFee <= 0 {
		entryFee = pool.DefaultEntryFee
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	return &PoolService{
		playerRepo:   playerRepo,
		settingsRepo: settingsRepo,
		entryFee:     entryFee,
		currency:     currency,
	}
}

func (s *PoolService) Pot(ctx context.Context) (PotSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PoolService.Pot")
	defer span.End()

	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return PotSummary{}, fmt.Errorf("list players: %w", err)
	}
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return PotSummary{}, fmt.Errorf("get settings: %w", err)
	}

	return PotSummary{
		Pot:      pool.ComputePot(players, s.entryFee, settings.RolloverMultiplier),
		Currency: s.currency,
		Cycle:    settings.Cycle,
	}, nil
}
