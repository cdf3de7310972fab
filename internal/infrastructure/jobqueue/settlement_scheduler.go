package jobqueue

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/last-man-standing/internal/platform/logging"
	"github.com/riskibarqy/last-man-standing/internal/usecase"
	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const defaultRunTimeout = 2 * time.Minute

var schedulerTracer = otel.Tracer("last-man-standing/internal/infrastructure/jobqueue")

// Settler is the work a settlement tick performs.
type Settler interface {
	SettleDue(ctx context.Context) ([]usecase.SettledRound, error)
}

type SchedulerConfig struct {
	// Schedule is a standard five-field cron expression or a descriptor such as
	// "@every 15m".
	Schedule   string
	RunTimeout time.Duration
}

// SettlementScheduler runs round settlement on a cron schedule. Overlapping
// ticks are skipped and a panicking run is recovered and logged.
type SettlementScheduler struct {
	cron     *cron.Cron
	settler  Settler
	timeout  time.Duration
	schedule string
	logger   *logging.Logger
}

func NewSettlementScheduler(cfg SchedulerConfig, settler Settler, logger *logging.Logger) (*SettlementScheduler, error) {
	if settler == nil {
		return nil, fmt.Errorf("settler is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("settlement")
	timeout := cfg.RunTimeout
	if timeout <= 0 {
		timeout = defaultRunTimeout
	}

	adapter := cronLogger{logger: logger}
	s := &SettlementScheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(adapter),
			cron.WithChain(cron.Recover(adapter), cron.SkipIfStillRunning(adapter)),
		),
		settler:  settler,
		timeout:  timeout,
		schedule: cfg.Schedule,
		logger:   logger,
	}
	if _, err := s.cron.AddFunc(cfg.Schedule, s.tick); err != nil {
		return nil, fmt.Errorf("parse settlement schedule %q: %w", cfg.Schedule, err)
	}
	return s, nil
}

func (s *SettlementScheduler) Start() {
	s.logger.Info("settlement scheduler starting", "schedule", s.schedule)
	s.cron.Start()
}

// Stop prevents new runs and waits for a running one until ctx is done.
func (s *SettlementScheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop().Done()
	select {
	case <-done:
		s.logger.Info("settlement scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for settlement run: %w", ctx.Err())
	}
}

func (s *SettlementScheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.RunOnce(ctx); err != nil {
		s.logger.WarnContext(ctx, "settlement run failed", "error", err)
	}
}

// RunOnce performs one settlement pass inside its own span.
func (s *SettlementScheduler) RunOnce(ctx context.Context) ([]usecase.SettledRound, error) {
	ctx, span := schedulerTracer.Start(ctx, "jobqueue.SettlementScheduler.RunOnce")
	defer span.End()

	settled, err := s.settler.SettleDue(ctx)
	if err != nil {
		span.RecordError(err)
		return settled, err
	}
	rounds := make([]int, 0, len(settled))
	for _, item := range settled {
		rounds = append(rounds, item.Round)
	}
	span.SetAttributes(attribute.IntSlice("settlement.rounds", rounds))
	return settled, nil
}

// cronLogger routes cron's internal logging into the service logger.
type cronLogger struct {
	logger *logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron "+msg, append([]any{"error", err}, keysAndValues...)...)
}
