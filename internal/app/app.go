package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/last-man-standing/external/footballdata"
	"github.com/riskibarqy/last-man-standing/internal/config"
	"github.com/riskibarqy/last-man-standing/internal/domain/match"
	"github.com/riskibarqy/last-man-standing/internal/domain/pick"
	"github.com/riskibarqy/last-man-standing/internal/domain/player"
	"github.com/riskibarqy/last-man-standing/internal/domain/pool"
	"github.com/riskibarqy/last-man-standing/internal/infrastructure/jobqueue"
	cacherepo "github.com/riskibarqy/last-man-standing/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/last-man-standing/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/last-man-standing/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/last-man-standing/internal/interfaces/httpapi"
	basecache "github.com/riskibarqy/last-man-standing/internal/platform/cache"
	idgen "github.com/riskibarqy/last-man-standing/internal/platform/id"
	"github.com/riskibarqy/last-man-standing/internal/platform/logging"
	"github.com/riskibarqy/last-man-standing/internal/platform/resilience"
	"github.com/riskibarqy/last-man-standing/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

const dbPingTimeout = 5 * time.Second

// App is the assembled service: the HTTP server plus the optional background
// settlement scheduler.
type App struct {
	Server    *http.Server
	Scheduler *jobqueue.SettlementScheduler
	db        *sqlx.DB
}

type repositories struct {
	players  player.Repository
	picks    pick.Repository
	settings pool.SettingsRepository
	db       *sqlx.DB
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	repos, err := newRepositories(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	matchCache := newMatchProvider(cfg, logger)
	ids := idgen.NewRandomGenerator("pick_")

	pickSvc := usecase.NewPickService(repos.players, repos.picks, repos.settings, matchCache, ids, usecase.PickServiceOptions{
		DeadlineLead: cfg.PoolDeadlineLead,
		RevealLead:   cfg.PoolRevealLead,
	}, logger.Named("pick"))
	eliminationSvc := usecase.NewEliminationService(repos.players, repos.picks, repos.settings, matchCache, cfg.PoolProcessWorkers, logger.Named("elimination"))
	cycleSvc := usecase.NewCycleService(repos.players, repos.picks, repos.settings, matchCache, cfg.PoolEntryFee, logger.Named("cycle"))
	poolSvc := usecase.NewPoolService(repos.players, repos.settings, cfg.PoolEntryFee, cfg.PoolCurrency)
	gameweekSvc := usecase.NewGameweekService(matchCache, usecase.GameweekOptions{
		LastRound:   cfg.PoolLastRound,
		RoundBuffer: cfg.PoolRoundBuffer,
	}, logger.Named("gameweek"))
	boardSvc := usecase.NewBoardService(repos.players, repos.picks, repos.settings, matchCache, eliminationSvc, cycleSvc, gameweekSvc, usecase.BoardOptions{
		DeadlineLead: cfg.PoolDeadlineLead,
		RevealLead:   cfg.PoolRevealLead,
		Currency:     cfg.PoolCurrency,
		AutoProcess:  cfg.PoolAutoProcess,
	}, logger.Named("board"))
	backfillSvc := usecase.NewBackfillService(repos.players, repos.picks, repos.settings, ids, nil, logger.Named("backfill"))
	settlementSvc := usecase.NewSettlementService(gameweekSvc, matchCache, eliminationSvc, cycleSvc, logger)

	handler := httpapi.NewHandler(
		gameweekSvc,
		pickSvc,
		boardSvc,
		eliminationSvc,
		cycleSvc,
		poolSvc,
		backfillSvc,
		matchCache,
		logger,
	)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.PoolAdminToken)

	out := &App{
		Server: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		db: repos.db,
	}

	if cfg.SettlementEnabled {
		scheduler, err := jobqueue.NewSettlementScheduler(jobqueue.SchedulerConfig{
			Schedule: cfg.SettlementSchedule,
		}, settlementSvc, logger)
		if err != nil {
			_ = out.Close()
			return nil, err
		}
		out.Scheduler = scheduler
	}

	return out, nil
}

// Close releases the database handle. The HTTP server and scheduler are
// stopped by the caller.
func (a *App) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}

func newRepositories(ctx context.Context, cfg config.Config, logger *logging.Logger) (repositories, error) {
	if cfg.StorageDriver != config.StoragePostgres {
		logger.Info("using in-memory storage", "storage_driver", cfg.StorageDriver)
		return repositories{
			players:  memory.NewPlayerRepository(),
			picks:    memory.NewPickRepository(),
			settings: memory.NewSettingsRepository(),
		}, nil
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return repositories{}, err
	}
	logger.Info("using postgres storage", "db_name", dbNameFromURL(cfg.DBURL), "max_open_conns", cfg.DBMaxOpenConns)

	return repositories{
		players:  postgres.NewPlayerRepository(db),
		picks:    postgres.NewPickRepository(db),
		settings: postgres.NewSettingsRepository(db),
		db:       db,
	}, nil
}

func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	db, err := otelsqlx.Open("postgres", normalizeDBURL(cfg.DBURL, cfg.ServiceName),
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxOpenConns)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return db, nil
}

// newMatchProvider returns football-data.org behind the snapshot cache, or the
// seeded schedule when the provider is disabled.
func newMatchProvider(cfg config.Config, logger *logging.Logger) *cacherepo.MatchProvider {
	var upstream match.Provider
	if cfg.FootballDataEnabled {
		upstream = footballdata.NewClient(footballdata.ClientConfig{
			BaseURL:     cfg.FootballDataBaseURL,
			Token:       cfg.FootballDataToken,
			Competition: cfg.FootballDataCompetition,
			Timeout:     cfg.FootballDataTimeout,
			MaxRetries:  cfg.FootballDataMaxRetries,
			Logger:      logger.Named("footballdata"),
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.FootballDataCircuitEnabled,
				FailureThreshold: cfg.FootballDataCircuitFailureCount,
				OpenTimeout:      cfg.FootballDataCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.FootballDataCircuitHalfOpenMaxReq,
			},
		})
		logger.Info("using football-data.org provider", "competition", cfg.FootballDataCompetition)
	} else {
		upstream = memory.NewMatchProvider(memory.SeedMatches(cfg.SeedFirstRound, cfg.SeedLastRound, cfg.SeedFirstKickoff, time.Now().UTC())...)
		logger.Info("using seeded match schedule",
			"first_round", cfg.SeedFirstRound,
			"last_round", cfg.SeedLastRound,
			"first_kickoff", cfg.SeedFirstKickoff,
		)
	}

	return cacherepo.NewMatchProvider(upstream, basecache.NewStore(cfg.CacheTTL), logger.Named("match_cache"))
}
