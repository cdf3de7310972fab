package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/riskibarqy/last-man-standing/internal/config"
	"github.com/riskibarqy/last-man-standing/internal/platform/logging"
)

func memoryConfig() config.Config {
	return config.Config{
		AppEnv:             config.EnvDev,
		ServiceName:        "last-man-standing-api",
		HTTPAddr:           ":0",
		ReadTimeout:        5 * time.Second,
		WriteTimeout:       5 * time.Second,
		StorageDriver:      config.StorageMemory,
		CacheTTL:           time.Minute,
		PoolEntryFee:       10,
		PoolCurrency:       "£",
		PoolAdminToken:     "s3cret",
		PoolDeadlineLead:   time.Hour,
		PoolRevealLead:     30 * time.Minute,
		PoolLastRound:      38,
		PoolRoundBuffer:    3 * time.Hour,
		PoolProcessWorkers: 2,
		SettlementSchedule: "@every 15m",
		SeedFirstRound:     1,
		SeedLastRound:      38,
		SeedFirstKickoff:   time.Date(2025, 8, 15, 19, 0, 0, 0, time.UTC),
	}
}

func TestNew_MemoryStorage(t *testing.T) {
	application, err := New(context.Background(), memoryConfig(), logging.NewNop())
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	t.Cleanup(func() { _ = application.Close() })

	if application.Scheduler != nil {
		t.Fatalf("scheduler must stay off unless enabled")
	}
	if application.Server.ReadTimeout != 5*time.Second {
		t.Fatalf("unexpected read timeout: %s", application.Server.ReadTimeout)
	}

	rec := httptest.NewRecorder()
	application.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected healthz 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	application.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/rounds/current", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected current round from seeded schedule, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestNew_SettlementScheduler(t *testing.T) {
	cfg := memoryConfig()
	cfg.SettlementEnabled = true

	application, err := New(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	if application.Scheduler == nil {
		t.Fatalf("expected settlement scheduler")
	}

	cfg.SettlementSchedule = "every now and then"
	if _, err := New(context.Background(), cfg, logging.NewNop()); err == nil {
		t.Fatalf("expected error for invalid settlement schedule")
	}
}

func TestNew_RequiresHTTPAddr(t *testing.T) {
	cfg := memoryConfig()
	cfg.HTTPAddr = ""

	if _, err := New(context.Background(), cfg, logging.NewNop()); err == nil {
		t.Fatalf("expected error for empty http addr")
	}
}
