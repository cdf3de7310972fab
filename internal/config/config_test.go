package config

import (
	"testing"
	"time"

	"github.com/riskibarqy/last-man-standing/internal/platform/logging"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.StorageDriver != StorageMemory {
		t.Fatalf("expected memory storage by default, got %q", cfg.StorageDriver)
	}
	if cfg.PoolEntryFee != 10 || cfg.PoolCurrency != "£" {
		t.Fatalf("unexpected pool defaults: fee=%d currency=%q", cfg.PoolEntryFee, cfg.PoolCurrency)
	}
	if cfg.PoolDeadlineLead != time.Hour || cfg.PoolRevealLead != 30*time.Minute {
		t.Fatalf("unexpected window defaults: deadline=%s reveal=%s", cfg.PoolDeadlineLead, cfg.PoolRevealLead)
	}
	if cfg.PoolLastRound != 38 || cfg.PoolRoundBuffer != 3*time.Hour {
		t.Fatalf("unexpected gameweek defaults: last=%d buffer=%s", cfg.PoolLastRound, cfg.PoolRoundBuffer)
	}
	if cfg.FootballDataCompetition != "2021" || cfg.FootballDataTimeout != 10*time.Second {
		t.Fatalf("unexpected provider defaults: %q %s", cfg.FootballDataCompetition, cfg.FootballDataTimeout)
	}
	if cfg.LogFormat != logging.FormatConsole {
		t.Fatalf("expected console logs in dev, got %q", cfg.LogFormat)
	}
	if cfg.SeedLastRound != cfg.PoolLastRound {
		t.Fatalf("expected seed schedule to cover the season, got %d", cfg.SeedLastRound)
	}
}

func TestLoad_LogFormatByEnv(t *testing.T) {
	t.Run("stage logs json by default", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvStage)
		t.Setenv("APP_LOG_FORMAT", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.LogFormat != logging.FormatJSON {
			t.Fatalf("expected json logs, got %q", cfg.LogFormat)
		}
	})

	t.Run("invalid format", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("APP_LOG_FORMAT", "xml")

		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid APP_LOG_FORMAT")
		}
	})
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", `foo=bar, uptrace-dsn="https://token@api.uptrace.dev?grpc=4317"`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev?grpc=4317" {
		t.Fatalf("unexpected UptraceDSN: %q", cfg.UptraceDSN)
	}
}

func TestLoad_StorageDriver(t *testing.T) {
	tests := []struct {
		name    string
		driver  string
		dbURL   string
		want    string
		wantErr bool
	}{
		{name: "postgres", driver: "Postgres", dbURL: "postgres://localhost/pool", want: StoragePostgres},
		{name: "memory", driver: "memory", want: StorageMemory},
		{name: "unknown driver", driver: "firestore", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("APP_ENV", EnvDev)
			t.Setenv("STORAGE_DRIVER", tt.driver)
			t.Setenv("DB_URL", tt.dbURL)

			cfg, err := Load()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for STORAGE_DRIVER=%q", tt.driver)
				}
				return
			}
			if err != nil {
				t.Fatalf("load config: %v", err)
			}
			if cfg.StorageDriver != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, cfg.StorageDriver)
			}
		})
	}
}

func TestLoad_FootballDataRequiresToken(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("FOOTBALLDATA_ENABLED", "true")
	t.Setenv("FOOTBALLDATA_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when FOOTBALLDATA_ENABLED=true without FOOTBALLDATA_TOKEN")
	}
}

func TestLoad_FootballDataConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("FOOTBALLDATA_ENABLED", "true")
	t.Setenv("FOOTBALLDATA_TOKEN", " abc123 ")
	t.Setenv("FOOTBALLDATA_COMPETITION", "2014")
	t.Setenv("FOOTBALLDATA_TIMEOUT", "4s")
	t.Setenv("FOOTBALLDATA_MAX_RETRIES", "0")
	t.Setenv("FOOTBALLDATA_CIRCUIT_FAILURE_COUNT", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.FootballDataToken != "abc123" {
		t.Fatalf("unexpected token: %q", cfg.FootballDataToken)
	}
	if cfg.FootballDataCompetition != "2014" {
		t.Fatalf("unexpected competition: %q", cfg.FootballDataCompetition)
	}
	if cfg.FootballDataTimeout != 4*time.Second || cfg.FootballDataMaxRetries != 0 {
		t.Fatalf("unexpected transport config: %s retries=%d", cfg.FootballDataTimeout, cfg.FootballDataMaxRetries)
	}
	if !cfg.FootballDataCircuitEnabled || cfg.FootballDataCircuitFailureCount != 3 {
		t.Fatalf("unexpected circuit config: enabled=%v failures=%d", cfg.FootballDataCircuitEnabled, cfg.FootballDataCircuitFailureCount)
	}
}

func TestLoad_PoolSettingsValidation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "zero entry fee", key: "POOL_ENTRY_FEE", value: "0"},
		{name: "negative deadline lead", key: "POOL_DEADLINE_LEAD", value: "-1h"},
		{name: "bad reveal lead", key: "POOL_REVEAL_LEAD", value: "soon"},
		{name: "zero last round", key: "POOL_LAST_ROUND", value: "0"},
		{name: "bad auto process", key: "POOL_AUTO_PROCESS", value: "maybe"},
		{name: "zero workers", key: "POOL_PROCESS_WORKERS", value: "0"},
		{name: "bad seed kickoff", key: "SEED_FIRST_KICKOFF", value: "2025-08-15"},
		{name: "zero cache ttl", key: "CACHE_TTL", value: "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("APP_ENV", EnvDev)
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestLoad_ProdRequiresAdminToken(t *testing.T) {
	t.Setenv("APP_ENV", EnvProd)
	t.Setenv("POOL_ADMIN_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error in prod without POOL_ADMIN_TOKEN")
	}

	t.Setenv("POOL_ADMIN_TOKEN", "s3cret")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PoolAdminToken != "s3cret" {
		t.Fatalf("unexpected admin token")
	}
}

func TestLoad_SettlementSchedule(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("SETTLEMENT_ENABLED", "true")
	t.Setenv("SETTLEMENT_SCHEDULE", "*/10 * * * *")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.SettlementEnabled || cfg.SettlementSchedule != "*/10 * * * *" {
		t.Fatalf("unexpected settlement config: %v %q", cfg.SettlementEnabled, cfg.SettlementSchedule)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("APP_SERVICE_NAME", "pool-api")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "pool-api" {
		t.Fatalf("expected pyroscope app name to default to service name, got %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_CORSOriginsParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://pool.example.com , ,http://localhost:3000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[0] != "https://pool.example.com" {
		t.Fatalf("unexpected origins: %+v", cfg.CORSAllowedOrigins)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]logging.Level{
		"debug":   logging.LevelDebug,
		"WARNING": logging.LevelWarn,
		"error":   logging.LevelError,
		"":        logging.LevelInfo,
		"verbose": logging.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLogLevel(in); got != want {
			t.Fatalf("parseLogLevel(%q)=%s want %s", in, got, want)
		}
	}
}
