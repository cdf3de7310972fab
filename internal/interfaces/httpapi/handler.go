package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/last-man-standing/internal/platform/logging"
	"github.com/riskibarqy/last-man-standing/internal/usecase"
)

// RoundInvalidator drops cached match data for a round before an admin run.
type RoundInvalidator interface {
	Invalidate(ctx context.Context, round int)
}

type Handler struct {
	gameweekService    *usecase.GameweekService
	pickService        *usecase.PickService
	boardService       *usecase.BoardService
	eliminationService *usecase.EliminationService
	cycleService       *usecase.CycleService
	poolService        *usecase.PoolService
	backfillService    *usecase.BackfillService
	matchCache         RoundInvalidator
	logger             *logging.Logger
	validator          *validator.Validate
}

func NewHandler(
	gameweekService *usecase.GameweekService,
	pickService *usecase.PickService,
	boardService *usecase.BoardService,
	eliminationService *usecase.EliminationService,
	cycleService *usecase.CycleService,
	poolService *usecase.PoolService,
	backfillService *usecase.BackfillService,
	matchCache RoundInvalidator,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		gameweekService:    gameweekService,
		pickService:        pickService,
		boardService:       boardService,
		eliminationService: eliminationService,
		cycleService:       cycleService,
		poolService:        poolService,
		backfillService:    backfillService,
		matchCache:         matchCache,
		logger:             logger,
		validator:          validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeJSON reads a strict JSON body into dst and validates it.
func (h *Handler) decodeJSON(ctx context.Context, body io.Reader, dst any) error {
	decoder := sonic.ConfigDefault.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return h.validateRequest(ctx, dst)
}

func parseRoundParam(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.PathValue("round"))
	round, err := strconv.Atoi(raw)
	if err != nil || round <= 0 {
		return 0, fmt.Errorf("%w: round must be a positive integer, got %q", usecase.ErrInvalidInput, raw)
	}
	return round, nil
}
