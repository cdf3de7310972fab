package httpapi

import (
	"net/http"

	"github.com/riskibarqy/last-man-standing/internal/usecase"
)

// ProcessRound refreshes the round's match data, eliminates losing pickers and
// completes the round (rollover or winner).
func (h *Handler) ProcessRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ProcessRound")
	defer span.End()

	round, err := parseRoundParam(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if h.matchCache != nil {
		h.matchCache.Invalidate(ctx, round)
	}

	processed, err := h.eliminationService.ProcessRound(ctx, round)
	if err != nil {
		h.logger.WarnContext(ctx, "process round failed", "round", round, "error", err)
		writeError(ctx, w, err)
		return
	}
	completed, err := h.cycleService.CompleteRound(ctx, round)
	if err != nil {
		h.logger.WarnContext(ctx, "complete round failed", "round", round, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "round processed by admin",
		"round", round,
		"eliminated", len(processed.Eliminated),
		"cycle_state", string(completed.State.Kind),
	)

	writeSuccess(ctx, w, http.StatusOK, processRoundResponseDTO{
		Process: processResultToDTO(processed),
		State:   cycleStateToDTO(completed.State),
		Reset:   resetResultPtrToDTO(completed.Reset),
	})
}

func (h *Handler) ResetPool(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResetPool")
	defer span.End()

	var req roundRequest
	if err := h.decodeJSON(ctx, r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	reset, err := h.cycleService.HardReset(ctx, req.Round)
	if err != nil {
		h.logger.WarnContext(ctx, "hard reset failed", "round", req.Round, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, resetResultToDTO(reset))
}

func (h *Handler) StartNextCycle(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StartNextCycle")
	defer span.End()

	var req roundRequest
	if err := h.decodeJSON(ctx, r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	reset, err := h.cycleService.StartNextCycle(ctx, req.Round)
	if err != nil {
		h.logger.WarnContext(ctx, "start next cycle failed", "round", req.Round, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, resetResultToDTO(reset))
}

func (h *Handler) ImportHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ImportHistory")
	defer span.End()

	var req backfillRequest
	if err := h.decodeJSON(ctx, r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	entries := make([]usecase.BackfillEntry, 0, len(req.Entries))
	for _, entry := range req.Entries {
		entries = append(entries, usecase.BackfillEntry{Name: entry.Name, Teams: entry.Teams})
	}

	result, err := h.backfillService.ImportHistory(ctx, usecase.ImportHistoryInput{
		FirstRound:  req.FirstRound,
		CycleLength: req.CycleLength,
		Entries:     entries,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "import history failed", "entries", len(entries), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, backfillResultDTO{
		PlayersCreated: result.PlayersCreated,
		PlayersUpdated: result.PlayersUpdated,
		PicksCreated:   result.PicksCreated,
		PicksExisting:  result.PicksExisting,
	})
}
