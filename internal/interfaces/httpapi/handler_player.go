package httpapi

import (
	"net/http"
	"strings"
)

func (h *Handler) RegisterPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RegisterPlayer")
	defer span.End()

	var req registerPlayerRequest
	if err := h.decodeJSON(ctx, r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.pickService.RegisterPlayer(ctx, req.Name)
	if err != nil {
		h.logger.WarnContext(ctx, "register player failed", "name", req.Name, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, playerToDTO(item))
}

func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayers")
	defer span.End()

	players, err := h.pickService.ListPlayers(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list players failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]playerDTO, 0, len(players))
	for _, item := range players {
		items = append(items, playerToDTO(item))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListPlayerPicks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayerPicks")
	defer span.End()

	playerID := strings.TrimSpace(r.PathValue("playerID"))
	picks, err := h.pickService.PlayerPicks(ctx, sessionFromContext(ctx), playerID)
	if err != nil {
		h.logger.WarnContext(ctx, "list player picks failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]pickViewDTO, 0, len(picks))
	for _, item := range picks {
		items = append(items, pickViewToDTO(item))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetPot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPot")
	defer span.End()

	pot, err := h.poolService.Pot(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "compute pot failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, potToDTO(pot))
}
