package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/last-man-standing/internal/usecase"
)

func (h *Handler) GetCurrentRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCurrentRound")
	defer span.End()

	current, err := h.gameweekService.CurrentRound(ctx, sessionFromContext(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "resolve current round failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, currentRoundDTO{
		Round:      current.Round,
		Overridden: current.Overridden,
	})
}

func (h *Handler) GetBoard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetBoard")
	defer span.End()

	round, err := parseRoundParam(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	board, err := h.boardService.Board(ctx, sessionFromContext(ctx), round)
	if err != nil {
		h.logger.WarnContext(ctx, "build board failed", "round", round, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, boardToDTO(board))
}

func (h *Handler) ListRoundPicks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListRoundPicks")
	defer span.End()

	round, err := parseRoundParam(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	picks, err := h.pickService.ListRoundPicks(ctx, sessionFromContext(ctx), round)
	if err != nil {
		h.logger.WarnContext(ctx, "list round picks failed", "round", round, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, roundPicksToDTO(picks))
}

func (h *Handler) ListAvailableTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListAvailableTeams")
	defer span.End()

	round, err := parseRoundParam(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	playerID := strings.TrimSpace(r.PathValue("playerID"))

	teams, err := h.pickService.AvailableTeams(ctx, playerID, round)
	if err != nil {
		h.logger.WarnContext(ctx, "list available teams failed", "player_id", playerID, "round", round, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, availableTeamsDTO{
		PlayerID: playerID,
		Round:    round,
		Teams:    teams,
	})
}

func (h *Handler) SubmitPick(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitPick")
	defer span.End()

	round, err := parseRoundParam(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req submitPickRequest
	if err := h.decodeJSON(ctx, r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.pickService.SubmitPick(ctx, sessionFromContext(ctx), usecase.SubmitPickInput{
		PlayerID: req.PlayerID,
		Round:    round,
		Team:     req.Team,
	})
	if err != nil {
		h.logger.InfoContext(ctx, "submit pick rejected", "player_id", req.PlayerID, "round", round, "error", err)
		writeError(ctx, w, err)
		return
	}

	status := http.StatusCreated
	if !result.Created {
		status = http.StatusOK
	}
	writeSuccess(ctx, w, status, submitPickResponseDTO{
		Pick:    pickToDTO(result.Pick),
		Player:  playerToDTO(result.Player),
		Created: result.Created,
	})
}
