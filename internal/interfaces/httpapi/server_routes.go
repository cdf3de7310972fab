package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPoolRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/rounds/current", handler.GetCurrentRound)
	mux.HandleFunc("GET /v1/rounds/{round}/board", handler.GetBoard)
	mux.HandleFunc("GET /v1/rounds/{round}/picks", handler.ListRoundPicks)
	mux.HandleFunc("POST /v1/rounds/{round}/picks", handler.SubmitPick)
	mux.HandleFunc("GET /v1/rounds/{round}/players/{playerID}/available-teams", handler.ListAvailableTeams)
	mux.HandleFunc("GET /v1/players", handler.ListPlayers)
	mux.HandleFunc("POST /v1/players", handler.RegisterPlayer)
	mux.HandleFunc("GET /v1/players/{playerID}/picks", handler.ListPlayerPicks)
	mux.HandleFunc("GET /v1/pot", handler.GetPot)
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, adminToken string) {
	mux.Handle("POST /v1/admin/rounds/{round}/process", RequireAdminToken(adminToken, http.HandlerFunc(handler.ProcessRound)))
	mux.Handle("POST /v1/admin/reset", RequireAdminToken(adminToken, http.HandlerFunc(handler.ResetPool)))
	mux.Handle("POST /v1/admin/next-cycle", RequireAdminToken(adminToken, http.HandlerFunc(handler.StartNextCycle)))
	mux.Handle("POST /v1/admin/backfill", RequireAdminToken(adminToken, http.HandlerFunc(handler.ImportHistory)))
}
