package httpapi

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"

	"github.com/riskibarqy/last-man-standing/internal/usecase"
)

type contextKey string

const sessionContextKey contextKey = "pool_session"

const (
	headerPlayerID       = "X-Player-ID"
	headerAdminToken     = "X-Admin-Token"
	headerRoundOverride  = "X-Round-Override"
	headerSimulateReveal = "X-Simulate-Reveal"
)

func withSession(ctx context.Context, s usecase.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

func sessionFromContext(ctx context.Context) usecase.Session {
	s, _ := ctx.Value(sessionContextKey).(usecase.Session)
	return s
}

// sessionFromRequest builds the per-request session. Round override and
// reveal simulation are only honoured for requests carrying the admin token.
func sessionFromRequest(r *http.Request, adminToken string) usecase.Session {
	s := usecase.Session{
		ViewerID: strings.TrimSpace(r.Header.Get(headerPlayerID)),
		IsAdmin:  validAdminToken(adminToken, r.Header.Get(headerAdminToken)),
	}
	if !s.IsAdmin {
		return s
	}

	if raw := strings.TrimSpace(r.Header.Get(headerRoundOverride)); raw != "" {
		if round, err := strconv.Atoi(raw); err == nil && round > 0 {
			s.RoundOverride = round
		}
	}
	if raw := strings.TrimSpace(r.Header.Get(headerSimulateReveal)); raw != "" {
		s.SimulateReveal, _ = strconv.ParseBool(raw)
	}

	return s
}

func validAdminToken(expected, provided string) bool {
	expected = strings.TrimSpace(expected)
	provided = strings.TrimSpace(provided)
	if expected == "" || provided == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(provided)) == 1
}
