package usecase

import "strings"

// Session is the explicit per-request context handed to use cases. Admin-only
// knobs are ignored for non-admin sessions.
type Session struct {
	ViewerID       string
	IsAdmin        bool
	RoundOverride  int
	SimulateReveal bool
}

func (s Session) Viewer() string {
	return strings.TrimSpace(s.ViewerID)
}

// EffectiveRoundOverride returns the admin round override, or 0 when none applies.
func (s Session) EffectiveRoundOverride() int {
	if !s.IsAdmin || s.RoundOverride <= 0 {
		return 0
	}
	return s.RoundOverride
}

func (s Session) ForceReveal() bool {
	return s.IsAdmin && s.SimulateReveal
}
