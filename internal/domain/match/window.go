package match

import "time"

const (
	DefaultDeadlineLead = time.Hour
	DefaultRevealLead   = 30 * time.Minute
)

// WindowOptions carries the per-call knobs of the pick window. Zero values fall
// back to the defaults.
type WindowOptions struct {
	DeadlineLead time.Duration
	RevealLead   time.Duration
	// ForceReveal opens the reveal window regardless of time. Admin preview only.
	ForceReveal bool
}

// Window is the submission/reveal state of a round at one instant.
type Window struct {
	EarliestKickoff time.Time
	Deadline        time.Time
	RevealTime      time.Time
	SubmissionOpen  bool
	RevealActive    bool
}

// ComputeWindow derives the deadline and reveal time from the round's matches.
// The anchor is the earliest kickoff among matches still scheduled, or among all
// matches when none are. A round without matches is closed.
func ComputeWindow(matches []Match, now time.Time, opts WindowOptions) Window {
	deadlineLead := opts.DeadlineLead
	if deadlineLead <= 0 {
		deadlineLead = DefaultDeadlineLead
	}
	revealLead := opts.RevealLead
	if revealLead <= 0 {
		revealLead = DefaultRevealLead
	}

	anchor, ok := earliestKickoff(matches, true)
	if !ok {
		anchor, ok = earliestKickoff(matches, false)
	}
	if !ok {
		return Window{RevealActive: opts.ForceReveal}
	}

	deadline := anchor.Add(-deadlineLead)
	reveal := anchor.Add(-revealLead)
	return Window{
		EarliestKickoff: anchor,
		Deadline:        deadline,
		RevealTime:      reveal,
		SubmissionOpen:  now.Before(deadline),
		RevealActive:    opts.ForceReveal || !now.Before(reveal),
	}
}

// CanView reports whether viewerID may see the pick owned by ownerID.
func (w Window) CanView(viewerID, ownerID string) bool {
	if viewerID != "" && viewerID == ownerID {
		return true
	}
	return w.RevealActive
}

func earliestKickoff(matches []Match, scheduledOnly bool) (time.Time, bool) {
	var (
		out   time.Time
		found bool
	)
	for _, m := range matches {
		if scheduledOnly && !m.IsScheduled() {
			continue
		}
		if m.KickoffAt.IsZero() {
			continue
		}
		if !found || m.KickoffAt.Before(out) {
			out = m.KickoffAt
			found = true
		}
	}
	return out, found
}
