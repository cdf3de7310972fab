package match

import (
	"testing"
	"time"
)

func TestComputeWindow_EarliestScheduledKickoff(t *testing.T) {
	t0 := time.Date(2025, 11, 29, 12, 30, 0, 0, time.UTC)
	t1 := t0.Add(2*time.Hour + 30*time.Minute)
	t2 := t0.Add(24 * time.Hour)
	matches := []Match{
		{HomeTeam: "C", AwayTeam: "D", Status: StatusScheduled, KickoffAt: t1},
		{HomeTeam: "A", AwayTeam: "B", Status: StatusScheduled, KickoffAt: t0},
		{HomeTeam: "E", AwayTeam: "F", Status: StatusTimed, KickoffAt: t2},
	}

	w := ComputeWindow(matches, t0.Add(-45*time.Minute), WindowOptions{})
	if !w.Deadline.Equal(t0.Add(-time.Hour)) {
		t.Fatalf("expected deadline %v, got %v", t0.Add(-time.Hour), w.Deadline)
	}
	if !w.RevealTime.Equal(t0.Add(-30 * time.Minute)) {
		t.Fatalf("expected reveal %v, got %v", t0.Add(-30*time.Minute), w.RevealTime)
	}
	if w.RevealActive {
		t.Fatalf("expected reveal inactive at T0-45m")
	}
	if w.SubmissionOpen {
		t.Fatalf("expected submission closed at T0-45m")
	}

	w = ComputeWindow(matches, t0.Add(-20*time.Minute), WindowOptions{})
	if !w.RevealActive {
		t.Fatalf("expected reveal active at T0-20m")
	}

	w = ComputeWindow(matches, t0.Add(-61*time.Minute), WindowOptions{})
	if !w.SubmissionOpen {
		t.Fatalf("expected submission open before deadline")
	}

	w = ComputeWindow(matches, t0.Add(-time.Hour), WindowOptions{})
	if w.SubmissionOpen {
		t.Fatalf("expected submission closed exactly at deadline")
	}
}

func TestComputeWindow_IgnoresStartedMatchesWhenScheduledRemain(t *testing.T) {
	started := time.Date(2025, 11, 28, 20, 0, 0, 0, time.UTC)
	next := started.Add(40 * time.Hour)
	matches := []Match{
		{HomeTeam: "A", AwayTeam: "B", Status: StatusFinished, KickoffAt: started},
		{HomeTeam: "C", AwayTeam: "D", Status: StatusScheduled, KickoffAt: next},
	}

	w := ComputeWindow(matches, started, WindowOptions{})
	if !w.EarliestKickoff.Equal(next) {
		t.Fatalf("expected anchor on scheduled match %v, got %v", next, w.EarliestKickoff)
	}
}

func TestComputeWindow_FallsBackToAllMatches(t *testing.T) {
	first := time.Date(2025, 11, 28, 20, 0, 0, 0, time.UTC)
	matches := []Match{
		{HomeTeam: "A", AwayTeam: "B", Status: StatusFinished, KickoffAt: first.Add(time.Hour)},
		{HomeTeam: "C", AwayTeam: "D", Status: StatusInPlay, KickoffAt: first},
	}

	w := ComputeWindow(matches, first.Add(3*time.Hour), WindowOptions{})
	if !w.EarliestKickoff.Equal(first) {
		t.Fatalf("expected fallback anchor %v, got %v", first, w.EarliestKickoff)
	}
	if w.SubmissionOpen {
		t.Fatalf("expected submission closed")
	}
	if !w.RevealActive {
		t.Fatalf("expected reveal active")
	}
}

func TestComputeWindow_EmptyRoundAndForceReveal(t *testing.T) {
	now := time.Date(2025, 11, 28, 20, 0, 0, 0, time.UTC)

	w := ComputeWindow(nil, now, WindowOptions{})
	if w.SubmissionOpen || w.RevealActive {
		t.Fatalf("expected closed window for empty round, got %+v", w)
	}

	matches := []Match{{HomeTeam: "A", AwayTeam: "B", Status: StatusScheduled, KickoffAt: now.Add(48 * time.Hour)}}
	w = ComputeWindow(matches, now, WindowOptions{ForceReveal: true})
	if !w.RevealActive {
		t.Fatalf("expected forced reveal")
	}
	if !w.SubmissionOpen {
		t.Fatalf("force reveal must not close submissions")
	}
}

func TestWindow_CanView(t *testing.T) {
	w := Window{RevealActive: false}
	if !w.CanView("alice", "alice") {
		t.Fatalf("owner should always see own pick")
	}
	if w.CanView("bob", "alice") {
		t.Fatalf("other viewer should not see pick before reveal")
	}
	if w.CanView("", "") {
		t.Fatalf("anonymous viewer should not match empty owner")
	}

	w.RevealActive = true
	if !w.CanView("bob", "alice") {
		t.Fatalf("other viewer should see pick after reveal")
	}
}
