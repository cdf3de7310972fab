package match

import (
	"fmt"
	"strings"
	"time"
)

// Status is the provider lifecycle state of a match.
type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusTimed     Status = "TIMED"
	StatusInPlay    Status = "IN_PLAY"
	StatusPaused    Status = "PAUSED"
	StatusFinished  Status = "FINISHED"
	StatusPostponed Status = "POSTPONED"
)

// Score is the full-time (or running) score of a match.
type Score struct {
	Home int
	Away int
}

// Match is one fixture inside a round.
type Match struct {
	ID        string
	Round     int
	HomeTeam  string
	AwayTeam  string
	HomeCrest string
	AwayCrest string
	Status    Status
	Score     *Score
	KickoffAt time.Time
}

func NormalizeStatus(value string) Status {
	switch Status(strings.ToUpper(strings.TrimSpace(value))) {
	case StatusTimed:
		return StatusTimed
	case StatusInPlay, "LIVE":
		return StatusInPlay
	case StatusPaused:
		return StatusPaused
	case StatusFinished, "AWARDED":
		return StatusFinished
	case StatusPostponed, "SUSPENDED", "CANCELLED", "CANCELED":
		return StatusPostponed
	default:
		return StatusScheduled
	}
}

// IsScheduled reports whether the match has not kicked off yet.
func (m Match) IsScheduled() bool {
	return m.Status == StatusScheduled || m.Status == StatusTimed
}

func (m Match) IsLive() bool {
	return m.Status == StatusInPlay || m.Status == StatusPaused
}

// IsTerminal reports whether no further result change is expected.
func (m Match) IsTerminal() bool {
	return m.Status == StatusFinished || m.Status == StatusPostponed
}

// Teams returns the distinct team identifiers playing in the given matches, in
// first-seen order.
func Teams(matches []Match) []string {
	seen := make(map[string]struct{}, len(matches)*2)
	out := make([]string, 0, len(matches)*2)
	for _, m := range matches {
		for _, team := range []string{m.HomeTeam, m.AwayTeam} {
			if team == "" {
				continue
			}
			if _, ok := seen[team]; ok {
				continue
			}
			seen[team] = struct{}{}
			out = append(out, team)
		}
	}
	return out
}

// TeamSet is Teams as a lookup set.
func TeamSet(matches []Match) map[string]struct{} {
	teams := Teams(matches)
	out := make(map[string]struct{}, len(teams))
	for _, team := range teams {
		out[team] = struct{}{}
	}
	return out
}

// ValidateRound checks that no team plays twice within one round.
func ValidateRound(matches []Match) error {
	seen := make(map[string]string, len(matches)*2)
	for _, m := range matches {
		if m.HomeTeam == "" || m.AwayTeam == "" {
			return fmt.Errorf("match %s: home and away teams are required", m.ID)
		}
		if m.HomeTeam == m.AwayTeam {
			return fmt.Errorf("match %s: team %s cannot play itself", m.ID, m.HomeTeam)
		}
		for _, team := range []string{m.HomeTeam, m.AwayTeam} {
			if other, ok := seen[team]; ok {
				return fmt.Errorf("team %s appears in matches %s and %s", team, other, m.ID)
			}
			seen[team] = m.ID
		}
	}
	return nil
}

// AllTerminal reports whether every match of a non-empty round is finished or postponed.
func AllTerminal(matches []Match) bool {
	if len(matches) == 0 {
		return false
	}
	for _, m := range matches {
		if !m.IsTerminal() {
			return false
		}
	}
	return true
}
