package match

import "sort"

// Outcome is the survivor-pool classification of a team in one round.
type Outcome string

const (
	OutcomeWin     Outcome = "WIN"
	OutcomeLose    Outcome = "LOSE"
	OutcomePending Outcome = "PENDING"
)

// Results maps team identifier to its outcome for a round.
type Results map[string]Outcome

// Outcome returns the team's outcome. Teams that did not play in the round are
// PENDING and known is false.
func (r Results) Outcome(team string) (outcome Outcome, known bool) {
	outcome, known = r[team]
	if !known {
		return OutcomePending, false
	}
	return outcome, true
}

// EvaluateResults classifies every team in the round.
//
// A finished match gives WIN to the higher score and LOSE to the lower one. A draw
// is LOSE for both sides: in this pool only a win survives. Anything not finished,
// and finished matches with no score recorded, is PENDING. A team listed in more
// than one match of the round has no single result and stays PENDING.
func EvaluateResults(matches []Match) Results {
	out := make(Results, len(matches)*2)
	for _, m := range matches {
		if m.Status != StatusFinished || m.Score == nil {
			out[m.HomeTeam] = OutcomePending
			out[m.AwayTeam] = OutcomePending
			continue
		}

		switch {
		case m.Score.Home > m.Score.Away:
			out[m.HomeTeam] = OutcomeWin
			out[m.AwayTeam] = OutcomeLose
		case m.Score.Away > m.Score.Home:
			out[m.HomeTeam] = OutcomeLose
			out[m.AwayTeam] = OutcomeWin
		default:
			out[m.HomeTeam] = OutcomeLose
			out[m.AwayTeam] = OutcomeLose
		}
	}
	for _, team := range DuplicateTeams(matches) {
		out[team] = OutcomePending
	}
	return out
}

// DuplicateTeams returns, sorted, the teams that appear in more than one match.
func DuplicateTeams(matches []Match) []string {
	counts := make(map[string]int, len(matches)*2)
	for _, m := range matches {
		for _, team := range []string{m.HomeTeam, m.AwayTeam} {
			if team != "" {
				counts[team]++
			}
		}
	}
	var out []string
	for team, n := range counts {
		if n > 1 {
			out = append(out, team)
		}
	}
	sort.Strings(out)
	return out
}
