package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/last-man-standing/internal/domain/match"
)

// MatchProvider serves a fixed schedule held in memory. It backs local
// development and tests in place of the football-data client.
type MatchProvider struct {
	mu      sync.RWMutex
	byRound map[int][]match.Match
	err     error
}

func NewMatchProvider(matches ...match.Match) *MatchProvider {
	p := &MatchProvider{byRound: make(map[int][]match.Match)}
	p.SetMatches(matches...)
	return p
}

// SetMatches replaces the rounds present in matches.
func (p *MatchProvider) SetMatches(matches ...match.Match) {
	grouped := make(map[int][]match.Match)
	for _, m := range matches {
		grouped[m.Round] = append(grouped[m.Round], m)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for round, items := range grouped {
		p.byRound[round] = items
	}
}

// SetError makes every call fail with err until cleared with nil.
func (p *MatchProvider) SetError(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
}

// Finish marks a match as finished with the given score.
func (p *MatchProvider) Finish(round int, homeTeam string, home, away int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	items := p.byRound[round]
	for i := range items {
		if items[i].HomeTeam == homeTeam {
			items[i].Status = match.StatusFinished
			items[i].Score = &match.Score{Home: home, Away: away}
		}
	}
}

func (p *MatchProvider) MatchesByRound(_ context.Context, round int) ([]match.Match, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.err != nil {
		return nil, p.err
	}
	return cloneMatches(p.byRound[round]), nil
}

func (p *MatchProvider) ScheduledMatches(_ context.Context) ([]match.Match, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.err != nil {
		return nil, p.err
	}
	out := make([]match.Match, 0)
	for _, items := range p.byRound {
		for _, m := range items {
			if m.IsScheduled() {
				out = append(out, cloneMatch(m))
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Round != out[j].Round {
			return out[i].Round < out[j].Round
		}
		return out[i].KickoffAt.Before(out[j].KickoffAt)
	})
	return out, nil
}

func cloneMatches(items []match.Match) []match.Match {
	out := make([]match.Match, 0, len(items))
	for _, m := range items {
		out = append(out, cloneMatch(m))
	}
	return out
}

func cloneMatch(m match.Match) match.Match {
	if m.Score != nil {
		score := *m.Score
		m.Score = &score
	}
	return m
}

// SeedTeams is the 2025/26 Premier League field in provider spelling.
func SeedTeams() []string {
	return []string{
		"AFC Bournemouth", "Arsenal FC", "Aston Villa FC", "Brentford FC",
		"Brighton & Hove Albion FC", "Burnley FC", "Chelsea FC", "Crystal Palace FC",
		"Everton FC", "Fulham FC", "Leeds United FC", "Liverpool FC",
		"Manchester City FC", "Manchester United FC", "Newcastle United FC",
		"Nottingham Forest FC", "Sunderland AFC", "Tottenham Hotspur FC",
		"West Ham United FC", "Wolverhampton Wanderers FC",
	}
}

// SeedMatches builds a round-robin schedule of rounds firstRound..lastRound, one
// round per week starting at firstKickoff. Rounds whose kickoff is before now
// are finished 1-0 to the home side.
func SeedMatches(firstRound, lastRound int, firstKickoff, now time.Time) []match.Match {
	teams := SeedTeams()
	n := len(teams)
	out := make([]match.Match, 0, (lastRound-firstRound+1)*n/2)
	for round := firstRound; round <= lastRound; round++ {
		offset := round - firstRound
		kickoff := firstKickoff.Add(time.Duration(offset) * 7 * 24 * time.Hour)
		// Circle method: the first team stays put and the others rotate.
		rotated := make([]string, n)
		rotated[0] = teams[0]
		for i := 1; i < n; i++ {
			rotated[i] = teams[1+(i-1+offset)%(n-1)]
		}
		for i := 0; i < n/2; i++ {
			m := match.Match{
				ID:        seedMatchID(round, i),
				Round:     round,
				HomeTeam:  rotated[i],
				AwayTeam:  rotated[n-1-i],
				Status:    match.StatusScheduled,
				KickoffAt: kickoff.Add(time.Duration(i%3) * 150 * time.Minute),
			}
			if m.KickoffAt.Add(2 * time.Hour).Before(now) {
				m.Status = match.StatusFinished
				m.Score = &match.Score{Home: 1, Away: 0}
			}
			out = append(out, m)
		}
	}
	return out
}

func seedMatchID(round, index int) string {
	return fmt.Sprintf("seed-%d-%d", round, index)
}
