package player

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status is the survivor state of a participant within the current cycle.
type Status string

const (
	StatusPending    Status = "pending"
	StatusActive     Status = "active"
	StatusEliminated Status = "eliminated"
)

var AllStatuses = map[Status]struct{}{
	StatusPending:    {},
	StatusActive:     {},
	StatusEliminated: {},
}

// ErrVersionConflict is returned by repositories when a compare-and-swap write
// finds a different version than expected.
var ErrVersionConflict = errors.New("player version conflict")

// Player is one participant of the pool.
type Player struct {
	ID              string
	Name            string
	Status          Status
	UsedTeams       []string
	EliminatedRound *int
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// New builds a pending player with every optional field resolved.
func New(id, name string, now time.Time) Player {
	name = strings.TrimSpace(name)
	if name == "" {
		name = id
	}
	return Player{
		ID:        id,
		Name:      name,
		Status:    StatusPending,
		UsedTeams: []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (p Player) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("player id is required")
	}
	if _, ok := AllStatuses[p.Status]; !ok {
		return fmt.Errorf("invalid player status: %s", p.Status)
	}
	seen := make(map[string]struct{}, len(p.UsedTeams))
	for _, team := range p.UsedTeams {
		if _, ok := seen[team]; ok {
			return fmt.Errorf("duplicate used team %s", team)
		}
		seen[team] = struct{}{}
	}
	return nil
}

func (p Player) HasUsed(team string) bool {
	for _, used := range p.UsedTeams {
		if used == team {
			return true
		}
	}
	return false
}

func (p Player) IsEliminated() bool {
	return p.Status == StatusEliminated
}

// Paid reports whether the player entered the current cycle by submitting a pick.
func (p Player) Paid() bool {
	return p.Status == StatusActive || p.Status == StatusEliminated
}

// Clone returns a deep copy safe to mutate.
func (p Player) Clone() Player {
	out := p
	out.UsedTeams = append([]string{}, p.UsedTeams...)
	if p.EliminatedRound != nil {
		round := *p.EliminatedRound
		out.EliminatedRound = &round
	}
	return out
}

// WithPick returns the player after a pick for team was recorded.
func (p Player) WithPick(team string, now time.Time) Player {
	out := p.Clone()
	if !out.HasUsed(team) {
		out.UsedTeams = append(out.UsedTeams, team)
	}
	if out.Status == StatusPending {
		out.Status = StatusActive
	}
	out.UpdatedAt = now
	return out
}

// Eliminate returns the player eliminated in round. An already eliminated player
// keeps the round it was first eliminated in.
func (p Player) Eliminate(round int, now time.Time) Player {
	out := p.Clone()
	if out.Status == StatusEliminated && out.EliminatedRound != nil {
		return out
	}
	out.Status = StatusEliminated
	out.EliminatedRound = &round
	out.UpdatedAt = now
	return out
}

// Reset returns the player at the start of a fresh cycle.
func (p Player) Reset(now time.Time) Player {
	out := p.Clone()
	out.Status = StatusPending
	out.UsedTeams = []string{}
	out.EliminatedRound = nil
	out.UpdatedAt = now
	return out
}

// IsReset reports whether the player already is in the fresh-cycle state.
func (p Player) IsReset() bool {
	return p.Status == StatusPending && len(p.UsedTeams) == 0 && p.EliminatedRound == nil
}
