package pick

import (
	"errors"
	"fmt"
	"time"
)

// ErrValidation is the sentinel every *ValidationError unwraps to.
var ErrValidation = errors.New("pick validation failed")

// Code identifies which precondition rejected a pick submission.
type Code string

const (
	CodeDeadlinePassed   Code = "DEADLINE_PASSED"
	CodePlayerEliminated Code = "PLAYER_ELIMINATED"
	CodeNoTeamsAvailable Code = "NO_TEAMS_AVAILABLE"
	CodeTeamNotInRound   Code = "TEAM_NOT_IN_ROUND"
	CodeTeamAlreadyUsed  Code = "TEAM_ALREADY_USED"
)

// ValidationError is a rejected submission. It never changes state.
type ValidationError struct {
	Code    Code
	Message string
}

func NewValidationError(code Code, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// CodeOf extracts the validation code from err, if any.
func CodeOf(err error) (Code, bool) {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Code, true
	}
	return "", false
}

// Pick is a player's single team choice for one round. Cycle is the pool cycle
// the pick was made in; only picks of the running cycle take part in
// elimination and cycle assessment.
type Pick struct {
	ID        string
	PlayerID  string
	Round     int
	Cycle     int
	Team      string
	CreatedAt time.Time
}

// Key is the uniqueness key of a pick.
type Key struct {
	PlayerID string
	Round    int
}

func (p Pick) Key() Key {
	return Key{PlayerID: p.PlayerID, Round: p.Round}
}
