/* lifecycle.go
 * Contains the round lifecycle. A round's phase is never stored, it is derived from the deadline, the match results
 * and the processed flag every time it is needed
 */

package logic

import (
	"errors"
	"time"

	"bolao-bot/api/store"
)

// Phase of a round
type Phase string

const (
	PhaseOpen      Phase = "open"      // deadline in the future, predictions can be saved
	PhaseLocked    Phase = "locked"    // deadline passed, some results still missing
	PhaseFinalized Phase = "finalized" // every result recorded, not scored yet
	PhaseScored    Phase = "scored"
)

var (
	ErrRoundOpen        = errors.New("betting for this round is still open")
	ErrRoundLocked      = errors.New("betting for this round is closed")
	ErrMatchesPending   = errors.New("at least one match has no official result")
	ErrAlreadyProcessed = errors.New("round has already been scored")
	ErrNotProcessed     = errors.New("round has not been scored")
)

// Classify returns the phase of the round at the instant now
func Classify(round store.Round, now time.Time) Phase {
	switch {
	case round.Processed:
		return PhaseScored
	case IsOpen(round, now):
		return PhaseOpen
	case round.AllFinalized():
		return PhaseFinalized
	default:
		return PhaseLocked
	}
}

// IsOpen reports whether predictions can still be saved. The deadline itself is already closed
func IsOpen(round store.Round, now time.Time) bool {
	return now.Before(round.Deadline)
}

// CheckBettingOpen returns ErrRoundLocked once the deadline has been reached
func CheckBettingOpen(round store.Round, now time.Time) error {
	if !IsOpen(round, now) {
		return ErrRoundLocked
	}
	return nil
}

// CheckPredictionsVisible returns ErrRoundOpen while the round still accepts predictions. Other users' predictions are
// hidden until then so nobody can copy them
func CheckPredictionsVisible(round store.Round, now time.Time) error {
	if IsOpen(round, now) {
		return ErrRoundOpen
	}
	return nil
}

// CheckResultsEditable returns an error if official results cannot be recorded for the round right now
func CheckResultsEditable(round store.Round, now time.Time) error {
	if IsOpen(round, now) {
		return ErrRoundOpen
	}
	if round.Processed {
		return ErrAlreadyProcessed
	}
	return nil
}

// CheckScorable returns an error if the scoring action must not run for the round
func CheckScorable(round store.Round) error {
	if !round.AllFinalized() {
		return ErrMatchesPending
	}
	if round.Processed {
		return ErrAlreadyProcessed
	}
	return nil
}

// CheckUnprocessable returns ErrNotProcessed if there is no scoring pass to undo
func CheckUnprocessable(round store.Round) error {
	if !round.Processed {
		return ErrNotProcessed
	}
	return nil
}
