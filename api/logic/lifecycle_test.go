/* lifecycle_test.go
 * Contains unit tests for lifecycle.go functions
 */

package logic

import (
	"testing"
	"time"

	"bolao-bot/api/store"

	"github.com/stretchr/testify/assert"
)

var deadline = time.Date(2025, 5, 10, 16, 0, 0, 0, time.UTC)

func lifecycleRound(finalized ...bool) store.Round {
	round := store.Round{Number: 1, Deadline: deadline}
	for _, f := range finalized {
		m := store.Match{Finalized: f}
		if f {
			m.HomeScore, m.AwayScore = intPtr(1), intPtr(0)
		}
		round.Matches = append(round.Matches, m)
	}
	return round
}

// TestClassify tests each phase of the round lifecycle
func TestClassify(t *testing.T) {
	before := deadline.Add(-time.Minute)
	after := deadline.Add(time.Minute)

	assert.Equal(t, PhaseOpen, Classify(lifecycleRound(false, false), before))
	assert.Equal(t, PhaseLocked, Classify(lifecycleRound(true, false), after))
	assert.Equal(t, PhaseFinalized, Classify(lifecycleRound(true, true), after))

	scored := lifecycleRound(true, true)
	scored.Processed = true
	assert.Equal(t, PhaseScored, Classify(scored, after))
}

// TestIsOpen_DeadlineIsClosed tests that the deadline instant itself no longer accepts predictions
func TestIsOpen_DeadlineIsClosed(t *testing.T) {
	round := lifecycleRound(false)

	assert.True(t, IsOpen(round, deadline.Add(-time.Nanosecond)))
	assert.False(t, IsOpen(round, deadline))
	assert.False(t, IsOpen(round, deadline.Add(time.Hour)))
}

// TestCheckBettingOpen tests the error returned once the deadline passes
func TestCheckBettingOpen(t *testing.T) {
	round := lifecycleRound(false)

	assert.NoError(t, CheckBettingOpen(round, deadline.Add(-time.Hour)))
	assert.ErrorIs(t, CheckBettingOpen(round, deadline), ErrRoundLocked)
}

// TestCheckPredictionsVisible tests that predictions are hidden while the round is open
func TestCheckPredictionsVisible(t *testing.T) {
	round := lifecycleRound(false)

	assert.ErrorIs(t, CheckPredictionsVisible(round, deadline.Add(-time.Hour)), ErrRoundOpen)
	assert.NoError(t, CheckPredictionsVisible(round, deadline))
}

// TestCheckResultsEditable tests that results can only be recorded between the deadline and scoring
func TestCheckResultsEditable(t *testing.T) {
	round := lifecycleRound(false)
	assert.ErrorIs(t, CheckResultsEditable(round, deadline.Add(-time.Hour)), ErrRoundOpen)
	assert.NoError(t, CheckResultsEditable(round, deadline.Add(time.Hour)))

	round.Processed = true
	assert.ErrorIs(t, CheckResultsEditable(round, deadline.Add(time.Hour)), ErrAlreadyProcessed)
}

// TestCheckScorable tests the preconditions of the scoring action
func TestCheckScorable(t *testing.T) {
	assert.ErrorIs(t, CheckScorable(lifecycleRound(true, false)), ErrMatchesPending)
	assert.NoError(t, CheckScorable(lifecycleRound(true, true)))

	processed := lifecycleRound(true, true)
	processed.Processed = true
	assert.ErrorIs(t, CheckScorable(processed), ErrAlreadyProcessed)
}

// TestCheckUnprocessable tests that only scored rounds can be unprocessed
func TestCheckUnprocessable(t *testing.T) {
	round := lifecycleRound(true)
	assert.ErrorIs(t, CheckUnprocessable(round), ErrNotProcessed)

	round.Processed = true
	assert.NoError(t, CheckUnprocessable(round))
}
