/* scoring.go
 * Contains the pool's scoring rules. Everything in here is pure so a round can be scored again with identical results
 */

package logic

import (
	"bolao-bot/api/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Outcome is the sign of a score pair: who won, or a draw
type Outcome int

const (
	AwayWin Outcome = -1
	Draw    Outcome = 0
	HomeWin Outcome = 1
)

// Points awarded per match
const (
	ExactScorePoints = 10
	OutcomePoints    = 5
	MissPoints       = 0
)

// OutcomeOf classifies a score pair by comparing home and away goals
func OutcomeOf(home int, away int) Outcome {
	switch {
	case home > away:
		return HomeWin
	case home < away:
		return AwayWin
	default:
		return Draw
	}
}

// ScoreMatch returns the points a prediction earns against the official result.
// Any nil input means there is nothing to compare against and earns 0. An exact score is checked first and earns 10,
// the right winner (or draw) without the exact score earns 5, anything else earns 0
func ScoreMatch(officialHome *int, officialAway *int, predictedHome *int, predictedAway *int) int {
	if officialHome == nil || officialAway == nil || predictedHome == nil || predictedAway == nil {
		return MissPoints
	}

	if *officialHome == *predictedHome && *officialAway == *predictedAway {
		return ExactScorePoints
	}

	if OutcomeOf(*officialHome, *officialAway) == OutcomeOf(*predictedHome, *predictedAway) {
		return OutcomePoints
	}

	return MissPoints
}

// MatchPoints is the score a single prediction entry earned
type MatchPoints struct {
	MatchID primitive.ObjectID
	Points  int
}

// ScorePrediction sums the points of a user's prediction for a round. Entries are matched to the round's matches by
// match id; entries referencing a match that is no longer in the round are skipped and earn nothing
func ScorePrediction(round store.Round, prediction store.Prediction) (int, []MatchPoints) {
	total := 0
	var breakdown []MatchPoints

	for _, entry := range prediction.Entries {
		match, ok := round.FindMatch(entry.MatchID)
		if !ok {
			continue
		}
		points := ScoreMatch(match.HomeScore, match.AwayScore, entry.HomeScore, entry.AwayScore)
		total += points
		breakdown = append(breakdown, MatchPoints{MatchID: match.ID, Points: points})
	}

	return total, breakdown
}
