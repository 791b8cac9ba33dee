/* test_helpers.go
 * Contains helper functions that build sample documents for tests in this and other packages
 */

package store

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IntPtr returns a pointer to n, handy for score literals
func IntPtr(n int) *int {
	return &n
}

// CreateSampleRound creates a round with one match per team pair. Scores are left empty
func CreateSampleRound(number int, deadline time.Time, pairs ...[2]primitive.ObjectID) Round {
	round := Round{
		ID:       primitive.NewObjectID(),
		Number:   number,
		Deadline: deadline,
	}
	for _, pair := range pairs {
		round.Matches = append(round.Matches, Match{
			ID:         primitive.NewObjectID(),
			HomeTeamID: pair[0],
			AwayTeamID: pair[1],
		})
	}
	return round
}

// SetResult records an official score on the i-th match of the round and finalizes it
func (r *Round) SetResult(i int, home int, away int) {
	r.Matches[i].HomeScore = IntPtr(home)
	r.Matches[i].AwayScore = IntPtr(away)
	r.Matches[i].Finalized = true
}

// CreateSamplePrediction creates a prediction with one entry per score pair, in the round's match order
func CreateSamplePrediction(userID primitive.ObjectID, round Round, scores ...[2]int) Prediction {
	prediction := Prediction{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		RoundID:   round.ID,
		CreatedAt: round.Deadline.Add(-time.Hour),
	}
	for i, score := range scores {
		prediction.Entries = append(prediction.Entries, PredictionEntry{
			MatchID:   round.Matches[i].ID,
			HomeScore: IntPtr(score[0]),
			AwayScore: IntPtr(score[1]),
		})
	}
	return prediction
}
