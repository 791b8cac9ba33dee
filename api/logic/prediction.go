/* prediction.go
 * Contains the logic for turning typed scores into predictions and official results
 */

package logic

import (
	"errors"
	"fmt"
	"time"

	"bolao-bot/api/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrUnknownMatch = errors.New("match is not part of this round")

// ScoreInput is a home/away pair exactly as typed by the user
type ScoreInput struct {
	Home string
	Away string
}

// GeneratePrediction builds the prediction document for a user and round. Every match of the round gets an entry, in
// round order; a match the user left blank is stored as 0-0. Any malformed value rejects the whole prediction
func GeneratePrediction(userID primitive.ObjectID, round store.Round, inputs map[primitive.ObjectID]ScoreInput, now time.Time) (store.Prediction, error) {
	for matchID := range inputs {
		if _, ok := round.FindMatch(matchID); !ok {
			return store.Prediction{}, fmt.Errorf("%w: %s", ErrUnknownMatch, matchID.Hex())
		}
	}

	prediction := store.Prediction{
		UserID:    userID,
		RoundID:   round.ID,
		CreatedAt: now,
	}

	for _, match := range round.Matches {
		input := inputs[match.ID]
		home, err := ParseGuess(input.Home)
		if err != nil {
			return store.Prediction{}, err
		}
		away, err := ParseGuess(input.Away)
		if err != nil {
			return store.Prediction{}, err
		}
		prediction.Entries = append(prediction.Entries, store.PredictionEntry{
			MatchID:   match.ID,
			HomeScore: &home,
			AwayScore: &away,
		})
	}

	return prediction, nil
}

// ResultsUpdate is the outcome of applying typed official results to a round
type ResultsUpdate struct {
	Matches   []store.Match
	Finalized int
	Rejected  []primitive.ObjectID
}

// ApplyResults records typed official scores on a copy of the round's matches.
// A blank value clears that side, both sides present finalizes the match. A malformed value rejects only that match,
// which keeps its previous scores. Matches without an input are left as they were
func ApplyResults(round store.Round, inputs map[primitive.ObjectID]ScoreInput) (ResultsUpdate, error) {
	for matchID := range inputs {
		if _, ok := round.FindMatch(matchID); !ok {
			return ResultsUpdate{}, fmt.Errorf("%w: %s", ErrUnknownMatch, matchID.Hex())
		}
	}

	var update ResultsUpdate
	for _, match := range round.Matches {
		input, ok := inputs[match.ID]
		if ok {
			home, homeErr := ParseScore(input.Home)
			away, awayErr := ParseScore(input.Away)
			if homeErr != nil || awayErr != nil {
				update.Rejected = append(update.Rejected, match.ID)
			} else {
				match.HomeScore = home
				match.AwayScore = away
				match.Finalized = home != nil && away != nil
			}
		}
		if match.Finalized {
			update.Finalized++
		}
		update.Matches = append(update.Matches, match)
	}

	return update, nil
}
