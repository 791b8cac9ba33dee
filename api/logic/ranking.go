/* ranking.go
 * Contains the logic that folds per-round score records into the overall leaderboard and the per-round detail view
 */

package logic

import (
	"sort"
	"time"

	"bolao-bot/api/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LeaderboardSize is how many users the leaderboard reports
const LeaderboardSize = 50

// Standing is a user's accumulated total across all scored rounds
type Standing struct {
	UserID      primitive.ObjectID
	TotalPoints int
	Rounds      int
}

// AggregateScores groups score records by user and sums their points, highest total first.
// There is no tie breaker: users on the same total keep the order in which they first appear in records
func AggregateScores(records []store.ScoreRecord) []Standing {
	index := make(map[primitive.ObjectID]int)
	var standings []Standing

	for _, record := range records {
		i, ok := index[record.UserID]
		if !ok {
			i = len(standings)
			index[record.UserID] = i
			standings = append(standings, Standing{UserID: record.UserID})
		}
		standings[i].TotalPoints += record.TotalPoints
		standings[i].Rounds++
	}

	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].TotalPoints > standings[j].TotalPoints
	})

	return standings
}

// MatchDetail shows how a single match of a scored round was scored for a user
type MatchDetail struct {
	MatchID       primitive.ObjectID
	HomeTeamID    primitive.ObjectID
	AwayTeamID    primitive.ObjectID
	OfficialHome  *int
	OfficialAway  *int
	PredictedHome *int
	PredictedAway *int
	Points        int
}

// RoundDetail is one entry of a user's history
type RoundDetail struct {
	RoundID     primitive.ObjectID
	RoundNumber int
	TotalPoints int
	ComputedAt  time.Time
	Matches     []MatchDetail
}

// BuildRoundDetail joins a score record with its round and the user's prediction through the round's match list.
// prediction may be nil if the user's prediction is gone, the matches are then listed without a guess
func BuildRoundDetail(record store.ScoreRecord, round store.Round, prediction *store.Prediction) RoundDetail {
	detail := RoundDetail{
		RoundID:     round.ID,
		RoundNumber: round.Number,
		TotalPoints: record.TotalPoints,
		ComputedAt:  record.ComputedAt,
	}

	for _, match := range round.Matches {
		md := MatchDetail{
			MatchID:      match.ID,
			HomeTeamID:   match.HomeTeamID,
			AwayTeamID:   match.AwayTeamID,
			OfficialHome: match.HomeScore,
			OfficialAway: match.AwayScore,
		}
		if prediction != nil {
			if entry, ok := prediction.FindEntry(match.ID); ok {
				md.PredictedHome = entry.HomeScore
				md.PredictedAway = entry.AwayScore
				md.Points = ScoreMatch(match.HomeScore, match.AwayScore, entry.HomeScore, entry.AwayScore)
			}
		}
		detail.Matches = append(detail.Matches, md)
	}

	return detail
}

// SortRecordsByCreation orders score records oldest first. Records computed at the same instant fall back to the
// object id, which also grows with creation time
func SortRecordsByCreation(records []store.ScoreRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].ComputedAt.Equal(records[j].ComputedAt) {
			return records[i].ComputedAt.Before(records[j].ComputedAt)
		}
		return records[i].ID.Hex() < records[j].ID.Hex()
	})
}
