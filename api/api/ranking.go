/* ranking.go
 * Contains the leaderboard and per user history actions. Both are recomputed from the score records on every call
 */

package api

import (
	"context"
	"errors"
	"fmt"

	"bolao-bot/api/logic"
	"bolao-bot/api/shared"
	"bolao-bot/api/store"

	"go.mongodb.org/mongo-driver/mongo"
)

// Leaderboard returns the top users by total points. Users that no longer exist are skipped
func (a *API) Leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	records, err := a.Store.ListScoreRecords(ctx)
	if err != nil {
		return nil, err
	}
	users, err := a.userIndex(ctx)
	if err != nil {
		return nil, err
	}

	entries := []LeaderboardEntry{}
	for _, standing := range logic.AggregateScores(records) {
		if len(entries) == logic.LeaderboardSize {
			break
		}
		user, ok := users[standing.UserID]
		if !ok {
			continue
		}
		entries = append(entries, LeaderboardEntry{
			Position:    len(entries) + 1,
			UserID:      user.ID.Hex(),
			UserName:    shared.FirstName(user.Name, user.Username),
			TotalPoints: standing.TotalPoints,
			Rounds:      standing.Rounds,
		})
	}
	return entries, nil
}

// UserHistory returns a user's scored rounds in the order they were scored, with the points of every match.
// An empty userID means the acting user; only admins may look at someone else
func (a *API) UserHistory(ctx context.Context, req *shared.Request, userID string) ([]HistoryEntry, error) {
	self, err := actingUserID(req)
	if err != nil {
		return nil, err
	}
	target := self
	if userID != "" && userID != req.User.UserID {
		if err := requireAdmin(req); err != nil {
			return nil, err
		}
		if target, err = parseID(userID, "user"); err != nil {
			return nil, err
		}
	}

	records, err := a.Store.ListUserScoreRecords(ctx, target)
	if err != nil {
		return nil, err
	}
	logic.SortRecordsByCreation(records)

	teams, err := a.teamIndex(ctx)
	if err != nil {
		return nil, err
	}

	history := []HistoryEntry{}
	for _, record := range records {
		round, err := a.Store.GetRound(ctx, record.RoundID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				continue
			}
			return nil, err
		}

		var prediction *store.Prediction
		p, err := a.Store.GetPrediction(ctx, target, round.ID)
		switch {
		case err == nil:
			prediction = &p
		case !errors.Is(err, mongo.ErrNoDocuments):
			return nil, fmt.Errorf("failed to load prediction for round %d: %w", round.Number, err)
		}

		detail := logic.BuildRoundDetail(record, round, prediction)
		entry := HistoryEntry{
			RoundID:     detail.RoundID.Hex(),
			RoundNumber: detail.RoundNumber,
			TotalPoints: detail.TotalPoints,
			ComputedAt:  detail.ComputedAt,
		}
		for _, md := range detail.Matches {
			entry.Matches = append(entry.Matches, HistoryMatch{
				MatchID:       md.MatchID.Hex(),
				Home:          teamRef(teams, md.HomeTeamID),
				Away:          teamRef(teams, md.AwayTeamID),
				OfficialHome:  md.OfficialHome,
				OfficialAway:  md.OfficialAway,
				PredictedHome: md.PredictedHome,
				PredictedAway: md.PredictedAway,
				Points:        md.Points,
			})
		}
		history = append(history, entry)
	}
	return history, nil
}
