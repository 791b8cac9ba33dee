/* predictions.go
 * Contains the prediction actions. Predictions can only be written while their round is open and only become visible
 * to other users once it is locked
 */

package api

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"bolao-bot/api/logic"
	"bolao-bot/api/shared"
	"bolao-bot/api/store"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func toPredictionView(p store.Prediction, round store.Round, teams map[primitive.ObjectID]store.Team) PredictionView {
	view := PredictionView{
		RoundID:     round.ID.Hex(),
		RoundNumber: round.Number,
		Deadline:    round.Deadline,
		CreatedAt:   p.CreatedAt,
		Entries:     make([]PredictionEntryView, 0, len(round.Matches)),
	}
	for _, m := range round.Matches {
		entry, ok := p.FindEntry(m.ID)
		if !ok {
			continue
		}
		view.Entries = append(view.Entries, PredictionEntryView{
			MatchID:   m.ID.Hex(),
			Home:      teamRef(teams, m.HomeTeamID),
			Away:      teamRef(teams, m.AwayTeamID),
			HomeScore: entry.HomeScore,
			AwayScore: entry.AwayScore,
		})
	}
	return view
}

// SubmitPrediction stores the acting user's prediction for an open round, replacing any earlier one.
// A blank value counts as 0, a malformed one rejects the whole submission and keeps what was stored before
func (a *API) SubmitPrediction(ctx context.Context, req *shared.Request, roundID string, entries []ScoreEntry) error {
	round, err := a.loadRound(ctx, roundID)
	if err != nil {
		return err
	}
	inputs, err := parseEntries(entries)
	if err != nil {
		return err
	}
	return a.submit(ctx, req, round, inputs)
}

// SubmitPredictionLines stores a prediction typed as one score per match in round order, e.g. "2-1 0x0 1:3"
func (a *API) SubmitPredictionLines(ctx context.Context, req *shared.Request, roundNumber int, lines []string) error {
	round, err := a.Store.GetRoundByNumber(ctx, roundNumber)
	if err != nil {
		return translateStoreError(err, fmt.Sprintf("round %d", roundNumber))
	}
	if len(lines) != len(round.Matches) {
		return fmt.Errorf("%w: round %d has %d matches but %d scores were given", ErrValidation, round.Number, len(round.Matches), len(lines))
	}

	inputs := make(map[primitive.ObjectID]logic.ScoreInput, len(lines))
	for i, line := range lines {
		home, away, err := logic.ParseScoreLine(line)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrValidation, err)
		}
		inputs[round.Matches[i].ID] = logic.ScoreInput{Home: home, Away: away}
	}
	return a.submit(ctx, req, round, inputs)
}

func (a *API) submit(ctx context.Context, req *shared.Request, round store.Round, inputs map[primitive.ObjectID]logic.ScoreInput) error {
	userID, err := actingUserID(req)
	if err != nil {
		return err
	}

	now := a.now()
	if err := logic.CheckBettingOpen(round, now); err != nil {
		return fmt.Errorf("%w: %w (deadline was %s)", ErrPreconditionFailed, err, a.formatDeadline(round.Deadline))
	}

	prediction, err := logic.GeneratePrediction(userID, round, inputs, now)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	if err := a.Store.UpsertPrediction(ctx, prediction); err != nil {
		return translateStoreError(err, "prediction")
	}
	a.Metrics.predictionSaved()

	log.Ctx(ctx).Info().Str("user", req.User.Username).Int("round", round.Number).Msg("prediction saved")
	req.Success(fmt.Sprintf("Your prediction for round %d was saved.", round.Number))
	return nil
}

// MyPredictions returns the acting user's predictions, most recent first
func (a *API) MyPredictions(ctx context.Context, req *shared.Request) ([]PredictionView, error) {
	userID, err := actingUserID(req)
	if err != nil {
		return nil, err
	}
	predictions, err := a.Store.ListUserPredictions(ctx, userID)
	if err != nil {
		return nil, err
	}
	teams, err := a.teamIndex(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]PredictionView, 0, len(predictions))
	for _, p := range predictions {
		round, err := a.Store.GetRound(ctx, p.RoundID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				continue
			}
			return nil, err
		}
		views = append(views, toPredictionView(p, round, teams))
	}

	sort.SliceStable(views, func(i, j int) bool { return views[i].CreatedAt.After(views[j].CreatedAt) })
	return views, nil
}

// RoundPredictions returns everyone's predictions for a round once betting has closed. Admins do not bet and are left
// out; the list is sorted by display name
func (a *API) RoundPredictions(ctx context.Context, req *shared.Request, roundID string) ([]PredictionView, error) {
	round, err := a.loadRound(ctx, roundID)
	if err != nil {
		return nil, err
	}
	if err := logic.CheckPredictionsVisible(round, a.now()); err != nil {
		return nil, fmt.Errorf("%w: %w, predictions are shown after %s", ErrPreconditionFailed, err, a.formatDeadline(round.Deadline))
	}

	predictions, err := a.Store.ListRoundPredictions(ctx, round.ID)
	if err != nil {
		return nil, err
	}
	users, err := a.userIndex(ctx)
	if err != nil {
		return nil, err
	}
	teams, err := a.teamIndex(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]PredictionView, 0, len(predictions))
	for _, p := range predictions {
		user, ok := users[p.UserID]
		if !ok || user.IsAdmin {
			continue
		}
		view := toPredictionView(p, round, teams)
		view.UserName = shared.FirstName(user.Name, user.Username)
		views = append(views, view)
	}

	sort.SliceStable(views, func(i, j int) bool {
		return strings.ToLower(views[i].UserName) < strings.ToLower(views[j].UserName)
	})
	if len(views) == 0 {
		req.Info(fmt.Sprintf("Nobody bet on round %d.", round.Number))
	}
	return views, nil
}

// BettingStatus lists every bettor and whether they have bet on the open round (admin only). Users who still need to
// bet come first
func (a *API) BettingStatus(ctx context.Context, req *shared.Request) (BettingStatus, error) {
	if err := requireAdmin(req); err != nil {
		return BettingStatus{}, err
	}
	round, err := a.openRound(ctx)
	if err != nil {
		return BettingStatus{}, err
	}

	predictions, err := a.Store.ListRoundPredictions(ctx, round.ID)
	if err != nil {
		return BettingStatus{}, err
	}
	hasBet := make(map[primitive.ObjectID]bool, len(predictions))
	for _, p := range predictions {
		hasBet[p.UserID] = true
	}

	users, err := a.Store.ListUsers(ctx)
	if err != nil {
		return BettingStatus{}, err
	}
	teams, err := a.teamIndex(ctx)
	if err != nil {
		return BettingStatus{}, err
	}

	status := BettingStatus{Round: a.toRoundView(round, teams), Users: []BettingStatusEntry{}}
	for _, u := range users {
		if u.IsAdmin {
			continue
		}
		status.Users = append(status.Users, BettingStatusEntry{
			UserID:   u.ID.Hex(),
			Name:     u.Name,
			Username: u.Username,
			HasBet:   hasBet[u.ID],
		})
	}
	sort.SliceStable(status.Users, func(i, j int) bool {
		if status.Users[i].HasBet != status.Users[j].HasBet {
			return !status.Users[i].HasBet
		}
		return strings.ToLower(status.Users[i].Name) < strings.ToLower(status.Users[j].Name)
	})
	return status, nil
}

// userIndex loads every user keyed by id
func (a *API) userIndex(ctx context.Context) (map[primitive.ObjectID]store.User, error) {
	users, err := a.Store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	index := make(map[primitive.ObjectID]store.User, len(users))
	for _, u := range users {
		index[u.ID] = u
	}
	return index, nil
}
