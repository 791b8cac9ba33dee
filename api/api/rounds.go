/* rounds.go
 * Contains the round actions: creating and deleting rounds, listing them with their current phase and recording
 * official results
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
)

func (a *API) toRoundView(round store.Round, teams map[primitive.ObjectID]store.Team) RoundView {
	view := RoundView{
		ID:           round.ID.Hex(),
		Number:       round.Number,
		Deadline:     round.Deadline,
		DeadlineText: a.formatDeadline(round.Deadline),
		Phase:        logic.Classify(round, a.now()),
		Processed:    round.Processed,
		Matches:      make([]MatchView, 0, len(round.Matches)),
	}
	for _, m := range round.Matches {
		view.Matches = append(view.Matches, MatchView{
			ID:        m.ID.Hex(),
			Home:      teamRef(teams, m.HomeTeamID),
			Away:      teamRef(teams, m.AwayTeamID),
			HomeScore: m.HomeScore,
			AwayScore: m.AwayScore,
			Finalized: m.Finalized,
		})
	}
	return view
}

// resolveTeam finds the team a reference points to: an id, an exact code, or the closest name
func resolveTeam(ref string, teams []store.Team) (store.Team, bool) {
	ref = strings.TrimSpace(ref)
	if id, err := primitive.ObjectIDFromHex(ref); err == nil {
		for _, t := range teams {
			if t.ID == id {
				return t, true
			}
		}
		return store.Team{}, false
	}

	code := strings.ToUpper(ref)
	for _, t := range teams {
		if t.Code == code {
			return t, true
		}
	}

	names := make([]string, 0, len(teams))
	byName := make(map[string]store.Team, len(teams))
	for _, t := range teams {
		names = append(names, t.Name)
		byName[t.Name] = t
	}
	name, ok := logic.MatchTeamName(ref, names)
	if !ok {
		return store.Team{}, false
	}
	return byName[name], true
}

// CreateRound adds a round (admin only)
// Preconditions: Receives the round number, deadline and team pairs. Pairs with both sides blank are skipped
// Postconditions: Stores the round with fresh match ids and no results, or returns a validation or conflict error
func (a *API) CreateRound(ctx context.Context, req *shared.Request, input RoundInput) (RoundView, error) {
	if err := requireAdmin(req); err != nil {
		return RoundView{}, err
	}
	if input.Number <= 0 {
		return RoundView{}, fmt.Errorf("%w: round number must be positive", ErrValidation)
	}
	if input.Deadline.IsZero() {
		return RoundView{}, fmt.Errorf("%w: deadline is required", ErrValidation)
	}

	teams, err := a.Store.ListTeams(ctx)
	if err != nil {
		return RoundView{}, err
	}

	round := store.Round{Number: input.Number, Deadline: input.Deadline}
	var unresolved []string
	for i, pair := range input.Pairs {
		home, away := strings.TrimSpace(pair.Home), strings.TrimSpace(pair.Away)
		if home == "" && away == "" {
			continue
		}
		if home == "" || away == "" {
			return RoundView{}, fmt.Errorf("%w: match %d needs both teams", ErrValidation, i+1)
		}

		homeTeam, okHome := resolveTeam(home, teams)
		awayTeam, okAway := resolveTeam(away, teams)
		if !okHome {
			unresolved = append(unresolved, home)
		}
		if !okAway {
			unresolved = append(unresolved, away)
		}
		if !okHome || !okAway {
			continue
		}
		if homeTeam.ID == awayTeam.ID {
			return RoundView{}, fmt.Errorf("%w: match %d has %s on both sides", ErrValidation, i+1, homeTeam.Name)
		}

		round.Matches = append(round.Matches, store.Match{
			ID:         primitive.NewObjectID(),
			HomeTeamID: homeTeam.ID,
			AwayTeamID: awayTeam.ID,
		})
	}

	if len(unresolved) > 0 {
		return RoundView{}, fmt.Errorf("%w: unknown teams: %s", ErrValidation, strings.Join(unresolved, ", "))
	}
	if len(round.Matches) == 0 {
		return RoundView{}, fmt.Errorf("%w: a round needs at least one match", ErrValidation)
	}

	round, err = a.Store.CreateRound(ctx, round)
	if err != nil {
		return RoundView{}, translateStoreError(err, fmt.Sprintf("round %d", input.Number))
	}

	teamsByID := make(map[primitive.ObjectID]store.Team, len(teams))
	for _, t := range teams {
		teamsByID[t.ID] = t
	}

	log.Ctx(ctx).Info().Int("round", round.Number).Int("matches", len(round.Matches)).Msg("round created")
	req.Success(fmt.Sprintf("Round %d created with %d matches.", round.Number, len(round.Matches)))
	return a.toRoundView(round, teamsByID), nil
}

// DeleteRound removes a round with its predictions and score records (admin only)
func (a *API) DeleteRound(ctx context.Context, req *shared.Request, roundID string) error {
	if err := requireAdmin(req); err != nil {
		return err
	}
	id, err := parseID(roundID, "round")
	if err != nil {
		return err
	}
	round, err := a.Store.GetRound(ctx, id)
	if err != nil {
		return translateStoreError(err, "round")
	}

	if err := a.Store.DeleteRound(ctx, id); err != nil {
		return translateStoreError(err, "round")
	}

	log.Ctx(ctx).Info().Int("round", round.Number).Msg("round deleted")
	req.Success(fmt.Sprintf("Round %d deleted.", round.Number))
	return nil
}

// ListRounds returns every round newest first, each with its current phase
func (a *API) ListRounds(ctx context.Context) ([]RoundView, error) {
	rounds, err := a.Store.ListRounds(ctx)
	if err != nil {
		return nil, err
	}
	teams, err := a.teamIndex(ctx)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(rounds, func(i, j int) bool { return rounds[i].Number > rounds[j].Number })
	views := make([]RoundView, 0, len(rounds))
	for _, r := range rounds {
		views = append(views, a.toRoundView(r, teams))
	}
	return views, nil
}

// GetRound returns a single round by id
func (a *API) GetRound(ctx context.Context, roundID string) (RoundView, error) {
	round, err := a.loadRound(ctx, roundID)
	if err != nil {
		return RoundView{}, err
	}
	teams, err := a.teamIndex(ctx)
	if err != nil {
		return RoundView{}, err
	}
	return a.toRoundView(round, teams), nil
}

// GetRoundByNumber returns a single round by its number
func (a *API) GetRoundByNumber(ctx context.Context, number int) (RoundView, error) {
	round, err := a.Store.GetRoundByNumber(ctx, number)
	if err != nil {
		return RoundView{}, translateStoreError(err, fmt.Sprintf("round %d", number))
	}
	teams, err := a.teamIndex(ctx)
	if err != nil {
		return RoundView{}, err
	}
	return a.toRoundView(round, teams), nil
}

// OpenRound returns the lowest numbered round that still accepts predictions
func (a *API) OpenRound(ctx context.Context) (RoundView, error) {
	round, err := a.openRound(ctx)
	if err != nil {
		return RoundView{}, err
	}
	teams, err := a.teamIndex(ctx)
	if err != nil {
		return RoundView{}, err
	}
	return a.toRoundView(round, teams), nil
}

func (a *API) openRound(ctx context.Context) (store.Round, error) {
	rounds, err := a.Store.ListRounds(ctx)
	if err != nil {
		return store.Round{}, err
	}
	now := a.now()
	var open *store.Round
	for i := range rounds {
		if !logic.IsOpen(rounds[i], now) {
			continue
		}
		if open == nil || rounds[i].Number < open.Number {
			open = &rounds[i]
		}
	}
	if open == nil {
		return store.Round{}, fmt.Errorf("%w: no round is open for betting", ErrNotFound)
	}
	return *open, nil
}

func (a *API) loadRound(ctx context.Context, roundID string) (store.Round, error) {
	id, err := parseID(roundID, "round")
	if err != nil {
		return store.Round{}, err
	}
	round, err := a.Store.GetRound(ctx, id)
	if err != nil {
		return store.Round{}, translateStoreError(err, "round")
	}
	return round, nil
}

// parseEntries turns typed entries into logic inputs keyed by match id
func parseEntries(entries []ScoreEntry) (map[primitive.ObjectID]logic.ScoreInput, error) {
	inputs := make(map[primitive.ObjectID]logic.ScoreInput, len(entries))
	for _, e := range entries {
		id, err := parseID(e.MatchID, "match")
		if err != nil {
			return nil, err
		}
		inputs[id] = logic.ScoreInput{Home: e.Home, Away: e.Away}
	}
	return inputs, nil
}

// RecordResults stores official scores for a locked round (admin only).
// A blank value clears that side; a malformed value keeps the match's previous scores and adds a warning while the
// rest of the round is saved. Refused while the round is open or already scored
func (a *API) RecordResults(ctx context.Context, req *shared.Request, roundID string, entries []ScoreEntry) (ResultsSummary, error) {
	if err := requireAdmin(req); err != nil {
		return ResultsSummary{}, err
	}
	round, err := a.loadRound(ctx, roundID)
	if err != nil {
		return ResultsSummary{}, err
	}
	if err := logic.CheckResultsEditable(round, a.now()); err != nil {
		return ResultsSummary{}, fmt.Errorf("%w: %w", ErrPreconditionFailed, err)
	}

	inputs, err := parseEntries(entries)
	if err != nil {
		return ResultsSummary{}, err
	}
	update, err := logic.ApplyResults(round, inputs)
	if err != nil {
		if errors.Is(err, logic.ErrUnknownMatch) {
			return ResultsSummary{}, fmt.Errorf("%w: %w", ErrValidation, err)
		}
		return ResultsSummary{}, err
	}

	if err := a.Store.UpdateRoundMatches(ctx, round.ID, update.Matches); err != nil {
		return ResultsSummary{}, translateStoreError(err, "round")
	}

	if len(update.Rejected) > 0 {
		teams, err := a.teamIndex(ctx)
		if err != nil {
			return ResultsSummary{}, err
		}
		for _, id := range update.Rejected {
			m, _ := round.FindMatch(id)
			req.Warning(fmt.Sprintf("Invalid score for %s x %s, previous result kept.",
				teamRef(teams, m.HomeTeamID).Name, teamRef(teams, m.AwayTeamID).Name))
		}
	}

	summary := ResultsSummary{Finalized: update.Finalized, Total: len(update.Matches)}
	log.Ctx(ctx).Info().Int("round", round.Number).Int("finalized", summary.Finalized).Int("total", summary.Total).
		Msg("results recorded")
	req.Success(fmt.Sprintf("Results for round %d saved: %d/%d matches finalized.", round.Number, summary.Finalized, summary.Total))
	return summary, nil
}
