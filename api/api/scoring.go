/* scoring.go
 * Contains the scoring and unprocess actions. Both hold an atomic claim on the round while they work so two admins
 * pressing the button at the same time cannot both score a round
 */

package api

import (
	"context"
	"fmt"

	"bolao-bot/api/logic"
	"bolao-bot/api/shared"
	"bolao-bot/api/store"

	"github.com/rs/zerolog/log"
)

var errRoundClaimed = fmt.Errorf("%w: round is already being processed", ErrPreconditionFailed)

// ScoreRound computes every bettor's points for a finalized round and marks it processed (admin only).
// Preconditions: every match has an official result and the round is not processed yet
// Postconditions: one score record per prediction and processed=true. With no predictions nothing is written and the
// round stays unprocessed
func (a *API) ScoreRound(ctx context.Context, req *shared.Request, roundID string) (ScoreSummary, error) {
	if err := requireAdmin(req); err != nil {
		return ScoreSummary{}, err
	}
	round, err := a.loadRound(ctx, roundID)
	if err != nil {
		return ScoreSummary{}, err
	}
	if err := logic.CheckScorable(round); err != nil {
		return ScoreSummary{}, fmt.Errorf("%w: %w", ErrPreconditionFailed, err)
	}

	now := a.now()
	claimed, err := a.Store.ClaimRound(ctx, round.ID, false, now, ScoringClaimTTL)
	if err != nil {
		return ScoreSummary{}, err
	}
	if !claimed {
		return ScoreSummary{}, errRoundClaimed
	}

	summary, err := a.scoreClaimedRound(ctx, req, round)
	if err != nil {
		if releaseErr := a.Store.ReleaseRound(ctx, round.ID); releaseErr != nil {
			log.Ctx(ctx).Error().Err(releaseErr).Int("round", round.Number).Msg("failed to release round claim")
		}
		return ScoreSummary{}, err
	}
	return summary, nil
}

// scoreClaimedRound does the scoring work once the claim is held. Any error leaves the claim for the caller to release
func (a *API) scoreClaimedRound(ctx context.Context, req *shared.Request, round store.Round) (ScoreSummary, error) {
	logger := log.Ctx(ctx)

	// results cannot change while the claim is held, reload to score the latest ones
	round, err := a.Store.GetRound(ctx, round.ID)
	if err != nil {
		return ScoreSummary{}, translateStoreError(err, "round")
	}
	if err := logic.CheckScorable(round); err != nil {
		return ScoreSummary{}, fmt.Errorf("%w: %w", ErrPreconditionFailed, err)
	}

	predictions, err := a.Store.ListRoundPredictions(ctx, round.ID)
	if err != nil {
		return ScoreSummary{}, err
	}
	summary := ScoreSummary{RoundNumber: round.Number}
	if len(predictions) == 0 {
		if err := a.Store.ReleaseRound(ctx, round.ID); err != nil {
			return ScoreSummary{}, err
		}
		req.Info(fmt.Sprintf("No predictions for round %d, nothing to score.", round.Number))
		return summary, nil
	}

	computedAt := a.now()
	for _, p := range predictions {
		total, _ := logic.ScorePrediction(round, p)
		record := store.ScoreRecord{
			UserID:      p.UserID,
			RoundID:     round.ID,
			TotalPoints: total,
			ComputedAt:  computedAt,
		}
		if err := a.Store.UpsertScoreRecord(ctx, record); err != nil {
			return ScoreSummary{}, err
		}
		summary.Scored++
	}

	if err := a.Store.FinishRound(ctx, round.ID, true); err != nil {
		return ScoreSummary{}, err
	}
	a.Metrics.roundScored(summary.Scored)

	logger.Info().Int("round", round.Number).Int("bettors", summary.Scored).Msg("round scored")
	req.Success(fmt.Sprintf("Round %d scored for %d bettors.", round.Number, summary.Scored))
	return summary, nil
}

// UnprocessRound undoes a scoring pass (admin only): the round's score records are removed and it can be corrected
// and scored again
func (a *API) UnprocessRound(ctx context.Context, req *shared.Request, roundID string) error {
	if err := requireAdmin(req); err != nil {
		return err
	}
	round, err := a.loadRound(ctx, roundID)
	if err != nil {
		return err
	}
	if err := logic.CheckUnprocessable(round); err != nil {
		return fmt.Errorf("%w: %w", ErrPreconditionFailed, err)
	}

	claimed, err := a.Store.ClaimRound(ctx, round.ID, true, a.now(), ScoringClaimTTL)
	if err != nil {
		return err
	}
	if !claimed {
		return errRoundClaimed
	}

	removed, err := a.Store.DeleteRoundScoreRecords(ctx, round.ID)
	if err == nil {
		err = a.Store.FinishRound(ctx, round.ID, false)
	}
	if err != nil {
		if releaseErr := a.Store.ReleaseRound(ctx, round.ID); releaseErr != nil {
			log.Ctx(ctx).Error().Err(releaseErr).Int("round", round.Number).Msg("failed to release round claim")
		}
		return err
	}

	log.Ctx(ctx).Info().Int("round", round.Number).Int64("records", removed).Msg("round unprocessed")
	req.Success(fmt.Sprintf("Round %d unprocessed, %d score records removed.", round.Number, removed))
	return nil
}
