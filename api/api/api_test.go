/* api_test.go
 * Contains unit tests for the round lifecycle, prediction and scoring actions, run against MockStore
 */

package api

import (
	"context"
	"sync"
	"testing"
	"time"

	"bolao-bot/api/logic"
	"bolao-bot/api/shared"
	"bolao-bot/api/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// fixture is an API over a MockStore with a controllable clock
type fixture struct {
	api   *API
	store *MockStore
	now   time.Time
	admin store.User
	home  store.Team
	away  store.Team
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := NewMockStore()
	f := &fixture{
		store: s,
		now:   time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC),
	}
	f.api = New(s, time.UTC)
	f.api.Now = func() time.Time { return f.now }
	f.api.PasswordCost = bcrypt.MinCost
	f.admin = s.AddUser("Admin Root", "admin", true)
	f.home = s.AddTeam("Flamengo", "FLA")
	f.away = s.AddTeam("Palmeiras", "PAL")
	return f
}

func (f *fixture) adminReq() *shared.Request {
	return shared.NewRequest(toSharedUser(f.admin))
}

func (f *fixture) bettor(name string, username string) (store.User, *shared.Request) {
	u := f.store.AddUser(name, username, false)
	return u, shared.NewRequest(toSharedUser(u))
}

// openRound stores a round with one match per pair whose deadline is an hour after the fixture's clock
func (f *fixture) openRound(number int, matches int) store.Round {
	var pairs [][2]primitive.ObjectID
	for i := 0; i < matches; i++ {
		pairs = append(pairs, [2]primitive.ObjectID{f.home.ID, f.away.ID})
	}
	return f.store.AddRound(store.CreateSampleRound(number, f.now.Add(time.Hour), pairs...))
}

func (f *fixture) passDeadline(round store.Round) {
	f.now = round.Deadline.Add(time.Minute)
}

func entry(round store.Round, i int, home string, away string) ScoreEntry {
	return ScoreEntry{MatchID: round.Matches[i].ID.Hex(), Home: home, Away: away}
}

func lastMessage(req *shared.Request) shared.Message {
	if len(req.Messages) == 0 {
		return shared.Message{}
	}
	return req.Messages[len(req.Messages)-1]
}

func pointsByUser(records []store.ScoreRecord) map[primitive.ObjectID]int {
	points := make(map[primitive.ObjectID]int)
	for _, r := range records {
		points[r.UserID] = r.TotalPoints
	}
	return points
}

// region Scoring scenario tests

// TestScoreRound_FourBettorScenario tests one match ending 2-1 with an exact, an outcome, a wrong and a missing bet
func TestScoreRound_FourBettorScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	round := f.openRound(1, 1)

	userA, reqA := f.bettor("Ana Souza", "ana")
	userB, reqB := f.bettor("Bruno Lima", "bruno")
	userC, reqC := f.bettor("Carla Dias", "carla")
	userD, _ := f.bettor("Diego Alves", "diego")

	require.NoError(t, f.api.SubmitPrediction(ctx, reqA, round.ID.Hex(), []ScoreEntry{entry(round, 0, "2", "1")}))
	require.NoError(t, f.api.SubmitPrediction(ctx, reqB, round.ID.Hex(), []ScoreEntry{entry(round, 0, "1", "0")}))
	require.NoError(t, f.api.SubmitPrediction(ctx, reqC, round.ID.Hex(), []ScoreEntry{entry(round, 0, "0", "2")}))

	f.passDeadline(round)
	_, err := f.api.RecordResults(ctx, f.adminReq(), round.ID.Hex(), []ScoreEntry{entry(round, 0, "2", "1")})
	require.NoError(t, err)

	req := f.adminReq()
	summary, err := f.api.ScoreRound(ctx, req, round.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Scored)
	assert.Equal(t, shared.LevelSuccess, lastMessage(req).Level)

	points := pointsByUser(f.store.Scores)
	assert.Equal(t, 10, points[userA.ID])
	assert.Equal(t, 5, points[userB.ID])
	assert.Equal(t, 0, points[userC.ID])
	_, scoredD := points[userD.ID]
	assert.False(t, scoredD, "a user without a prediction gets no score record")

	stored := f.store.RoundSnapshot(round.ID)
	assert.True(t, stored.Processed)
	assert.Nil(t, stored.ScoringSince)

	board, err := f.api.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, board, 3)
	assert.Equal(t, LeaderboardEntry{Position: 1, UserID: userA.ID.Hex(), UserName: "Ana", TotalPoints: 10, Rounds: 1}, board[0])
	assert.Equal(t, "Bruno", board[1].UserName)
	assert.Equal(t, "Carla", board[2].UserName)
}

// TestScoreRound_SecondCallRefused tests that scoring a processed round fails and leaves the records alone
func TestScoreRound_SecondCallRefused(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	round := f.openRound(1, 1)
	_, req := f.bettor("Ana", "ana")
	require.NoError(t, f.api.SubmitPrediction(ctx, req, round.ID.Hex(), []ScoreEntry{entry(round, 0, "1", "1")}))

	f.passDeadline(round)
	_, err := f.api.RecordResults(ctx, f.adminReq(), round.ID.Hex(), []ScoreEntry{entry(round, 0, "1", "1")})
	require.NoError(t, err)
	_, err = f.api.ScoreRound(ctx, f.adminReq(), round.ID.Hex())
	require.NoError(t, err)
	before := append([]store.ScoreRecord(nil), f.store.Scores...)

	f.now = f.now.Add(time.Hour)
	_, err = f.api.ScoreRound(ctx, f.adminReq(), round.ID.Hex())

	assert.ErrorIs(t, err, ErrPreconditionFailed)
	assert.ErrorIs(t, err, logic.ErrAlreadyProcessed)
	assert.Equal(t, before, f.store.Scores)
}

// TestScoreRound_NotFinalized tests that a round with a missing result cannot be scored
func TestScoreRound_NotFinalized(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	round := f.openRound(1, 2)
	_, req := f.bettor("Ana", "ana")
	require.NoError(t, f.api.SubmitPrediction(ctx, req, round.ID.Hex(), []ScoreEntry{entry(round, 0, "1", "0"), entry(round, 1, "0", "0")}))

	f.passDeadline(round)
	_, err := f.api.RecordResults(ctx, f.adminReq(), round.ID.Hex(), []ScoreEntry{entry(round, 0, "1", "0")})
	require.NoError(t, err)

	_, err = f.api.ScoreRound(ctx, f.adminReq(), round.ID.Hex())

	assert.ErrorIs(t, err, ErrPreconditionFailed)
	assert.ErrorIs(t, err, logic.ErrMatchesPending)
	assert.Empty(t, f.store.Scores)
	assert.Equal(t, 0, f.store.ClaimCalls)
	assert.False(t, f.store.RoundSnapshot(round.ID).Processed)
}

// TestScoreRound_NoPredictions tests that scoring a round nobody bet on is an informational no-op
func TestScoreRound_NoPredictions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	round := f.openRound(1, 1)
	f.passDeadline(round)
	_, err := f.api.RecordResults(ctx, f.adminReq(), round.ID.Hex(), []ScoreEntry{entry(round, 0, "3", "0")})
	require.NoError(t, err)

	req := f.adminReq()
	summary, err := f.api.ScoreRound(ctx, req, round.ID.Hex())

	require.NoError(t, err)
	assert.Equal(t, 0, summary.Scored)
	assert.Equal(t, shared.LevelInfo, lastMessage(req).Level)
	stored := f.store.RoundSnapshot(round.ID)
	assert.False(t, stored.Processed)
	assert.Nil(t, stored.ScoringSince)
}

// TestScoreRound_ClaimHeld tests that a live claim blocks a second pass and a stale one does not
func TestScoreRound_ClaimHeld(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.store.AddUser("Ana", "ana", false)

	round := store.CreateSampleRound(1, f.now.Add(-time.Hour), [2]primitive.ObjectID{f.home.ID, f.away.ID})
	round.SetResult(0, 1, 0)
	claimedAt := f.now.Add(-time.Minute)
	round.ScoringSince = &claimedAt
	f.store.AddRound(round)
	f.store.AddPrediction(store.CreateSamplePrediction(user.ID, round, [2]int{1, 0}))

	_, err := f.api.ScoreRound(ctx, f.adminReq(), round.ID.Hex())
	assert.ErrorIs(t, err, ErrPreconditionFailed)
	assert.Empty(t, f.store.Scores)

	f.now = f.now.Add(ScoringClaimTTL)
	summary, err := f.api.ScoreRound(ctx, f.adminReq(), round.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Scored)
	assert.Equal(t, 10, pointsByUser(f.store.Scores)[user.ID])
}

// TestScoreRound_Concurrent tests that simultaneous triggers score the round exactly once
func TestScoreRound_Concurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	round := store.CreateSampleRound(1, f.now.Add(-time.Hour), [2]primitive.ObjectID{f.home.ID, f.away.ID})
	round.SetResult(0, 2, 2)
	f.store.AddRound(round)
	for i := 0; i < 5; i++ {
		u := f.store.AddUser("Bettor", "bettor"+string(rune('a'+i)), false)
		f.store.AddPrediction(store.CreateSamplePrediction(u.ID, round, [2]int{i, i}))
	}

	const triggers = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0
	for i := 0; i < triggers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.api.ScoreRound(ctx, f.adminReq(), round.ID.Hex())
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, ErrPreconditionFailed)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Len(t, f.store.Scores, 5)
	assert.True(t, f.store.RoundSnapshot(round.ID).Processed)
}

// TestScoreRound_WriteFailureReleasesClaim tests that a failed pass can be retried
func TestScoreRound_WriteFailureReleasesClaim(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.store.AddUser("Ana", "ana", false)
	round := store.CreateSampleRound(1, f.now.Add(-time.Hour), [2]primitive.ObjectID{f.home.ID, f.away.ID})
	round.SetResult(0, 1, 2)
	f.store.AddRound(round)
	f.store.AddPrediction(store.CreateSamplePrediction(user.ID, round, [2]int{0, 1}))

	f.store.UpsertScoreRecordError = assert.AnError
	_, err := f.api.ScoreRound(ctx, f.adminReq(), round.ID.Hex())
	require.ErrorIs(t, err, assert.AnError)
	assert.Nil(t, f.store.RoundSnapshot(round.ID).ScoringSince)
	assert.False(t, f.store.RoundSnapshot(round.ID).Processed)

	f.store.UpsertScoreRecordError = nil
	_, err = f.api.ScoreRound(ctx, f.adminReq(), round.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 5, pointsByUser(f.store.Scores)[user.ID])
}

// TestScoreRound_Forbidden tests that bettors cannot trigger scoring
func TestScoreRound_Forbidden(t *testing.T) {
	f := newFixture(t)
	round := f.openRound(1, 1)
	_, req := f.bettor("Ana", "ana")

	_, err := f.api.ScoreRound(context.Background(), req, round.ID.Hex())

	assert.ErrorIs(t, err, ErrForbidden)
}

// TestScoreRound_NotFound tests unknown and malformed round ids
func TestScoreRound_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.api.ScoreRound(context.Background(), f.adminReq(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.api.ScoreRound(context.Background(), f.adminReq(), "not-an-id")
	assert.ErrorIs(t, err, ErrValidation)
}

// endregion

// region Unprocess tests

// TestUnprocessRound_AllowsRescoring tests correcting a result after scoring
func TestUnprocessRound_AllowsRescoring(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	round := f.openRound(1, 1)
	user, req := f.bettor("Ana", "ana")
	require.NoError(t, f.api.SubmitPrediction(ctx, req, round.ID.Hex(), []ScoreEntry{entry(round, 0, "2", "0")}))

	f.passDeadline(round)
	_, err := f.api.RecordResults(ctx, f.adminReq(), round.ID.Hex(), []ScoreEntry{entry(round, 0, "1", "0")})
	require.NoError(t, err)
	_, err = f.api.ScoreRound(ctx, f.adminReq(), round.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 5, pointsByUser(f.store.Scores)[user.ID])

	_, err = f.api.RecordResults(ctx, f.adminReq(), round.ID.Hex(), []ScoreEntry{entry(round, 0, "2", "0")})
	assert.ErrorIs(t, err, ErrPreconditionFailed, "results are frozen once scored")

	require.NoError(t, f.api.UnprocessRound(ctx, f.adminReq(), round.ID.Hex()))
	assert.Empty(t, f.store.Scores)
	assert.False(t, f.store.RoundSnapshot(round.ID).Processed)

	_, err = f.api.RecordResults(ctx, f.adminReq(), round.ID.Hex(), []ScoreEntry{entry(round, 0, "2", "0")})
	require.NoError(t, err)
	_, err = f.api.ScoreRound(ctx, f.adminReq(), round.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 10, pointsByUser(f.store.Scores)[user.ID])
}

// TestUnprocessRound_NotProcessed tests that there is nothing to undo on an unscored round
func TestUnprocessRound_NotProcessed(t *testing.T) {
	f := newFixture(t)
	round := f.openRound(1, 1)

	err := f.api.UnprocessRound(context.Background(), f.adminReq(), round.ID.Hex())

	assert.ErrorIs(t, err, ErrPreconditionFailed)
	assert.ErrorIs(t, err, logic.ErrNotProcessed)
}

// endregion

// region Prediction tests

// TestSubmitPrediction_LateResubmissionRefused tests that the prediction made before the deadline survives
func TestSubmitPrediction_LateResubmissionRefused(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	round := f.openRound(1, 1)
	user, req := f.bettor("Ana", "ana")

	t1 := f.now
	require.NoError(t, f.api.SubmitPrediction(ctx, req, round.ID.Hex(), []ScoreEntry{entry(round, 0, "2", "1")}))

	f.passDeadline(round)
	err := f.api.SubmitPrediction(ctx, req, round.ID.Hex(), []ScoreEntry{entry(round, 0, "0", "0")})

	assert.ErrorIs(t, err, ErrPreconditionFailed)
	assert.ErrorIs(t, err, logic.ErrRoundLocked)
	stored, err := f.store.GetPrediction(ctx, user.ID, round.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, *stored.Entries[0].HomeScore)
	assert.Equal(t, 1, *stored.Entries[0].AwayScore)
	assert.Equal(t, t1, stored.CreatedAt)
}

// TestSubmitPrediction_AtDeadlineRefused tests that the deadline instant is already closed
func TestSubmitPrediction_AtDeadlineRefused(t *testing.T) {
	f := newFixture(t)
	round := f.openRound(1, 1)
	_, req := f.bettor("Ana", "ana")
	f.now = round.Deadline

	err := f.api.SubmitPrediction(context.Background(), req, round.ID.Hex(), []ScoreEntry{entry(round, 0, "1", "0")})

	assert.ErrorIs(t, err, ErrPreconditionFailed)
}

// TestSubmitPrediction_ReplacesWholesale tests that resubmitting replaces every entry and keeps one document
func TestSubmitPrediction_ReplacesWholesale(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	round := f.openRound(1, 2)
	user, req := f.bettor("Ana", "ana")

	require.NoError(t, f.api.SubmitPrediction(ctx, req, round.ID.Hex(), []ScoreEntry{entry(round, 0, "1", "0"), entry(round, 1, "2", "2")}))
	f.now = f.now.Add(time.Minute)
	require.NoError(t, f.api.SubmitPrediction(ctx, req, round.ID.Hex(), []ScoreEntry{entry(round, 0, "3", "3")}))

	assert.Len(t, f.store.Predictions, 1)
	stored, err := f.store.GetPrediction(ctx, user.ID, round.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, *stored.Entries[0].HomeScore)
	assert.Equal(t, 0, *stored.Entries[1].HomeScore, "a match left out counts as 0")
	assert.Equal(t, f.now, stored.CreatedAt)
}

// TestSubmitPrediction_Malformed tests that a bad value rejects the submission and keeps the stored one
func TestSubmitPrediction_Malformed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	round := f.openRound(1, 2)
	user, req := f.bettor("Ana", "ana")
	require.NoError(t, f.api.SubmitPrediction(ctx, req, round.ID.Hex(), []ScoreEntry{entry(round, 0, "1", "0"), entry(round, 1, "1", "1")}))

	err := f.api.SubmitPrediction(ctx, req, round.ID.Hex(), []ScoreEntry{entry(round, 0, "4", "0"), entry(round, 1, "-1", "1")})

	assert.ErrorIs(t, err, ErrValidation)
	stored, _ := f.store.GetPrediction(ctx, user.ID, round.ID)
	assert.Equal(t, 1, *stored.Entries[0].HomeScore)
}

// TestSubmitPrediction_UnknownMatch tests that entries must belong to the round
func TestSubmitPrediction_UnknownMatch(t *testing.T) {
	f := newFixture(t)
	round := f.openRound(1, 1)
	_, req := f.bettor("Ana", "ana")

	err := f.api.SubmitPrediction(context.Background(), req, round.ID.Hex(),
		[]ScoreEntry{{MatchID: primitive.NewObjectID().Hex(), Home: "1", Away: "0"}})

	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, f.store.Predictions)
}

// TestSubmitPredictionLines tests the positional form used by the bot
func TestSubmitPredictionLines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	round := f.openRound(4, 2)
	user, req := f.bettor("Ana", "ana")

	err := f.api.SubmitPredictionLines(ctx, req, 4, []string{"2-1"})
	assert.ErrorIs(t, err, ErrValidation)

	err = f.api.SubmitPredictionLines(ctx, req, 4, []string{"2-1", "bad"})
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, f.api.SubmitPredictionLines(ctx, req, 4, []string{"2-1", "0x3"}))
	stored, err := f.store.GetPrediction(ctx, user.ID, round.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, *stored.Entries[1].AwayScore)

	err = f.api.SubmitPredictionLines(ctx, req, 99, []string{"1-0"})
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestSubmitPrediction_Anonymous tests that a request without a user is refused
func TestSubmitPrediction_Anonymous(t *testing.T) {
	f := newFixture(t)
	round := f.openRound(1, 1)

	err := f.api.SubmitPrediction(context.Background(), shared.NewRequest(shared.User{}), round.ID.Hex(),
		[]ScoreEntry{entry(round, 0, "1", "0")})

	assert.ErrorIs(t, err, ErrUnauthorized)
}

// TestRoundPredictions_Visibility tests that predictions are hidden until the deadline and admins are left out
func TestRoundPredictions_Visibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	round := f.openRound(1, 1)
	_, reqZ := f.bettor("Zeca Pagodinho", "zeca")
	_, reqA := f.bettor("ana maria", "ana")
	require.NoError(t, f.api.SubmitPrediction(ctx, reqZ, round.ID.Hex(), []ScoreEntry{entry(round, 0, "1", "0")}))
	require.NoError(t, f.api.SubmitPrediction(ctx, reqA, round.ID.Hex(), []ScoreEntry{entry(round, 0, "0", "0")}))
	f.store.AddPrediction(store.CreateSamplePrediction(f.admin.ID, round, [2]int{9, 9}))

	_, err := f.api.RoundPredictions(ctx, reqA, round.ID.Hex())
	assert.ErrorIs(t, err, ErrPreconditionFailed)
	assert.ErrorIs(t, err, logic.ErrRoundOpen)

	f.passDeadline(round)
	views, err := f.api.RoundPredictions(ctx, reqA, round.ID.Hex())
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "ana", views[0].UserName)
	assert.Equal(t, "Zeca", views[1].UserName)
	assert.Equal(t, "FLA", views[1].Entries[0].Home.Code)
	assert.Equal(t, 1, *views[1].Entries[0].HomeScore)
}

// TestMyPredictions tests that the caller only sees their own predictions, newest first
func TestMyPredictions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r1 := f.openRound(1, 1)
	r2 := f.openRound(2, 1)
	_, req := f.bettor("Ana", "ana")
	_, other := f.bettor("Bruno", "bruno")

	require.NoError(t, f.api.SubmitPrediction(ctx, req, r1.ID.Hex(), []ScoreEntry{entry(r1, 0, "1", "0")}))
	f.now = f.now.Add(time.Minute)
	require.NoError(t, f.api.SubmitPrediction(ctx, req, r2.ID.Hex(), []ScoreEntry{entry(r2, 0, "2", "0")}))
	require.NoError(t, f.api.SubmitPrediction(ctx, other, r2.ID.Hex(), []ScoreEntry{entry(r2, 0, "0", "5")}))

	views, err := f.api.MyPredictions(ctx, req)

	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, 2, views[0].RoundNumber)
	assert.Equal(t, 1, views[1].RoundNumber)
	assert.Equal(t, "Palmeiras", views[0].Entries[0].Away.Name)
}

// TestBettingStatus tests that users who have not bet are listed first and admins are left out
func TestBettingStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	round := f.openRound(1, 1)
	_, reqA := f.bettor("Ana", "ana")
	f.bettor("Carla", "carla")
	f.bettor("Bruno", "bruno")
	require.NoError(t, f.api.SubmitPrediction(ctx, reqA, round.ID.Hex(), []ScoreEntry{entry(round, 0, "1", "0")}))

	status, err := f.api.BettingStatus(ctx, f.adminReq())

	require.NoError(t, err)
	assert.Equal(t, 1, status.Round.Number)
	require.Len(t, status.Users, 3)
	assert.Equal(t, "Bruno", status.Users[0].Name)
	assert.False(t, status.Users[0].HasBet)
	assert.Equal(t, "Carla", status.Users[1].Name)
	assert.Equal(t, "Ana", status.Users[2].Name)
	assert.True(t, status.Users[2].HasBet)

	_, err = f.api.BettingStatus(ctx, reqA)
	assert.ErrorIs(t, err, ErrForbidden)
}

// endregion

// region Results tests

// TestRecordResults_RefusedWhileOpen tests that results cannot be entered before the deadline
func TestRecordResults_RefusedWhileOpen(t *testing.T) {
	f := newFixture(t)
	round := f.openRound(1, 1)

	_, err := f.api.RecordResults(context.Background(), f.adminReq(), round.ID.Hex(), []ScoreEntry{entry(round, 0, "1", "0")})

	assert.ErrorIs(t, err, ErrPreconditionFailed)
	assert.ErrorIs(t, err, logic.ErrRoundOpen)
}

// TestRecordResults_PartialFailure tests that a malformed result keeps the previous one and saves the others
func TestRecordResults_PartialFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	round := f.openRound(1, 3)
	f.passDeadline(round)

	_, err := f.api.RecordResults(ctx, f.adminReq(), round.ID.Hex(), []ScoreEntry{entry(round, 1, "1", "1")})
	require.NoError(t, err)

	req := f.adminReq()
	summary, err := f.api.RecordResults(ctx, req, round.ID.Hex(), []ScoreEntry{
		entry(round, 0, "2", "0"),
		entry(round, 1, "abc", "1"),
	})

	require.NoError(t, err)
	assert.Equal(t, ResultsSummary{Finalized: 2, Total: 3}, summary)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, shared.LevelWarning, req.Messages[0].Level)
	assert.Contains(t, req.Messages[0].Text, "Flamengo x Palmeiras")
	assert.Equal(t, shared.LevelSuccess, req.Messages[1].Level)

	stored := f.store.RoundSnapshot(round.ID)
	assert.Equal(t, 2, *stored.Matches[0].HomeScore)
	assert.Equal(t, 1, *stored.Matches[1].HomeScore)
	assert.True(t, stored.Matches[1].Finalized)
	assert.False(t, stored.Matches[2].Finalized)
}

// TestRecordResults_BlankUnfinalizes tests that clearing one side makes the match pending again
func TestRecordResults_BlankUnfinalizes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	round := f.openRound(1, 1)
	f.passDeadline(round)
	_, err := f.api.RecordResults(ctx, f.adminReq(), round.ID.Hex(), []ScoreEntry{entry(round, 0, "2", "0")})
	require.NoError(t, err)

	summary, err := f.api.RecordResults(ctx, f.adminReq(), round.ID.Hex(), []ScoreEntry{entry(round, 0, "2", "")})

	require.NoError(t, err)
	assert.Equal(t, 0, summary.Finalized)
	stored := f.store.RoundSnapshot(round.ID)
	assert.Nil(t, stored.Matches[0].AwayScore)
	assert.Equal(t, logic.PhaseLocked, logic.Classify(stored, f.now))
}

// endregion

// region Error helper tests

// TestUserMessage tests that unexpected errors are not shown to users
func TestUserMessage(t *testing.T) {
	assert.Equal(t, "not found: round", UserMessage(translateStoreError(mongo.ErrNoDocuments, "round")))
	assert.Equal(t, "something went wrong, please try again", UserMessage(assert.AnError))
}

// endregion
