/* catalog_test.go
 * Contains unit tests for teams.go and rounds.go
 */

package api

import (
	"context"
	"strings"
	"testing"
	"time"

	"bolao-bot/api/logic"
	"bolao-bot/api/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

// region Team tests

// TestCreateTeam tests normalization and the emblem data URL
func TestCreateTeam(t *testing.T) {
	f := newFixture(t)

	team, err := f.api.CreateTeam(context.Background(), f.adminReq(), TeamInput{Name: " Grêmio ", Code: "gre", Emblem: pngHeader})

	require.NoError(t, err)
	assert.Equal(t, "Grêmio", team.Name)
	assert.Equal(t, "GRE", team.Code)
	require.NotNil(t, team.Emblem)
	assert.True(t, strings.HasPrefix(*team.Emblem, "data:image/png;base64,"))
}

// TestCreateTeam_Validation tests code rules, non image emblems and duplicates
func TestCreateTeam_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.api.CreateTeam(ctx, f.adminReq(), TeamInput{Name: "Santos", Code: "SA"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.api.CreateTeam(ctx, f.adminReq(), TeamInput{Name: "Santos", Code: "S4N"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.api.CreateTeam(ctx, f.adminReq(), TeamInput{Name: "Santos", Code: "SAN", Emblem: []byte("hello world")})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.api.CreateTeam(ctx, f.adminReq(), TeamInput{Name: "FLAMENGO", Code: "FLM"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.api.CreateTeam(ctx, f.adminReq(), TeamInput{Name: "Fortaleza", Code: "fla"})
	assert.ErrorIs(t, err, ErrConflict)

	_, bettorReq := f.bettor("Ana", "ana")
	_, err = f.api.CreateTeam(ctx, bettorReq, TeamInput{Name: "Santos", Code: "SAN"})
	assert.ErrorIs(t, err, ErrForbidden)
}

// TestUpdateTeam_KeepsEmblem tests that an update without a file keeps the stored emblem
func TestUpdateTeam_KeepsEmblem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.api.CreateTeam(ctx, f.adminReq(), TeamInput{Name: "Santos", Code: "SAN", Emblem: pngHeader})
	require.NoError(t, err)

	updated, err := f.api.UpdateTeam(ctx, f.adminReq(), created.ID, TeamInput{Name: "Santos FC", Code: "SAN"})

	require.NoError(t, err)
	assert.Equal(t, "Santos FC", updated.Name)
	assert.Equal(t, created.Emblem, updated.Emblem)

	got, err := f.api.GetTeam(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Emblem, got.Emblem)

	_, err = f.api.UpdateTeam(ctx, f.adminReq(), primitive.NewObjectID().Hex(), TeamInput{Name: "X", Code: "XXX"})
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestDeleteTeam tests that referenced teams cannot be deleted
func TestDeleteTeam(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.openRound(1, 1)
	spare := f.store.AddTeam("Santos", "SAN")

	err := f.api.DeleteTeam(ctx, f.adminReq(), f.home.ID.Hex())
	assert.ErrorIs(t, err, ErrPreconditionFailed)

	require.NoError(t, f.api.DeleteTeam(ctx, f.adminReq(), spare.ID.Hex()))
	err = f.api.DeleteTeam(ctx, f.adminReq(), spare.ID.Hex())
	assert.ErrorIs(t, err, ErrNotFound)

	teams, err := f.api.ListTeams(ctx)
	require.NoError(t, err)
	assert.Len(t, teams, 2)
}

// endregion

// region Round tests

// TestCreateRound_ResolvesTeams tests references by code, fuzzy name and id, and that blank pairs are skipped
func TestCreateRound_ResolvesTeams(t *testing.T) {
	f := newFixture(t)
	gremio := f.store.AddTeam("Grêmio", "GRE")
	deadline := f.now.Add(48 * time.Hour)

	round, err := f.api.CreateRound(context.Background(), f.adminReq(), RoundInput{
		Number:   5,
		Deadline: deadline,
		Pairs: []PairInput{
			{Home: "fla", Away: "gremio"},
			{Home: "", Away: ""},
			{Home: gremio.ID.Hex(), Away: "palmei"},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, 5, round.Number)
	assert.Equal(t, logic.PhaseOpen, round.Phase)
	require.Len(t, round.Matches, 2)
	assert.Equal(t, "FLA", round.Matches[0].Home.Code)
	assert.Equal(t, "GRE", round.Matches[0].Away.Code)
	assert.Equal(t, "PAL", round.Matches[1].Away.Code)
	assert.Nil(t, round.Matches[0].HomeScore)
	assert.False(t, round.Matches[0].Finalized)
	assert.NotEqual(t, round.Matches[0].ID, round.Matches[1].ID)
}

// TestCreateRound_Validation tests the rejected inputs
func TestCreateRound_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	deadline := f.now.Add(time.Hour)

	cases := []struct {
		name  string
		input RoundInput
	}{
		{"no number", RoundInput{Deadline: deadline, Pairs: []PairInput{{Home: "FLA", Away: "PAL"}}}},
		{"no deadline", RoundInput{Number: 1, Pairs: []PairInput{{Home: "FLA", Away: "PAL"}}}},
		{"no matches", RoundInput{Number: 1, Deadline: deadline, Pairs: []PairInput{{}}}},
		{"half pair", RoundInput{Number: 1, Deadline: deadline, Pairs: []PairInput{{Home: "FLA"}}}},
		{"same team", RoundInput{Number: 1, Deadline: deadline, Pairs: []PairInput{{Home: "FLA", Away: "flamengo"}}}},
		{"unknown team", RoundInput{Number: 1, Deadline: deadline, Pairs: []PairInput{{Home: "FLA", Away: "Vasco"}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.api.CreateRound(ctx, f.adminReq(), tc.input)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
	assert.Empty(t, f.store.Rounds)
}

// TestCreateRound_DuplicateNumber tests that round numbers are unique
func TestCreateRound_DuplicateNumber(t *testing.T) {
	f := newFixture(t)
	f.openRound(3, 1)

	_, err := f.api.CreateRound(context.Background(), f.adminReq(), RoundInput{
		Number: 3, Deadline: f.now.Add(time.Hour), Pairs: []PairInput{{Home: "FLA", Away: "PAL"}},
	})

	assert.ErrorIs(t, err, ErrConflict)
}

// TestDeleteRound_Cascades tests that predictions and score records go with the round
func TestDeleteRound_Cascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	keep := f.openRound(1, 1)
	drop := f.openRound(2, 1)
	user, _ := f.bettor("Ana", "ana")
	f.store.AddPrediction(store.CreateSamplePrediction(user.ID, keep, [2]int{1, 0}))
	f.store.AddPrediction(store.CreateSamplePrediction(user.ID, drop, [2]int{1, 0}))
	f.store.Scores = []store.ScoreRecord{
		{ID: primitive.NewObjectID(), UserID: user.ID, RoundID: keep.ID, TotalPoints: 5},
		{ID: primitive.NewObjectID(), UserID: user.ID, RoundID: drop.ID, TotalPoints: 10},
	}

	require.NoError(t, f.api.DeleteRound(ctx, f.adminReq(), drop.ID.Hex()))

	assert.Len(t, f.store.Rounds, 1)
	assert.Len(t, f.store.Predictions, 1)
	require.Len(t, f.store.Scores, 1)
	assert.Equal(t, keep.ID, f.store.Scores[0].RoundID)

	err := f.api.DeleteRound(ctx, f.adminReq(), drop.ID.Hex())
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestListRounds_Phases tests that every round is annotated with its current phase, newest first
func TestListRounds_Phases(t *testing.T) {
	f := newFixture(t)
	past := f.now.Add(-time.Hour)

	locked := store.CreateSampleRound(1, past, [2]primitive.ObjectID{f.home.ID, f.away.ID})
	finalized := store.CreateSampleRound(2, past, [2]primitive.ObjectID{f.home.ID, f.away.ID})
	finalized.SetResult(0, 0, 0)
	scored := store.CreateSampleRound(3, past, [2]primitive.ObjectID{f.home.ID, f.away.ID})
	scored.SetResult(0, 1, 0)
	scored.Processed = true
	f.store.AddRound(locked)
	f.store.AddRound(finalized)
	f.store.AddRound(scored)
	f.openRound(4, 1)

	rounds, err := f.api.ListRounds(context.Background())

	require.NoError(t, err)
	require.Len(t, rounds, 4)
	assert.Equal(t, []logic.Phase{logic.PhaseOpen, logic.PhaseScored, logic.PhaseFinalized, logic.PhaseLocked},
		[]logic.Phase{rounds[0].Phase, rounds[1].Phase, rounds[2].Phase, rounds[3].Phase})
	assert.Equal(t, "10/05/2025 at 11:00", rounds[3].DeadlineText)
}

// TestOpenRound tests that the lowest numbered open round is returned
func TestOpenRound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.api.OpenRound(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	f.openRound(7, 1)
	f.openRound(6, 1)
	f.store.AddRound(store.CreateSampleRound(5, f.now.Add(-time.Hour), [2]primitive.ObjectID{f.home.ID, f.away.ID}))

	open, err := f.api.OpenRound(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, open.Number)

	byNumber, err := f.api.GetRoundByNumber(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, logic.PhaseLocked, byNumber.Phase)
}

// endregion
