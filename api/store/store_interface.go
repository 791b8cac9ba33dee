/* store_interface.go
 * Contains the Store interface for dependency injection and testing
 */

package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Interface defines the methods that Store implements.
// This allows for mocking in tests.
// Lookups that find nothing return mongo.ErrNoDocuments unwrapped
type Interface interface {
	// Users
	CreateUser(ctx context.Context, user User) (User, error)
	GetUser(ctx context.Context, id primitive.ObjectID) (User, error)
	GetUserByUsername(ctx context.Context, username string) (User, error)
	GetUserByDiscordID(ctx context.Context, discordID string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	SetAdmin(ctx context.Context, id primitive.ObjectID, isAdmin bool) error

	// Teams
	CreateTeam(ctx context.Context, team Team) (Team, error)
	GetTeam(ctx context.Context, id primitive.ObjectID) (Team, error)
	ListTeams(ctx context.Context) ([]Team, error)
	UpdateTeam(ctx context.Context, team Team) error
	DeleteTeam(ctx context.Context, id primitive.ObjectID) error
	CountRoundsWithTeam(ctx context.Context, teamID primitive.ObjectID) (int64, error)

	// Rounds
	CreateRound(ctx context.Context, round Round) (Round, error)
	GetRound(ctx context.Context, id primitive.ObjectID) (Round, error)
	GetRoundByNumber(ctx context.Context, number int) (Round, error)
	ListRounds(ctx context.Context) ([]Round, error)
	UpdateRoundMatches(ctx context.Context, id primitive.ObjectID, matches []Match) error
	DeleteRound(ctx context.Context, id primitive.ObjectID) error
	ClaimRound(ctx context.Context, id primitive.ObjectID, processed bool, now time.Time, staleAfter time.Duration) (bool, error)
	FinishRound(ctx context.Context, id primitive.ObjectID, processed bool) error
	ReleaseRound(ctx context.Context, id primitive.ObjectID) error

	// Predictions
	UpsertPrediction(ctx context.Context, prediction Prediction) error
	GetPrediction(ctx context.Context, userID primitive.ObjectID, roundID primitive.ObjectID) (Prediction, error)
	ListRoundPredictions(ctx context.Context, roundID primitive.ObjectID) ([]Prediction, error)
	ListUserPredictions(ctx context.Context, userID primitive.ObjectID) ([]Prediction, error)

	// Scores
	UpsertScoreRecord(ctx context.Context, record ScoreRecord) error
	ListScoreRecords(ctx context.Context) ([]ScoreRecord, error)
	ListUserScoreRecords(ctx context.Context, userID primitive.ObjectID) ([]ScoreRecord, error)
	DeleteRoundScoreRecords(ctx context.Context, roundID primitive.ObjectID) (int64, error)

	Close(ctx context.Context) error
}

// Ensure Store implements Interface
var _ Interface = (*Store)(nil)
