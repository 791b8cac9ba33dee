/* test_mocks.go
 * Contains an in-memory implementation of store.Interface used by the tests of this package, bot and web
 */

package api

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"bolao-bot/api/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MockStore implements the Store interface for testing
type MockStore struct {
	mu sync.Mutex

	// Storage for mock data, in insertion order
	Users       []store.User
	Teams       []store.Team
	Rounds      []store.Round
	Predictions []store.Prediction
	Scores      []store.ScoreRecord

	// Error injection for testing error paths
	CreateUserError        error
	GetUserError           error
	ListUsersError         error
	CreateTeamError        error
	ListTeamsError         error
	CreateRoundError       error
	GetRoundError          error
	ListRoundsError        error
	UpdateRoundError       error
	DeleteRoundError       error
	ClaimRoundError        error
	FinishRoundError       error
	UpsertPredictionError  error
	ListPredictionsError   error
	UpsertScoreRecordError error
	ListScoreRecordsError  error

	// Calls counts claim attempts, handy for checking a pass never started
	ClaimCalls int
	Closed     bool
}

// NewMockStore creates an empty MockStore
func NewMockStore() *MockStore {
	return &MockStore{}
}

var _ store.Interface = (*MockStore)(nil)

func copyRound(r store.Round) store.Round {
	r.Matches = append([]store.Match(nil), r.Matches...)
	if r.ScoringSince != nil {
		since := *r.ScoringSince
		r.ScoringSince = &since
	}
	return r
}

func copyPrediction(p store.Prediction) store.Prediction {
	p.Entries = append([]store.PredictionEntry(nil), p.Entries...)
	return p
}

// region Users

func (m *MockStore) CreateUser(_ context.Context, user store.User) (store.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateUserError != nil {
		return store.User{}, m.CreateUserError
	}
	for _, u := range m.Users {
		if u.Username == user.Username || (user.DiscordID != "" && u.DiscordID == user.DiscordID) {
			return store.User{}, store.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	m.Users = append(m.Users, user)
	return user, nil
}

func (m *MockStore) findUser(match func(store.User) bool) (store.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetUserError != nil {
		return store.User{}, m.GetUserError
	}
	for _, u := range m.Users {
		if match(u) {
			return u, nil
		}
	}
	return store.User{}, mongo.ErrNoDocuments
}

func (m *MockStore) GetUser(_ context.Context, id primitive.ObjectID) (store.User, error) {
	return m.findUser(func(u store.User) bool { return u.ID == id })
}

func (m *MockStore) GetUserByUsername(_ context.Context, username string) (store.User, error) {
	return m.findUser(func(u store.User) bool { return u.Username == username })
}

func (m *MockStore) GetUserByDiscordID(_ context.Context, discordID string) (store.User, error) {
	return m.findUser(func(u store.User) bool { return u.DiscordID != "" && u.DiscordID == discordID })
}

func (m *MockStore) ListUsers(_ context.Context) ([]store.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListUsersError != nil {
		return nil, m.ListUsersError
	}
	users := append([]store.User(nil), m.Users...)
	sort.SliceStable(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

func (m *MockStore) SetAdmin(_ context.Context, id primitive.ObjectID, isAdmin bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Users {
		if m.Users[i].ID == id {
			m.Users[i].IsAdmin = isAdmin
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

// endregion

// region Teams

func (m *MockStore) CreateTeam(_ context.Context, team store.Team) (store.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateTeamError != nil {
		return store.Team{}, m.CreateTeamError
	}
	for _, t := range m.Teams {
		if t.Code == team.Code {
			return store.Team{}, store.ErrDuplicate
		}
	}
	team.ID = primitive.NewObjectID()
	m.Teams = append(m.Teams, team)
	return team, nil
}

func (m *MockStore) GetTeam(_ context.Context, id primitive.ObjectID) (store.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.Teams {
		if t.ID == id {
			return t, nil
		}
	}
	return store.Team{}, mongo.ErrNoDocuments
}

func (m *MockStore) ListTeams(_ context.Context) ([]store.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListTeamsError != nil {
		return nil, m.ListTeamsError
	}
	teams := append([]store.Team(nil), m.Teams...)
	sort.SliceStable(teams, func(i, j int) bool { return teams[i].Name < teams[j].Name })
	return teams, nil
}

func (m *MockStore) UpdateTeam(_ context.Context, team store.Team) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Teams {
		if m.Teams[i].ID == team.ID {
			if team.Emblem == nil {
				team.Emblem = m.Teams[i].Emblem
			}
			m.Teams[i] = team
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (m *MockStore) DeleteTeam(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Teams {
		if m.Teams[i].ID == id {
			m.Teams = append(m.Teams[:i], m.Teams[i+1:]...)
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (m *MockStore) CountRoundsWithTeam(_ context.Context, teamID primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, r := range m.Rounds {
		if r.ReferencesTeam(teamID) {
			n++
		}
	}
	return n, nil
}

// endregion

// region Rounds

func (m *MockStore) CreateRound(_ context.Context, round store.Round) (store.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateRoundError != nil {
		return store.Round{}, m.CreateRoundError
	}
	for _, r := range m.Rounds {
		if r.Number == round.Number {
			return store.Round{}, store.ErrDuplicate
		}
	}
	round.ID = primitive.NewObjectID()
	round.Processed = false
	round.ScoringSince = nil
	m.Rounds = append(m.Rounds, copyRound(round))
	return copyRound(round), nil
}

func (m *MockStore) roundIndex(id primitive.ObjectID) int {
	for i := range m.Rounds {
		if m.Rounds[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *MockStore) GetRound(_ context.Context, id primitive.ObjectID) (store.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetRoundError != nil {
		return store.Round{}, m.GetRoundError
	}
	i := m.roundIndex(id)
	if i < 0 {
		return store.Round{}, mongo.ErrNoDocuments
	}
	return copyRound(m.Rounds[i]), nil
}

func (m *MockStore) GetRoundByNumber(_ context.Context, number int) (store.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetRoundError != nil {
		return store.Round{}, m.GetRoundError
	}
	for _, r := range m.Rounds {
		if r.Number == number {
			return copyRound(r), nil
		}
	}
	return store.Round{}, mongo.ErrNoDocuments
}

func (m *MockStore) ListRounds(_ context.Context) ([]store.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListRoundsError != nil {
		return nil, m.ListRoundsError
	}
	rounds := make([]store.Round, 0, len(m.Rounds))
	for _, r := range m.Rounds {
		rounds = append(rounds, copyRound(r))
	}
	sort.SliceStable(rounds, func(i, j int) bool { return rounds[i].Number > rounds[j].Number })
	return rounds, nil
}

func (m *MockStore) UpdateRoundMatches(_ context.Context, id primitive.ObjectID, matches []store.Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateRoundError != nil {
		return m.UpdateRoundError
	}
	i := m.roundIndex(id)
	if i < 0 || m.Rounds[i].Processed || m.Rounds[i].ScoringSince != nil {
		return store.ErrRoundBusy
	}
	m.Rounds[i].Matches = append([]store.Match(nil), matches...)
	return nil
}

func (m *MockStore) DeleteRound(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteRoundError != nil {
		return m.DeleteRoundError
	}
	i := m.roundIndex(id)
	if i < 0 {
		return mongo.ErrNoDocuments
	}
	m.Rounds = append(m.Rounds[:i], m.Rounds[i+1:]...)

	predictions := m.Predictions[:0]
	for _, p := range m.Predictions {
		if p.RoundID != id {
			predictions = append(predictions, p)
		}
	}
	m.Predictions = predictions

	scores := m.Scores[:0]
	for _, s := range m.Scores {
		if s.RoundID != id {
			scores = append(scores, s)
		}
	}
	m.Scores = scores
	return nil
}

// ClaimRound performs the same check-and-set as the mongo filter: flag must match and no live claim may exist
func (m *MockStore) ClaimRound(_ context.Context, id primitive.ObjectID, processed bool, now time.Time, staleAfter time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClaimCalls++
	if m.ClaimRoundError != nil {
		return false, m.ClaimRoundError
	}
	i := m.roundIndex(id)
	if i < 0 || m.Rounds[i].Processed != processed {
		return false, nil
	}
	if since := m.Rounds[i].ScoringSince; since != nil && !since.Before(now.Add(-staleAfter)) {
		return false, nil
	}
	claimedAt := now
	m.Rounds[i].ScoringSince = &claimedAt
	return true, nil
}

func (m *MockStore) FinishRound(_ context.Context, id primitive.ObjectID, processed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FinishRoundError != nil {
		return m.FinishRoundError
	}
	i := m.roundIndex(id)
	if i < 0 {
		return mongo.ErrNoDocuments
	}
	m.Rounds[i].Processed = processed
	m.Rounds[i].ScoringSince = nil
	return nil
}

func (m *MockStore) ReleaseRound(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.roundIndex(id); i >= 0 {
		m.Rounds[i].ScoringSince = nil
	}
	return nil
}

// endregion

// region Predictions

func (m *MockStore) UpsertPrediction(_ context.Context, prediction store.Prediction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpsertPredictionError != nil {
		return m.UpsertPredictionError
	}
	for i, p := range m.Predictions {
		if p.UserID == prediction.UserID && p.RoundID == prediction.RoundID {
			prediction.ID = p.ID
			m.Predictions[i] = copyPrediction(prediction)
			return nil
		}
	}
	prediction.ID = primitive.NewObjectID()
	m.Predictions = append(m.Predictions, copyPrediction(prediction))
	return nil
}

func (m *MockStore) GetPrediction(_ context.Context, userID primitive.ObjectID, roundID primitive.ObjectID) (store.Prediction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.Predictions {
		if p.UserID == userID && p.RoundID == roundID {
			return copyPrediction(p), nil
		}
	}
	return store.Prediction{}, mongo.ErrNoDocuments
}

func (m *MockStore) filterPredictions(match func(store.Prediction) bool) ([]store.Prediction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListPredictionsError != nil {
		return nil, m.ListPredictionsError
	}
	var out []store.Prediction
	for _, p := range m.Predictions {
		if match(p) {
			out = append(out, copyPrediction(p))
		}
	}
	return out, nil
}

func (m *MockStore) ListRoundPredictions(_ context.Context, roundID primitive.ObjectID) ([]store.Prediction, error) {
	return m.filterPredictions(func(p store.Prediction) bool { return p.RoundID == roundID })
}

func (m *MockStore) ListUserPredictions(_ context.Context, userID primitive.ObjectID) ([]store.Prediction, error) {
	return m.filterPredictions(func(p store.Prediction) bool { return p.UserID == userID })
}

// endregion

// region Scores

func (m *MockStore) UpsertScoreRecord(_ context.Context, record store.ScoreRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpsertScoreRecordError != nil {
		return m.UpsertScoreRecordError
	}
	for i, s := range m.Scores {
		if s.UserID == record.UserID && s.RoundID == record.RoundID {
			record.ID = s.ID
			m.Scores[i] = record
			return nil
		}
	}
	record.ID = primitive.NewObjectID()
	m.Scores = append(m.Scores, record)
	return nil
}

func (m *MockStore) ListScoreRecords(_ context.Context) ([]store.ScoreRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListScoreRecordsError != nil {
		return nil, m.ListScoreRecordsError
	}
	return append([]store.ScoreRecord(nil), m.Scores...), nil
}

func (m *MockStore) ListUserScoreRecords(_ context.Context, userID primitive.ObjectID) ([]store.ScoreRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListScoreRecordsError != nil {
		return nil, m.ListScoreRecordsError
	}
	var out []store.ScoreRecord
	for _, s := range m.Scores {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *MockStore) DeleteRoundScoreRecords(_ context.Context, roundID primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	scores := m.Scores[:0]
	for _, s := range m.Scores {
		if s.RoundID == roundID {
			removed++
			continue
		}
		scores = append(scores, s)
	}
	m.Scores = scores
	return removed, nil
}

// endregion

func (m *MockStore) Close(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

// region Seeding helpers

// AddUser stores a user directly and returns it with its id
func (m *MockStore) AddUser(name string, username string, isAdmin bool) store.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := store.User{ID: primitive.NewObjectID(), Name: name, Username: strings.ToLower(username), IsAdmin: isAdmin}
	m.Users = append(m.Users, u)
	return u
}

// AddTeam stores a team directly and returns it with its id
func (m *MockStore) AddTeam(name string, code string) store.Team {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := store.Team{ID: primitive.NewObjectID(), Name: name, Code: code}
	m.Teams = append(m.Teams, t)
	return t
}

// AddRound stores a round as is, keeping its id and flags
func (m *MockStore) AddRound(round store.Round) store.Round {
	m.mu.Lock()
	defer m.mu.Unlock()
	if round.ID.IsZero() {
		round.ID = primitive.NewObjectID()
	}
	m.Rounds = append(m.Rounds, copyRound(round))
	return round
}

// AddPrediction stores a prediction as is
func (m *MockStore) AddPrediction(p store.Prediction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	m.Predictions = append(m.Predictions, copyPrediction(p))
}

// RoundSnapshot returns the stored copy of a round
func (m *MockStore) RoundSnapshot(id primitive.ObjectID) store.Round {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.roundIndex(id); i >= 0 {
		return copyRound(m.Rounds[i])
	}
	return store.Round{}
}

// endregion
