/* store.go
 * Contains the store struct and NewStore function. The methods for this package are split per collection: users,
 * teams, rounds, predictions and scores. Each of these files contain methods for interacting with that part of the
 * database
 */

package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicate is returned when a write violates a unique index (username, round number, team code)
var ErrDuplicate = errors.New("document already exists")

// ErrRoundBusy is returned when a round write lost against a concurrent scoring pass
var ErrRoundBusy = errors.New("round is being scored or has already been scored")

// Collections holds a handle for every collection the pool uses
type Collections struct {
	Users       *mongo.Collection
	Teams       *mongo.Collection
	Rounds      *mongo.Collection
	Predictions *mongo.Collection
	Scores      *mongo.Collection
}

type Store struct {
	Client      *mongo.Client
	Database    *mongo.Database
	Collections Collections
}

// Function for initialising Store. Connects to mongo and sets the collection handles
// Preconditions: Receives context, the database name and the mongo connection uri
// Postconditions: Returns pointer to the Store object, or error if it occurs
func NewStore(ctx context.Context, dbName string, mongoURI string) (*Store, error) {
	if dbName == "" {
		return nil, fmt.Errorf("database name cannot be empty")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to reach mongo: %w", err)
	}

	return NewStoreFromDatabase(client, client.Database(dbName)), nil
}

// NewStoreFromDatabase wraps an already connected database
func NewStoreFromDatabase(client *mongo.Client, db *mongo.Database) *Store {
	return &Store{
		Client:   client,
		Database: db,
		Collections: Collections{
			Users:       db.Collection("apostadores"),
			Teams:       db.Collection("times"),
			Rounds:      db.Collection("rodadas"),
			Predictions: db.Collection("palpites"),
			Scores:      db.Collection("ranking"),
		},
	}
}

// EnsureIndexes creates the unique indexes the pool relies on. Safe to call on every start
func (s *Store) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	indexes := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{s.Collections.Users, mongo.IndexModel{Keys: bson.D{{Key: "usuario", Value: 1}}, Options: unique}},
		{s.Collections.Users, mongo.IndexModel{Keys: bson.D{{Key: "discord_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true)}},
		{s.Collections.Teams, mongo.IndexModel{Keys: bson.D{{Key: "sigla", Value: 1}}, Options: unique}},
		{s.Collections.Rounds, mongo.IndexModel{Keys: bson.D{{Key: "numero", Value: 1}}, Options: unique}},
		{s.Collections.Predictions, mongo.IndexModel{Keys: bson.D{{Key: "usuario_id", Value: 1}, {Key: "rodada_id", Value: 1}}, Options: unique}},
		{s.Collections.Scores, mongo.IndexModel{Keys: bson.D{{Key: "usuario_id", Value: 1}, {Key: "rodada_id", Value: 1}}, Options: unique}},
	}

	for _, idx := range indexes {
		if _, err := idx.coll.Indexes().CreateOne(ctx, idx.model); err != nil {
			return fmt.Errorf("failed to create index on %s: %w", idx.coll.Name(), err)
		}
	}
	return nil
}

// Close disconnects the mongo client
func (s *Store) Close(ctx context.Context) error {
	if s.Client == nil {
		return nil
	}
	return s.Client.Disconnect(ctx)
}

// wrapWriteError turns duplicate key errors into ErrDuplicate so callers do not need to know about mongo
func wrapWriteError(action string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s: %w", action, ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", action, err)
}
