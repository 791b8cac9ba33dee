/* rounds.go
 * Contains the methods for interacting with the rodadas collection, including the claim used to make sure only one
 * scoring pass runs per round
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateRound inserts a new round. Returns ErrDuplicate if the round number is taken
func (s *Store) CreateRound(ctx context.Context, round Round) (Round, error) {
	round.ID = primitive.NewObjectID()
	round.Processed = false
	round.ScoringSince = nil
	if _, err := s.Collections.Rounds.InsertOne(ctx, round); err != nil {
		return Round{}, wrapWriteError("failed to insert round", err)
	}
	return round, nil
}

// GetRound returns the round with the given id
func (s *Store) GetRound(ctx context.Context, id primitive.ObjectID) (Round, error) {
	return s.findRound(ctx, bson.M{"_id": id})
}

// GetRoundByNumber returns the round with the given number
func (s *Store) GetRoundByNumber(ctx context.Context, number int) (Round, error) {
	return s.findRound(ctx, bson.M{"numero": number})
}

func (s *Store) findRound(ctx context.Context, filter bson.M) (Round, error) {
	var round Round
	err := s.Collections.Rounds.FindOne(ctx, filter).Decode(&round)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Round{}, err
		}
		return Round{}, fmt.Errorf("error fetching round from db: %w", err)
	}
	return round, nil
}

// ListRounds returns every round, newest (highest number) first
func (s *Store) ListRounds(ctx context.Context) ([]Round, error) {
	cursor, err := s.Collections.Rounds.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "numero", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("error fetching rounds from db: %w", err)
	}

	var rounds []Round
	if err = cursor.All(ctx, &rounds); err != nil {
		return nil, fmt.Errorf("error unpacking cursor into slice of rounds: %w", err)
	}
	return rounds, nil
}

// UpdateRoundMatches stores new official results for a round.
// Preconditions: Receives the round id and the full match list
// Postconditions: Writes the match list only while the round is unprocessed and unclaimed, otherwise returns
// ErrRoundBusy so results can never change under a scoring pass
func (s *Store) UpdateRoundMatches(ctx context.Context, id primitive.ObjectID, matches []Match) error {
	filter := bson.M{
		"_id":             id,
		"processada":      false,
		"pontuando_desde": bson.M{"$exists": false},
	}
	res, err := s.Collections.Rounds.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"jogos": matches}})
	if err != nil {
		return fmt.Errorf("failed to update round results: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrRoundBusy
	}
	return nil
}

// DeleteRound removes a round together with every prediction and score record that references it
func (s *Store) DeleteRound(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.Collections.Predictions.DeleteMany(ctx, bson.M{"rodada_id": id}); err != nil {
		return fmt.Errorf("failed to delete round predictions: %w", err)
	}
	if _, err := s.Collections.Scores.DeleteMany(ctx, bson.M{"rodada_id": id}); err != nil {
		return fmt.Errorf("failed to delete round score records: %w", err)
	}

	res, err := s.Collections.Rounds.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete round: %w", err)
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ClaimRound atomically marks a round as being worked on by a scoring (or unprocess) pass.
// Preconditions: processed is the flag value the round must currently have; claims older than staleAfter are treated
// as abandoned by a crashed pass
// Postconditions: Returns true if this caller now holds the round, false if the flag did not match or another pass
// holds it
func (s *Store) ClaimRound(ctx context.Context, id primitive.ObjectID, processed bool, now time.Time, staleAfter time.Duration) (bool, error) {
	filter := bson.M{
		"_id":        id,
		"processada": processed,
		"$or": bson.A{
			bson.M{"pontuando_desde": bson.M{"$exists": false}},
			bson.M{"pontuando_desde": nil},
			bson.M{"pontuando_desde": bson.M{"$lt": now.Add(-staleAfter)}},
		},
	}
	update := bson.M{"$set": bson.M{"pontuando_desde": now}}

	var round Round
	err := s.Collections.Rounds.FindOneAndUpdate(ctx, filter, update).Decode(&round)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, fmt.Errorf("failed to claim round: %w", err)
	}
	return true, nil
}

// FinishRound sets the processed flag and drops the claim in a single write
func (s *Store) FinishRound(ctx context.Context, id primitive.ObjectID, processed bool) error {
	update := bson.M{
		"$set":   bson.M{"processada": processed},
		"$unset": bson.M{"pontuando_desde": ""},
	}
	res, err := s.Collections.Rounds.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to finish round: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ReleaseRound drops the claim without touching the processed flag, used when a pass fails midway
func (s *Store) ReleaseRound(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.Collections.Rounds.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$unset": bson.M{"pontuando_desde": ""}})
	if err != nil {
		return fmt.Errorf("failed to release round: %w", err)
	}
	return nil
}
