/* scores.go
 * Contains the methods for interacting with the ranking collection. One record per (user, round) holds the points a
 * user earned in a scored round; the leaderboard is always recomputed from these records
 */

package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UpsertScoreRecord stores the points a user earned in a round, overwriting an earlier record for the same pair
func (s *Store) UpsertScoreRecord(ctx context.Context, record ScoreRecord) error {
	filter := bson.M{"usuario_id": record.UserID, "rodada_id": record.RoundID}
	update := bson.M{"$set": bson.M{
		"pontuacao_total": record.TotalPoints,
		"data_calculo":    record.ComputedAt,
	}}

	_, err := s.Collections.Scores.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return wrapWriteError("failed to store score record", err)
	}
	return nil
}

// ListScoreRecords returns every score record in insertion order
func (s *Store) ListScoreRecords(ctx context.Context) ([]ScoreRecord, error) {
	return s.findScoreRecords(ctx, bson.M{})
}

// ListUserScoreRecords returns a user's score records in insertion order
func (s *Store) ListUserScoreRecords(ctx context.Context, userID primitive.ObjectID) ([]ScoreRecord, error) {
	return s.findScoreRecords(ctx, bson.M{"usuario_id": userID})
}

func (s *Store) findScoreRecords(ctx context.Context, filter bson.M) ([]ScoreRecord, error) {
	cursor, err := s.Collections.Scores.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("error fetching score records from db: %w", err)
	}

	var records []ScoreRecord
	if err = cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("error unpacking cursor into slice of score records: %w", err)
	}
	return records, nil
}

// DeleteRoundScoreRecords removes every score record of a round and returns how many were removed
func (s *Store) DeleteRoundScoreRecords(ctx context.Context, roundID primitive.ObjectID) (int64, error) {
	res, err := s.Collections.Scores.DeleteMany(ctx, bson.M{"rodada_id": roundID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete score records: %w", err)
	}
	return res.DeletedCount, nil
}
