/* predictions.go
 * Contains the methods for interacting with the palpites collection
 */

package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UpsertPrediction stores a user's prediction for a round, replacing any earlier one in full
// Preconditions: Receives context and the Prediction with UserID and RoundID set
// Postconditions: Exactly one prediction exists for the (user, round) pair, or an error is returned
func (s *Store) UpsertPrediction(ctx context.Context, prediction Prediction) error {
	filter := bson.M{"usuario_id": prediction.UserID, "rodada_id": prediction.RoundID}
	update := bson.M{"$set": bson.M{
		"palpites":     prediction.Entries,
		"data_criacao": prediction.CreatedAt,
	}}

	_, err := s.Collections.Predictions.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return wrapWriteError("failed to store prediction", err)
	}
	return nil
}

// GetPrediction returns a user's prediction for a round
func (s *Store) GetPrediction(ctx context.Context, userID primitive.ObjectID, roundID primitive.ObjectID) (Prediction, error) {
	var prediction Prediction
	err := s.Collections.Predictions.FindOne(ctx, bson.M{"usuario_id": userID, "rodada_id": roundID}).Decode(&prediction)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Prediction{}, err
		}
		return Prediction{}, fmt.Errorf("error fetching prediction from db: %w", err)
	}
	return prediction, nil
}

// ListRoundPredictions returns every prediction submitted for a round
func (s *Store) ListRoundPredictions(ctx context.Context, roundID primitive.ObjectID) ([]Prediction, error) {
	return s.findPredictions(ctx, bson.M{"rodada_id": roundID})
}

// ListUserPredictions returns every prediction a user has submitted
func (s *Store) ListUserPredictions(ctx context.Context, userID primitive.ObjectID) ([]Prediction, error) {
	return s.findPredictions(ctx, bson.M{"usuario_id": userID})
}

func (s *Store) findPredictions(ctx context.Context, filter bson.M) ([]Prediction, error) {
	cursor, err := s.Collections.Predictions.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("error fetching predictions from db: %w", err)
	}

	var predictions []Prediction
	if err = cursor.All(ctx, &predictions); err != nil {
		return nil, fmt.Errorf("error unpacking cursor into slice of predictions: %w", err)
	}
	return predictions, nil
}
