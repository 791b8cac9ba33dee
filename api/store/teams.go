/* teams.go
 * Contains the methods for interacting with the times collection
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

// CreateTeam inserts a new team and returns it with its ID
func (s *Store) CreateTeam(ctx context.Context, team Team) (Team, error) {
	team.ID = primitive.NewObjectID()
	if _, err := s.Collections.Teams.InsertOne(ctx, team); err != nil {
		return Team{}, wrapWriteError("failed to insert team", err)
	}
	return team, nil
}

// GetTeam returns the team with the given id
func (s *Store) GetTeam(ctx context.Context, id primitive.ObjectID) (Team, error) {
	var team Team
	err := s.Collections.Teams.FindOne(ctx, bson.M{"_id": id}).Decode(&team)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Team{}, err
		}
		return Team{}, fmt.Errorf("error fetching team from db: %w", err)
	}
	return team, nil
}

// ListTeams returns every team ordered by name
func (s *Store) ListTeams(ctx context.Context) ([]Team, error) {
	cursor, err := s.Collections.Teams.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "nome", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("error fetching teams from db: %w", err)
	}

	var teams []Team
	if err = cursor.All(ctx, &teams); err != nil {
		return nil, fmt.Errorf("error unpacking cursor into slice of teams: %w", err)
	}
	return teams, nil
}

// UpdateTeam replaces the stored team. The emblem is only overwritten when team.Emblem is set
func (s *Store) UpdateTeam(ctx context.Context, team Team) error {
	set := bson.M{"nome": team.Name, "sigla": team.Code, "slug": team.Slug}
	if team.Emblem != nil {
		set["escudo_base64"] = team.Emblem
	}

	res, err := s.Collections.Teams.UpdateOne(ctx, bson.M{"_id": team.ID}, bson.M{"$set": set})
	if err != nil {
		return wrapWriteError("failed to update team", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// DeleteTeam removes a team. Callers must check CountRoundsWithTeam first
func (s *Store) DeleteTeam(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.Collections.Teams.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// CountRoundsWithTeam returns how many rounds have a match with the team on either side
func (s *Store) CountRoundsWithTeam(ctx context.Context, teamID primitive.ObjectID) (int64, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"jogos.time_casa_id": teamID},
		bson.M{"jogos.time_visitante_id": teamID},
	}}
	n, err := s.Collections.Rounds.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count rounds for team: %w", err)
	}
	return n, nil
}
