/* users.go
 * Contains the methods for interacting with the apostadores collection
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

// CreateUser inserts a new user
// Preconditions: Receives context and the User to store, ID is ignored
// Postconditions: Returns the stored user with its new ID, ErrDuplicate if the username is taken, or another error
func (s *Store) CreateUser(ctx context.Context, user User) (User, error) {
	user.ID = primitive.NewObjectID()
	if _, err := s.Collections.Users.InsertOne(ctx, user); err != nil {
		return User{}, wrapWriteError("failed to insert user", err)
	}
	return user, nil
}

// GetUser returns the user with the given id
func (s *Store) GetUser(ctx context.Context, id primitive.ObjectID) (User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

// GetUserByUsername returns the user with the given login name
func (s *Store) GetUserByUsername(ctx context.Context, username string) (User, error) {
	return s.findUser(ctx, bson.M{"usuario": username})
}

// GetUserByDiscordID returns the user linked to a discord account
func (s *Store) GetUserByDiscordID(ctx context.Context, discordID string) (User, error) {
	return s.findUser(ctx, bson.M{"discord_id": discordID})
}

func (s *Store) findUser(ctx context.Context, filter bson.M) (User, error) {
	var user User
	err := s.Collections.Users.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return User{}, err
		}
		return User{}, fmt.Errorf("error fetching user from db: %w", err)
	}
	return user, nil
}

// ListUsers returns every user ordered by name
func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	cursor, err := s.Collections.Users.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "nome", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("error fetching users from db: %w", err)
	}

	var users []User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("error unpacking cursor into slice of users: %w", err)
	}
	return users, nil
}

// SetAdmin grants or revokes admin rights
func (s *Store) SetAdmin(ctx context.Context, id primitive.ObjectID, isAdmin bool) error {
	res, err := s.Collections.Users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"is_admin": isAdmin}})
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
