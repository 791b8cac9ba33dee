/* api.go
 * This file contains the API type. For consistent results, front-ends (web and bot) should only call the actions of
 * this package, not the store or logic packages directly. Every action takes the request context and a
 * *shared.Request that identifies the acting user and collects the messages to show back to them
 */

package api

import (
	"context"
	"fmt"
	"time"

	"bolao-bot/api/logic"
	"bolao-bot/api/shared"
	"bolao-bot/api/store"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// ScoringClaimTTL is how long a scoring pass may hold a round before another pass can take it over
const ScoringClaimTTL = 5 * time.Minute

// API provides the pool's actions on top of a store
type API struct {
	Store        store.Interface
	Location     *time.Location
	Now          func() time.Time
	Metrics      *Metrics
	PasswordCost int
}

// NewAPI connects to mongo, makes sure the indexes exist and returns an API using loc for parsing and showing deadlines
func NewAPI(ctx context.Context, dbName string, mongoURI string, loc *time.Location) (*API, error) {
	if dbName == "" || mongoURI == "" {
		return nil, fmt.Errorf("dbName and mongoURI are required")
	}

	s, err := store.NewStore(ctx, dbName, mongoURI)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	if err := s.EnsureIndexes(ctx); err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().Str("db", dbName).Msg("connected to mongo")
	return New(s, loc), nil
}

// New wraps an existing store
func New(s store.Interface, loc *time.Location) *API {
	if loc == nil {
		loc = time.UTC
	}
	return &API{
		Store:        s,
		Location:     loc,
		Now:          time.Now,
		PasswordCost: bcrypt.DefaultCost,
	}
}

// Close releases the store connection
func (a *API) Close(ctx context.Context) error {
	return a.Store.Close(ctx)
}

func (a *API) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

func (a *API) formatDeadline(t time.Time) string {
	return logic.FormatDeadline(t, a.Location)
}

// requireAdmin returns ErrForbidden unless the acting user is an admin
func requireAdmin(req *shared.Request) error {
	if req == nil || !req.User.IsAdmin {
		return ErrForbidden
	}
	return nil
}

// actingUserID returns the object id of the acting user
func actingUserID(req *shared.Request) (primitive.ObjectID, error) {
	if req == nil || req.User.UserID == "" {
		return primitive.NilObjectID, ErrUnauthorized
	}
	id, err := primitive.ObjectIDFromHex(req.User.UserID)
	if err != nil {
		return primitive.NilObjectID, ErrUnauthorized
	}
	return id, nil
}

// parseID turns a hex id from user input into an object id
func parseID(value string, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(value)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: malformed %s id %q", ErrValidation, what, value)
	}
	return id, nil
}
