/* users.go
 * Contains the user actions: registration, login, linking discord accounts and creating admins
 */

package api

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bolao-bot/api/shared"
	"bolao-bot/api/store"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// errBadCredentials is deliberately the same for an unknown user and a wrong password
var errBadCredentials = fmt.Errorf("%w: invalid username or password", ErrUnauthorized)

func toSharedUser(u store.User) shared.User {
	return shared.User{
		UserID:   u.ID.Hex(),
		Username: u.Username,
		Name:     u.Name,
		IsAdmin:  u.IsAdmin,
	}
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Register creates a regular (non admin) user with a bcrypt hashed password
func (a *API) Register(ctx context.Context, req *shared.Request, name string, username string, password string) (shared.User, error) {
	name = strings.TrimSpace(name)
	username = normalizeUsername(username)
	if name == "" || username == "" || password == "" {
		return shared.User{}, fmt.Errorf("%w: name, username and password are required", ErrValidation)
	}
	if strings.ContainsAny(username, " \t") {
		return shared.User{}, fmt.Errorf("%w: username cannot contain spaces", ErrValidation)
	}

	_, err := a.Store.GetUserByUsername(ctx, username)
	if err == nil {
		return shared.User{}, fmt.Errorf("%w: username %q is taken", ErrConflict, username)
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return shared.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.PasswordCost)
	if err != nil {
		return shared.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := a.Store.CreateUser(ctx, store.User{Name: name, Username: username, PasswordHash: string(hash)})
	if err != nil {
		return shared.User{}, translateStoreError(err, fmt.Sprintf("username %q", username))
	}

	log.Ctx(ctx).Info().Str("username", username).Msg("user registered")
	req.Success(fmt.Sprintf("Welcome, %s! Your account was created.", shared.FirstName(name, username)))
	return toSharedUser(user), nil
}

// Login checks a username and password
// Preconditions: Receives the typed username and password
// Postconditions: Returns the user, or ErrUnauthorized with one generic message for any mismatch
func (a *API) Login(ctx context.Context, req *shared.Request, username string, password string) (shared.User, error) {
	user, err := a.Store.GetUserByUsername(ctx, normalizeUsername(username))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			a.Metrics.login("rejected")
			return shared.User{}, errBadCredentials
		}
		return shared.User{}, err
	}

	if user.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		a.Metrics.login("rejected")
		return shared.User{}, errBadCredentials
	}

	a.Metrics.login("accepted")
	req.Success(fmt.Sprintf("Hello, %s!", shared.FirstName(user.Name, user.Username)))
	return toSharedUser(user), nil
}

// CurrentUser reloads a user by id so the admin flag is always the stored one
func (a *API) CurrentUser(ctx context.Context, userID string) (shared.User, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return shared.User{}, ErrUnauthorized
	}
	user, err := a.Store.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return shared.User{}, ErrUnauthorized
		}
		return shared.User{}, err
	}
	return toSharedUser(user), nil
}

// EnsureDiscordUser returns the user linked to a discord account, creating a passwordless one on first use
func (a *API) EnsureDiscordUser(ctx context.Context, discordID string, discordName string) (shared.User, error) {
	if discordID == "" {
		return shared.User{}, fmt.Errorf("%w: discord id is required", ErrValidation)
	}

	user, err := a.Store.GetUserByDiscordID(ctx, discordID)
	if err == nil {
		return toSharedUser(user), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return shared.User{}, err
	}

	name := strings.TrimSpace(discordName)
	if name == "" {
		name = "discord"
	}
	user, err = a.Store.CreateUser(ctx, store.User{
		Name:      name,
		Username:  "discord_" + discordID,
		DiscordID: discordID,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			// created by a concurrent message from the same account
			user, err = a.Store.GetUserByDiscordID(ctx, discordID)
			if err == nil {
				return toSharedUser(user), nil
			}
		}
		return shared.User{}, err
	}

	log.Ctx(ctx).Info().Str("discord_id", discordID).Msg("discord user created")
	return toSharedUser(user), nil
}

// CreateAdmin creates an admin user, or promotes the existing user with that username
func (a *API) CreateAdmin(ctx context.Context, req *shared.Request, name string, username string, password string) (shared.User, error) {
	username = normalizeUsername(username)
	if username == "" {
		return shared.User{}, fmt.Errorf("%w: username is required", ErrValidation)
	}

	existing, err := a.Store.GetUserByUsername(ctx, username)
	if err == nil {
		if err := a.Store.SetAdmin(ctx, existing.ID, true); err != nil {
			return shared.User{}, translateStoreError(err, "user")
		}
		existing.IsAdmin = true
		req.Info(fmt.Sprintf("%s is now an admin", username))
		return toSharedUser(existing), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return shared.User{}, err
	}

	if strings.TrimSpace(name) == "" || password == "" {
		return shared.User{}, fmt.Errorf("%w: name and password are required for a new admin", ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.PasswordCost)
	if err != nil {
		return shared.User{}, fmt.Errorf("failed to hash password: %w", err)
	}
	user, err := a.Store.CreateUser(ctx, store.User{
		Name:         strings.TrimSpace(name),
		Username:     username,
		PasswordHash: string(hash),
		IsAdmin:      true,
	})
	if err != nil {
		return shared.User{}, translateStoreError(err, fmt.Sprintf("username %q", username))
	}

	req.Success(fmt.Sprintf("admin %s created", username))
	return toSharedUser(user), nil
}
