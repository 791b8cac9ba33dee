/* errors.go
 * Contains the error kinds every action reports. Front-ends switch on these with errors.Is to pick a status code or
 * reply, the wrapped text is the single message shown to the user
 */

package api

import (
	"errors"
	"fmt"

	"bolao-bot/api/store"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrPreconditionFailed = errors.New("not allowed right now")
	ErrValidation         = errors.New("invalid input")
	ErrConflict           = errors.New("already exists")
	ErrUnauthorized       = errors.New("not logged in")
	ErrForbidden          = errors.New("admins only")
)

// translateStoreError maps store errors onto the action error kinds. what names the thing being looked up
func translateStoreError(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	case errors.Is(err, store.ErrDuplicate):
		return fmt.Errorf("%w: %s", ErrConflict, what)
	case errors.Is(err, store.ErrRoundBusy):
		return fmt.Errorf("%w: %w", ErrPreconditionFailed, err)
	default:
		return err
	}
}

var kinds = []error{ErrNotFound, ErrPreconditionFailed, ErrValidation, ErrConflict, ErrUnauthorized, ErrForbidden}

// IsKnown reports whether err is one of the action error kinds, anything else is an unexpected failure
func IsKnown(err error) bool {
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// UserMessage returns the text a front-end should show for err. Unexpected errors are not leaked
func UserMessage(err error) string {
	if IsKnown(err) {
		return err.Error()
	}
	return "something went wrong, please try again"
}
