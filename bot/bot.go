/* bot.go
 * Contains the Bot type used for running the Discord front-end. Requires a discord bot token and an APIPtr, both of
 * which are passed in from main.go
 */

package bot

import (
	"fmt"
	"strings"

	"bolao-bot/api/api"
)

type Bot struct {
	BotToken string
	APIPtr   *api.API
	limiter  *userLimiter
}

// NewBot creates a Bot for the given token
// Preconditions: Receives a non empty discord bot token and a pointer to an initialised API
// Postconditions: Returns the Bot, or an error if no token was provided
func NewBot(botToken string, apiPtr *api.API) (*Bot, error) {
	if botToken == "" {
		return nil, fmt.Errorf("botToken is required but none was provided")
	}
	if apiPtr == nil {
		return nil, fmt.Errorf("apiPtr is required but none was provided")
	}

	return &Bot{
		BotToken: botToken,
		APIPtr:   apiPtr,
		limiter:  newUserLimiter(commandRate, commandBurst),
	}, nil
}

// Helper function to check if a string starts with a given substring
// Preconditions: Receives an input string and a substring
// Postconditions: Returns true if the substring is at the start of the string, else returns false
func startsWith(inputString string, substring string) bool {
	return strings.HasPrefix(inputString, substring)
}

// isCommand reports whether content is exactly command or command followed by arguments, so "$round" does not
// swallow "$rounds"
func isCommand(content string, command string) bool {
	if !startsWith(content, command) {
		return false
	}
	rest := content[len(command):]
	return rest == "" || rest[0] == ' ' || rest[0] == '\n' || rest[0] == '\t'
}
