/* models.go
 * This file contain the structs that are shared between sub packages and the front-ends (web and bot)
 */

package shared

import "strings"

// User is the authenticated identity an action runs as
type User struct {
	UserID   string
	Username string
	Name     string
	IsAdmin  bool
}

// DisplayName returns the first word of the user's name, falling back to the username
func (u User) DisplayName() string {
	return FirstName(u.Name, u.Username)
}

// FirstName returns the first word of name, or fallback when name is blank
func FirstName(name string, fallback string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return fallback
	}
	return fields[0]
}

// Message levels, same vocabulary the old flash messages used
const (
	LevelSuccess = "success"
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelDanger  = "danger"
)

// Message is a user facing note produced by an action
type Message struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

// Request is passed explicitly into every action. It carries who is acting and collects the messages the action
// wants to show back to that user.
type Request struct {
	User     User
	Messages []Message
}

// NewRequest creates a Request for the given user
func NewRequest(user User) *Request {
	return &Request{User: user}
}

func (r *Request) add(level string, text string) {
	r.Messages = append(r.Messages, Message{Level: level, Text: text})
}

// Success appends a success message
func (r *Request) Success(text string) { r.add(LevelSuccess, text) }

// Info appends an informational message
func (r *Request) Info(text string) { r.add(LevelInfo, text) }

// Warning appends a warning message
func (r *Request) Warning(text string) { r.add(LevelWarning, text) }

// Danger appends an error message
func (r *Request) Danger(text string) { r.add(LevelDanger, text) }
