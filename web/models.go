/* models.go
 * Contains the web server configuration and the request/response bodies of the JSON api
 */

package web

import (
	"time"

	"bolao-bot/api/api"
	"bolao-bot/api/shared"

	"github.com/prometheus/client_golang/prometheus"
)

// Config holds the configuration for the web server
type Config struct {
	Addr      string
	API       *api.API
	SecretKey string
	// TokenTTL is how long a login token stays valid, 24 hours when zero
	TokenTTL time.Duration
	// Registry receives the http metrics and is served on /metrics. A private registry is used when nil
	Registry *prometheus.Registry
}

// Server is the HTTP server that handles the JSON api
type Server struct {
	api         *api.API
	tokens      *tokenService
	authLimiter *ipLimiter
	metrics     *httpMetrics
	registry    *prometheus.Registry
}

// envelope wraps every JSON response
type envelope struct {
	Data     any              `json:"data"`
	Messages []shared.Message `json:"messages"`
	Error    string           `json:"error,omitempty"`
}

type registerBody struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      userPayload `json:"user"`
}

type userPayload struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	IsAdmin     bool   `json:"is_admin"`
}

func toUserPayload(u shared.User) userPayload {
	return userPayload{
		ID:          u.UserID,
		Username:    u.Username,
		Name:        u.Name,
		DisplayName: u.DisplayName(),
		IsAdmin:     u.IsAdmin,
	}
}

type entriesBody struct {
	Entries []api.ScoreEntry `json:"entries"`
}

type roundBody struct {
	Number int `json:"number"`
	// Deadline is either RFC3339 or 2006-01-02T15:04 in the server's timezone
	Deadline string          `json:"deadline"`
	Pairs    []api.PairInput `json:"pairs"`
}
