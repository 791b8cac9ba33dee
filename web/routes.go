/* routes.go
 * Contains the server constructor and the route table of the JSON api
 */

package web

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// NewServer builds a Server from cfg. A secret key is required to sign login tokens
func NewServer(cfg Config) (*Server, error) {
	if cfg.API == nil {
		return nil, fmt.Errorf("API is required but none was provided")
	}
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("SecretKey is required but none was provided")
	}

	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	return &Server{
		api:         cfg.API,
		tokens:      newTokenService(cfg.SecretKey, cfg.TokenTTL),
		authLimiter: newIPLimiter(authRate, authBurst),
		metrics:     newHTTPMetrics(registry),
		registry:    registry,
	}, nil
}

// Handler returns the http handler serving every route
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// public
	mux.HandleFunc("POST /register", s.limitByIP(s.registerHandler))
	mux.HandleFunc("POST /login", s.limitByIP(s.loginHandler))
	mux.HandleFunc("GET /healthz", s.healthHandler)
	mux.Handle("GET /metrics", s.metricsHandler())

	// any logged in user
	mux.HandleFunc("GET /me", s.requireUser(s.meHandler))
	mux.HandleFunc("GET /rounds", s.requireUser(s.listRoundsHandler))
	mux.HandleFunc("GET /rounds/open", s.requireUser(s.openRoundHandler))
	mux.HandleFunc("GET /rounds/{id}", s.requireUser(s.getRoundHandler))
	mux.HandleFunc("GET /rounds/{id}/predictions", s.requireUser(s.roundPredictionsHandler))
	mux.HandleFunc("PUT /rounds/{id}/prediction", s.requireUser(s.submitPredictionHandler))
	mux.HandleFunc("GET /me/predictions", s.requireUser(s.myPredictionsHandler))
	mux.HandleFunc("GET /me/history", s.requireUser(s.historyHandler))
	mux.HandleFunc("GET /ranking", s.requireUser(s.rankingHandler))
	mux.HandleFunc("GET /teams", s.requireUser(s.listTeamsHandler))
	mux.HandleFunc("GET /teams/{id}", s.requireUser(s.getTeamHandler))

	// admins
	mux.HandleFunc("POST /admin/teams", s.requireAdmin(s.createTeamHandler))
	mux.HandleFunc("PUT /admin/teams/{id}", s.requireAdmin(s.updateTeamHandler))
	mux.HandleFunc("DELETE /admin/teams/{id}", s.requireAdmin(s.deleteTeamHandler))
	mux.HandleFunc("POST /admin/rounds", s.requireAdmin(s.createRoundHandler))
	mux.HandleFunc("DELETE /admin/rounds/{id}", s.requireAdmin(s.deleteRoundHandler))
	mux.HandleFunc("PUT /admin/rounds/{id}/results", s.requireAdmin(s.recordResultsHandler))
	mux.HandleFunc("POST /admin/rounds/{id}/score", s.requireAdmin(s.scoreRoundHandler))
	mux.HandleFunc("POST /admin/rounds/{id}/unprocess", s.requireAdmin(s.unprocessRoundHandler))
	mux.HandleFunc("GET /admin/betting-status", s.requireAdmin(s.bettingStatusHandler))
	mux.HandleFunc("GET /admin/ranking.xlsx", s.requireAdmin(s.exportRankingHandler))

	return withRequestLogger(s.instrument(mux))
}
