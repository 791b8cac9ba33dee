/* handlers_users.go
 * Contains the account and bettor handlers: register, login, predictions, ranking and history
 */

package web

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, envelope{Data: map[string]string{"status": "ok"}})
}

// registerHandler creates a bettor account. The caller logs in afterwards
func (s *Server) registerHandler(w http.ResponseWriter, r *http.Request) {
	req := newRequest(r)
	var body registerBody
	if err := decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.api.Register(r.Context(), req, body.Name, body.Username, body.Password)
	if err != nil {
		s.writeRequestError(w, r, req, err)
		return
	}
	writeData(w, http.StatusCreated, req, toUserPayload(user))
}

// loginHandler checks the credentials and issues a bearer token
func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	req := newRequest(r)
	var body loginBody
	if err := decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.api.Login(r.Context(), req, body.Username, body.Password)
	if err != nil {
		s.writeRequestError(w, r, req, err)
		return
	}
	token, expires, err := s.tokens.Issue(user.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	log.Ctx(r.Context()).Info().Str("user", user.Username).Msg("user logged in")
	writeData(w, http.StatusOK, req, loginResponse{Token: token, ExpiresAt: expires, User: toUserPayload(user)})
}

func (s *Server) meHandler(w http.ResponseWriter, r *http.Request) {
	req := newRequest(r)
	writeData(w, http.StatusOK, req, toUserPayload(req.User))
}

func (s *Server) submitPredictionHandler(w http.ResponseWriter, r *http.Request) {
	req := newRequest(r)
	var body entriesBody
	if err := decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.api.SubmitPrediction(r.Context(), req, r.PathValue("id"), body.Entries); err != nil {
		s.writeRequestError(w, r, req, err)
		return
	}
	writeData(w, http.StatusOK, req, nil)
}

func (s *Server) myPredictionsHandler(w http.ResponseWriter, r *http.Request) {
	req := newRequest(r)
	predictions, err := s.api.MyPredictions(r.Context(), req)
	if err != nil {
		s.writeRequestError(w, r, req, err)
		return
	}
	writeData(w, http.StatusOK, req, predictions)
}

// historyHandler returns the caller's history. Admins may pass ?user=<id> to see someone else's
func (s *Server) historyHandler(w http.ResponseWriter, r *http.Request) {
	req := newRequest(r)
	history, err := s.api.UserHistory(r.Context(), req, r.URL.Query().Get("user"))
	if err != nil {
		s.writeRequestError(w, r, req, err)
		return
	}
	writeData(w, http.StatusOK, req, history)
}

func (s *Server) rankingHandler(w http.ResponseWriter, r *http.Request) {
	req := newRequest(r)
	entries, err := s.api.Leaderboard(r.Context())
	if err != nil {
		s.writeRequestError(w, r, req, err)
		return
	}
	writeData(w, http.StatusOK, req, entries)
}
