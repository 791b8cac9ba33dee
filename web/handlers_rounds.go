/* handlers_rounds.go
 * Contains the read only round and team handlers available to every logged in user
 */

package web

import (
	"net/http"
)

func (s *Server) listRoundsHandler(w http.ResponseWriter, r *http.Request) {
	req := newRequest(r)
	rounds, err := s.api.ListRounds(r.Context())
	if err != nil {
		s.writeRequestError(w, r, req, err)
		return
	}
	writeData(w, http.StatusOK, req, rounds)
}

// openRoundHandler returns the next round that still accepts bets
func (s *Server) openRoundHandler(w http.ResponseWriter, r *http.Request) {
	req := newRequest(r)
	round, err := s.api.OpenRound(r.Context())
	if err != nil {
		s.writeRequestError(w, r, req, err)
		return
	}
	writeData(w, http.StatusOK, req, round)
}

func (s *Server) getRoundHandler(w http.ResponseWriter, r *http.Request) {
	req := newRequest(r)
	round, err := s.api.GetRound(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeRequestError(w, r, req, err)
		return
	}
	writeData(w, http.StatusOK, req, round)
}

// roundPredictionsHandler lists everyone's bets once the round's deadline has passed
func (s *Server) roundPredictionsHandler(w http.ResponseWriter, r *http.Request) {
	req := newRequest(r)
	predictions, err := s.api.RoundPredictions(r.Context(), req, r.PathValue("id"))
	if err != nil {
		s.writeRequestError(w, r, req, err)
		return
	}
	writeData(w, http.StatusOK, req, predictions)
}

func (s *Server) listTeamsHandler(w http.ResponseWriter, r *http.Request) {
	req := newRequest(r)
	teams, err := s.api.ListTeams(r.Context())
	if err != nil {
		s.writeRequestError(w, r, req, err)
		return
	}
	writeData(w, http.StatusOK, req, teams)
}

func (s *Server) getTeamHandler(w http.ResponseWriter, r *http.Request) {
	req := newRequest(r)
	team, err := s.api.GetTeam(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeRequestError(w, r, req, err)
		return
	}
	writeData(w, http.StatusOK, req, team)
}
