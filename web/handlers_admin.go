/* handlers_admin.go
 * Contains the admin handlers: teams, rounds, results, scoring and the ranking export
 */

package web

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"bolao-bot/api/api"
	"bolao-bot/api/logic"
)

// emblems larger than this are refused
const maxEmblemSize = 2 << 20

// teamInput reads a team form. The emblem file is optional, an empty upload means no new emblem
func teamInput(w http.ResponseWriter, r *http.Request) (api.TeamInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxEmblemSize+maxBodySize)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var err error
	if mediaType == "multipart/form-data" {
		err = r.ParseMultipartForm(maxEmblemSize)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return api.TeamInput{}, fmt.Errorf("%w: could not read form: %s", api.ErrValidation, err.Error())
	}

	input := api.TeamInput{
		Name: r.FormValue("name"),
		Code: r.FormValue("code"),
	}
	if mediaType != "multipart/form-data" {
		return input, nil
	}

	file, header, err := r.FormFile("emblem")
	if errors.Is(err, http.ErrMissingFile) {
		return input, nil
	}
	if err != nil {
		return api.TeamInput{}, fmt.Errorf("%w: could not read emblem: %s", api.ErrValidation, err.Error())
	}
	defer file.Close()
	if header.Size > maxEmblemSize {
		return api.TeamInput{}, fmt.Errorf("%w: emblem is larger than %d MB", api.ErrValidation, maxEmblemSize>>20)
	}
	data, err := io.ReadAll(io.LimitReader(file, maxEmblemSize))
	if err != nil {
		return api.TeamInput{}, fmt.Errorf("failed to read emblem: %w", err)
	}
	input.Emblem = data
	input.EmblemType = header.Header.Get("Content-Type")
	return input, nil
}

func (s *Server) createTeamHandler(w http.ResponseWriter, r *http.Request) {
	req := newRequest(r)
	input, err := teamInput(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	team, err := s.api.CreateTeam(r.Context(), req, input)
	if err != nil {
		s.writeRequestError(w, r, req, err)
		return
	}
	writeData(w, http.StatusCreated, req, team)
}

func (s *Server) updateTeamHandler(w http.ResponseWriter, r *http.Request) {
	req := newRequest(r)
	input, err := teamInput(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	team, err := s.api.UpdateTeam(r.Context(), req, r.PathValue("id"), input)
	if err != nil {
		s.writeRequestError(w, r, req, err)
		return
	}
	writeData(w, http.StatusOK, req, team)
}

func (s *Server) deleteTeamHandler(w http.ResponseWriter, r *http.Request) {
	req := newRequest(r)
	if err := s.api.DeleteTeam(r.Context(), req, r.PathValue("id")); err != nil {
		s.writeRequestError(w, r, req, err)
		return
	}
	writeData(w, http.StatusOK, req, nil)
}

// createRoundHandler creates a round. The deadline is read in the server's timezone unless it carries an offset
func (s *Server) createRoundHandler(w http.ResponseWriter, r *http.Request) {
	req := newRequest(r)
	var body roundBody
	if err := decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	deadline, err := logic.ParseDeadlineValue(body.Deadline, s.api.Location)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %w", api.ErrValidation, err))
		return
	}

	round, err := s.api.CreateRound(r.Context(), req, api.RoundInput{Number: body.Number, Deadline: deadline, Pairs: body.Pairs})
	if err != nil {
		s.writeRequestError(w, r, req, err)
		return
	}
	writeData(w, http.StatusCreated, req, round)
}

func (s *Server) deleteRoundHandler(w http.ResponseWriter, r *http.Request) {
	req := newRequest(r)
	if err := s.api.DeleteRound(r.Context(), req, r.PathValue("id")); err != nil {
		s.writeRequestError(w, r, req, err)
		return
	}
	writeData(w, http.StatusOK, req, nil)
}

func (s *Server) recordResultsHandler(w http.ResponseWriter, r *http.Request) {
	req := newRequest(r)
	var body entriesBody
	if err := decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	summary, err := s.api.RecordResults(r.Context(), req, r.PathValue("id"), body.Entries)
	if err != nil {
		s.writeRequestError(w, r, req, err)
		return
	}
	writeData(w, http.StatusOK, req, summary)
}

func (s *Server) scoreRoundHandler(w http.ResponseWriter, r *http.Request) {
	req := newRequest(r)
	summary, err := s.api.ScoreRound(r.Context(), req, r.PathValue("id"))
	if err != nil {
		s.writeRequestError(w, r, req, err)
		return
	}
	writeData(w, http.StatusOK, req, summary)
}

func (s *Server) unprocessRoundHandler(w http.ResponseWriter, r *http.Request) {
	req := newRequest(r)
	if err := s.api.UnprocessRound(r.Context(), req, r.PathValue("id")); err != nil {
		s.writeRequestError(w, r, req, err)
		return
	}
	writeData(w, http.StatusOK, req, nil)
}

func (s *Server) bettingStatusHandler(w http.ResponseWriter, r *http.Request) {
	req := newRequest(r)
	status, err := s.api.BettingStatus(r.Context(), req)
	if err != nil {
		s.writeRequestError(w, r, req, err)
		return
	}
	writeData(w, http.StatusOK, req, status)
}

// exportRankingHandler sends the leaderboard as an xlsx download. The workbook is built in memory first so a failure
// still gets a JSON error
func (s *Server) exportRankingHandler(w http.ResponseWriter, r *http.Request) {
	req := newRequest(r)
	var buf bytes.Buffer
	if err := s.api.ExportLeaderboard(r.Context(), req, &buf); err != nil {
		s.writeRequestError(w, r, req, err)
		return
	}

	filename := fmt.Sprintf("ranking-%s.xlsx", s.api.Now().In(s.api.Location).Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
