/* respond.go
 * Contains the JSON envelope helpers and the mapping from action errors to status codes
 */

package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"bolao-bot/api/api"
	"bolao-bot/api/shared"

	"github.com/rs/zerolog/log"
)

// request bodies larger than this are refused
const maxBodySize = 1 << 20

// statusFor picks the http status for an action error
func statusFor(err error) int {
	switch {
	case errors.Is(err, api.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, api.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, api.ErrConflict), errors.Is(err, api.ErrPreconditionFailed):
		return http.StatusConflict
	case errors.Is(err, api.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, api.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	if body.Messages == nil {
		body.Messages = []shared.Message{}
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeData answers with data and the messages the action left on req
func writeData(w http.ResponseWriter, status int, req *shared.Request, data any) {
	writeJSON(w, status, envelope{Data: data, Messages: req.Messages})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	s.writeRequestError(w, r, nil, err)
}

// writeRequestError answers with the user facing text for err, keeping any messages the action produced first
func (s *Server) writeRequestError(w http.ResponseWriter, r *http.Request, req *shared.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Ctx(r.Context()).Error().Err(err).Msg("request failed")
	} else {
		log.Ctx(r.Context()).Debug().Err(err).Int("status", status).Msg("request refused")
	}

	body := envelope{Error: api.UserMessage(err)}
	if req != nil {
		body.Messages = req.Messages
	}
	writeJSON(w, status, body)
}

// decodeJSON reads a JSON request body into v. Unknown fields are refused
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", api.ErrValidation)
		}
		return fmt.Errorf("%w: malformed JSON body: %s", api.ErrValidation, err.Error())
	}
	return nil
}
