// Package server implements the JSON mutation API used by the control page.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	apperrors "github.com/Tyrowin/scoreline/internal/errors"
	"github.com/Tyrowin/scoreline/internal/match"
)

// matchResponse is the success envelope of every /api endpoint.
type matchResponse struct {
	Success    bool        `json:"success"`
	MatchState match.State `json:"matchState"`
}

// mutationHandler decodes a T from the request body, applies it and
// answers with the resulting match state.
func mutationHandler[T any](s *Server, op string, apply func(context.Context, T) (match.State, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload T
		if err := decodeJSON(r, &payload); err != nil {
			s.metrics.RecordMutation(op, err)
			apperrors.Respond(w, r, err)
			return
		}

		state, err := apply(r.Context(), payload)
		s.metrics.RecordMutation(op, err)
		if err != nil {
			apperrors.Respond(w, r, err)
			return
		}

		writeJSON(w, r, http.StatusOK, matchResponse{Success: true, MatchState: state})
	}
}

// MatchStateHandler returns the current match state without changing it.
func (s *Server) MatchStateHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, matchResponse{Success: true, MatchState: s.service.Current()})
}

// decodeJSON maps decoding failures to structured errors.
func decodeJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return nil
	}

	var (
		maxBytesErr *http.MaxBytesError
		syntaxErr   *json.SyntaxError
		typeErr     *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &maxBytesErr):
		return apperrors.TooLargeError("request body too large", err).
			WithContext("limit_bytes", maxBytesErr.Limit)
	case errors.Is(err, io.EOF):
		return apperrors.ValidationError("request body is empty")
	case errors.As(err, &syntaxErr):
		return apperrors.ValidationError("malformed JSON").
			WithContext("offset", syntaxErr.Offset)
	case errors.Is(err, io.ErrUnexpectedEOF):
		return apperrors.ValidationError("malformed JSON")
	case errors.As(err, &typeErr):
		return apperrors.ValidationError("invalid field type").
			WithContext("field", typeErr.Field)
	default:
		return apperrors.ValidationError("invalid request body").WithCause(err)
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "Failed to write JSON response", "error", err)
	}
}
