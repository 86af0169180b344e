package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/rshade/ecotrack/internal/carbon"
	"github.com/rshade/ecotrack/internal/service"
)

// maxBodyBytes bounds request bodies. A full batch of inputs fits well below it.
const maxBodyBytes = 1 << 20

// errorResponse is the body of every non-2xx API response.
type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
	Index *int   `json:"index,omitempty"`
}

// decodeJSON decodes the request body into v. Unknown enum values come back
// as the *carbon.ValidationError naming their field; other decoding failures
// are a *badRequest.
func decodeJSON(r *http.Request, v any) error {
	return decode(io.LimitReader(r.Body, maxBodyBytes), v)
}

func decode(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var verr *carbon.ValidationError
		if errors.As(err, &verr) {
			return verr
		}
		return &badRequest{err: fmt.Errorf("malformed request body: %w", err)}
	}
	return nil
}

func (s *Server) writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Ctx(ctx).Err(err).Msg("failed to write response")
	}
}

// writeError maps err to a status code and error body.
func (s *Server) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status, body := s.errorBody(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error().Ctx(ctx).Err(err).Int("status", status).Msg("request failed")
	}
	s.writeJSON(ctx, w, status, body)
}

func (s *Server) errorBody(err error) (int, errorResponse) {
	var body errorResponse

	var berr *service.BatchError
	if errors.As(err, &berr) {
		index := berr.Index
		body.Index = &index
	}

	var (
		verr *carbon.ValidationError
		breq *badRequest
	)
	switch {
	case errors.As(err, &verr):
		body.Error = verr.Reason
		body.Field = verr.Field
		return http.StatusBadRequest, body
	case errors.Is(err, carbon.ErrUnknownFactorVersion):
		body.Error = err.Error()
		body.Field = "factor_version"
		return http.StatusBadRequest, body
	case errors.Is(err, service.ErrBatchTooLarge):
		body.Error = err.Error()
		return http.StatusRequestEntityTooLarge, body
	case errors.Is(err, service.ErrEmptyBatch):
		body.Error = err.Error()
		body.Field = "inputs"
		return http.StatusBadRequest, body
	case errors.Is(err, service.ErrUserRequired):
		body.Error = err.Error()
		return http.StatusUnauthorized, body
	case errors.Is(err, service.ErrHistoryUnavailable):
		body.Error = err.Error()
		return http.StatusServiceUnavailable, body
	case errors.As(err, &breq):
		body.Error = breq.err.Error()
		body.Field = breq.field
		return http.StatusBadRequest, body
	case errors.Is(err, carbon.ErrComputation):
		body.Error = carbon.ErrComputation.Error()
		return http.StatusInternalServerError, body
	default:
		body.Error = "internal server error"
		return http.StatusInternalServerError, body
	}
}

// badRequest is a client error found before the service is called.
type badRequest struct {
	field string
	err   error
}

func (e *badRequest) Error() string { return e.err.Error() }

func (e *badRequest) Unwrap() error { return e.err }
