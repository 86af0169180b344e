package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/julienschmidt/httprouter"

	"github.com/rshade/ecotrack/internal/carbon"
	"github.com/rshade/ecotrack/internal/greenops"
	"github.com/rshade/ecotrack/internal/service"
	"github.com/rshade/ecotrack/internal/store"
)

// estimateRequest is a LifestyleInput with an optional factor table version.
type estimateRequest struct {
	carbon.LifestyleInput
	FactorVersion string `json:"factor_version,omitempty"`
}

// batchRequest keeps inputs raw so decoding errors can report their index.
type batchRequest struct {
	Inputs []json.RawMessage `json:"inputs"`
}

type batchResponse struct {
	Results []service.Result `json:"results"`
}

type historyResponse struct {
	UserID  string         `json:"user_id"`
	Records []store.Record `json:"records"`
}

type factorVersionsResponse struct {
	Default  string   `json:"default"`
	Versions []string `json:"versions"`
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req estimateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	res, err := s.svc.Estimate(r.Context(), service.Request{
		Input:         req.LifestyleInput,
		FactorVersion: req.FactorVersion,
		UserID:        r.Header.Get(HeaderUserID),
	})
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, res)
}

func (s *Server) handleEstimateBatch(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req batchRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	if err := s.svc.CheckBatchSize(len(req.Inputs)); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	userID := r.Header.Get(HeaderUserID)
	reqs := make([]service.Request, len(req.Inputs))
	for i, raw := range req.Inputs {
		var in estimateRequest
		if err := decode(bytes.NewReader(raw), &in); err != nil {
			s.writeError(r.Context(), w, &service.BatchError{Index: i, Err: err})
			return
		}
		reqs[i] = service.Request{
			Input:         in.LifestyleInput,
			FactorVersion: in.FactorVersion,
			UserID:        userID,
		}
	}

	results, err := s.svc.EstimateBatch(r.Context(), reqs)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, batchResponse{Results: results})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := r.Header.Get(HeaderUserID)
	if userID == "" {
		s.writeError(r.Context(), w, service.ErrUserRequired)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeError(r.Context(), w, &badRequest{field: "limit", err: errors.New("limit must be a non-negative integer")})
			return
		}
		limit = n
	}

	records, err := s.svc.History(r.Context(), userID, limit)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, historyResponse{UserID: userID, Records: records})
}

func (s *Server) handleEquivalencies(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in greenops.CarbonInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	if !greenops.IsRecognizedUnit(in.Unit) {
		s.writeError(r.Context(), w, &badRequest{field: "unit", err: fmt.Errorf("%w: %q", greenops.ErrInvalidUnit, in.Unit)})
		return
	}

	out, err := s.svc.Equivalencies(in)
	if err != nil {
		s.writeError(r.Context(), w, &badRequest{field: "value", err: err})
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, out)
}

func (s *Server) handleFactorVersions(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.writeJSON(r.Context(), w, http.StatusOK, factorVersionsResponse{
		Default:  s.svc.DefaultFactorVersion(),
		Versions: s.svc.FactorVersions(),
	})
}

func (s *Server) handleFactorTable(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	table, err := s.svc.FactorTable(params.ByName("version"))
	if errors.Is(err, carbon.ErrUnknownFactorVersion) {
		s.writeJSON(r.Context(), w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, table.Spec())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}
