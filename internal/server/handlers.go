package server

import (
	"encoding/json"
	"net/http"

	"github.com/raglens/rag-lens/internal/analysis"
	apperrors "github.com/raglens/rag-lens/internal/pkg/errors"
)

// healthResponse is the /v1/health payload.
type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Records int    `json:"records"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}

	summary, err := s.engine.Summary()
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}

	writeJSON(w, http.StatusOK, s.engine.Trends())
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}

	findings := s.engine.Optimize()
	if findings == nil {
		// No findings serializes as an empty list, not null.
		findings = []analysis.Finding{}
	}

	writeJSON(w, http.StatusOK, findings)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}

	report, err := s.engine.Report(r.Context())
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "healthy",
		Version: s.cfg.Version,
		Records: s.engine.Count(),
	})
}

// requireGet rejects non-GET methods. Returns false when the request has
// already been answered.
func requireGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		apperrors.WriteErrorWithStatus(w, http.StatusMethodNotAllowed,
			apperrors.InvalidRequestError("method not allowed"))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
