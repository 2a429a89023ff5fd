package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dgallion1/docgrade/internal/grader"
	"github.com/dgallion1/docgrade/internal/review"
)

type reviewRequest struct {
	Scope review.Scope `json:"scope"`
	Text  string       `json:"text"`
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Scope == "" {
		req.Scope = review.ScopeSection
	}
	if req.Scope != review.ScopeDocument && req.Scope != review.ScopeSection {
		jsonError(w, `scope must be "document" or "section"`, http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		jsonError(w, "text is required", http.StatusBadRequest)
		return
	}

	result, err := s.reviewer.GradeText(r.Context(), req.Scope, req.Text)
	if err != nil {
		s.log.Error("review failed", "scope", req.Scope, "error", err)
		code := http.StatusBadGateway
		var re *grader.RetryableError
		if errors.As(err, &re) {
			code = http.StatusServiceUnavailable
		}
		jsonError(w, "grading failed: "+err.Error(), code)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"scope":  req.Scope,
		"review": result,
	})
}
