// Package httpapi exposes the validation pipeline over HTTP: submit a
// document for validation, fetch a stored run, list runs, health.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/SyedShahbaaz02/LOA-Validator-System-sub000/internal/loacheck"
	"github.com/SyedShahbaaz02/LOA-Validator-System-sub000/internal/store"
)

// Validator runs the validation pipeline for one request.
type Validator interface {
	Run(ctx context.Context, req loacheck.RequestEnvelope) (loacheck.ResponseEnvelope, error)
}

// RunStore persists and retrieves validation runs.
type RunStore interface {
	SaveRun(ctx context.Context, req loacheck.RequestEnvelope, env loacheck.ResponseEnvelope) (store.Run, error)
	GetRun(ctx context.Context, runID string) (store.Run, error)
	ListRuns(ctx context.Context, caseID string, limit int) ([]store.Run, error)
}

type Server struct {
	validator Validator
	runs      RunStore
	tracer    trace.Tracer
}

func NewServer(validator Validator, runs RunStore) http.Handler {
	s := &Server{
		validator: validator,
		runs:      runs,
		tracer:    otel.Tracer("loa-validator/httpapi"),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/validations", s.handleValidations)
	mux.HandleFunc("/v1/validations/", s.handleValidationByID)
	mux.HandleFunc("/v1/health", s.handleHealth)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"ok": false,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}

func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return []byte("{}"), nil
	}
	blob, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	if len(blob) == 0 {
		blob = []byte("{}")
	}
	return blob, nil
}

func parseInt(value string, def int) int {
	if strings.TrimSpace(value) == "" {
		return def
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return v
}

func (s *Server) handleValidations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateValidation(w, r)
	case http.MethodGet:
		s.handleListValidations(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleCreateValidation(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.tracer.Start(r.Context(), "validation.create")
	defer span.End()

	blob, err := readBody(r)
	if err != nil {
		writeError(w, 400, "validation_error", err.Error())
		return
	}
	var req loacheck.RequestEnvelope
	if err := json.Unmarshal(blob, &req); err != nil {
		writeError(w, 400, "validation_error", "invalid JSON: "+err.Error())
		return
	}
	span.SetAttributes(
		attribute.String("loa.case_id", req.CaseID),
		attribute.String("loa.region", req.Region),
		attribute.String("loa.state", req.State),
	)

	env, err := s.validator.Run(ctx, req)
	if err != nil {
		writeError(w, 400, "validation_error", err.Error())
		return
	}
	span.SetAttributes(attribute.String("loa.decision", string(env.Decision)))

	run, err := s.runs.SaveRun(ctx, req, env)
	if err != nil {
		writeError(w, 500, "internal", "persist run: "+err.Error())
		return
	}

	writeJSON(w, 200, map[string]any{
		"ok":       true,
		"run_id":   run.RunID,
		"decision": env.Decision,
		"response": env,
	})
}

func (s *Server) handleListValidations(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.tracer.Start(r.Context(), "validation.list")
	defer span.End()

	caseID := strings.TrimSpace(r.URL.Query().Get("case_id"))
	limit := parseInt(r.URL.Query().Get("limit"), 100)
	runs, err := s.runs.ListRuns(ctx, caseID, limit)
	if err != nil {
		writeError(w, 500, "internal", err.Error())
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}
	writeJSON(w, 200, map[string]any{"runs": runs})
}

func (s *Server) handleValidationByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ctx, span := s.tracer.Start(r.Context(), "validation.get")
	defer span.End()

	runID := strings.TrimPrefix(r.URL.Path, "/v1/validations/")
	runID = strings.TrimSuffix(runID, "/")
	if runID == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	span.SetAttributes(attribute.String("loa.run_id", runID))

	run, err := s.runs.GetRun(ctx, runID)
	if errors.Is(err, store.ErrRunNotFound) {
		writeError(w, 404, "not_found", "validation run not found")
		return
	}
	if err != nil {
		writeError(w, 500, "internal", err.Error())
		return
	}
	writeJSON(w, 200, run)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, 200, map[string]any{"ok": true, "service": "loa-validator", "capability": loacheck.CapabilityLOAValidation})
}
